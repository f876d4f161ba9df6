package routine

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrMalformedOutput is returned when the model's reply is not a JSON array
// of strings. Unlike the chat normalizer there is no per-line salvage here:
// a routine is stored all-or-nothing.
var ErrMalformedOutput = errors.New("model reply is not a JSON array of strings")

/*
ParseRoutine parses the model's reply into an ordered task list. The prompt
forbids markdown fencing, but models emit it anyway, so a single fence at the
very start (with or without a language tag) and at the very end is stripped
before parsing. Parsing itself is strict: the decoded value must be an array
whose every element is a string, otherwise ErrMalformedOutput.
*/
func ParseRoutine(raw string) ([]string, error) {
	cleaned := stripFences(raw)

	var items []interface{}
	if err := json.Unmarshal([]byte(cleaned), &items); err != nil {
		return nil, ErrMalformedOutput
	}
	// Unmarshal leaves the slice nil for a JSON null; only a real array
	// (including []) allocates. A null reply must not wipe a stored routine.
	if items == nil {
		return nil, ErrMalformedOutput
	}

	tasks := make([]string, 0, len(items))
	for _, item := range items {
		task, ok := item.(string)
		if !ok {
			return nil, ErrMalformedOutput
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// stripFences removes one leading and one trailing triple-backtick fence
// line. Fences anywhere else are left alone; that is the parser's problem.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx >= 0 {
			s = s[idx+1:]
		} else {
			// Single-line reply such as ```json[...]```
			s = strings.TrimPrefix(s, "```json")
			s = strings.TrimPrefix(s, "```")
		}
	}
	if strings.HasSuffix(strings.TrimSpace(s), "```") {
		s = strings.TrimSpace(s)
		s = strings.TrimSuffix(s, "```")
	}

	return strings.TrimSpace(s)
}
