package chat

import (
	"context"
	"strings"

	"EarlyPulse_V0.1/internal/geminiservice"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"
)

// verdictCacheSize bounds the classifier verdict cache. Verdicts are tiny, so
// the bound exists to cap key (query string) memory, not value memory.
const verdictCacheSize = 512

// Generator is the slice of the Gemini client the chat package depends on.
type Generator interface {
	GenerateContent(ctx context.Context, parts []geminiservice.Part) (string, error)
}

// Classifier is the boolean health-domain gate. It issues one generation call
// per unseen query and FAILS CLOSED: any call error or non-boolean reply
// rejects the query as out-of-domain rather than risking an answer to an
// unrelated question. That default is a deliberate safety policy.
type Classifier struct {
	gen   Generator
	cache *lru.Cache[string, bool]
}

// NewClassifier builds a Classifier around the given generator.
func NewClassifier(gen Generator) *Classifier {
	// lru.New only errors on a non-positive size.
	cache, _ := lru.New[string, bool](verdictCacheSize)
	return &Classifier{gen: gen, cache: cache}
}

// IsHealthRelated reports whether the message belongs to the
// healthcare/medicine/wellness domain. Verdicts from completed round-trips
// are cached per exact query string; call failures are never cached, so a
// transient outage does not pin a query to false forever.
func (cl *Classifier) IsHealthRelated(ctx context.Context, message string) bool {
	if verdict, ok := cl.cache.Get(message); ok {
		return verdict
	}

	reply, err := cl.gen.GenerateContent(ctx, []geminiservice.Part{
		geminiservice.TextPart(geminiservice.BuildClassifierPrompt(message)),
	})
	if err != nil {
		log.Warn().Err(err).Msg("domain classification call failed, rejecting query")
		return false
	}

	verdict := strings.TrimSpace(strings.ToLower(reply)) == "true"
	cl.cache.Add(message, verdict)
	return verdict
}
