package routine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRoutineAcceptsPlainArray(t *testing.T) {
	tasks, err := ParseRoutine(`["Wake at 7am","Drink water"]`)
	require.NoError(t, err)
	require.Equal(t, []string{"Wake at 7am", "Drink water"}, tasks)
}

func TestParseRoutineStripsFences(t *testing.T) {
	cases := []string{
		"```json\n[\"Wake at 7am\",\"Drink water\"]\n```",
		"```\n[\"Wake at 7am\",\"Drink water\"]\n```",
		"```json\n[\"Wake at 7am\",\"Drink water\"]\n```\n",
		"  ```json\n[\"Wake at 7am\",\"Drink water\"]\n```  ",
	}

	for _, raw := range cases {
		tasks, err := ParseRoutine(raw)
		require.NoError(t, err, "input %q", raw)
		require.Equal(t, []string{"Wake at 7am", "Drink water"}, tasks, "input %q", raw)
	}
}

func TestParseRoutineFencedAndUnfencedAgree(t *testing.T) {
	plain, err := ParseRoutine(`["Stretch for ten minutes"]`)
	require.NoError(t, err)

	fenced, err := ParseRoutine("```json\n[\"Stretch for ten minutes\"]\n```")
	require.NoError(t, err)

	require.Equal(t, plain, fenced)
}

func TestParseRoutineRejectsWrongShapes(t *testing.T) {
	cases := []string{
		`{"a":1}`,
		`["x", 2]`,
		`[["x"]]`,
		`[{"task":"x"}]`,
		`"just a string"`,
		`not json at all`,
		`null`,
		"```json\nnull\n```",
		``,
	}

	for _, raw := range cases {
		_, err := ParseRoutine(raw)
		require.ErrorIs(t, err, ErrMalformedOutput, "input %q", raw)
	}
}

func TestParseRoutineAllowsEmptyArray(t *testing.T) {
	tasks, err := ParseRoutine(`[]`)
	require.NoError(t, err)
	require.Empty(t, tasks)
}
