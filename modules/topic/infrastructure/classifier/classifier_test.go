package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSelection_RegexMatch(t *testing.T) {
	names := []string{"Music", "Technology", "Sports"}
	raw := "This transcript is mostly about 'Music' and some Technology."

	matched := parseSelection(raw, names)
	assert.Equal(t, []string{"Music", "Technology"}, matched)
}

func TestParseSelection_CaseInsensitive(t *testing.T) {
	names := []string{"Music"}
	matched := parseSelection("the topic is MUSIC", names)
	assert.Equal(t, []string{"Music"}, matched)
}

func TestParseSelection_QuotedCommaList(t *testing.T) {
	names := []string{"Music", "Sports"}
	// The regex branch matches a canonical name anywhere in the
	// response, quoted or not, so a quoted comma-separated list is
	// resolved there; the comma-split fallback adds nothing here.
	raw := `"Music", "Sports"`
	matched := parseSelection(raw, names)
	assert.ElementsMatch(t, []string{"Music", "Sports"}, matched)
}

func TestParseSelection_NoMatchReturnsEmpty(t *testing.T) {
	names := []string{"Music", "Sports"}
	matched := parseSelection("I don't know what this is about.", names)
	assert.Empty(t, matched)
}

func TestParseSelection_DeduplicatesCaseVariants(t *testing.T) {
	names := []string{"Music"}
	matched := parseSelection("Music, music, MUSIC", names)
	assert.Equal(t, []string{"Music"}, matched)
}

func TestBuildPrompt_IncludesSummariesAndNames(t *testing.T) {
	prompt := buildPrompt([]string{"intro about jazz"}, []string{"Music", "Sports"})
	assert.Contains(t, prompt, "intro about jazz")
	assert.Contains(t, prompt, "Music")
	assert.Contains(t, prompt, "Sports")
	assert.Contains(t, prompt, "Unknown")
}
