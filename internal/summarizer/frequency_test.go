package summarizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeShortTextReturnsAllSentences(t *testing.T) {
	s := NewFrequencySummarizer()
	out, err := s.Summarize("Only one sentence here.", 5)
	require.NoError(t, err)
	assert.Equal(t, "Only one sentence here.", out)
}

func TestSummarizeLimitsSentenceCount(t *testing.T) {
	s := NewFrequencySummarizer()
	text := "Chatbots answer questions. Chatbots reduce support load. Gardening is unrelated. Chatbots handle inquiries."
	out, err := s.Summarize(text, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "."), "at most two sentences survive")
	assert.Contains(t, out, "Chatbots")
}

func TestSummarizePreservesOriginalOrder(t *testing.T) {
	s := NewFrequencySummarizer()
	text := "Alpha topic comes first here. Beta topic comes second here. Gamma filler text unrelated."
	out, err := s.Summarize(text, 2)
	require.NoError(t, err)
	first := strings.Index(out, "Alpha")
	second := strings.Index(out, "Beta")
	if first >= 0 && second >= 0 {
		assert.Less(t, first, second)
	}
}

func TestSummarizeTextWithoutTerminators(t *testing.T) {
	s := NewFrequencySummarizer()
	out, err := s.Summarize("no terminator at all", 3)
	require.NoError(t, err)
	assert.Equal(t, "no terminator at all", out)
}

func TestSummarizeNonPositiveMaxDefaults(t *testing.T) {
	s := NewFrequencySummarizer()
	out, err := s.Summarize("One. Two. Three. Four. Five. Six. Seven.", 0)
	require.NoError(t, err)
	assert.Equal(t, 5, strings.Count(out, "."))
}
