package enrichment

import (
	"fmt"
	"strings"
)

const (
	// EmptySummary and EmptyTitle are stored when the transcript is blank.
	EmptySummary = "No transcription available to summarize."
	EmptyTitle   = "Untitled Call"

	// FailedSummary and FailedTitle are the terminal placeholders written
	// when enrichment cannot produce anything better. The record still
	// reaches a displayable state.
	FailedSummary = "Summary generation failed. Please review the transcription."
	FailedTitle   = "Call Recording"
)

// FallbackSummary builds a minimal deterministic summary from the
// transcript itself when the AI backend is unavailable.
func FallbackSummary(transcript string) string {
	words := strings.Fields(transcript)

	var b strings.Builder
	b.WriteString("**Call Summary**\n\n")
	fmt.Fprintf(&b, "**Overview**: This call contained %d words of conversation.\n\n", len(words))
	preview := words
	if len(preview) > 50 {
		preview = preview[:50]
	}
	fmt.Fprintf(&b, "**Transcription Preview**: %s...\n\n", strings.Join(preview, " "))
	b.WriteString("**Note**: Automated summary generation was unavailable. Please review the full transcription for details.")
	return b.String()
}

// FallbackTitle derives a title from the transcript's opening words, or
// the fixed placeholder when there are too few to be useful.
func FallbackTitle(transcript string) string {
	words := strings.Fields(transcript)
	if len(words) < 5 {
		return FailedTitle
	}
	return strings.Join(words[:5], " ") + "..."
}
