package enrichment

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"call-recorder/internal/calls"
)

// Pipeline turns a completed transcription into a stored summary and
// title. It is deliberately forgiving: a missing call aborts silently
// (the user deleted it mid-flight), and an AI failure degrades to
// deterministic fallback text rather than leaving the fields null.
type Pipeline struct {
	repo       calls.Repository
	summarizer Summarizer
	log        *slog.Logger
}

func NewPipeline(repo calls.Repository, summarizer Summarizer, log *slog.Logger) *Pipeline {
	return &Pipeline{repo: repo, summarizer: summarizer, log: log}
}

// Run enriches one call. The transcript is the one captured when the
// job was scheduled; the call row is re-read so a deletion that raced
// the job is respected.
func (p *Pipeline) Run(ctx context.Context, callID, transcript string) {
	if _, err := p.repo.Get(ctx, callID); err != nil {
		if errors.Is(err, calls.ErrNotFound) {
			p.log.Info("call gone before enrichment, skipping", "call_id", callID)
			return
		}
		p.log.Error("enrichment pre-read failed", "call_id", callID, "err", err)
		return
	}

	summary, title := p.generate(ctx, transcript)

	if err := p.repo.UpdateEnrichment(ctx, callID, title, summary); err != nil {
		if errors.Is(err, calls.ErrNotFound) {
			p.log.Info("call gone during enrichment, skipping", "call_id", callID)
			return
		}
		p.log.Error("enrichment persist failed", "call_id", callID, "err", err)

		// Last attempt: park the record in a terminal displayable state.
		if err := p.repo.UpdateEnrichment(ctx, callID, FailedTitle, FailedSummary); err != nil {
			p.log.Error("enrichment placeholder persist failed", "call_id", callID, "err", err)
		}
		return
	}
	p.log.Info("enrichment complete", "call_id", callID)
}

// generate produces both fields, degrading per field on AI failure.
func (p *Pipeline) generate(ctx context.Context, transcript string) (summary, title string) {
	if strings.TrimSpace(transcript) == "" {
		return EmptySummary, EmptyTitle
	}
	if p.summarizer == nil {
		return FallbackSummary(transcript), FallbackTitle(transcript)
	}

	summary, err := p.summarizer.Summary(ctx, transcript)
	if err != nil {
		p.log.Warn("summary generation failed, using fallback", "err", err)
		summary = FallbackSummary(transcript)
	}
	title, err = p.summarizer.Title(ctx, transcript)
	if err != nil {
		p.log.Warn("title generation failed, using fallback", "err", err)
		title = FallbackTitle(transcript)
	}
	return summary, title
}
