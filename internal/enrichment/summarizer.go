package enrichment

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Summarizer produces the two AI-generated display fields for a call.
type Summarizer interface {
	Summary(ctx context.Context, transcript string) (string, error)
	Title(ctx context.Context, transcript string) (string, error)
}

const summarySystemPrompt = "You are a professional call summarization assistant for business professionals."

const summaryPromptTemplate = `You are an AI assistant specializing in creating professional call summaries for business executives, lawyers, directors, and other professionals who use call recording applications.

Please analyze the following call transcription and provide a comprehensive, professional summary that includes:

1. **Call Overview**: A brief executive summary (2-3 sentences) highlighting the main purpose and outcome
2. **Key Discussion Points**: Bullet points of the main topics discussed
3. **Action Items**: Clear list of any commitments, tasks, or follow-ups mentioned
4. **Decisions Made**: Any important decisions or agreements reached
5. **Important Details**: Names, dates, numbers, or specific information mentioned
6. **Next Steps**: Any planned future actions or meetings

Format the summary in a clear, professional manner that would be suitable for business documentation and easy reference.

CALL TRANSCRIPTION:
%s

Please provide a structured, professional summary:`

const titleSystemPrompt = "You are a professional assistant that creates concise titles for business calls."

const titlePromptTemplate = `Based on the following call transcription, generate a concise, professional title (maximum 10 words) that captures the main topic or purpose of the call.

Examples of good titles:
- "Q4 Financial Review Meeting"
- "Contract Negotiation with ABC Corp"
- "Project Status Update - Marketing Campaign"
- "Legal Consultation - Merger Agreement"
- "Sales Strategy Discussion"

CALL TRANSCRIPTION (first 500 characters):
%s...

Provide only the title, nothing else:`

// The title prompt only sees the opening of the transcript.
const titleTranscriptLimit = 500

const maxTitleLen = 100

// OpenAISummarizer generates summaries and titles through an
// OpenAI-compatible chat completion endpoint.
type OpenAISummarizer struct {
	client *openai.Client
	model  string
}

func NewOpenAISummarizer(apiKey, baseURL, model string) *OpenAISummarizer {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAISummarizer{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (s *OpenAISummarizer) Summary(ctx context.Context, transcript string) (string, error) {
	return s.complete(ctx, summarySystemPrompt, fmt.Sprintf(summaryPromptTemplate, transcript), 0)
}

func (s *OpenAISummarizer) Title(ctx context.Context, transcript string) (string, error) {
	head := transcript
	if runes := []rune(head); len(runes) > titleTranscriptLimit {
		head = string(runes[:titleTranscriptLimit])
	}
	title, err := s.complete(ctx, titleSystemPrompt, fmt.Sprintf(titlePromptTemplate, head), 0.3)
	if err != nil {
		return "", err
	}
	return CleanTitle(title), nil
}

func (s *OpenAISummarizer) complete(ctx context.Context, system, user string, temperature float32) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		Temperature: temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// CleanTitle normalizes a model-produced title: wrapping quotes stripped,
// length capped at 100 characters. The cap counts runes, not bytes, so a
// multi-byte title is never cut mid-character.
func CleanTitle(title string) string {
	title = strings.TrimSpace(title)
	title = strings.Trim(title, `"'`)
	if runes := []rune(title); len(runes) > maxTitleLen {
		title = string(runes[:maxTitleLen-3]) + "..."
	}
	return title
}
