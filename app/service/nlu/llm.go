package nlu

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"concierge/app/config"
	"concierge/app/service/intent"
	"concierge/app/service/store"

	_ "embed"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

//go:embed classify_prompt_template.txt
var classifyPromptTemplate string

//go:embed extract_meeting_prompt_template.txt
var extractMeetingPromptTemplate string

//go:embed extract_email_prompt_template.txt
var extractEmailPromptTemplate string

//go:embed switch_prompt_template.txt
var switchPromptTemplate string

const (
	maxCallDuration = 30 * time.Second
	maxTokens       = 500
	historyContext  = 3
)

// LLMBackend implements Backend against an OpenAI-compatible chat endpoint.
type LLMBackend struct {
	model llms.Model
}

var _ Backend = (*LLMBackend)(nil)

func NewLLMBackend(cfg config.OpenAI) (*LLMBackend, error) {
	model, err := openai.New(
		openai.WithToken(cfg.Token),
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	return &LLMBackend{model: model}, nil
}

func (b *LLMBackend) Probe(ctx context.Context) error {
	_, err := b.complete(ctx, "Hello", false)
	return err
}

func (b *LLMBackend) ClassifyIntent(ctx context.Context, text string, history []store.TurnRecord) (intent.Intent, error) {
	prompt := render(classifyPromptTemplate, map[string]string{
		"context": formatHistory(history),
		"input":   text,
	})

	response, err := b.complete(ctx, prompt, false)
	if err != nil {
		return intent.Chitchat, err
	}

	lower := strings.ToLower(response)
	switch {
	case strings.Contains(lower, string(intent.ScheduleMeeting)):
		return intent.ScheduleMeeting, nil
	case strings.Contains(lower, string(intent.SendEmail)):
		return intent.SendEmail, nil
	default:
		return intent.Chitchat, nil
	}
}

func (b *LLMBackend) ExtractFields(ctx context.Context, text string, in intent.Intent, history []store.TurnRecord, known map[string]string) (map[string]string, error) {
	var template string
	switch in {
	case intent.ScheduleMeeting:
		template = extractMeetingPromptTemplate
	case intent.SendEmail:
		template = extractEmailPromptTemplate
	default:
		return nil, nil
	}

	knownJSON, _ := json.Marshal(known)

	prompt := render(template, map[string]string{
		"context": formatHistory(history),
		"known":   string(knownJSON),
		"input":   text,
	})

	response, err := b.complete(ctx, prompt, true)
	if err != nil {
		return nil, err
	}

	var fields map[string]string
	if err = json.Unmarshal([]byte(trimFences(response)), &fields); err != nil {
		return nil, fmt.Errorf("failed to unmarshal extraction response: %w", err)
	}

	for key, value := range fields {
		if strings.TrimSpace(value) == "" {
			delete(fields, key)
		}
	}

	return fields, nil
}

func (b *LLMBackend) ClassifySwitch(ctx context.Context, text string, current intent.Intent) (bool, error) {
	prompt := render(switchPromptTemplate, map[string]string{
		"current_intent": string(current),
		"input":          text,
	})

	response, err := b.complete(ctx, prompt, false)
	if err != nil {
		return false, err
	}

	return strings.Contains(strings.ToLower(response), "yes"), nil
}

func (b *LLMBackend) complete(ctx context.Context, prompt string, jsonMode bool) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, maxCallDuration)
	defer cancel()

	opts := []llms.CallOption{
		llms.WithTemperature(0.1),
		llms.WithMaxTokens(maxTokens),
	}
	if jsonMode {
		opts = append(opts, llms.WithJSONMode())
	}

	response, err := b.model.GenerateContent(ctx,
		[]llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, prompt)},
		opts...,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no chat completion found")
	}

	return strings.TrimSpace(response.Choices[0].Content), nil
}

func render(template string, values map[string]string) string {
	result := template
	for key, value := range values {
		result = strings.ReplaceAll(result, "{"+key+"}", value)
	}

	return result
}

func trimFences(s string) string {
	s = strings.Trim(s, "`")
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "json")

	return strings.TrimSpace(s)
}

func formatHistory(history []store.TurnRecord) string {
	if len(history) == 0 {
		return "No recent messages"
	}

	if len(history) > historyContext {
		history = history[len(history)-historyContext:]
	}

	var builder strings.Builder
	for _, turn := range history {
		builder.WriteString("User: " + turn.UserMessage + "\n")
		builder.WriteString("Assistant: " + turn.AssistantResponse + "\n")
	}

	return builder.String()
}
