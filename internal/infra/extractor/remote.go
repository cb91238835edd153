// Package extractor adapts the ChatGPT client to the mailgen Extractor
// port. The adapter is defensive: a malformed model reply degrades to an
// empty extraction, while transport failures surface as errors.
package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"github.com/yanqian/meetmail/internal/domain/extract"
	"github.com/yanqian/meetmail/internal/domain/mailgen"
	"github.com/yanqian/meetmail/internal/infra/llm/chatgpt"
	"github.com/yanqian/meetmail/pkg/metrics"
)

const systemPrompt = "You extract structured signals from raw meeting notes. " +
	"Respond ONLY with valid minified JSON using this shape: " +
	`{"summary":string,"decisions":string[],"actions":[{"owner":string,"task":string,"due":string}],"questions":string[]}. ` +
	"Keep source order. Use \"TBD\" when an action has no clear owner and an empty string when it has no due date. " +
	"Never return plain text or extra fields."

// ChatClient is the subset of the ChatGPT client the adapter needs.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error)
}

// Config tunes the remote extraction call.
type Config struct {
	Model           string
	Temperature     float32
	MaxPromptTokens int
}

// Remote is the LLM-backed Extractor.
type Remote struct {
	client ChatClient
	cfg    Config
	logger *slog.Logger
	enc    *tiktoken.Tiktoken
}

// NewRemote constructs the adapter. Token counting falls back to a word
// estimate when the encoding cannot be loaded.
func NewRemote(client ChatClient, cfg Config, logger *slog.Logger) *Remote {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		logger.Warn("tiktoken encoding unavailable, using word estimate", "error", err)
		enc = nil
	}
	return &Remote{
		client: client,
		cfg:    cfg,
		logger: logger.With("component", "extractor.remote"),
		enc:    enc,
	}
}

// Extract performs a single, context-bounded completion call.
func (r *Remote) Extract(ctx context.Context, notes, guidance string) (extract.Extraction, *metrics.TokenUsage, error) {
	system := systemPrompt
	if g := strings.TrimSpace(guidance); g != "" {
		system += " " + g
	}
	user := r.truncate(notes)

	resp, err := r.client.CreateChatCompletion(ctx, chatgpt.ChatCompletionRequest{
		Model:          r.cfg.Model,
		Temperature:    r.cfg.Temperature,
		ResponseFormat: &chatgpt.ResponseFormat{Type: "json_object"},
		Messages: []chatgpt.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		return extract.Extraction{}, nil, err
	}
	if len(resp.Choices) == 0 {
		return extract.Extraction{}, nil, errors.New("chatgpt returned no choices")
	}

	usage := r.usageFrom(resp.Usage, system+user)

	ex, err := parseExtraction(resp.Choices[0].Message.Content)
	if err != nil {
		// Wrong shape is not fatal: the composer still renders a
		// minimal email from an empty extraction.
		r.logger.Warn("remote extraction malformed, substituting empty extraction", "error", err)
		return extract.Extraction{}, usage, nil
	}
	return ex, usage, nil
}

// truncate caps the notes at the configured prompt token budget.
func (r *Remote) truncate(notes string) string {
	if r.cfg.MaxPromptTokens <= 0 {
		return notes
	}
	if r.enc != nil {
		tokens := r.enc.Encode(notes, nil, nil)
		if len(tokens) <= r.cfg.MaxPromptTokens {
			return notes
		}
		return r.enc.Decode(tokens[:r.cfg.MaxPromptTokens])
	}
	words := strings.Fields(notes)
	if len(words) <= r.cfg.MaxPromptTokens {
		return notes
	}
	return strings.Join(words[:r.cfg.MaxPromptTokens], " ")
}

func (r *Remote) usageFrom(u chatgpt.Usage, prompt string) *metrics.TokenUsage {
	usage := metrics.TokenUsage{
		PromptTokens:     u.PromptTokens,
		CompletionTokens: u.CompletionTokens,
		TotalTokens:      u.TotalTokens,
	}
	if usage.IsZero() && r.enc != nil {
		usage.PromptTokens = len(r.enc.Encode(prompt, nil, nil))
		usage.TotalTokens = usage.PromptTokens
	}
	if usage.IsZero() {
		return nil
	}
	return &usage
}

// parseExtraction decodes the model reply into an Extraction, coercing
// scalar values where arrays are expected instead of failing.
func parseExtraction(content string) (extract.Extraction, error) {
	sanitized := strings.TrimSpace(content)
	sanitized = strings.TrimPrefix(sanitized, "```json")
	sanitized = strings.TrimSuffix(sanitized, "```")
	sanitized = strings.Trim(sanitized, "`")
	sanitized = strings.TrimSpace(strings.TrimPrefix(sanitized, "json"))
	if sanitized == "" {
		return extract.Extraction{}, errors.New("empty llm response")
	}

	var raw struct {
		Summary   string          `json:"summary"`
		Decisions json.RawMessage `json:"decisions"`
		Actions   json.RawMessage `json:"actions"`
		Questions json.RawMessage `json:"questions"`
	}
	if err := json.Unmarshal([]byte(sanitized), &raw); err != nil {
		return extract.Extraction{}, err
	}

	return extract.Extraction{
		Summary:   strings.TrimSpace(raw.Summary),
		Decisions: coerceStringList(raw.Decisions),
		Actions:   coerceActionList(raw.Actions),
		Questions: coerceStringList(raw.Questions),
	}, nil
}

// coerceStringList accepts an array of strings, a single string, or
// anything else (treated as absent).
func coerceStringList(raw json.RawMessage) []string {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	switch raw[0] {
	case '[':
		var many []string
		if err := json.Unmarshal(raw, &many); err != nil {
			return nil
		}
		return dropEmpty(many)
	case '"':
		var single string
		if err := json.Unmarshal(raw, &single); err != nil {
			return nil
		}
		return dropEmpty([]string{single})
	default:
		return nil
	}
}

func coerceActionList(raw json.RawMessage) []extract.ActionItem {
	if len(raw) == 0 || string(raw) == "null" || raw[0] != '[' {
		return nil
	}
	var wire []struct {
		Owner string `json:"owner"`
		Task  string `json:"task"`
		Due   string `json:"due"`
	}
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil
	}
	out := make([]extract.ActionItem, 0, len(wire))
	for _, w := range wire {
		task := strings.TrimSpace(w.Task)
		if task == "" {
			continue
		}
		owner := strings.TrimSpace(w.Owner)
		if owner == "" {
			owner = extract.TBDOwner
		}
		out = append(out, extract.ActionItem{
			Owner: owner,
			Task:  task,
			Due:   strings.TrimSpace(w.Due),
		})
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func dropEmpty(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if clean := strings.TrimSpace(item); clean != "" {
			out = append(out, clean)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

var _ mailgen.Extractor = (*Remote)(nil)
