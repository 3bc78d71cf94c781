package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	oa "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"cryptoTrends/internal/finance"
)

const systemPrompt = `You are a concise market analyst. You receive summary statistics comparing a cryptocurrency's daily opening price with its relative Google search popularity over the same period.
Write two or three plain sentences for a chart caption: describe how the price moved, whether search interest tracked it, and what the correlation suggests. Do not give trading advice. Do not use markdown.`

// Commentator writes short chart captions with the chat completions API.
type Commentator struct {
	cli   oa.Client
	model string
}

func NewCommentator(apiKey, model string, opts ...option.RequestOption) *Commentator {
	if model == "" {
		model = "gpt-4"
	}
	client := oa.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)
	return &Commentator{cli: client, model: model}
}

func (c *Commentator) Describe(ctx context.Context, s finance.Summary) (string, error) {
	resp, err := c.cli.Chat.Completions.New(ctx, oa.ChatCompletionNewParams{
		Model: shared.ChatModel(c.model),
		Messages: []oa.ChatCompletionMessageParamUnion{
			oa.SystemMessage(systemPrompt),
			oa.UserMessage(summaryPrompt(s)),
		},
		MaxTokens: oa.Int(200),
	})
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func summaryPrompt(s finance.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Currency: %s\n", strings.ToUpper(s.Name))
	fmt.Fprintf(&b, "Period: %s to %s (%d days with data)\n", s.First.Format(finance.DateLayout), s.Last.Format(finance.DateLayout), s.Points)
	fmt.Fprintf(&b, "Opening price: %s at start, %s at end\n", humanize.CommafWithDigits(s.FirstPrice, 2), humanize.CommafWithDigits(s.LastPrice, 2))
	fmt.Fprintf(&b, "Search popularity score range: %.0f to %.0f\n", s.MinTrend, s.MaxTrend)
	fmt.Fprintf(&b, "Pearson correlation between popularity and price: %.2f\n", s.Correlation)
	return b.String()
}
