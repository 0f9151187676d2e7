// Package anthropic converts chat history into Anthropic Messages API params
// (github.com/anthropics/anthropic-sdk-go).
package anthropic

import (
	"github.com/anthropics/anthropic-sdk-go"

	"github.com/hupe1980/chatmemory/core"
	"github.com/hupe1980/chatmemory/model"
)

// Messages converts msgs into message params. Empty messages are dropped
// (the API rejects empty text blocks) and consecutive same-role messages are
// merged into one turn.
func Messages(msgs []core.Message) []anthropic.MessageParam {
	turns := model.Turns(msgs, func(o *model.Options) {
		o.MergeConsecutive = true
		o.SkipEmpty = true
	})
	out := make([]anthropic.MessageParam, 0, len(turns))
	for _, t := range turns {
		block := anthropic.NewTextBlock(t.Text)
		if t.Role == model.RoleAssistant {
			out = append(out, anthropic.NewAssistantMessage(block))
			continue
		}
		out = append(out, anthropic.NewUserMessage(block))
	}
	return out
}

// NewParams builds a Messages request for chatModel with an optional system
// prompt.
func NewParams(chatModel anthropic.Model, maxTokens int64, system string, msgs []core.Message) anthropic.MessageNewParams {
	params := anthropic.MessageNewParams{
		Model:     chatModel,
		MaxTokens: maxTokens,
		Messages:  Messages(msgs),
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	return params
}
