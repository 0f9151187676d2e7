// Package openai converts chat history into OpenAI Chat Completions message
// params (github.com/openai/openai-go).
package openai

import (
	"github.com/openai/openai-go"

	"github.com/hupe1980/chatmemory/core"
	"github.com/hupe1980/chatmemory/model"
)

// Options configure the conversion.
type Options struct {
	// System, when set, is emitted as a leading system message.
	System string
	// MergeConsecutive joins adjacent same-role messages.
	MergeConsecutive bool
}

// Messages converts msgs into Chat Completions message params.
func Messages(msgs []core.Message, optFns ...func(o *Options)) []openai.ChatCompletionMessageParamUnion {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	turns := model.Turns(msgs, func(o *model.Options) { o.MergeConsecutive = opts.MergeConsecutive })
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(turns)+1)
	if opts.System != "" {
		out = append(out, openai.SystemMessage(opts.System))
	}
	for _, t := range turns {
		if t.Role == model.RoleAssistant {
			out = append(out, openai.AssistantMessage(t.Text))
			continue
		}
		out = append(out, openai.UserMessage(t.Text))
	}
	return out
}

// NewParams builds a Chat Completions request for chatModel from msgs.
func NewParams(chatModel string, msgs []core.Message, optFns ...func(o *Options)) openai.ChatCompletionNewParams {
	return openai.ChatCompletionNewParams{
		Model:    chatModel,
		Messages: Messages(msgs, optFns...),
	}
}
