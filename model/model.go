package model

import (
	"strings"

	"github.com/hupe1980/chatmemory/core"
)

// Provider role names.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is a provider-neutral chat message.
type Turn struct {
	Role string
	Text string
}

// Options control how messages are mapped to turns.
type Options struct {
	// MergeConsecutive joins adjacent turns of the same role with Separator.
	MergeConsecutive bool
	// SkipEmpty drops empty messages before merging.
	SkipEmpty bool
	Separator string
}

// ProviderRole maps a message role to the provider role name.
func ProviderRole(r core.Role) string {
	if r == core.RoleAI {
		return RoleAssistant
	}
	return RoleUser
}

// Turns maps msgs onto provider turns.
func Turns(msgs []core.Message, optFns ...func(o *Options)) []Turn {
	opts := Options{Separator: "\n"}
	for _, fn := range optFns {
		fn(&opts)
	}
	out := make([]Turn, 0, len(msgs))
	for _, m := range msgs {
		if opts.SkipEmpty && m.GetContent() == "" {
			continue
		}
		role := ProviderRole(m.Type())
		if opts.MergeConsecutive && len(out) > 0 && out[len(out)-1].Role == role {
			prev := &out[len(out)-1]
			switch {
			case prev.Text == "":
				prev.Text = m.GetContent()
			case m.GetContent() != "":
				prev.Text = strings.Join([]string{prev.Text, m.GetContent()}, opts.Separator)
			}
			continue
		}
		out = append(out, Turn{Role: role, Text: m.GetContent()})
	}
	return out
}
