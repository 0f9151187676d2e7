package openai

import (
	"testing"

	"github.com/openai/openai-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ctu "github.com/hupe1980/chatmemory/internal/testutil"
)

func TestMessages(t *testing.T) {
	msgs := ctu.NewConversationBuilder().Human("hi").AI("hello").Human("bye").Messages()

	out := Messages(msgs, func(o *Options) { o.System = "be brief" })
	require.Len(t, out, 4)
	require.NotNil(t, out[0].OfSystem)
	require.NotNil(t, out[1].OfUser)
	assert.Equal(t, "hi", out[1].OfUser.Content.OfString.Value)
	require.NotNil(t, out[2].OfAssistant)
	assert.Equal(t, "hello", out[2].OfAssistant.Content.OfString.Value)
	require.NotNil(t, out[3].OfUser)
}

func TestMessages_Merge(t *testing.T) {
	msgs := ctu.NewConversationBuilder().Human("a").Human("b").AI("c").Messages()
	out := Messages(msgs, func(o *Options) { o.MergeConsecutive = true })
	require.Len(t, out, 2)
	assert.Equal(t, "a\nb", out[0].OfUser.Content.OfString.Value)
}

func TestNewParams(t *testing.T) {
	msgs := ctu.NewConversationBuilder().Human("hi").Messages()
	params := NewParams(openai.ChatModelGPT4oMini, msgs)
	assert.Equal(t, openai.ChatModelGPT4oMini, params.Model)
	assert.Len(t, params.Messages, 1)
}
