package core

import (
	"encoding/json"
	"fmt"
)

// Role tags the author of a chat turn.
type Role string

const (
	// RoleHuman marks user-authored turns.
	RoleHuman Role = "human"
	// RoleAI marks model-authored turns.
	RoleAI Role = "ai"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool { return r == RoleHuman || r == RoleAI }

// ChatTurn is the caller-facing input unit for appends.
type ChatTurn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// HumanTurn is a convenience constructor for a human ChatTurn.
func HumanTurn(text string) ChatTurn { return ChatTurn{Role: RoleHuman, Text: text} }

// AITurn is a convenience constructor for an AI ChatTurn.
func AITurn(text string) ChatTurn { return ChatTurn{Role: RoleAI, Text: text} }

// Message is a decoded chat message. The set of implementations is closed:
// HumanMessage and AIMessage.
type Message interface {
	Type() Role
	GetContent() string
	isMessage()
}

// HumanMessage is a message authored by the user.
type HumanMessage struct {
	Content string
}

// Type returns RoleHuman.
func (HumanMessage) Type() Role { return RoleHuman }

// GetContent returns the message text.
func (m HumanMessage) GetContent() string { return m.Content }

func (HumanMessage) isMessage() {}

// AIMessage is a message authored by the model.
type AIMessage struct {
	Content string
}

// Type returns RoleAI.
func (AIMessage) Type() Role { return RoleAI }

// GetContent returns the message text.
func (m AIMessage) GetContent() string { return m.Content }

func (AIMessage) isMessage() {}

// NewMessage builds the Message variant for role.
func NewMessage(role Role, content string) (Message, error) {
	switch role {
	case RoleHuman:
		return HumanMessage{Content: content}, nil
	case RoleAI:
		return AIMessage{Content: content}, nil
	default:
		return nil, fmt.Errorf("unknown role %q", role)
	}
}

// Message converts the turn into its Message variant.
func (t ChatTurn) Message() (Message, error) { return NewMessage(t.Role, t.Text) }

// StoredMessageData is the data section of a StoredMessage.
type StoredMessageData struct {
	Content          string         `json:"content"`
	Role             string         `json:"role,omitempty"`
	Name             string         `json:"name,omitempty"`
	AdditionalKwargs map[string]any `json:"additional_kwargs"`
	ResponseMetadata map[string]any `json:"response_metadata,omitempty"`
}

// StoredMessage is the record written as one list entry per message:
//
//	{"type":"human","data":{"content":"hi","additional_kwargs":{}}}
type StoredMessage struct {
	Type string            `json:"type"`
	Data StoredMessageData `json:"data"`
}

// ToStored converts a Message into its wire record.
func ToStored(m Message) StoredMessage {
	return StoredMessage{
		Type: string(m.Type()),
		Data: StoredMessageData{Content: m.GetContent(), AdditionalKwargs: map[string]any{}},
	}
}

// FromStored validates a wire record and returns the matching Message.
func FromStored(sm StoredMessage) (Message, error) {
	switch Role(sm.Type) {
	case RoleHuman:
		return HumanMessage{Content: sm.Data.Content}, nil
	case RoleAI:
		return AIMessage{Content: sm.Data.Content}, nil
	case "":
		return nil, &MalformedRecordError{Index: -1, Reason: "missing type"}
	default:
		return nil, &MalformedRecordError{Index: -1, Reason: fmt.Sprintf("unknown type %q", sm.Type)}
	}
}

// EncodeMessage returns the JSON list entry for m.
func EncodeMessage(m Message) (string, error) {
	b, err := json.Marshal(ToStored(m))
	if err != nil {
		return "", fmt.Errorf("encode message: %w", err)
	}
	return string(b), nil
}

// wireRecord mirrors StoredMessage with a raw content field so that a
// missing or non-string content can be told apart from an empty string.
type wireRecord struct {
	Type string `json:"type"`
	Data *struct {
		Content          json.RawMessage `json:"content"`
		Role             string          `json:"role"`
		Name             string          `json:"name"`
		AdditionalKwargs map[string]any  `json:"additional_kwargs"`
		ResponseMetadata map[string]any  `json:"response_metadata"`
	} `json:"data"`
}

// DecodeStored parses and validates one list entry. Every failure is a
// *MalformedRecordError.
func DecodeStored(raw string) (StoredMessage, error) {
	var rec wireRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return StoredMessage{}, &MalformedRecordError{Index: -1, Raw: raw, Reason: "invalid json", Err: err}
	}
	if !Role(rec.Type).Valid() {
		reason := fmt.Sprintf("unknown type %q", rec.Type)
		if rec.Type == "" {
			reason = "missing type"
		}
		return StoredMessage{}, &MalformedRecordError{Index: -1, Raw: raw, Reason: reason}
	}
	if rec.Data == nil || len(rec.Data.Content) == 0 || string(rec.Data.Content) == "null" {
		return StoredMessage{}, &MalformedRecordError{Index: -1, Raw: raw, Reason: "missing data.content"}
	}
	var content string
	if err := json.Unmarshal(rec.Data.Content, &content); err != nil {
		return StoredMessage{}, &MalformedRecordError{Index: -1, Raw: raw, Reason: "data.content is not a string"}
	}
	return StoredMessage{
		Type: rec.Type,
		Data: StoredMessageData{
			Content:          content,
			Role:             rec.Data.Role,
			Name:             rec.Data.Name,
			AdditionalKwargs: rec.Data.AdditionalKwargs,
			ResponseMetadata: rec.Data.ResponseMetadata,
		},
	}, nil
}

// DecodeMessage parses one list entry into a Message.
func DecodeMessage(raw string) (Message, error) {
	sm, err := DecodeStored(raw)
	if err != nil {
		return nil, err
	}
	return FromStored(sm)
}
