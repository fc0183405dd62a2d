package realtime

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"

	"heyo-service/utils"
)

// Per-user outbound channels. Each is a socket.io event name.
const (
	ChannelMessages      = "messages"
	ChannelTyping        = "typing"
	ChannelStatus        = "status"
	ChannelErrors        = "errors"
	ChannelNotifications = "notifications"
)

// Inbound events.
const (
	EventChatSend    = "chat.send"
	EventChatTyping  = "chat.typing"
	EventUserOnline  = "user.online"
	EventUserOffline = "user.offline"
)

// ID accepts both 5 and "5" on the wire.
type ID uint

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	n, err := strconv.ParseUint(string(data), 10, 64)
	if err != nil {
		return errors.New("invalid id")
	}
	*id = ID(n)
	return nil
}

type SendFrame struct {
	ReceiverID ID     `json:"receiverId"`
	Content    string `json:"content"`
}

type TypingRequest struct {
	ReceiverID ID `json:"receiverId"`
}

type TypingFrame struct {
	UserID   uint   `json:"userId"`
	Username string `json:"username"`
}

type StatusFrame struct {
	UserID uint `json:"userId"`
	Online bool `json:"online"`
}

type ErrorFrame struct {
	Error    string `json:"error"`
	Type     string `json:"type"`
	Category string `json:"category"`
}

// NewErrorFrame builds the error sent back for a failed action of kind typ.
func NewErrorFrame(typ string, err error) ErrorFrame {
	return ErrorFrame{
		Error:    utils.Message(err),
		Type:     typ,
		Category: utils.Category(err),
	}
}

// Decode converts a decoded socket.io argument into v.
func Decode(arg interface{}, v interface{}) error {
	if arg == nil {
		return utils.BadRequest("Missing payload")
	}

	var raw []byte
	switch a := arg.(type) {
	case string:
		raw = []byte(a)
	case []byte:
		raw = a
	default:
		b, err := json.Marshal(a)
		if err != nil {
			return utils.BadRequest("Malformed payload")
		}
		raw = b
	}

	if err := json.Unmarshal(raw, v); err != nil {
		return utils.BadRequest("Malformed payload")
	}
	return nil
}
