// Package realtime routes inbound socket frames to the chat service and the
// directory, and pushes results to per-user rooms.
package realtime

import (
	"log"

	"heyo-service/chat"
	"heyo-service/directory"
)

// Session is the identity bound to one connection at handshake time.
// Every frame on that connection is handled as this user.
type Session struct {
	UserID   uint
	Username string
}

// Pusher delivers an event to every connection joined to room. Rooms are
// named after usernames. Delivery is fire-and-forget.
type Pusher interface {
	Emit(room string, event string, payload any)
}

type Gateway struct {
	Chat      *chat.Service
	Directory *directory.Directory
	Pusher    Pusher
}

func NewGateway(chatService *chat.Service, dir *directory.Directory, pusher Pusher) *Gateway {
	return &Gateway{Chat: chatService, Directory: dir, Pusher: pusher}
}

// Send stores the message and echoes it to both parties. A failure is
// reported to the sender only.
func (g *Gateway) Send(session *Session, frame SendFrame) {
	msg, err := g.Chat.SendMessage(session.UserID, uint(frame.ReceiverID), frame.Content)
	if err != nil {
		log.Printf("[realtime] %s: send to %d failed: %v", session.Username, frame.ReceiverID, err)
		g.Fail(session, "MESSAGE_ERROR", err)
		return
	}
	g.Deliver(msg)
}

// Deliver pushes a stored message to the receiver and the sender.
func (g *Gateway) Deliver(msg *chat.MessageDTO) {
	g.Pusher.Emit(msg.ReceiverUsername, ChannelMessages, msg)
	g.Pusher.Emit(msg.SenderUsername, ChannelMessages, msg)
}

// Fail pushes an error frame to the session's own room.
func (g *Gateway) Fail(session *Session, typ string, err error) {
	g.Pusher.Emit(session.Username, ChannelErrors, NewErrorFrame(typ, err))
}

// Typing is ephemeral. An unknown receiver is dropped.
func (g *Gateway) Typing(session *Session, frame TypingRequest) {
	receiver, err := g.Directory.FindByID(uint(frame.ReceiverID))
	if err != nil {
		log.Printf("[realtime] %s: typing to %d dropped: %v", session.Username, frame.ReceiverID, err)
		return
	}

	g.Pusher.Emit(receiver.Username, ChannelTyping, TypingFrame{
		UserID:   session.UserID,
		Username: session.Username,
	})
}

func (g *Gateway) Online(session *Session) {
	g.setPresence(session, true)
}

func (g *Gateway) Offline(session *Session) {
	g.setPresence(session, false)
}

// setPresence persists the flag, then tells each friend individually.
func (g *Gateway) setPresence(session *Session, online bool) {
	if err := g.Directory.SetPresence(session.UserID, online); err != nil {
		log.Printf("[realtime] %s: presence update failed: %v", session.Username, err)
		g.Fail(session, "STATUS_ERROR", err)
		return
	}

	friends, err := g.Directory.Friends(session.UserID)
	if err != nil {
		log.Printf("[realtime] %s: loading friends failed: %v", session.Username, err)
		return
	}

	status := StatusFrame{UserID: session.UserID, Online: online}
	for _, friend := range friends {
		g.Pusher.Emit(friend.Username, ChannelStatus, status)
	}
}
