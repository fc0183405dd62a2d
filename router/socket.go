package router

import (
	"log"

	"heyo-service/realtime"
	"heyo-service/utils"

	"github.com/zishang520/socket.io/v2/socket"
)

func Socket(server *socket.Server, gateway *realtime.Gateway) {
	server.On("connection", func(clients ...interface{}) {
		client := clients[0].(*socket.Socket)

		conn := &connection{
			id:      string(client.Id()),
			data:    client.Data,
			reply:   func(event string, payload any) { client.Emit(event, payload) },
			gateway: gateway,
		}

		client.On(realtime.EventChatSend, conn.chatSend)
		client.On(realtime.EventChatTyping, conn.chatTyping)
		client.On(realtime.EventUserOnline, conn.userOnline)
		client.On(realtime.EventUserOffline, conn.userOffline)
	})
}

// connection routes the frames of one socket to the gateway.
type connection struct {
	id string
	// data returns what the handshake bound to the socket.
	data func() any
	// reply emits on this socket only.
	reply   func(event string, payload any)
	gateway *realtime.Gateway
}

func (c *connection) chatSend(args ...any) {
	session, ok := c.session()
	if !ok {
		return
	}

	var frame realtime.SendFrame
	if err := realtime.Decode(firstArg(args), &frame); err != nil {
		c.gateway.Fail(session, "MESSAGE_ERROR", err)
		return
	}
	c.gateway.Send(session, frame)
}

func (c *connection) chatTyping(args ...any) {
	session, ok := c.session()
	if !ok {
		return
	}

	var frame realtime.TypingRequest
	if err := realtime.Decode(firstArg(args), &frame); err != nil {
		log.Printf("[realtime] %s: malformed typing frame: %v", session.Username, err)
		return
	}
	c.gateway.Typing(session, frame)
}

func (c *connection) userOnline(args ...any) {
	if session, ok := c.session(); ok {
		c.gateway.Online(session)
	}
}

func (c *connection) userOffline(args ...any) {
	if session, ok := c.session(); ok {
		c.gateway.Offline(session)
	}
}

// session reads the identity bound at handshake. A socket without one is
// told so and its frame is dropped.
func (c *connection) session() (*realtime.Session, bool) {
	session, ok := c.data().(*realtime.Session)
	if ok && session != nil {
		return session, true
	}

	log.Printf("[realtime] frame on socket %s without a session", c.id)
	c.reply(realtime.ChannelErrors, realtime.NewErrorFrame(
		"UNAUTHENTICATED",
		utils.Unauthenticated("Connection is not authenticated"),
	))
	return nil, false
}

func firstArg(args []any) any {
	if len(args) == 0 {
		return nil
	}
	return args[0]
}
