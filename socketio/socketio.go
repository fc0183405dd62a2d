package socketio

import (
	"context"
	"log"
	"time"

	"heyo-service/realtime"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/redis/go-redis/v9"
	enginelog "github.com/zishang520/engine.io/v2/log"
	"github.com/zishang520/socket.io-go-redis/adapter"
	r_type "github.com/zishang520/socket.io-go-redis/types"
	"github.com/zishang520/socket.io/v2/socket"
)

// Init mounts socket.io on app. Connections must present an access token in
// the "token" query parameter; on success the socket joins the room named
// after its username and carries a *realtime.Session as its data.
func Init(app *fiber.App, auth *realtime.Authenticator, redisClient *redis.Client) *socket.Server {
	enginelog.DEBUG = false

	options := socket.DefaultServerOptions()
	options.SetServeClient(true)
	options.SetAllowEIO3(true)
	options.SetPingInterval(25 * time.Second)
	options.SetPingTimeout(20 * time.Second)
	options.SetMaxHttpBufferSize(1000000)
	options.SetConnectTimeout(5 * time.Second)
	if redisClient != nil {
		options.SetAdapter(&adapter.RedisAdapterBuilder{
			Redis: r_type.NewRedisClient(context.Background(), redisClient),
			Opts:  &adapter.RedisAdapterOptions{},
		})
	}

	server := socket.NewServer(nil, options)

	server.Use(func(client *socket.Socket, next func(*socket.ExtendedError)) {
		token, _ := client.Conn().Request().Query().Get("token")
		next(handshake(auth, token, func(session *realtime.Session) {
			client.SetData(session)
			client.Join(socket.Room(session.Username))
		}))
	})

	app.Get("/socket.io/", adaptor.HTTPHandler(server.ServeHandler(options)))
	app.Post("/socket.io/", adaptor.HTTPHandler(server.ServeHandler(options)))

	return server
}

// handshake authenticates token and hands the session to bind. A rejected
// handshake binds nothing and returns the error sent to the client.
func handshake(auth *realtime.Authenticator, token string, bind func(*realtime.Session)) *socket.ExtendedError {
	session, err := auth.Authenticate(token)
	if err != nil {
		log.Printf("[realtime] handshake rejected: %v", err)
		return socket.NewExtendedError("Authentication failed", nil)
	}

	bind(session)
	return nil
}

// Emitter pushes to rooms on server. With the redis adapter a room spans
// every node.
type Emitter struct {
	Server *socket.Server
}

func (e Emitter) Emit(room string, event string, payload any) {
	e.Server.To(socket.Room(room)).Emit(event, payload)
}
