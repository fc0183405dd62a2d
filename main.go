package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"heyo-service/chat"
	"heyo-service/config"
	"heyo-service/controller"
	"heyo-service/conversation"
	"heyo-service/database"
	"heyo-service/directory"
	"heyo-service/event"
	"heyo-service/event/listener"
	"heyo-service/friendship"
	"heyo-service/notification"
	"heyo-service/realtime"
	"heyo-service/router"
	"heyo-service/socketio"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	log.SetPrefix("heyo-service: ")

	rest := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		StrictRouting:         true,
		AppName:               "heyo-service",
	})

	rest.Use(cors.New())

	database.RedisConnect()
	database.DatabaseConnect()

	enforcer, err := database.Casbin(database.DB)
	if err != nil {
		panic(fmt.Sprintf("failed to create casbin enforcer: %v", err))
	}

	event.InitJournal()
	event.RabbitMQConnect([]string{
		event.NotificationsQueue,
	})

	dir := directory.New(database.DB)
	sink := notification.NewSink(database.DB, event.NewNotificationPublisher())
	chatService := chat.NewService(dir, conversation.NewStore(database.DB), sink)

	socket := socketio.Init(rest, realtime.NewAuthenticator(dir), database.Redis[database.RedisSockets])
	pusher := socketio.Emitter{Server: socket}
	gateway := realtime.NewGateway(chatService, dir, pusher)

	// Push committed notifications to their owners
	event.RabbitMQSubscribe([]event.RabbitMQSubscribeListener{
		{
			Queue:   event.NotificationsQueue,
			Handler: listener.Notifications(dir, pusher),
		},
	})

	router.Rest(rest, &controller.Handler{
		Directory:  dir,
		Chat:       chatService,
		Friendship: friendship.NewService(database.DB, dir, sink),
		Sink:       sink,
		Gateway:    gateway,
		Tokens:     database.RefreshTokens{Client: database.Redis[database.RedisTokens]},
		Enforcer:   enforcer,
	})
	router.Socket(socket, gateway)

	go func() {
		if err := rest.Listen(fmt.Sprintf(":%s", config.Config("SERVER_PORT"))); err != nil {
			log.Printf("server stopped: %v", err)
		}
	}()

	exit := make(chan struct{})
	SignalC := make(chan os.Signal, 1)

	signal.Notify(SignalC, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		for s := range SignalC {
			switch s {
			case syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT:
				close(exit)
				return
			}
		}
	}()

	<-exit
	socket.Close(nil)
	rest.Shutdown()
	event.Close()
	event.CloseJournal()
	os.Exit(0)
}
