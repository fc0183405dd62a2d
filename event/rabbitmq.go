package event

import (
	"context"
	"fmt"
	"log"
	"time"

	"heyo-service/config"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Handler processes one consumed event. Returning an error requeues it.
type Handler func(action string, body []byte) error

type RabbitMQSubscribeListener struct {
	Queue   string
	Handler Handler
}

const RabbitMQActionHeader string = "x-action"

var (
	RabbitMQConnection *amqp.Connection
	RabbitMQChannel    *amqp.Channel
	RabbitMQQueue      = make(map[string]amqp.Queue)
)

func RabbitMQConnect(queues []string) {
	var err error

	RabbitMQConnection, err = amqp.Dial(fmt.Sprintf(
		"amqp://%s:%s@%s:%s/",
		config.Config("RABBITMQ_USER"),
		config.Config("RABBITMQ_PASSWORD"),
		config.Config("RABBITMQ_HOST"),
		config.Config("RABBITMQ_PORT"),
	))
	if err != nil {
		panic(fmt.Sprintf("failed to connect to RabbitMQ: %v", err))
	}
	log.Printf("connection opened to RabbitMQ server")

	RabbitMQChannel, err = RabbitMQConnection.Channel()
	if err != nil {
		panic(fmt.Sprintf("failed to open a RabbitMQ channel: %v", err))
	}
	log.Printf("opened a RabbitMQ channel")

	for _, name := range queues {
		queue, err := RabbitMQChannel.QueueDeclare(
			name,  // name
			true,  // durable
			false, // delete when unused
			false, // exclusive
			false, // no-wait
			nil,   // arguments
		)
		if err != nil {
			panic(fmt.Sprintf("failed to declare RabbitMQ queue %s: %v", name, err))
		}

		RabbitMQQueue[name] = queue
		log.Printf("success declare a RabbitMQ queue: %s", name)
	}
}

func RabbitMQSubscribe(listeners []RabbitMQSubscribeListener) {
	for _, listener := range listeners {
		msgs, err := RabbitMQChannel.Consume(
			listener.Queue, // queue
			"",             // consumer
			false,          // auto-ack
			false,          // exclusive
			false,          // no-local
			false,          // no-wait
			nil,            // args
		)
		if err != nil {
			panic(fmt.Sprintf("failed to register a consumer on %s: %v", listener.Queue, err))
		}
		log.Printf("success subscribe to RabbitMQ [%s] queue", listener.Queue)

		go func(listener RabbitMQSubscribeListener) {
			for msg := range msgs {
				Dispatch(listener.Queue, msg, listener.Handler)
			}
		}(listener)
	}
}

// Dispatch hands msg to handler and acknowledges only after it succeeds, so a
// crash or failure before that redelivers the event.
func Dispatch(queue string, msg amqp.Delivery, handler Handler) {
	action, _ := msg.Headers[RabbitMQActionHeader].(string)
	InLog(queue, action, msg.Body)

	if err := handler(action, msg.Body); err != nil {
		log.Printf("[event] %s/%s failed, requeueing: %v", queue, action, err)
		if err := msg.Nack(false, !msg.Redelivered); err != nil {
			log.Printf("[event] nack failed: %v", err)
		}
		return
	}

	if err := msg.Ack(false); err != nil {
		log.Printf("[event] ack failed: %v", err)
	}
}

func Emit(queue string, action string, data []byte) error {
	if RabbitMQChannel == nil {
		return fmt.Errorf("RabbitMQ channel is not open")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := RabbitMQChannel.PublishWithContext(
		ctx,
		"",    // exchange
		queue, // routing key
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Headers: amqp.Table{
				RabbitMQActionHeader: action,
			},
			Body: data,
		},
	)
	if err != nil {
		return err
	}

	OutLog(queue, action, data)
	return nil
}

func Close() {
	if RabbitMQChannel != nil {
		RabbitMQChannel.Close()
	}
	if RabbitMQConnection != nil {
		RabbitMQConnection.Close()
	}
}
