package event

import (
	"encoding/json"
	"errors"
	"testing"

	"heyo-service/model"
	"heyo-service/notification"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAcknowledger struct {
	acked    int
	nacked   int
	requeued bool
}

func (a *fakeAcknowledger) Ack(tag uint64, multiple bool) error {
	a.acked++
	return nil
}

func (a *fakeAcknowledger) Nack(tag uint64, multiple bool, requeue bool) error {
	a.nacked++
	a.requeued = requeue
	return nil
}

func (a *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	return nil
}

func delivery(ack amqp.Acknowledger, action string, body string, redelivered bool) amqp.Delivery {
	return amqp.Delivery{
		Acknowledger: ack,
		Headers:      amqp.Table{RabbitMQActionHeader: action},
		Body:         []byte(body),
		Redelivered:  redelivered,
	}
}

func TestDispatchAcksAfterHandler(t *testing.T) {
	ack := &fakeAcknowledger{}
	var seen string

	Dispatch("notifications", delivery(ack, "notification.created", `{}`, false), func(action string, body []byte) error {
		seen = action
		assert.Zero(t, ack.acked)
		return nil
	})

	assert.Equal(t, "notification.created", seen)
	assert.Equal(t, 1, ack.acked)
	assert.Zero(t, ack.nacked)
}

func TestDispatchRequeuesOnceOnFailure(t *testing.T) {
	failing := func(string, []byte) error { return errors.New("db down") }

	first := &fakeAcknowledger{}
	Dispatch("notifications", delivery(first, "notification.created", `{}`, false), failing)
	assert.Zero(t, first.acked)
	assert.Equal(t, 1, first.nacked)
	assert.True(t, first.requeued)

	second := &fakeAcknowledger{}
	Dispatch("notifications", delivery(second, "notification.created", `{}`, true), failing)
	assert.Equal(t, 1, second.nacked)
	assert.False(t, second.requeued)
}

func TestNotificationPublisher(t *testing.T) {
	var queue, action string
	var body []byte
	publisher := &NotificationPublisher{Publish: func(q string, a string, data []byte) error {
		queue, action, body = q, a, data
		return nil
	}}

	ref := uint(9)
	err := publisher.PublishNotification(notification.DTO{
		ID:          1,
		UserID:      2,
		Type:        model.NotificationNewMessage,
		Message:     "alice wysłał Ci wiadomość: hi",
		ReferenceID: &ref,
		Payload:     notification.NewMessage{MessageID: ref},
	})
	require.NoError(t, err)
	assert.Equal(t, NotificationsQueue, queue)
	assert.Equal(t, ActionNotificationCreated, action)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, float64(2), decoded["userId"])
	assert.Equal(t, "NEW_MESSAGE", decoded["type"])
	assert.Equal(t, map[string]interface{}{"messageId": float64(9)}, decoded["payload"])
}

func TestEmitWithoutChannel(t *testing.T) {
	assert.Error(t, Emit(NotificationsQueue, ActionNotificationCreated, []byte(`{}`)))
}
