package event

import (
	"encoding/json"

	"heyo-service/notification"
)

const (
	NotificationsQueue        = "notifications"
	ActionNotificationCreated = "notification.created"
)

// NotificationPublisher sends committed notifications to the notifications
// queue. Publish defaults to Emit.
type NotificationPublisher struct {
	Publish func(queue string, action string, data []byte) error
}

func NewNotificationPublisher() *NotificationPublisher {
	return &NotificationPublisher{Publish: Emit}
}

func (p *NotificationPublisher) PublishNotification(n notification.DTO) error {
	body, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return p.Publish(NotificationsQueue, ActionNotificationCreated, body)
}
