package model

import "time"

type NotificationType string

const (
	NotificationNewPost               NotificationType = "NEW_POST"
	NotificationNewComment            NotificationType = "NEW_COMMENT"
	NotificationNewLike               NotificationType = "NEW_LIKE"
	NotificationNewFollower           NotificationType = "NEW_FOLLOWER"
	NotificationNewEvent              NotificationType = "NEW_EVENT"
	NotificationEventReminder         NotificationType = "EVENT_REMINDER"
	NotificationBirthday              NotificationType = "BIRTHDAY"
	NotificationFriendRequest         NotificationType = "FRIEND_REQUEST"
	NotificationFriendRequestAccepted NotificationType = "FRIEND_REQUEST_ACCEPTED"
	NotificationFriendRequestDeclined NotificationType = "FRIEND_REQUEST_DECLINED"
	NotificationNewMessage            NotificationType = "NEW_MESSAGE"
	NotificationNewChat               NotificationType = "NEW_CHAT"
)

// Notification row. ReferenceID is the storage column behind the typed
// payloads in package notification and should not be interpreted directly.
type Notification struct {
	ID          uint             `gorm:"primaryKey"`
	UserID      uint             `gorm:"not null;index:idx_notification_inbox,priority:1;index:idx_notification_ref,priority:1"`
	ActorID     *uint
	Actor       *User            `gorm:"foreignKey:ActorID"`
	Type        NotificationType `gorm:"type:varchar(32);not null;index:idx_notification_ref,priority:2"`
	Message     string           `gorm:"type:text;not null"`
	ReferenceID *uint            `gorm:"index:idx_notification_ref,priority:3"`
	Read        bool             `gorm:"not null;default:false;index:idx_notification_inbox,priority:2"`
	CreatedAt   time.Time        `gorm:"index:idx_notification_inbox,priority:3"`
}
