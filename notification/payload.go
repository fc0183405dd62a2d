package notification

import "heyo-service/model"

// Payload is what a notification points at. Each notification type has its
// own variant, so the meaning of the stored reference never has to be guessed.
type Payload interface {
	Type() model.NotificationType
	reference() uint
}

type NewMessage struct {
	MessageID uint `json:"messageId"`
}

type NewChat struct {
	InitiatorID uint `json:"initiatorId"`
}

type FriendRequest struct {
	SenderID uint `json:"senderId"`
}

type FriendRequestAccepted struct {
	AccepterID uint `json:"accepterId"`
}

type FriendRequestDeclined struct {
	DeclinerID uint `json:"declinerId"`
}

type NewPost struct {
	PostID uint `json:"postId"`
}

type NewComment struct {
	PostID uint `json:"postId"`
}

type NewLike struct {
	PostID uint `json:"postId"`
}

type NewFollower struct {
	FollowerID uint `json:"followerId"`
}

type NewEvent struct {
	EventID uint `json:"eventId"`
}

type EventReminder struct {
	EventID uint `json:"eventId"`
}

type Birthday struct {
	UserID uint `json:"userId"`
}

func (NewMessage) Type() model.NotificationType { return model.NotificationNewMessage }
func (NewChat) Type() model.NotificationType { return model.NotificationNewChat }
func (FriendRequest) Type() model.NotificationType { return model.NotificationFriendRequest }
func (FriendRequestAccepted) Type() model.NotificationType { return model.NotificationFriendRequestAccepted }
func (FriendRequestDeclined) Type() model.NotificationType { return model.NotificationFriendRequestDeclined }
func (NewPost) Type() model.NotificationType { return model.NotificationNewPost }
func (NewComment) Type() model.NotificationType { return model.NotificationNewComment }
func (NewLike) Type() model.NotificationType { return model.NotificationNewLike }
func (NewFollower) Type() model.NotificationType { return model.NotificationNewFollower }
func (NewEvent) Type() model.NotificationType { return model.NotificationNewEvent }
func (EventReminder) Type() model.NotificationType { return model.NotificationEventReminder }
func (Birthday) Type() model.NotificationType { return model.NotificationBirthday }

func (p NewMessage) reference() uint { return p.MessageID }
func (p NewChat) reference() uint { return p.InitiatorID }
func (p FriendRequest) reference() uint { return p.SenderID }
func (p FriendRequestAccepted) reference() uint { return p.AccepterID }
func (p FriendRequestDeclined) reference() uint { return p.DeclinerID }
func (p NewPost) reference() uint { return p.PostID }
func (p NewComment) reference() uint { return p.PostID }
func (p NewLike) reference() uint { return p.PostID }
func (p NewFollower) reference() uint { return p.FollowerID }
func (p NewEvent) reference() uint { return p.EventID }
func (p EventReminder) reference() uint { return p.EventID }
func (p Birthday) reference() uint { return p.UserID }

// Decode restores the payload of a stored notification. Unknown types yield nil.
func Decode(n model.Notification) Payload {
	var ref uint
	if n.ReferenceID != nil {
		ref = *n.ReferenceID
	}

	switch n.Type {
	case model.NotificationNewMessage:
		return NewMessage{MessageID: ref}
	case model.NotificationNewChat:
		return NewChat{InitiatorID: ref}
	case model.NotificationFriendRequest:
		return FriendRequest{SenderID: ref}
	case model.NotificationFriendRequestAccepted:
		return FriendRequestAccepted{AccepterID: ref}
	case model.NotificationFriendRequestDeclined:
		return FriendRequestDeclined{DeclinerID: ref}
	case model.NotificationNewPost:
		return NewPost{PostID: ref}
	case model.NotificationNewComment:
		return NewComment{PostID: ref}
	case model.NotificationNewLike:
		return NewLike{PostID: ref}
	case model.NotificationNewFollower:
		return NewFollower{FollowerID: ref}
	case model.NotificationNewEvent:
		return NewEvent{EventID: ref}
	case model.NotificationEventReminder:
		return EventReminder{EventID: ref}
	case model.NotificationBirthday:
		return Birthday{UserID: ref}
	}
	return nil
}
