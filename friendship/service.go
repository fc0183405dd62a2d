// Package friendship runs the friend request flow. Edges are only ever
// written through directory.AddFriendship and RemoveFriendship.
package friendship

import (
	"fmt"
	"log"

	"heyo-service/directory"
	"heyo-service/model"
	"heyo-service/notification"
	"heyo-service/utils"

	"gorm.io/gorm"
)

type Service struct {
	DB        *gorm.DB
	Directory *directory.Directory
	Sink      *notification.Sink
}

func NewService(db *gorm.DB, dir *directory.Directory, sink *notification.Sink) *Service {
	return &Service{DB: db, Directory: dir, Sink: sink}
}

func (s *Service) SendRequest(userID uint, friendID uint) error {
	if userID == friendID {
		return utils.BadRequest("Cannot send friend request to yourself")
	}

	user, err := s.Directory.FindByID(userID)
	if err != nil {
		return err
	}
	friend, err := s.Directory.FindByID(friendID)
	if err != nil {
		return err
	}

	already, err := s.Directory.AreFriends(user.ID, friend.ID)
	if err != nil {
		return err
	}
	if already {
		return utils.Conflict("User is already your friend")
	}

	request := notification.FriendRequest{SenderID: user.ID}
	pending, err := s.Sink.HasPending(friend.ID, request)
	if err != nil {
		return err
	}
	if pending {
		return utils.Conflict("Friend request already sent")
	}

	_, err = s.Sink.Create(friend.ID, user.ID, request,
		fmt.Sprintf("%s wysłał Ci zaproszenie do znajomych", user.Username))
	return err
}

// pendingRequest loads a friend request addressed to userID.
func (s *Service) pendingRequest(userID uint, notificationID uint) (*model.Notification, *model.User, error) {
	n, err := s.Sink.FindOwned(notificationID, userID)
	if err != nil {
		return nil, nil, err
	}

	request, ok := notification.Decode(*n).(notification.FriendRequest)
	if !ok {
		return nil, nil, utils.BadRequest("Invalid notification type")
	}

	sender, err := s.Directory.FindByID(request.SenderID)
	if err != nil {
		return nil, nil, err
	}
	return n, sender, nil
}

// Accept adds the friendship and consumes the request in one transaction.
func (s *Service) Accept(userID uint, notificationID uint) error {
	user, err := s.Directory.FindByID(userID)
	if err != nil {
		return err
	}

	n, sender, err := s.pendingRequest(user.ID, notificationID)
	if err != nil {
		return err
	}

	already, err := s.Directory.AreFriends(user.ID, sender.ID)
	if err != nil {
		return err
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if !already {
			if err := directory.New(tx).AddFriendship(user.ID, sender.ID); err != nil {
				return err
			}
		}
		return notification.NewSink(tx, nil).Delete(n.ID)
	})
	if err != nil || already {
		return err
	}

	s.notify(sender.ID, user.ID,
		notification.FriendRequestAccepted{AccepterID: user.ID},
		fmt.Sprintf("%s zaakceptował Twoje zaproszenie do znajomych", user.Username))
	return nil
}

// Decline consumes the request. Friend sets are untouched.
func (s *Service) Decline(userID uint, notificationID uint) error {
	user, err := s.Directory.FindByID(userID)
	if err != nil {
		return err
	}

	n, sender, err := s.pendingRequest(user.ID, notificationID)
	if err != nil {
		return err
	}

	if err := s.Sink.Delete(n.ID); err != nil {
		return err
	}

	s.notify(sender.ID, user.ID,
		notification.FriendRequestDeclined{DeclinerID: user.ID},
		fmt.Sprintf("%s odrzucił Twoje zaproszenie do znajomych", user.Username))
	return nil
}

func (s *Service) Remove(userID uint, friendID uint) error {
	if _, err := s.Directory.FindByID(friendID); err != nil {
		return err
	}

	ok, err := s.Directory.AreFriends(userID, friendID)
	if err != nil {
		return err
	}
	if !ok {
		return utils.BadRequest("User is not your friend")
	}

	return s.Directory.RemoveFriendship(userID, friendID)
}

func (s *Service) Friends(userID uint) ([]directory.UserDTO, error) {
	friends, err := s.Directory.Friends(userID)
	if err != nil {
		return nil, err
	}
	return directory.ToDTOs(friends), nil
}

func (s *Service) notify(targetID uint, actorID uint, payload notification.Payload, message string) {
	if _, err := s.Sink.Create(targetID, actorID, payload, message); err != nil {
		log.Printf("[friendship] failed to create %s notification for user %d: %v", payload.Type(), targetID, err)
	}
}
