// Package notification stores typed notifications and hands them to a
// Publisher for live delivery.
package notification

import (
	"errors"
	"log"
	"time"

	"heyo-service/model"
	"heyo-service/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Publisher forwards a committed notification to its owner's live channels.
type Publisher interface {
	PublishNotification(n DTO) error
}

type DTO struct {
	ID             uint                   `json:"id"`
	UserID         uint                   `json:"userId"`
	ActorUsername  string                 `json:"actorUsername,omitempty"`
	ActorAvatarUrl string                 `json:"actorAvatarUrl,omitempty"`
	Type           model.NotificationType `json:"type"`
	Message        string                 `json:"message"`
	ReferenceID    *uint                  `json:"referenceId"`
	Payload        Payload                `json:"payload"`
	Read           bool                   `json:"read"`
	CreatedAt      time.Time              `json:"createdAt"`
}

func ToDTO(n model.Notification) DTO {
	dto := DTO{
		ID:          n.ID,
		UserID:      n.UserID,
		Type:        n.Type,
		Message:     n.Message,
		ReferenceID: n.ReferenceID,
		Payload:     Decode(n),
		Read:        n.Read,
		CreatedAt:   n.CreatedAt,
	}
	if n.Actor != nil {
		dto.ActorUsername = n.Actor.Username
		dto.ActorAvatarUrl = n.Actor.AvatarUrl
	}
	return dto
}

type Sink struct {
	DB        *gorm.DB
	Publisher Publisher
}

// NewSink returns a sink over db. A nil publisher disables live delivery.
func NewSink(db *gorm.DB, publisher Publisher) *Sink {
	return &Sink{DB: db, Publisher: publisher}
}

// Create appends a notification for target. actorID 0 means no actor.
// Duplicates are legal; callers that need de-duplication check HasPending first.
func (s *Sink) Create(targetID uint, actorID uint, payload Payload, message string) (*model.Notification, error) {
	ref := payload.reference()
	n := &model.Notification{
		UserID:      targetID,
		Type:        payload.Type(),
		Message:     message,
		ReferenceID: &ref,
	}
	if actorID != 0 {
		n.ActorID = &actorID
	}

	if err := s.DB.Omit(clause.Associations).Create(n).Error; err != nil {
		return nil, err
	}

	s.publish(n)
	return n, nil
}

func (s *Sink) publish(n *model.Notification) {
	if s.Publisher == nil {
		return
	}

	if n.ActorID != nil {
		actor := new(model.User)
		if err := s.DB.First(actor, *n.ActorID).Error; err == nil {
			n.Actor = actor
		}
	}

	if err := s.Publisher.PublishNotification(ToDTO(*n)); err != nil {
		log.Printf("[notification] failed to publish notification %d: %v", n.ID, err)
	}
}

// FindOwned looks a notification up by id and owner together.
func (s *Sink) FindOwned(id uint, ownerID uint) (*model.Notification, error) {
	n := new(model.Notification)
	err := s.DB.Where("id = ? AND user_id = ?", id, ownerID).First(n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.NotFound("Notification not found or not authorized")
	}
	return n, err
}

func (s *Sink) MarkRead(id uint, requesterID uint) error {
	n, err := s.FindOwned(id, requesterID)
	if err != nil {
		return err
	}
	return s.DB.Model(n).Update("read", true).Error
}

func (s *Sink) MarkAllRead(userID uint) error {
	return s.DB.Model(&model.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true).Error
}

// List returns one page of the user's notifications, newest first, and the total.
func (s *Sink) List(userID uint, page int, size int) ([]DTO, int64, error) {
	if page < 0 {
		page = 0
	}
	if size <= 0 || size > 100 {
		size = 20
	}

	var total int64
	if err := s.DB.Model(&model.Notification{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []model.Notification
	if err := s.DB.
		Preload("Actor").
		Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		Offset(page * size).
		Limit(size).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	dtos := make([]DTO, 0, len(rows))
	for _, n := range rows {
		dtos = append(dtos, ToDTO(n))
	}
	return dtos, total, nil
}

func (s *Sink) UnreadCount(userID uint) (int64, error) {
	var count int64
	err := s.DB.Model(&model.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// HasPending reports whether target already holds a notification with the
// same type and payload.
func (s *Sink) HasPending(targetID uint, payload Payload) (bool, error) {
	var count int64
	err := s.DB.Model(&model.Notification{}).
		Where("user_id = ? AND type = ? AND reference_id = ?", targetID, payload.Type(), payload.reference()).
		Count(&count).Error
	return count > 0, err
}

func (s *Sink) Delete(id uint) error {
	return s.DB.Delete(&model.Notification{}, id).Error
}
