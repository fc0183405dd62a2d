// Package conversation persists chat messages between pairs of users.
package conversation

import (
	"heyo-service/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Store struct {
	DB *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{DB: db}
}

func pair(a, b uint) (string, []interface{}) {
	return "(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
		[]interface{}{a, b, b, a}
}

// Save persists msg with read=false. CreatedAt is assigned by gorm.
func (s *Store) Save(msg *model.ChatMessage) error {
	msg.Read = false
	return s.DB.Omit(clause.Associations).Create(msg).Error
}

// MessagesBetween returns both directions interleaved, oldest first.
func (s *Store) MessagesBetween(a, b uint) ([]model.ChatMessage, error) {
	query, args := pair(a, b)
	messages := []model.ChatMessage{}
	err := s.DB.
		Preload("Sender").
		Preload("Receiver").
		Where(query, args...).
		Order("created_at asc, id asc").
		Find(&messages).Error
	return messages, err
}

func (s *Store) HasHistory(a, b uint) (bool, error) {
	query, args := pair(a, b)
	var count int64
	err := s.DB.Model(&model.ChatMessage{}).Where(query, args...).Count(&count).Error
	return count > 0, err
}

// MarkRead flips unread messages from sender to receiver. The reverse
// direction is left alone.
func (s *Store) MarkRead(senderID uint, receiverID uint) (int64, error) {
	res := s.DB.Model(&model.ChatMessage{}).
		Where("sender_id = ? AND receiver_id = ? AND read = ?", senderID, receiverID, false).
		Update("read", true)
	return res.RowsAffected, res.Error
}

func (s *Store) UnreadCountFor(userID uint) (int64, error) {
	var count int64
	err := s.DB.Model(&model.ChatMessage{}).
		Where("receiver_id = ? AND read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// PartnersOf returns everyone userID has exchanged a message with.
func (s *Store) PartnersOf(userID uint) ([]model.User, error) {
	var received, sent []uint
	if err := s.DB.Model(&model.ChatMessage{}).
		Where("receiver_id = ?", userID).
		Distinct().Pluck("sender_id", &received).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&model.ChatMessage{}).
		Where("sender_id = ?", userID).
		Distinct().Pluck("receiver_id", &sent).Error; err != nil {
		return nil, err
	}

	seen := make(map[uint]struct{}, len(received)+len(sent))
	ids := make([]uint, 0, len(received)+len(sent))
	for _, id := range append(received, sent...) {
		if _, ok := seen[id]; ok || id == userID {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	users := []model.User{}
	if len(ids) == 0 {
		return users, nil
	}
	err := s.DB.Where("id IN ?", ids).Order("username asc").Find(&users).Error
	return users, err
}

// MessagesInvolving returns every message userID sent or received, oldest first.
func (s *Store) MessagesInvolving(userID uint) ([]model.ChatMessage, error) {
	messages := []model.ChatMessage{}
	err := s.DB.
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Order("created_at asc, id asc").
		Find(&messages).Error
	return messages, err
}
