package model

import "time"

type ChatMessage struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	SenderID   uint      `gorm:"not null;index:idx_chat_pair,priority:1" json:"senderId"`
	ReceiverID uint      `gorm:"not null;index:idx_chat_pair,priority:2;index:idx_chat_unread,priority:1" json:"receiverId"`
	Sender     User      `gorm:"foreignKey:SenderID" json:"-"`
	Receiver   User      `gorm:"foreignKey:ReceiverID" json:"-"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	Read       bool      `gorm:"not null;default:false;index:idx_chat_unread,priority:2" json:"read"`
	CreatedAt  time.Time `gorm:"index:idx_chat_pair,priority:3" json:"createdAt"`
}
