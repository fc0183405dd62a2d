package model

import (
	"time"

	"gorm.io/gorm"
)

// User struct
type User struct {
	gorm.Model
	Username  string     `gorm:"uniqueIndex;not null" json:"username"`
	Email     string     `gorm:"uniqueIndex;not null" json:"email"`
	Password  string     `gorm:"not null" json:"-"`
	Role      string     `json:"role"`
	AvatarUrl string     `json:"avatarUrl"`
	Online    bool       `gorm:"not null;default:false" json:"online"`
	LastSeen  *time.Time `json:"lastSeen"`
}

// Friendship is one undirected edge between two users, stored once with the
// lower id first so both directions resolve to the same row.
type Friendship struct {
	UserLowID  uint `gorm:"primaryKey;autoIncrement:false"`
	UserHighID uint `gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt  time.Time
}

func NewFriendship(a, b uint) Friendship {
	if a > b {
		a, b = b, a
	}
	return Friendship{UserLowID: a, UserHighID: b}
}

// Other returns the member of the edge that is not id.
func (f Friendship) Other(id uint) uint {
	if f.UserLowID == id {
		return f.UserHighID
	}
	return f.UserLowID
}
