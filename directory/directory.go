// Package directory resolves users, their friendships and their presence.
package directory

import (
	"errors"
	"strings"
	"time"

	"heyo-service/model"
	"heyo-service/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Directory struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Directory {
	return &Directory{DB: db}
}

type UserDTO struct {
	ID        uint       `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	AvatarUrl string     `json:"avatarUrl"`
	Online    bool       `json:"online"`
	LastSeen  *time.Time `json:"lastSeen"`
}

func ToDTO(user model.User) UserDTO {
	return UserDTO{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		AvatarUrl: user.AvatarUrl,
		Online:    user.Online,
		LastSeen:  user.LastSeen,
	}
}

func ToDTOs(users []model.User) []UserDTO {
	dtos := make([]UserDTO, 0, len(users))
	for _, u := range users {
		dtos = append(dtos, ToDTO(u))
	}
	return dtos
}

func (d *Directory) first(query *gorm.DB) (*model.User, error) {
	user := new(model.User)
	if err := query.First(user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("User not found")
		}
		return nil, err
	}
	return user, nil
}

func (d *Directory) FindByID(id uint) (*model.User, error) {
	return d.first(d.DB.Where("id = ?", id))
}

func (d *Directory) FindByUsername(username string) (*model.User, error) {
	return d.first(d.DB.Where("username = ?", username))
}

// FindByLogin accepts either a username or an email address.
func (d *Directory) FindByLogin(login string) (*model.User, error) {
	return d.first(d.DB.Where("username = ? OR email = ?", login, login))
}

// SetPresence flips the online flag. Going offline also stamps last_seen.
func (d *Directory) SetPresence(userID uint, online bool) error {
	updates := map[string]interface{}{"online": online}
	if !online {
		updates["last_seen"] = time.Now()
	}

	res := d.DB.Model(&model.User{}).Where("id = ?", userID).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.NotFound("User not found")
	}
	return nil
}

// FriendIDs reads the edge table directly, so it never depends on a loaded user.
func (d *Directory) FriendIDs(userID uint) ([]uint, error) {
	var edges []model.Friendship
	if err := d.DB.
		Where("user_low_id = ? OR user_high_id = ?", userID, userID).
		Find(&edges).Error; err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(edges))
	for _, e := range edges {
		ids = append(ids, e.Other(userID))
	}
	return ids, nil
}

func (d *Directory) Friends(userID uint) ([]model.User, error) {
	ids, err := d.FriendIDs(userID)
	if err != nil {
		return nil, err
	}
	return d.Users(ids)
}

// Users loads the given ids ordered by username.
func (d *Directory) Users(ids []uint) ([]model.User, error) {
	users := []model.User{}
	if len(ids) == 0 {
		return users, nil
	}
	err := d.DB.Where("id IN ?", ids).Order("username asc").Find(&users).Error
	return users, err
}

func (d *Directory) AreFriends(a, b uint) (bool, error) {
	edge := model.NewFriendship(a, b)
	var count int64
	err := d.DB.Model(&model.Friendship{}).
		Where("user_low_id = ? AND user_high_id = ?", edge.UserLowID, edge.UserHighID).
		Count(&count).Error
	return count > 0, err
}

// AddFriendship inserts the single edge for the pair. Adding an existing edge
// is a no-op.
func (d *Directory) AddFriendship(a, b uint) error {
	if a == b {
		return utils.BadRequest("Cannot befriend yourself")
	}
	edge := model.NewFriendship(a, b)
	return d.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&edge).Error
}

func (d *Directory) RemoveFriendship(a, b uint) error {
	edge := model.NewFriendship(a, b)
	return d.DB.
		Where("user_low_id = ? AND user_high_id = ?", edge.UserLowID, edge.UserHighID).
		Delete(&model.Friendship{}).Error
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search matches usernames case-insensitively. The query is a literal
// substring, so % and _ match only themselves.
func (d *Directory) Search(query string, excludeID uint) ([]model.User, error) {
	users := []model.User{}
	pattern := "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(query))) + "%"
	err := d.DB.
		Where(`LOWER(username) LIKE ? ESCAPE '\' AND id <> ?`, pattern, excludeID).
		Order("username asc").
		Limit(50).
		Find(&users).Error
	return users, err
}

func (d *Directory) OnlineUsers() ([]model.User, error) {
	users := []model.User{}
	err := d.DB.Where("online = ?", true).Order("username asc").Find(&users).Error
	return users, err
}
