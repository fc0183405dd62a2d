// Package chat implements friend-only messaging on top of the directory,
// the conversation store and the notification sink.
package chat

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"heyo-service/conversation"
	"heyo-service/directory"
	"heyo-service/model"
	"heyo-service/notification"
	"heyo-service/utils"
)

const previewLength = 50

type Service struct {
	Directory *directory.Directory
	Store     *conversation.Store
	Sink      *notification.Sink
}

func NewService(dir *directory.Directory, store *conversation.Store, sink *notification.Sink) *Service {
	return &Service{Directory: dir, Store: store, Sink: sink}
}

type MessageDTO struct {
	ID               uint      `json:"id"`
	SenderID         uint      `json:"senderId"`
	SenderUsername   string    `json:"senderUsername"`
	SenderAvatarUrl  string    `json:"senderAvatarUrl"`
	ReceiverID       uint      `json:"receiverId"`
	ReceiverUsername string    `json:"receiverUsername"`
	Content          string    `json:"content"`
	Read             bool      `json:"read"`
	CreatedAt        time.Time `json:"createdAt"`
}

type ConversationDTO struct {
	PartnerID        uint       `json:"partnerId"`
	PartnerUsername  string     `json:"partnerUsername"`
	PartnerAvatarUrl string     `json:"partnerAvatarUrl"`
	PartnerOnline    bool       `json:"partnerOnline"`
	LastMessage      *string    `json:"lastMessage"`
	LastMessageAt    *time.Time `json:"lastMessageAt"`
	UnreadCount      int64      `json:"unreadCount"`
}

func toMessageDTO(msg model.ChatMessage, sender model.User, receiver model.User) MessageDTO {
	return MessageDTO{
		ID:               msg.ID,
		SenderID:         sender.ID,
		SenderUsername:   sender.Username,
		SenderAvatarUrl:  sender.AvatarUrl,
		ReceiverID:       receiver.ID,
		ReceiverUsername: receiver.Username,
		Content:          msg.Content,
		Read:             msg.Read,
		CreatedAt:        msg.CreatedAt,
	}
}

func emptyConversation(partner model.User) ConversationDTO {
	return ConversationDTO{
		PartnerID:        partner.ID,
		PartnerUsername:  partner.Username,
		PartnerAvatarUrl: partner.AvatarUrl,
		PartnerOnline:    partner.Online,
	}
}

// preview shortens content for notification text, counting runes.
func preview(content string) string {
	if utf8.RuneCountInString(content) <= previewLength {
		return content
	}
	return string([]rune(content)[:previewLength]) + "..."
}

// SendMessage stores a message from sender to receiver and notifies the
// receiver. Notification failures are logged and never undo the message.
func (s *Service) SendMessage(senderID uint, receiverID uint, content string) (*MessageDTO, error) {
	sender, err := s.Directory.FindByID(senderID)
	if err != nil {
		return nil, err
	}

	receiver, err := s.Directory.FindByID(receiverID)
	if err != nil {
		return nil, err
	}

	friends, err := s.Directory.AreFriends(sender.ID, receiver.ID)
	if err != nil {
		return nil, err
	}
	if !friends {
		return nil, utils.Forbidden("You can only message your friends")
	}

	if strings.TrimSpace(content) == "" {
		return nil, utils.BadRequest("Message content is required")
	}

	hasHistory, err := s.Store.HasHistory(sender.ID, receiver.ID)
	if err != nil {
		return nil, err
	}

	msg := &model.ChatMessage{
		SenderID:   sender.ID,
		ReceiverID: receiver.ID,
		Content:    content,
	}
	if err := s.Store.Save(msg); err != nil {
		return nil, err
	}

	s.notify(receiver.ID, sender.ID,
		notification.NewMessage{MessageID: msg.ID},
		fmt.Sprintf("%s wysłał Ci wiadomość: %s", sender.Username, preview(content)),
	)

	// Two concurrent first messages may both see no history. Both then
	// announce the chat, which is accepted.
	if !hasHistory {
		s.notifyNewChat(sender, receiver.ID)
	}

	dto := toMessageDTO(*msg, *sender, *receiver)
	return &dto, nil
}

func (s *Service) notify(targetID uint, actorID uint, payload notification.Payload, message string) {
	if _, err := s.Sink.Create(targetID, actorID, payload, message); err != nil {
		log.Printf("[chat] failed to create %s notification for user %d: %v", payload.Type(), targetID, err)
	}
}

func (s *Service) notifyNewChat(initiator *model.User, targetID uint) {
	s.notify(targetID, initiator.ID,
		notification.NewChat{InitiatorID: initiator.ID},
		fmt.Sprintf("%s rozpoczął z Tobą czat", initiator.Username),
	)
}

type summary struct {
	last   *model.ChatMessage
	unread int64
}

// GetConversations lists one entry per friend plus one per past message
// partner, most recent activity first.
func (s *Service) GetConversations(userID uint) ([]ConversationDTO, error) {
	friends, err := s.Directory.Friends(userID)
	if err != nil {
		return nil, err
	}

	messages, err := s.Store.MessagesInvolving(userID)
	if err != nil {
		return nil, err
	}

	summaries := make(map[uint]*summary)
	for i := range messages {
		msg := &messages[i]
		partnerID := msg.ReceiverID
		if partnerID == userID {
			partnerID = msg.SenderID
		}

		sum, ok := summaries[partnerID]
		if !ok {
			sum = &summary{}
			summaries[partnerID] = sum
		}
		// messages are oldest first
		sum.last = msg
		if msg.ReceiverID == userID && !msg.Read {
			sum.unread++
		}
	}

	roster := make(map[uint]model.User, len(friends)+len(summaries))
	for _, f := range friends {
		roster[f.ID] = f
	}

	var missing []uint
	for partnerID := range summaries {
		if _, ok := roster[partnerID]; !ok {
			missing = append(missing, partnerID)
		}
	}
	partners, err := s.Directory.Users(missing)
	if err != nil {
		return nil, err
	}
	for _, p := range partners {
		roster[p.ID] = p
	}

	conversations := make([]ConversationDTO, 0, len(roster))
	for _, partner := range roster {
		conversations = append(conversations, summarize(partner, summaries[partner.ID]))
	}
	sortConversations(conversations)

	return conversations, nil
}

func summarize(partner model.User, sum *summary) ConversationDTO {
	dto := emptyConversation(partner)
	if sum == nil {
		return dto
	}
	dto.UnreadCount = sum.unread
	if sum.last != nil {
		content := sum.last.Content
		createdAt := sum.last.CreatedAt
		dto.LastMessage = &content
		dto.LastMessageAt = &createdAt
	}
	return dto
}

// sortConversations orders by last message time descending. Conversations
// without messages go last.
func sortConversations(conversations []ConversationDTO) {
	sort.SliceStable(conversations, func(i, j int) bool {
		a, b := conversations[i], conversations[j]
		switch {
		case a.LastMessageAt != nil && b.LastMessageAt != nil:
			if !a.LastMessageAt.Equal(*b.LastMessageAt) {
				return a.LastMessageAt.After(*b.LastMessageAt)
			}
		case a.LastMessageAt != nil:
			return true
		case b.LastMessageAt != nil:
			return false
		}
		if a.PartnerUsername != b.PartnerUsername {
			return a.PartnerUsername < b.PartnerUsername
		}
		return a.PartnerID < b.PartnerID
	})
}

// GetConversation returns the message history with partner, oldest first.
func (s *Service) GetConversation(userID uint, partnerID uint) ([]MessageDTO, error) {
	if _, err := s.Directory.FindByID(partnerID); err != nil {
		return nil, err
	}

	messages, err := s.Store.MessagesBetween(userID, partnerID)
	if err != nil {
		return nil, err
	}

	dtos := make([]MessageDTO, 0, len(messages))
	for _, msg := range messages {
		dtos = append(dtos, toMessageDTO(msg, msg.Sender, msg.Receiver))
	}
	return dtos, nil
}

// CreateChatWithFriend returns the existing conversation with friend, or an
// empty one after announcing the new chat to the friend.
func (s *Service) CreateChatWithFriend(userID uint, friendID uint) (*ConversationDTO, error) {
	user, err := s.Directory.FindByID(userID)
	if err != nil {
		return nil, err
	}

	friend, err := s.Directory.FindByID(friendID)
	if err != nil {
		return nil, err
	}

	ok, err := s.Directory.AreFriends(user.ID, friend.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, utils.Forbidden("You can only create chats with your friends")
	}

	messages, err := s.Store.MessagesBetween(user.ID, friend.ID)
	if err != nil {
		return nil, err
	}

	if len(messages) == 0 {
		s.notifyNewChat(user, friend.ID)
		dto := emptyConversation(*friend)
		return &dto, nil
	}

	sum := &summary{last: &messages[len(messages)-1]}
	for _, msg := range messages {
		if msg.ReceiverID == user.ID && !msg.Read {
			sum.unread++
		}
	}
	dto := summarize(*friend, sum)
	return &dto, nil
}

// MarkAsRead marks everything partner sent to user as read.
func (s *Service) MarkAsRead(userID uint, partnerID uint) error {
	if _, err := s.Directory.FindByID(partnerID); err != nil {
		return err
	}
	_, err := s.Store.MarkRead(partnerID, userID)
	return err
}

func (s *Service) UnreadCount(userID uint) (int64, error) {
	return s.Store.UnreadCountFor(userID)
}

// SearchConversations filters the conversation list by partner username.
func (s *Service) SearchConversations(userID uint, query string) ([]ConversationDTO, error) {
	conversations, err := s.GetConversations(userID)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	matches := make([]ConversationDTO, 0, len(conversations))
	for _, c := range conversations {
		if strings.Contains(strings.ToLower(c.PartnerUsername), needle) {
			matches = append(matches, c)
		}
	}
	return matches, nil
}

// FriendsWithoutChat lists friends the user has never exchanged a message with.
func (s *Service) FriendsWithoutChat(userID uint) ([]directory.UserDTO, error) {
	friends, err := s.Directory.Friends(userID)
	if err != nil {
		return nil, err
	}

	partners, err := s.Store.PartnersOf(userID)
	if err != nil {
		return nil, err
	}

	talked := make(map[uint]struct{}, len(partners))
	for _, p := range partners {
		talked[p.ID] = struct{}{}
	}

	result := make([]directory.UserDTO, 0, len(friends))
	for _, f := range friends {
		if _, ok := talked[f.ID]; !ok {
			result = append(result, directory.ToDTO(f))
		}
	}
	return result, nil
}
