package listener

import (
	"encoding/json"
	"errors"
	"log"

	"heyo-service/directory"
	"heyo-service/event"
	"heyo-service/realtime"
	"heyo-service/utils"
)

// Notifications pushes every created notification to its owner's
// notifications channel. Owners that no longer exist are skipped.
func Notifications(dir *directory.Directory, pusher realtime.Pusher) event.Handler {
	return func(action string, body []byte) error {
		if action != event.ActionNotificationCreated {
			log.Printf("[event] notifications: ignoring action %q", action)
			return nil
		}

		var target struct {
			UserID uint `json:"userId"`
		}
		var payload map[string]interface{}
		if err := json.Unmarshal(body, &target); err != nil {
			log.Printf("[event] notifications: dropping malformed event: %v", err)
			return nil
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			log.Printf("[event] notifications: dropping malformed event: %v", err)
			return nil
		}

		owner, err := dir.FindByID(target.UserID)
		if errors.Is(err, utils.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		pusher.Emit(owner.Username, realtime.ChannelNotifications, payload)
		return nil
	}
}
