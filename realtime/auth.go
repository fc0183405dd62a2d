package realtime

import (
	"strings"

	"heyo-service/directory"
	"heyo-service/utils"
)

// Authenticator turns a handshake credential into a Session.
type Authenticator struct {
	Directory *directory.Directory
	// KeyName is the config key holding the access token secret.
	KeyName string
}

func NewAuthenticator(dir *directory.Directory) *Authenticator {
	return &Authenticator{Directory: dir, KeyName: "JWT_ACCESS_KEY"}
}

func (a *Authenticator) Authenticate(credential string) (*Session, error) {
	token := strings.TrimSpace(strings.TrimPrefix(credential, "Bearer "))
	if token == "" {
		return nil, utils.Unauthenticated("Missing credentials")
	}

	meta, err := utils.CheckAndExtractTokenMetadata(token, a.KeyName)
	if err != nil {
		return nil, utils.Unauthenticated("Invalid or expired token")
	}

	id, err := meta.UserID()
	if err != nil {
		return nil, utils.Unauthenticated("Invalid or expired token")
	}

	user, err := a.Directory.FindByID(id)
	if err != nil {
		return nil, utils.Unauthenticated("Unknown user")
	}

	return &Session{UserID: user.ID, Username: user.Username}, nil
}
