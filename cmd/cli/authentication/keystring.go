package authentication

// keystring.go keeps the session token in the OS keychain on the client side.
import (
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/zalando/go-keyring"
)

const (
	serviceName = "mrp-cli"
	tokenKey    = "session"
)

// ErrNotLoggedIn is returned when no session is stored.
var ErrNotLoggedIn = errors.New("not logged in, please run 'mrpCLI auth login'")

type StoredCredentials struct {
	Token    string    `json:"token"`
	Username string    `json:"username"`
	UserID   uuid.UUID `json:"user_id"`
}

func StoreTokens(creds *StoredCredentials) error {
	data, err := json.Marshal(creds)
	if err != nil {
		return err
	}
	return keyring.Set(serviceName, tokenKey, string(data))
}

func GetTokens() (*StoredCredentials, error) {
	value, err := keyring.Get(serviceName, tokenKey)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil, ErrNotLoggedIn
	}
	if err != nil {
		return nil, err
	}

	var creds StoredCredentials
	if err := json.Unmarshal([]byte(value), &creds); err != nil {
		return nil, err
	}
	return &creds, nil
}

// DeleteTokens forgets the stored session; forgetting nothing is not an error.
func DeleteTokens() error {
	err := keyring.Delete(serviceName, tokenKey)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}
