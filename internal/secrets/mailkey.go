package secrets

import (
	"errors"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// service groups the engine's secrets in the OS keychain
	KeyringService = "jobmill"

	mailAccount   = "jobmill:mail-api-key"
	EnvMailAPIKey = "JOBMILL_MAIL_API_KEY"
)

// GetMailAPIKey prefers the environment (containers, CI) and falls back to
// the OS keychain.
func GetMailAPIKey() (string, error) {
	if v := strings.TrimSpace(os.Getenv(EnvMailAPIKey)); v != "" {
		return v, nil
	}
	pw, err := keyring.Get(KeyringService, mailAccount)
	if err == nil && strings.TrimSpace(pw) != "" {
		return pw, nil
	}
	return "", errors.New("mail API key not found (set " + EnvMailAPIKey + " or store one with --set-mail-key)")
}

func SetMailAPIKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("mail API key is empty")
	}
	return keyring.Set(KeyringService, mailAccount, key)
}

func DeleteMailAPIKey() error {
	return keyring.Delete(KeyringService, mailAccount)
}
