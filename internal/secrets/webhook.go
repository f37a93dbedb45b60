package secrets

import (
	"errors"
	"net/url"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// KeyringService groups the agent's secrets in the OS keychain.
	KeyringService = "jobgo"

	webhookAccount = "jobgo:notify:webhook"

	// EnvWebhookURL is consulted when the keychain has no entry.
	EnvWebhookURL = "JOBGO_WEBHOOK_URL"
)

// GetWebhookURL returns the stored webhook URL, or "" when none is set.
func GetWebhookURL() (string, error) {
	u, err := keyring.Get(KeyringService, webhookAccount)
	switch {
	case err == nil && strings.TrimSpace(u) != "":
		return u, nil
	case err != nil && !errors.Is(err, keyring.ErrNotFound):
		if env := strings.TrimSpace(os.Getenv(EnvWebhookURL)); env != "" {
			return env, nil
		}
		return "", err
	}
	return strings.TrimSpace(os.Getenv(EnvWebhookURL)), nil
}

func SetWebhookURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return errors.New("webhook url is empty")
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("webhook url must be an absolute http(s) URL")
	}
	return keyring.Set(KeyringService, webhookAccount, raw)
}

// DeleteWebhookURL removes the stored URL; deleting nothing is not an error.
func DeleteWebhookURL() error {
	err := keyring.Delete(KeyringService, webhookAccount)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}
