package secrets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestWebhookURLLifecycle(t *testing.T) {
	keyring.MockInit()
	t.Setenv(EnvWebhookURL, "")

	u, err := GetWebhookURL()
	require.NoError(t, err)
	assert.Empty(t, u)

	require.NoError(t, SetWebhookURL(" https://hooks.example.com/T0/B0 "))
	u, err = GetWebhookURL()
	require.NoError(t, err)
	assert.Equal(t, "https://hooks.example.com/T0/B0", u)

	require.NoError(t, DeleteWebhookURL())
	require.NoError(t, DeleteWebhookURL(), "second delete is a no-op")
	u, err = GetWebhookURL()
	require.NoError(t, err)
	assert.Empty(t, u)
}

func TestWebhookURLEnvFallback(t *testing.T) {
	keyring.MockInit()
	t.Setenv(EnvWebhookURL, "https://env.example.com/hook")

	u, err := GetWebhookURL()
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com/hook", u)
}

func TestSetWebhookURLValidates(t *testing.T) {
	keyring.MockInit()
	assert.Error(t, SetWebhookURL(""))
	assert.Error(t, SetWebhookURL("ftp://x"))
	assert.Error(t, SetWebhookURL("/relative"))
}
