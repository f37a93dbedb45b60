package instance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireIsExclusive(t *testing.T) {
	dir := t.TempDir()

	l, err := Acquire(dir)
	require.NoError(t, err)
	assert.Len(t, l.Token(), 32)

	tok, err := ReadToken(dir)
	require.NoError(t, err)
	assert.Equal(t, l.Token(), tok)

	_, err = Acquire(dir)
	assert.ErrorIs(t, err, ErrAlreadyRunning)

	require.NoError(t, l.Release())
	_, err = ReadToken(dir)
	assert.Error(t, err, "token removed on release")

	again, err := Acquire(dir)
	require.NoError(t, err)
	assert.NotEqual(t, l.Token(), again.Token())
	require.NoError(t, again.Release())
}
