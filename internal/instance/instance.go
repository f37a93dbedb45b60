// Package instance keeps a single agent daemon per data directory.
package instance

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
)

var ErrAlreadyRunning = errors.New("another agent is already running")

const (
	lockFile  = "agent.lock"
	tokenFile = "agent.token"
)

// Lock is held for the daemon's lifetime.
type Lock struct {
	fl    *flock.Flock
	token string
	dir   string
}

// Acquire takes the data directory's lock without waiting and writes a
// fresh shutdown token next to it.
func Acquire(dataDir string) (*Lock, error) {
	fl := flock.New(filepath.Join(dataDir, lockFile))
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", fl.Path(), err)
	}
	if !ok {
		return nil, ErrAlreadyRunning
	}

	tok, err := randomToken(16)
	if err != nil {
		_ = fl.Unlock()
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(dataDir, tokenFile), []byte(tok), 0o600); err != nil {
		_ = fl.Unlock()
		return nil, fmt.Errorf("write token: %w", err)
	}
	return &Lock{fl: fl, token: tok, dir: dataDir}, nil
}

// Token guards the local shutdown endpoint.
func (l *Lock) Token() string { return l.token }

func (l *Lock) Release() error {
	_ = os.Remove(filepath.Join(l.dir, tokenFile))
	return l.fl.Unlock()
}

// ReadToken returns the running daemon's shutdown token.
func ReadToken(dataDir string) (string, error) {
	b, err := os.ReadFile(filepath.Join(dataDir, tokenFile))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
