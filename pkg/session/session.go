// Package session owns the client's authentication state: the opaque API
// token and the privilege flag derived from it at login.
//
// The two fields survive a restart via a small YAML file; everything else
// (the login identifier, the generation counter) is in-memory only and
// resets with the process, matching the behavior of the web console this
// client replaces.
package session

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

const stateFile = "ledger_session.yaml"

// persisted is the on-disk shape: exactly the token and the privilege flag.
type persisted struct {
	Token   string `yaml:"token"`
	IsAdmin bool   `yaml:"is_admin"`
}

// Manager is the single owner of session state. All reads go through it so
// that an invalidation triggered by one request is visible to every request
// issued afterwards.
type Manager struct {
	mu         sync.RWMutex
	path       string
	token      string
	privileged bool
	identifier string // login email; never persisted
	generation uint64
}

// NewManager creates a manager backed by a state file in dir. An empty dir
// places the file next to the binary. Any previously persisted session is
// loaded immediately.
func NewManager(dir string) *Manager {
	if dir == "" {
		if exe, err := os.Executable(); err == nil {
			dir = filepath.Dir(exe)
		} else {
			dir = "."
		}
	}
	m := &Manager{path: filepath.Join(dir, stateFile), generation: 1}
	m.load()
	return m
}

func (m *Manager) load() {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return
	}
	var p persisted
	if err := yaml.Unmarshal(data, &p); err != nil {
		slog.Error("parse session state", "path", m.path, "err", err)
		return
	}
	m.token = p.Token
	// A privilege flag without a token is meaningless.
	m.privileged = p.IsAdmin && p.Token != ""
}

// Set installs a freshly authenticated session and persists it. The new
// generation marks every previously derived state as stale.
func (m *Manager) Set(token string, privileged bool, identifier string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	m.privileged = privileged && token != ""
	m.identifier = identifier
	m.generation++
	m.save()
}

// Invalidate clears the session, in memory and on disk. Idempotent: calling
// it while already logged out changes nothing, including the generation.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token == "" && !m.privileged {
		return
	}
	m.token = ""
	m.privileged = false
	m.identifier = ""
	m.generation++
	if err := os.Remove(m.path); err != nil && !os.IsNotExist(err) {
		slog.Error("remove session state", "path", m.path, "err", err)
	}
}

// save writes the persisted fields. Failures are logged, not fatal: a
// session that does not survive a restart is an inconvenience, not an
// inconsistency.
func (m *Manager) save() {
	data, err := yaml.Marshal(persisted{Token: m.token, IsAdmin: m.privileged})
	if err != nil {
		slog.Error("encode session state", "err", err)
		return
	}
	if err := os.WriteFile(m.path, data, 0600); err != nil {
		slog.Error("write session state", "path", m.path, "err", err)
	}
}

// Token returns the current API token, empty when logged out.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// IsPrivileged reports whether the session carries admin rights. Always
// false while logged out, whatever was persisted.
func (m *Manager) IsPrivileged() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token != "" && m.privileged
}

// Identifier returns the email used at login, empty after a restart or
// logout.
func (m *Manager) Identifier() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.identifier
}

// Authenticated reports whether a token is present. Callers must check this
// before issuing authenticated requests.
func (m *Manager) Authenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token != ""
}

// Generation returns a counter that advances on every credential change.
// Holders of derived state compare generations instead of relying on a
// page-style hard reload.
func (m *Manager) Generation() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.generation
}
