// Package session tracks the live diagrams being edited. Each session
// owns one diagram; all access goes through the session's lock, so the
// diagram itself stays single-threaded.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pnid-studio/backend/internal/catalog"
	"github.com/pnid-studio/backend/internal/diagram"
	"github.com/pnid-studio/backend/internal/models"
)

// MaxSessions limits concurrent diagram sessions to prevent memory exhaustion.
const MaxSessions = 50

// SessionMaxAge is how long idle sessions are kept before cleanup.
const SessionMaxAge = 30 * time.Minute

// SessionKeepAliveWindow protects recently touched sessions from cleanup.
const SessionKeepAliveWindow = 5 * time.Minute

// State holds one live diagram and its access metadata.
type State struct {
	ID           string
	Diagram      *diagram.Diagram
	DrawingID    string // store drawing this session saves to, if any
	CreatedAt    time.Time
	LastAccessed time.Time

	mu sync.Mutex // serializes diagram access within the session
}

// Manager tracks active diagram sessions.
type Manager struct {
	sessions map[string]*State
	mu       sync.RWMutex
	catalog  *catalog.Catalog
	defaults diagram.Options
}

// NewManager creates a session manager over a shared catalog.
func NewManager(cat *catalog.Catalog, defaults diagram.Options) *Manager {
	return &Manager{
		sessions: make(map[string]*State),
		catalog:  cat,
		defaults: defaults,
	}
}

// Create opens a new session with an empty diagram. Options fields left
// zero fall back to the server defaults.
func (m *Manager) Create(title models.TitleBlock, opts diagram.Options) (*models.SessionInfo, error) {
	if opts.Sheet == "" {
		opts.Sheet = m.defaults.Sheet
	}
	if opts.GridSpacingMM <= 0 {
		opts.GridSpacingMM = m.defaults.GridSpacingMM
	}
	if opts.MarginMM <= 0 {
		opts.MarginMM = m.defaults.MarginMM
	}
	if opts.Crossing == "" {
		opts.Crossing = m.defaults.Crossing
	}
	if opts.MaxExpansions <= 0 {
		opts.MaxExpansions = m.defaults.MaxExpansions
	}

	d, err := diagram.New(m.catalog, title, opts)
	if err != nil {
		return nil, err
	}
	return m.adopt(d)
}

// Adopt wraps an existing diagram (e.g. restored from the drawing
// store) in a new session.
func (m *Manager) Adopt(d *diagram.Diagram) (*models.SessionInfo, error) {
	return m.adopt(d)
}

// Restore rebuilds a diagram from a stored snapshot and adopts it as a
// new session.
func (m *Manager) Restore(snap models.Snapshot) (*models.SessionInfo, error) {
	d, err := diagram.Restore(m.catalog, snap, m.defaults)
	if err != nil {
		return nil, err
	}
	return m.adopt(d)
}

func (m *Manager) adopt(d *diagram.Diagram) (*models.SessionInfo, error) {
	if err := m.evictIfNeeded(); err != nil {
		return nil, err
	}

	state := &State{
		ID:           uuid.New().String(),
		Diagram:      d,
		CreatedAt:    time.Now(),
		LastAccessed: time.Now(),
	}

	m.mu.Lock()
	m.sessions[state.ID] = state
	m.mu.Unlock()

	fmt.Printf("[Session] Opened %s (%s sheet)\n", state.ID[:8], d.Opts().Sheet)
	info := m.infoLocked(state)
	return &info, nil
}

// WithDiagram runs fn holding the session's lock, refreshing the
// keep-alive stamp. Every read or mutation of a session's diagram goes
// through here.
func (m *Manager) WithDiagram(id string, fn func(d *diagram.Diagram) error) error {
	m.mu.RLock()
	state, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return ErrNoSession
	}

	state.mu.Lock()
	defer state.mu.Unlock()
	state.LastAccessed = time.Now()
	return fn(state.Diagram)
}

// ErrNoSession reports an unknown or expired session ID.
var ErrNoSession = fmt.Errorf("no such session")

// Touch refreshes a session's keep-alive stamp.
func (m *Manager) Touch(id string) bool {
	m.mu.RLock()
	state, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return false
	}
	state.mu.Lock()
	state.LastAccessed = time.Now()
	state.mu.Unlock()
	return true
}

// DrawingID returns the store drawing this session was last saved to
// or restored from.
func (m *Manager) DrawingID(id string) (string, bool) {
	m.mu.RLock()
	state, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return "", false
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	return state.DrawingID, state.DrawingID != ""
}

// SetDrawingID associates the session with a store drawing so later
// saves append to the same revision history.
func (m *Manager) SetDrawingID(id, drawingID string) bool {
	m.mu.RLock()
	state, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return false
	}
	state.mu.Lock()
	state.DrawingID = drawingID
	state.mu.Unlock()
	return true
}

// Close removes a session.
func (m *Manager) Close(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return false
	}
	delete(m.sessions, id)
	fmt.Printf("[Session] Closed %s\n", id[:8])
	return true
}

// Info returns the session's metadata view.
func (m *Manager) Info(id string) (models.SessionInfo, bool) {
	m.mu.RLock()
	state, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return models.SessionInfo{}, false
	}
	return m.infoLocked(state), true
}

// List returns metadata for every open session.
func (m *Manager) List() []models.SessionInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.SessionInfo, 0, len(m.sessions))
	for _, state := range m.sessions {
		out = append(out, m.infoLocked(state))
	}
	return out
}

func (m *Manager) infoLocked(state *State) models.SessionInfo {
	eq, pl, il := state.Diagram.Counts()
	return models.SessionInfo{
		ID:            state.ID,
		DrawingNumber: state.Diagram.Title().DrawingNumber,
		Sheet:         string(state.Diagram.Opts().Sheet),
		Revision:      state.Diagram.Revision(),
		Equipment:     eq,
		Pipelines:     pl,
		Inline:        il,
		CreatedAt:     state.CreatedAt.UnixMilli(),
		LastAccessed:  state.LastAccessed.UnixMilli(),
	}
}

// evictIfNeeded frees capacity by dropping the stalest idle sessions.
// Creation fails only when every session is inside the keep-alive window.
func (m *Manager) evictIfNeeded() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.sessions) < MaxSessions {
		return nil
	}

	keepAliveCutoff := time.Now().Add(-SessionKeepAliveWindow)
	var oldestID string
	var oldest time.Time
	for id, state := range m.sessions {
		if state.LastAccessed.After(keepAliveCutoff) {
			continue
		}
		if oldestID == "" || state.LastAccessed.Before(oldest) {
			oldestID = id
			oldest = state.LastAccessed
		}
	}
	if oldestID == "" {
		return fmt.Errorf("session limit of %d reached", MaxSessions)
	}
	delete(m.sessions, oldestID)
	fmt.Printf("[Session] Evicted idle session %s to free capacity\n", oldestID[:8])
	return nil
}

// CleanupOldSessions removes sessions idle longer than maxAge, keeping
// anything touched within the keep-alive window.
func (m *Manager) CleanupOldSessions(maxAge time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	keepAliveCutoff := time.Now().Add(-SessionKeepAliveWindow)

	for id, state := range m.sessions {
		if state.LastAccessed.After(keepAliveCutoff) {
			continue
		}
		if state.LastAccessed.Before(cutoff) {
			delete(m.sessions, id)
			fmt.Printf("[Session] Cleaned up aged session %s (last accessed %s ago)\n",
				id[:8], time.Since(state.LastAccessed).Round(time.Second))
		}
	}
}

// Count returns the number of open sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
