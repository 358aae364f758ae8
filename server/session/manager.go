package session

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Manager owns the live sessions of a server.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	defaults Config
	rec      Recorder
	log      zerolog.Logger
}

// NewManager keeps defaults as the template the server starts new sessions from.
// rec may be nil.
func NewManager(defaults Config, rec Recorder, log zerolog.Logger) *Manager {
	return &Manager{
		sessions: map[string]*Session{},
		defaults: defaults,
		rec:      rec,
		log:      log,
	}
}

// Defaults returns a copy of the template Create starts from.
func (m *Manager) Defaults() Config { return m.defaults }

func (m *Manager) Create(ctx context.Context, cfg Config) (*Session, error) {
	id := uuid.NewString()
	s, err := New(id, cfg, m.rec, m.log)
	if err != nil {
		return nil, err
	}
	if m.rec != nil {
		settings := map[string]any{
			"small_bet": cfg.Stakes.SmallBet,
			"big_bet":   cfg.Stakes.BigBet,
			"seed":      cfg.Seed,
			"oracle":    cfg.Oracle != nil,
		}
		if err := m.rec.CreateSession(ctx, id, s.Policy().Name(), settings); err != nil {
			m.log.Warn().Err(err).Str("session", id).Msg("record session failed")
		}
	}
	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()
	m.log.Info().Str("session", id).Str("policy", s.Policy().Name()).Msg("session created")
	return s, nil
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s, nil
}

func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(m.sessions, id)
	m.log.Info().Str("session", id).Msg("session deleted")
	return nil
}

// List returns every session's info, oldest first.
func (m *Manager) List() []Info {
	m.mu.RLock()
	out := make([]Info, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s.Info())
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Created.Equal(out[j].Created) {
			return out[i].ID < out[j].ID
		}
		return out[i].Created.Before(out[j].Created)
	})
	return out
}
