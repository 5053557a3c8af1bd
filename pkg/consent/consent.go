// Package consent records the visitor's cookie-consent decision.
package consent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Sternrassler/baltaragis-client/pkg/storage"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Version of the consent policy. Decisions recorded under another version
// are ignored and the banner is shown again.
const Version = "1.0"

// Status is the consent decision.
type Status string

const (
	Pending  Status = "pending"
	Accepted Status = "accepted"
	Declined Status = "declined"
)

// Record is the persisted form of a decision.
type Record struct {
	Status    Status    `json:"status"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

// Manager tracks the consent status and whether the banner is visible.
type Manager struct {
	store  storage.Store
	now    func() time.Time
	logger zerolog.Logger

	mu         sync.Mutex
	status     Status
	showBanner bool
}

// NewManager creates a manager persisting decisions in store.
func NewManager(store storage.Store) *Manager {
	return &Manager{
		store:  store,
		now:    time.Now,
		logger: log.With().Str("component", "consent").Logger(),
		status: Pending,
	}
}

// Load reads the stored decision. A missing, unreadable or outdated
// record leaves the status pending with the banner shown.
func (m *Manager) Load(ctx context.Context) Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.status = Pending
	m.showBanner = true

	raw, err := m.store.Get(ctx, storage.ConsentKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			m.logger.Error().Err(err).Msg("Error reading consent")
		}
		return m.status
	}

	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		m.logger.Warn().Err(err).Msg("Discarding malformed consent record")
		return m.status
	}
	if rec.Version != Version {
		m.logger.Info().Str("stored_version", rec.Version).Msg("Consent policy changed, asking again")
		return m.status
	}
	if rec.Status == Accepted || rec.Status == Declined {
		m.status = rec.Status
		m.showBanner = false
	}
	return m.status
}

// Accept records an accepted decision and hides the banner.
func (m *Manager) Accept(ctx context.Context) error {
	return m.decide(ctx, Accepted)
}

// Decline records a declined decision and hides the banner.
func (m *Manager) Decline(ctx context.Context) error {
	return m.decide(ctx, Declined)
}

func (m *Manager) decide(ctx context.Context, status Status) error {
	m.mu.Lock()
	m.status = status
	m.showBanner = false
	m.mu.Unlock()

	body, err := json.Marshal(Record{Status: status, Version: Version, Timestamp: m.now().UTC()})
	if err != nil {
		return fmt.Errorf("encode consent: %w", err)
	}
	if err := m.store.Set(ctx, storage.ConsentKey, string(body)); err != nil {
		m.logger.Error().Err(err).Msg("Error saving consent")
		return fmt.Errorf("save consent: %w", err)
	}
	return nil
}

// Reopen shows the banner again without changing the decision.
func (m *Manager) Reopen() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.showBanner = true
}

// Status returns the current decision.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// ShowBanner reports whether the consent banner should be displayed.
func (m *Manager) ShowBanner() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.showBanner
}

// HasAnalytics reports whether analytics may be loaded.
func (m *Manager) HasAnalytics() bool {
	return m.Status() == Accepted
}
