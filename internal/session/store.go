package session

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sanctumfront/internal/apiclient"
	"github.com/sanctumfront/internal/apipaths"
)

// Visitor is one browser's auth session and the client it talks through
type Visitor struct {
	Auth   *Manager
	Client *apiclient.Client
}

// Factory builds the state for a new visitor. Each visitor needs its own client
// so cookies never leak between visitors.
type Factory func(visitorID string) (*Visitor, error)

// ClientFactory returns a Factory giving every visitor a fresh client for baseURL
func ClientFactory(baseURL string, logger *slog.Logger, opts ...apiclient.Option) Factory {
	return func(visitorID string) (*Visitor, error) {
		visitorLogger := logger.With("visitor_id", visitorID)
		clientOpts := append([]apiclient.Option{apiclient.WithLogger(visitorLogger, apipaths.User)}, opts...)
		client, err := apiclient.New(baseURL, clientOpts...)
		if err != nil {
			return nil, err
		}
		return &Visitor{Auth: NewManager(client, visitorLogger), Client: client}, nil
	}
}

var ErrEmptyVisitorID = errors.New("visitor id is required")

// Store keeps one Visitor per visitor id and evicts idle ones
type Store struct {
	factory Factory
	logger  *slog.Logger
	now     func() time.Time

	mu      sync.Mutex
	entries map[string]*entry

	cron *cron.Cron
}

type entry struct {
	visitor  *Visitor
	lastSeen time.Time
}

// NewStore creates an empty store
func NewStore(factory Factory, logger *slog.Logger) *Store {
	return &Store{
		factory: factory,
		logger:  logger,
		now:     time.Now,
		entries: make(map[string]*entry),
	}
}

// Get returns the visitor's state, creating it on first use
func (s *Store) Get(visitorID string) (*Visitor, error) {
	if visitorID == "" {
		return nil, ErrEmptyVisitorID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[visitorID]; ok {
		e.lastSeen = s.now()
		return e.visitor, nil
	}

	v, err := s.factory(visitorID)
	if err != nil {
		return nil, fmt.Errorf("failed to create session for visitor: %w", err)
	}
	s.entries[visitorID] = &entry{visitor: v, lastSeen: s.now()}
	s.logger.Debug("session store: created session", "visitor_id", visitorID, "sessions", len(s.entries))
	return v, nil
}

// Remove drops a visitor's state
func (s *Store) Remove(visitorID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, visitorID)
}

// Len returns the number of live sessions
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep removes sessions idle for longer than maxIdle and returns how many were removed
func (s *Store) Sweep(maxIdle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-maxIdle)
	removed := 0
	for id, e := range s.entries {
		if e.lastSeen.Before(cutoff) {
			delete(s.entries, id)
			removed++
		}
	}
	if removed > 0 {
		s.logger.Info("session store: swept idle sessions", "removed", removed, "remaining", len(s.entries))
	}
	return removed
}

// StartSweeper runs Sweep on the given cron schedule (e.g. "@every 5m")
func (s *Store) StartSweeper(schedule string, maxIdle time.Duration) error {
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() { s.Sweep(maxIdle) }); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}
	c.Start()

	s.mu.Lock()
	s.cron = c
	s.mu.Unlock()

	s.logger.Info("session store: sweeper started", "schedule", schedule, "max_idle", maxIdle)
	return nil
}

// Stop halts the sweeper and waits for a running sweep to finish
func (s *Store) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
}
