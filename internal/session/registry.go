package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/teilomillet/edgerunner/internal/metrics"
)

// Registry tracks the live sessions
type Registry struct {
	sessions   map[*Session]bool
	sessionsMu sync.RWMutex

	register   chan *Session
	unregister chan *Session
	done       chan struct{}

	metrics       *metrics.Registry
	log           zerolog.Logger
	totalSessions int64
	totalMu       sync.Mutex
}

// NewRegistry creates an empty registry. Call Run before registering sessions.
func NewRegistry(m *metrics.Registry, logger zerolog.Logger) *Registry {
	return &Registry{
		sessions:   make(map[*Session]bool),
		register:   make(chan *Session),
		unregister: make(chan *Session),
		done:       make(chan struct{}),
		metrics:    m,
		log:        logger.With().Str("component", "sessions").Logger(),
	}
}

// Run owns registration until ctx is cancelled
func (r *Registry) Run(ctx context.Context) {
	defer close(r.done)
	go r.report(ctx)

	for {
		select {
		case <-ctx.Done():
			r.shutdown()
			return

		case s := <-r.register:
			r.add(s)

		case s := <-r.unregister:
			r.remove(s)
		}
	}
}

// Register adds a session. It returns false once the registry has stopped.
func (r *Registry) Register(s *Session) bool {
	select {
	case r.register <- s:
		return true
	case <-r.done:
		return false
	}
}

// Unregister removes a session and closes its send channel
func (r *Registry) Unregister(s *Session) {
	select {
	case r.unregister <- s:
	case <-r.done:
	}
}

// Count returns the number of live sessions
func (r *Registry) Count() int {
	r.sessionsMu.RLock()
	defer r.sessionsMu.RUnlock()
	return len(r.sessions)
}

// Total returns the number of sessions registered since start
func (r *Registry) Total() int64 {
	r.totalMu.Lock()
	defer r.totalMu.Unlock()
	return r.totalSessions
}

func (r *Registry) add(s *Session) {
	r.sessionsMu.Lock()
	r.sessions[s] = true
	active := len(r.sessions)
	r.sessionsMu.Unlock()

	r.totalMu.Lock()
	r.totalSessions++
	r.totalMu.Unlock()

	r.metrics.SessionOpened()
	r.log.Info().Str("session_id", s.ID).Int("active", active).Msg("session connected")
}

func (r *Registry) remove(s *Session) {
	r.sessionsMu.Lock()
	_, ok := r.sessions[s]
	if ok {
		delete(r.sessions, s)
		close(s.Send)
	}
	active := len(r.sessions)
	r.sessionsMu.Unlock()

	if ok {
		r.metrics.SessionClosed()
		r.log.Info().Str("session_id", s.ID).Int("active", active).Msg("session disconnected")
	}
}

// shutdown forgets every session. Send channels stay open: each session's
// read pump may still be replying, and its write pump exits on the context.
func (r *Registry) shutdown() {
	r.sessionsMu.Lock()
	defer r.sessionsMu.Unlock()

	r.log.Info().Int("active", len(r.sessions)).Msg("shutting down sessions")
	for s := range r.sessions {
		delete(r.sessions, s)
		r.metrics.SessionClosed()
	}
}

func (r *Registry) report(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.log.Debug().Int("active", r.Count()).Int64("total", r.Total()).Msg("session stats")
		}
	}
}
