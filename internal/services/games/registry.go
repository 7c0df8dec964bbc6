package games

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/mcoot/connectfour-go/internal/dependencies/clock"
	"github.com/mcoot/connectfour-go/internal/model"
)

// connIndex holds the sessions a connection participates in
type connIndex struct {
	sessions map[model.GameID]*model.GameSession
	sealed   bool // no new sessions may be indexed
}

// Registry owns every live game session. A single mutex covers both the
// id map and the per-connection index so the two never disagree.
type Registry struct {
	mu       sync.Mutex
	sessions map[model.GameID]*model.GameSession
	byConn   map[model.ConnectionID]*connIndex

	newID  func() model.GameID
	clock  clock.Clock
	logger *slog.Logger
}

// Option configures a Registry
type Option func(*Registry)

// WithIDGenerator overrides how game ids are allocated
func WithIDGenerator(gen func() model.GameID) Option {
	return func(r *Registry) {
		r.newID = gen
	}
}

// NewRegistry creates an empty Registry
func NewRegistry(clock clock.Clock, logger *slog.Logger, opts ...Option) *Registry {
	r := &Registry{
		sessions: make(map[model.GameID]*model.GameSession),
		byConn:   make(map[model.ConnectionID]*connIndex),
		newID: func() model.GameID {
			return model.GameID(uuid.NewString())
		},
		clock:  clock,
		logger: logger.With(slog.String("component", "game-registry")),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Open creates the index for a newly accepted connection
func (r *Registry) Open(conn model.ConnectionID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byConn[conn]; !ok {
		r.byConn[conn] = &connIndex{sessions: make(map[model.GameID]*model.GameSession)}
	}
}

// Seal stops new sessions from being indexed under conn
func (r *Registry) Seal(conn model.ConnectionID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if idx, ok := r.byConn[conn]; ok {
		idx.sealed = true
	}
}

// Create starts a session between a (moving first) and b
func (r *Registry) Create(a, b model.Player) (*model.GameSession, error) {
	if a.ConnectionID == b.ConnectionID {
		return nil, fmt.Errorf("%w: player paired with own connection %s", model.ErrInternalInconsistency, a.ConnectionID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	idxA, okA := r.byConn[a.ConnectionID]
	idxB, okB := r.byConn[b.ConnectionID]
	if !okA || !okB || idxA.sealed || idxB.sealed {
		return nil, model.ErrOpponentNotFound
	}

	id := r.newID()
	if _, taken := r.sessions[id]; taken {
		return nil, fmt.Errorf("%w: duplicate game id %s", model.ErrInternalInconsistency, id)
	}

	session := model.NewGameSession(id, a, b, r.clock.Now())
	r.sessions[id] = session
	idxA.sessions[id] = session
	idxB.sessions[id] = session

	r.logger.Info("game created",
		slog.String("game_id", string(id)),
		slog.String("player_a", a.Username),
		slog.String("player_b", b.Username),
	)
	return session, nil
}

// Lookup finds a session indexed under conn
func (r *Registry) Lookup(conn model.ConnectionID, id model.GameID) (*model.GameSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx, ok := r.byConn[conn]
	if !ok {
		return nil, false
	}
	session, ok := idx.sessions[id]
	return session, ok
}

// Remove erases a session from the id map and from both participants' indices.
// Either everything is erased or nothing is.
func (r *Registry) Remove(id model.GameID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if !ok {
		return model.ErrGameNotActive
	}

	idxA, okA := r.byConn[session.A.ConnectionID]
	idxB, okB := r.byConn[session.B.ConnectionID]
	if !okA || !okB {
		return r.inconsistent(id, "participant connection index missing")
	}
	if _, ok := idxA.sessions[id]; !ok {
		return r.inconsistent(id, "session missing from first participant's index")
	}
	if _, ok := idxB.sessions[id]; !ok {
		return r.inconsistent(id, "session missing from second participant's index")
	}

	delete(idxA.sessions, id)
	delete(idxB.sessions, id)
	delete(r.sessions, id)

	r.logger.Debug("game removed", slog.String("game_id", string(id)))
	return nil
}

func (r *Registry) inconsistent(id model.GameID, detail string) error {
	r.logger.Error("game registry inconsistent",
		slog.String("game_id", string(id)),
		slog.String("detail", detail),
	)
	return fmt.Errorf("%w: game %s: %s", model.ErrInternalInconsistency, id, detail)
}

// SessionsFor returns a snapshot of the sessions indexed under conn
func (r *Registry) SessionsFor(conn model.ConnectionID) []*model.GameSession {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx, ok := r.byConn[conn]
	if !ok {
		return nil
	}
	sessions := make([]*model.GameSession, 0, len(idx.sessions))
	for _, session := range idx.sessions {
		sessions = append(sessions, session)
	}
	return sessions
}

// RemoveConnection drops conn's index. Sessions still listed in it must
// already have been resolved by the caller.
func (r *Registry) RemoveConnection(conn model.ConnectionID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if idx, ok := r.byConn[conn]; ok && len(idx.sessions) > 0 {
		r.logger.Warn("connection removed with unresolved sessions",
			slog.String("conn_id", string(conn)),
			slog.Int("sessions", len(idx.sessions)),
		)
	}
	delete(r.byConn, conn)
}

// Count returns the number of live sessions
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// ConnectionCount returns the number of open connection indices
func (r *Registry) ConnectionCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byConn)
}
