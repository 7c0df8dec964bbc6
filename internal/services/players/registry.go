package players

import (
	"cmp"
	"log/slog"
	"slices"
	"sync"

	"github.com/samber/lo"

	"github.com/mcoot/connectfour-go/internal/dependencies/clock"
	"github.com/mcoot/connectfour-go/internal/model"
)

// Registry tracks every player ever registered and which of them is bound
// to a live connection. The durable map and the active map have independent
// locks and no method holds both at once. During Register a connection can be
// bound to an identity whose durable record is not yet visible; readers skip
// such bindings.
type Registry struct {
	durableMu sync.RWMutex
	durable   map[model.Identity]*model.Player

	activeMu sync.RWMutex
	active   map[model.ConnectionID]model.Identity

	clock  clock.Clock
	logger *slog.Logger
}

// NewRegistry creates an empty Registry
func NewRegistry(clock clock.Clock, logger *slog.Logger) *Registry {
	return &Registry{
		durable: make(map[model.Identity]*model.Player),
		active:  make(map[model.ConnectionID]model.Identity),
		clock:   clock,
		logger:  logger.With(slog.String("component", "player-registry")),
	}
}

// Register records a new player and binds it to conn. An existing identity
// fails with ErrPlayerAlreadyExists even when conn is already bound.
func (r *Registry) Register(username, displayName string, conn model.ConnectionID, kind model.PlayerKind) (model.Player, error) {
	id := model.Identity{Username: username, DisplayName: displayName}
	if r.exists(id) {
		return model.Player{}, model.ErrPlayerAlreadyExists
	}

	// conn is claimed before the durable insert; a failed claim writes nothing
	if err := r.bind(id, conn); err != nil {
		return model.Player{}, err
	}

	player := &model.Player{
		Username:     username,
		DisplayName:  displayName,
		Rating:       model.DefaultRating,
		Kind:         kind,
		RegisteredAt: r.clock.Now(),
	}

	r.durableMu.Lock()
	if _, exists := r.durable[id]; exists {
		r.durableMu.Unlock()
		r.unbind(id, conn)
		return model.Player{}, model.ErrPlayerAlreadyExists
	}
	r.durable[id] = player
	r.durableMu.Unlock()

	r.logger.Info("player registered",
		slog.String("username", username),
		slog.String("display_name", displayName),
		slog.String("conn_id", string(conn)),
		slog.String("kind", string(kind)),
	)

	registered := *player
	registered.ConnectionID = conn
	return registered, nil
}

func (r *Registry) exists(id model.Identity) bool {
	r.durableMu.RLock()
	defer r.durableMu.RUnlock()
	_, ok := r.durable[id]
	return ok
}

func (r *Registry) bind(id model.Identity, conn model.ConnectionID) error {
	r.activeMu.Lock()
	defer r.activeMu.Unlock()

	if _, bound := r.active[conn]; bound {
		return model.ErrAlreadyRegistered
	}
	r.active[conn] = id
	return nil
}

// unbind drops conn's binding only if it still points at id
func (r *Registry) unbind(id model.Identity, conn model.ConnectionID) {
	r.activeMu.Lock()
	defer r.activeMu.Unlock()

	if r.active[conn] == id {
		delete(r.active, conn)
	}
}

// Lookup returns the durable record for an identity
func (r *Registry) Lookup(username, displayName string) (model.Player, bool) {
	r.durableMu.RLock()
	defer r.durableMu.RUnlock()

	p, ok := r.durable[model.Identity{Username: username, DisplayName: displayName}]
	if !ok {
		return model.Player{}, false
	}
	return *p, true
}

// Activate binds an existing player to conn
func (r *Registry) Activate(id model.Identity, conn model.ConnectionID) error {
	if !r.exists(id) {
		return model.ErrPlayerNotFound
	}
	return r.bind(id, conn)
}

// Deactivate removes conn's binding. The durable record is kept.
func (r *Registry) Deactivate(conn model.ConnectionID) (model.Player, bool) {
	r.activeMu.Lock()
	id, ok := r.active[conn]
	delete(r.active, conn)
	r.activeMu.Unlock()

	if !ok {
		return model.Player{}, false
	}

	player, found := r.Lookup(id.Username, id.DisplayName)
	if !found {
		return model.Player{}, false
	}
	player.ConnectionID = conn

	r.logger.Debug("player deactivated",
		slog.String("username", id.Username),
		slog.String("conn_id", string(conn)),
	)
	return player, true
}

// ActivePlayer returns the player bound to conn
func (r *Registry) ActivePlayer(conn model.ConnectionID) (model.Player, bool) {
	r.activeMu.RLock()
	id, ok := r.active[conn]
	r.activeMu.RUnlock()
	if !ok {
		return model.Player{}, false
	}

	player, found := r.Lookup(id.Username, id.DisplayName)
	if !found {
		return model.Player{}, false
	}
	player.ConnectionID = conn
	return player, true
}

// IsActive reports whether conn has a bound player
func (r *Registry) IsActive(conn model.ConnectionID) bool {
	r.activeMu.RLock()
	defer r.activeMu.RUnlock()
	_, ok := r.active[conn]
	return ok
}

// ActiveCount returns the number of bound connections
func (r *Registry) ActiveCount() int {
	r.activeMu.RLock()
	defer r.activeMu.RUnlock()
	return len(r.active)
}

// ActivePlayers returns a snapshot of every bound player, ordered by connection
func (r *Registry) ActivePlayers() []model.Player {
	r.activeMu.RLock()
	bindings := lo.Entries(r.active)
	r.activeMu.RUnlock()

	slices.SortFunc(bindings, func(a, b lo.Entry[model.ConnectionID, model.Identity]) int {
		return cmp.Compare(a.Key, b.Key)
	})

	r.durableMu.RLock()
	defer r.durableMu.RUnlock()

	return lo.FilterMap(bindings, func(e lo.Entry[model.ConnectionID, model.Identity], _ int) (model.Player, bool) {
		p, ok := r.durable[e.Value]
		if !ok {
			return model.Player{}, false
		}
		player := *p
		player.ConnectionID = e.Key
		return player, true
	})
}

// Count returns the number of players ever registered
func (r *Registry) Count() int {
	r.durableMu.RLock()
	defer r.durableMu.RUnlock()
	return len(r.durable)
}
