package chat

import (
	"log/slog"
	"sync"
)

// Subscriber receives room broadcasts. Enqueue must never block; a
// subscriber that cannot keep up reports false and gets disconnected by
// its own pumps, not by the broadcaster.
type Subscriber interface {
	Enqueue(frame []byte) bool
	UserID() int64
}

type room struct {
	mu      sync.Mutex
	members map[Subscriber]struct{}
	// set under both locks when the GC drops the room from the table;
	// a Join that still holds the old pointer must retry, not add to it
	dead bool
}

// Registry tracks live rooms keyed by scope. Rooms are created lazily on
// first join and dropped when the last subscriber leaves. The table lock
// only guards the room map; broadcasts in disjoint scopes do not contend.
type Registry struct {
	mu     sync.RWMutex
	rooms  map[ScopeKey]*room
	logger *slog.Logger
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		rooms:  make(map[ScopeKey]*room),
		logger: logger,
	}
}

func (r *Registry) Join(key ScopeKey, sub Subscriber) {
	var size int
	for {
		r.mu.Lock()
		rm, ok := r.rooms[key]
		if !ok {
			rm = &room{members: make(map[Subscriber]struct{})}
			r.rooms[key] = rm
		}
		r.mu.Unlock()

		rm.mu.Lock()
		if rm.dead {
			// the last leaver GC'd this room between the two locks
			rm.mu.Unlock()
			continue
		}
		rm.members[sub] = struct{}{}
		size = len(rm.members)
		rm.mu.Unlock()
		break
	}

	r.logger.Debug("subscriber joined",
		"company_id", key.CompanyID,
		"department_id", key.DepartmentID,
		"room_size", size)
}

// Leave is idempotent; every connection teardown path calls it.
func (r *Registry) Leave(key ScopeKey, sub Subscriber) {
	r.mu.RLock()
	rm, ok := r.rooms[key]
	r.mu.RUnlock()
	if !ok {
		return
	}

	rm.mu.Lock()
	delete(rm.members, sub)
	empty := len(rm.members) == 0
	rm.mu.Unlock()

	if empty {
		r.mu.Lock()
		// recheck under the table lock, a new join may have landed
		rm.mu.Lock()
		if len(rm.members) == 0 {
			rm.dead = true
			delete(r.rooms, key)
		}
		rm.mu.Unlock()
		r.mu.Unlock()
	}
}

// Broadcast fans a frame out to every subscriber in the room. Slow
// subscribers are skipped, not waited on.
func (r *Registry) Broadcast(key ScopeKey, frame []byte) {
	r.mu.RLock()
	rm, ok := r.rooms[key]
	r.mu.RUnlock()
	if !ok {
		return
	}

	rm.mu.Lock()
	subs := make([]Subscriber, 0, len(rm.members))
	for sub := range rm.members {
		subs = append(subs, sub)
	}
	rm.mu.Unlock()

	for _, sub := range subs {
		if !sub.Enqueue(frame) {
			r.logger.Warn("subscriber send buffer full, dropping frame",
				"user_id", sub.UserID(),
				"company_id", key.CompanyID,
				"department_id", key.DepartmentID)
		}
	}
}

// RoomSize reports the current subscriber count for a scope.
func (r *Registry) RoomSize(key ScopeKey) int {
	r.mu.RLock()
	rm, ok := r.rooms[key]
	r.mu.RUnlock()
	if !ok {
		return 0
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()
	return len(rm.members)
}
