package chat

import (
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSubscriber struct {
	mu     sync.Mutex
	frames [][]byte
	full   bool
	id     int64
}

func (s *stubSubscriber) Enqueue(frame []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.full {
		return false
	}
	s.frames = append(s.frames, frame)
	return true
}

func (s *stubSubscriber) UserID() int64 { return s.id }

func (s *stubSubscriber) received() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.frames)
}

func newTestRegistry() *Registry {
	return NewRegistry(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRegistryBroadcastScopedToRoom(t *testing.T) {
	r := newTestRegistry()
	companyWide := ScopeKey{CompanyID: 1}
	dept := ScopeKey{CompanyID: 1, DepartmentID: 5}

	a := &stubSubscriber{id: 1}
	b := &stubSubscriber{id: 2}
	c := &stubSubscriber{id: 3}
	r.Join(companyWide, a)
	r.Join(companyWide, b)
	r.Join(dept, c)

	r.Broadcast(companyWide, []byte(`{"message":"hi"}`))

	assert.Equal(t, 1, a.received())
	assert.Equal(t, 1, b.received())
	assert.Equal(t, 0, c.received(), "department room must not see company-wide traffic")
}

func TestRegistryCompanyAndDepartmentScopesAreDistinct(t *testing.T) {
	r := newTestRegistry()
	companyWide := ScopeKey{CompanyID: 1}
	dept := ScopeKey{CompanyID: 1, DepartmentID: 5}

	sub := &stubSubscriber{id: 1}
	r.Join(dept, sub)

	r.Broadcast(companyWide, []byte("x"))
	assert.Equal(t, 0, sub.received())

	r.Broadcast(dept, []byte("x"))
	assert.Equal(t, 1, sub.received())
}

func TestRegistryLeaveIsIdempotent(t *testing.T) {
	r := newTestRegistry()
	key := ScopeKey{CompanyID: 1}
	sub := &stubSubscriber{id: 1}

	r.Join(key, sub)
	r.Leave(key, sub)
	r.Leave(key, sub)
	r.Leave(ScopeKey{CompanyID: 9}, sub)

	assert.Equal(t, 0, r.RoomSize(key))
}

func TestRegistryRoomDroppedWhenEmpty(t *testing.T) {
	r := newTestRegistry()
	key := ScopeKey{CompanyID: 1, DepartmentID: 2}
	sub := &stubSubscriber{id: 1}

	r.Join(key, sub)
	require.Equal(t, 1, r.RoomSize(key))
	r.Leave(key, sub)

	r.mu.RLock()
	_, exists := r.rooms[key]
	r.mu.RUnlock()
	assert.False(t, exists, "empty room should be garbage collected")
}

func TestRegistrySlowSubscriberDoesNotBlockOthers(t *testing.T) {
	r := newTestRegistry()
	key := ScopeKey{CompanyID: 1}

	slow := &stubSubscriber{id: 1, full: true}
	fast := &stubSubscriber{id: 2}
	r.Join(key, slow)
	r.Join(key, fast)

	r.Broadcast(key, []byte("x"))

	assert.Equal(t, 0, slow.received())
	assert.Equal(t, 1, fast.received())
}

func TestRegistryJoinRetriesWhenRoomCollectedUnderneath(t *testing.T) {
	r := newTestRegistry()
	key := ScopeKey{CompanyID: 1}
	first := &stubSubscriber{id: 1}
	r.Join(key, first)

	// hold the room pointer the way a Join paused between the table lock
	// and the room lock would
	r.mu.RLock()
	stale := r.rooms[key]
	r.mu.RUnlock()

	r.Leave(key, first)
	require.True(t, stale.dead, "GC must tombstone the room it drops")

	second := &stubSubscriber{id: 2}
	r.Join(key, second)
	r.Broadcast(key, []byte("x"))
	assert.Equal(t, 1, second.received())

	stale.mu.Lock()
	_, inStale := stale.members[second]
	stale.mu.Unlock()
	assert.False(t, inStale, "new member must not land in the collected room")
}

func TestRegistryJoinDuringLastLeaveStaysReachable(t *testing.T) {
	r := newTestRegistry()
	key := ScopeKey{CompanyID: 1}

	for i := 0; i < 500; i++ {
		leaver := &stubSubscriber{id: 1}
		r.Join(key, leaver)

		joiner := &stubSubscriber{id: 2}
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			r.Leave(key, leaver)
		}()
		go func() {
			defer wg.Done()
			r.Join(key, joiner)
		}()
		wg.Wait()

		r.Broadcast(key, []byte("x"))
		require.Equal(t, 1, joiner.received(), "a completed join must receive broadcasts")
		r.Leave(key, joiner)
	}
}

func TestRegistryConcurrentJoinLeaveBroadcast(t *testing.T) {
	r := newTestRegistry()
	key := ScopeKey{CompanyID: 1}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sub := &stubSubscriber{id: int64(i)}
			r.Join(key, sub)
			r.Broadcast(key, []byte("x"))
			r.Leave(key, sub)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 0, r.RoomSize(key))
}
