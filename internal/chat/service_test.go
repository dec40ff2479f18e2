package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/Yaroslav326/TaskManagement/internal"
	"github.com/Yaroslav326/TaskManagement/internal/auth"
	"github.com/Yaroslav326/TaskManagement/internal/user"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

// Mock Store for testing
type mockStore struct {
	mu        sync.Mutex
	msgs      []Message
	nextID    int64
	fail      bool
	recentErr error
}

func (m *mockStore) Append(ctx context.Context, msg *Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("store unavailable")
	}
	m.nextID++
	msg.ID = m.nextID
	msg.User = &user.User{ID: msg.UserID, Username: fmt.Sprintf("user%d", msg.UserID)}
	m.msgs = append(m.msgs, *msg)
	return nil
}

func (m *mockStore) Recent(ctx context.Context, key ScopeKey, limit int) ([]Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.recentErr != nil {
		return nil, m.recentErr
	}
	var scoped []Message
	for _, msg := range m.msgs {
		if msg.Scope() == key {
			scoped = append(scoped, msg)
		}
	}
	if len(scoped) > limit {
		scoped = scoped[len(scoped)-limit:]
	}
	return scoped, nil
}

type collectingSubscriber struct {
	mu     sync.Mutex
	frames []OutboundMessage
	id     int64
}

func (c *collectingSubscriber) Enqueue(frame []byte) bool {
	var out OutboundMessage
	if err := json.Unmarshal(frame, &out); err != nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, out)
	return true
}

func (c *collectingSubscriber) UserID() int64 { return c.id }

func (c *collectingSubscriber) bodies() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.frames))
	for _, f := range c.frames {
		out = append(out, f.Body)
	}
	return out
}

// rawSubscriber keeps frames unparsed so tests can inspect frame order
// and type.
type rawSubscriber struct {
	mu     sync.Mutex
	frames [][]byte
	id     int64
}

func (r *rawSubscriber) Enqueue(frame []byte) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, frame)
	return true
}

func (r *rawSubscriber) UserID() int64 { return r.id }

func (r *rawSubscriber) snapshot() [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([][]byte, len(r.frames))
	copy(out, r.frames)
	return out
}

var _ = ginkgo.Describe("ChatService", func() {
	var (
		store    *mockStore
		registry *Registry
		service  *Service
		key      ScopeKey
		sender   *auth.User
	)

	testLogger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ginkgo.BeforeEach(func() {
		store = &mockStore{}
		registry = NewRegistry(testLogger)
		service = NewService(store, registry, 50, 1000, testLogger)
		key = ScopeKey{CompanyID: 1}
		sender = &auth.User{ID: 7, Username: "anna"}
	})

	ginkgo.Describe("Post", func() {
		ginkgo.It("should persist and broadcast the message", func() {
			sub := &collectingSubscriber{id: 8}
			registry.Join(key, sub)

			err := service.Post(context.Background(), key, sender, "hello")

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(sub.bodies()).To(gomega.Equal([]string{"hello"}))
			gomega.Expect(store.msgs).To(gomega.HaveLen(1))
			gomega.Expect(store.msgs[0].UserID).To(gomega.Equal(int64(7)))
		})

		ginkgo.It("should publish the sender's display name", func() {
			sub := &collectingSubscriber{id: 8}
			registry.Join(key, sub)

			err := service.Post(context.Background(), key, sender, "hello")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(sub.frames[0].Username).To(gomega.Equal("anna"))
		})

		ginkgo.It("should reject an empty message", func() {
			err := service.Post(context.Background(), key, sender, "   ")
			gomega.Expect(errors.Is(err, internal.ErrEmptyMessage)).To(gomega.BeTrue())
			gomega.Expect(store.msgs).To(gomega.BeEmpty())
		})

		ginkgo.It("should reject an oversized message", func() {
			err := service.Post(context.Background(), key, sender, strings.Repeat("a", 1001))
			gomega.Expect(errors.Is(err, internal.ErrMessageTooLong)).To(gomega.BeTrue())
		})

		ginkgo.It("should accept a message at exactly the limit", func() {
			err := service.Post(context.Background(), key, sender, strings.Repeat("a", 1000))
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
		})

		ginkgo.It("should count runes, not bytes, against the limit", func() {
			err := service.Post(context.Background(), key, sender, strings.Repeat("ж", 1000))
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
		})

		ginkgo.It("should not broadcast when persistence fails", func() {
			sub := &collectingSubscriber{id: 8}
			registry.Join(key, sub)
			store.fail = true

			err := service.Post(context.Background(), key, sender, "hello")

			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(sub.bodies()).To(gomega.BeEmpty())
		})

		ginkgo.It("should keep broadcast order consistent with persistence order", func() {
			sub := &collectingSubscriber{id: 8}
			registry.Join(key, sub)

			var wg sync.WaitGroup
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					err := service.Post(context.Background(), key, sender, fmt.Sprintf("msg-%d", i))
					gomega.Expect(err).ToNot(gomega.HaveOccurred())
				}(i)
			}
			wg.Wait()

			stored := make([]string, 0, len(store.msgs))
			for _, m := range store.msgs {
				stored = append(stored, m.Body)
			}
			gomega.Expect(sub.bodies()).To(gomega.Equal(stored))
		})

		ginkgo.It("should not leak messages into other scopes", func() {
			other := ScopeKey{CompanyID: 1, DepartmentID: 3}
			sub := &collectingSubscriber{id: 8}
			registry.Join(other, sub)

			err := service.Post(context.Background(), key, sender, "company only")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(sub.bodies()).To(gomega.BeEmpty())
		})
	})

	ginkgo.Describe("Subscribe", func() {
		ginkgo.It("should deliver the backlog as the first frame", func() {
			err := service.Post(context.Background(), key, sender, "before-1")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			err = service.Post(context.Background(), key, sender, "before-2")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			sub := &rawSubscriber{id: 8}
			gomega.Expect(service.Subscribe(context.Background(), key, sub)).To(gomega.Succeed())

			err = service.Post(context.Background(), key, sender, "after")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			frames := sub.snapshot()
			gomega.Expect(len(frames)).To(gomega.BeNumerically(">=", 2))

			var history HistoryFrame
			gomega.Expect(json.Unmarshal(frames[0], &history)).To(gomega.Succeed())
			gomega.Expect(history.Type).To(gomega.Equal(FrameHistory))
			gomega.Expect(history.Messages).To(gomega.HaveLen(2))
			gomega.Expect(history.Messages[0].Body).To(gomega.Equal("before-1"))

			var live OutboundMessage
			gomega.Expect(json.Unmarshal(frames[1], &live)).To(gomega.Succeed())
			gomega.Expect(live.Body).To(gomega.Equal("after"))
		})

		ginkgo.It("should not lose messages posted while the subscriber joins", func() {
			var wg sync.WaitGroup
			for i := 0; i < 30; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					err := service.Post(context.Background(), key, sender, fmt.Sprintf("msg-%d", i))
					gomega.Expect(err).ToNot(gomega.HaveOccurred())
				}(i)
			}

			sub := &rawSubscriber{id: 8}
			gomega.Expect(service.Subscribe(context.Background(), key, sub)).To(gomega.Succeed())
			wg.Wait()

			frames := sub.snapshot()
			gomega.Expect(frames).ToNot(gomega.BeEmpty())

			var history HistoryFrame
			gomega.Expect(json.Unmarshal(frames[0], &history)).To(gomega.Succeed())
			gomega.Expect(history.Type).To(gomega.Equal(FrameHistory))

			seen := map[string]int{}
			for _, m := range history.Messages {
				seen[m.Body]++
			}
			for _, raw := range frames[1:] {
				var live OutboundMessage
				gomega.Expect(json.Unmarshal(raw, &live)).To(gomega.Succeed())
				seen[live.Body]++
			}

			gomega.Expect(seen).To(gomega.HaveLen(30))
			for body, count := range seen {
				gomega.Expect(count).To(gomega.Equal(1), "message %s must arrive exactly once", body)
			}
		})

		ginkgo.It("should not join the room when the backlog cannot be loaded", func() {
			broken := NewService(&mockStore{recentErr: errors.New("store unavailable")},
				registry, 50, 1000, testLogger)

			sub := &rawSubscriber{id: 8}
			gomega.Expect(broken.Subscribe(context.Background(), key, sub)).ToNot(gomega.Succeed())
			gomega.Expect(registry.RoomSize(key)).To(gomega.Equal(0))
		})
	})

	ginkgo.Describe("History", func() {
		ginkgo.It("should return the backlog in posting order", func() {
			for i := 0; i < 3; i++ {
				err := service.Post(context.Background(), key, sender, fmt.Sprintf("msg-%d", i))
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
			}

			frame, err := service.History(context.Background(), key)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(frame.Type).To(gomega.Equal(FrameHistory))
			gomega.Expect(frame.Messages).To(gomega.HaveLen(3))
			gomega.Expect(frame.Messages[0].Body).To(gomega.Equal("msg-0"))
			gomega.Expect(frame.Messages[2].Body).To(gomega.Equal("msg-2"))
		})

		ginkgo.It("should cap the backlog at the history limit", func() {
			small := NewService(store, registry, 2, 1000, testLogger)
			for i := 0; i < 5; i++ {
				err := small.Post(context.Background(), key, sender, fmt.Sprintf("msg-%d", i))
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
			}

			frame, err := small.History(context.Background(), key)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(frame.Messages).To(gomega.HaveLen(2))
			gomega.Expect(frame.Messages[0].Body).To(gomega.Equal("msg-3"))
			gomega.Expect(frame.Messages[1].Body).To(gomega.Equal("msg-4"))
		})

		ginkgo.It("should return an empty frame for a silent room", func() {
			frame, err := service.History(context.Background(), key)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(frame.Messages).To(gomega.BeEmpty())
		})
	})
})
