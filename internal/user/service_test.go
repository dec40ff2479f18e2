package user

import (
	"errors"
	"sync"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/Yaroslav326/TaskManagement/internal"
)

func TestUser(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "User Suite")
}

type mockUserRepository struct {
	mu    sync.Mutex
	users map[int64]*User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: make(map[int64]*User)}
}

func (m *mockUserRepository) GetByID(userID int64) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return nil, errors.New("user not found")
	}
	clone := *u
	return &clone, nil
}

func (m *mockUserRepository) Update(u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
	return nil
}

var _ = Describe("User Service", func() {
	var (
		repo    *mockUserRepository
		service *Service
	)

	BeforeEach(func() {
		repo = newMockUserRepository()
		service = NewService(repo, bcrypt.MinCost)

		hash, err := bcrypt.GenerateFromPassword([]byte("password1"), bcrypt.MinCost)
		Expect(err).NotTo(HaveOccurred())
		repo.users[1] = &User{
			ID:           1,
			Username:     "yaroslav",
			Email:        "yaroslav@example.com",
			PasswordHash: string(hash),
		}
	})

	Describe("GetByID", func() {
		It("returns the principal", func() {
			u, err := service.GetByID(1)
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Username).To(Equal("yaroslav"))
		})

		It("maps a missing principal to user not found", func() {
			_, err := service.GetByID(404)
			Expect(errors.Is(err, internal.ErrUserNotFound)).To(BeTrue())
		})
	})

	Describe("UpdateAccount", func() {
		It("updates username and email without touching the credential", func() {
			before := repo.users[1].PasswordHash

			u, err := service.UpdateAccount(1, UpdateAccountDTO{
				Username: "slava",
				Email:    "slava@example.com",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Username).To(Equal("slava"))
			Expect(u.Email).To(Equal("slava@example.com"))
			Expect(u.PasswordHash).To(Equal(before))
		})

		It("rotates the credential when a password is provided", func() {
			before := repo.users[1].PasswordHash

			u, err := service.UpdateAccount(1, UpdateAccountDTO{
				Username: "yaroslav",
				Email:    "yaroslav@example.com",
				Password: "brand-new-secret",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(u.PasswordHash).NotTo(Equal(before))

			Expect(bcrypt.CompareHashAndPassword(
				[]byte(u.PasswordHash), []byte("brand-new-secret"))).To(Succeed())
		})

		It("rejects a short password", func() {
			_, err := service.UpdateAccount(1, UpdateAccountDTO{
				Username: "yaroslav",
				Email:    "yaroslav@example.com",
				Password: "short",
			})
			var verr ValidationError
			Expect(errors.As(err, &verr)).To(BeTrue())
		})

		It("rejects a blank username or invalid email", func() {
			_, err := service.UpdateAccount(1, UpdateAccountDTO{Username: " ", Email: "yaroslav@example.com"})
			var verr ValidationError
			Expect(errors.As(err, &verr)).To(BeTrue())

			_, err = service.UpdateAccount(1, UpdateAccountDTO{Username: "yaroslav", Email: "not-an-email"})
			Expect(errors.As(err, &verr)).To(BeTrue())
		})
	})

	Describe("DisplayName", func() {
		It("prefers the username and falls back to the email", func() {
			named := &User{Username: "yaroslav", Email: "yaroslav@example.com"}
			Expect(named.DisplayName()).To(Equal("yaroslav"))

			nameless := &User{Email: "nameless@example.com"}
			Expect(nameless.DisplayName()).To(Equal("nameless@example.com"))
		})
	})
})
