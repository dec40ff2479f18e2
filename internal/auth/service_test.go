package auth

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/Yaroslav326/TaskManagement/internal"
)

func TestAuth(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Auth Module Suite")
}

// Mock UserRepository for testing
type mockUserRepository struct {
	users         map[string]string // email -> password hash
	userIDs       map[string]int64  // email -> userID
	usersByID     map[int64]*User
	nextID        int64
	returnError   bool
	errorToReturn error
}

func newMockUserRepository() *mockUserRepository {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("correct_password"), bcrypt.MinCost)

	return &mockUserRepository{
		users: map[string]string{
			"anna@example.com": string(hashedPassword),
			"boris@example.com": string(hashedPassword),
		},
		userIDs: map[string]int64{
			"anna@example.com":  1,
			"boris@example.com": 2,
		},
		usersByID: map[int64]*User{
			1: {ID: 1, Username: "anna", Email: "anna@example.com"},
			2: {ID: 2, Username: "boris", Email: "boris@example.com"},
		},
		nextID: 3,
	}
}

func (m *mockUserRepository) GetPasswordForEmail(email string) (string, int64, error) {
	if m.returnError {
		return "", 0, m.errorToReturn
	}
	if hash, exists := m.users[email]; exists {
		return hash, m.userIDs[email], nil
	}
	return "", 0, errors.New("user not found")
}

func (m *mockUserRepository) GetUserByID(_ context.Context, userID int64) (*User, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}
	if user, exists := m.usersByID[userID]; exists {
		return user, nil
	}
	return nil, errors.New("user not found")
}

func (m *mockUserRepository) CreateUser(username, email, passwordHash string) (int64, error) {
	if m.returnError {
		return 0, m.errorToReturn
	}
	id := m.nextID
	m.nextID++
	m.users[email] = passwordHash
	m.userIDs[email] = id
	m.usersByID[id] = &User{ID: id, Username: username, Email: email}
	return id, nil
}

func (m *mockUserRepository) EmailExists(email string) (bool, error) {
	if m.returnError {
		return false, m.errorToReturn
	}
	_, exists := m.users[email]
	return exists, nil
}

var _ = ginkgo.Describe("AuthService", func() {
	var (
		service  *Service
		mockRepo *mockUserRepository
		tokenGen *JWTTokenGenerator
		secret   = "test-secret-key-with-enough-entropy"
	)

	ginkgo.BeforeEach(func() {
		mockRepo = newMockUserRepository()
		tokenGen = NewJWTTokenGenerator(secret, 24*time.Hour)
		service = NewService(mockRepo, tokenGen, bcrypt.MinCost)
	})

	ginkgo.Describe("Login", func() {
		ginkgo.Context("when credentials are valid", func() {
			ginkgo.It("should return a session token", func() {
				resp, err := service.Login(LoginDTO{
					Email:    "anna@example.com",
					Password: "correct_password",
				})

				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(resp.Token).ToNot(gomega.BeEmpty())
			})

			ginkgo.It("should issue a token that validates back to the same principal", func() {
				resp, err := service.Login(LoginDTO{
					Email:    "anna@example.com",
					Password: "correct_password",
				})
				gomega.Expect(err).ToNot(gomega.HaveOccurred())

				claims, err := service.ValidateToken(resp.Token)
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(claims.UserID).To(gomega.Equal(int64(1)))
			})
		})

		ginkgo.Context("when credentials are invalid", func() {
			ginkgo.It("should reject a wrong password", func() {
				_, err := service.Login(LoginDTO{
					Email:    "anna@example.com",
					Password: "wrong_password",
				})
				gomega.Expect(err).To(gomega.MatchError(ErrInvalidCredentials))
			})

			ginkgo.It("should reject an unknown email", func() {
				_, err := service.Login(LoginDTO{
					Email:    "nobody@example.com",
					Password: "correct_password",
				})
				gomega.Expect(err).To(gomega.MatchError(ErrInvalidCredentials))
			})

			ginkgo.It("should reject empty fields with a validation error", func() {
				_, err := service.Login(LoginDTO{})
				gomega.Expect(err).To(gomega.BeAssignableToTypeOf(ValidationError{}))
			})
		})
	})

	ginkgo.Describe("Register", func() {
		ginkgo.It("should create the principal and log it in", func() {
			resp, err := service.Register(RegisterDTO{
				Username: "vera",
				Email:    "vera@example.com",
				Password: "long-enough-password",
			})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			claims, err := service.ValidateToken(resp.Token)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(claims.UserID).To(gomega.Equal(int64(3)))
		})

		ginkgo.It("should reject a duplicate email", func() {
			_, err := service.Register(RegisterDTO{
				Username: "anna2",
				Email:    "anna@example.com",
				Password: "long-enough-password",
			})
			gomega.Expect(err).To(gomega.MatchError(ErrEmailTaken))
		})
	})

	ginkgo.Describe("ValidateToken", func() {
		ginkgo.It("should return Expired for an expired token", func() {
			expiredGen := NewJWTTokenGenerator(secret, -time.Minute)
			token, err := expiredGen.GenerateToken(1)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = tokenGen.ValidateToken(token)
			gomega.Expect(err).To(gomega.MatchError(ErrTokenExpired))
		})

		ginkgo.It("should return SignatureInvalid for a token signed with another secret", func() {
			otherGen := NewJWTTokenGenerator("another-secret-key-entirely-here", 24*time.Hour)
			token, err := otherGen.GenerateToken(1)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = tokenGen.ValidateToken(token)
			gomega.Expect(err).To(gomega.MatchError(ErrInvalidSignature))
		})

		ginkgo.It("should return Malformed for garbage input", func() {
			_, err := tokenGen.ValidateToken("not.a.jwt")
			gomega.Expect(err).To(gomega.MatchError(ErrMalformedToken))
		})

		ginkgo.It("should return Missing for an empty token", func() {
			_, err := tokenGen.ValidateToken("")
			gomega.Expect(err).To(gomega.MatchError(ErrMissingToken))
		})

		ginkgo.It("should report failures through the shared application error set", func() {
			_, err := tokenGen.ValidateToken("")
			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(internal.ErrCodeMissingToken))
			gomega.Expect(appErr.StatusCode).To(gomega.Equal(http.StatusUnauthorized))

			expiredGen := NewJWTTokenGenerator(secret, -time.Minute)
			token, err := expiredGen.GenerateToken(1)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = tokenGen.ValidateToken(token)
			gomega.Expect(errors.Is(err, internal.ErrTokenExpired)).To(gomega.BeTrue())

			_, err = service.Login(LoginDTO{Email: "anna@example.com", Password: "nope-nope"})
			gomega.Expect(errors.Is(err, internal.ErrInvalidCredentials)).To(gomega.BeTrue())
		})
	})
})
