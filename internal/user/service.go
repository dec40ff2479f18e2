package user

import (
	"fmt"

	"github.com/Yaroslav326/TaskManagement/internal"
	"golang.org/x/crypto/bcrypt"
)

type Repository interface {
	GetByID(userID int64) (*User, error)
	Update(u *User) error
}

type Service struct {
	repo       Repository
	bcryptCost int
}

func NewService(repo Repository, bcryptCost int) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:       repo,
		bcryptCost: bcryptCost,
	}
}

func (s *Service) GetByID(userID int64) (*User, error) {
	u, err := s.repo.GetByID(userID)
	if err != nil {
		return nil, internal.ErrUserNotFound.WithCause(err)
	}
	return u, nil
}

// UpdateAccount edits the principal's profile; a non-empty password rotates
// the credential.
func (s *Service) UpdateAccount(userID int64, dto UpdateAccountDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	u, err := s.repo.GetByID(userID)
	if err != nil {
		return nil, internal.ErrUserNotFound.WithCause(err)
	}

	u.Username = dto.Username
	u.Email = dto.Email

	if dto.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		u.PasswordHash = string(hash)
	}

	if err := s.repo.Update(u); err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}

	return u, nil
}
