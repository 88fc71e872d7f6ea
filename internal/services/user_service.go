package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tienda/internal/models"
	"tienda/internal/repositories"

	"github.com/rs/zerolog/log"
)

// UserInput is an admin-created account.
type UserInput struct {
	Registration
	RoleID uint
}

// UserPatch is a partial user update. Nil fields are left untouched; a non-nil
// Address upserts the default address.
type UserPatch struct {
	Name     *string
	Surname  *string
	Email    *string
	Password *string
	RoleID   *uint
	Address  *AddressInput
}

// AddressInput is a shipping address as typed by a user.
type AddressInput struct {
	Street string
	Unit   *string
	Region string
	Comune string
}

// UserService handles user administration and purchase history.
type UserService struct {
	users    repositories.UserRepository
	receipts repositories.ReceiptRepository
}

// NewUserService creates a new UserService.
func NewUserService(users repositories.UserRepository, receipts repositories.ReceiptRepository) *UserService {
	return &UserService{users: users, receipts: receipts}
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.users.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *UserService) checkRole(ctx context.Context, roleID uint) error {
	if _, err := s.users.GetRole(ctx, roleID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return invalid("role %d does not exist", roleID)
		}
		return err
	}
	return nil
}

func (s *UserService) checkEmail(ctx context.Context, email string, selfID uint) error {
	existing, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil && existing.ID != selfID:
		return fmt.Errorf("email '%s' already registered: %w", email, ErrDuplicate)
	case err != nil && !errors.Is(err, ErrNotFound):
		return err
	}
	return nil
}

// Create opens an account with an explicit role.
func (s *UserService) Create(ctx context.Context, in UserInput) (*models.User, error) {
	if in.RoleID == 0 {
		in.RoleID = models.RoleClientID
	}
	if err := s.checkRole(ctx, in.RoleID); err != nil {
		return nil, err
	}
	email := normalizeEmail(in.Email)
	if err := s.checkEmail(ctx, email, 0); err != nil {
		return nil, err
	}
	hashed, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         strings.TrimSpace(in.Name),
		Surname:      strings.TrimSpace(in.Surname),
		Email:        email,
		PasswordHash: hashed,
		RoleID:       in.RoleID,
	}
	var address *models.Address
	if strings.TrimSpace(in.Street) != "" {
		address = &models.Address{
			Street: strings.TrimSpace(in.Street),
			Unit:   trimmedOrNil(in.Unit),
			Region: strings.TrimSpace(in.Region),
			Comune: strings.TrimSpace(in.Comune),
		}
	}
	if err := s.users.Create(ctx, user, address); err != nil {
		return nil, err
	}
	log.Info().Uint("user_id", user.ID).Uint("role_id", user.RoleID).Msg("user created by administrator")
	return s.users.GetByID(ctx, user.ID)
}

// Update applies a partial update to a user and upserts the default address.
func (s *UserService) Update(ctx context.Context, id uint, patch UserPatch) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		user.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Surname != nil {
		user.Surname = strings.TrimSpace(*patch.Surname)
	}
	if patch.Email != nil {
		email := normalizeEmail(*patch.Email)
		if err := s.checkEmail(ctx, email, id); err != nil {
			return nil, err
		}
		user.Email = email
	}
	if patch.Password != nil {
		if len(*patch.Password) < 6 {
			return nil, invalid("password must have at least 6 characters")
		}
		hashed, err := hashPassword(*patch.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hashed
	}
	if patch.RoleID != nil {
		if err := s.checkRole(ctx, *patch.RoleID); err != nil {
			return nil, err
		}
		user.RoleID = *patch.RoleID
	}
	if user.Name == "" || user.Surname == "" || user.Email == "" {
		return nil, invalid("name, surname and email must not be empty")
	}

	var address *models.Address
	if a := patch.Address; a != nil {
		address = &models.Address{
			Street: strings.TrimSpace(a.Street),
			Unit:   trimmedOrNil(a.Unit),
			Region: strings.TrimSpace(a.Region),
			Comune: strings.TrimSpace(a.Comune),
		}
		if address.Street == "" || address.Region == "" || address.Comune == "" {
			return nil, invalid("street, region and comune are required for the address")
		}
	}

	if err := s.users.Update(ctx, user, address); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, id)
}

// Receipts returns the purchase history of a user, newest first.
func (s *UserService) Receipts(ctx context.Context, userID uint) ([]models.Receipt, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	receipts, err := s.receipts.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if receipts == nil {
		receipts = []models.Receipt{}
	}
	return receipts, nil
}
