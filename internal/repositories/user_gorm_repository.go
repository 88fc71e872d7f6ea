package repositories

import (
	"context"
	"errors"

	"tienda/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

func (r *GORMUserRepository) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Role").
		Preload("Addresses", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		})
}

// GetAll retrieves all users ordered by id.
func (r *GORMUserRepository) GetAll(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.withRelations(ctx).Order("id ASC").Find(&users).Error; err != nil {
		return nil, translate(err, "list users")
	}
	return users, nil
}

// GetByID retrieves a user by its ID.
func (r *GORMUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.withRelations(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err, "user %d", id)
	}
	return &user, nil
}

// GetByEmail retrieves a user by email.
func (r *GORMUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.withRelations(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err, "user %q", email)
	}
	return &user, nil
}

// Create inserts a user and its first address atomically.
func (r *GORMUserRepository) Create(ctx context.Context, user *models.User, address *models.Address) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(user).Error; err != nil {
			return translate(err, "create user %q", user.Email)
		}
		if address == nil {
			return nil
		}
		address.ID = 0
		address.UserID = user.ID
		if err := tx.Create(address).Error; err != nil {
			return translate(err, "create address for user %d", user.ID)
		}
		user.Addresses = []models.Address{*address}
		return nil
	})
}

// Update writes the user's columns and upserts the default address.
func (r *GORMUserRepository) Update(ctx context.Context, user *models.User, address *models.Address) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
			"name":          user.Name,
			"surname":       user.Surname,
			"email":         user.Email,
			"password_hash": user.PasswordHash,
			"role_id":       user.RoleID,
		})
		if res.Error != nil {
			return translate(res.Error, "update user %d", user.ID)
		}
		if res.RowsAffected == 0 {
			return translate(gorm.ErrRecordNotFound, "update user %d", user.ID)
		}
		if address == nil {
			return nil
		}

		var current models.Address
		err := tx.Where("user_id = ?", user.ID).Order("id ASC").First(&current).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			address.ID = 0
			address.UserID = user.ID
			if err := tx.Create(address).Error; err != nil {
				return translate(err, "create address for user %d", user.ID)
			}
		case err != nil:
			return translate(err, "load address of user %d", user.ID)
		default:
			address.ID = current.ID
			address.UserID = user.ID
			err := tx.Model(&current).Updates(map[string]interface{}{
				"street": address.Street,
				"unit":   address.Unit,
				"region": address.Region,
				"comune": address.Comune,
			}).Error
			if err != nil {
				return translate(err, "update address %d", current.ID)
			}
		}
		return nil
	})
}

// GetRole retrieves a role by its ID.
func (r *GORMUserRepository) GetRole(ctx context.Context, id uint) (*models.Role, error) {
	var role models.Role
	if err := r.db.WithContext(ctx).First(&role, id).Error; err != nil {
		return nil, translate(err, "role %d", id)
	}
	return &role, nil
}
