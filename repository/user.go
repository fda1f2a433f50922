package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yeremiapane/table-ordering/database"
	"github.com/yeremiapane/table-ordering/domain"
	"github.com/yeremiapane/table-ordering/models"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func userToDomain(u models.User) domain.User {
	return domain.User{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      domain.Role(u.Role),
		FullName:  u.FullName,
		CreatedAt: u.CreatedAt,
		LastLogin: u.LastLogin,
	}
}

func (r *UserRepository) Insert(ctx context.Context, u domain.User, passwordHash string) (domain.User, error) {
	row := models.User{
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: passwordHash,
		Role:         string(u.Role),
		FullName:     u.FullName,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		err = database.TranslateError(err)
		if domain.KindOf(err) == domain.KindConflict {
			return domain.User{}, domain.ConflictError("User already exists")
		}
		return domain.User{}, fmt.Errorf("r.db.Create -> %w", err)
	}
	return userToDomain(row), nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uint) (domain.User, error) {
	var row models.User
	err := r.db.WithContext(ctx).First(&row, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.User{}, domain.NotFoundError("User not found")
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("r.db.First -> %w", database.TranslateError(err))
	}
	return userToDomain(row), nil
}

// GetCredentials finds a user by username or email and returns the stored hash.
func (r *UserRepository) GetCredentials(ctx context.Context, login string) (domain.User, string, error) {
	var row models.User
	err := r.db.WithContext(ctx).Where("username = ? OR email = ?", login, login).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.User{}, "", domain.NotFoundError("User not found")
	}
	if err != nil {
		return domain.User{}, "", fmt.Errorf("r.db.First -> %w", database.TranslateError(err))
	}
	return userToDomain(row), row.PasswordHash, nil
}

func (r *UserRepository) Exists(ctx context.Context, username, email *string) (bool, error) {
	q := r.db.WithContext(ctx).Model(&models.User{})
	switch {
	case username != nil && email != nil:
		q = q.Where("username = ? OR email = ?", *username, *email)
	case username != nil:
		q = q.Where("username = ?", *username)
	case email != nil:
		q = q.Where("email = ?", *email)
	default:
		return false, nil
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("r.db.Count -> %w", database.TranslateError(err))
	}
	return count > 0, nil
}

func (r *UserRepository) TouchLastLogin(ctx context.Context, id uint, at time.Time) error {
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("last_login", at).Error
	if err != nil {
		return fmt.Errorf("r.db.Update -> %w", database.TranslateError(err))
	}
	return nil
}

// List returns users ordered by id. A nil role lists everyone.
func (r *UserRepository) List(ctx context.Context, role *domain.Role) ([]domain.User, error) {
	q := r.db.WithContext(ctx).Order("id")
	if role != nil {
		q = q.Where("role = ?", string(*role))
	}

	var rows []models.User
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("r.db.Find -> %w", database.TranslateError(err))
	}

	out := make([]domain.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, userToDomain(row))
	}
	return out, nil
}
