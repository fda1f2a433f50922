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

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func sessionToDomain(s models.Session) domain.Session {
	return domain.Session{
		ID:           s.ID,
		TableNumber:  s.TableNumber,
		DeviceID:     s.DeviceID,
		CustomerID:   s.CustomerID,
		CustomerName: s.CustomerName,
		CreatedAt:    s.CreatedAt,
		LastActivity: s.LastActivity,
		IsActive:     s.IsActive,
	}
}

func (r *SessionRepository) Create(ctx context.Context, s domain.Session) (domain.Session, error) {
	row := models.Session{
		ID:           s.ID,
		TableNumber:  s.TableNumber,
		DeviceID:     s.DeviceID,
		CustomerID:   s.CustomerID,
		CustomerName: s.CustomerName,
		CreatedAt:    s.CreatedAt,
		LastActivity: s.LastActivity,
		IsActive:     true,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return domain.Session{}, fmt.Errorf("r.db.Create -> %w", database.TranslateError(err))
	}
	return sessionToDomain(row), nil
}

func (r *SessionRepository) Get(ctx context.Context, id string) (domain.Session, error) {
	var row models.Session
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Session{}, domain.NotFoundError("Session not found")
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("r.db.First -> %w", database.TranslateError(err))
	}
	return sessionToDomain(row), nil
}

// Touch moves last_activity forward to at. It never moves it backwards.
func (r *SessionRepository) Touch(ctx context.Context, id string, at time.Time) (time.Time, error) {
	var row models.Session
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&row).Error; err != nil {
			return err
		}
		if at.Before(row.LastActivity) {
			return nil
		}
		row.LastActivity = at
		return tx.Model(&models.Session{}).Where("id = ?", id).Update("last_activity", at).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return time.Time{}, domain.NotFoundError("Session not found")
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("r.db.Transaction -> %w", database.TranslateError(err))
	}
	return row.LastActivity, nil
}

// Deactivate ends a session. Ending an already ended session is not an error.
func (r *SessionRepository) Deactivate(ctx context.Context, id string) (domain.Session, error) {
	session, err := r.Get(ctx, id)
	if err != nil {
		return domain.Session{}, err
	}
	if !session.IsActive {
		return session, nil
	}

	err = r.db.WithContext(ctx).
		Model(&models.Session{}).
		Where("id = ? AND is_active = ?", id, true).
		Update("is_active", false).Error
	if err != nil {
		return domain.Session{}, fmt.Errorf("r.db.Update -> %w", database.TranslateError(err))
	}
	session.IsActive = false
	return session, nil
}

func (r *SessionRepository) ListActiveForTable(ctx context.Context, number int) ([]domain.Session, error) {
	var rows []models.Session
	err := r.db.WithContext(ctx).
		Where("table_number = ? AND is_active = ?", number, true).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("r.db.Find -> %w", database.TranslateError(err))
	}

	out := make([]domain.Session, 0, len(rows))
	for _, row := range rows {
		out = append(out, sessionToDomain(row))
	}
	return out, nil
}

// DeactivateIdle ends active sessions with no activity since cutoff.
func (r *SessionRepository) DeactivateIdle(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Session{}).
		Where("is_active = ? AND last_activity < ?", true, cutoff).
		Update("is_active", false)
	if res.Error != nil {
		return 0, fmt.Errorf("r.db.Update -> %w", database.TranslateError(res.Error))
	}
	return res.RowsAffected, nil
}

// DeactivateSettled ends active sessions whose orders are all paid, the last
// payment having happened before cutoff. Sessions without orders are left alone.
func (r *SessionRepository) DeactivateSettled(ctx context.Context, cutoff time.Time) (int64, error) {
	paid := string(domain.StatusPaid)
	res := r.db.WithContext(ctx).
		Model(&models.Session{}).
		Where("is_active = ?", true).
		Where("EXISTS (SELECT 1 FROM orders o WHERE o.session_id = sessions.id)").
		Where("NOT EXISTS (SELECT 1 FROM orders o WHERE o.session_id = sessions.id AND o.status <> ?)", paid).
		Where("(SELECT MAX(o.paid_at) FROM orders o WHERE o.session_id = sessions.id) < ?", cutoff).
		Update("is_active", false)
	if res.Error != nil {
		return 0, fmt.Errorf("r.db.Update -> %w", database.TranslateError(res.Error))
	}
	return res.RowsAffected, nil
}
