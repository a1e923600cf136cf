package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/forgecloud/identity-service/internal/domain"
	"github.com/forgecloud/identity-service/internal/ports"
)

type loginAttemptRepository struct {
	db *gorm.DB
}

// NewLoginAttemptRepository builds the login audit store.
func NewLoginAttemptRepository(db *gorm.DB) ports.LoginAttemptRepository {
	return &loginAttemptRepository{db: db}
}

func (r *loginAttemptRepository) Insert(ctx context.Context, attempt domain.LoginAttempt) error {
	rec := loginAttemptModel{
		AccountID:     attempt.AccountID,
		AttemptAt:     attempt.AttemptAt,
		Status:        attempt.Status,
		FailureReason: attempt.FailureReason,
		UserAgent:     attempt.UserAgent,
	}
	if attempt.IPAddress != "" {
		ip := attempt.IPAddress
		rec.IPAddress = &ip
	}
	return r.db.WithContext(ctx).Create(&rec).Error
}

func (r *loginAttemptRepository) ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int, since *time.Time) ([]domain.LoginAttempt, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	q := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("attempt_at DESC").
		Limit(limit).
		Offset(offset)
	if since != nil {
		q = q.Where("attempt_at >= ?", *since)
	}
	var recs []loginAttemptModel
	if err := q.Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]domain.LoginAttempt, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toDomainAttempt(rec))
	}
	return out, nil
}
