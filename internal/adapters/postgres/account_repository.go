package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/forgecloud/identity-service/internal/domain"
	"github.com/forgecloud/identity-service/internal/ports"
)

type accountRepository struct {
	base crudBase[accountModel]
}

// NewAccountRepository builds the account record store over a GORM
// connection.
func NewAccountRepository(db *gorm.DB) ports.AccountRepository {
	return &accountRepository{base: newCrudBase[accountModel](db, "id")}
}

func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	rec := toAccountModel(*account)
	if err := r.base.create(ctx, &rec); err != nil {
		return err
	}
	// The store assigns the id on insert.
	account.ID = rec.ID
	return nil
}

func (r *accountRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Account, error) {
	rec, err := r.base.getByID(ctx, id)
	if err != nil {
		return domain.Account{}, err
	}
	return toDomainAccount(rec), nil
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	recs, err := r.base.find(ctx, ports.Equals("email", email), ports.Limit(1))
	if err != nil {
		return domain.Account{}, err
	}
	if len(recs) == 0 {
		return domain.Account{}, domain.ErrNotFound
	}
	return toDomainAccount(recs[0]), nil
}

func (r *accountRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	return r.base.updateFields(ctx, id, fields)
}

func (r *accountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.base.delete(ctx, id)
}

func (r *accountRepository) Find(ctx context.Context, constraints ...ports.Constraint) ([]domain.Account, error) {
	recs, err := r.base.find(ctx, constraints...)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Account, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toDomainAccount(rec))
	}
	return out, nil
}

func (r *accountRepository) IncrementAPIRequests(ctx context.Context, id uuid.UUID) error {
	res := r.base.db.WithContext(ctx).
		Model(&accountModel{}).
		Where("id = ?", id).
		UpdateColumn("api_requests_count", gorm.Expr("api_requests_count + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
