package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/forgecloud/identity-service/internal/domain"
	"github.com/forgecloud/identity-service/internal/ports"
)

// crudBase is the generic CRUD core shared by every entity repository. It
// maps one GORM model type to the record-store operations the ports expose;
// typed repositories wrap it with domain mapping.
type crudBase[M any] struct {
	db       *gorm.DB
	idColumn string
}

func newCrudBase[M any](db *gorm.DB, idColumn string) crudBase[M] {
	return crudBase[M]{db: db, idColumn: idColumn}
}

func (b crudBase[M]) create(ctx context.Context, record *M) error {
	if err := b.db.WithContext(ctx).Create(record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: duplicate record", domain.ErrConflict)
		}
		return err
	}
	return nil
}

func (b crudBase[M]) getByID(ctx context.Context, id uuid.UUID) (M, error) {
	var rec M
	err := b.db.WithContext(ctx).Where(b.idColumn+" = ?", id).Take(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return rec, domain.ErrNotFound
		}
		return rec, err
	}
	return rec, nil
}

func (b crudBase[M]) updateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	var model M
	res := b.db.WithContext(ctx).
		Model(&model).
		Where(b.idColumn+" = ?", id).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (b crudBase[M]) delete(ctx context.Context, id uuid.UUID) error {
	var model M
	res := b.db.WithContext(ctx).Where(b.idColumn+" = ?", id).Delete(&model)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (b crudBase[M]) find(ctx context.Context, constraints ...ports.Constraint) ([]M, error) {
	q := b.db.WithContext(ctx)
	for _, c := range constraints {
		switch c.Kind {
		case ports.ConstraintEquals:
			q = q.Where(c.Field+" = ?", c.Value)
		case ports.ConstraintOrderBy:
			dir := "ASC"
			if c.Descending {
				dir = "DESC"
			}
			q = q.Order(c.Field + " " + dir)
		case ports.ConstraintLimit:
			q = q.Limit(c.N)
		default:
			return nil, fmt.Errorf("%w: unknown query constraint %d", domain.ErrInvalidInput, c.Kind)
		}
	}
	var recs []M
	if err := q.Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}
