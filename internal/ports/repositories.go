package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/forgecloud/identity-service/internal/domain"
)

// ConstraintKind discriminates the query-constraint union accepted by Find.
type ConstraintKind int

const (
	ConstraintEquals ConstraintKind = iota
	ConstraintOrderBy
	ConstraintLimit
)

// Constraint is one element of a record-store query: a field-equality match,
// an ordering directive, or a result cap. Build values with the helpers
// below rather than by hand.
type Constraint struct {
	Kind       ConstraintKind
	Field      string
	Value      any
	Descending bool
	N          int
}

// Equals matches records whose field equals value.
func Equals(field string, value any) Constraint {
	return Constraint{Kind: ConstraintEquals, Field: field, Value: value}
}

// OrderBy sorts results by field.
func OrderBy(field string, descending bool) Constraint {
	return Constraint{Kind: ConstraintOrderBy, Field: field, Descending: descending}
}

// Limit caps the number of results.
func Limit(n int) Constraint {
	return Constraint{Kind: ConstraintLimit, N: n}
}

// Repository is the generic CRUD base every entity store implements.
// UpdateFields performs a partial, last-write-wins update of the named
// columns; callers batch related mutations into one call so a flow step is a
// single write.
type Repository[T any] interface {
	Create(ctx context.Context, record *T) error
	GetByID(ctx context.Context, id uuid.UUID) (T, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
	Find(ctx context.Context, constraints ...Constraint) ([]T, error)
}

// AccountRepository is the account record store. It layers the one typed
// lookup the auth flows need on top of the generic base.
type AccountRepository interface {
	Repository[domain.Account]
	GetByEmail(ctx context.Context, email string) (domain.Account, error)
	// IncrementAPIRequests atomically bumps the usage counter, avoiding the
	// read-modify-write race under concurrent requests.
	IncrementAPIRequests(ctx context.Context, id uuid.UUID) error
}

// LoginAttemptRepository stores login outcomes for audit.
type LoginAttemptRepository interface {
	Insert(ctx context.Context, attempt domain.LoginAttempt) error
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int, since *time.Time) ([]domain.LoginAttempt, error)
}
