package repository

import (
	"context"
	"time"

	"github.com/dom/musikkhylla/internal/domain"
	"github.com/google/uuid"
)

// Lookups that miss return gorm.ErrRecordNotFound.

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	// Delete removes the user; the store cascades to the user's codes and albums.
	Delete(ctx context.Context, id uuid.UUID) error
}

type LoginCodeRepository interface {
	Create(ctx context.Context, code *domain.LoginCode) error
	// InvalidateUnused marks every unused code of the user as used.
	InvalidateUnused(ctx context.Context, userID uuid.UUID) (int64, error)
	// FindUnused matches on user, exact code and used = false. Expiry is not checked.
	FindUnused(ctx context.Context, userID uuid.UUID, code string) (*domain.LoginCode, error)
	// MarkUsed flips used only if it is still false and reports whether it did.
	MarkUsed(ctx context.Context, id uuid.UUID) (bool, error)
	// DeleteStale removes codes created before cutoff that are used or expired at now.
	DeleteStale(ctx context.Context, cutoff, now time.Time) (int64, error)
}

type AlbumRepository interface {
	Create(ctx context.Context, album *domain.Album) error
	CreateMany(ctx context.Context, albums []*domain.Album) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Album, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	GetForUser(ctx context.Context, userID, id uuid.UUID) (*domain.Album, error)
	Update(ctx context.Context, userID, id uuid.UUID, columns map[string]any) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	// SetPosition reports false when no album matches (id, userID).
	SetPosition(ctx context.Context, userID, id uuid.UUID, position int) (bool, error)
}

// Transactor runs fn with repositories bound to one transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(repos *Repositories) error) error
}

type Repositories struct {
	User      UserRepository
	LoginCode LoginCodeRepository
	Album     AlbumRepository
	Tx        Transactor
}
