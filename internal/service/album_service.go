package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dom/musikkhylla/internal/domain"
	"github.com/dom/musikkhylla/internal/metrics"
	"github.com/dom/musikkhylla/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CollectionNotifier is told about committed changes to a user's albums.
type CollectionNotifier interface {
	CollectionChanged(userID uuid.UUID, change domain.CollectionChange)
}

type AlbumService struct {
	repos   *repository.Repositories
	events  CollectionNotifier
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

type AlbumOption func(*AlbumService)

func WithCollectionNotifier(n CollectionNotifier) AlbumOption {
	return func(s *AlbumService) { s.events = n }
}

func WithAlbumMetrics(m *metrics.Metrics) AlbumOption {
	return func(s *AlbumService) { s.metrics = m }
}

func WithAlbumClock(now func() time.Time) AlbumOption {
	return func(s *AlbumService) { s.now = now }
}

func NewAlbumService(repos *repository.Repositories, logger *slog.Logger, opts ...AlbumOption) *AlbumService {
	s := &AlbumService{
		repos:  repos,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns the user's albums by ascending position. An empty collection
// is seeded with DefaultAlbums first, so only the first call ever seeds.
func (s *AlbumService) List(ctx context.Context, userID uuid.UUID) ([]*domain.Album, error) {
	var albums []*domain.Album
	err := s.repos.Tx.WithinTx(ctx, func(repos *repository.Repositories) error {
		var err error
		albums, err = repos.Album.ListByUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("list albums: %w", err)
		}
		if len(albums) > 0 {
			return nil
		}

		seed := seedAlbums(userID, s.now())
		if err := repos.Album.CreateMany(ctx, seed); err != nil {
			return fmt.Errorf("seed albums: %w", err)
		}
		s.logger.InfoContext(ctx, "seeded default albums", "user_id", userID, "count", len(seed))

		albums, err = repos.Album.ListByUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("list seeded albums: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, internalError(ctx, s.logger, "albums.List", err)
	}
	return albums, nil
}

// Create appends the album at position = current album count. Gaps left by
// deletions are not taken into account.
func (s *AlbumService) Create(ctx context.Context, userID uuid.UUID, input domain.AlbumInput) (*domain.Album, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Artist = strings.TrimSpace(input.Artist)
	if err := input.Validate(); err != nil {
		return nil, err
	}

	album := newAlbum(userID, input, 0, s.now())
	err := s.repos.Tx.WithinTx(ctx, func(repos *repository.Repositories) error {
		count, err := repos.Album.CountByUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("count albums: %w", err)
		}
		album.Position = int(count)
		if err := repos.Album.Create(ctx, album); err != nil {
			return fmt.Errorf("create album: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, internalError(ctx, s.logger, "albums.Create", err)
	}

	s.committed(userID, "create", domain.CollectionChange{Kind: domain.ChangeCreated, AlbumID: &album.ID})
	return album, nil
}

// Update applies only the fields present in patch to an album the user owns.
// Albums of other users are reported as not found.
func (s *AlbumService) Update(ctx context.Context, userID, albumID uuid.UUID, patch domain.AlbumPatch) (*domain.Album, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if patch.Title.Set {
		patch.Title = domain.Some(strings.TrimSpace(*patch.Title.Value))
	}
	if patch.Artist.Set {
		patch.Artist = domain.Some(strings.TrimSpace(*patch.Artist.Value))
	}

	var album *domain.Album
	err := s.repos.Tx.WithinTx(ctx, func(repos *repository.Repositories) error {
		var err error
		album, err = repos.Album.GetForUser(ctx, userID, albumID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrAlbumNotFound
		}
		if err != nil {
			return fmt.Errorf("find album: %w", err)
		}

		if err := repos.Album.Update(ctx, userID, albumID, patch.Columns()); err != nil {
			return fmt.Errorf("update album: %w", err)
		}
		patch.Apply(album)
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrAlbumNotFound) {
			return nil, err
		}
		return nil, internalError(ctx, s.logger, "albums.Update", err)
	}

	s.committed(userID, "update", domain.CollectionChange{Kind: domain.ChangeUpdated, AlbumID: &album.ID})
	return album, nil
}

// Delete removes one owned album. Sibling positions are left as they are.
func (s *AlbumService) Delete(ctx context.Context, userID, albumID uuid.UUID) error {
	err := s.repos.Album.Delete(ctx, userID, albumID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrAlbumNotFound
	}
	if err != nil {
		return internalError(ctx, s.logger, "albums.Delete", err)
	}

	s.committed(userID, "delete", domain.CollectionChange{Kind: domain.ChangeDeleted, AlbumID: &albumID})
	return nil
}

// Reorder sets the position of each listed album to its index in albumIDs.
// Ids the user does not own are skipped, and albums left out of the list keep
// their old position, which can produce duplicate positions.
func (s *AlbumService) Reorder(ctx context.Context, userID uuid.UUID, albumIDs []uuid.UUID) error {
	applied := 0
	err := s.repos.Tx.WithinTx(ctx, func(repos *repository.Repositories) error {
		for i, id := range albumIDs {
			ok, err := repos.Album.SetPosition(ctx, userID, id, i)
			if err != nil {
				return fmt.Errorf("set position of %s: %w", id, err)
			}
			if ok {
				applied++
			}
		}
		return nil
	})
	if err != nil {
		return internalError(ctx, s.logger, "albums.Reorder", err)
	}

	if skipped := len(albumIDs) - applied; skipped > 0 {
		s.logger.InfoContext(ctx, "reorder skipped unknown albums", "user_id", userID, "skipped", skipped)
	}
	s.committed(userID, "reorder", domain.CollectionChange{Kind: domain.ChangeReordered})
	return nil
}

func (s *AlbumService) committed(userID uuid.UUID, op string, change domain.CollectionChange) {
	s.metrics.AlbumMutation(op)
	if s.events != nil {
		s.events.CollectionChanged(userID, change)
	}
}

func newAlbum(userID uuid.UUID, input domain.AlbumInput, position int, now time.Time) *domain.Album {
	return &domain.Album{
		ID:            uuid.New(),
		UserID:        userID,
		Title:         input.Title,
		Artist:        input.Artist,
		Year:          input.Year,
		CoverURL:      input.CoverURL,
		SpotifyURL:    input.SpotifyURL,
		AppleMusicURL: input.AppleMusicURL,
		TidalURL:      input.TidalURL,
		Position:      position,
		CreatedAt:     now,
	}
}
