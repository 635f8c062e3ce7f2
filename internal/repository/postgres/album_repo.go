package postgres

import (
	"context"

	"github.com/dom/musikkhylla/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type albumRepository struct {
	db *gorm.DB
}

func NewAlbumRepository(db *gorm.DB) *albumRepository {
	return &albumRepository{db: db}
}

func (r *albumRepository) Create(ctx context.Context, album *domain.Album) error {
	return r.db.WithContext(ctx).Create(album).Error
}

func (r *albumRepository) CreateMany(ctx context.Context, albums []*domain.Album) error {
	if len(albums) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(albums).Error
}

// ListByUser orders by position; created_at breaks ties left by partial reorders.
func (r *albumRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Album, error) {
	var albums []*domain.Album
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("position ASC").
		Order("created_at ASC").
		Find(&albums).Error
	if err != nil {
		return nil, err
	}
	return albums, nil
}

func (r *albumRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Album{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *albumRepository) GetForUser(ctx context.Context, userID, id uuid.UUID) (*domain.Album, error) {
	var album domain.Album
	err := r.db.WithContext(ctx).First(&album, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		return nil, err
	}
	return &album, nil
}

func (r *albumRepository) Update(ctx context.Context, userID, id uuid.UUID, columns map[string]any) error {
	if len(columns) == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).
		Model(&domain.Album{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(columns)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *albumRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&domain.Album{}, "id = ? AND user_id = ?", id, userID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *albumRepository) SetPosition(ctx context.Context, userID, id uuid.UUID, position int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.Album{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("position", position)
	return result.RowsAffected == 1, result.Error
}
