package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/dom/musikkhylla/internal/domain"
	"github.com/dom/musikkhylla/internal/repository/postgres"
	"github.com/dom/musikkhylla/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestAlbumRepository_ListByUser(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewAlbumRepository(testDB.DB)
	ctx := context.Background()

	user := testutil.NewUserBuilder().Build(t, testDB.DB)
	testutil.NewAlbumBuilder().ForUser(user).WithTitle("Third").AtPosition(2).Build(t, testDB.DB)
	testutil.NewAlbumBuilder().ForUser(user).WithTitle("First").AtPosition(0).Build(t, testDB.DB)
	testutil.NewAlbumBuilder().ForUser(user).WithTitle("Second").AtPosition(1).Build(t, testDB.DB)
	testutil.NewAlbumBuilder().WithTitle("Someone else's").Build(t, testDB.DB)

	albums, err := repo.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	testutil.AssertAlbumOrder(t, albums, "First", "Second", "Third")

	count, err := repo.CountByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	empty, err := repo.ListByUser(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestAlbumRepository_CreateMany(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewAlbumRepository(testDB.DB)
	ctx := context.Background()

	user := testutil.NewUserBuilder().Build(t, testDB.DB)
	now := time.Now().UTC()
	year := 1977
	albums := []*domain.Album{
		{ID: uuid.New(), UserID: user.ID, Title: "Rumours", Artist: "Fleetwood Mac", Year: &year, Position: 0, CreatedAt: now},
		{ID: uuid.New(), UserID: user.ID, Title: "Aja", Artist: "Steely Dan", Position: 1, CreatedAt: now.Add(time.Microsecond)},
	}

	require.NoError(t, repo.CreateMany(ctx, albums))
	require.NoError(t, repo.CreateMany(ctx, nil))

	stored, err := repo.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	testutil.AssertAlbumOrder(t, stored, "Rumours", "Aja")
	require.NotNil(t, stored[0].Year)
	assert.Equal(t, 1977, *stored[0].Year)
	assert.Nil(t, stored[1].Year)
}

func TestAlbumRepository_OwnershipScopedWrites(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewAlbumRepository(testDB.DB)
	ctx := context.Background()

	owner := testutil.NewUserBuilder().Build(t, testDB.DB)
	stranger := testutil.NewUserBuilder().Build(t, testDB.DB)
	album := testutil.NewAlbumBuilder().ForUser(owner).WithTitle("Mine").Build(t, testDB.DB)

	_, err := repo.GetForUser(ctx, stranger.ID, album.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	err = repo.Update(ctx, stranger.ID, album.ID, map[string]any{"title": "Stolen"})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	ok, err := repo.SetPosition(ctx, stranger.ID, album.ID, 9)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.ErrorIs(t, repo.Delete(ctx, stranger.ID, album.ID), gorm.ErrRecordNotFound)

	stored, err := repo.GetForUser(ctx, owner.ID, album.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mine", stored.Title)
	assert.Equal(t, 0, stored.Position)
}

func TestAlbumRepository_Update(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewAlbumRepository(testDB.DB)
	ctx := context.Background()

	user := testutil.NewUserBuilder().Build(t, testDB.DB)
	album := testutil.NewAlbumBuilder().ForUser(user).WithYear(1999).Build(t, testDB.DB)

	require.NoError(t, repo.Update(ctx, user.ID, album.ID, map[string]any{
		"artist": "New Artist",
		"year":   nil,
	}))
	require.NoError(t, repo.Update(ctx, user.ID, album.ID, map[string]any{}))

	stored, err := repo.GetForUser(ctx, user.ID, album.ID)
	require.NoError(t, err)
	assert.Equal(t, "New Artist", stored.Artist)
	assert.Equal(t, album.Title, stored.Title)
	assert.Nil(t, stored.Year)

	ok, err := repo.SetPosition(ctx, user.ID, album.ID, 4)
	require.NoError(t, err)
	assert.True(t, ok)

	stored, err = repo.GetForUser(ctx, user.ID, album.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, stored.Position)
}
