package photo_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/store2s3/service/internal/db"
	"github.com/store2s3/service/internal/photo"
)

var (
	testPool     *pgxpool.Pool
	testPoolOnce sync.Once
	testCleanup  func()
)

// sharedTestDatabase starts one migrated postgres container reused by all
// repository tests; tests isolate on distinct owner ids instead of tables.
func sharedTestDatabase(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	testPoolOnce.Do(func() {
		ctx := context.Background()

		pgContainer, err := pgcontainer.Run(ctx,
			"postgres:17-alpine",
			pgcontainer.WithDatabase("testdb"),
			pgcontainer.WithUsername("testuser"),
			pgcontainer.WithPassword("testpass"),
			pgcontainer.BasicWaitStrategies(),
		)
		if err != nil {
			t.Fatalf("failed to start postgres container: %v", err)
		}
		testCleanup = func() {
			if testPool != nil {
				testPool.Close()
			}
			if err := testcontainers.TerminateContainer(pgContainer); err != nil {
				t.Logf("failed to terminate container: %s", err)
			}
		}

		connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			testCleanup()
			t.Fatalf("failed to get connection string: %v", err)
		}
		if err := db.Migrate(connStr); err != nil {
			testCleanup()
			t.Fatalf("failed to migrate: %v", err)
		}

		pool, err := pgxpool.New(ctx, connStr)
		if err != nil {
			testCleanup()
			t.Fatalf("could not connect to database: %v", err)
		}
		testPool = pool
	})
	return testPool
}

func seedPhoto(t *testing.T, repo *photo.Repository, ownerID, name string) *photo.Photo {
	t.Helper()
	key := fmt.Sprintf("%s/%s_%s", ownerID, uuid.NewString()[:8], name)
	p, err := repo.Create(context.Background(), ownerID, key, name,
		"https://storage.test/"+key, 2048, "image/jpeg")
	assert.NoError(t, err)
	return p
}

func TestRepository_CreateDefaults(t *testing.T) {
	repo := photo.NewRepository(sharedTestDatabase(t))
	ownerID := uuid.NewString()

	p := seedPhoto(t, repo, ownerID, "first.jpg")
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, ownerID, p.OwnerID)
	assert.Equal(t, "first.jpg", p.OriginalName)
	assert.Equal(t, int64(2048), p.SizeBytes)
	assert.Equal(t, "image/jpeg", p.MimeType)
	assert.Empty(t, p.Description)
	assert.Empty(t, p.Tags)
	assert.False(t, p.IsPublic)
	assert.Zero(t, p.Views)
	assert.False(t, p.UploadedAt.IsZero())
}

func TestRepository_ListByOwner(t *testing.T) {
	ctx := context.Background()
	repo := photo.NewRepository(sharedTestDatabase(t))
	ownerID, otherID := uuid.NewString(), uuid.NewString()

	var last *photo.Photo
	for i := 0; i < 5; i++ {
		last = seedPhoto(t, repo, ownerID, fmt.Sprintf("f%d.jpg", i))
	}
	seedPhoto(t, repo, otherID, "other.jpg")

	photos, total, err := repo.ListByOwner(ctx, ownerID, 3, 0)
	assert.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Len(t, photos, 3)
	assert.Equal(t, last.ID, photos[0].ID, "most recent upload listed first")
	for _, p := range photos {
		assert.Equal(t, ownerID, p.OwnerID)
	}

	rest, total, err := repo.ListByOwner(ctx, ownerID, 3, 3)
	assert.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Len(t, rest, 2)
}

func TestRepository_FindOwnedScoping(t *testing.T) {
	ctx := context.Background()
	repo := photo.NewRepository(sharedTestDatabase(t))
	ownerID := uuid.NewString()

	p := seedPhoto(t, repo, ownerID, "scoped.jpg")

	got, err := repo.FindOwned(ctx, p.ID, ownerID)
	assert.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	_, err = repo.FindOwned(ctx, p.ID, uuid.NewString())
	assert.ErrorIs(t, err, photo.ErrNotFound)
}

func TestRepository_FindMalformedID(t *testing.T) {
	repo := photo.NewRepository(sharedTestDatabase(t))
	_, err := repo.Find(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, photo.ErrNotFound)
}

func TestRepository_UpdateOwnedPartial(t *testing.T) {
	ctx := context.Background()
	repo := photo.NewRepository(sharedTestDatabase(t))
	ownerID := uuid.NewString()

	p := seedPhoto(t, repo, ownerID, "edit.jpg")

	desc := "harbour at dawn"
	got, err := repo.UpdateOwned(ctx, p.ID, ownerID, photo.Update{Description: &desc})
	assert.NoError(t, err)
	assert.Equal(t, desc, got.Description)
	assert.False(t, got.IsPublic)
	assert.Empty(t, got.Tags)

	pub := true
	got, err = repo.UpdateOwned(ctx, p.ID, ownerID, photo.Update{
		Tags: []string{"harbour", "dawn"}, IsPublic: &pub,
	})
	assert.NoError(t, err)
	assert.Equal(t, desc, got.Description, "untouched field survives")
	assert.True(t, got.IsPublic)
	assert.Equal(t, []string{"harbour", "dawn"}, got.Tags)

	_, err = repo.UpdateOwned(ctx, p.ID, uuid.NewString(), photo.Update{Description: &desc})
	assert.ErrorIs(t, err, photo.ErrNotFound)
}

func TestRepository_IncrementViews(t *testing.T) {
	ctx := context.Background()
	repo := photo.NewRepository(sharedTestDatabase(t))
	ownerID := uuid.NewString()

	p := seedPhoto(t, repo, ownerID, "seen.jpg")
	assert.NoError(t, repo.IncrementViews(ctx, p.ID))
	assert.NoError(t, repo.IncrementViews(ctx, p.ID))

	got, err := repo.Find(ctx, p.ID)
	assert.NoError(t, err)
	assert.Equal(t, 2, got.Views)
}

func TestRepository_ListPublic(t *testing.T) {
	ctx := context.Background()
	repo := photo.NewRepository(sharedTestDatabase(t))
	ownerID := uuid.NewString()

	p := seedPhoto(t, repo, ownerID, "pub.jpg")
	seedPhoto(t, repo, ownerID, "priv.jpg")

	pub := true
	_, err := repo.UpdateOwned(ctx, p.ID, ownerID, photo.Update{IsPublic: &pub})
	assert.NoError(t, err)

	photos, total, err := repo.ListPublic(ctx, 100, 0)
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, total, 1)
	for _, got := range photos {
		assert.True(t, got.IsPublic)
	}
}

func TestRepository_DeleteByID(t *testing.T) {
	ctx := context.Background()
	repo := photo.NewRepository(sharedTestDatabase(t))
	ownerID := uuid.NewString()

	p := seedPhoto(t, repo, ownerID, "gone.jpg")
	assert.NoError(t, repo.DeleteByID(ctx, p.ID))

	_, err := repo.Find(ctx, p.ID)
	assert.ErrorIs(t, err, photo.ErrNotFound)

	// Deleting an already-removed record is a no-op.
	assert.NoError(t, repo.DeleteByID(ctx, p.ID))
}
