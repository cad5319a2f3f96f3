package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/remedios-lab/remedios/pkg/domain/interfaces"
	"github.com/remedios-lab/remedios/pkg/domain/model"
	"github.com/remedios-lab/remedios/pkg/domain/types"
	"github.com/remedios-lab/remedios/pkg/repository/firestore"
	"github.com/remedios-lab/remedios/pkg/repository/memory"
)

func runSessionRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	base := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	t.Run("Create assigns UUID, stage and creation time", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Session().Create(ctx, &model.Session{UserID: "user-1"})
		gt.NoError(t, err).Required()

		gt.String(t, string(created.ID)).NotEqual("")
		gt.Value(t, created.Stage).Equal(types.StageCollecting)
		gt.Bool(t, created.CreatedAt.IsZero()).False()
	})

	t.Run("GetLatestByUser returns newest of duplicate rows", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		// Duplicate rows per user are tolerated; only the newest is read
		old := model.NewSession("user-1", base)
		old.SubjectName = "Old Medicine"
		_, err := repo.Session().Create(ctx, old)
		gt.NoError(t, err).Required()

		newer := model.NewSession("user-1", base.Add(time.Second))
		newer.SubjectName = "New Medicine"
		_, err = repo.Session().Create(ctx, newer)
		gt.NoError(t, err).Required()

		got, err := repo.Session().GetLatestByUser(ctx, "user-1")
		gt.NoError(t, err).Required()
		gt.Value(t, got.SubjectName).Equal("New Medicine")
	})

	t.Run("GetLatestByUser returns nil for unknown user", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		got, err := repo.Session().GetLatestByUser(ctx, "nobody")
		gt.NoError(t, err).Required()
		gt.Value(t, got).Nil()
	})

	t.Run("GetLatestByUser does not see other users", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Session().Create(ctx, model.NewSession("user-2", base))
		gt.NoError(t, err).Required()

		got, err := repo.Session().GetLatestByUser(ctx, "user-1")
		gt.NoError(t, err).Required()
		gt.Value(t, got).Nil()
	})

	t.Run("Update accumulates fields but keeps CreatedAt", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Session().Create(ctx, model.NewSession("user-1", base))
		gt.NoError(t, err).Required()

		created.SubjectName = "Vitamin D"
		created.Period = 2
		created.Unit = types.UnitDays
		created.Stage = types.StageAwaitingConfirmation
		created.CreatedAt = base.Add(time.Hour) // must be ignored
		gt.NoError(t, repo.Session().Update(ctx, created)).Required()

		got, err := repo.Session().GetLatestByUser(ctx, "user-1")
		gt.NoError(t, err).Required()
		gt.Value(t, got.SubjectName).Equal("Vitamin D")
		gt.Value(t, got.Period).Equal(2.0)
		gt.Value(t, got.Stage).Equal(types.StageAwaitingConfirmation)
		gt.Value(t, got.CreatedAt).Equal(base)
	})

	t.Run("Delete removes the session", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Session().Create(ctx, model.NewSession("user-1", base))
		gt.NoError(t, err).Required()

		gt.NoError(t, repo.Session().Delete(ctx, created.ID)).Required()

		got, err := repo.Session().GetLatestByUser(ctx, "user-1")
		gt.NoError(t, err).Required()
		gt.Value(t, got).Nil()
	})

	t.Run("Delete returns ErrNotFound for unknown session", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		err := repo.Session().Delete(ctx, "no-such-session")
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, memory.ErrNotFound) || errors.Is(err, firestore.ErrNotFound)).True()
	})

	t.Run("DeleteCreatedBefore removes only stale sessions", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Session().Create(ctx, model.NewSession("user-1", base.Add(-61*time.Minute)))
		gt.NoError(t, err).Required()
		_, err = repo.Session().Create(ctx, model.NewSession("user-2", base.Add(-62*time.Minute)))
		gt.NoError(t, err).Required()
		fresh, err := repo.Session().Create(ctx, model.NewSession("user-3", base.Add(-time.Minute)))
		gt.NoError(t, err).Required()

		deleted, err := repo.Session().DeleteCreatedBefore(ctx, base.Add(-time.Hour))
		gt.NoError(t, err).Required()
		gt.Value(t, deleted).Equal(2)

		got, err := repo.Session().GetLatestByUser(ctx, "user-3")
		gt.NoError(t, err).Required()
		gt.Value(t, got.ID).Equal(fresh.ID)

		stale, err := repo.Session().GetLatestByUser(ctx, "user-1")
		gt.NoError(t, err).Required()
		gt.Value(t, stale).Nil()
	})
}

func newFirestoreRepository(t *testing.T) interfaces.Repository {
	t.Helper()

	projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT_ID not set")
	}

	databaseID := os.Getenv("TEST_FIRESTORE_DATABASE_ID")

	ctx := context.Background()
	prefix := fmt.Sprintf("test_%d_", time.Now().UnixNano())
	repo, err := firestore.New(ctx, projectID, databaseID, firestore.WithCollectionPrefix(prefix))
	gt.NoError(t, err).Required()
	t.Cleanup(func() {
		gt.NoError(t, repo.Close())
	})
	return repo
}

func TestMemorySessionRepository(t *testing.T) {
	runSessionRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestFirestoreSessionRepository(t *testing.T) {
	runSessionRepositoryTest(t, newFirestoreRepository)
}
