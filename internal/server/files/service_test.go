package files

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/instashare/instashare/internal/common"
	"github.com/instashare/instashare/internal/logging"
	"github.com/instashare/instashare/internal/server/blob"
	"github.com/instashare/instashare/internal/server/models"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func seedFile(t *testing.T, repo *MemRepository, name, hash string, status models.FileStatus) *models.File {
	t.Helper()
	f, err := repo.Create(context.Background(), &models.File{
		ID:          uuid.NewString(),
		Name:        name,
		ContentHash: hash,
		Status:      status,
	})
	require.NoError(t, err)
	return f
}

func TestValidateName(t *testing.T) {
	assert.Nil(t, ValidateName("report.pdf"))
	assert.Nil(t, ValidateName("informe año 2022.pdf"))
	assert.Nil(t, ValidateName("archivo_1 final.txt"))

	assert.NotNil(t, ValidateName(""))
	assert.NotNil(t, ValidateName("bad/name.pdf"))
	assert.NotNil(t, ValidateName("semi;colon"))
	assert.NotNil(t, ValidateName(strings.Repeat("a", 256)))
}

func TestService_Rename(t *testing.T) {
	ctx := context.Background()
	repo := NewMemRepository()
	svc := NewService(repo, blob.NewMemStore(), testLogger())

	a := seedFile(t, repo, "a.pdf", "h1", models.StatusLoaded)
	b := seedFile(t, repo, "b.pdf", "h2", models.StatusStored)

	renamed, err := svc.Rename(ctx, a.ID, "c.pdf")
	require.NoError(t, err)
	assert.Equal(t, "c.pdf", renamed.Name)

	// taking another record's name fails and changes nothing
	_, err = svc.Rename(ctx, a.ID, "b.pdf")
	var verr *common.ValidationError
	require.ErrorAs(t, err, &verr)

	gotA, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	gotB, err := repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "c.pdf", gotA.Name)
	assert.Equal(t, models.StatusLoaded, gotA.Status)
	assert.Equal(t, models.StatusStored, gotB.Status)

	// invalid characters are rejected before touching the store
	_, err = svc.Rename(ctx, a.ID, "bad/name")
	require.ErrorAs(t, err, &verr)
}

func TestService_Delete_CleansBlobsWhenLastReference(t *testing.T) {
	ctx := context.Background()
	repo := NewMemRepository()
	store := blob.NewMemStore()
	svc := NewService(repo, store, testLogger())

	f := seedFile(t, repo, "a.pdf", "h1", models.StatusLoaded)
	require.NoError(t, store.Put(ctx, blob.NamespacePlain, "h1", strings.NewReader("raw"), 3))
	require.NoError(t, store.Put(ctx, blob.NamespaceZipped, "h1", strings.NewReader("zip"), 3))

	require.NoError(t, svc.Delete(ctx, f.ID))

	_, err := repo.GetByID(ctx, f.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.Equal(t, 0, store.Len())
}

func TestService_Delete_KeepsBlobsWhileShared(t *testing.T) {
	ctx := context.Background()
	repo := NewMemRepository()
	store := blob.NewMemStore()
	svc := NewService(repo, store, testLogger())

	a := seedFile(t, repo, "a.pdf", "h1", models.StatusZipped)
	seedFile(t, repo, "copy of a.pdf", "h1", models.StatusZipped)
	require.NoError(t, store.Put(ctx, blob.NamespaceZipped, "h1", strings.NewReader("zip"), 3))

	require.NoError(t, svc.Delete(ctx, a.ID))

	ok, err := store.Exists(ctx, blob.NamespaceZipped, "h1")
	require.NoError(t, err)
	assert.True(t, ok, "shared artifact must survive")
}

func TestService_Download_Gating(t *testing.T) {
	ctx := context.Background()
	repo := NewMemRepository()
	store := blob.NewMemStore()
	svc := NewService(repo, store, testLogger())

	for _, status := range []models.FileStatus{models.StatusLoaded, models.StatusStored, models.StatusFailed} {
		f := seedFile(t, repo, "f_"+string(status), "h_"+string(status), status)
		_, _, err := svc.Download(ctx, f.ID)
		assert.ErrorIs(t, err, common.ErrorNotDownloadable, "status %s", status)
	}

	z := seedFile(t, repo, "done.pdf", "hz", models.StatusZipped)
	require.NoError(t, store.Put(ctx, blob.NamespaceZipped, "hz", strings.NewReader("zipped-bytes"), 12))

	rc, name, err := svc.Download(ctx, z.ID)
	require.NoError(t, err)
	defer rc.Close()

	assert.Equal(t, "done.pdf.zip", name)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "zipped-bytes", string(data))
}

func TestService_Download_MissingArtifactIsServerError(t *testing.T) {
	ctx := context.Background()
	repo := NewMemRepository()
	svc := NewService(repo, blob.NewMemStore(), testLogger())

	z := seedFile(t, repo, "gone.pdf", "hg", models.StatusZipped)

	_, _, err := svc.Download(ctx, z.ID)
	assert.ErrorIs(t, err, common.ErrorArtifactMissing)
}
