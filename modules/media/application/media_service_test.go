package application

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ingestpipe/modules/media/domain/entities"
	"ingestpipe/modules/media/domain/repositories"
	"ingestpipe/modules/media/infrastructure/contentstore"
	"ingestpipe/modules/media/infrastructure/fetcher"
)

type fakeMediaFileRepo struct {
	byID       map[string]*entities.MediaFile
	byOwnerKey map[string]*entities.MediaFile
}

func newFakeMediaFileRepo() *fakeMediaFileRepo {
	return &fakeMediaFileRepo{byID: map[string]*entities.MediaFile{}, byOwnerKey: map[string]*entities.MediaFile{}}
}

func (r *fakeMediaFileRepo) Create(ctx context.Context, mf *entities.MediaFile) error {
	r.byID[mf.GetID()] = mf
	r.byOwnerKey[mf.OwnerID+"/"+mf.ContentHash] = mf
	return nil
}
func (r *fakeMediaFileRepo) FindByID(ctx context.Context, id string) (*entities.MediaFile, error) {
	return r.byID[id], nil
}
func (r *fakeMediaFileRepo) FindByOwnerAndHash(ctx context.Context, ownerID, contentHash string) (*entities.MediaFile, error) {
	return r.byOwnerKey[ownerID+"/"+contentHash], nil
}
func (r *fakeMediaFileRepo) Delete(ctx context.Context, id string) error {
	delete(r.byID, id)
	return nil
}
func (r *fakeMediaFileRepo) WithTransaction(ctx context.Context, fn func(tx repositories.MediaFileRepository) error) error {
	return fn(r)
}

// fakeExtractor writes a fixed payload to stagingDir and reports it as
// the extracted result, standing in for a real yt-dlp invocation.
type fakeExtractor struct {
	content  string
	platform string
}

func (e *fakeExtractor) Extract(ctx context.Context, sourceURL, stagingDir string, progressCh chan<- fetcher.Progress) (fetcher.Result, error) {
	path := filepath.Join(stagingDir, "extracted.mp3")
	if err := os.WriteFile(path, []byte(e.content), 0o644); err != nil {
		return fetcher.Result{}, err
	}
	progressCh <- fetcher.Progress{BytesDone: int64(len(e.content)), BytesTotal: int64(len(e.content))}
	return fetcher.Result{StagingPath: path, DisplayName: "downloaded clip.mp3"}, nil
}

func TestMediaService_Download_SetsOriginURLAndPlatform(t *testing.T) {
	repo := newFakeMediaFileRepo()
	store := contentstore.New(t.TempDir(), repo, zap.NewNop())
	extractor := &fakeExtractor{content: "audio bytes"}
	svc := NewMediaService(store, extractor, zap.NewNop())

	result, err := svc.Download(context.Background(), "owner-1", "https://youtube.com/watch?v=xyz", nil)
	require.NoError(t, err)
	assert.False(t, result.IsDuplicate)
	assert.Equal(t, "youtube", result.Platform)
	require.NotEmpty(t, result.MediaFileID)

	mf, err := repo.FindByID(context.Background(), result.MediaFileID)
	require.NoError(t, err)
	require.NotNil(t, mf.OriginURL)
	require.NotNil(t, mf.OriginPlatform)
	assert.Equal(t, "https://youtube.com/watch?v=xyz", *mf.OriginURL)
	assert.Equal(t, "youtube", *mf.OriginPlatform)
}

func TestMediaService_Download_InvalidURLFailsBeforeExtracting(t *testing.T) {
	repo := newFakeMediaFileRepo()
	store := contentstore.New(t.TempDir(), repo, zap.NewNop())
	extractor := &fakeExtractor{content: "unused"}
	svc := NewMediaService(store, extractor, zap.NewNop())

	_, err := svc.Download(context.Background(), "owner-1", "not a url", nil)
	assert.Error(t, err)
}
