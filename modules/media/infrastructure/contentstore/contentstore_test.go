package contentstore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ingestpipe/modules/media/domain/entities"
	"ingestpipe/modules/media/domain/repositories"
)

// fakeMediaFileRepo is an in-memory stand-in for the gorm-backed
// repository, keyed by (owner, hash) the same way the real one is.
type fakeMediaFileRepo struct {
	byID       map[string]*entities.MediaFile
	byOwnerKey map[string]*entities.MediaFile
}

func newFakeMediaFileRepo() *fakeMediaFileRepo {
	return &fakeMediaFileRepo{
		byID:       map[string]*entities.MediaFile{},
		byOwnerKey: map[string]*entities.MediaFile{},
	}
}

func ownerKey(owner, hash string) string { return owner + "/" + hash }

func (r *fakeMediaFileRepo) Create(ctx context.Context, mf *entities.MediaFile) error {
	r.byID[mf.GetID()] = mf
	r.byOwnerKey[ownerKey(mf.OwnerID, mf.ContentHash)] = mf
	return nil
}

func (r *fakeMediaFileRepo) FindByID(ctx context.Context, id string) (*entities.MediaFile, error) {
	return r.byID[id], nil
}

func (r *fakeMediaFileRepo) FindByOwnerAndHash(ctx context.Context, ownerID, contentHash string) (*entities.MediaFile, error) {
	return r.byOwnerKey[ownerKey(ownerID, contentHash)], nil
}

func (r *fakeMediaFileRepo) Delete(ctx context.Context, id string) error {
	mf, ok := r.byID[id]
	if !ok {
		return nil
	}
	delete(r.byID, id)
	delete(r.byOwnerKey, ownerKey(mf.OwnerID, mf.ContentHash))
	return nil
}

func (r *fakeMediaFileRepo) WithTransaction(ctx context.Context, fn func(tx repositories.MediaFileRepository) error) error {
	return fn(r)
}

func newTestStore(t *testing.T) (*ContentStore, *fakeMediaFileRepo) {
	t.Helper()
	repo := newFakeMediaFileRepo()
	return New(t.TempDir(), repo, zap.NewNop()), repo
}

func stagePath(t *testing.T, cs *ContentStore, content string) string {
	t.Helper()
	path, err := cs.Stage(strings.NewReader(content))
	require.NoError(t, err)
	return path
}

func TestContentStore_Ingest_FirstTimeNotDuplicate(t *testing.T) {
	cs, _ := newTestStore(t)
	path := stagePath(t, cs, "hello world")

	mf, isDup, err := cs.Ingest(context.Background(), "owner-1", "My Clip.mp3", path, entities.OriginUpload, nil, nil)
	require.NoError(t, err)
	assert.False(t, isDup)
	assert.NotNil(t, mf)
	assert.FileExists(t, mf.StoredPath)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "staging file must be moved, not copied")
}

func TestContentStore_Ingest_DuplicateDiscardsSecondFile(t *testing.T) {
	cs, _ := newTestStore(t)
	path1 := stagePath(t, cs, "same bytes")
	mf1, isDup1, err := cs.Ingest(context.Background(), "owner-1", "first.mp3", path1, entities.OriginUpload, nil, nil)
	require.NoError(t, err)
	require.False(t, isDup1)

	path2 := stagePath(t, cs, "same bytes")
	mf2, isDup2, err := cs.Ingest(context.Background(), "owner-1", "second.mp3", path2, entities.OriginUpload, nil, nil)
	require.NoError(t, err)
	assert.True(t, isDup2)
	assert.Equal(t, mf1.GetID(), mf2.GetID())
	_, err = os.Stat(path2)
	assert.True(t, os.IsNotExist(err), "duplicate staging file must be discarded")
}

func TestContentStore_Ingest_SameContentDifferentOwnerIsNotDuplicate(t *testing.T) {
	cs, _ := newTestStore(t)
	path1 := stagePath(t, cs, "shared bytes")
	_, isDup1, err := cs.Ingest(context.Background(), "owner-1", "a.mp3", path1, entities.OriginUpload, nil, nil)
	require.NoError(t, err)
	require.False(t, isDup1)

	path2 := stagePath(t, cs, "shared bytes")
	_, isDup2, err := cs.Ingest(context.Background(), "owner-2", "b.mp3", path2, entities.OriginUpload, nil, nil)
	require.NoError(t, err)
	assert.False(t, isDup2, "U1 scopes uniqueness to (owner, hash), not hash alone")
}

func TestContentStore_Ingest_SetsOriginURLAndPlatform(t *testing.T) {
	cs, _ := newTestStore(t)
	path := stagePath(t, cs, "downloaded bytes")
	url := "https://youtube.com/watch?v=abc"
	platform := "youtube"

	mf, _, err := cs.Ingest(context.Background(), "owner-1", "clip.mp3", path, entities.OriginDownload, &url, &platform)
	require.NoError(t, err)
	require.NotNil(t, mf.OriginURL)
	require.NotNil(t, mf.OriginPlatform)
	assert.Equal(t, url, *mf.OriginURL)
	assert.Equal(t, platform, *mf.OriginPlatform)
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "My_Clip", sanitizeName("My Clip!!"))
	assert.Equal(t, "a_b_c", sanitizeName("a___b   c"))
	assert.Equal(t, "file", sanitizeName("???"))
	assert.LessOrEqual(t, len(sanitizeName(strings.Repeat("a", 500))), 200)
}

func TestSplitExt(t *testing.T) {
	base, ext := splitExt("song.mp3")
	assert.Equal(t, "song", base)
	assert.Equal(t, "mp3", ext)

	base, ext = splitExt("no-extension")
	assert.Equal(t, "no-extension", base)
	assert.Equal(t, "", ext)
}

func TestContentStore_FinalPath_IsPartitionedByOwnerAndDate(t *testing.T) {
	cs, _ := newTestStore(t)
	path := stagePath(t, cs, "content")
	mf, _, err := cs.Ingest(context.Background(), "owner-9", "clip.mp3", path, entities.OriginUpload, nil, nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(mf.StoredPath, filepath.Join(cs.root, "user_owner-9")))
}
