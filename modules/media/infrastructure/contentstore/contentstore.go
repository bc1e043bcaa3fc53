// Package contentstore implements C1: a durable, deduplicating object
// layout on the local filesystem, using atomic-write-then-rename and a
// staging-directory sweep at worker start for interrupted uploads.
package contentstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"ingestpipe/modules/media/domain/entities"
	"ingestpipe/modules/media/domain/repositories"
	"ingestpipe/seedwork/apperr"
)

const stageName = "content_store"

// Content store failures are returned as apperr stage errors:
// KindTransient for filesystem and repository failures, KindIntegrity
// when the MediaFile insert transaction fails. An io failure maps to
// KindTransient here because a full disk / permission error is the
// kind of thing that can clear up on retry (the workflow runtime's
// retry policy governs the outer activity, not this package).

var sanitizeRe = regexp.MustCompile(`[^A-Za-z0-9_-]+`)
var extRe = regexp.MustCompile(`^[A-Za-z0-9.]+$`)

// ContentStore implements stage/ingest/delete over a root directory.
type ContentStore struct {
	root string
	repo repositories.MediaFileRepository
	log  *zap.Logger
}

func New(root string, repo repositories.MediaFileRepository, log *zap.Logger) *ContentStore {
	return &ContentStore{root: root, repo: repo, log: log}
}

func (cs *ContentStore) stagingDir() string { return filepath.Join(cs.root, "_staging") }

// SweepStaging removes *.part files older than olderThan. Called on
// worker start to clear leftovers from a prior crash.
func (cs *ContentStore) SweepStaging(olderThan time.Duration) error {
	dir := cs.stagingDir()
	entriesErr := os.MkdirAll(dir, 0o755)
	if entriesErr != nil {
		return apperr.New(apperr.KindTransient, stageName, entriesErr)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return apperr.New(apperr.KindTransient, stageName, err)
	}
	cutoff := time.Now().Add(-olderThan)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".part") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			path := filepath.Join(dir, e.Name())
			if err := os.Remove(path); err != nil {
				cs.log.Warn("failed to sweep stale staging file", zap.String("path", path), zap.Error(err))
			} else {
				cs.log.Info("swept stale staging file", zap.String("path", path))
			}
		}
	}
	return nil
}

// Stage writes bytes to a new staging file and fsyncs it, returning the
// staging path for a later Ingest call.
func (cs *ContentStore) Stage(r io.Reader) (string, error) {
	if err := os.MkdirAll(cs.stagingDir(), 0o755); err != nil {
		return "", apperr.New(apperr.KindTransient, stageName, fmt.Errorf("create staging dir: %w", err))
	}
	path := filepath.Join(cs.stagingDir(), uuid.NewString()+".part")

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return "", apperr.New(apperr.KindTransient, stageName, fmt.Errorf("open staging file: %w", err))
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", apperr.New(apperr.KindTransient, stageName, fmt.Errorf("write staging file: %w", err))
	}
	if err := f.Sync(); err != nil {
		os.Remove(path)
		return "", apperr.New(apperr.KindTransient, stageName, fmt.Errorf("fsync staging file: %w", err))
	}
	return path, nil
}

// Ingest computes the content hash of stagingPath, checks for an
// existing (owner, hash) row, and either discards the duplicate or
// atomically moves the file into its final partitioned location and
// inserts the MediaFile row.
func (cs *ContentStore) Ingest(ctx context.Context, ownerID, displayName, stagingPath string, origin entities.Origin, originURL, originPlatform *string) (mediaFile *entities.MediaFile, isDuplicate bool, err error) {
	hash, size, err := hashFile(stagingPath)
	if err != nil {
		return nil, false, apperr.New(apperr.KindTransient, stageName, err)
	}

	existing, err := cs.repo.FindByOwnerAndHash(ctx, ownerID, hash)
	if err != nil {
		return nil, false, apperr.New(apperr.KindTransient, stageName, err)
	}
	if existing != nil {
		os.Remove(stagingPath)
		return existing, true, nil
	}

	finalPath := cs.finalPath(ownerID, hash, displayName)
	if err := os.MkdirAll(filepath.Dir(finalPath), 0o755); err != nil {
		return nil, false, apperr.New(apperr.KindTransient, stageName, fmt.Errorf("create destination dir: %w", err))
	}

	if err := os.Rename(stagingPath, finalPath); err != nil {
		return nil, false, apperr.New(apperr.KindTransient, stageName, fmt.Errorf("rename staging to final: %w", err))
	}

	mf := entities.NewMediaFile(ownerID, finalPath, displayName, size, hash, origin)
	mf.OriginURL = originURL
	mf.OriginPlatform = originPlatform
	if detected, mimeErr := mimetype.DetectFile(finalPath); mimeErr == nil {
		mf.Mime = detected.String()
	} else {
		cs.log.Warn("mime detection failed, leaving mime blank", zap.String("path", finalPath), zap.Error(mimeErr))
	}

	err = cs.repo.WithTransaction(ctx, func(tx repositories.MediaFileRepository) error {
		// Re-check under the transaction: another ingest of the same
		// bytes for the same owner may have raced us between the first
		// FindByOwnerAndHash and the rename.
		raced, err := tx.FindByOwnerAndHash(ctx, ownerID, hash)
		if err != nil {
			return err
		}
		if raced != nil {
			existing = raced
			isDuplicate = true
			return nil
		}
		return tx.Create(ctx, mf)
	})
	if err != nil {
		// Roll back the rename: the row was never created, so remove
		// the file we moved into place to preserve U2.
		os.Remove(finalPath)
		return nil, false, apperr.New(apperr.KindIntegrity, stageName, err)
	}
	if isDuplicate {
		os.Remove(finalPath)
		return existing, true, nil
	}
	return mf, false, nil
}

// Delete removes the DB row first, then best-effort unlinks the file;
// a missing file is not an error - an orphaned blob is tolerated over
// a dangling row.
func (cs *ContentStore) Delete(ctx context.Context, mf *entities.MediaFile) error {
	if err := cs.repo.Delete(ctx, mf.GetID()); err != nil {
		return apperr.New(apperr.KindTransient, stageName, err)
	}
	if err := os.Remove(mf.StoredPath); err != nil && !os.IsNotExist(err) {
		cs.log.Warn("failed to unlink media file blob", zap.String("path", mf.StoredPath), zap.Error(err))
	}
	return nil
}

// finalPath builds <root>/user_<owner>/<YYYY>/<MM>/<hash16>_<name>.<ext>,
// a stable on-disk layout keyed by owner, ingest date, and content hash.
func (cs *ContentStore) finalPath(ownerID, hash, displayName string) string {
	now := time.Now().UTC()
	hash16 := hash[:16]
	base, ext := splitExt(displayName)
	sanitized := sanitizeName(base)

	name := hash16 + "_" + sanitized
	if ext != "" {
		name += "." + ext
	}
	return filepath.Join(
		cs.root,
		"user_"+ownerID,
		strconv.Itoa(now.Year()),
		fmt.Sprintf("%02d", int(now.Month())),
		name,
	)
}

func splitExt(name string) (base, ext string) {
	e := filepath.Ext(name)
	if e == "" {
		return name, ""
	}
	trimmed := strings.TrimPrefix(e, ".")
	if !extRe.MatchString(trimmed) {
		return name, ""
	}
	return strings.TrimSuffix(name, e), trimmed
}

// sanitizeName replaces any char outside [A-Za-z0-9_-] with '_',
// collapses runs, trims leading/trailing '_', and bounds the result to
// 200 bytes.
func sanitizeName(base string) string {
	s := sanitizeRe.ReplaceAllString(base, "_")
	for strings.Contains(s, "__") {
		s = strings.ReplaceAll(s, "__", "_")
	}
	s = strings.Trim(s, "_")
	if s == "" {
		s = "file"
	}
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}

func hashFile(path string) (hash string, size int64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("open for hashing: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	buf := make([]byte, 8*1024)
	var total int64
	for {
		n, readErr := f.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
			total += int64(n)
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return "", 0, fmt.Errorf("read for hashing: %w", readErr)
		}
	}
	return hex.EncodeToString(h.Sum(nil)), total, nil
}
