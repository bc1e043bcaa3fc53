// Package application hosts the MediaService, the glue a download
// activity calls: run the extractor, drain its progress channel into
// heartbeats, then ingest the result into the content store.
package application

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"ingestpipe/modules/media/domain/entities"
	"ingestpipe/modules/media/infrastructure/contentstore"
	"ingestpipe/modules/media/infrastructure/fetcher"
	"ingestpipe/seedwork/apperr"
)

const stageName = "download"

// HeartbeatFunc receives a best-effort progress snapshot; Download
// calls it at most once per second and drops updates that arrive
// sooner.
type HeartbeatFunc func(bytesDone, bytesTotal int64)

type MediaService struct {
	store     *contentstore.ContentStore
	extractor fetcher.Extractor
	log       *zap.Logger
}

func NewMediaService(store *contentstore.ContentStore, extractor fetcher.Extractor, log *zap.Logger) *MediaService {
	return &MediaService{store: store, extractor: extractor, log: log}
}

// DownloadResult is the small summary payload the download activity
// returns to the workflow - Temporal history stays cheap only if
// activity results stay small.
type DownloadResult struct {
	MediaFileID string
	IsDuplicate bool
	Platform    string
}

// Download validates/classifies sourceURL, runs the extractor, drains
// its progress channel into heartbeat, and ingests the result.
func (s *MediaService) Download(ctx context.Context, ownerID, sourceURL string, heartbeat HeartbeatFunc) (DownloadResult, error) {
	platform, err := fetcher.ClassifyPlatform(sourceURL)
	if err != nil {
		return DownloadResult{}, err
	}

	stagingRoot := os.TempDir()
	progressCh := make(chan fetcher.Progress, 16)
	done := make(chan struct{})

	go func() {
		defer close(done)
		var last time.Time
		for p := range progressCh {
			if heartbeat == nil {
				continue
			}
			if time.Since(last) < time.Second {
				continue
			}
			last = time.Now()
			heartbeat(p.BytesDone, p.BytesTotal)
		}
	}()

	result, err := s.extractor.Extract(ctx, sourceURL, stagingRoot, progressCh)
	close(progressCh)
	<-done
	if err != nil {
		return DownloadResult{}, err
	}

	f, err := os.Open(result.StagingPath)
	if err != nil {
		return DownloadResult{}, apperr.New(apperr.KindTransient, stageName, fmt.Errorf("open extracted file: %w", err))
	}
	defer f.Close()

	stagingPath, err := s.store.Stage(f)
	if err != nil {
		return DownloadResult{}, err
	}
	os.Remove(result.StagingPath)

	mf, isDup, err := s.store.Ingest(ctx, ownerID, result.DisplayName, stagingPath, entities.OriginDownload, &sourceURL, &platform)
	if err != nil {
		return DownloadResult{}, err
	}

	return DownloadResult{
		MediaFileID: mf.GetID(),
		IsDuplicate: isDup,
		Platform:    platform,
	}, nil
}
