// Package container wires every dependency the worker and server
// binaries need: config, logger, DB, per-module repositories, the
// content store, fetcher, LLM client, speech model driver, progress
// bus, and the application services each cmd entrypoint calls into.
package container

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"
	"gorm.io/gorm"

	collectionrepos "ingestpipe/modules/collection/domain/repositories"
	gormcollection "ingestpipe/modules/collection/infrastructure/repositories"
	jobrepos "ingestpipe/modules/job/domain/repositories"
	gormjob "ingestpipe/modules/job/infrastructure/repositories"
	mediaapp "ingestpipe/modules/media/application"
	mediarepos "ingestpipe/modules/media/domain/repositories"
	"ingestpipe/modules/media/infrastructure/contentstore"
	"ingestpipe/modules/media/infrastructure/fetcher"
	gormmedia "ingestpipe/modules/media/infrastructure/repositories"
	searchapp "ingestpipe/modules/search/application"
	topicrepos "ingestpipe/modules/topic/domain/repositories"
	"ingestpipe/modules/topic/infrastructure/classifier"
	gormtopic "ingestpipe/modules/topic/infrastructure/repositories"
	transrepos "ingestpipe/modules/transcription/domain/repositories"
	"ingestpipe/modules/transcription/infrastructure/chunker"
	"ingestpipe/modules/transcription/infrastructure/embedder"
	gormtranscription "ingestpipe/modules/transcription/infrastructure/repositories"
	"ingestpipe/modules/transcription/infrastructure/transcriber"
	"ingestpipe/seedwork/infrastructure/config"
	"ingestpipe/seedwork/infrastructure/database"
	"ingestpipe/seedwork/infrastructure/llmclient"
	"ingestpipe/seedwork/infrastructure/progress"
)

// Container holds every wired dependency for both cmd/server and
// cmd/worker; each binary pulls only the fields it needs.
type Container struct {
	Config *config.Config
	Log    *zap.Logger
	DB     *gorm.DB

	MediaFileRepo      mediarepos.MediaFileRepository
	TranscriptionRepo  transrepos.TranscriptionRepository
	ChunkRepo          transrepos.ChunkRepository
	TopicRepo          topicrepos.TopicRepository
	TranscriptionTopic topicrepos.TranscriptionTopicRepository
	CollectionRepo     collectionrepos.CollectionRepository
	JobRepo            jobrepos.JobRepository

	ContentStore *contentstore.ContentStore
	Extractor    fetcher.Extractor
	LLM          *llmclient.Client
	Transcriber  *transcriber.Transcriber
	Chunker      *chunker.Chunker
	Embedder     *embedder.Embedder
	Classifier   *classifier.Classifier

	ProgressBus *progress.Bus

	MediaService  *mediaapp.MediaService
	SearchService *searchapp.Service
}

// NewContainer loads config and wires every dependency described
// above behind a single entrypoint, so cmd/server and cmd/worker each
// construct their graph with one call.
func NewContainer() (*Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	var log *zap.Logger
	if cfg.Server.Env == "production" {
		log, err = zap.NewProduction()
	} else {
		log, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	if err := database.Initialize(cfg.Database, cfg.Server.Env, log); err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	db := database.GetDB()

	mediaFileRepo := gormmedia.NewGormMediaFileRepository(db)
	transcriptionRepo := gormtranscription.NewGormTranscriptionRepository(db)
	chunkRepo := gormtranscription.NewGormChunkRepository(db)
	topicRepo := gormtopic.NewGormTopicRepository(db)
	transcriptionTopicRepo := gormtopic.NewGormTranscriptionTopicRepository(db)
	collectionRepo := gormcollection.NewGormCollectionRepository(db)
	jobRepo := gormjob.NewGormJobRepository(db)

	contentStore := contentstore.New(cfg.Content.UploadDir, mediaFileRepo, log)
	extractor := &fetcher.YtDlpExtractor{}
	mediaService := mediaapp.NewMediaService(contentStore, extractor, log)

	llm := llmclient.New(cfg.LLM)

	modelPath := filepath.Join(cfg.Whisper.ModelDir, "ggml-"+cfg.Whisper.ModelSize+".bin")
	tr := transcriber.New(modelPath, "")
	ch := chunker.New(llm, cfg.Chunking)
	em := embedder.New(llm, chunkRepo, cfg.Embedding)
	cl := classifier.New(llm, chunkRepo, topicRepo, transcriptionTopicRepo)

	bus := progress.New()

	searchService := searchapp.New(llm, chunkRepo, cfg.Embedding)

	if _, err := topicRepo.EnsureUnknown(context.Background()); err != nil {
		log.Warn("failed to ensure Unknown topic at startup", zap.Error(err))
	}

	return &Container{
		Config: cfg,
		Log:    log,
		DB:     db,

		MediaFileRepo:      mediaFileRepo,
		TranscriptionRepo:  transcriptionRepo,
		ChunkRepo:          chunkRepo,
		TopicRepo:          topicRepo,
		TranscriptionTopic: transcriptionTopicRepo,
		CollectionRepo:     collectionRepo,
		JobRepo:            jobRepo,

		ContentStore: contentStore,
		Extractor:    extractor,
		LLM:          llm,
		Transcriber:  tr,
		Chunker:      ch,
		Embedder:     em,
		Classifier:   cl,

		ProgressBus: bus,

		MediaService:  mediaService,
		SearchService: searchService,
	}, nil
}
