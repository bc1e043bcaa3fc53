package workflow

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.temporal.io/sdk/activity"
	"go.uber.org/zap"

	jobrepos "ingestpipe/modules/job/domain/repositories"
	mediaapp "ingestpipe/modules/media/application"
	mediarepos "ingestpipe/modules/media/domain/repositories"
	topicrepos "ingestpipe/modules/topic/domain/repositories"
	"ingestpipe/modules/topic/infrastructure/classifier"
	transentities "ingestpipe/modules/transcription/domain/entities"
	transrepos "ingestpipe/modules/transcription/domain/repositories"
	"ingestpipe/modules/transcription/infrastructure/chunker"
	"ingestpipe/modules/transcription/infrastructure/embedder"
	"ingestpipe/modules/transcription/infrastructure/transcriber"
	"ingestpipe/seedwork/apperr"
	"ingestpipe/seedwork/infrastructure/progress"
)

// Activities bundles every dependency C8's two workflows drive. One
// instance is constructed at worker startup and its methods are
// registered with the Temporal worker.
type Activities struct {
	mediaSvc          *mediaapp.MediaService
	mediaRepo         mediarepos.MediaFileRepository
	transcriptionRepo transrepos.TranscriptionRepository
	chunkRepo         transrepos.ChunkRepository
	jobRepo           jobrepos.JobRepository
	linkRepo          topicrepos.TranscriptionTopicRepository

	transcriber *transcriber.Transcriber
	chunker     *chunker.Chunker
	embedder    *embedder.Embedder
	classifier  *classifier.Classifier

	bus *progress.Bus
	log *zap.Logger
}

func NewActivities(
	mediaSvc *mediaapp.MediaService,
	mediaRepo mediarepos.MediaFileRepository,
	transcriptionRepo transrepos.TranscriptionRepository,
	chunkRepo transrepos.ChunkRepository,
	jobRepo jobrepos.JobRepository,
	linkRepo topicrepos.TranscriptionTopicRepository,
	tr *transcriber.Transcriber,
	ch *chunker.Chunker,
	em *embedder.Embedder,
	cl *classifier.Classifier,
	bus *progress.Bus,
	log *zap.Logger,
) *Activities {
	return &Activities{
		mediaSvc:          mediaSvc,
		mediaRepo:         mediaRepo,
		transcriptionRepo: transcriptionRepo,
		chunkRepo:         chunkRepo,
		jobRepo:           jobRepo,
		linkRepo:          linkRepo,
		transcriber:       tr,
		chunker:           ch,
		embedder:          em,
		classifier:        cl,
		bus:               bus,
		log:               log,
	}
}

var tracer = otel.Tracer("internal/workflow")

// traceActivity opens a child span for one activity invocation. The
// returned func must be deferred with the activity's own error so the
// span reflects the real outcome.
func traceActivity(ctx context.Context, name string) (context.Context, func(err error)) {
	ctx, span := tracer.Start(ctx, name)
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}

func intPtr(v int) *int { return &v }

func (a *Activities) publish(jobID string, status progress.Status, pct *int, errText *string) {
	a.bus.Publish(progress.Event{JobID: jobID, Status: status, Progress: pct, Error: errText})
}

// DownloadActivity wraps C3 (fetch) + C1 (ingest) behind a single
// activity, since DownloadWorkflow has exactly one step.
func (a *Activities) DownloadActivity(ctx context.Context, in downloadActivityInput) (out downloadActivityOutput, err error) {
	ctx, endSpan := traceActivity(ctx, "activity.download")
	defer func() { endSpan(err) }()

	a.publish(in.JobID, progress.StatusProcessing, intPtr(0), nil)

	heartbeat := func(bytesDone, bytesTotal int64) {
		pct := 0
		if bytesTotal > 0 {
			pct = int(bytesDone * 100 / bytesTotal)
		}
		activity.RecordHeartbeat(ctx, pct)
		a.publish(in.JobID, progress.StatusProcessing, intPtr(pct), nil)
	}

	result, err := a.mediaSvc.Download(ctx, in.OwnerID, in.SourceURL, heartbeat)
	if err != nil {
		msg := err.Error()
		a.publish(in.JobID, progress.StatusFailed, nil, &msg)
		return downloadActivityOutput{}, wrapActivityErr(err)
	}

	a.publish(in.JobID, progress.StatusProcessing, intPtr(100), nil)
	return downloadActivityOutput{
		MediaFileID: result.MediaFileID,
		IsDuplicate: result.IsDuplicate,
		Platform:    result.Platform,
	}, nil
}

// TranscribeActivity runs C4 over the MediaFile backing
// in.TranscriptionID and writes the result back transactionally,
// satisfying T1/T2 via Transcription.Complete/Fail.
func (a *Activities) TranscribeActivity(ctx context.Context, in transcribeActivityInput) (out transcribeActivityOutput, err error) {
	ctx, endSpan := traceActivity(ctx, "activity.transcribe")
	defer func() { endSpan(err) }()

	a.publish(in.JobID, progress.StatusProcessing, intPtr(0), nil)

	tr, err := a.transcriptionRepo.FindByID(ctx, in.TranscriptionID)
	if err != nil {
		return transcribeActivityOutput{}, wrapActivityErr(apperr.New(apperr.KindInput, "transcribe", fmt.Errorf("load transcription: %w", err)))
	}
	mf, err := a.mediaRepo.FindByID(ctx, tr.MediaFileID)
	if err != nil {
		return transcribeActivityOutput{}, wrapActivityErr(apperr.New(apperr.KindInput, "transcribe", fmt.Errorf("load media file: %w", err)))
	}

	tr.StartProcessing()
	if err := a.transcriptionRepo.Update(ctx, tr); err != nil {
		return transcribeActivityOutput{}, wrapActivityErr(apperr.New(apperr.KindTransient, "transcribe", err))
	}

	heartbeat := func(pct int) {
		activity.RecordHeartbeat(ctx, pct)
		a.publish(in.JobID, progress.StatusProcessing, intPtr(pct), nil)
	}

	result, runErr := a.transcriber.Transcribe(ctx, mf.StoredPath, heartbeat)
	if runErr != nil {
		tr.Fail(runErr.Error())
		_ = a.transcriptionRepo.Update(ctx, tr)
		msg := runErr.Error()
		a.publish(in.JobID, progress.StatusFailed, nil, &msg)
		return transcribeActivityOutput{}, wrapActivityErr(runErr)
	}

	segments := make([]transentities.Segment, len(result.Segments))
	for i, s := range result.Segments {
		segments[i] = transentities.Segment{StartS: s.StartS, EndS: s.EndS, Text: s.Text, Confidence: s.Confidence}
	}
	tr.Complete(result.FullText, segments, result.Language, result.ModelName, result.ModelVersion, result.AvgConfidence, result.ProcessingSeconds)
	if err := a.transcriptionRepo.Update(ctx, tr); err != nil {
		return transcribeActivityOutput{}, wrapActivityErr(apperr.New(apperr.KindInvariant, "transcribe", err))
	}

	a.publish(in.JobID, progress.StatusProcessing, intPtr(100), nil)
	return transcribeActivityOutput{Language: result.Language}, nil
}

// ChunkActivity runs C5 over the completed transcription and replaces
// its chunk set wholesale, so a retried attempt is idempotent.
func (a *Activities) ChunkActivity(ctx context.Context, in chunkActivityInput) (out chunkActivityOutput, err error) {
	ctx, endSpan := traceActivity(ctx, "activity.chunk")
	defer func() { endSpan(err) }()

	a.publish(in.JobID, progress.StatusProcessing, intPtr(0), nil)

	tr, err := a.transcriptionRepo.FindByID(ctx, in.TranscriptionID)
	if err != nil {
		return chunkActivityOutput{}, wrapActivityErr(apperr.New(apperr.KindInput, "chunk", fmt.Errorf("load transcription: %w", err)))
	}

	heartbeat := func(pct int) {
		activity.RecordHeartbeat(ctx, pct)
		a.publish(in.JobID, progress.StatusProcessing, intPtr(pct), nil)
	}

	chunks, err := a.chunker.Chunk(ctx, tr.GetID(), tr.FullText, tr.Segments.Value, heartbeat)
	if err != nil {
		msg := err.Error()
		a.publish(in.JobID, progress.StatusFailed, nil, &msg)
		return chunkActivityOutput{}, wrapActivityErr(err)
	}

	if err := a.chunkRepo.ReplaceAll(ctx, tr.GetID(), chunks); err != nil {
		return chunkActivityOutput{}, wrapActivityErr(apperr.New(apperr.KindInvariant, "chunk", err))
	}

	a.publish(in.JobID, progress.StatusProcessing, intPtr(100), nil)
	return chunkActivityOutput{ChunkCount: len(chunks)}, nil
}

// AssignTopicsActivity runs C7 over the transcription's chunk
// summaries. Linking is idempotent (repositories.TranscriptionTopicRepository.Link
// skips existing rows), satisfying the retry contract directly.
func (a *Activities) AssignTopicsActivity(ctx context.Context, in assignTopicsActivityInput) (out assignTopicsActivityOutput, err error) {
	ctx, endSpan := traceActivity(ctx, "activity.assign_topics")
	defer func() { endSpan(err) }()

	a.publish(in.JobID, progress.StatusProcessing, intPtr(0), nil)

	if err := a.classifier.Assign(ctx, in.TranscriptionID); err != nil {
		msg := err.Error()
		a.publish(in.JobID, progress.StatusFailed, nil, &msg)
		return assignTopicsActivityOutput{}, wrapActivityErr(err)
	}

	links, err := a.linkRepo.FindByTranscriptionID(ctx, in.TranscriptionID)
	if err != nil {
		return assignTopicsActivityOutput{}, wrapActivityErr(apperr.New(apperr.KindTransient, "assign_topics", err))
	}

	a.publish(in.JobID, progress.StatusProcessing, intPtr(100), nil)
	return assignTopicsActivityOutput{TopicCount: len(links)}, nil
}

// EmbedActivity runs C6 over the transcription's chunks. It is the
// last step of TranscribeWorkflow; CompleteJobActivity runs after it
// returns.
func (a *Activities) EmbedActivity(ctx context.Context, in embedActivityInput) (out embedActivityOutput, err error) {
	ctx, endSpan := traceActivity(ctx, "activity.embed")
	defer func() { endSpan(err) }()

	a.publish(in.JobID, progress.StatusProcessing, intPtr(0), nil)

	heartbeat := func(pct int) {
		activity.RecordHeartbeat(ctx, pct)
		a.publish(in.JobID, progress.StatusProcessing, intPtr(pct), nil)
	}

	if err := a.embedder.Embed(ctx, in.TranscriptionID, heartbeat); err != nil {
		msg := err.Error()
		a.publish(in.JobID, progress.StatusFailed, nil, &msg)
		return embedActivityOutput{}, wrapActivityErr(err)
	}

	a.publish(in.JobID, progress.StatusProcessing, intPtr(100), nil)
	return embedActivityOutput{}, nil
}

// CompleteJobActivity is the single write that marks a Job completed,
// called exactly once by each workflow on terminal success.
func (a *Activities) CompleteJobActivity(ctx context.Context, in completeJobInput) (err error) {
	ctx, endSpan := traceActivity(ctx, "activity.complete_job")
	defer func() { endSpan(err) }()

	job, err := a.jobRepo.FindByID(ctx, in.JobID)
	if err != nil {
		return wrapActivityErr(apperr.New(apperr.KindInput, "job", err))
	}
	job.Complete(in.MediaFileID, in.TranscriptionID)
	if err := a.jobRepo.Update(ctx, job); err != nil {
		return wrapActivityErr(apperr.New(apperr.KindTransient, "job", err))
	}
	a.publish(in.JobID, progress.StatusCompleted, intPtr(100), nil)
	return nil
}

// FailJobActivity is the single write that marks a Job failed, called
// exactly once by each workflow when its activity chain is exhausted.
func (a *Activities) FailJobActivity(ctx context.Context, in failJobInput) (err error) {
	ctx, endSpan := traceActivity(ctx, "activity.fail_job")
	defer func() { endSpan(err) }()

	job, err := a.jobRepo.FindByID(ctx, in.JobID)
	if err != nil {
		return wrapActivityErr(apperr.New(apperr.KindInput, "job", err))
	}
	job.Fail(in.ErrorText)
	if err := a.jobRepo.Update(ctx, job); err != nil {
		return wrapActivityErr(apperr.New(apperr.KindTransient, "job", err))
	}
	errText := in.ErrorText
	a.publish(in.JobID, progress.StatusFailed, nil, &errText)
	return nil
}
