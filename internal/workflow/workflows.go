package workflow

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const defaultHeartbeatTimeout = 5 * time.Minute

// downloadRetryPolicy governs DownloadWorkflow's download step:
// max_attempts=3, initial 5s, cap 60s, backoff x2.
var downloadRetryPolicy = &temporal.RetryPolicy{
	InitialInterval:    5 * time.Second,
	BackoffCoefficient: 2.0,
	MaximumInterval:    60 * time.Second,
	MaximumAttempts:    3,
}

// DownloadWorkflow runs C8's single-activity download pipeline:
// download_activity with a 30 min start-to-close timeout, then a
// single job-mutation activity on the outcome.
func DownloadWorkflow(ctx workflow.Context, input DownloadWorkflowInput) (DownloadWorkflowOutput, error) {
	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Minute,
		HeartbeatTimeout:    defaultHeartbeatTimeout,
		RetryPolicy:         downloadRetryPolicy,
	}
	actx := workflow.WithActivityOptions(ctx, ao)

	var a *Activities
	var out downloadActivityOutput
	err := workflow.ExecuteActivity(actx, a.DownloadActivity, downloadActivityInput{
		JobID:     input.JobID,
		OwnerID:   input.OwnerID,
		SourceURL: input.SourceURL,
	}).Get(actx, &out)

	jobCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 3},
	})

	if err != nil {
		failErr := workflow.ExecuteActivity(jobCtx, a.FailJobActivity, failJobInput{
			JobID:     input.JobID,
			ErrorText: err.Error(),
		}).Get(jobCtx, nil)
		if failErr != nil {
			return DownloadWorkflowOutput{}, fmt.Errorf("download failed (%w) and job mark-failed also failed: %v", err, failErr)
		}
		return DownloadWorkflowOutput{}, err
	}

	if err := workflow.ExecuteActivity(jobCtx, a.CompleteJobActivity, completeJobInput{
		JobID:       input.JobID,
		MediaFileID: &out.MediaFileID,
	}).Get(jobCtx, nil); err != nil {
		return DownloadWorkflowOutput{}, err
	}

	return DownloadWorkflowOutput{
		MediaFileID: out.MediaFileID,
		IsDuplicate: out.IsDuplicate,
		Platform:    out.Platform,
	}, nil
}

// TranscribeWorkflow runs C8's four-activity pipeline in strict
// sequence: transcribe -> chunk -> assign_topics -> embed. Within one
// Job, activities never run concurrently with each other. Each step's
// timeout/retry policy is set independently; a failure at any step
// short-circuits the rest and fails the Job exactly once.
func TranscribeWorkflow(ctx workflow.Context, input TranscribeWorkflowInput) (TranscribeWorkflowOutput, error) {
	var a *Activities

	jobCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 3},
	})

	fail := func(stage string, err error) (TranscribeWorkflowOutput, error) {
		failErr := workflow.ExecuteActivity(jobCtx, a.FailJobActivity, failJobInput{
			JobID:     input.JobID,
			ErrorText: fmt.Sprintf("%s: %v", stage, err),
		}).Get(jobCtx, nil)
		if failErr != nil {
			return TranscribeWorkflowOutput{}, fmt.Errorf("%s failed (%w) and job mark-failed also failed: %v", stage, err, failErr)
		}
		return TranscribeWorkflowOutput{}, err
	}

	transcribeCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: time.Hour,
		HeartbeatTimeout:    defaultHeartbeatTimeout,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 3},
	})
	var transcribeOut transcribeActivityOutput
	if err := workflow.ExecuteActivity(transcribeCtx, a.TranscribeActivity, transcribeActivityInput{
		JobID:           input.JobID,
		TranscriptionID: input.TranscriptionID,
	}).Get(transcribeCtx, &transcribeOut); err != nil {
		return fail("transcribe", err)
	}

	chunkCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Minute,
		HeartbeatTimeout:    defaultHeartbeatTimeout,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 2},
	})
	var chunkOut chunkActivityOutput
	if err := workflow.ExecuteActivity(chunkCtx, a.ChunkActivity, chunkActivityInput{
		JobID:           input.JobID,
		TranscriptionID: input.TranscriptionID,
	}).Get(chunkCtx, &chunkOut); err != nil {
		return fail("chunk", err)
	}

	topicsCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Minute,
		HeartbeatTimeout:    defaultHeartbeatTimeout,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 2},
	})
	var topicsOut assignTopicsActivityOutput
	if err := workflow.ExecuteActivity(topicsCtx, a.AssignTopicsActivity, assignTopicsActivityInput{
		JobID:           input.JobID,
		OwnerID:         input.OwnerID,
		TranscriptionID: input.TranscriptionID,
	}).Get(topicsCtx, &topicsOut); err != nil {
		return fail("assign_topics", err)
	}

	embedCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Minute,
		HeartbeatTimeout:    defaultHeartbeatTimeout,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 3},
	})
	if err := workflow.ExecuteActivity(embedCtx, a.EmbedActivity, embedActivityInput{
		JobID:           input.JobID,
		TranscriptionID: input.TranscriptionID,
	}).Get(embedCtx, nil); err != nil {
		return fail("embed", err)
	}

	if err := workflow.ExecuteActivity(jobCtx, a.CompleteJobActivity, completeJobInput{
		JobID:           input.JobID,
		TranscriptionID: &input.TranscriptionID,
	}).Get(jobCtx, nil); err != nil {
		return TranscribeWorkflowOutput{}, err
	}

	return TranscribeWorkflowOutput{
		TranscriptionID: input.TranscriptionID,
		Language:        transcribeOut.Language,
		ChunkCount:      chunkOut.ChunkCount,
		TopicCount:      topicsOut.TopicCount,
	}, nil
}
