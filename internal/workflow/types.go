// Package workflow implements C8: two Temporal workflows,
// DownloadWorkflow and TranscribeWorkflow, and the
// activities they drive. Both are deterministic replay-safe drivers
// that only invoke activities and wait on their results; every side
// effect (DB write, file write, LLM call) lives in an activity method
// on *Activities.
package workflow

// DownloadWorkflowInput starts DownloadWorkflow.
type DownloadWorkflowInput struct {
	JobID     string
	OwnerID   string
	SourceURL string
}

// DownloadWorkflowOutput is the small summary payload the workflow
// returns, kept deliberately thin rather than echoing full row data.
type DownloadWorkflowOutput struct {
	MediaFileID string
	IsDuplicate bool
	Platform    string
}

// TranscribeWorkflowInput starts TranscribeWorkflow.
type TranscribeWorkflowInput struct {
	JobID           string
	OwnerID         string
	TranscriptionID string
}

// TranscribeWorkflowOutput summarizes the whole transcribe→chunk→
// assign-topics→embed pipeline for one transcription.
type TranscribeWorkflowOutput struct {
	TranscriptionID string
	Language        string
	ChunkCount      int
	TopicCount      int
}

// downloadActivityInput/Output and the rest below are the per-activity
// wire shapes. They stay separate from the workflow-level input/output
// types so an activity's signature doesn't change just because the
// workflow's does.

type downloadActivityInput struct {
	JobID     string
	OwnerID   string
	SourceURL string
}

type downloadActivityOutput struct {
	MediaFileID string
	IsDuplicate bool
	Platform    string
}

type transcribeActivityInput struct {
	JobID           string
	TranscriptionID string
}

type transcribeActivityOutput struct {
	Language string
}

type chunkActivityInput struct {
	JobID           string
	TranscriptionID string
}

type chunkActivityOutput struct {
	ChunkCount int
}

type assignTopicsActivityInput struct {
	JobID           string
	OwnerID         string
	TranscriptionID string
}

type assignTopicsActivityOutput struct {
	TopicCount int
}

type embedActivityInput struct {
	JobID           string
	TranscriptionID string
}

type embedActivityOutput struct{}

// completeJobInput/failJobInput back the two terminal job-mutation
// activities the workflow code calls exactly once. The Job row is
// owned by C8: only workflow code writes it.
type completeJobInput struct {
	JobID           string
	MediaFileID     *string
	TranscriptionID *string
}

type failJobInput struct {
	JobID     string
	ErrorText string
}
