// Package entities holds Job, C8's opaque durable handle exposed to
// the API. Narrowed from a general-purpose processing-job shape down
// to the fixed {download, transcribe} kind this pipeline actually
// runs, since every Job here maps 1:1 onto exactly one Temporal
// workflow execution.
package entities

import (
	"ingestpipe/seedwork/domain"
)

type Kind string

const (
	KindDownload   Kind = "download"
	KindTranscribe Kind = "transcribe"
)

type Status string

const (
	Pending    Status = "pending"
	Processing Status = "processing"
	Completed  Status = "completed"
	Failed     Status = "failed"
)

// Job is owned by C8 and written only by workflow code.
// Terminality: once Completed or Failed, no further writes are valid -
// enforced by the Complete/Fail methods refusing to re-fire, not by
// the zero value.
type Job struct {
	domain.BaseEntity
	OwnerID         string  `json:"owner_id" gorm:"column:owner_id;not null;index"`
	Kind            Kind    `json:"kind" gorm:"column:kind;not null"`
	Status          Status  `json:"status" gorm:"column:status;not null"`
	ErrorText       *string `json:"error_text,omitempty" gorm:"column:error_text"`
	MediaFileID     *string `json:"media_file_id,omitempty" gorm:"column:media_file_id;index"`
	TranscriptionID *string `json:"transcription_id,omitempty" gorm:"column:transcription_id;index"`
}

func (Job) TableName() string { return "jobs" }

func NewJob(ownerID string, kind Kind) *Job {
	j := &Job{OwnerID: ownerID, Kind: kind, Status: Pending}
	j.SetID(domain.GenerateID())
	return j
}

func (j *Job) Start() { j.Status = Processing }

// IsTerminal reports whether the job has already reached a terminal
// state; callers must not mutate a terminal Job further.
func (j *Job) IsTerminal() bool {
	return j.Status == Completed || j.Status == Failed
}

// Complete transitions to completed and attaches whichever back-
// reference the workflow produced. A no-op if already terminal.
func (j *Job) Complete(mediaFileID, transcriptionID *string) {
	if j.IsTerminal() {
		return
	}
	j.Status = Completed
	if mediaFileID != nil {
		j.MediaFileID = mediaFileID
	}
	if transcriptionID != nil {
		j.TranscriptionID = transcriptionID
	}
}

// Fail transitions to failed. A no-op if already terminal.
func (j *Job) Fail(errText string) {
	if j.IsTerminal() {
		return
	}
	j.Status = Failed
	j.ErrorText = &errText
}

func (j *Job) IsCompleted() bool { return j.Status == Completed }
func (j *Job) IsFailed() bool    { return j.Status == Failed }
