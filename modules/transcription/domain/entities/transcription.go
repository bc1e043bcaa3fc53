// Package entities holds the Transcription entity: the result of
// running C4 over a MediaFile. Segments are not a separate relational
// table but an ordered JSON column on the Transcription row itself,
// since a segment is modeled as an attribute of Transcription, not an
// owned child entity with its own id/lifecycle.
package entities

import (
	"ingestpipe/seedwork/domain"
)

type TranscriptionStatus string

const (
	Pending    TranscriptionStatus = "pending"
	Processing TranscriptionStatus = "processing"
	Completed  TranscriptionStatus = "completed"
	Failed     TranscriptionStatus = "failed"
)

// Segment is a speech-model-emitted time-aligned span.
type Segment struct {
	StartS     float64 `json:"start_s"`
	EndS       float64 `json:"end_s"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence,omitempty"`
}

// Transcription is the domain entity holding the text output of the
// speech model for one media file. Invariant T1:
// status=completed => full_text non-empty and segments monotonically
// non-decreasing in start_s. T2: status=failed => error_text set.
// Both invariants are enforced by the Complete/Fail transition methods
// below, not by the zero value.
type Transcription struct {
	domain.BaseEntity
	MediaFileID       string                       `json:"media_file_id" gorm:"column:media_file_id;not null;index"`
	OwnerID           string                       `json:"owner_id" gorm:"column:owner_id;not null;index"`
	FullText          string                       `json:"full_text" gorm:"column:full_text;type:text"`
	Segments          domain.JSONColumn[[]Segment] `json:"segments" gorm:"column:segments;type:jsonb"`
	Language          *string                      `json:"language,omitempty" gorm:"column:language"`
	ModelName         *string                      `json:"model_name,omitempty" gorm:"column:model_name"`
	ModelVersion      *string                      `json:"model_version,omitempty" gorm:"column:model_version"`
	AvgConfidence     *float64                     `json:"avg_confidence,omitempty" gorm:"column:avg_confidence"`
	ProcessingSeconds *float64                     `json:"processing_seconds,omitempty" gorm:"column:processing_seconds"`
	Status            TranscriptionStatus          `json:"status" gorm:"column:status;not null"`
	ErrorText         *string                      `json:"error_text,omitempty" gorm:"column:error_text"`
}

func (Transcription) TableName() string { return "transcriptions" }

// NewTranscription inserts a pending Transcription, as the API does
// when a transcription is requested.
func NewTranscription(mediaFileID, ownerID string) *Transcription {
	t := &Transcription{
		MediaFileID: mediaFileID,
		OwnerID:     ownerID,
		Status:      Pending,
	}
	t.SetID(domain.GenerateID())
	return t
}

func (t *Transcription) StartProcessing() { t.Status = Processing }

// Complete transitions to completed, satisfying T1: segments must
// already be non-decreasing in start_s (callers build them that way;
// C4 emits them in recognition order, which is chronological).
func (t *Transcription) Complete(fullText string, segments []Segment, language, modelName, modelVersion string, avgConfidence, processingSeconds float64) {
	t.Status = Completed
	t.FullText = fullText
	t.Segments = domain.JSONColumn[[]Segment]{Value: segments}
	if language != "" {
		t.Language = &language
	}
	if modelName != "" {
		t.ModelName = &modelName
	}
	if modelVersion != "" {
		t.ModelVersion = &modelVersion
	}
	t.AvgConfidence = &avgConfidence
	t.ProcessingSeconds = &processingSeconds
	t.ErrorText = nil
}

// Fail transitions to failed, satisfying T2.
func (t *Transcription) Fail(errText string) {
	t.Status = Failed
	t.ErrorText = &errText
}

func (t *Transcription) IsCompleted() bool { return t.Status == Completed }
func (t *Transcription) IsFailed() bool    { return t.Status == Failed }
func (t *Transcription) HasContent() bool  { return t.FullText != "" }
