// Package entities holds Collection, a user-curated ordered grouping
// of transcriptions. CRUD surface for collections is an out-of-scope
// external-collaborator concern, but the data model and repository
// exist so that collaborator has something to call.
package entities

import (
	"ingestpipe/seedwork/domain"
)

type Collection struct {
	domain.BaseEntity
	OwnerID  string  `json:"owner_id" gorm:"column:owner_id;not null;index"`
	Name     string  `json:"name" gorm:"column:name;not null"`
	Type     *string `json:"type,omitempty" gorm:"column:type"`
	IsPublic bool    `json:"is_public" gorm:"column:is_public;not null;default:false"`
}

func (Collection) TableName() string { return "collections" }

func NewCollection(ownerID, name string) *Collection {
	c := &Collection{OwnerID: ownerID, Name: name}
	c.SetID(domain.GenerateID())
	return c
}

// TranscriptionCollection is ordered membership.
type TranscriptionCollection struct {
	domain.BaseEntity
	TranscriptionID string  `json:"transcription_id" gorm:"column:transcription_id;not null;index:idx_transcription_collection,unique,priority:1"`
	CollectionID    string  `json:"collection_id" gorm:"column:collection_id;not null;index:idx_transcription_collection,unique,priority:2"`
	Position        *int    `json:"position,omitempty" gorm:"column:position"`
	AssignedBy      *string `json:"assigned_by,omitempty" gorm:"column:assigned_by"`
}

func (TranscriptionCollection) TableName() string { return "transcription_collections" }
