// Package entities holds the MediaFile domain entity: an owned,
// deduplicated audio blob on disk plus its metadata row.
package entities

import (
	"ingestpipe/seedwork/domain"
)

type Origin string

const (
	OriginUpload   Origin = "upload"
	OriginDownload Origin = "download"
)

// MediaFile is a stored audio blob owned by one user. Invariant U1
// ((owner_id, content_hash) unique) is enforced by a composite unique
// index at the migration level; invariant U2 (stored_path exists on
// disk iff the row exists) is enforced by the content store's ingest/
// delete transaction discipline (modules/media/infrastructure/
// contentstore), not by this type.
type MediaFile struct {
	domain.BaseEntity
	OwnerID         string   `json:"owner_id" gorm:"column:owner_id;not null;index:idx_media_owner_hash,unique"`
	StoredPath      string   `json:"stored_path" gorm:"column:stored_path;not null"`
	DisplayName     string   `json:"display_name" gorm:"column:display_name;not null"`
	ByteSize        int64    `json:"byte_size" gorm:"column:byte_size;not null"`
	Mime            string   `json:"mime" gorm:"column:mime"`
	DurationSeconds *float64 `json:"duration_seconds,omitempty" gorm:"column:duration_seconds"`
	ContentHash     string   `json:"content_hash" gorm:"column:content_hash;not null;index:idx_media_owner_hash,unique"`
	Origin          Origin   `json:"origin" gorm:"column:origin;not null"`
	OriginURL       *string  `json:"origin_url,omitempty" gorm:"column:origin_url"`
	OriginPlatform  *string  `json:"origin_platform,omitempty" gorm:"column:origin_platform"`
}

func (MediaFile) TableName() string { return "media_files" }

// NewMediaFile constructs an upload- or download-origin MediaFile row.
// Callers are expected to have already staged the bytes at storedPath
// via the content store before persisting this row (U2).
func NewMediaFile(ownerID, storedPath, displayName string, byteSize int64, contentHash string, origin Origin) *MediaFile {
	mf := &MediaFile{
		OwnerID:     ownerID,
		StoredPath:  storedPath,
		DisplayName: displayName,
		ByteSize:    byteSize,
		ContentHash: contentHash,
		Origin:      origin,
	}
	mf.SetID(domain.GenerateID())
	return mf
}
