package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewJob(t *testing.T) {
	j := NewJob("owner-1", KindDownload)

	assert.NotEmpty(t, j.GetID())
	assert.Equal(t, "owner-1", j.OwnerID)
	assert.Equal(t, KindDownload, j.Kind)
	assert.Equal(t, Pending, j.Status)
	assert.False(t, j.IsTerminal())
}

func TestJob_CompleteSetsBackReference(t *testing.T) {
	j := NewJob("owner-1", KindDownload)
	j.Start()
	assert.Equal(t, Processing, j.Status)

	mediaID := "media-1"
	j.Complete(&mediaID, nil)

	assert.True(t, j.IsCompleted())
	assert.True(t, j.IsTerminal())
	assert.Equal(t, mediaID, *j.MediaFileID)
	assert.Nil(t, j.TranscriptionID)
}

func TestJob_Fail(t *testing.T) {
	j := NewJob("owner-1", KindTranscribe)
	j.Start()

	j.Fail("download failed: 404")

	assert.True(t, j.IsFailed())
	assert.True(t, j.IsTerminal())
	assert.Equal(t, "download failed: 404", *j.ErrorText)
}

func TestJob_TerminalIsNoOp(t *testing.T) {
	j := NewJob("owner-1", KindDownload)
	j.Fail("first error")
	assert.Equal(t, "first error", *j.ErrorText)

	mediaID := "media-1"
	j.Complete(&mediaID, nil)

	assert.True(t, j.IsFailed(), "terminal job must not transition to completed")
	assert.Nil(t, j.MediaFileID, "terminal job must not accept a late back-reference")

	j.Fail("second error")
	assert.Equal(t, "first error", *j.ErrorText, "terminal job must not overwrite its error")
}
