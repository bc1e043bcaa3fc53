package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateID_ProducesValidUUIDs(t *testing.T) {
	id := GenerateID()
	assert.True(t, IsValidID(id))
}

func TestGenerateID_IsUnique(t *testing.T) {
	assert.NotEqual(t, GenerateID(), GenerateID())
}

func TestIsValidID_RejectsGarbage(t *testing.T) {
	assert.False(t, IsValidID("not-a-uuid"))
	assert.False(t, IsValidID(""))
}

func TestBaseEntity_GetSetID(t *testing.T) {
	var e BaseEntity
	e.SetID("abc-123")
	assert.Equal(t, "abc-123", e.GetID())
}
