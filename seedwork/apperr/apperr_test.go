package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_NilErrPassesThrough(t *testing.T) {
	assert.Nil(t, New(KindTransient, "download", nil))
}

func TestStageError_Error(t *testing.T) {
	err := New(KindInput, "download", errors.New("bad url"))
	assert.Equal(t, "download: input: bad url", err.Error())

	err = New(KindInvariant, "", errors.New("broken"))
	assert.Equal(t, "invariant: broken", err.Error())
}

func TestStageError_Retryable(t *testing.T) {
	assert.True(t, New(KindTransient, "transcribe", errors.New("x")).(*StageError).Retryable())
	for _, k := range []Kind{KindInput, KindIntegrity, KindValidation, KindInvariant, KindCancelled} {
		se := New(k, "stage", errors.New("x")).(*StageError)
		assert.False(t, se.Retryable(), "kind %s must not be retryable", k)
	}
}

func TestOf_FindsWrappedStageError(t *testing.T) {
	inner := New(KindTransient, "chunk", errors.New("timeout"))
	wrapped := fmt.Errorf("activity failed: %w", inner)

	se, ok := Of(wrapped)
	assert.True(t, ok)
	assert.Equal(t, KindTransient, se.Kind)
	assert.Equal(t, "chunk", se.Stage)
}

func TestOf_NoStageError(t *testing.T) {
	_, ok := Of(errors.New("plain error"))
	assert.False(t, ok)
}

func TestOf_NilError(t *testing.T) {
	_, ok := Of(nil)
	assert.False(t, ok)
}
