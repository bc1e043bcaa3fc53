package workflow

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.temporal.io/sdk/temporal"

	"ingestpipe/seedwork/apperr"
)

func TestWrapActivityErr_Nil(t *testing.T) {
	assert.Nil(t, wrapActivityErr(nil))
}

func TestWrapActivityErr_PlainErrorPassesThrough(t *testing.T) {
	plain := errors.New("boom")
	assert.Same(t, plain, wrapActivityErr(plain))
}

func TestWrapActivityErr_TransientPassesThroughForRetry(t *testing.T) {
	err := apperr.New(apperr.KindTransient, "transcribe", errors.New("model unavailable"))
	assert.Equal(t, err, wrapActivityErr(err))
}

func TestWrapActivityErr_NonRetryableKindsAreWrapped(t *testing.T) {
	for _, k := range []apperr.Kind{apperr.KindInput, apperr.KindIntegrity, apperr.KindValidation, apperr.KindInvariant, apperr.KindCancelled} {
		err := apperr.New(k, "chunk", errors.New("bad input"))
		wrapped := wrapActivityErr(err)

		var appErr *temporal.ApplicationError
		a := assert.New(t)
		a.ErrorAs(wrapped, &appErr)
		a.True(appErr.NonRetryable(), "kind %s must produce a non-retryable application error", k)
	}
}
