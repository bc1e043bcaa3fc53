package workflow

import (
	"go.temporal.io/sdk/temporal"

	"ingestpipe/seedwork/apperr"
)

// wrapActivityErr maps the pipeline's error taxonomy onto Temporal's
// retry semantics. A StageError whose Kind isn't KindTransient is
// wrapped as a non-retryable application error so the workflow's retry
// policy doesn't burn attempts on something that will never succeed;
// everything else is returned as-is and retried per policy.
func wrapActivityErr(err error) error {
	if err == nil {
		return nil
	}
	se, ok := apperr.Of(err)
	if !ok || se.Retryable() {
		return err
	}
	return temporal.NewNonRetryableApplicationError(se.Error(), string(se.Kind), se.Err)
}
