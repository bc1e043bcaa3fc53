package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	jobentities "ingestpipe/modules/job/domain/entities"
	jobrepos "ingestpipe/modules/job/domain/repositories"
	"ingestpipe/seedwork/infrastructure/progress"
)

type fakeJobRepo struct {
	jobs map[string]*jobentities.Job
}

func newFakeJobRepo(jobs ...*jobentities.Job) *fakeJobRepo {
	m := map[string]*jobentities.Job{}
	for _, j := range jobs {
		m[j.GetID()] = j
	}
	return &fakeJobRepo{jobs: m}
}

func (r *fakeJobRepo) Create(ctx context.Context, j *jobentities.Job) error {
	r.jobs[j.GetID()] = j
	return nil
}
func (r *fakeJobRepo) FindByID(ctx context.Context, id string) (*jobentities.Job, error) {
	j, ok := r.jobs[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	return j, nil
}
func (r *fakeJobRepo) FindByOwnerID(ctx context.Context, ownerID string) ([]*jobentities.Job, error) {
	return nil, nil
}
func (r *fakeJobRepo) Update(ctx context.Context, j *jobentities.Job) error {
	r.jobs[j.GetID()] = j
	return nil
}

var _ jobrepos.JobRepository = (*fakeJobRepo)(nil)

func newTestActivities(jobRepo *fakeJobRepo, bus *progress.Bus) *Activities {
	return NewActivities(nil, nil, nil, nil, jobRepo, nil, nil, nil, nil, nil, bus, zap.NewNop())
}

func TestCompleteJobActivity_MarksJobCompletedAndPublishes(t *testing.T) {
	job := jobentities.NewJob("owner-1", jobentities.KindDownload)
	repo := newFakeJobRepo(job)
	bus := progress.New()
	ch := bus.Subscribe(job.GetID())
	a := newTestActivities(repo, bus)

	mediaID := "media-1"
	err := a.CompleteJobActivity(context.Background(), completeJobInput{JobID: job.GetID(), MediaFileID: &mediaID})
	require.NoError(t, err)

	updated, _ := repo.FindByID(context.Background(), job.GetID())
	assert.True(t, updated.IsCompleted())
	assert.Equal(t, mediaID, *updated.MediaFileID)

	ev := <-ch
	assert.Equal(t, progress.StatusCompleted, ev.Status)
}

func TestFailJobActivity_MarksJobFailedAndPublishes(t *testing.T) {
	job := jobentities.NewJob("owner-1", jobentities.KindTranscribe)
	repo := newFakeJobRepo(job)
	bus := progress.New()
	ch := bus.Subscribe(job.GetID())
	a := newTestActivities(repo, bus)

	err := a.FailJobActivity(context.Background(), failJobInput{JobID: job.GetID(), ErrorText: "transcribe: model crashed"})
	require.NoError(t, err)

	updated, _ := repo.FindByID(context.Background(), job.GetID())
	assert.True(t, updated.IsFailed())
	assert.Equal(t, "transcribe: model crashed", *updated.ErrorText)

	ev := <-ch
	assert.Equal(t, progress.StatusFailed, ev.Status)
	assert.Equal(t, "transcribe: model crashed", *ev.Error)
}

func TestCompleteJobActivity_UnknownJobErrors(t *testing.T) {
	repo := newFakeJobRepo()
	bus := progress.New()
	a := newTestActivities(repo, bus)

	err := a.CompleteJobActivity(context.Background(), completeJobInput{JobID: "missing"})
	assert.Error(t, err)
}
