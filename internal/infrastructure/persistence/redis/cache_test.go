package redis

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idea-forge-api/internal/domain/entity"
	"idea-forge-api/internal/domain/repository"
)

type countingJobRepo struct {
	repository.JobRepository
	jobs  map[string]*entity.GenerationJob
	reads atomic.Int32
}

func (r *countingJobRepo) GetByID(_ context.Context, id string) (*entity.GenerationJob, error) {
	r.reads.Add(1)
	job, ok := r.jobs[id]
	if !ok {
		return nil, nil
	}
	cp := *job
	return &cp, nil
}

func (r *countingJobRepo) Update(_ context.Context, job *entity.GenerationJob) error {
	r.jobs[job.ID] = job
	return nil
}

func TestCachedJobRepository(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	done := &entity.GenerationJob{ID: "done", SessionID: "s1", Status: entity.JobStatusCompleted}
	running := &entity.GenerationJob{ID: "running", SessionID: "s1", Status: entity.JobStatusRunning}
	inner := &countingJobRepo{jobs: map[string]*entity.GenerationJob{"done": done, "running": running}}
	repo := NewCachedJobRepository(inner, client, time.Minute)

	for i := 0; i < 3; i++ {
		job, err := repo.GetByID(ctx, "done")
		require.NoError(t, err)
		assert.Equal(t, entity.JobStatusCompleted, job.Status)
	}
	assert.Equal(t, int32(1), inner.reads.Load())

	for i := 0; i < 2; i++ {
		_, err := repo.GetByID(ctx, "running")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), inner.reads.Load())

	missing, err := repo.GetByID(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, missing)

	updated := *done
	updated.ErrorMessage = "note"
	require.NoError(t, repo.Update(ctx, &updated))
	job, err := repo.GetByID(ctx, "done")
	require.NoError(t, err)
	assert.Equal(t, "note", job.ErrorMessage)
}
