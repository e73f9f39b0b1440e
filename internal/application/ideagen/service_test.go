package ideagen

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idea-forge-api/internal/application/request"
	"idea-forge-api/internal/domain/entity"
	"idea-forge-api/internal/domain/repository"
	"idea-forge-api/internal/domain/service"
	"idea-forge-api/internal/infrastructure/persistence/memory"
)

func sampleIdea(title string) entity.Idea {
	return entity.Idea{
		Title:        title,
		Tagline:      "Smart quizzes for classrooms",
		Problem:      "Teachers spend hours writing quizzes.",
		Solution:     "Generate quizzes from lesson notes.",
		Features:     []string{"Quiz generator", "Grade export"},
		TechStack:    []string{"Go", "PostgreSQL"},
		Architecture: "client -> api -> db",
		Roadmap:      []entity.RoadmapPhase{{Phase: "MVP", Tasks: []string{"upload notes"}}},
		Feasibility:  entity.Feasibility{Technical: 8, TimeDays: 2, MarketFit: 7},
		Persona:      "High school teacher",
		Monetization: "Per-school license",
		TaskBreakdown: []entity.TaskArea{
			{Area: "backend", Tasks: []string{"api"}, EstimatedHours: 6},
		},
	}
}

func threeIdeas() []entity.Idea {
	return []entity.Idea{sampleIdea("Quiz Forge"), sampleIdea("Lesson Lens"), sampleIdea("Grade Buddy")}
}

func staticGenerator(ideas []entity.Idea) service.IdeaGenerator {
	return service.IdeaGeneratorFunc(func(ctx context.Context, req entity.GenerationRequest) (*service.GenerationOutput, error) {
		return &service.GenerationOutput{Ideas: ideas, Provider: "fake", Model: "fake-1"}, nil
	})
}

func educationDraft(t *testing.T) *request.RequestDraft {
	t.Helper()
	d := request.NewRequestDraft()
	require.NoError(t, d.Set(request.FieldDomain, "education"))
	require.NoError(t, d.Set(request.FieldAudience, "teachers"))
	return d
}

type fakeJobRepo struct {
	mu   sync.Mutex
	jobs map[string]*entity.GenerationJob
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: make(map[string]*entity.GenerationJob)}
}

func (r *fakeJobRepo) Create(_ context.Context, job *entity.GenerationJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *job
	r.jobs[job.ID] = &cp
	return nil
}

func (r *fakeJobRepo) GetByID(_ context.Context, id string) (*entity.GenerationJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, nil
	}
	cp := *job
	return &cp, nil
}

func (r *fakeJobRepo) Update(ctx context.Context, job *entity.GenerationJob) error {
	return r.Create(ctx, job)
}

func (r *fakeJobRepo) ListBySession(_ context.Context, sessionID string, status entity.JobStatus, p repository.Pagination) (*repository.PagedResult[*entity.GenerationJob], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []*entity.GenerationJob
	for _, job := range r.jobs {
		if job.SessionID == sessionID && (status == "" || job.Status == status) {
			items = append(items, job)
		}
	}
	return repository.NewPagedResult(items, int64(len(items)), p), nil
}

func newTestService(gen service.IdeaGenerator, jobs repository.JobRepository) (*Service, *memory.SessionStore) {
	store := memory.NewSessionStore(16, time.Hour)
	svc := NewService(gen, store, jobs, Config{Timeout: 5 * time.Second, BatchTTL: time.Hour, InFlightTTL: time.Minute})
	seq := 0
	svc.newID = func() string {
		seq++
		return fmt.Sprintf("gen-%d", seq)
	}
	return svc, store
}

func TestGenerate_EducationScenario(t *testing.T) {
	var got entity.GenerationRequest
	gen := service.IdeaGeneratorFunc(func(ctx context.Context, req entity.GenerationRequest) (*service.GenerationOutput, error) {
		got = req
		return &service.GenerationOutput{Ideas: threeIdeas(), Provider: "fake", Model: "fake-1"}, nil
	})
	jobs := newFakeJobRepo()
	svc, _ := newTestService(gen, jobs)

	batch, err := svc.Generate(context.Background(), "s1", educationDraft(t))
	require.NoError(t, err)

	assert.Equal(t, "education", got.Domain())
	assert.Equal(t, "teachers", got.Audience())
	assert.Equal(t, entity.DifficultyBeginner, got.Difficulty())
	assert.Equal(t, 2, got.TimeAvailableDays())
	assert.Equal(t, entity.ModeHackathon, got.Mode())

	assert.Equal(t, "gen-1", batch.GenerationID)
	assert.Equal(t, "s1", batch.SessionID)
	assert.Equal(t, "Quiz Forge", batch.Ideas[0].Title)
	assert.Equal(t, "Grade Buddy", batch.Ideas[2].Title)

	latest, err := svc.Latest(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, batch.Ideas, latest.Ideas)

	job, err := svc.Job(context.Background(), "gen-1")
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusCompleted, job.Status)
	assert.Equal(t, "fake", job.LLMProvider)
	assert.NotEmpty(t, job.OutputResult)
}

func TestGenerate_ValidationErrorSkipsGenerator(t *testing.T) {
	called := false
	gen := service.IdeaGeneratorFunc(func(ctx context.Context, req entity.GenerationRequest) (*service.GenerationOutput, error) {
		called = true
		return nil, errors.New("unreachable")
	})
	svc, _ := newTestService(gen, nil)

	d := educationDraft(t)
	require.NoError(t, d.Set(request.FieldTimeAvailableDays, "366"))

	_, err := svc.Generate(context.Background(), "s1", d)
	var verr *request.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, request.FieldTimeAvailableDays, verr.Field)
	assert.False(t, called)
}

func TestGenerate_WrongArityIsGenerationFailure(t *testing.T) {
	svc, _ := newTestService(staticGenerator(threeIdeas()[:2]), nil)

	_, err := svc.Generate(context.Background(), "s1", educationDraft(t))
	var failure *entity.GenerationFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, "fake", failure.Provider)

	_, err = svc.Latest(context.Background(), "s1")
	assert.ErrorIs(t, err, repository.ErrBatchNotFound)
}

func TestGenerate_IncompleteIdeaIsGenerationFailure(t *testing.T) {
	ideas := threeIdeas()
	ideas[1].Persona = ""
	svc, _ := newTestService(staticGenerator(ideas), nil)

	_, err := svc.Generate(context.Background(), "s1", educationDraft(t))
	var failure *entity.GenerationFailure
	require.ErrorAs(t, err, &failure)
	var serr *entity.SerializationError
	assert.ErrorAs(t, err, &serr)
}

func TestGenerate_GeneratorErrorWrapped(t *testing.T) {
	gen := service.IdeaGeneratorFunc(func(ctx context.Context, req entity.GenerationRequest) (*service.GenerationOutput, error) {
		return nil, errors.New("connection refused")
	})
	jobs := newFakeJobRepo()
	svc, _ := newTestService(gen, jobs)

	_, err := svc.Generate(context.Background(), "s1", educationDraft(t))
	var failure *entity.GenerationFailure
	require.ErrorAs(t, err, &failure)
	assert.Contains(t, err.Error(), "connection refused")

	job, err := svc.Job(context.Background(), "gen-1")
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusFailed, job.Status)
	assert.Contains(t, job.ErrorMessage, "connection refused")
}

func TestGenerate_FailureKeepsPreviousBatch(t *testing.T) {
	fail := false
	gen := service.IdeaGeneratorFunc(func(ctx context.Context, req entity.GenerationRequest) (*service.GenerationOutput, error) {
		if fail {
			return nil, errors.New("boom")
		}
		return &service.GenerationOutput{Ideas: threeIdeas(), Provider: "fake"}, nil
	})
	svc, _ := newTestService(gen, nil)

	first, err := svc.Generate(context.Background(), "s1", educationDraft(t))
	require.NoError(t, err)

	fail = true
	_, err = svc.Generate(context.Background(), "s1", educationDraft(t))
	require.Error(t, err)

	latest, err := svc.Latest(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, first.GenerationID, latest.GenerationID)
}

func TestGenerate_SecondSubmissionWhileInFlight(t *testing.T) {
	entered := make(chan struct{})
	unblock := make(chan struct{})
	gen := service.IdeaGeneratorFunc(func(ctx context.Context, req entity.GenerationRequest) (*service.GenerationOutput, error) {
		close(entered)
		<-unblock
		return &service.GenerationOutput{Ideas: threeIdeas(), Provider: "fake"}, nil
	})
	store := memory.NewSessionStore(16, time.Hour)
	svc := NewService(gen, store, nil, Config{Timeout: 5 * time.Second})

	done := make(chan error, 1)
	go func() {
		_, err := svc.Generate(context.Background(), "s1", educationDraft(t))
		done <- err
	}()
	<-entered

	_, err := svc.Generate(context.Background(), "s1", educationDraft(t))
	assert.ErrorIs(t, err, repository.ErrGenerationInFlight)

	// 其它会话不受影响
	other := NewService(staticGenerator(threeIdeas()), store, nil, Config{})
	_, err = other.Generate(context.Background(), "s2", educationDraft(t))
	assert.NoError(t, err)

	close(unblock)
	require.NoError(t, <-done)

	// 完成后会话可再次生成
	_, err = other.Generate(context.Background(), "s1", educationDraft(t))
	assert.NoError(t, err)
}

func TestGenerate_TimeoutIsGenerationFailure(t *testing.T) {
	gen := service.IdeaGeneratorFunc(func(ctx context.Context, req entity.GenerationRequest) (*service.GenerationOutput, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	store := memory.NewSessionStore(16, time.Hour)
	svc := NewService(gen, store, nil, Config{Timeout: 20 * time.Millisecond})

	_, err := svc.Generate(context.Background(), "s1", educationDraft(t))
	var failure *entity.GenerationFailure
	require.ErrorAs(t, err, &failure)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// 超时后占用已释放
	require.NoError(t, store.Acquire(context.Background(), "s1", "next", time.Minute))
}

func TestIdea_Positions(t *testing.T) {
	svc, _ := newTestService(staticGenerator(threeIdeas()), nil)
	_, err := svc.Generate(context.Background(), "s1", educationDraft(t))
	require.NoError(t, err)

	view, err := svc.Idea(context.Background(), "s1", 2)
	require.NoError(t, err)
	assert.Equal(t, "Idea #2", view.Label)
	assert.Equal(t, "Lesson Lens", view.Idea.Title)

	for _, pos := range []int{0, 4} {
		_, err = svc.Idea(context.Background(), "s1", pos)
		assert.ErrorIs(t, err, ErrPositionOutOfRange)
	}

	_, err = svc.Idea(context.Background(), "missing", 1)
	assert.ErrorIs(t, err, repository.ErrBatchNotFound)
}

func TestJob_Disabled(t *testing.T) {
	svc, _ := newTestService(staticGenerator(threeIdeas()), nil)
	_, err := svc.Job(context.Background(), "gen-1")
	assert.ErrorIs(t, err, ErrJobsDisabled)
}

func TestSessionJobs(t *testing.T) {
	jobs := newFakeJobRepo()
	svc, _ := newTestService(staticGenerator(threeIdeas()), jobs)
	_, err := svc.Generate(context.Background(), "s1", educationDraft(t))
	require.NoError(t, err)

	page, err := svc.SessionJobs(context.Background(), "s1", entity.JobStatusCompleted, repository.NewPagination(1, 10))
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)

	_, err = svc.Job(context.Background(), "unknown")
	assert.ErrorIs(t, err, ErrJobNotFound)
}
