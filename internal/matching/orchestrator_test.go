package matching

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/MQasim39/career-dashboard/internal/ai"
	"github.com/MQasim39/career-dashboard/internal/extract"
	"github.com/MQasim39/career-dashboard/internal/jobs"
	"github.com/MQasim39/career-dashboard/internal/skills"
	"github.com/MQasim39/career-dashboard/internal/store"
)

const testResumeID = "0b7e2c7e-4f7a-4d7c-9a51-3f0f3b1f8c11"

func resumeWith(text string, items ...string) *extract.ParsedDocument {
	return &extract.ParsedDocument{FullText: text, Skills: skills.NewSet(items...)}
}

func TestMatchWorkedExamples(t *testing.T) {
	o := New(Config{}, Deps{})

	strong, err := o.Match(context.Background(),
		resumeWith("Python and SQL developer", "python", "sql"),
		[]*jobs.Job{{ID: "j1", Title: "Data Engineer", Description: "Looking for a Python and SQL developer"}},
		DefaultThreshold,
	)
	require.NoError(t, err)
	require.Len(t, strong, 1)
	assert.GreaterOrEqual(t, strong[0].Score, 60.0)
	assert.Equal(t, []string{"python", "sql"}, strong[0].MatchedSkills)
	assert.Equal(t, SourceLexical, strong[0].Source)

	weak, err := o.Match(context.Background(),
		resumeWith("Java developer", "java"),
		[]*jobs.Job{{ID: "j2", Title: "Cloud Engineer", Description: "Python and AWS engineer"}},
		DefaultThreshold,
	)
	require.NoError(t, err)
	assert.Empty(t, weak)
}

func TestMatchOrdersByScoreAndKeepsTies(t *testing.T) {
	o := New(Config{Workers: 3}, Deps{})
	resume := resumeWith("python sql docker", "python", "sql", "docker")

	list := []*jobs.Job{
		{ID: "a", Title: "A", Description: "python"},
		{ID: "b", Title: "B", Description: "python"},
		{ID: "c", Title: "C", Description: "python sql docker"},
		{ID: "d", Title: "D", Description: "python"},
		{ID: "e", Title: "E", Description: "kotlin swift"},
	}

	results, err := o.Match(context.Background(), resume, list, 0)
	require.NoError(t, err)
	require.Len(t, results, 5)

	ids := make([]string, 0, len(results))
	for i, result := range results {
		ids = append(ids, result.JobID)
		if i > 0 {
			assert.GreaterOrEqual(t, results[i-1].Score, result.Score)
		}
		assert.GreaterOrEqual(t, result.Score, 0.0)
		assert.LessOrEqual(t, result.Score, 100.0)
	}
	assert.Equal(t, []string{"c", "a", "b", "d", "e"}, ids)
}

func TestMatchDropsResultsBelowThreshold(t *testing.T) {
	o := New(Config{}, Deps{})
	resume := resumeWith("python sql", "python", "sql")

	list := []*jobs.Job{
		{ID: "hit", Title: "Hit", Description: "python sql"},
		{ID: "half", Title: "Half", Description: "python aws"},
		{ID: "miss", Title: "Miss", Description: "kotlin"},
	}

	results, err := o.Match(context.Background(), resume, list, 50)
	require.NoError(t, err)
	for _, result := range results {
		assert.GreaterOrEqual(t, result.Score, 50.0)
	}
	require.NotEmpty(t, results)
	assert.Equal(t, "hit", results[0].JobID)
}

func TestMatchDeduplicatesJobs(t *testing.T) {
	o := New(Config{}, Deps{})
	resume := resumeWith("python", "python")

	list := []*jobs.Job{
		{ID: "1", Title: "Go Developer", Company: "Acme", Location: "Berlin", Description: "python", URL: "https://one.example"},
		{ID: "2", Title: " go developer", Company: "ACME", Location: "berlin", Description: "python", URL: "https://two.example"},
	}

	results, err := o.Match(context.Background(), resume, list, 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "1", results[0].JobID)
	assert.Len(t, list, 2, "input slice is not modified")
}

func TestMatchExcludesCompanies(t *testing.T) {
	o := New(Config{ExcludeCompanies: []string{"globex"}}, Deps{})
	resume := resumeWith("python", "python")

	results, err := o.Match(context.Background(), resume, []*jobs.Job{
		{ID: "1", Title: "A", Company: "Globex", Description: "python"},
		{ID: "2", Title: "B", Company: "Acme", Description: "python"},
	}, 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "2", results[0].JobID)
}

func TestMatchInputErrors(t *testing.T) {
	o := New(Config{}, Deps{})
	list := []*jobs.Job{{ID: "1", Description: "python"}}

	tests := []struct {
		name      string
		resume    *extract.ParsedDocument
		jobs      []*jobs.Job
		threshold float64
	}{
		{name: "nil resume", resume: nil, jobs: list, threshold: 70},
		{name: "empty text", resume: resumeWith("  ", "python"), jobs: list, threshold: 70},
		{name: "no jobs", resume: resumeWith("python"), jobs: nil, threshold: 70},
		{name: "negative threshold", resume: resumeWith("python"), jobs: list, threshold: -1},
		{name: "threshold above range", resume: resumeWith("python"), jobs: list, threshold: 100.5},
		{name: "nan threshold", resume: resumeWith("python"), jobs: list, threshold: math.NaN()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := o.Match(context.Background(), tt.resume, tt.jobs, tt.threshold)
			var inputErr *InputError
			require.True(t, errors.As(err, &inputErr), "got %v", err)
		})
	}
}

func TestMatchSkipsInvalidJobs(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	o := New(Config{}, Deps{Logger: zap.New(core)})

	results, err := o.Match(context.Background(), resumeWith("python", "python"), []*jobs.Job{
		{ID: "", Title: "No id", Description: "python"},
		nil,
		{ID: "ok", Title: "Ok", Description: "python"},
	}, 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "ok", results[0].JobID)
	assert.Equal(t, 1, logs.FilterMessage("skipping invalid job").Len())
	assert.Equal(t, 1, logs.FilterMessage("skipping nil job record").Len())
}

func TestMatchInvalidJobDoesNotShadowDuplicate(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	o := New(Config{}, Deps{Logger: zap.New(core)})

	results, err := o.Match(context.Background(), resumeWith("python", "python"), []*jobs.Job{
		{ID: "", Title: "Dev", Company: "Acme", Location: "NYC", Description: "python"},
		{ID: "good", Title: "Dev", Company: "Acme", Location: "NYC", Description: "python"},
	}, 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "good", results[0].JobID)
	assert.Equal(t, 1, logs.FilterMessage("skipping invalid job").Len())
}

type nilEnhancer struct{}

func (nilEnhancer) Enhance(context.Context, *extract.ParsedDocument, *jobs.Job) *ai.Assessment {
	return nil
}

type panickingEnhancer struct{}

func (panickingEnhancer) Enhance(_ context.Context, _ *extract.ParsedDocument, job *jobs.Job) *ai.Assessment {
	if job.ID == "boom" {
		panic("enhancer exploded")
	}
	return &ai.Assessment{Score: 80}
}

func TestMatchScoresLocallyWithoutAssessment(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	o := New(Config{}, Deps{Enhancer: nilEnhancer{}, Logger: zap.New(core)})

	results, err := o.Match(context.Background(), resumeWith("python developer", "python"), []*jobs.Job{
		{ID: "a", Title: "Dev", Description: "python developer"},
	}, 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, SourceLexical, results[0].Source)
	assert.Equal(t, []string{"python"}, results[0].MatchedSkills)
	assert.Greater(t, results[0].Score, 0.0)
	assert.Equal(t, 1, logs.FilterMessage("enhancer returned no assessment, scoring locally").Len())
}

func TestMatchSkipsJobWhenScoringPanics(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	o := New(Config{Workers: 2}, Deps{Enhancer: panickingEnhancer{}, Logger: zap.New(core)})

	results, err := o.Match(context.Background(), resumeWith("python", "python"), []*jobs.Job{
		{ID: "boom", Title: "Broken", Description: "python"},
		{ID: "ok", Title: "Fine", Description: "python"},
	}, 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "ok", results[0].JobID)
	assert.Equal(t, SourceRemote, results[0].Source)
	assert.Equal(t, 1, logs.FilterMessage("skipping job after scoring panic").Len())
}

type fakeEnhancer struct {
	assessment ai.Assessment
	delay      time.Duration

	active    atomic.Int32
	maxActive atomic.Int32
	calls     atomic.Int32
}

func (f *fakeEnhancer) Enhance(_ context.Context, _ *extract.ParsedDocument, _ *jobs.Job) *ai.Assessment {
	f.calls.Add(1)
	current := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		seen := f.maxActive.Load()
		if current <= seen || f.maxActive.CompareAndSwap(seen, current) {
			break
		}
	}
	time.Sleep(f.delay)
	return f.assessment.Clone()
}

func TestMatchUsesEnhancer(t *testing.T) {
	enhancer := &fakeEnhancer{assessment: ai.Assessment{
		Score:           150,
		MatchedSkills:   []string{"python", "rust"},
		MissingSkills:   []string{"aws"},
		Explanation:     "Strong match",
		Recommendations: "Mention AWS",
	}}
	o := New(Config{}, Deps{Enhancer: enhancer})

	results, err := o.Match(context.Background(), resumeWith("python rust", "python", "rust"), []*jobs.Job{
		{ID: "1", Title: "A", Description: "python aws"},
	}, 70)
	require.NoError(t, err)
	require.Len(t, results, 1)

	result := results[0]
	assert.Equal(t, 100.0, result.Score)
	assert.Equal(t, []string{"python"}, result.MatchedSkills, "matched skills stay within résumé and job skills")
	assert.Equal(t, []string{"aws"}, result.MissingSkills)
	assert.Equal(t, "Strong match\nRecommendations: Mention AWS", result.Explanation)
	assert.Equal(t, SourceRemote, result.Source)

	enhancer.assessment.Fallback = true
	enhancer.assessment.Score = 80
	results, err = o.Match(context.Background(), resumeWith("python", "python"), []*jobs.Job{
		{ID: "1", Title: "A", Description: "python"},
	}, 70)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, SourceFallback, results[0].Source)
}

func TestMatchBoundsWorkers(t *testing.T) {
	enhancer := &fakeEnhancer{assessment: ai.Assessment{Score: 90}, delay: 10 * time.Millisecond}
	o := New(Config{Workers: 2}, Deps{Enhancer: enhancer})

	list := make([]*jobs.Job, 0, 8)
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		list = append(list, &jobs.Job{ID: id, Title: id, Description: "python"})
	}

	results, err := o.Match(context.Background(), resumeWith("python", "python"), list, 0)
	require.NoError(t, err)
	assert.Len(t, results, 8)
	assert.Equal(t, int32(8), enhancer.calls.Load())
	assert.LessOrEqual(t, enhancer.maxActive.Load(), int32(2))
}

type memoryStores struct {
	mu        sync.Mutex
	resumes   map[string]*extract.ParsedDocument
	resumeErr error
	jobs      []*jobs.Job
	jobsErr   error
	replaced  map[string][]Result
	saveErr   error
}

func (m *memoryStores) GetParsedResume(_ context.Context, resumeID, userID string) (*extract.ParsedDocument, error) {
	if m.resumeErr != nil {
		return nil, m.resumeErr
	}
	doc, ok := m.resumes[userID+"/"+resumeID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return doc, nil
}

func (m *memoryStores) ListJobs(_ context.Context, _ jobs.Filter) ([]*jobs.Job, error) {
	return m.jobs, m.jobsErr
}

func (m *memoryStores) ReplaceMatches(_ context.Context, userID, resumeID string, results []Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	if m.replaced == nil {
		m.replaced = make(map[string][]Result)
	}
	m.replaced[userID+"/"+resumeID] = results
	return nil
}

func newMemoryStores() *memoryStores {
	return &memoryStores{
		resumes: map[string]*extract.ParsedDocument{
			"u1/" + testResumeID: resumeWith("Python and SQL developer", "python", "sql"),
		},
		jobs: []*jobs.Job{
			{ID: "j1", Title: "Data Engineer", Description: "Looking for a Python and SQL developer"},
			{ID: "j2", Title: "iOS Engineer", Description: "Swift and Kotlin"},
		},
	}
}

func TestRunReplacesMatches(t *testing.T) {
	stores := newMemoryStores()
	o := New(Config{}, Deps{Resumes: stores, Jobs: stores, Results: stores})

	results, err := o.Run(context.Background(), Request{UserID: "u1", ResumeID: testResumeID, Threshold: DefaultThreshold})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "j1", results[0].JobID)
	assert.Equal(t, results, stores.replaced["u1/"+testResumeID])
}

func TestRunErrors(t *testing.T) {
	t.Run("invalid resume id", func(t *testing.T) {
		stores := newMemoryStores()
		o := New(Config{}, Deps{Resumes: stores, Jobs: stores, Results: stores})

		_, err := o.Run(context.Background(), Request{UserID: "u1", ResumeID: "not-a-uuid", Threshold: 70})
		var inputErr *InputError
		require.True(t, errors.As(err, &inputErr))
	})

	t.Run("resume not found", func(t *testing.T) {
		stores := newMemoryStores()
		o := New(Config{}, Deps{Resumes: stores, Jobs: stores, Results: stores})

		_, err := o.Run(context.Background(), Request{UserID: "other", ResumeID: testResumeID, Threshold: 70})
		var storeErr *StoreError
		require.True(t, errors.As(err, &storeErr))
		assert.ErrorIs(t, err, store.ErrNotFound)
		assert.Empty(t, stores.replaced)
	})

	t.Run("job store failure", func(t *testing.T) {
		stores := newMemoryStores()
		stores.jobsErr = errors.New("connection reset")
		o := New(Config{}, Deps{Resumes: stores, Jobs: stores, Results: stores})

		_, err := o.Run(context.Background(), Request{UserID: "u1", ResumeID: testResumeID, Threshold: 70})
		var storeErr *StoreError
		require.True(t, errors.As(err, &storeErr))
		assert.Equal(t, "list jobs", storeErr.Op)
	})

	t.Run("no jobs leaves stored results alone", func(t *testing.T) {
		stores := newMemoryStores()
		stores.jobs = nil
		o := New(Config{}, Deps{Resumes: stores, Jobs: stores, Results: stores})

		_, err := o.Run(context.Background(), Request{UserID: "u1", ResumeID: testResumeID, Threshold: 70})
		var inputErr *InputError
		require.True(t, errors.As(err, &inputErr))
		assert.Empty(t, stores.replaced)
	})

	t.Run("empty resume is an input error", func(t *testing.T) {
		stores := newMemoryStores()
		stores.resumeErr = fmt.Errorf("resume file: %w", &extract.EmptyInputError{Message: "no content"})
		o := New(Config{}, Deps{Resumes: stores, Jobs: stores, Results: stores})

		_, err := o.Run(context.Background(), Request{UserID: "u1", ResumeID: testResumeID, Threshold: 70})
		var inputErr *InputError
		require.True(t, errors.As(err, &inputErr))
		var storeErr *StoreError
		assert.False(t, errors.As(err, &storeErr))
		assert.ErrorIs(t, err, extract.ErrEmptyInput)
		assert.Empty(t, stores.replaced)
	})

	t.Run("results store failure", func(t *testing.T) {
		stores := newMemoryStores()
		stores.saveErr = errors.New("tx aborted")
		o := New(Config{}, Deps{Resumes: stores, Jobs: stores, Results: stores})

		_, err := o.Run(context.Background(), Request{UserID: "u1", ResumeID: testResumeID, Threshold: 70})
		var storeErr *StoreError
		require.True(t, errors.As(err, &storeErr))
		assert.Equal(t, "replace matches", storeErr.Op)
	})
}
