package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/MQasim39/career-dashboard/internal/ai"
	"github.com/MQasim39/career-dashboard/internal/ai/gemini"
	"github.com/MQasim39/career-dashboard/internal/ai/openrouter"
	"github.com/MQasim39/career-dashboard/internal/cache"
	"github.com/MQasim39/career-dashboard/internal/enhance"
	"github.com/MQasim39/career-dashboard/internal/extract"
	"github.com/MQasim39/career-dashboard/internal/jobs"
	"github.com/MQasim39/career-dashboard/internal/matching"
	"github.com/MQasim39/career-dashboard/internal/ratelimit"
	"github.com/MQasim39/career-dashboard/internal/secrets"
	"github.com/MQasim39/career-dashboard/internal/skills"
	"github.com/MQasim39/career-dashboard/internal/store/filestore"
	"github.com/MQasim39/career-dashboard/internal/store/postgres"
)

// stores bundles the storage backends chosen by the configuration.
type stores struct {
	resumes matching.ResumeStore
	jobs    matching.JobStore
	results interface {
		matching.ResultsStore
		ListMatches(ctx context.Context, userID, resumeID string) ([]matching.Result, error)
	}

	// Only set for the database backend.
	parsed     *postgres.ResumeRepository
	jobsWriter *postgres.JobRepository

	close func()
}

func newVocabulary(cfg VocabularyConfig) *skills.Vocabulary {
	if len(cfg.ExtraSkills) == 0 && len(cfg.Aliases) == 0 {
		return skills.Default()
	}
	return skills.Default().Extend(cfg.ExtraSkills, cfg.Aliases)
}

// openStores uses Postgres when a database url is configured and the files otherwise.
func openStores(ctx context.Context, config *Config, extractor *extract.Extractor, logger *zap.Logger) (*stores, error) {
	if strings.TrimSpace(config.Database.URL) == "" {
		logger.Info("using file stores",
			zap.String("resume", config.Files.Resume),
			zap.String("jobs", config.Files.Jobs),
			zap.String("results", config.Files.Results),
		)
		return &stores{
			resumes: filestore.NewResumeFile(config.Files.Resume, extractor),
			jobs:    filestore.NewJobsFile(config.Files.Jobs),
			results: filestore.NewResultsFile(config.Files.Results),
			close:   func() {},
		}, nil
	}

	pool, err := postgres.Connect(ctx, config.Database.URL, config.Database.MaxConns)
	if err != nil {
		return nil, err
	}

	s, err := newPostgresStores(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("using postgres stores", zap.Int32("max_conns", pool.Config().MaxConns))
	return s, nil
}

func newPostgresStores(ctx context.Context, pool *pgxpool.Pool) (*stores, error) {
	resumes, err := postgres.NewResumeRepository(ctx, pool)
	if err != nil {
		return nil, err
	}
	jobRepo, err := postgres.NewJobRepository(ctx, pool)
	if err != nil {
		return nil, err
	}
	matches, err := postgres.NewMatchRepository(ctx, pool)
	if err != nil {
		return nil, err
	}

	return &stores{
		resumes:    resumes,
		jobs:       jobRepo,
		results:    matches,
		parsed:     resumes,
		jobsWriter: jobRepo,
		close:      pool.Close,
	}, nil
}

// newEnhancer returns nil when remote enhancement is disabled.
func newEnhancer(ctx context.Context, cfg AIConfig, vocab *skills.Vocabulary, logger *zap.Logger) (ai.Enhancer, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	generator, model, err := newGenerator(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	limiter := ratelimit.New(cfg.RequestsPerMinute, time.Minute, logger)
	responses := cache.New[*ai.Assessment](cfg.CacheSize, cfg.CacheTTL)

	logger.Info("remote enhancement enabled",
		zap.String("provider", cfg.Provider),
		zap.String("model", model),
		zap.Int("requests_per_minute", cfg.RequestsPerMinute),
	)

	return enhance.New(generator, vocab, limiter, responses, enhance.Config{
		Model:        model,
		MaxTokens:    cfg.MaxTokens,
		Temperature:  cfg.Temperature,
		Timeout:      cfg.Timeout,
		MaxLogLength: cfg.MaxLogLength,
	}, logger), nil
}

func newGenerator(ctx context.Context, cfg AIConfig, logger *zap.Logger) (ai.Generator, string, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))

	switch provider {
	case "", gemini.Provider:
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "gemini api key",
			File:  cfg.APIKeyFile,
			Value: cfg.APIKey,
			Env:   "GEMINI_API_KEY",
		})
		if err != nil {
			return nil, "", fmt.Errorf("%w (set ai.api-key-file or GEMINI_API_KEY_FILE)", err)
		}

		generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Model, cfg.MaxRetries, logger)
		if err != nil {
			return nil, "", err
		}
		return generator, generator.Model(), nil
	case openrouter.Provider:
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "openrouter api key",
			File:  cfg.APIKeyFile,
			Value: cfg.APIKey,
			Env:   "OPENROUTER_API_KEY",
		})
		if err != nil {
			return nil, "", fmt.Errorf("%w (set ai.api-key-file or OPENROUTER_API_KEY_FILE)", err)
		}

		client := openrouter.New(apiKey, cfg.BaseURL, cfg.Model, app, logger)
		return client, client.Model(), nil
	default:
		return nil, "", fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
}

// recordingJobs remembers the jobs handed to the orchestrator so the
// interactive actions can show more than the stored results.
type recordingJobs struct {
	matching.JobStore
	listed []*jobs.Job
}

func (r *recordingJobs) ListJobs(ctx context.Context, filter jobs.Filter) ([]*jobs.Job, error) {
	list, err := r.JobStore.ListJobs(ctx, filter)
	r.listed = list
	return list, err
}

func (r *recordingJobs) matched(results []matching.Result) *jobs.Jobs {
	byID := make(map[string]*jobs.Job, len(r.listed))
	for _, job := range r.listed {
		if job != nil {
			byID[job.ID] = job
		}
	}

	out := &jobs.Jobs{Items: make([]*jobs.Job, 0, len(results))}
	for _, result := range results {
		if job, ok := byID[result.JobID]; ok {
			out.Items = append(out.Items, job)
		}
	}
	return out
}

var errNoDatabase = errors.New("this command needs database.url or DATABASE_URL")
