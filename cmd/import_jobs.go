package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/MQasim39/career-dashboard/internal/filtering"
	"github.com/MQasim39/career-dashboard/internal/jobs"
	"github.com/MQasim39/career-dashboard/internal/store/filestore"
)

var importJobsCmd = &cobra.Command{
	Use:   "import-jobs",
	Short: "Load scraped jobs from a JSON file into the database",
	Run: func(cmd *cobra.Command, _ []string) {
		importJobs(cmd)
	},
}

func init() {
	rootCmd.AddCommand(importJobsCmd)

	importJobsCmd.Flags().StringP("file", "f", "", "JSON array of jobs")
	importJobsCmd.MarkFlagRequired("file")
}

func importJobs(cmd *cobra.Command) {
	ctx := context.Background()

	log, config := setup()

	path, _ := cmd.Flags().GetString("file")
	list, err := filestore.LoadJobs(path)
	if err != nil {
		log.Fatal("reading jobs", zap.Error(err))
	}

	scraped := &jobs.Jobs{Items: make([]*jobs.Job, 0, len(list))}
	for i, job := range list {
		if err := job.Validate(); err != nil {
			log.Warn("skipping invalid job", zap.Int("index", i), zap.Error(err))
			continue
		}
		scraped.Items = append(scraped.Items, job)
	}

	if err := scraped.CleanDescriptions(); err != nil {
		log.Fatal("cleaning job descriptions", zap.Error(err))
	}

	pipeline := filtering.New([]filtering.Filter{filtering.NewDedupe(log)}, log)
	unique, err := pipeline.RunFilters(ctx, scraped)
	if err != nil {
		log.Fatal("deduplicating jobs", zap.Error(err))
	}

	if config.Database.URL == "" {
		log.Fatal("importing jobs", zap.Error(errNoDatabase))
	}

	backends, err := openStores(ctx, config, nil, log)
	if err != nil {
		log.Fatal("opening stores", zap.Error(err))
	}
	defer backends.close()

	if err := backends.jobsWriter.UpsertJobs(ctx, unique.Items); err != nil {
		log.Fatal("saving jobs", zap.Error(err))
	}

	log.Info("imported jobs", zap.Int("read", len(list)), zap.Int("saved", unique.Len()))
}
