package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	stdlog "log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/MQasim39/career-dashboard/internal/export"
	"github.com/MQasim39/career-dashboard/internal/extract"
	"github.com/MQasim39/career-dashboard/internal/jobs"
	"github.com/MQasim39/career-dashboard/internal/logger"
	"github.com/MQasim39/career-dashboard/internal/matching"
	"github.com/MQasim39/career-dashboard/internal/scoring"
)

const (
	PromptYes                 = "Yes"
	PromptNo                  = "No"
	PromptShowMatches         = "Show matches"
	PromptReportByCompanies   = "Report by companies"
	PromptMatchesToFile       = "Dump matched jobs to file"
	PromptMatchesToExcel      = "Export matches to spreadsheet"
	PromptAppendToExcludeFile = "Append matched jobs to exclude file"
	PromptExit                = "Exit"

	defaultUserID = "local"
)

var errExit = errors.New("exit requested")

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Rank jobs against a résumé and store the matches",
	Run: func(cmd *cobra.Command, _ []string) {
		match(cmd)
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().StringP("user", "u", defaultUserID, "owner of the résumé")
	matchCmd.Flags().StringP("resume", "r", "", "résumé id (uuid); derived from files.resume when using file stores")
	matchCmd.Flags().Float64P("threshold", "t", matching.DefaultThreshold, "minimum score of a stored match")
	matchCmd.Flags().StringSliceP("keywords", "k", nil, "keywords every job must contain")
	matchCmd.Flags().String("location", "", "location substring")
	matchCmd.Flags().String("company", "", "company substring")
	matchCmd.Flags().Int("limit", 0, "maximum number of jobs to score, 0 means all")
	matchCmd.Flags().StringP("exclude-file", "e", "", "special file with jobs to exclude. Default is unset.")
	matchCmd.Flags().BoolP("auto-approve", "y", false, "print the matches and exit without asking")

	viper.BindPFlag("matching.threshold", matchCmd.Flags().Lookup("threshold"))
	viper.BindPFlag("matching.exclude-file", matchCmd.Flags().Lookup("exclude-file"))
}

func match(cmd *cobra.Command) {
	ctx := context.Background()

	log, config := setup()

	userID, resumeID, err := resolveIDs(cmd, config)
	if err != nil {
		log.Fatal("resolving résumé", zap.Error(err))
	}
	log = logger.WithFields(log, logger.MatchFields(userID, resumeID)...)

	vocab := newVocabulary(config.Vocabulary)
	extractor := extract.New(vocab)

	backends, err := openStores(ctx, config, extractor, log)
	if err != nil {
		log.Fatal("opening stores", zap.Error(err))
	}
	defer backends.close()

	enhancer, err := newEnhancer(ctx, config.AI, vocab, log)
	if err != nil {
		log.Fatal("building enhancer", zap.Error(err))
	}

	listed := &recordingJobs{JobStore: backends.jobs}
	orchestrator := matching.New(config.Matching.Config, matching.Deps{
		Vocabulary: vocab,
		Scorer:     scoring.New(config.Matching.Weights, log),
		Enhancer:   enhancer,
		Resumes:    backends.resumes,
		Jobs:       listed,
		Results:    backends.results,
		Logger:     log,
	})

	results, err := orchestrator.Run(ctx, matching.Request{
		UserID:    userID,
		ResumeID:  resumeID,
		Filter:    jobFilter(cmd),
		Threshold: config.Matching.Threshold,
	})
	if err != nil {
		var inputErr *matching.InputError
		if errors.As(err, &inputErr) {
			log.Fatal("nothing to match", zap.Error(err))
		}
		log.Fatal("matching failed", zap.Error(err))
	}

	if len(results) == 0 {
		log.Info("exiting", zap.String("reason", "no job reached the threshold"))
		return
	}

	if cmd.Flag("auto-approve").Value.String() == "true" {
		printResults(results)
		return
	}

	matched := listed.matched(results)
	excludeFile := config.Matching.ExcludeFile

	for {
		items := []string{PromptShowMatches, PromptReportByCompanies, PromptMatchesToFile, PromptMatchesToExcel}
		if excludeFile != "" {
			items = append(items, PromptAppendToExcludeFile)
		}
		prompt := promptui.Select{
			Label: fmt.Sprintf("%d matches. What next?", len(results)),
			Items: append(items, PromptExit),
		}

		_, action, err := prompt.Run()
		if err != nil {
			log.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(action, log, results, matched, resumeID, excludeFile); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			log.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(action string, log *zap.Logger, results []matching.Result, matched *jobs.Jobs, resumeID, excludeFile string) error {
	switch action {
	case PromptShowMatches:
		printResults(results)
		return nil
	case PromptReportByCompanies:
		pretty, _ := json.MarshalIndent(matched.ReportByCompany(), "", "  ")
		log.Info(string(pretty), zap.Int("jobs count", matched.Len()))
		return nil
	case PromptMatchesToFile:
		filename, err := matched.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump matched jobs to file: %w", err)
		}
		log.Info("dumping matched jobs to file", zap.String("filename", filename))
		return nil
	case PromptMatchesToExcel:
		path, err := export.ToExcel(results, resumeID, filepath.Join(os.TempDir(), "matches_"+resumeID))
		if err != nil {
			return err
		}
		log.Info("exported matches", zap.String("filename", path))
		return nil
	case PromptAppendToExcludeFile:
		excluded, err := jobs.GetExcludedFromFile(excludeFile)
		if err != nil {
			return err
		}
		excluded.Append(matched.ToExcluded())
		if err := excluded.ToFile(excludeFile); err != nil {
			return err
		}
		log.Info("appended to exclude file", zap.String("filename", excludeFile), zap.Int("count", matched.Len()))
		return nil
	case PromptExit:
		log.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

// setup builds the logger and reads the config, exiting on failure.
func setup() (*zap.Logger, *Config) {
	log, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		stdlog.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		log.Fatal("getting a config", zap.Error(err))
	}

	log.Info("starting the "+app, zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(redacted(config), "", "  ")
	log.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	return log, config
}

func redacted(config *Config) Config {
	c := *config
	if c.Database.URL != "" {
		c.Database.URL = "<redacted>"
	}
	if c.AI.APIKey != "" {
		c.AI.APIKey = "<redacted>"
	}
	return c
}

// resolveIDs takes the résumé id from the flag. File stores without one get a
// stable id derived from the résumé path.
func resolveIDs(cmd *cobra.Command, config *Config) (string, string, error) {
	userID := strings.TrimSpace(cmd.Flag("user").Value.String())
	resumeID := strings.TrimSpace(cmd.Flag("resume").Value.String())

	if resumeID != "" {
		return userID, resumeID, nil
	}
	if config.Database.URL != "" {
		return "", "", errors.New("--resume is required with a database")
	}
	if config.Files.Resume == "" {
		return "", "", errors.New("--resume or files.resume is required")
	}

	abs, err := filepath.Abs(config.Files.Resume)
	if err != nil {
		return "", "", err
	}
	return userID, uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+abs)).String(), nil
}

func jobFilter(cmd *cobra.Command) jobs.Filter {
	keywords, _ := cmd.Flags().GetStringSlice("keywords")
	location, _ := cmd.Flags().GetString("location")
	company, _ := cmd.Flags().GetString("company")
	limit, _ := cmd.Flags().GetInt("limit")

	return jobs.Filter{Keywords: keywords, Location: location, Company: company, Limit: limit}
}

func printResults(results []matching.Result) {
	for i, r := range results {
		fmt.Printf("%2d. %6.2f  %s / %s [%s]\n", i+1, r.Score, r.Title, r.Company, r.JobID)
		if len(r.MatchedSkills) > 0 {
			fmt.Printf("    matched: %s\n", strings.Join(r.MatchedSkills, ", "))
		}
		if len(r.MissingSkills) > 0 {
			fmt.Printf("    missing: %s\n", strings.Join(r.MissingSkills, ", "))
		}
		if r.Explanation != "" {
			fmt.Printf("    %s\n", strings.ReplaceAll(r.Explanation, "\n", "\n    "))
		}
	}
}
