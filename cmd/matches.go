package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/MQasim39/career-dashboard/internal/export"
	"github.com/MQasim39/career-dashboard/internal/logger"
	"github.com/MQasim39/career-dashboard/internal/matching"
)

const PromptBack = "back"

var matchesCmd = &cobra.Command{
	Use:   "matches",
	Short: "List the stored matches of a résumé",
	Run: func(cmd *cobra.Command, _ []string) {
		listMatches(cmd)
	},
}

func init() {
	rootCmd.AddCommand(matchesCmd)

	matchesCmd.Flags().StringP("user", "u", defaultUserID, "owner of the résumé")
	matchesCmd.Flags().StringP("resume", "r", "", "résumé id (uuid); derived from files.resume when using file stores")
	matchesCmd.Flags().BoolP("interactive", "i", false, "choose a match to read its full explanation")
	matchesCmd.Flags().String("xlsx", "", "also export the matches to this spreadsheet")
}

func listMatches(cmd *cobra.Command) {
	ctx := context.Background()

	log, config := setup()

	userID, resumeID, err := resolveIDs(cmd, config)
	if err != nil {
		log.Fatal("resolving résumé", zap.Error(err))
	}
	log = logger.WithFields(log, logger.MatchFields(userID, resumeID)...)

	backends, err := openStores(ctx, config, nil, log)
	if err != nil {
		log.Fatal("opening stores", zap.Error(err))
	}
	defer backends.close()

	results, err := backends.results.ListMatches(ctx, userID, resumeID)
	if err != nil {
		log.Fatal("listing matches", zap.Error(err))
	}
	log.Info("stored matches", zap.Int("count", len(results)))

	if path, _ := cmd.Flags().GetString("xlsx"); path != "" {
		written, err := export.ToExcel(results, resumeID, path)
		if err != nil {
			log.Fatal("exporting matches", zap.Error(err))
		}
		log.Info("exported matches", zap.String("filename", written))
	}

	if interactive, _ := cmd.Flags().GetBool("interactive"); !interactive || len(results) == 0 {
		printResults(results)
		return
	}

	if err := browseMatches(results); err != nil {
		log.Fatal("exiting", zap.Error(err))
	}
}

func browseMatches(results []matching.Result) error {
	items := make([]string, 0, len(results)+1)
	for _, r := range results {
		items = append(items, matchLabel(r))
	}

	for {
		matchPrompt := promptui.Select{
			Label: "Choose a match and press ENTER",
			Items: append(items, PromptBack),
			Size:  10,
		}

		i, selected, err := matchPrompt.Run()
		if err != nil {
			return err
		}
		if selected == PromptBack {
			return nil
		}

		printResults(results[i : i+1])
	}
}

func matchLabel(r matching.Result) string {
	return strings.TrimSpace(fmt.Sprintf("%6.2f %s / %s / %s", r.Score, r.JobID, r.Title, r.Company))
}
