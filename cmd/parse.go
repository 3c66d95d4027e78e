package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/MQasim39/career-dashboard/internal/extract"
	"github.com/MQasim39/career-dashboard/internal/logger"
	"github.com/MQasim39/career-dashboard/internal/store/postgres"
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Extract skills, experience and contacts from a résumé text file",
	Run: func(cmd *cobra.Command, _ []string) {
		parse(cmd)
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringP("file", "f", "", "résumé as plain text")
	parseCmd.Flags().StringP("user", "u", defaultUserID, "owner of the résumé")
	parseCmd.Flags().StringP("resume", "r", "", "résumé id (uuid) to save the parsed document under; a new one is generated when empty")
	parseCmd.Flags().BoolP("auto-approve", "y", false, "save without asking")

	parseCmd.MarkFlagRequired("file")
}

func parse(cmd *cobra.Command) {
	ctx := context.Background()

	log, config := setup()

	path, _ := cmd.Flags().GetString("file")
	raw, err := os.ReadFile(path)
	if err != nil {
		log.Fatal("reading résumé file", zap.Error(err))
	}

	doc, err := extract.New(newVocabulary(config.Vocabulary)).Extract(string(raw))
	if err != nil {
		log.Fatal("extracting résumé", zap.Error(err))
	}

	pretty, _ := json.MarshalIndent(doc, "", "  ")
	fmt.Println(string(pretty))

	log.Info("parsed résumé",
		zap.Int("skills", doc.Skills.Len()),
		zap.Int("experience", len(doc.Experience)),
		zap.Int("education", len(doc.Education)),
	)

	if config.Database.URL == "" {
		log.Info("not saving", zap.String("reason", "no database configured"))
		return
	}

	userID, _ := cmd.Flags().GetString("user")
	resumeID, _ := cmd.Flags().GetString("resume")
	if resumeID == "" {
		resumeID = uuid.NewString()
	}
	log = logger.WithFields(log, logger.MatchFields(userID, resumeID)...)

	if cmd.Flag("auto-approve").Value.String() == "false" {
		confirm := promptui.Select{
			Label: fmt.Sprintf("Save parsed résumé as %s?", resumeID),
			Items: []string{PromptYes, PromptNo},
		}
		_, answer, err := confirm.Run()
		if err != nil {
			log.Fatal("exiting", zap.Error(err))
		}
		if answer != PromptYes {
			log.Info("exiting", zap.String("reason", "got no from prompt"))
			return
		}
	}

	pool, err := postgres.Connect(ctx, config.Database.URL, config.Database.MaxConns)
	if err != nil {
		log.Fatal("connecting to database", zap.Error(err))
	}
	defer pool.Close()

	repo, err := postgres.NewResumeRepository(ctx, pool)
	if err != nil {
		log.Fatal("preparing résumé store", zap.Error(err))
	}
	if err := repo.SaveParsedResume(ctx, resumeID, userID, doc); err != nil {
		log.Fatal("saving parsed résumé", zap.Error(err))
	}

	log.Info("saved parsed résumé")
}
