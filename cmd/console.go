package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/spigell/hh-interviewer/internal/document"
	"github.com/spigell/hh-interviewer/internal/interview"
	"github.com/spigell/hh-interviewer/internal/logger"

	"github.com/google/uuid"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Run an interview in the terminal from local resume and job description files",
	Run: func(cmd *cobra.Command, _ []string) {
		console(cmd)
	},
}

func init() {
	rootCmd.AddCommand(consoleCmd)

	consoleCmd.Flags().StringP("resume", "r", "", "path to the resume file (pdf, docx or txt)")
	consoleCmd.Flags().StringP("job-description", "v", "", "path to the job description file (pdf, docx or txt)")

	consoleCmd.MarkFlagRequired("resume")
	consoleCmd.MarkFlagRequired("job-description")
}

func console(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	resumeText, err := document.ExtractFile(cmd.Flag("resume").Value.String())
	if err != nil {
		logger.Fatal("reading resume", zap.Error(err))
	}

	jobText, err := document.ExtractFile(cmd.Flag("job-description").Value.String())
	if err != nil {
		logger.Fatal("reading job description", zap.Error(err))
	}

	generator, err := newGenerator(ctx, config.AI, logger)
	if err != nil {
		logger.Fatal("building the question generator",
			zap.Error(err),
			zap.String("hint", "set ai.gemini.api-key-file or GEMINI_API_KEY_FILE"),
		)
	}

	engine := interview.NewEngine(generator, logger)

	session, err := interview.NewSession(uuid.NewString(), resumeText, jobText)
	if err != nil {
		logger.Fatal("creating a session", zap.Error(err))
	}

	session, err = engine.Start(ctx, session)
	if err != nil {
		logger.Fatal("starting the interview", zap.Error(err))
	}

	answerPrompt := promptui.Prompt{
		Label: "Your answer",
		Validate: func(input string) error {
			if strings.TrimSpace(input) == "" {
				return errors.New("an answer must not be empty")
			}
			return nil
		},
	}

	for !session.Concluded {
		fmt.Printf("\nInterviewer: %s\n\n", session.CurrentQuestion)

		answer, err := answerPrompt.Run()
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) {
				logger.Info("exiting", zap.String("reason", "interrupted"))
				return
			}
			logger.Fatal("reading an answer", zap.Error(err))
		}

		session, err = engine.SubmitAnswer(ctx, session, answer)
		if err != nil {
			logger.Fatal("submitting the answer", zap.Error(err))
		}
	}

	fmt.Printf("\nInterviewer: %s\n", session.CurrentQuestion)

	status := engine.Status(session)
	logger.Info("interview finished",
		zap.String("reason", string(status.Reason)),
		zap.Int("questions_asked", status.QuestionsAsked),
		zap.Duration("elapsed", status.Elapsed),
	)
}
