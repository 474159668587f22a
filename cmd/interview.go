package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/interview-coach/internal/interview"
	"github.com/spigell/interview-coach/internal/logger"
	"github.com/spigell/interview-coach/internal/session"
)

const (
	PromptUploadResume   = "Upload resume"
	PromptJobDescription = "Job description"
	PromptInterview      = "Interview"
	PromptExit           = "Exit"
	PromptBack           = "back"
)

var errExit = errors.New("exit requested")

var menu = promptui.Select{
	Label: "What next?",
	Items: []string{PromptUploadResume, PromptJobDescription, PromptInterview, PromptExit},
}

var interviewCmd = &cobra.Command{
	Use:   "interview",
	Short: "Run a mock interview in the terminal",
	Run: func(cmd *cobra.Command, _ []string) {
		runInterview(cmd)
	},
}

func init() {
	rootCmd.AddCommand(interviewCmd)

	interviewCmd.Flags().StringP("resume", "r", "", "path to a PDF resume to load before the interview")
	interviewCmd.Flags().StringP("job-url", "u", "", "job listing URL to load before the interview")
	interviewCmd.Flags().StringP("job-text", "t", "", "job description text to use when no URL is given")
}

func runInterview(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	logger.Info("starting the interview-coach", zap.String("version", version))

	deps, err := setup(ctx, logger)
	if err != nil {
		logger.Fatal("starting", zap.Error(err))
	}
	defer deps.Close(logger)

	sess := session.New(uuid.NewString(), deps.orchestrator, logger)
	frontend := &coach{
		components: deps,
		session:    sess,
		logger:     logger,
		out:        os.Stdout,
	}

	if err := frontend.preload(ctx, cmd); err != nil {
		logger.Fatal("loading documents", zap.Error(err))
	}

	for {
		_, action, err := menu.Run()
		if err != nil {
			logger.Info("exiting", zap.Error(err))
			return
		}

		if err := frontend.handle(ctx, action); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

// coach is the terminal front end of a single interview session.
type coach struct {
	*components
	session *session.Session
	logger  *zap.Logger
	out     io.Writer
}

func (c *coach) preload(ctx context.Context, cmd *cobra.Command) error {
	if path := cmd.Flag("resume").Value.String(); path != "" {
		if err := c.loadResume(path); err != nil {
			return err
		}
	}

	jobURL := cmd.Flag("job-url").Value.String()
	jobText := cmd.Flag("job-text").Value.String()
	if jobURL != "" || jobText != "" {
		c.ingestor.JobDescription(ctx, c.session.Documents, jobURL, jobText)
	}

	return nil
}

func (c *coach) handle(ctx context.Context, action string) error {
	switch action {
	case PromptUploadResume:
		path, err := (&promptui.Prompt{Label: "Path to the resume PDF"}).Run()
		if err != nil {
			return err
		}
		if err := c.loadResume(strings.TrimSpace(path)); err != nil {
			// A bad upload is reported and the menu is shown again.
			c.logger.Error("loading resume", zap.Error(err))
		}
		return nil
	case PromptJobDescription:
		return c.loadJobDescription(ctx)
	case PromptInterview:
		return c.chat(ctx)
	case PromptExit:
		c.logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func (c *coach) loadResume(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read resume: %w", err)
	}

	text, err := c.ingestor.Resume(c.session.Documents, data)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "%s\n", text)
	return nil
}

func (c *coach) loadJobDescription(ctx context.Context) error {
	url, err := (&promptui.Prompt{Label: "Job listing URL (empty to paste the text instead)"}).Run()
	if err != nil {
		return err
	}

	var pasted string
	if strings.TrimSpace(url) == "" {
		pasted, err = (&promptui.Prompt{Label: "Job description"}).Run()
		if err != nil {
			return err
		}
	}

	text := c.ingestor.JobDescription(ctx, c.session.Documents, strings.TrimSpace(url), pasted)
	fmt.Fprintf(c.out, "%s\n", text)
	return nil
}

// chat runs interview turns until the candidate types "back".
func (c *coach) chat(ctx context.Context) error {
	fmt.Fprintf(c.out, "Type %q to return to the menu.\n", PromptBack)

	for {
		message, err := (&promptui.Prompt{Label: "You"}).Run()
		if err != nil {
			return err
		}
		message = strings.TrimSpace(message)

		switch message {
		case "":
			continue
		case PromptBack:
			return nil
		}

		if err := c.turn(ctx, message); err != nil {
			var invocationErr *interview.ModelInvocationError
			if errors.As(err, &invocationErr) {
				c.logger.Error("interview turn failed", zap.Error(err))
				continue
			}
			return err
		}
	}
}

func (c *coach) turn(ctx context.Context, message string) error {
	printer := newStreamPrinter(c.out)
	evaluated := false

	for update, err := range c.session.Conversation.Send(ctx, message) {
		if err != nil {
			printer.Done()
			return err
		}
		if update.Phase == interview.PhaseEvaluating {
			evaluated = true
		}
		printer.Show(update.Visible)
	}
	printer.Done()

	if evaluated {
		if report := c.session.Conversation.Report(); report != nil {
			printReport(c.out, report)
		}
	}

	return nil
}

func printReport(out io.Writer, report *interview.Report) {
	fmt.Fprintf(out, "\nOverall rating: %s\n", report.OverallRating)
	for _, q := range report.Questions {
		fmt.Fprintf(out, "  %d. %s: %g/10\n", q.Number, q.Question, q.Rating)
	}
}
