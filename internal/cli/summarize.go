package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/brevity-app/brevity-go/api"
	"github.com/brevity-app/brevity-go/apperr"
)

var (
	sourceURL    string
	language     string
	maxSentences int
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize [file]",
	Short: "Summarize a text file, stdin, or a web page",
	Long: `Summarize sends text to the Brevity API and prints the summary.
Text is read from the given file, or from stdin when no file is given.
Use --url to summarize a web page instead.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runSummarize,
}

func init() {
	summarizeCmd.Flags().StringVar(&sourceURL, "url", "", "summarize a web page instead of local text")
	summarizeCmd.Flags().StringVar(&language, "lang", "", "summary language (e.g. en, vi)")
	summarizeCmd.Flags().IntVar(&maxSentences, "max-sentences", 0, "limit the summary length")
	rootCmd.AddCommand(summarizeCmd)
}

func runSummarize(cmd *cobra.Command, args []string) {
	_, client := setup()

	req := api.SummaryRequest{
		SourceURL:    sourceURL,
		Language:     language,
		MaxSentences: maxSentences,
	}

	if sourceURL == "" {
		text, err := readInput(args)
		if err != nil {
			slog.Error("Failed to read input", "error", err)
			os.Exit(1)
		}
		req.Text = text
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summary, err := client.CreateSummary(ctx, req)
	if err != nil {
		exitWithError(err)
	}

	fmt.Println(summary.Text)
}

func readInput(args []string) (string, error) {
	if len(args) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read %s: %w", args[0], err)
	}
	return string(data), nil
}

// exitWithError prints the fixed user-safe sentence for the failure and logs
// the developer-facing detail separately.
func exitWithError(err error) {
	var typed *apperr.Error
	if !errors.As(err, &typed) {
		typed = apperr.Classify(err)
	}

	slog.Debug("request failed",
		"code", typed.Code,
		"status", typed.StatusCode,
		"request_id", typed.RequestID,
		"error", err,
	)
	fmt.Fprintln(os.Stderr, typed.UserMessage())
	os.Exit(1)
}
