package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/brevity-app/brevity-go/apperr"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check connectivity to the Brevity API",
	Run:   runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	cfg, client := setup()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	reachable := "ok"
	if _, err := client.ListSummaries(ctx, 1, 1); err != nil {
		reachable = string(apperr.Classify(err).Code)
	}

	b := client.Breaker()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "ENDPOINT\tREACHABLE\tBREAKER\tFAILURES")
	_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", cfg.API.BaseURL, reachable, b.State(), b.Failures())
	_ = w.Flush()
}
