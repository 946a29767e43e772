package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// NewStatsCommand creates the stats command.
func NewStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Count documents per kind",
		Long: `Count the documents stored for every kind.

Collections are counted concurrently against the configured driver.`,
		Example: `  leapdal stats
  leapdal stats --driver postgres --dsn postgres://localhost/leapdal -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStats(cmd)
		},
	}
}

func runStats(cmd *cobra.Command) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	stats, err := cmdCtx.DAL.Stats(cmd.Context())
	if err != nil {
		return err
	}

	r := cmdCtx.Renderer
	if ok, err := r.Data(stats); ok {
		return err
	}

	total := 0
	rows := make([]table.Row, 0, len(stats))
	for _, s := range stats {
		rows = append(rows, table.Row{s.Kind, s.Count})
		total += s.Count
	}

	r.Header(1, fmt.Sprintf("Documents (%s, %d total)", cmdCtx.Backend.Name(), total))
	r.Table(table.Row{"Kind", "Count"}, rows)
	return nil
}
