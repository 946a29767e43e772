package commands

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapdal/internal/cli/output"
	"github.com/leapstack-labs/leapdal/pkg/core"
)

// NewKindsCommand creates the kinds command.
func NewKindsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List the entity kinds",
		Long:  `List the collections leapdal stores, one per entity kind.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runKinds(cmd)
		},
	}
}

func runKinds(cmd *cobra.Command) error {
	r := NewCommandContextWithoutDriver(cmd).Renderer
	kinds := core.Collections()

	if ok, err := r.Data(kinds); ok {
		return err
	}

	rows := make([]table.Row, 0, len(kinds))
	for _, k := range kinds {
		rows = append(rows, table.Row{k, output.KindTitle(k)})
	}
	r.Table(table.Row{"Kind", "Title"}, rows)
	return nil
}
