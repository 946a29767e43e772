package commands

import (
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapdal/pkg/core"
	"github.com/leapstack-labs/leapdal/pkg/driver"
)

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	var (
		where []string
		limit int
	)

	cmd := &cobra.Command{
		Use:     "query <kind>",
		Aliases: []string{"ls"},
		Short:   "List documents matching field filters",
		Long: `List the documents of a collection, oldest first.

Each --where key=value keeps documents whose field equals the value;
several filters must all match. Values are read as YAML scalars, so
--where visible=true matches the boolean, not the string.`,
		Example: `  # All models
  leapdal query model

  # A user's sessions
  leapdal query session --where user_id=u1

  # First five visible snapshots as JSON
  leapdal query snapshot --where visible=true --limit 5 -o json`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeKinds,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args[0], where, limit)
		},
	}

	cmd.Flags().StringArrayVarP(&where, "where", "w", nil, "Filter on a field (key=value, repeatable)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Stop after this many documents (0 for no limit)")

	return cmd
}

func runQuery(cmd *cobra.Command, kind string, where []string, limit int) error {
	filters, err := parseAssignments(where)
	if err != nil {
		return err
	}
	if limit < 0 {
		return core.InvalidInputf("limit must not be negative")
	}

	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	m, err := cmdCtx.DAL.Raw(kind)
	if err != nil {
		return err
	}

	docs := []core.Document{}
	for doc, err := range m.Query(cmd.Context(), driver.Query(filters)) {
		if err != nil {
			return err
		}
		docs = append(docs, doc)
		if limit > 0 && len(docs) == limit {
			break
		}
	}

	return cmdCtx.Renderer.Documents(kind, docs)
}
