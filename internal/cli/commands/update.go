package commands

import (
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapdal/pkg/core"
	"github.com/leapstack-labs/leapdal/pkg/dal"
)

// NewUpdateCommand creates the update command.
func NewUpdateCommand() *cobra.Command {
	var (
		file  string
		pairs []string
	)

	cmd := &cobra.Command{
		Use:   "update <kind> <id>",
		Short: "Merge fields into an existing document",
		Long: `Merge fields into an existing document.

Only the fields given are changed; everything else keeps its stored
value. The id and created_at cannot be changed. updated_at moves to now
unless it is set explicitly. The merged document must still decode as
the kind's entity, so --set name=5 on a model is rejected.`,
		Example: `  # Rename a model
  leapdal update model 0b6f2c1e-... --set name=retention

  # Hide a snapshot
  leapdal update snapshot 7d2e... --set visible=false`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeKinds,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(cmd, args[0], args[1], file, pairs)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Read fields from a YAML or JSON file (- for stdin)")
	cmd.Flags().StringArrayVarP(&pairs, "set", "s", nil, "Set a field (key=value, repeatable)")

	return cmd
}

func runUpdate(cmd *cobra.Command, kind, id, file string, pairs []string) error {
	doc, err := documentFromFlags(cmd, file, pairs)
	if err != nil {
		return err
	}
	doc[core.KeyID] = id

	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	m, err := cmdCtx.DAL.Raw(kind)
	if err != nil {
		return err
	}

	stored, err := m.Update(cmd.Context(), dal.Fragment(doc))
	if err != nil {
		return err
	}

	return cmdCtx.Renderer.Document(kind, stored)
}
