package commands

import (
	"github.com/spf13/cobra"
)

// NewGetCommand creates the get command.
func NewGetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <kind> <id>",
		Short: "Show one document by id",
		Long: `Fetch a single document from a collection and print it.

Kinds: model, code, environment, file_collection, session, task,
snapshot, user.

A missing id exits with an error.`,
		Example: `  # Show a model
  leapdal get model 0b6f2c1e-6a0e-4f7e-9d2a-3c1d5b9e8f10

  # Show a task as JSON
  leapdal get task 4f1c... --output json`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeKinds,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(cmd, args[0], args[1])
		},
	}

	return cmd
}

func runGet(cmd *cobra.Command, kind, id string) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	m, err := cmdCtx.DAL.Raw(kind)
	if err != nil {
		return err
	}

	doc, err := m.Get(cmd.Context(), id)
	if err != nil {
		return err
	}

	return cmdCtx.Renderer.Document(kind, doc)
}
