package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

type deleteResult struct {
	Kind    string `json:"kind" yaml:"kind"`
	ID      string `json:"id" yaml:"id"`
	Existed bool   `json:"existed" yaml:"existed"`
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "delete <kind> <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a document",
		Long: `Delete a document from a collection.

Deleting an id that does not exist is not an error; the output reports
whether the document existed.`,
		Example: `  leapdal delete model 0b6f2c1e-...
  leapdal rm task 4f1c... --output json`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeKinds,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(cmd, args[0], args[1])
		},
	}

	return cmd
}

func runDelete(cmd *cobra.Command, kind, id string) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	m, err := cmdCtx.DAL.Raw(kind)
	if err != nil {
		return err
	}

	existed, err := m.Delete(cmd.Context(), id)
	if err != nil {
		return err
	}

	r := cmdCtx.Renderer
	if ok, err := r.Data(deleteResult{Kind: kind, ID: id, Existed: existed}); ok {
		return err
	}

	if existed {
		r.Success(fmt.Sprintf("Deleted %s %s", kind, id))
	} else {
		r.Muted(fmt.Sprintf("No %s with id %s", kind, id))
	}
	return nil
}
