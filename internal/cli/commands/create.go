package commands

import (
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapdal/pkg/dal"
)

// NewCreateCommand creates the create command.
func NewCreateCommand() *cobra.Command {
	var (
		file  string
		pairs []string
	)

	cmd := &cobra.Command{
		Use:   "create <kind>",
		Short: "Create a document",
		Long: `Create a document in a collection. The driver assigns the id.

Fields come from --file (YAML or JSON, "-" reads stdin) and from
repeated --set key=value pairs; --set wins when both name a field.
Values are read as YAML scalars, so --set visible=false stores a bool.

The document must decode as the kind's entity before it is written.`,
		Example: `  # Create a model
  leapdal create model --set name=churn --set user_id=u1

  # Create a task from a file
  leapdal create task --file task.yaml

  # Pipe JSON in
  echo '{"name": "nightly"}' | leapdal create session --file -`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeKinds,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(cmd, args[0], file, pairs)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Read fields from a YAML or JSON file (- for stdin)")
	cmd.Flags().StringArrayVarP(&pairs, "set", "s", nil, "Set a field (key=value, repeatable)")

	return cmd
}

func runCreate(cmd *cobra.Command, kind, file string, pairs []string) error {
	doc, err := documentFromFlags(cmd, file, pairs)
	if err != nil {
		return err
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

	stored, err := m.Create(cmd.Context(), dal.Fragment(doc))
	if err != nil {
		return err
	}

	return cmdCtx.Renderer.Document(kind, stored)
}
