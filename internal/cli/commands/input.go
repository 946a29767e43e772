package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/leapdal/pkg/core"
)

// parseAssignments turns key=value pairs into a document. Values are read
// as YAML scalars, so "true", "3" and "[a, b]" keep their types; anything
// that does not parse stays a string.
func parseAssignments(pairs []string) (core.Document, error) {
	doc := core.Document{}
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("expected key=value, got %q", pair)
		}
		doc[key] = parseValue(raw)
	}
	return doc, nil
}

func parseValue(raw string) any {
	if raw == "" {
		return ""
	}
	var v any
	if err := yaml.Unmarshal([]byte(raw), &v); err != nil || (v == nil && raw != "null" && raw != "~") {
		return raw
	}
	return v
}

// readDocument reads a YAML or JSON document from path, or from stdin
// when path is "-".
func readDocument(cmd *cobra.Command, path string) (core.Document, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path) //nolint:gosec // path is provided by the user
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	var doc core.Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse document %s: %w", path, err)
	}
	if doc == nil {
		doc = core.Document{}
	}
	return doc, nil
}

// documentFromFlags merges --file (if any) with --set pairs; --set wins.
func documentFromFlags(cmd *cobra.Command, file string, pairs []string) (core.Document, error) {
	doc := core.Document{}
	if file != "" {
		fromFile, err := readDocument(cmd, file)
		if err != nil {
			return nil, err
		}
		doc = fromFile
	}

	set, err := parseAssignments(pairs)
	if err != nil {
		return nil, err
	}
	for k, v := range set {
		doc[k] = v
	}
	return doc, nil
}

// completeKinds offers collection names for the first argument.
func completeKinds(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return core.Collections(), cobra.ShellCompDirectiveNoFileComp
}
