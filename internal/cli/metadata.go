package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/matzehuels/deptree/pkg/metadata"
	"github.com/matzehuels/deptree/pkg/tree"
)

// metadataCommand groups commands for package details.
func (c *CLI) metadataCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metadata",
		Short: "Inspect and import package details",
		Long: `Inspect and import package details.

Details (size, license, vulnerability counts) come from the backend selected in
the config file: a JSON/YAML file, a Redis server or a MongoDB collection.`,
	}

	cmd.AddCommand(c.metadataShowCommand())
	cmd.AddCommand(c.metadataImportCommand())

	return cmd
}

// metadataShowCommand creates the "metadata show" subcommand.
func (c *CLI) metadataShowCommand() *cobra.Command {
	var (
		treeFile string
		root     string
	)

	cmd := &cobra.Command{
		Use:   "show [package]",
		Short: "Show the detail panel of a package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runMetadataShow(cmd.Context(), args[0], treeFile, root)
		},
	}

	cmd.Flags().StringVarP(&treeFile, "tree", "t", "", "tree file providing version and dependencies")
	cmd.Flags().StringVar(&root, "root", "", "root package of node-link graph input")

	return cmd
}

func (c *CLI) runMetadataShow(ctx context.Context, id, treeFile, root string) error {
	node := &tree.Node{ID: id}
	if treeFile != "" {
		t, err := tree.ReadFile(treeFile, root)
		if err != nil {
			return fmt.Errorf("load tree %s: %w", treeFile, err)
		}
		n, ok := t.Node(id)
		if !ok {
			return fmt.Errorf("package %s is not in %s", id, treeFile)
		}
		node = n
	}

	lookup, closeLookup, err := c.openLookup(ctx)
	if err != nil {
		return fmt.Errorf("metadata: %w", err)
	}
	defer closeLookup()

	fields, err := metadata.Panel(ctx, lookup, node)
	for _, f := range fields {
		printKeyValue(f.Label, f.Value)
	}
	if err != nil {
		printWarning("details unavailable: %v", err)
	}
	return nil
}

// metadataImportCommand creates the "metadata import" subcommand.
func (c *CLI) metadataImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import [details.json|details.yaml]",
		Short: "Import package details into the configured Redis or MongoDB backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runMetadataImport(cmd.Context(), args[0])
		},
	}
}

func (c *CLI) runMetadataImport(ctx context.Context, path string) error {
	src, err := metadata.LoadFile(path)
	if err != nil {
		return err
	}

	lookup, closeLookup, err := c.openLookup(ctx)
	if err != nil {
		return fmt.Errorf("metadata: %w", err)
	}
	defer closeLookup()

	w, ok := lookup.(metadata.Writer)
	if !ok {
		return fmt.Errorf("metadata backend %q is read-only; configure redis or mongo", c.config().Metadata.Backend)
	}

	prog := newProgress(loggerFromContext(ctx))
	ids := make([]string, 0, len(src))
	for id := range src {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		if err := w.Put(ctx, id, src[id]); err != nil {
			return err
		}
	}

	prog.done(fmt.Sprintf("Imported %d packages", len(ids)))
	printSuccess("Imported %d packages into %s", len(ids), c.config().Metadata.Backend)
	return nil
}
