package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/deptree/pkg/layout"
	"github.com/matzehuels/deptree/pkg/tree"
)

// layoutDocument is the JSON written by the layout command.
type layoutDocument struct {
	Root     string           `json:"root"`
	Expanded tree.ExpandedSet `json:"expanded"`
	Options  layout.Options   `json:"options"`
	Bounds   layout.Bounds    `json:"bounds"`
	layout.Result
}

// layoutCommand creates the layout command for computing tree layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output string
		tf     treeFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [tree.json]",
		Short: "Compute the layout of a dependency tree",
		Long: `Compute the layout of a dependency tree.

Every visible package gets a box center in object space; edges connect each
expanded package to its dependencies. Packages are visible when all of their
ancestors are expanded. Use --expand or --expand-all to open more of the tree.

Branches that revisit a package already on their path are cut and reported as
warnings.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], output, tf)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json, - for stdout)")
	tf.register(cmd)

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, input, output string, tf treeFlags) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	ex, err := c.openExplorer(input, tf)
	if err != nil {
		return err
	}
	defer ex.Close()

	res := ex.Layout()
	for _, w := range res.Warnings {
		printWarning("%s", w.Error())
	}

	doc := layoutDocument{
		Root:     ex.Tree().Root().ID,
		Expanded: ex.Expanded(),
		Options:  c.config().Layout,
		Bounds:   res.Bounds(),
		Result:   res,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}

	if output == "" {
		output = outputPath(input, "", "layout.json", false)
	}
	if err := writeOutput(stdout, output, append(data, '\n')); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	if output == "-" {
		return nil
	}

	prog.done(fmt.Sprintf("Laid out %d packages", len(res.Nodes)))
	printSuccess("Layout computed")
	printStats(len(res.Nodes), len(res.Edges), len(res.Warnings))
	printFile(output)
	return nil
}
