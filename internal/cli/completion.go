package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/deptree/pkg/tree"
)

var completionShells = []string{"bash", "zsh", "fish", "powershell"}

// treeFileExts are the extensions offered for tree arguments.
var treeFileExts = []string{"json", "yaml", "yml"}

// completionCommand prints a shell completion script.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion " + strings.Join(completionShells, "|"),
		Short: "Generate shell completion scripts",
		Long: `Generate a completion script for deptree.

Completions cover subcommands, flags, tree files (.json, .yaml) and the
package ids of the tree given on the command line, e.g. for --root and
--expand.

  bash        source <(deptree completion bash)
  zsh         deptree completion zsh > "${fpath[1]}/_deptree"
  fish        deptree completion fish > ~/.config/fish/completions/deptree.fish
  powershell  deptree completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             completionShells,
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, out := cmd.Root(), cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(out, true)
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			default:
				return root.GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}

// completeTreeFile completes the tree argument of layout, render and explore.
func completeTreeFile(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return treeFileExts, cobra.ShellCompDirectiveFilterFileExt
}

// completeNodeIDs completes package ids from the tree file already on the
// command line. Unreadable trees complete to nothing.
func completeNodeIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	root, _ := cmd.Flags().GetString("root")
	t, err := tree.ReadFile(args[0], root)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveError
	}

	// --expand takes a comma-separated list; complete its last element.
	prefix, last := "", toComplete
	if i := strings.LastIndex(toComplete, ","); i >= 0 {
		prefix, last = toComplete[:i+1], toComplete[i+1:]
	}
	var out []string
	for _, id := range t.IDs() {
		if strings.HasPrefix(id, last) {
			out = append(out, prefix+id)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// completeFormats completes the comma-separated --format list of render.
func completeFormats(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	prefix, last := "", toComplete
	if i := strings.LastIndex(toComplete, ","); i >= 0 {
		prefix, last = toComplete[:i+1], toComplete[i+1:]
	}
	var out []string
	for _, f := range validFormats {
		if strings.HasPrefix(f, last) && !strings.Contains(","+prefix, ","+f+",") {
			out = append(out, prefix+f)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}
