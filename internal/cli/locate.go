package cli

import (
	"encoding/json"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/safetree/pkg/errors"
	stio "github.com/matzehuels/safetree/pkg/io"
	"github.com/matzehuels/safetree/pkg/safetree"
)

type locateFlags struct {
	inputFlags
	interactive bool
	json        bool
}

// locateCommand creates the locate command.
func (c *CLI) locateCommand() *cobra.Command {
	var flags locateFlags

	cmd := &cobra.Command{
		Use:   "locate <file|-> <needle>",
		Short: "List the paths whose value contains a string",
		Long: `List, in breadth-first order, the safe tree paths of every scalar whose
text contains needle. The search goes deeper than stringify's default depth.`,
		Example: `  safetree locate config.yaml password
  safetree locate state.json 10.0.3 --interactive`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.interactive {
				return c.runLocateInteractive(cmd, args[0], args[1], flags)
			}
			return c.runLocate(cmd, args[0], args[1], flags)
		},
	}

	flags.register(cmd, false)
	cmd.Flags().BoolVarP(&flags.interactive, "interactive", "i", false, "pick a match and preview its value")
	cmd.Flags().BoolVar(&flags.json, "json", false, "print the paths as a JSON array")

	return cmd
}

func (c *CLI) runLocate(cmd *cobra.Command, path, needle string, flags locateFlags) error {
	ctx := cmd.Context()

	doc, format, err := flags.readDocument(cmd, path)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return err
	}
	defer runner.Cache.Close()

	opts := flags.options(cmd, c.Config, format)
	opts.Needle = needle
	out, err := runner.Locate(ctx, doc, opts)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if flags.json {
		return json.NewEncoder(w).Encode(out.Paths)
	}
	if len(out.Paths) == 0 {
		printInfo("No paths contain %q", needle)
		return nil
	}
	for _, p := range out.Paths {
		fmt.Fprintln(w, displayPath(p))
	}
	if len(out.Paths) > 1 {
		printNextStep("Preview the values", fmt.Sprintf("%s locate %s %q -i", appName, path, needle))
	}
	return nil
}

// runLocateInteractive builds the tree locally so the picker can show the
// node at every match.
func (c *CLI) runLocateInteractive(cmd *cobra.Command, path, needle string, flags locateFlags) error {
	ctx := cmd.Context()

	if err := errors.ValidateNeedle(needle); err != nil {
		return err
	}
	doc, format, err := flags.readDocument(cmd, path)
	if err != nil {
		return err
	}
	value, err := stio.DecodeBytes(doc, format)
	if err != nil {
		return err
	}

	opts := flags.options(cmd, c.Config, format)
	res, err := safetree.Build(value, safetree.LocateMaxDepth,
		safetree.WithNeedle(needle),
		safetree.WithMaxNodes(opts.MaxNodes),
		safetree.WithLogger(c.Logger))
	if err != nil {
		return err
	}

	p := tea.NewProgram(NewMatchListModel(needle, res), tea.WithContext(ctx), tea.WithOutput(uiOut))
	final, err := p.Run()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "run picker")
	}
	if m, ok := final.(MatchListModel); ok && m.Selected != nil {
		fmt.Fprintln(cmd.OutOrStdout(), displayPath(m.Selected.Path))
	}
	return nil
}
