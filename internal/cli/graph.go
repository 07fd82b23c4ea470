package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/safetree/pkg/errors"
	"github.com/matzehuels/safetree/pkg/pipeline"
)

type graphFlags struct {
	inputFlags
	output   string
	kind     string
	detailed bool
}

// graphCommand creates the graph command.
func (c *CLI) graphCommand() *cobra.Command {
	var flags graphFlags

	cmd := &cobra.Command{
		Use:   "graph <file|->",
		Short: "Draw a document's safe tree as a node-link diagram",
		Long: `Draw the safe tree of a document with Graphviz. Reference markers become
dashed edges back to the node they point at, so cycles in the input stay
visible without being expanded.

The output format follows the -o extension (svg, dot, pdf, png) unless
--type is given. Without -o the diagram is written to stdout.`,
		Example: `  safetree graph state.json -o state.svg
  safetree graph config.yaml --depth 5 --detailed -o config.pdf
  safetree graph - --type dot < state.json | dot -Tpng > state.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGraph(cmd, args[0], flags)
		},
	}

	flags.register(cmd, true)
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&flags.kind, "type", "t", "", "diagram format: svg, dot, pdf or png (default: from -o, else svg)")
	cmd.Flags().BoolVar(&flags.detailed, "detailed", false, "list scalar properties inside nodes")

	return cmd
}

func (c *CLI) runGraph(cmd *cobra.Command, path string, flags graphFlags) error {
	ctx := cmd.Context()

	format, err := graphFormat(flags.output, flags.kind)
	if err != nil {
		return err
	}
	if flags.output != "" {
		if err := errors.ValidatePath(flags.output); err != nil {
			return err
		}
	}

	doc, docFormat, err := flags.readDocument(cmd, path)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return err
	}
	defer runner.Cache.Close()

	opts := flags.options(cmd, c.Config, docFormat)
	opts.GraphFormat = format
	opts.Detailed = flags.detailed

	spin := newSpinnerWithContext(ctx, "Rendering "+format+"...")
	spin.Start()
	out, err := runner.Graph(ctx, doc, opts)
	if err != nil {
		spin.StopWithError("Rendering failed")
		return err
	}
	spin.Stop()

	if flags.output == "" {
		_, err := cmd.OutOrStdout().Write(out.Data)
		return err
	}
	if err := os.WriteFile(flags.output, out.Data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", flags.output)
	}
	printSuccess("Rendered %s", strings.ToUpper(format))
	printFile(flags.output)
	return nil
}

// graphFormat resolves the diagram format from --type or the output path.
func graphFormat(output, kind string) (string, error) {
	if kind != "" {
		return kind, pipeline.ValidateGraphFormat(kind)
	}
	if output == "" {
		return pipeline.GraphSVG, nil
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(output), "."))
	if ext == "" {
		return pipeline.GraphSVG, nil
	}
	return ext, pipeline.ValidateGraphFormat(ext)
}
