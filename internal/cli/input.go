package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/safetree/pkg/errors"
	stio "github.com/matzehuels/safetree/pkg/io"
	"github.com/matzehuels/safetree/pkg/pipeline"
)

// inputFlags are shared by every command that reads a document.
type inputFlags struct {
	format   string
	depth    int
	maxNodes int
	noCache  bool
	refresh  bool
}

func (f *inputFlags) register(cmd *cobra.Command, withDepth bool) {
	cmd.Flags().StringVarP(&f.format, "format", "f", "", "input format: json, yaml or toml (default: from file extension)")
	cmd.Flags().IntVar(&f.maxNodes, "max-nodes", 0, "cap on the number of tree nodes (default from config)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the result cache")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "ignore cached results")
	if withDepth {
		cmd.Flags().IntVarP(&f.depth, "depth", "d", pipeline.DefaultMaxDepth, "maximum depth of the safe tree")
	}
}

// options merges flags over the loaded config.
func (f *inputFlags) options(cmd *cobra.Command, cfg *Config, format stio.Format) pipeline.Options {
	opts := pipeline.Options{
		Format:        format,
		MaxDepth:      cfg.Depth,
		ExplicitDepth: true,
		MaxNodes:      cfg.MaxNodes,
		Refresh:       f.refresh,
	}
	if cmd.Flags().Changed("depth") {
		opts.MaxDepth = f.depth
	}
	if cmd.Flags().Changed("max-nodes") {
		opts.MaxNodes = f.maxNodes
	}
	return opts
}

// readDocument reads path ("-" for stdin) and resolves its format: the
// --format flag wins, then the file extension, then JSON.
func (f *inputFlags) readDocument(cmd *cobra.Command, path string) ([]byte, stio.Format, error) {
	format, err := f.resolveFormat(path)
	if err != nil {
		return nil, "", err
	}

	if path == stdinPath {
		doc, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, "", errors.Wrap(errors.ErrCodeInvalidInput, err, "read stdin")
		}
		return doc, format, nil
	}

	doc, err := stio.ReadBytes(path)
	if err != nil {
		return nil, "", err
	}
	return doc, format, nil
}

func (f *inputFlags) resolveFormat(path string) (stio.Format, error) {
	if f.format != "" {
		return stio.ParseFormat(f.format)
	}
	if path == stdinPath {
		return stio.FormatJSON, nil
	}
	return stio.FormatFromPath(path)
}
