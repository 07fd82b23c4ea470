package cli

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	stio "github.com/matzehuels/safetree/pkg/io"
	"github.com/matzehuels/safetree/pkg/sink"
)

type stringifyFlags struct {
	inputFlags
	output  string
	sink    string
	level   string
	message string
	stats   bool
}

// stringifyCommand creates the stringify command.
func (c *CLI) stringifyCommand() *cobra.Command {
	var flags stringifyFlags

	cmd := &cobra.Command{
		Use:   "stringify <file|->",
		Short: "Print a document as a one-line safe tree",
		Long: `Render a document as its safe tree and print it as a single JSON line.

With --sink (or [sink] target in the config file) the line is shipped as a
log record instead: "-" for stdout, a file path to append to, or a
mongodb:// URI.`,
		Example: `  safetree stringify config.yaml --depth 2
  kubectl get pod web -o json | safetree stringify - --sink logs.jsonl
  safetree stringify state.json --sink "mongodb://localhost:27017/logs?collection=records"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runStringify(cmd, args[0], flags)
		},
	}

	flags.register(cmd, true)
	cmd.Flags().StringVarP(&flags.output, "output", "o", string(stio.FormatJSON), "output format: json or yaml")
	cmd.Flags().StringVar(&flags.sink, "sink", "", "ship the line to a sink: -, a file, or a mongodb:// URI")
	cmd.Flags().StringVar(&flags.level, "level", "info", "record level when shipping")
	cmd.Flags().StringVarP(&flags.message, "message", "m", "", "record message when shipping (default: the input path)")
	cmd.Flags().BoolVar(&flags.stats, "stats", false, "print conversion statistics")

	return cmd
}

func (c *CLI) runStringify(cmd *cobra.Command, path string, flags stringifyFlags) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	outFormat, err := stio.ParseFormat(flags.output)
	if err != nil {
		return err
	}
	doc, format, err := flags.readDocument(cmd, path)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return err
	}
	defer runner.Cache.Close()

	prog := newProgress(logger)
	out, err := runner.Stringify(ctx, doc, flags.options(cmd, c.Config, format))
	if err != nil {
		return err
	}
	prog.done("stringified", "file", path, "cached", out.CacheHit)

	if flags.stats {
		printStats(out.Stats, out.CacheHit)
	}

	target := flags.sink
	if !cmd.Flags().Changed("sink") {
		target = c.Config.Sink.Target
	}
	if target == "" {
		return stio.Encode(cmd.OutOrStdout(), json.RawMessage(out.Line), outFormat)
	}
	return c.ship(cmd, target, path, out.Line, flags)
}

// ship writes one record to the sink at target.
func (c *CLI) ship(cmd *cobra.Command, target, path, line string, flags stringifyFlags) error {
	ctx := cmd.Context()

	s, err := sink.Open(ctx, target)
	if err != nil {
		return err
	}
	defer s.Close(ctx)

	msg := flags.message
	if msg == "" {
		msg = path
	}
	rec := sink.NewRecord(flags.level, msg, line)
	if path != stdinPath {
		rec.Source = path
	}
	if err := s.Write(ctx, rec); err != nil {
		return err
	}

	loggerFromContext(ctx).Debug("shipped record", "id", rec.ID, "sink", redactTarget(target))
	if target != stdinPath {
		printSuccess("Shipped record %s", rec.ID)
	}
	return nil
}

// redactTarget hides credentials in URI targets before they reach logs.
func redactTarget(target string) string {
	if !strings.Contains(target, "://") {
		return target
	}
	u, err := url.Parse(target)
	if err != nil {
		return "<invalid uri>"
	}
	return u.Redacted()
}
