package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/safetree/internal/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve the stringify, locate and graph operations over HTTP:

  POST /v1/stringify?depth=N   document in, one-line safe tree out
  POST /v1/locate?needle=S     document in, JSON array of paths out
  POST /v1/graph?format=svg    document in, diagram out
  GET  /healthz

The request Content-Type selects the document syntax (application/json,
application/yaml, application/toml). Results are cached in redis when
[cache.redis] addr is configured, otherwise on local disk.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if !cmd.Flags().Changed("addr") {
				addr = c.Config.Server.Addr
			}

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Cache.Close()

			printKeyValue("Listening", addr)
			printKeyValue("Cache", c.cacheLabel(noCache))

			srv := server.New(server.Config{
				Addr:         addr,
				Runner:       runner,
				Logger:       c.Logger,
				MaxBodyBytes: c.Config.Server.MaxBodyBytes,
				DefaultDepth: c.Config.Depth,
			})
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the result cache")

	return cmd
}

// cacheLabel describes the configured cache backend for humans.
func (c *CLI) cacheLabel(noCache bool) string {
	switch {
	case noCache || c.Config.Cache.Disabled:
		return "disabled"
	case c.Config.Cache.Redis.Addr != "":
		return "redis " + c.Config.Cache.Redis.Addr
	}
	dir, err := c.cacheDir()
	if err != nil {
		return "disabled"
	}
	return dir
}
