package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/deptree/internal/server"
	"github.com/matzehuels/deptree/pkg/metrics"
	"github.com/matzehuels/deptree/pkg/session"
)

// serveCommand creates the serve command that exposes explorer sessions
// over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		noMetrics bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve interactive explorer sessions over HTTP",
		Long: `Serve interactive explorer sessions over HTTP.

Clients POST a tree to /sessions and drive the returned session with click,
pointer, pan, zoom and toggle requests. Frames are served as SVG from
/sessions/{id}/frame.svg. Sessions live in memory and expire after the
configured idle time.

Prometheus metrics are exposed on /metrics unless --no-metrics is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				c.config().Server.Addr = addr
			}
			return c.runServe(cmd.Context(), !noMetrics)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config: 127.0.0.1:8080)")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "disable the /metrics endpoint")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, withMetrics bool) error {
	cfg := c.config()

	lookup, closeLookup, err := c.openLookup(ctx)
	if err != nil {
		return fmt.Errorf("metadata: %w", err)
	}
	defer closeLookup()

	store := session.NewStore(cfg.Server.MaxSessions, cfg.Server.SessionTTL)
	opts := server.Options{
		Config:   cfg,
		Logger:   c.Logger,
		Lookup:   lookup,
		Sessions: store,
	}
	if withMetrics {
		reg := metrics.NewRegistry()
		reg.Install()
		store.OnChange(reg.SetSessions)
		opts.Metrics = reg.Handler()
	}

	srv, err := server.New(opts)
	if err != nil {
		return err
	}

	printSuccess("Serving on %s", StyleHighlight.Render("http://"+cfg.Server.Addr))
	printDetail("Metadata: %s · sessions: %d max, %s idle", cfg.Metadata.Backend, cfg.Server.MaxSessions, cfg.Server.SessionTTL)
	if err := srv.ListenAndServe(ctx, cfg.Server.Addr); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
