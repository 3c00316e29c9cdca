package cli

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/graphedit/internal/server"
)

func (c *CLI) serveCommand() *cobra.Command {
	var addr string
	var noMetrics bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the editor API and live updates over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := c.openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if addr == "" {
				addr = s.cfg.Server.Addr
			}

			opts := server.Options{
				Logger:         c.Logger.WithPrefix("http"),
				AllowedOrigins: s.cfg.Server.AllowedOrigins,
			}
			if !noMetrics {
				reg := prometheus.NewRegistry()
				reg.MustRegister(
					collectors.NewGoCollector(),
					collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
				)
				server.NewMetrics(reg).Register()
				opts.Gatherer = reg
			}

			srv := server.New(s.editor, opts)
			defer srv.Close()

			g, rev := s.editor.Snapshot()
			printSuccess("Serving %s", StyleLink.Render("http://"+addr))
			printGraphSummary(g, rev)
			printNextStep("Live updates", "ws://"+addr+"/ws")

			return srv.Run(ctx, addr, s.cfg.Server.ShutdownTimeout.Duration)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "disable the /metrics endpoint")
	return cmd
}
