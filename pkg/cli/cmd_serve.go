package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/covenantcc/crucible/pkg/config"
	"github.com/covenantcc/crucible/pkg/transport"
	transporthttp "github.com/covenantcc/crucible/pkg/transport/http"
)

func newServeCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the crucible verification server",
		Long: `Run the crucible HTTP server.

Endpoints:
  POST   /v1/verifications     run one sandboxed verification
  POST   /v1/corrections       drive a full correction loop (requires a corrector)
  GET    /v1/corrections/{id}  look up a task's status and attempts (requires a ledger)
  DELETE /v1/corrections/{id}  cancel an in-flight correction loop
  GET    /healthz              liveness probe
  GET    /metrics              Prometheus metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}

			logger := newLogger()

			c, err := buildComponents(cfg, logger)
			if err != nil {
				return err
			}
			defer c.cleanup()

			var loop transport.CorrectionRunner
			if c.hasLoop {
				loop = c.engine
			} else {
				logger.Info("no corrector configured, corrections endpoint disabled")
			}

			var tasks transport.TaskReader
			if c.ledger != nil {
				tasks = c.ledger
			}

			opts := []transporthttp.ServerOption{
				transporthttp.WithAddr(fmt.Sprintf(":%d", cfg.Server.Port)),
				transporthttp.WithReadTimeout(cfg.Server.ReadTimeout),
				transporthttp.WithWriteTimeout(cfg.Server.WriteTimeout),
				transporthttp.WithLogger(logger),
			}
			if !cfg.Observability.Metrics.Enabled {
				opts = append(opts, transporthttp.WithMetricsPath(""))
			} else if cfg.Observability.Metrics.Path != "" {
				opts = append(opts, transporthttp.WithMetricsPath(cfg.Observability.Metrics.Path))
			}

			srv := transporthttp.NewServer(c.engine, loop, tasks, opts...)
			return srv.ListenAndServe()
		},
	}

	return cmd
}
