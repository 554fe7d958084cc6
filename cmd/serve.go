package cmd

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/ramanasai/reflectboard/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the reflections and chat JSON API",
	Long: `Examples:
	reflectboard serve                        # 127.0.0.1:8080 from config
	reflectboard serve --addr :9090           # override the listen address
	curl localhost:8080/api/reflections?q=demo`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		dbh, store, err := openStore()
		if err != nil {
			return err
		}
		defer dbh.Close()

		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		responder, err := newResponder(ctx, reg)
		if err != nil {
			return err
		}

		sc := cfg.Server
		if serveAddr != "" {
			sc.Addr = serveAddr
		}
		startReminder(ctx, store)
		srv := server.New(sc, store, responder, logger.Named("http"), server.WithGatherer(reg))
		return srv.ListenAndServe(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from server.addr)")
}
