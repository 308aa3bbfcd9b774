package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/studyscout/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the study API over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rt, err := newRuntime(ctx, cmd, false)
		if err != nil {
			return err
		}
		defer rt.Close()

		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = rt.cfg.Server.Addr
		}

		router := server.NewRouter(server.RouterConfig{
			Store:            rt.study,
			Log:              rt.log.With("component", "http"),
			MaxUploadBytes:   int64(rt.cfg.Server.MaxUploadMB) << 20,
			DefaultQuizCount: rt.cfg.Quiz.DefaultCount,
			SessionSecret:    rt.cfg.Server.SessionSecret,
			AllowedOrigins:   rt.cfg.Server.AllowedOrigins,
		})
		return server.Run(ctx, addr, router, rt.log)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default from config, :8080)")
}
