package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/studyscout/internal/app"
	"github.com/abhisek/studyscout/internal/screens/home"
	"github.com/abhisek/studyscout/internal/screens/topic"
)

// runApp builds dependencies and launches the TUI.
func runApp(cmd *cobra.Command) error {
	ctx := cmd.Context()
	rt, err := newRuntime(ctx, cmd, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	return app.Run(ctx, app.Options{
		Store: rt.study,
		Home: home.Options{
			Events: rt.events,
			Topic:  topic.Options{DefaultQuizCount: rt.cfg.Quiz.DefaultCount},
		},
		Logger: rt.log,
	})
}
