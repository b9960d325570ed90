package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newWatchCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "watch",
		Aliases: []string{"w"},
		Short:   "Rebuild the compiled output on every content change",
		Long: `Build the compiled output, then watch the content directory and purge
and rebuild whenever it changes, until interrupted.

Examples:
  thematic watch --content ./content
  thematic watch --content ./content --debounce 500ms`,
		Args: cobra.NoArgs,
	}
	cmd.Flags().Duration("debounce", 0, "delay collapsing bursts of file events (default from config)")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		viper.Set("content.watch", true)
		if cmd.Flags().Changed("debounce") {
			d, _ := cmd.Flags().GetDuration("debounce")
			viper.Set("content.debounce", d)
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		e, err := openEngine(ctx, cmd, opts)
		if err != nil {
			return err
		}
		if err := e.Start(ctx); err != nil {
			return err
		}
		cmd.PrintErrf("Watching %s (cache %s)\n", e.Config.Content.Dir, e.Output.Root())

		select {
		case <-sigChan:
			cmd.PrintErrln("Stopping")
		case <-ctx.Done():
		}
		return e.Stop()
	}
	return cmd
}
