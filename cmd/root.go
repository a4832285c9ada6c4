package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/HarshithaPadmanabha/StudyHub/internal/ui"
	"github.com/HarshithaPadmanabha/StudyHub/internal/version"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "studyhub",
	Short: "Video study rooms in your terminal, peer-to-peer over WebRTC",
	Long: `StudyHub connects a small group of people in a shared room with audio, video,
screen sharing and text chat. Media flows directly between participants over
WebRTC; the room server only relays presence, chat and connection setup.

Run "studyhub serve" to host a room server and "studyhub join" to enter a room.`,
	Version: version.Version,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		ui.PrintError(err.Error())
		os.Exit(1)
	}
}
