// Package console wires the synchronization core into the chatdesk
// command line: the long-running sync runner plus small inspection
// commands over the local archive and the backend catalog.
package console

import (
	"github.com/spf13/cobra"
)

func Execute(version string) error {
	return newRootCmd(version).Execute()
}

func newRootCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "chatdesk",
		Short:         "Operator console core for multi-channel chat",
		Long:          "chatdesk keeps a live local copy of the chat backend: conversations, per-conversation history, and pending alerts, reconciled from REST and the push stream.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
	}
	cmd.PersistentFlags().String("config", "", "config file (default is $HOME/.config/chatdesk/config.yaml)")
	cmd.PersistentFlags().String("log-level", "", "override logging level (debug, info, warn, error)")
	cmd.PersistentFlags().String("log-format", "", "override logging format (json, console)")

	cmd.AddCommand(
		newRunCmd(),
		newRecentCmd(),
		newTagsCmd(),
		newCustomersCmd(),
	)

	return cmd
}
