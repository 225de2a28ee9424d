package console

import (
	"github.com/spf13/cobra"

	"github.com/lqhuy/chatdesk/internal/chat"
	"github.com/lqhuy/chatdesk/internal/config"
	"github.com/lqhuy/chatdesk/internal/logging"
)

func newCustomersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "customers",
		Short: "List bulk-dispatch recipients",
		Long:  "customers lists dispatch recipients. Filters are remembered between invocations; pass --channel or --tag to change them.",
		RunE:  runCustomers,
	}
	cmd.Flags().String("channel", "", "filter by platform (web, facebook, zalo, telegram)")
	cmd.Flags().Int("tag", 0, "filter by tag id")
	return cmd
}

// resolveFilter falls back to the remembered filter when the command
// was invoked without one.
func resolveFilter(channelFlag string, tagID int, saved *config.Context) (string, int) {
	if channelFlag == "" && tagID == 0 && saved.HasFilter() {
		return saved.Channel, saved.TagID
	}
	return channelFlag, tagID
}

func runCustomers(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	client, err := buildClient(cfg)
	if err != nil {
		return err
	}

	contexts := config.NewContextStore("")
	saved, err := contexts.Load()
	if err != nil {
		saved = &config.Context{}
	}

	channelFlag, _ := cmd.Flags().GetString("channel")
	tagID, _ := cmd.Flags().GetInt("tag")
	channelFlag, tagID = resolveFilter(channelFlag, tagID, saved)

	var channel chat.Channel
	if channelFlag != "" {
		channel = chat.ParseChannel(channelFlag)
		channelLogger := logging.WithChannel(string(channel))
		channelLogger.Debug().Int("tag_id", tagID).Msg("filtering recipient directory")
	}

	customers, err := client.FetchCustomers(cmd.Context(), channel, tagID)
	if err != nil {
		return err
	}

	saved.SetFilter(string(channel), tagID)
	if err := contexts.Save(saved); err != nil {
		logger := logging.Component("console")
		logger.Warn().Err(err).Msg("failed to save context")
	}

	rows := make([][]string, 0, len(customers))
	for _, customer := range customers {
		rows = append(rows, []string{customer.SessionID, customer.Name, string(customer.Channel)})
	}
	return writeTable(cmd.OutOrStdout(), []string{"SESSION", "NAME", "CHANNEL"}, rows)
}
