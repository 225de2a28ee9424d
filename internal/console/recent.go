package console

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lqhuy/chatdesk/internal/archive"
)

func newRecentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recent <session-id>",
		Short: "Show recently archived messages for a conversation",
		Args:  cobra.ExactArgs(1),
		RunE:  runRecent,
	}
	cmd.Flags().Int("limit", 20, "maximum number of messages to show")
	return cmd
}

func runRecent(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if !cfg.Archive.Enabled {
		return fmt.Errorf("archive is disabled in config")
	}

	store, err := archive.Open(cfg.ArchivePath())
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	messages, err := store.Recent(cmd.Context(), args[0], limit)
	if err != nil {
		return err
	}
	if len(messages) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no archived messages")
		return nil
	}

	rows := make([][]string, 0, len(messages))
	for _, msg := range messages {
		content := msg.Content
		if content == "" && len(msg.Images) > 0 {
			content = fmt.Sprintf("[%d image(s)]", len(msg.Images))
		}
		content = strings.ReplaceAll(content, "\n", " ")
		rows = append(rows, []string{
			msg.CreatedAt.Local().Format(time.DateTime),
			string(msg.SenderType),
			content,
		})
	}
	return writeTable(cmd.OutOrStdout(), []string{"TIME", "SENDER", "CONTENT"}, rows)
}
