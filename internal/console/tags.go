package console

import (
	"strconv"

	"github.com/spf13/cobra"
)

func newTagsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List the tag catalog",
		RunE:  runTags,
	}
}

func runTags(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	client, err := buildClient(cfg)
	if err != nil {
		return err
	}

	tags, err := client.FetchTags(cmd.Context())
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(tags))
	for _, tag := range tags {
		rows = append(rows, []string{strconv.Itoa(tag.ID), tag.Name})
	}
	return writeTable(cmd.OutOrStdout(), []string{"ID", "NAME"}, rows)
}
