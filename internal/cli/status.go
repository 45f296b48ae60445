package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusChannels []string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current version on each channel",
	Long: `Show the project root and the version each configured channel currently
publishes.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringSliceVarP(&statusChannels, "channel", "c", nil, "Only show these channels")
}

// channelStatus is one row of `release status`.
type channelStatus struct {
	Channel string `json:"channel"`
	Kind    string `json:"kind"`
	Version string `json:"version"`
	Error   string `json:"error,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	project, err := openProject(cmd, statusChannels)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	rows := make([]channelStatus, 0, len(project.Channels))
	for _, ch := range project.Channels {
		row := channelStatus{Channel: ch.Name(), Kind: ch.Kind()}
		version, err := ch.GetVersion(ctx)
		if err != nil {
			row.Error = err.Error()
		}
		row.Version = version
		rows = append(rows, row)
	}

	if jsonOutput {
		return outputJSON(cmd.OutOrStdout(), map[string]interface{}{
			"root":     project.Root,
			"channels": rows,
		})
	}

	out := cmd.OutOrStdout()
	PrintInfo(out, fmt.Sprintf("Project: %s", project.Root))
	if len(rows) == 0 {
		PrintEmptyState(out, "No channels configured")
		return nil
	}

	table := make([][]string, 0, len(rows))
	for _, row := range rows {
		version := row.Version
		switch {
		case row.Error != "":
			version = "error: " + row.Error
		case version == "":
			version = "(none)"
		}
		table = append(table, []string{row.Channel, row.Kind, version})
	}
	_, _ = fmt.Fprintln(out)
	PrintTable(out, []string{"CHANNEL", "KIND", "VERSION"}, table)
	return nil
}
