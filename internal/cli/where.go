package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/release/internal/channel"
)

var whereCmd = &cobra.Command{
	Use:   "root",
	Short: "Print the project root",
	Long: `Print the nearest directory at or above the current one that holds the
project manifest.`,
	Args: cobra.NoArgs,
	RunE: runWhere,
}

func runWhere(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	log, err := newLogger(cmd, settings)
	if err != nil {
		return err
	}

	base := channel.New("release", nil,
		channel.WithCwd(workDir),
		channel.WithMarker(settings.Marker),
		channel.WithLogger(log),
	)
	root, ok := base.Root()
	if !ok {
		return fmt.Errorf("%w: no %s in %s or any parent directory", channel.ErrNoRoot, settings.Marker, base.Cwd())
	}

	if jsonOutput {
		return outputJSON(cmd.OutOrStdout(), map[string]string{"root": root})
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), root)
	return nil
}
