package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/release/internal/channels"
	"github.com/danieljhkim/release/internal/fsops"
	"github.com/danieljhkim/release/internal/manifest"
)

var (
	initChannels []string
	initForce    bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create release.json in the current directory",
	Long: `Create the project manifest in the current directory.

The manifest marks the directory as a project root and lists the channels a
version is released on. Defaults to the channels from the user config.

Channels: npm (package.json), git (annotated tags), cargo (Cargo.toml),
helm (Chart.yaml), github (GitHub releases, needs GITHUB_TOKEN).`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringSliceVar(&initChannels, "channels", nil, "Channels to release on (e.g. npm,git,github)")
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing manifest")
}

func runInit(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	kinds := initChannels
	if len(kinds) == 0 {
		kinds = settings.Channels
	}
	for _, kind := range kinds {
		if !channels.Known(kind) {
			return fmt.Errorf("unknown channel %q (known: %s)", kind, strings.Join(channels.Kinds(), ", "))
		}
	}

	m := manifest.Default(kinds)
	if err := manifest.Validate(m); err != nil {
		return err
	}

	dir, err := workingDir()
	if err != nil {
		return err
	}
	path := filepath.Join(dir, settings.Marker)

	fs := fsops.NewRealFS()
	exists, err := fs.Exists(path)
	if err != nil {
		return fmt.Errorf("failed to check %s: %w", path, err)
	}
	if exists && !initForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := fs.AtomicWrite(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	if jsonOutput {
		return outputJSON(cmd.OutOrStdout(), map[string]interface{}{
			"path":     path,
			"channels": m.Channels,
		})
	}

	out := cmd.OutOrStdout()
	PrintSuccess(out, fmt.Sprintf("Created %s", path))
	if len(m.Channels) == 0 {
		PrintEmptyState(out, "No channels configured")
	} else {
		PrintInfo(out, fmt.Sprintf("Channels: %s", strings.Join(m.Channels, ", ")))
	}
	return nil
}
