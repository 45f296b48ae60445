package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/release/internal/channel"
	"github.com/danieljhkim/release/internal/config"
	"github.com/danieljhkim/release/internal/lock"
)

var (
	setChannels []string
	setForce    bool
	setTimeout  time.Duration
)

var setCmd = &cobra.Command{
	Use:   "set <version>",
	Short: "Release a version on every channel",
	Long: `Set <version> on every configured channel.

All channels are checked for conflicts first; any conflict aborts the release
before a single channel is touched. Channels already at <version> are left
alone. A failing channel does not stop the others. Only one release of a
project runs at a time.`,
	Args: cobra.ExactArgs(1),
	RunE: runSet,
}

func init() {
	setCmd.Flags().StringSliceVarP(&setChannels, "channel", "c", nil, "Only release on these channels")
	setCmd.Flags().BoolVarP(&setForce, "force", "f", false, "Skip conflict checks")
	setCmd.Flags().DurationVar(&setTimeout, "timeout", 2*time.Minute, "Give up waiting for channels after this long")
}

// setResult is one channel's outcome.
type setResult struct {
	Channel string `json:"channel"`
	Outcome string `json:"outcome"`
	Error   string `json:"error,omitempty"`
}

// setAll sets version on every channel in order and reports whether any
// failed.
func setAll(ctx context.Context, chans []channel.Channel, version string) ([]setResult, int) {
	results := make([]setResult, 0, len(chans))
	failed := 0
	for _, ch := range chans {
		outcome, err := setVersion(ctx, ch, version)
		result := setResult{Channel: ch.Name(), Outcome: outcome.String()}
		if err != nil {
			result.Outcome = channel.Failed.String()
			result.Error = err.Error()
			failed++
		}
		results = append(results, result)
	}
	return results, failed
}

func runSet(cmd *cobra.Command, args []string) error {
	version := args[0]
	project, err := openProject(cmd, setChannels)
	if err != nil {
		return err
	}

	paths, err := config.DefaultPaths()
	if err != nil {
		return fmt.Errorf("failed to get config paths: %w", err)
	}
	fl, err := lock.Acquire(filepath.Join(paths.Root, "locks"), project.Root)
	if err != nil {
		return err
	}
	defer lock.Release(fl)

	ctx, cancel := context.WithTimeout(cmd.Context(), setTimeout)
	defer cancel()

	out := cmd.OutOrStdout()
	if !setForce {
		checks, err := checkAll(ctx, project.Channels, version)
		if err != nil {
			if jsonOutput {
				if jerr := outputJSON(out, map[string]interface{}{
					"version":   version,
					"conflicts": checks,
				}); jerr != nil {
					return jerr
				}
			} else {
				printCheckResults(out, checks)
			}
			return err
		}
	}

	results, failed := setAll(ctx, project.Channels, version)

	var runErr error
	if failed > 0 {
		runErr = fmt.Errorf("%w: %s of %d failed", channel.ErrVersionSet,
			PrintCount(failed, "channel", "channels"), len(results))
	}

	if jsonOutput {
		if err := outputJSON(out, map[string]interface{}{
			"version":  version,
			"channels": results,
		}); err != nil {
			return err
		}
		return runErr
	}

	printSetResults(out, version, results)
	return runErr
}

func printCheckResults(w io.Writer, results []checkResult) {
	for _, r := range results {
		if r.Conflict != "" {
			PrintError(w, fmt.Sprintf("%s: %s", r.Channel, r.Conflict))
		} else {
			PrintSuccess(w, fmt.Sprintf("%s: ok", r.Channel))
		}
	}
}

func printSetResults(w io.Writer, version string, results []setResult) {
	if len(results) == 0 {
		PrintEmptyState(w, "No channels configured")
		return
	}
	for _, r := range results {
		switch r.Outcome {
		case channel.Changed.String():
			PrintSuccess(w, fmt.Sprintf("%s: set to %s", r.Channel, version))
		case channel.Unchanged.String():
			PrintInfo(w, fmt.Sprintf("  %s: already at %s", r.Channel, version))
		default:
			PrintError(w, fmt.Sprintf("%s: %s", r.Channel, strings.TrimSpace(r.Error)))
		}
	}
}
