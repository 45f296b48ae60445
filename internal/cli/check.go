package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/release/internal/channel"
)

var checkChannels []string

var checkCmd = &cobra.Command{
	Use:   "check <version>",
	Short: "Check whether a version can be released",
	Long: `Ask every configured channel whether <version> can be released.

Fails when any channel reports a conflict, e.g. an existing tag or a version
lower than the published one.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringSliceVarP(&checkChannels, "channel", "c", nil, "Only check these channels")
}

// checkResult is one channel's conflict verdict.
type checkResult struct {
	Channel  string `json:"channel"`
	Conflict string `json:"conflict,omitempty"`
}

// conflictsError reports how many channels refused a version.
type conflictsError struct {
	version string
	count   int
}

func (e *conflictsError) Error() string {
	return fmt.Sprintf("cannot release %s: %s", e.version, PrintCount(e.count, "conflict", "conflicts"))
}

func (e *conflictsError) Unwrap() error {
	return channel.ErrConflict
}

// checkAll runs the conflict check of every channel in order.
func checkAll(ctx context.Context, chans []channel.Channel, version string) ([]checkResult, error) {
	results := make([]checkResult, 0, len(chans))
	conflicts := 0
	for _, ch := range chans {
		result := checkResult{Channel: ch.Name()}
		if err := conflictCheck(ctx, ch, version); err != nil {
			var conflict *channel.ConflictError
			if !errors.As(err, &conflict) {
				return results, fmt.Errorf("%s: %w", ch.Name(), err)
			}
			result.Conflict = conflict.Message
			conflicts++
		}
		results = append(results, result)
	}

	if conflicts > 0 {
		return results, &conflictsError{version: version, count: conflicts}
	}
	return results, nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	version := args[0]
	project, err := openProject(cmd, checkChannels)
	if err != nil {
		return err
	}

	results, err := checkAll(cmd.Context(), project.Channels, version)

	if jsonOutput {
		if jerr := outputJSON(cmd.OutOrStdout(), map[string]interface{}{
			"version":  version,
			"channels": results,
		}); jerr != nil {
			return jerr
		}
		return err
	}

	out := cmd.OutOrStdout()
	printCheckResults(out, results)
	if err == nil {
		PrintSuccess(out, fmt.Sprintf("%s can be released on %s", version, PrintCount(len(results), "channel", "channels")))
	}
	return err
}
