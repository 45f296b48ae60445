package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/danieljhkim/release/internal/channel"
	"github.com/danieljhkim/release/internal/channels"
	"github.com/danieljhkim/release/internal/channels/ghrelease"
	"github.com/danieljhkim/release/internal/config"
	"github.com/danieljhkim/release/internal/logging"
)

// loadSettings reads user settings from the default config location.
func loadSettings() (config.Settings, error) {
	paths, err := config.DefaultPaths()
	if err != nil {
		return config.Settings{}, fmt.Errorf("failed to get config paths: %w", err)
	}
	settings, err := config.Load(paths.Config)
	if err != nil {
		return config.Settings{}, err
	}
	if verbose {
		settings.LogLevel = "debug"
	}
	return settings, nil
}

// newLogger builds the logger channels report through, on the command's
// error stream.
func newLogger(cmd *cobra.Command, settings config.Settings) (*zap.Logger, error) {
	return logging.New(logging.Config{
		Level:    settings.LogLevel,
		Output:   cmd.ErrOrStderr(),
		FilePath: settings.LogFile,
	})
}

// openProject resolves the project around the working directory and opens
// its channels, restricted to only when given.
func openProject(cmd *cobra.Command, only []string) (*channels.Project, error) {
	settings, err := loadSettings()
	if err != nil {
		return nil, err
	}
	log, err := newLogger(cmd, settings)
	if err != nil {
		return nil, err
	}

	return channels.Open(channels.Options{
		Cwd:      workDir,
		Marker:   settings.Marker,
		Fallback: settings.Channels,
		Only:     only,
		Env: channels.Env{
			GitHub: ghrelease.Config{Token: settings.GitHubToken},
		},
		Logger: log,
	})
}

// await runs op and blocks until it calls done. Hooks without cancellation
// support may keep running after ctx ends.
func await(ctx context.Context, op func(done func(error))) error {
	result := make(chan error, 1)
	op(func(err error) {
		result <- err
	})

	// A synchronous answer wins over an expired deadline.
	select {
	case err := <-result:
		return err
	default:
	}

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// setVersion runs SetVersion on ch and waits for its completion.
func setVersion(ctx context.Context, ch channel.Channel, version string) (channel.Outcome, error) {
	var outcome channel.Outcome
	err := await(ctx, func(done func(error)) {
		outcome = ch.SetVersion(ctx, version, done)
	})
	if err != nil {
		return channel.Failed, err
	}
	return outcome, nil
}

// conflictCheck runs ConflictCheck on ch and waits for its verdict.
func conflictCheck(ctx context.Context, ch channel.Channel, version string) error {
	return await(ctx, func(done func(error)) {
		ch.ConflictCheck(ctx, version, done)
	})
}

// FormatError formats an error for display.
func FormatError(err error) string {
	return errorColor.Sprintf("Error: %v", err)
}

// outputJSON writes a value as indented JSON.
func outputJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// workingDir returns the -C directory or the process working directory.
func workingDir() (string, error) {
	if workDir != "" {
		return workDir, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}
	return cwd, nil
}
