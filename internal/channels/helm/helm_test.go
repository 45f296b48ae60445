package helm

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/danieljhkim/release/internal/channel"
	"github.com/danieljhkim/release/internal/manifest"
)

const chartYAML = `# Widget chart
apiVersion: v2
name: widget
description: Deploys the widget service
type: application
version: 0.7.2 # chart version
appVersion: "0.7.2"
dependencies:
  - name: redis
    version: 18.1.0
    repository: https://charts.bitnami.com/bitnami
`

func setupProject(t *testing.T, chart string) string {
	t.Helper()
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, channel.DefaultMarker), []byte(`{"channels": ["helm"]}`), 0644); err != nil {
		t.Fatalf("failed to write marker: %v", err)
	}
	if chart != "" {
		if err := os.WriteFile(filepath.Join(root, manifest.DefaultChart), []byte(chart), 0644); err != nil {
			t.Fatalf("failed to write chart: %v", err)
		}
	}
	return root
}

func newChannel(t *testing.T, root string, appVersion bool) *Channel {
	t.Helper()
	m := manifest.Default([]string{Kind})
	m.Helm.AppVersion = appVersion
	return New(m, channel.WithCwd(root), channel.WithLogger(zap.NewNop()))
}

func readChart(t *testing.T, root string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, manifest.DefaultChart))
	if err != nil {
		t.Fatalf("failed to read chart: %v", err)
	}
	return string(data)
}

func TestChannel_Name(t *testing.T) {
	c := newChannel(t, setupProject(t, chartYAML), false)
	if c.Name() != "helm-chart" || c.Kind() != Kind {
		t.Errorf("Name() = %q, Kind() = %q", c.Name(), c.Kind())
	}
}

func TestChannel_ReadVersion(t *testing.T) {
	tests := []struct {
		name    string
		chart   string
		want    string
		wantErr error
	}{
		{"chart version", chartYAML, "0.7.2", nil},
		{"no chart", "", "", nil},
		{"no version key", "name: widget\n", "", nil},
		{"malformed", "name: [widget\n", "", channel.ErrParse},
		{"not a mapping", "- widget\n", "", channel.ErrParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newChannel(t, setupProject(t, tt.chart), false)
			got, err := c.ReadVersion(context.Background())
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ReadVersion() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ReadVersion() = (%q, %v), want %q", got, err, tt.want)
			}
		})
	}
}

func TestChannel_SetVersion(t *testing.T) {
	root := setupProject(t, chartYAML)
	c := newChannel(t, root, false)

	if outcome := c.SetVersion(context.Background(), "0.8.0", nil); outcome != channel.Changed {
		t.Fatalf("SetVersion = %v, want changed", outcome)
	}

	got := readChart(t, root)
	for _, want := range []string{"# Widget chart", "version: 0.8.0 # chart version", `appVersion: "0.7.2"`, "version: 18.1.0"} {
		if !strings.Contains(got, want) {
			t.Errorf("chart missing %q:\n%s", want, got)
		}
	}
	if strings.Index(got, "name: widget") > strings.Index(got, "version: 0.8.0") {
		t.Errorf("expected key order to be preserved:\n%s", got)
	}
}

func TestChannel_SetVersion_AppVersion(t *testing.T) {
	root := setupProject(t, "name: widget\nversion: 1.0.0\n")
	c := newChannel(t, root, true)

	if outcome := c.SetVersion(context.Background(), "1.10.0", nil); outcome != channel.Changed {
		t.Fatalf("SetVersion = %v, want changed", outcome)
	}

	got := readChart(t, root)
	if !strings.Contains(got, "version: 1.10.0") || !strings.Contains(got, "appVersion: 1.10.0") {
		t.Errorf("unexpected chart:\n%s", got)
	}

	v, err := c.GetVersion(context.Background())
	if err != nil || v != "1.10.0" {
		t.Errorf("GetVersion() = (%q, %v)", v, err)
	}
}

func TestChannel_SetVersion_MissingChart(t *testing.T) {
	c := newChannel(t, setupProject(t, ""), false)

	var doneErr error
	if outcome := c.SetVersion(context.Background(), "1.0.0", func(err error) { doneErr = err }); outcome != channel.Failed {
		t.Fatalf("SetVersion = %v, want failed", outcome)
	}
	if !errors.Is(doneErr, channel.ErrIO) {
		t.Errorf("done error = %v, want ErrIO", doneErr)
	}
}

func TestChannel_ConflictCheck(t *testing.T) {
	tests := []struct {
		name    string
		chart   string
		version string
		want    string
	}{
		{"higher", chartYAML, "0.8.0", ""},
		{"lower", chartYAML, "0.7.1", "version 0.7.1 is lower than current 0.7.2"},
		{"not semver", chartYAML, "v0.8.0", "not a valid semantic version"},
		{"missing chart", "", "1.0.0", "Chart.yaml not found"},
		{"unnamed chart", "version: 0.1.0\n", "1.0.0", "has no chart name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newChannel(t, setupProject(t, tt.chart), false)

			var got error
			c.ConflictCheck(context.Background(), tt.version, func(err error) { got = err })

			if tt.want == "" {
				if got != nil {
					t.Errorf("ConflictCheck() = %v, want nil", got)
				}
				return
			}
			var conflict *channel.ConflictError
			if !errors.As(got, &conflict) || !strings.Contains(conflict.Message, tt.want) {
				t.Errorf("ConflictCheck() = %v, want message containing %q", got, tt.want)
			}
		})
	}
}
