package cli

import (
	"fmt"
	"io"
	"strings"

	"apptest/internal/config"
	"apptest/internal/topology"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// OutputFormat represents the output format of the plan command
type OutputFormat string

const (
	OutputFormatTable OutputFormat = "table"
	OutputFormatYAML  OutputFormat = "yaml"
)

// ParseOutputFormat validates s.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case OutputFormatTable, OutputFormatYAML:
		return OutputFormat(s), nil
	}
	return "", fmt.Errorf("unsupported output format %q, must be 'yaml' or 'table'", s)
}

// RenderPlan writes what a run with cfg would start.
func RenderPlan(w io.Writer, cfg config.RunConfig, m topology.Manifest, format OutputFormat) error {
	switch format {
	case OutputFormatYAML:
		data, err := m.Marshal()
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case OutputFormatTable:
		renderRunTable(w, cfg)
		fmt.Fprintln(w)
		renderServiceTable(w, m)
		return nil
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

func renderRunTable(w io.Writer, cfg config.RunConfig) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{header("setting"), header("value")})

	app := cfg.AppPath
	switch {
	case cfg.Bundled:
		app += text.FgHiBlack.Sprint(" (bundled, not mounted)")
	case cfg.PlaceholderApp:
		app += text.FgYellow.Sprint(" (placeholder)")
	}
	screenshots := text.FgHiBlack.Sprint("-")
	if cfg.HasScreenshots() {
		screenshots = cfg.ScreenshotPath
	}

	t.AppendRows([]table.Row{
		{"project", cfg.Project},
		{"network", cfg.Network},
		{"work dir", cfg.WorkDir},
		{"app", app},
		{"app name", cfg.AppName},
		{"browser", string(cfg.Browser)},
		{"notebooks", cfg.Notebooks},
		{"screenshots", screenshots},
		{"runner", cfg.RunnerImage},
		{"engine", string(cfg.Engine)},
		{"ci", fmt.Sprint(cfg.InCI)},
	})
	t.Render()
}

func renderServiceTable(w io.Writer, m topology.Manifest) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{header("service"), header("image"), header("volumes"), header("depends on")})

	for _, name := range m.Names() {
		svc, _ := m.Service(name)
		t.AppendRow(table.Row{name, svc.Image, listCell(svc.Volumes), listCell(svc.DependsOn)})
	}
	t.Render()
}

func header(col string) string {
	return text.FgHiCyan.Sprint(strings.ToUpper(col))
}

func listCell(values []string) string {
	if len(values) == 0 {
		return text.FgHiBlack.Sprint("-")
	}
	return strings.Join(values, "\n")
}
