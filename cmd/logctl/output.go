package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/phrazzld/loglens/internal/api"
	"gopkg.in/yaml.v3"
)

// summaryWidth wraps long summaries in table output.
const summaryWidth = 80

func renderSubmit(w io.Writer, format string, resp api.SubmitLogsResponse) error {
	if format != outputTable {
		return encode(w, format, resp)
	}
	tw := newTable(w)
	tw.AppendHeader(table.Row{"Task ID", "Status", "Created"})
	tw.AppendRow(table.Row{resp.TaskID, resp.Status, formatTime(resp.Created)})
	tw.Render()
	return nil
}

func renderResult(w io.Writer, format string, res api.AnalysisResultResponse) error {
	if format != outputTable {
		return encode(w, format, res)
	}

	tw := newTable(w)
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: summaryWidth, WidthMaxEnforcer: text.WrapSoft},
	})
	tw.AppendRow(table.Row{"Task ID", res.TaskID})
	tw.AppendRow(table.Row{"Status", res.Status})
	tw.AppendRow(table.Row{"Type", res.Type})
	tw.AppendRow(table.Row{"Created", formatTime(res.Created)})
	if res.Completed != nil {
		tw.AppendRow(table.Row{"Completed", formatTime(*res.Completed)})
		tw.AppendRow(table.Row{"Duration", res.Completed.Sub(res.Created).Round(time.Millisecond)})
	}
	if res.Metrics != nil {
		tw.AppendSeparator()
		tw.AppendRow(table.Row{"Entries", res.Metrics.TotalEntries})
		tw.AppendRow(table.Row{"Errors", res.Metrics.Errors})
		tw.AppendRow(table.Row{"Warnings", res.Metrics.Warnings})
		tw.AppendRow(table.Row{"Critical", res.Metrics.Critical})
	}
	if res.Summary != "" {
		tw.AppendSeparator()
		tw.AppendRow(table.Row{"Summary", res.Summary})
	}
	if res.ErrorMessage != "" {
		tw.AppendSeparator()
		tw.AppendRow(table.Row{"Error", res.ErrorMessage})
	}
	tw.Render()
	return nil
}

func renderHealth(w io.Writer, format string, h api.HealthResponse) error {
	if format != outputTable {
		return encode(w, format, h)
	}
	tw := newTable(w)
	tw.AppendHeader(table.Row{"Status", "Queue", "Workers", "Tasks"})
	tw.AppendRow(table.Row{h.Status, strconv.Itoa(h.QueueLen) + "/" + strconv.Itoa(h.QueueCap), h.Workers, h.Tasks})
	tw.Render()
	return nil
}

func newTable(w io.Writer) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	return tw
}

func encode(w io.Writer, format string, v any) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func formatTime(t time.Time) string {
	return t.Local().Format(time.DateTime)
}
