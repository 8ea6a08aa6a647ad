package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type settingRow struct {
	Section string
	Key     string
	Value   string
}

// renderSettings lays out configuration rows grouped by section, leaving the
// section cell empty on repeats.
func renderSettings(rows []settingRow) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Section", "Setting", "Value"})

	previous := ""
	for _, row := range rows {
		section := row.Section
		if section == previous {
			section = ""
		} else {
			previous = row.Section
		}
		value := row.Value
		if value == "" {
			value = "(unset)"
		}
		tw.AppendRow(table.Row{section, row.Key, value})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 2, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 3, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}
