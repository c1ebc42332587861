package output

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/crateup/pkg/inventory"
	"github.com/matzehuels/crateup/pkg/reconcile"
)

var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorBlue   = lipgloss.Color("75")
	colorPurple = lipgloss.Color("141")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true).Underline(true)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// Headers are the table column titles.
var Headers = []string{"Crate", "Current", "Latest", "Updated", "Source", "Repository"}

const (
	colName = iota
	colInstalled
	colLatest
	colPublished
	colSource
	colRepository
)

// Table renders the report as a bordered terminal table, one row per crate.
// Latest versions are red when an upgrade is available and green when a
// registry crate is current.
func Table(rep *reconcile.Report) string {
	rows := make([][]string, 0, len(rep.Packages))
	for _, e := range rep.Packages {
		rows = append(rows, Row(e))
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(Headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			if row < 0 || row >= len(rep.Packages) {
				return cellStyle
			}
			return cellStyle.Foreground(cellColor(rep.Packages[row], col))
		})

	return t.Render()
}

// Row returns the plain cell values for one entry.
func Row(e reconcile.Entry) []string {
	return []string{e.Name, e.Installed, e.Latest, e.Published, e.Source.String(), e.Repository}
}

func cellColor(e reconcile.Entry, col int) lipgloss.TerminalColor {
	registry := e.Source == inventory.Registry
	switch col {
	case colName:
		return colorBlue
	case colInstalled, colRepository:
		return colorPurple
	case colLatest:
		switch {
		case e.Upgradable:
			return colorRed
		case registry && e.Resolved:
			return colorGreen
		default:
			return colorGray
		}
	case colPublished:
		if e.Published == inventory.Unknown {
			return colorGray
		}
		return colorPurple
	case colSource:
		if registry {
			return colorCyan
		}
		return colorYellow
	}
	return colorGray
}
