package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/crateup/pkg/reconcile"
)

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// PickerModel - Interactive selection of crates to reinstall
// =============================================================================

// PickerModel is the bubbletea model for choosing which upgradable crates to
// reinstall. Every crate starts checked.
type PickerModel struct {
	Entries   []reconcile.Entry
	Checked   []bool
	Cursor    int
	Height    int
	Offset    int
	Confirmed bool
}

// NewPickerModel creates a picker over the given candidates.
func NewPickerModel(entries []reconcile.Entry) PickerModel {
	checked := make([]bool, len(entries))
	for i := range checked {
		checked[i] = true
	}
	return PickerModel{Entries: entries, Checked: checked, Height: 15}
}

// Selected returns the names of the checked crates, or nil if the picker
// was dismissed without confirming.
func (m PickerModel) Selected() []string {
	if !m.Confirmed {
		return nil
	}
	var names []string
	for i, e := range m.Entries {
		if m.Checked[i] {
			names = append(names, e.Name)
		}
	}
	return names
}

func (m PickerModel) Init() tea.Cmd {
	return nil
}

func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Entries)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case " ", "x":
			if len(m.Entries) > 0 {
				m.Checked = toggled(m.Checked, m.Cursor)
			}
		case "a":
			all := !allChecked(m.Checked)
			checked := make([]bool, len(m.Checked))
			for i := range checked {
				checked[i] = all
			}
			m.Checked = checked
		case "enter":
			m.Confirmed = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
	}
	return m, nil
}

func (m PickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select crates to update"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  space toggle  a all  ⏎ update  q cancel"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Entries))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		e := m.Entries[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		box := "[ ]"
		if m.Checked[i] {
			box = "[x]"
		}
		rows = append(rows, []string{cursor + box, e.Name, e.Installed, e.Latest, e.Published})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Crate", "Current", "Latest", "Updated").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.Entries) {
				return lipgloss.NewStyle()
			}
			switch {
			case idx == m.Cursor:
				return listSelectedStyle
			case m.Checked[idx]:
				return listNormalStyle
			default:
				return listDimStyle
			}
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  %d of %d selected", countChecked(m.Checked), len(m.Entries))))

	return b.String()
}

func toggled(checked []bool, i int) []bool {
	out := make([]bool, len(checked))
	copy(out, checked)
	out[i] = !out[i]
	return out
}

func allChecked(checked []bool) bool {
	return countChecked(checked) == len(checked)
}

func countChecked(checked []bool) int {
	n := 0
	for _, c := range checked {
		if c {
			n++
		}
	}
	return n
}

// pickCrates runs the picker on the terminal and returns the chosen names.
func pickCrates(ctx context.Context, candidates []reconcile.Entry) ([]string, error) {
	p := tea.NewProgram(NewPickerModel(candidates), tea.WithContext(ctx), tea.WithOutput(os.Stderr))
	final, err := p.Run()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	return final.(PickerModel).Selected(), nil
}
