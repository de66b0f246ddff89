// Package picker is a terminal UI for choosing where to insert a column.
package picker

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"colshift/internal/column"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrAborted is returned by Run when the user quits without choosing.
var ErrAborted = errors.New("column selection aborted")

type state int

const (
	stateSelect state = iota
	stateConfirm
	stateChosen
	stateAborted
)

// UIConfig represents UI configuration settings
type UIConfig struct {
	ColumnsPerRow int
	RowsPerPage   int
}

// slot is one insertion point: the column a new column would be placed at.
type slot struct {
	index  int
	label  string
	header string
}

type model struct {
	slots []slot
	state state

	// Grid navigation
	page         int
	row          int
	col          int
	colsPerRow   int
	rowsPerPage  int
	itemsPerPage int

	width int

	titleStyle    lipgloss.Style
	selectedStyle lipgloss.Style
	normalStyle   lipgloss.Style
	endStyle      lipgloss.Style
	helpStyle     lipgloss.Style
}

func newModel(headers []string, cfg UIConfig) (model, error) {
	if cfg.ColumnsPerRow < 1 || cfg.RowsPerPage < 1 {
		return model{}, fmt.Errorf("invalid grid %dx%d", cfg.ColumnsPerRow, cfg.RowsPerPage)
	}

	slots := make([]slot, 0, len(headers)+1)
	for i := 0; i <= len(headers); i++ {
		label, err := column.ToLabel(i)
		if err != nil {
			return model{}, err
		}
		header := "(end)"
		if i < len(headers) {
			header = headers[i]
		}
		slots = append(slots, slot{index: i, label: label, header: header})
	}

	return model{
		slots:        slots,
		state:        stateSelect,
		colsPerRow:   cfg.ColumnsPerRow,
		rowsPerPage:  cfg.RowsPerPage,
		itemsPerPage: cfg.ColumnsPerRow * cfg.RowsPerPage,
		width:        80,

		titleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")),
		selectedStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Background(lipgloss.Color("235")).
			Padding(0, 1),
		normalStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Padding(0, 1),
		endStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true).
			Padding(0, 1),
		helpStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
	}, nil
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tea.KeyMsg:
		switch m.state {
		case stateSelect:
			return m.updateSelect(msg)
		case stateConfirm:
			return m.updateConfirm(msg)
		}
	}
	return m, nil
}

func (m model) updateSelect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.state = stateAborted
		return m, tea.Quit

	case "up", "k":
		if m.row > 0 {
			m.row--
		}

	case "down", "j":
		if m.current()+m.colsPerRow < len(m.slots) && m.row < m.rowsPerPage-1 {
			m.row++
		}

	case "left", "h":
		if m.col > 0 {
			m.col--
		} else if m.page > 0 {
			// Previous pages are always full.
			m.page--
			m.row, m.col = m.rowsPerPage-1, m.colsPerRow-1
		}

	case "right", "l":
		if m.current()+1 >= len(m.slots) {
			break
		}
		switch {
		case m.col < m.colsPerRow-1:
			m.col++
		case m.row < m.rowsPerPage-1:
			m.row++
			m.col = 0
		default:
			m.page++
			m.row, m.col = 0, 0
		}

	case "enter":
		m.state = stateConfirm
	}
	return m, nil
}

func (m model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.state = stateAborted
		return m, tea.Quit
	case "y", "enter":
		m.state = stateChosen
		return m, tea.Quit
	case "n", "esc":
		m.state = stateSelect
	}
	return m, nil
}

func (m model) current() int {
	return m.page*m.itemsPerPage + m.row*m.colsPerRow + m.col
}

func (m model) View() string {
	switch m.state {
	case stateSelect:
		return m.viewSelect()
	case stateConfirm:
		return m.viewConfirm()
	}
	return ""
}

func (m model) viewSelect() string {
	var b strings.Builder

	b.WriteString(m.titleStyle.Render("Insert a new column at:"))
	b.WriteString("\n\n")

	totalPages := int(math.Ceil(float64(len(m.slots)) / float64(m.itemsPerPage)))
	b.WriteString(m.helpStyle.Render(fmt.Sprintf("Page %d/%d", m.page+1, totalPages)))
	b.WriteString("\n\n")

	cellWidth := (m.width - 4) / m.colsPerRow
	if cellWidth < 10 {
		cellWidth = 10
	}

	for row := 0; row < m.rowsPerPage; row++ {
		var items []string
		for col := 0; col < m.colsPerRow; col++ {
			idx := m.page*m.itemsPerPage + row*m.colsPerRow + col
			if idx >= len(m.slots) {
				break
			}

			s := m.slots[idx]
			text := fmt.Sprintf("%s: %s", s.label, s.header)
			if len(text) > cellWidth-2 {
				text = text[:cellWidth-5] + "..."
			}
			text = fmt.Sprintf("%-*s", cellWidth-2, text)

			style := m.normalStyle
			if idx == len(m.slots)-1 {
				style = m.endStyle
			}
			if row == m.row && col == m.col {
				style = m.selectedStyle
			}
			items = append(items, style.Render(text))
		}
		if len(items) > 0 {
			b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, items...))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.helpStyle.Render("↑↓←→: navigate | Enter: select | q: quit"))
	return b.String()
}

func (m model) viewConfirm() string {
	s := m.slots[m.current()]

	var b strings.Builder
	b.WriteString(m.titleStyle.Render(fmt.Sprintf("Insert a new column at %s?", s.label)))
	b.WriteString("\n\n")
	if s.index < len(m.slots)-1 {
		b.WriteString(fmt.Sprintf("%q and everything right of it moves one column right.\n\n", s.header))
	}
	b.WriteString(m.helpStyle.Render("y/n to confirm, Esc to go back"))
	return b.String()
}

// Run shows the header cells of a sheet and returns the zero-based column
// index the user picked. The slot after the last header appends a column.
func Run(headers []string, cfg UIConfig) (int, error) {
	m, err := newModel(headers, cfg)
	if err != nil {
		return -1, err
	}

	finalModel, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return -1, fmt.Errorf("error running TUI: %w", err)
	}

	final := finalModel.(model)
	if final.state != stateChosen {
		return -1, ErrAborted
	}
	return final.slots[final.current()].index, nil
}
