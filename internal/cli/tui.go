package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/flowtower/pkg/identity"
	"github.com/matzehuels/flowtower/pkg/pipeline"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// EntityPickerModel is the bubbletea model for choosing a focus entity.
// Typing narrows the list by substring; the arrow keys move the cursor.
type EntityPickerModel struct {
	Dir      *pipeline.Directory
	Query    string
	Matches  []identity.ID
	Cursor   int
	Offset   int
	Height   int
	Selected *identity.ID
}

// NewEntityPickerModel creates a picker over every entity in dir.
func NewEntityPickerModel(dir *pipeline.Directory) EntityPickerModel {
	return EntityPickerModel{
		Dir:     dir,
		Matches: dir.Entities(),
		Height:  15,
	}
}

func (m EntityPickerModel) Init() tea.Cmd {
	return nil
}

func (m EntityPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyUp:
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case tea.KeyDown:
			if m.Cursor < len(m.Matches)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case tea.KeyEnter:
			if len(m.Matches) == 0 {
				return m, nil
			}
			id := m.Matches[m.Cursor]
			m.Selected = &id
			return m, tea.Quit
		case tea.KeyBackspace:
			if m.Query != "" {
				r := []rune(m.Query)
				m = m.filter(string(r[:len(r)-1]))
			}
		case tea.KeySpace:
			m = m.filter(m.Query + " ")
		case tea.KeyRunes:
			m = m.filter(m.Query + string(msg.Runes))
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
	}
	return m, nil
}

// filter replaces the query and resets the cursor.
func (m EntityPickerModel) filter(query string) EntityPickerModel {
	m.Query = query
	m.Matches = m.Dir.Search(query)
	m.Cursor = 0
	m.Offset = 0
	return m
}

func (m EntityPickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Focus Entity"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("type to filter  ↑/↓ navigate  ⏎ select  esc quit"))
	b.WriteString("\n\n")
	b.WriteString(markInfo.icon() + " " + StyleValue.Render(m.Query) + listSelectedStyle.Render("▏"))
	b.WriteString("\n")

	if len(m.Matches) == 0 {
		b.WriteString("\n")
		b.WriteString(StyleWarning.Render("No entity matches " + strconv.Quote(m.Query)))
		if s := m.Dir.Suggest(m.Query, pipeline.DefaultSuggestions); len(s) > 0 {
			b.WriteString("\n")
			b.WriteString(listDimStyle.Render("did you mean: " + joinIDs(s)))
		}
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Matches))
	rows := make([][]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		id := m.Matches[i]
		rows = append(rows, []string{cursor, id.String(), strconv.Itoa(len(m.Dir.Counterparties(id.String())))})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Entity", "Counterparties").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if m.Offset+row == m.Cursor {
				return listSelectedStyle
			}
			if col == 2 {
				return listDimStyle
			}
			return StyleValue
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Matches))))
	return b.String()
}

// pickEntity runs the picker on stderr and returns the chosen entity.
// ok is false when the user quit without choosing.
func pickEntity(ctx context.Context, dir *pipeline.Directory) (identity.ID, bool, error) {
	p := tea.NewProgram(NewEntityPickerModel(dir), tea.WithContext(ctx), tea.WithOutput(os.Stderr))
	final, err := p.Run()
	if err != nil {
		return identity.ID{}, false, fmt.Errorf("entity picker: %w", err)
	}
	m, ok := final.(EntityPickerModel)
	if !ok || m.Selected == nil {
		return identity.ID{}, false, nil
	}
	return *m.Selected, true, nil
}

func joinIDs(ids []identity.ID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, ", ")
}
