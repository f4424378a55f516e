// Package tui provides interactive terminal UI components.
package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	defaultListWidth  = 64
	defaultListHeight = 18
)

var runProgram = func(m tea.Model) (tea.Model, error) {
	return tea.NewProgram(m).Run()
}

// SelectionAction represents the user's action in the selection UI.
type SelectionAction int

const (
	// ActionNone indicates no action was taken.
	ActionNone SelectionAction = iota
	// ActionSelected indicates the user picked a column.
	ActionSelected
	// ActionSkipped indicates the user skipped the pick.
	ActionSkipped
	// ActionStopped indicates the user stopped processing entirely.
	ActionStopped
)

// ColumnChoice is a candidate column offered to the user, with a sample
// value from the first data row for context.
type ColumnChoice struct {
	Header string
	Sample string
}

// SelectionResult holds the result of a column pick.
type SelectionResult struct {
	Action SelectionAction
	Column string
}

type columnItem struct {
	ColumnChoice
}

func (i columnItem) Title() string       { return i.Header }
func (i columnItem) FilterValue() string { return i.Header }
func (i columnItem) Description() string { return i.Sample }

type itemStyles struct {
	normal      lipgloss.Style
	selected    lipgloss.Style
	headerStyle lipgloss.Style
	sampleStyle lipgloss.Style
}

func newItemStyles() itemStyles {
	asciiBorder := lipgloss.Border{
		Top:         "-",
		Bottom:      "-",
		Left:        "|",
		Right:       "|",
		TopLeft:     "+",
		TopRight:    "+",
		BottomLeft:  "+",
		BottomRight: "+",
	}

	container := lipgloss.NewStyle().
		Border(asciiBorder).
		BorderForeground(lipgloss.Color("62")).
		Padding(0, 1).
		Foreground(lipgloss.Color("252"))

	selected := container.Copy().
		BorderForeground(lipgloss.Color("214")).
		Foreground(lipgloss.Color("230")).
		Background(lipgloss.Color("237"))

	return itemStyles{
		normal:   container,
		selected: selected,
		headerStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("254")),
		sampleStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("247")).
			Faint(true),
	}
}

type columnDelegate struct {
	styles itemStyles
}

func newDelegate() columnDelegate {
	return columnDelegate{styles: newItemStyles()}
}

func (d columnDelegate) Height() int                         { return 4 }
func (d columnDelegate) Spacing() int                        { return 1 }
func (d columnDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }

func (d columnDelegate) Render(w io.Writer, m list.Model, idx int, item list.Item) {
	choice, ok := item.(columnItem)
	if !ok {
		return
	}

	sample := choice.Sample
	if sample == "" {
		sample = "(empty in first row)"
	}
	sample = truncate(sample, m.Width()-4)

	headerLine := d.styles.headerStyle.Render(choice.Header)
	sampleLine := d.styles.sampleStyle.Render(sample)
	content := lipgloss.JoinVertical(lipgloss.Left, headerLine, sampleLine)

	container := d.styles.normal
	if idx == m.Index() {
		container = d.styles.selected
	}
	_, _ = fmt.Fprint(w, container.Render(content))
}

type model struct {
	list   list.Model
	field  string
	result SelectionResult
}

func newModel(field string, choices []ColumnChoice) *model {
	listItems := make([]list.Item, len(choices))
	for i, choice := range choices {
		listItems[i] = columnItem{ColumnChoice: choice}
	}

	delegate := newDelegate()
	l := list.New(listItems, delegate, defaultListWidth, defaultListHeight)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.SetShowTitle(false)
	l.SetShowPagination(false)
	l.DisableQuitKeybindings()
	l.Styles.NoItems = lipgloss.NewStyle()

	return &model{
		list:  l,
		field: field,
		result: SelectionResult{
			Action: ActionNone,
		},
	}
}

func (m *model) Init() tea.Cmd { return nil }

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			if selected, ok := m.list.SelectedItem().(columnItem); ok {
				m.result = SelectionResult{
					Action: ActionSelected,
					Column: selected.Header,
				}
				return m, tea.Quit
			}
		case "s", "esc":
			m.result = SelectionResult{Action: ActionSkipped}
			return m, tea.Quit
		case "ctrl+c", "q":
			m.result = SelectionResult{Action: ActionStopped}
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		width := clamp(defaultListWidth, msg.Width-4, 40)
		height := clamp(defaultListHeight, msg.Height-6, 5)
		m.list.SetSize(width, height)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *model) View() string {
	header := headerStyle.Render(fmt.Sprintf("Could not detect the %s column. Pick one:", m.field))
	listView := m.list.View()
	buttons := lipgloss.JoinHorizontal(
		lipgloss.Left,
		skipButtonStyle.Render(" Skip "),
		lipgloss.NewStyle().Padding(0, 2).Render(""),
		stopButtonStyle.Render(" Stop Processing "),
	)
	help := helpStyle.Render("Up/Down navigate | Enter select | s skip | q stop")
	return lipgloss.JoinVertical(lipgloss.Left, header, listView, buttons, help)
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214")).
			MarginBottom(1)

	skipButtonStyle = lipgloss.NewStyle().
			MarginTop(1).
			Padding(0, 2).
			Background(lipgloss.Color("178")).
			Foreground(lipgloss.Color("0")).
			Bold(true)

	stopButtonStyle = lipgloss.NewStyle().
			MarginTop(1).
			Padding(0, 2).
			Background(lipgloss.Color("161")).
			Foreground(lipgloss.Color("230")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			MarginTop(1).
			Foreground(lipgloss.Color("244"))
)

// SelectColumn presents an interactive picker over the export's headers
// so the user can map a field the detection heuristics missed.
func SelectColumn(field string, choices []ColumnChoice) (SelectionResult, error) {
	if len(choices) == 0 {
		return SelectionResult{Action: ActionSkipped}, nil
	}

	m := newModel(field, choices)
	finalModel, err := runProgram(m)
	if err != nil {
		return SelectionResult{}, err
	}

	if typed, ok := finalModel.(*model); ok {
		return typed.result, nil
	}

	return SelectionResult{}, fmt.Errorf("unexpected program result")
}

func truncate(value string, width int) string {
	value = strings.Join(strings.Fields(value), " ")
	if width <= 0 || len(value) <= width {
		return value
	}
	if width <= 3 {
		return value[:width]
	}
	return value[:width-3] + "..."
}

func clamp(defaultValue, available, minimum int) int {
	width := defaultValue
	if available > 0 && available < defaultValue {
		width = available
	}
	if width < minimum {
		width = minimum
	}
	return width
}
