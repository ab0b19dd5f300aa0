package cli

import (
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vaidya-ai/clinicalmap/pkg/clinical"
	"github.com/vaidya-ai/clinicalmap/pkg/textfmt"
	"github.com/vaidya-ai/clinicalmap/pkg/view"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNeighborStyle = lipgloss.NewStyle().Foreground(colorGreen)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	detailBoxStyle    = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorDim).
				Padding(0, 1).
				Width(60)
)

// typeColors matches the node colours of the SVG palette as closely as a
// 256-colour terminal allows.
var typeColors = map[clinical.NodeType]lipgloss.Color{
	clinical.TypeMain:         colorBlue,
	clinical.TypeCategory:     colorGray,
	clinical.TypeSymptom:      colorYellow,
	clinical.TypeDiagnosis:    lipgloss.Color("141"),
	clinical.TypeTreatment:    colorGreen,
	clinical.TypeComplication: colorRed,
}

// =============================================================================
// MapViewModel - Interactive map browser
// =============================================================================

// MapViewModel is the bubbletea model for browsing a laid-out map. Moving
// the cursor hovers a node and enter toggles its selection, the same
// interaction the SVG script offers in a browser.
type MapViewModel struct {
	Title  string
	Layout clinical.Layout
	State  view.State
	Cursor int
	Height int
	Offset int

	// Save is set when the user asked to write the current view to SVG.
	Save bool
}

// NewMapViewModel creates a map view model with the cursor on the first node.
func NewMapViewModel(title string, l clinical.Layout) MapViewModel {
	m := MapViewModel{Title: title, Layout: l, Height: 20}
	m.hoverCursor()
	return m
}

func (m MapViewModel) Init() tea.Cmd {
	return nil
}

func (m MapViewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
			m.hoverCursor()
		case "down", "j":
			if m.Cursor < len(m.Layout.DisplayNodes)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
			m.hoverCursor()
		case "enter", " ":
			if n, ok := m.current(); ok {
				m.State.Click(n.ID)
			}
		case "esc":
			m.State.Reset()
			m.hoverCursor()
		case "s":
			m.Save = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 12
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m *MapViewModel) hoverCursor() {
	if n, ok := m.current(); ok {
		m.State.Hover(n.ID)
	}
}

func (m MapViewModel) current() (clinical.Node, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.Layout.DisplayNodes) {
		return clinical.Node{}, false
	}
	return m.Layout.DisplayNodes[m.Cursor], true
}

func (m MapViewModel) View() string {
	var b strings.Builder

	title := m.Title
	if title == "" {
		title = "Concept Map"
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  esc clear  s save svg  q quit"))
	b.WriteString("\n\n")

	if len(m.Layout.DisplayNodes) == 0 {
		b.WriteString(listDimStyle.Render("  (empty map)"))
		b.WriteString("\n")
		return b.String()
	}

	active := m.State.Active()
	neighbors := m.Layout.Neighbors(active)

	end := min(m.Offset+m.Height, len(m.Layout.DisplayNodes))
	for i := m.Offset; i < end; i++ {
		n := m.Layout.DisplayNodes[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		marker := " "
		if n.ID == m.State.Selected {
			marker = "●"
		}

		indent := ""
		switch {
		case n.Type == clinical.TypeCategory:
			indent = "  "
		case n.Type.IsDetail():
			indent = "    "
		}

		typeTag := lipgloss.NewStyle().Foreground(typeColors[n.Type]).Render(fmt.Sprintf("%-12s", n.Type))
		line := fmt.Sprintf("%s%s %s%s", cursor, marker, indent, n.Label)

		switch {
		case n.ID == active:
			line = listSelectedStyle.Render(line)
		case slices.Contains(neighbors, n.ID):
			line = listNeighborStyle.Render(line)
		case active != "":
			line = listDimStyle.Render(line)
		default:
			line = listNormalStyle.Render(line)
		}
		b.WriteString(typeTag + " " + line + "\n")
	}

	b.WriteString("\n")
	b.WriteString(detailBoxStyle.Render(m.detail()))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Layout.DisplayNodes))))

	return b.String()
}

// detail describes the active node and its connections.
func (m MapViewModel) detail() string {
	n, ok := m.State.ActiveNode(m.Layout)
	if !ok {
		return listDimStyle.Render("Hover a node to see its description")
	}
	if n.Description == "" {
		return listDimStyle.Render("No description") + m.connectionSummary(n.ID)
	}
	return StyleValue.Render(n.Label) + "\n" + textfmt.FormatForDisplay(n.Description, false) + m.connectionSummary(n.ID)
}

func (m MapViewModel) connectionSummary(id string) string {
	idx := m.Layout.Index()
	var labels []string
	for _, nid := range m.Layout.Neighbors(id) {
		labels = append(labels, idx[nid].Label)
	}
	if len(labels) == 0 {
		return ""
	}
	return "\n" + StyleDim.Render("Connected: "+strings.Join(labels, ", "))
}
