package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/safetree/pkg/safetree"
)

// previewWidth caps the value column of the match picker.
const previewWidth = 48

var listDimStyle = lipgloss.NewStyle().Foreground(colorDim)

// =============================================================================
// MatchListModel - Interactive locate results
// =============================================================================

// Match is one located path and the safe tree node found there.
type Match struct {
	Path  string
	Value any
}

// MatchListModel is the bubbletea model for picking one located path.
type MatchListModel struct {
	Needle   string
	Matches  []Match
	Cursor   int
	Selected *Match
	Height   int
	Offset   int
}

// NewMatchListModel creates a picker over the matches of res. Paths whose
// node cannot be resolved are shown without a preview.
func NewMatchListModel(needle string, res *safetree.Result) MatchListModel {
	matches := make([]Match, len(res.Matches))
	for i, p := range res.Matches {
		v, _ := res.Lookup(p)
		matches[i] = Match{Path: p, Value: v}
	}
	return MatchListModel{Needle: needle, Matches: matches, Height: 15}
}

func (m MatchListModel) Init() tea.Cmd {
	return nil
}

func (m MatchListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.Matches)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Matches) == 0 {
				return m, nil
			}
			sel := m.Matches[m.Cursor]
			m.Selected = &sel
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
	}
	return m, nil
}

func (m MatchListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(fmt.Sprintf("Paths containing %q", m.Needle)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	if len(m.Matches) == 0 {
		b.WriteString(listDimStyle.Render("  no matches"))
		b.WriteString("\n")
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Matches))
	rows := make([][]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, displayPath(m.Matches[i].Path), preview(m.Matches[i].Value)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Path", "Value").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.Matches) {
				return lipgloss.NewStyle()
			}
			base := lipgloss.NewStyle()
			if col == 2 && isMarker(m.Matches[idx].Value) {
				base = StyleMarker
			}
			if idx == m.Cursor {
				if col == 2 {
					return base.Bold(true)
				}
				return base.Foreground(colorCyan).Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Matches))))

	return b.String()
}

// =============================================================================
// Helpers
// =============================================================================

// displayPath names the root, whose path is empty.
func displayPath(p string) string {
	if p == "" {
		return "(root)"
	}
	return p
}

// preview renders a safe tree node as a short single-line string.
func preview(v any) string {
	var s string
	switch n := v.(type) {
	case *safetree.Object:
		s = fmt.Sprintf("{%d keys}", n.Len())
	case []any:
		s = fmt.Sprintf("[%d items]", len(n))
	case *safetree.ErrorNode:
		s = "error: " + n.Message
	default:
		data, err := json.Marshal(n)
		if err != nil {
			s = fmt.Sprint(n)
		} else {
			s = string(data)
		}
	}
	if r := []rune(s); len(r) > previewWidth {
		s = string(r[:previewWidth-1]) + "…"
	}
	return s
}

func isMarker(v any) bool {
	s, ok := v.(string)
	return ok && (s == safetree.MarkerMaxDepth || strings.HasPrefix(s, safetree.MarkerRefPrefix))
}
