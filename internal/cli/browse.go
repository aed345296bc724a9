package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	pio "github.com/matzehuels/parsimony/pkg/io"
	"github.com/matzehuels/parsimony/pkg/parsimony"
	"github.com/matzehuels/parsimony/pkg/search"
)

// browseCommand creates the browse command, an interactive viewer for the
// trees of a result file.
func (c *CLI) browseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse <result>",
		Short: "Page through the trees of a result file",
		Long: `Browse opens an interactive viewer for a result file. Each tree is shown as
its list of edges with the labels at both ends and the number of changes
along the edge, or as a Newick string.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := readResult(args[0])
			if err != nil {
				return err
			}
			if len(res.Topologies) == 0 {
				printWarning("%s contains no trees", args[0])
				return nil
			}
			p := tea.NewProgram(NewBrowseModel(res), tea.WithContext(cmd.Context()), tea.WithAltScreen())
			_, err = p.Run()
			return err
		},
	}
}

// Browse styles
var (
	browseSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	browseDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	browseChangeStyle   = lipgloss.NewStyle().Foreground(colorYellow)
)

// Browse views.
const (
	viewEdges = iota
	viewNewick
)

// =============================================================================
// BrowseModel - Interactive result viewer
// =============================================================================

// BrowseModel is the bubbletea model for paging through result trees.
type BrowseModel struct {
	Result *search.Result
	Cursor int // index of the displayed tree
	Offset int // first edge row shown
	Height int // edge rows per screen
	Width  int
	Mode   int // viewEdges or viewNewick
}

// NewBrowseModel creates a browse model positioned at the first tree.
func NewBrowseModel(res *search.Result) BrowseModel {
	return BrowseModel{Result: res, Height: 15, Width: 80}
}

func (m BrowseModel) Init() tea.Cmd {
	return nil
}

func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "right", "l", "n":
			if m.Cursor < len(m.Result.Topologies)-1 {
				m.Cursor++
				m.Offset = 0
			}
		case "left", "h", "p":
			if m.Cursor > 0 {
				m.Cursor--
				m.Offset = 0
			}
		case "down", "j":
			if m.Offset+m.Height < m.edgeCount() {
				m.Offset++
			}
		case "up", "k":
			if m.Offset > 0 {
				m.Offset--
			}
		case "tab":
			m.Mode = (m.Mode + 1) % 2
		}
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = max(msg.Height-8, 5)
	}
	return m, nil
}

func (m BrowseModel) edgeCount() int {
	return m.Result.Topologies[m.Cursor].Tree.N() - 1
}

func (m BrowseModel) View() string {
	var b strings.Builder
	topo := m.Result.Topologies[m.Cursor]

	b.WriteString(StyleTitle.Render(fmt.Sprintf("Tree %d/%d", m.Cursor+1, len(m.Result.Topologies))))
	b.WriteString(browseDimStyle.Render("  score "))
	b.WriteString(browseSelectedStyle.Render(strconv.Itoa(topo.Score)))
	b.WriteString("\n")
	b.WriteString(browseDimStyle.Render("←/→ tree  ↑/↓ scroll  tab edges/newick  q quit"))
	b.WriteString("\n\n")

	if m.Mode == viewNewick {
		b.WriteString(lipgloss.NewStyle().Width(max(m.Width-2, 20)).Render(pio.Newick(topo, true)))
		b.WriteString("\n")
		return b.String()
	}

	edges := topo.Tree.Edges()
	end := min(m.Offset+m.Height, len(edges))
	rows := make([][]string, 0, end-m.Offset)
	for _, e := range edges[m.Offset:end] {
		u, v := e[0], e[1]
		d := parsimony.Hamming(topo.Labels[u], topo.Labels[v])
		rows = append(rows, []string{
			strconv.Itoa(u), strconv.Itoa(v),
			edgeLabel(topo.Labels[u], topo.Labels[v], m.labelWidth()),
			strconv.Itoa(d),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("u", "v", "labels", "Δ").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			if col == 3 && row < len(rows) && rows[row][3] != "0" {
				return browseChangeStyle
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(browseDimStyle.Render(fmt.Sprintf("  edges %d-%d of %d", m.Offset+1, end, len(edges))))
	return b.String()
}

// labelWidth is the room left for the two labels of an edge row.
func (m BrowseModel) labelWidth() int {
	return max(m.Width-24, 16)
}

// edgeLabel shows two labels on one line, truncated to width.
func edgeLabel(a, b string, width int) string {
	half := (width - 3) / 2
	return truncate(a, half) + " → " + truncate(b, half)
}
