package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"widealign/internal/config"
	"widealign/pkg/errors"
	"widealign/pkg/layout"
)

// demoCommand creates the demo command, a terminal document whose wide
// tables are centered by the layout store and re-centered on every resize.
func (c *CLI) demoCommand() *cobra.Command {
	var (
		configPath string
		lineWidth  float64
	)

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Interactive document with reactively centered wide tables",
		Long: `Demo renders a scrollable document containing prose and tables of
varying widths. The terminal window is the view; each table is a tracked
entity. Resizing the terminal pushes a new view width into the layout
store, which re-derives every table's left gap and the document reflows.

Tables narrower than a line stay at the line. Tables wider than a line
but narrower than the view are centered. Tables wider than the view are
clamped and overflow to the right.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("line") {
				cfg.Demo.LineWidth = lineWidth
			}

			p := tea.NewProgram(newDemoModel(cfg.Demo),
				tea.WithAltScreen(),
				tea.WithContext(cmd.Context()),
			)
			_, err = p.Run()
			return err
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to config file (default: XDG location)")
	cmd.Flags().Float64Var(&lineWidth, "line", 0, "prose line width in cells (overrides config)")

	return cmd
}

// =============================================================================
// Document state shared between model copies
// =============================================================================

// docState holds the store and the mutable layout results. It is shared by
// pointer across bubbletea model copies so the store's listeners and line
// width source observe current values rather than a stale model snapshot.
type docState struct {
	store      *layout.Store
	gaps       map[layout.EntityID]float64
	proseWidth float64
}

func newDocState() *docState {
	d := &docState{gaps: make(map[layout.EntityID]float64)}
	d.store = layout.New(func() (float64, error) {
		// Read live at each recomputation; zero means no resize has been
		// delivered yet and the line width is genuinely unknown.
		if d.proseWidth <= 0 {
			return 0, fmt.Errorf("no window size received yet")
		}
		return d.proseWidth, nil
	})
	d.store.OnLeftGapChange(func(ev layout.LeftGapEvent) error {
		d.gaps[ev.Entity] = ev.Gap
		return nil
	})
	return d
}

// =============================================================================
// Blocks
// =============================================================================

// wideBlock is one tracked table. The rendered form and its measured width
// are cached; table content never changes in the demo, only the view does.
type wideBlock struct {
	id       layout.EntityID
	title    string
	rendered string
	width    float64
}

func newWideBlock(title string, headers []string, rows [][]string) *wideBlock {
	rendered := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(styleDim).
		Headers(headers...).
		Rows(rows...).
		String()
	return &wideBlock{
		id:       layout.EntityID(uuid.NewString()),
		title:    title,
		rendered: rendered,
		width:    float64(lipgloss.Width(rendered)),
	}
}

// =============================================================================
// Model
// =============================================================================

// demoModel is the bubbletea model for the demo document.
type demoModel struct {
	cfg    config.Demo
	doc    *docState
	paras  []string
	blocks []*wideBlock

	vp     viewport.Model
	ready  bool
	width  int
	height int
	err    error
}

func newDemoModel(cfg config.Demo) demoModel {
	return demoModel{
		cfg:    cfg,
		doc:    newDocState(),
		paras:  demoParagraphs(),
		blocks: demoTables(),
	}
}

func (m demoModel) Init() tea.Cmd {
	return nil
}

func (m demoModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		contentWidth := msg.Width - 2*m.cfg.ColumnPadding
		if contentWidth < 1 {
			contentWidth = 1
		}
		m.doc.proseWidth = min(m.cfg.LineWidth, float64(contentWidth))

		m.err = m.measure(float64(contentWidth))

		if !m.ready {
			m.vp = viewport.New(msg.Width, msg.Height-1)
			m.ready = true
		} else {
			m.vp.Width = msg.Width
			m.vp.Height = msg.Height - 1
		}
		m.vp.SetContent(m.renderDocument(contentWidth))
		return m, nil
	}

	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

// measure pushes the current measurements into the store: the view width
// first, then each table's wrapper width. Wrapper widths never change in
// the demo, so after the first resize those calls are idempotent no-ops and
// only the view width update triggers recomputation.
func (m demoModel) measure(viewWidth float64) error {
	if err := m.doc.store.SetViewWidth(viewWidth); err != nil {
		return err
	}
	for _, b := range m.blocks {
		if err := m.doc.store.SetWrapperWidth(b.id, b.width); err != nil {
			return err
		}
	}
	return nil
}

func (m demoModel) View() string {
	if !m.ready {
		return "measuring..."
	}
	return m.vp.View() + "\n" + m.footer()
}

func (m demoModel) footer() string {
	if m.err != nil {
		return styleError.Render("layout error: " + errors.UserMessage(m.err))
	}
	status := fmt.Sprintf("view=%d line=%g", m.width-2*m.cfg.ColumnPadding, m.doc.proseWidth)
	for _, b := range m.blocks {
		status += fmt.Sprintf("  %s=%g", b.title, m.doc.gaps[b.id])
	}
	return styleDim.Render(status + "  ↑/↓ scroll · q quit")
}

// renderDocument lays the document out for the current widths. The prose
// column is centered in the view; each table is placed at the prose column's
// left edge minus its derived left gap, which centers moderate tables in
// the view and lets view-wide tables start at the view edge and overflow.
func (m demoModel) renderDocument(contentWidth int) string {
	proseIndent := int((float64(contentWidth) - m.doc.proseWidth) / 2)
	if proseIndent < 0 {
		proseIndent = 0
	}

	proseStyle := lipgloss.NewStyle().
		Width(int(m.doc.proseWidth)).
		MarginLeft(m.cfg.ColumnPadding + proseIndent)

	var b strings.Builder
	b.WriteString(proseStyle.Render(styleTitle.Render("Quarterly Service Report")))
	b.WriteString("\n\n")

	for i, para := range m.paras {
		b.WriteString(proseStyle.Render(para))
		b.WriteString("\n\n")

		if i < len(m.blocks) {
			block := m.blocks[i]
			indent := m.cfg.ColumnPadding + proseIndent - int(m.doc.gaps[block.id])
			if indent < 0 {
				indent = 0
			}
			b.WriteString(lipgloss.NewStyle().MarginLeft(indent).Render(block.rendered))
			b.WriteString("\n\n")
		}
	}
	return b.String()
}

// =============================================================================
// Sample content
// =============================================================================

func demoParagraphs() []string {
	return []string{
		"This document mixes ordinary prose with tables of very different widths. The prose wraps at the configured line width and stays put when the window changes. Each table below is measured once and tracked; resize the window to watch the offsets settle.",
		"The first table fits comfortably within a line of prose, so it needs no adjustment and keeps the line's left edge.",
		"The second table is wider than a line but narrower than the window. Half of its excess width becomes its left gap, which centers it against the prose column.",
		"The last table is wider than most windows. Its shift is clamped so the window itself stays centered against the line, and the remainder simply overflows to the right.",
	}
}

func demoTables() []*wideBlock {
	narrow := newWideBlock("narrow",
		[]string{"Region", "Status"},
		[][]string{
			{"eu-west", "ok"},
			{"us-east", "ok"},
			{"ap-south", "degraded"},
		})

	medium := newWideBlock("medium",
		[]string{"Service", "Requests", "Errors", "P50 (ms)", "P99 (ms)", "Apdex"},
		[][]string{
			{"ingest", "1,204,551", "312", "14", "220", "0.97"},
			{"query", "845,102", "1,044", "35", "480", "0.93"},
			{"export", "12,440", "2", "120", "950", "0.99"},
		})

	wide := newWideBlock("wide",
		[]string{"Week", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun", "Deploys", "Rollbacks", "Incidents", "MTTR (m)", "Error Budget"},
		[][]string{
			{"W1", "99.99", "99.97", "99.99", "99.98", "99.95", "100.0", "100.0", "14", "1", "0", "-", "82%"},
			{"W2", "99.98", "99.99", "99.91", "99.99", "99.99", "100.0", "99.99", "11", "0", "1", "24", "71%"},
			{"W3", "99.99", "99.99", "99.99", "99.97", "99.94", "99.99", "100.0", "17", "2", "0", "-", "68%"},
		})

	return []*wideBlock{narrow, medium, wide}
}
