package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/bedrocksmith/bsmith/internal/config"
	"github.com/bedrocksmith/bsmith/internal/session"
	"github.com/bedrocksmith/bsmith/pkg/provider"
	"github.com/bedrocksmith/bsmith/pkg/types"
)

const (
	minWidth      = 80
	minHeight     = 12
	minListWidth  = 40
	maxListWidth  = 64
	chromeHeight  = 4 // header, status bar and pane borders
	timeColWidth  = 19
	detailPadding = 2
)

type fetchedMsg struct {
	records []types.LogRecord
	err     error
	at      time.Time
}

type objectLoadedMsg struct {
	path string
	body []byte
	err  error
}

// Viewer is the bubbletea model of the interactive log viewer
type Viewer struct {
	ctx      context.Context
	state    session.State
	fetch    session.FetchFunc
	objects  provider.ObjectStore
	external map[string][]byte

	filtered  []int // indices into state.Records
	cursor    int
	offset    int
	search    string
	searching bool

	mode    ViewMode
	scroll  int
	loading bool
	status  string

	termWidth  int
	termHeight int
	quitting   bool
	now        func() time.Time
}

// NewViewer creates a viewer that fetches q on start. objects may be nil,
// in which case offloaded inputs cannot be loaded
func NewViewer(ctx context.Context, q session.Query, fetch session.FetchFunc, objects provider.ObjectStore) Viewer {
	return Viewer{
		ctx:        ctx,
		state:      session.New(q),
		fetch:      fetch,
		objects:    objects,
		external:   make(map[string][]byte),
		loading:    true,
		termWidth:  minWidth,
		termHeight: 24,
		now:        time.Now,
	}
}

// State returns the current viewer state
func (m Viewer) State() session.State {
	return m.state
}

// Init implements tea.Model
func (m Viewer) Init() tea.Cmd {
	return tea.Batch(tea.WindowSize(), m.fetchCmd())
}

func (m Viewer) fetchCmd() tea.Cmd {
	ctx, fetch, q, now := m.ctx, m.fetch, m.state.Query, m.now
	return func() tea.Msg {
		records, err := fetch(ctx, q)
		return fetchedMsg{records: records, err: err, at: now()}
	}
}

func (m Viewer) loadObjectCmd(path string) tea.Cmd {
	ctx, objects := m.ctx, m.objects
	return func() tea.Msg {
		body, err := objects.GetObject(ctx, path)
		return objectLoadedMsg{path: path, body: body, err: err}
	}
}

// Update implements tea.Model
func (m Viewer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.termWidth = max(msg.Width, minWidth)
		m.termHeight = max(msg.Height, minHeight)
		return m, nil

	case fetchedMsg:
		m.loading = false
		m.state = m.state.WithFetchResult(msg.records, msg.err, msg.at)
		if msg.err != nil {
			m.status = ""
			return m, nil
		}
		m.status = fmt.Sprintf("Fetched %d events at %s", len(msg.records), msg.at.Format("15:04:05"))
		m.cursor, m.offset, m.scroll = 0, 0, 0
		m.applyFilter()
		return m, nil

	case objectLoadedMsg:
		if msg.err != nil {
			m.status = "Load failed: " + msg.err.Error()
			return m, nil
		}
		m.external[msg.path] = msg.body
		m.status = "Loaded " + msg.path
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateKeys(msg)
	}

	return m, nil
}

func (m Viewer) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.quitting = true
		return m, tea.Quit
	case tea.KeyEnter, tea.KeyEsc:
		m.searching = false
	case tea.KeyBackspace:
		if len(m.search) > 0 {
			r := []rune(m.search)
			m.search = string(r[:len(r)-1])
			m.applyFilter()
		}
	case tea.KeyRunes, tea.KeySpace:
		m.search += string(msg.Runes)
		m.applyFilter()
	}
	return m, nil
}

func (m Viewer) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.quitting = true
		return m, tea.Quit

	case tea.KeyUp:
		m.moveCursor(-1)
	case tea.KeyDown:
		m.moveCursor(1)

	case tea.KeyEnter:
		m.selectCursor()

	case tea.KeyTab:
		m.mode = m.mode.Next()
		m.scroll = 0

	case tea.KeyPgDown:
		m.scroll += m.bodyHeight() / 2
	case tea.KeyPgUp:
		m.scroll = max(m.scroll-m.bodyHeight()/2, 0)

	case tea.KeyRunes:
		switch string(msg.Runes) {
		case "q":
			m.quitting = true
			return m, tea.Quit
		case "k":
			m.moveCursor(-1)
		case "j":
			m.moveCursor(1)
		case "/":
			m.searching = true
		case "r":
			if m.loading {
				return m, nil
			}
			m.loading = true
			m.status = "Fetching..."
			return m, m.fetchCmd()
		case "+", "=":
			m.setQuery(func(q *session.Query) { q.Limit = config.StepLimit(q.Limit, 1) })
		case "-":
			m.setQuery(func(q *session.Query) { q.Limit = config.StepLimit(q.Limit, -1) })
		case "h":
			m.setQuery(func(q *session.Query) { q.LookbackHours = config.NextLookback(q.LookbackHours) })
		case "t":
			m.mode = m.mode.Next()
			m.scroll = 0
		case "o":
			return m.loadSelectedInput()
		}
	}

	return m, nil
}

func (m *Viewer) setQuery(change func(q *session.Query)) {
	q := m.state.Query
	change(&q)
	m.state = m.state.WithQuery(q)
	m.status = "Press r to fetch with the new settings"
}

func (m Viewer) loadSelectedInput() (tea.Model, tea.Cmd) {
	d, ok := m.state.Detail()
	if !ok || d.Err != nil {
		return m, nil
	}
	path, ok := d.Event.ExternalPath()
	if !ok {
		m.status = "Selected event has no offloaded input"
		return m, nil
	}
	if m.objects == nil {
		m.status = "S3 access is not configured"
		return m, nil
	}
	m.status = "Loading " + path
	return m, m.loadObjectCmd(path)
}

func (m *Viewer) moveCursor(delta int) {
	if len(m.filtered) == 0 {
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), len(m.filtered)-1)
	h := m.bodyHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
}

func (m *Viewer) selectCursor() {
	if len(m.filtered) == 0 {
		return
	}
	rec := m.state.Records[m.filtered[m.cursor]]
	next, err := m.state.Select(rec.EventID)
	if err != nil {
		m.status = err.Error()
		return
	}
	m.state = next
	m.scroll = 0
}

// applyFilter recomputes the visible records from the search query
func (m *Viewer) applyFilter() {
	query := strings.ToLower(m.search)
	m.filtered = nil
	for i, sum := range m.state.Summaries() {
		if query == "" || matchesSearch(sum, query) {
			m.filtered = append(m.filtered, i)
		}
	}
	if m.cursor >= len(m.filtered) {
		m.cursor = max(len(m.filtered)-1, 0)
	}
	m.offset = 0
}

func matchesSearch(sum session.Summary, query string) bool {
	if strings.Contains(strings.ToLower(sum.ErrorCode), query) ||
		strings.Contains(strings.ToLower(sum.Record.EventID), query) {
		return true
	}
	for _, t := range sum.Tags {
		if strings.Contains(strings.ToLower(t.Label), query) {
			return true
		}
	}
	return false
}

func (m Viewer) bodyHeight() int {
	return max(m.termHeight-chromeHeight, 1)
}

func (m Viewer) listWidth() int {
	return min(max(m.termWidth*2/5, minListWidth), maxListWidth)
}

// View implements tea.Model
func (m Viewer) View() string {
	if m.quitting {
		return ""
	}

	listW := m.listWidth()
	detailW := m.termWidth - listW - 4
	h := m.bodyHeight()

	list := PaneStyle.Width(listW).Height(h).Render(strings.Join(m.renderList(listW, h), "\n"))
	detail := PaneStyle.Width(detailW).Height(h).Render(strings.Join(m.renderDetail(detailW, h), "\n"))

	var sb strings.Builder
	sb.WriteString(m.renderHeader())
	sb.WriteString("\n")
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, list, detail))
	sb.WriteString("\n")
	sb.WriteString(m.renderStatusBar())

	return sb.String()
}

func (m Viewer) renderHeader() string {
	q := m.state.Query
	settings := fmt.Sprintf("  %s  %s  %dh  limit %d  view %s",
		q.LogGroup, q.Region, q.LookbackHours, q.Limit, m.mode)
	return TitleStyle.Render("BedrockSmith") + MutedStyle.Render(settings)
}

func (m Viewer) renderList(w, h int) []string {
	if m.loading && len(m.state.Records) == 0 {
		return []string{MutedStyle.Render(" Fetching...")}
	}
	if len(m.filtered) == 0 {
		return []string{MutedStyle.Render(" No events found")}
	}

	summaries := m.state.Summaries()
	selected := m.state.SelectedIndex()

	var lines []string
	end := min(m.offset+h, len(m.filtered))
	for i := m.offset; i < end; i++ {
		idx := m.filtered[i]
		lines = append(lines, m.renderRow(summaries[idx], i == m.cursor, idx == selected, w))
	}
	return lines
}

func (m Viewer) renderRow(sum session.Summary, atCursor, isSelected bool, w int) string {
	var sb strings.Builder

	// Cursor and selection markers (3 chars)
	switch {
	case atCursor:
		sb.WriteString(" > ")
	case isSelected:
		sb.WriteString(" * ")
	default:
		sb.WriteString("   ")
	}

	ts := padRight(shortTimestamp(sum), timeColWidth)
	if isSelected {
		sb.WriteString(SelectedStyle.Render(ts))
	} else {
		sb.WriteString(MutedStyle.Render(ts))
	}
	sb.WriteString(" ")

	avail := w - 3 - timeColWidth - 1
	if sum.Err != nil {
		sb.WriteString(ErrorStyle.Render(padRight("malformed record", avail)))
		return sb.String()
	}
	sb.WriteString(RenderTags(sum.Tags, avail))
	return sb.String()
}

func shortTimestamp(sum session.Summary) string {
	return sum.Record.Time().Local().Format("2006-01-02 15:04:05")
}

func (m Viewer) renderDetail(w, h int) []string {
	d, ok := m.state.Detail()
	if !ok {
		return []string{MutedStyle.Render("No event selected")}
	}

	lines := RenderDetail(d, DetailOptions{Mode: m.mode, Width: w - detailPadding, External: m.external})

	start := min(m.scroll, max(len(lines)-h, 0))
	end := min(start+h, len(lines))
	return lines[start:end]
}

func (m Viewer) renderStatusBar() string {
	countInfo := fmt.Sprintf("  %d/%d events", len(m.filtered), len(m.state.Records))
	if m.search != "" || m.searching {
		countInfo += "  /" + m.search
	}

	message := m.status
	styled := HintStyle.Render(message)
	if m.state.FetchErr != nil {
		message = "Fetch failed: " + m.state.FetchErr.Error()
		styled = ErrorStyle.Render(message)
	}

	hints := "[↑↓ move] [enter select] [tab view] [r fetch] [+/- limit] [h hours] [o s3] [/ search] [q quit]"
	pad := m.termWidth - runewidth.StringWidth(countInfo) - runewidth.StringWidth(message) - 2
	if pad < runewidth.StringWidth(hints)+1 {
		return countInfo + "  " + styled
	}
	return countInfo + "  " + styled + strings.Repeat(" ", pad-runewidth.StringWidth(hints)) + HintStyle.Render(hints)
}

// RunViewer runs the interactive viewer until the user quits
func RunViewer(ctx context.Context, q session.Query, fetch session.FetchFunc, objects provider.ObjectStore) error {
	m := NewViewer(ctx, q, fetch, objects)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running viewer: %w", err)
	}
	return nil
}
