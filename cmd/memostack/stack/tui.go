package stackcmder

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	bubbletea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/papercomputeco/memostack/pkg/memo"
	"github.com/papercomputeco/memostack/pkg/stack"
	"github.com/papercomputeco/memostack/pkg/storage"
)

func init() {
	// Force TrueColor profile to fix lipgloss color detection issue
	// See: https://github.com/charmbracelet/lipgloss/issues/439
	renderer := lipgloss.NewRenderer(os.Stdout, termenv.WithProfile(termenv.TrueColor))
	renderer.SetColorProfile(termenv.TrueColor)
	lipgloss.SetDefaultRenderer(renderer)
}

type stackTab int

const (
	tabHot stackTab = iota
	tabCold
	tabDone
	tabDelayed
)

var tabNames = []string{"stack", "cold", "done", "delayed"}

type focusArea int

const (
	focusList focusArea = iota
	focusInput
	focusDelay
	focusSearch
)

const delayStepMinutes = 15

var (
	stackTitleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	stackMutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	stackAccentStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("215"))
	stackDividerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("237"))
	stackHighlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("235")).Background(lipgloss.Color("214")).Bold(true)
	stackTabStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("246"))
	stackTabActiveStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	stackBodyStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	stackDoneStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("70"))
	stackDelayedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("111"))
	stackErrorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	spotlightStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
)

type stackKeyMap struct {
	Up        key.Binding
	Down      key.Binding
	PrevTab   key.Binding
	NextTab   key.Binding
	Capture   key.Binding
	Search    key.Binding
	Expand    key.Binding
	Done      key.Binding
	Archive   key.Binding
	Promote   key.Binding
	Delete    key.Binding
	ShiftUp   key.Binding
	Front     key.Binding
	Replace   key.Binding
	Spotlight key.Binding
	Quit      key.Binding
}

func (k stackKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Down, k.Up, k.NextTab, k.Capture, k.Done, k.Archive, k.Promote, k.Quit}
}

func (k stackKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Down, k.Up, k.PrevTab, k.NextTab, k.Expand},
		{k.Capture, k.Search, k.Done, k.Archive, k.Promote},
		{k.Delete, k.ShiftUp, k.Front, k.Replace, k.Spotlight, k.Quit},
	}
}

func defaultStackKeyMap() stackKeyMap {
	return stackKeyMap{
		Up:        key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k", "up")),
		Down:      key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j", "down")),
		PrevTab:   key.NewBinding(key.WithKeys("h", "left", "shift+tab"), key.WithHelp("h", "prev tab")),
		NextTab:   key.NewBinding(key.WithKeys("l", "right", "tab"), key.WithHelp("l", "next tab")),
		Capture:   key.NewBinding(key.WithKeys("c", "i"), key.WithHelp("c", "capture")),
		Search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Expand:    key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "expand")),
		Done:      key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "done")),
		Archive:   key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "archive")),
		Promote:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "promote")),
		Delete:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "delete")),
		ShiftUp:   key.NewBinding(key.WithKeys("K", "+"), key.WithHelp("K", "shift up")),
		Front:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "to front")),
		Replace:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "replace")),
		Spotlight: key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "grab spotlight")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

type tickMsg time.Time

type stackModel struct {
	manager   *stack.Manager
	spotlight *stack.Spotlight
	driver    storage.Driver
	logger    *slog.Logger
	prefs     storage.Prefs
	tabSpaces int

	tab    stackTab
	focus  focusArea
	cursor int
	width  int
	height int

	input  textarea.Model
	delay  textinput.Model
	search textinput.Model

	status string
	keys   stackKeyMap
	help   help.Model
}

func runStackTUI(ctx context.Context, manager *stack.Manager, spotlight *stack.Spotlight, driver storage.Driver, prefs storage.Prefs, tabSpaces int, logger *slog.Logger) error {
	model := newStackModel(manager, spotlight, driver, prefs, tabSpaces, logger)

	program := bubbletea.NewProgram(model,
		bubbletea.WithContext(ctx),
		bubbletea.WithAltScreen(),
	)
	_, err := program.Run()
	return err
}

func newStackModel(manager *stack.Manager, spotlight *stack.Spotlight, driver storage.Driver, prefs storage.Prefs, tabSpaces int, logger *slog.Logger) stackModel {
	input := textarea.New()
	input.Placeholder = "first line is the title, the rest is the body"
	input.SetHeight(3)
	input.CharLimit = 0
	input.SetValue(prefs.InputText)

	delay := textinput.New()
	delay.Placeholder = "00:00"
	delay.CharLimit = 5
	delay.Width = 6

	search := textinput.New()
	search.Placeholder = "search title and body"
	search.Width = 32

	if tabSpaces <= 0 {
		tabSpaces = 2
	}

	return stackModel{
		manager:   manager,
		spotlight: spotlight,
		driver:    driver,
		logger:    logger,
		prefs:     prefs,
		tabSpaces: tabSpaces,
		tab:       tabHot,
		focus:     focusList,
		input:     input,
		delay:     delay,
		search:    search,
		keys:      defaultStackKeyMap(),
		help:      help.New(),
	}
}

func (m stackModel) Init() bubbletea.Cmd {
	return tick()
}

func tick() bubbletea.Cmd {
	return bubbletea.Tick(time.Second, func(t time.Time) bubbletea.Msg {
		return tickMsg(t)
	})
}

func (m stackModel) Update(msg bubbletea.Msg) (bubbletea.Model, bubbletea.Cmd) {
	switch msg := msg.(type) {
	case bubbletea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.SetWidth(max(msg.Width-4, 20))
		return m, nil

	case tickMsg:
		now := time.Time(msg).UTC()
		promoted, err := m.manager.CheckDelayed(context.Background(), now)
		if err != nil {
			m.status = err.Error()
		}
		if len(promoted) > 0 {
			m.status = fmt.Sprintf("%d delayed memo(s) went hot", len(promoted))
		}
		m.spotlight.Refresh(now)
		m.cursor = clamp(m.cursor, max(len(m.currentMemos())-1, 0))
		return m, tick()

	case bubbletea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m stackModel) handleKey(msg bubbletea.KeyMsg) (bubbletea.Model, bubbletea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m.quit()
	}

	switch m.focus {
	case focusInput:
		return m.handleInputKey(msg)
	case focusDelay:
		return m.handleDelayKey(msg)
	case focusSearch:
		return m.handleSearchKey(msg)
	}

	return m.handleListKey(msg)
}

func (m stackModel) handleListKey(msg bubbletea.KeyMsg) (bubbletea.Model, bubbletea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.Down):
		m.cursor = clamp(m.cursor+1, max(len(m.currentMemos())-1, 0))
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.cursor = clamp(m.cursor-1, max(len(m.currentMemos())-1, 0))
		return m, nil

	case key.Matches(msg, m.keys.NextTab):
		m.tab = (m.tab + 1) % stackTab(len(tabNames))
		m.cursor = 0
		return m, nil

	case key.Matches(msg, m.keys.PrevTab):
		m.tab = (m.tab + stackTab(len(tabNames)) - 1) % stackTab(len(tabNames))
		m.cursor = 0
		return m, nil

	case key.Matches(msg, m.keys.Capture):
		m.focus = focusInput
		m.input.Focus()
		return m, textarea.Blink

	case key.Matches(msg, m.keys.Search):
		if m.tab != tabHot {
			m.focus = focusSearch
			m.search.Focus()
			return m, textinput.Blink
		}
		return m, nil

	case key.Matches(msg, m.keys.Expand):
		if mm := m.selectedMemo(); mm != nil {
			m.manager.SetExpanded(mm.ID, !mm.Expanded)
		}
		return m, nil

	case key.Matches(msg, m.keys.Spotlight):
		if pick := m.spotlight.Current(); pick != nil {
			m.runAction(func(ctx context.Context) error {
				return m.manager.PromoteToHot(ctx, pick.ID)
			}, "spotlight memo promoted")
		}
		return m, nil
	}

	mm := m.selectedMemo()
	if mm == nil {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Done):
		if mm.Status != memo.StatusDone {
			m.runAction(func(ctx context.Context) error {
				return m.manager.Complete(ctx, mm.ID)
			}, "memo done")
		}

	case key.Matches(msg, m.keys.Archive):
		if mm.Status != memo.StatusCold {
			m.runAction(func(ctx context.Context) error {
				return m.manager.Archive(ctx, mm.ID)
			}, "memo archived")
		}

	case key.Matches(msg, m.keys.Promote):
		m.runAction(func(ctx context.Context) error {
			return m.manager.PromoteToHot(ctx, mm.ID)
		}, "memo on the stack")

	case key.Matches(msg, m.keys.Delete):
		m.runAction(func(ctx context.Context) error {
			return m.manager.Delete(ctx, mm.ID)
		}, "memo deleted")

	case key.Matches(msg, m.keys.ShiftUp):
		if m.tab == tabHot {
			m.runAction(func(ctx context.Context) error {
				return m.manager.ShiftUp(ctx, mm.ID)
			}, "")
			m.cursor = clamp(m.cursor-1, max(len(m.currentMemos())-1, 0))
		}

	case key.Matches(msg, m.keys.Front):
		if m.tab == tabHot {
			m.runAction(func(ctx context.Context) error {
				return m.manager.MoveToFront(ctx, mm.ID)
			}, "")
			m.cursor = 0
		}

	case key.Matches(msg, m.keys.Replace):
		// A pending draft is captured rather than discarded. The draft goes
		// in as an ordinary hot memo; the delay field only applies to an
		// explicit capture.
		if strings.TrimSpace(m.input.Value()) != "" {
			if _, err := m.manager.Capture(context.Background(), m.input.Value(), memo.NoDelay); err != nil {
				m.status = err.Error()
				return m, nil
			}
			m.delay.Reset()
		}
		text, err := m.manager.Replace(context.Background(), mm.ID)
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.input.SetValue(text)
		m.focus = focusInput
		m.input.Focus()
		m.status = "memo pulled into the editor, capture to re-add"
		return m, textarea.Blink
	}

	m.cursor = clamp(m.cursor, max(len(m.currentMemos())-1, 0))
	return m, nil
}

func (m stackModel) handleInputKey(msg bubbletea.KeyMsg) (bubbletea.Model, bubbletea.Cmd) {
	switch msg.String() {
	case "esc":
		m.focus = focusList
		m.input.Blur()
		return m, nil

	case "tab":
		m.input.InsertString(strings.Repeat(" ", m.tabSpaces))
		return m, nil

	case "shift+tab":
		m.focus = focusDelay
		m.input.Blur()
		m.delay.Focus()
		return m, textinput.Blink

	case "ctrl+s":
		return m.submitCapture()
	}

	var cmd bubbletea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m stackModel) handleDelayKey(msg bubbletea.KeyMsg) (bubbletea.Model, bubbletea.Cmd) {
	switch msg.String() {
	case "esc":
		m.focus = focusList
		m.delay.Blur()
		return m, nil

	case "shift+tab", "tab":
		m.focus = focusInput
		m.delay.Blur()
		m.input.Focus()
		return m, textarea.Blink

	case "up":
		m.delay.SetValue(memo.AdjustDelay(m.delay.Value(), delayStepMinutes))
		return m, nil

	case "down":
		m.delay.SetValue(memo.AdjustDelay(m.delay.Value(), -delayStepMinutes))
		return m, nil

	case "ctrl+s", "enter":
		return m.submitCapture()
	}

	var cmd bubbletea.Cmd
	m.delay, cmd = m.delay.Update(msg)
	return m, cmd
}

func (m stackModel) handleSearchKey(msg bubbletea.KeyMsg) (bubbletea.Model, bubbletea.Cmd) {
	switch msg.String() {
	case "esc":
		m.focus = focusList
		m.search.Blur()
		return m, nil

	case "enter":
		m.focus = focusList
		m.search.Blur()
		m.cursor = 0
		return m, nil
	}

	var cmd bubbletea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.cursor = 0
	return m, cmd
}

func (m stackModel) submitCapture() (bubbletea.Model, bubbletea.Cmd) {
	text := m.input.Value()
	if strings.TrimSpace(text) == "" {
		m.status = "nothing to capture"
		return m, nil
	}

	mm, err := m.manager.Capture(context.Background(), text, m.delay.Value())
	if err != nil {
		m.status = err.Error()
		return m, nil
	}

	m.input.Reset()
	m.delay.Reset()
	m.focus = focusList
	m.input.Blur()
	m.delay.Blur()

	if mm.Status == memo.StatusDelayed {
		ready, _ := mm.ReadyAt()
		m.status = fmt.Sprintf("captured, hot at %s", ready.Local().Format("15:04"))
	} else {
		m.status = "captured onto the stack"
		m.tab = tabHot
		m.cursor = 0
	}
	return m, nil
}

// runAction executes a manager operation and records the outcome in the
// status line. Persistence failures surface here while the in-memory state
// keeps whatever the operation already applied.
func (m *stackModel) runAction(fn func(context.Context) error, okStatus string) {
	if err := fn(context.Background()); err != nil {
		m.status = err.Error()
		return
	}
	if okStatus != "" {
		m.status = okStatus
	}
}

func (m stackModel) quit() (bubbletea.Model, bubbletea.Cmd) {
	// The capture draft survives restarts.
	m.prefs.InputText = m.input.Value()
	if err := m.driver.SavePrefs(context.Background(), m.prefs); err != nil {
		m.logger.Warn("failed to save prefs on exit", "error", err)
	}
	return m, bubbletea.Quit
}

func (m stackModel) currentMemos() []*memo.Memo {
	switch m.tab {
	case tabHot:
		return m.manager.Hot()
	case tabCold:
		return m.manager.Query(memo.StatusCold, m.search.Value())
	case tabDone:
		return m.manager.Query(memo.StatusDone, m.search.Value())
	case tabDelayed:
		return m.manager.Query(memo.StatusDelayed, m.search.Value())
	}
	return nil
}

func (m stackModel) selectedMemo() *memo.Memo {
	memos := m.currentMemos()
	if len(memos) == 0 || m.cursor >= len(memos) {
		return nil
	}
	return memos[m.cursor]
}

func (m stackModel) View() string {
	lines := make([]string, 0, 24)

	headerLeft := stackTitleStyle.Render("memostack")
	headerRight := stackMutedStyle.Render(fmt.Sprintf("%d/%d hot · %d memos",
		len(m.manager.HotIDs()), m.manager.MaxHot(), m.manager.Len()))
	lines = append(lines, renderHeaderLine(m.width, headerLeft, headerRight), renderRule(m.width))

	lines = append(lines, m.viewCapture()...)
	lines = append(lines, "", m.viewTabs(), renderRule(m.width))
	lines = append(lines, m.viewList()...)

	if m.tab == tabHot {
		if spot := m.viewSpotlight(); spot != "" {
			lines = append(lines, "", spot)
		}
	}

	lines = append(lines, "", m.viewFooter())
	return strings.Join(lines, "\n")
}

func (m stackModel) viewCapture() []string {
	delayLabel := stackMutedStyle.Render("delay")
	delayHint := stackMutedStyle.Render("(HH:MM, 00:00 = none, ↑/↓ ±15m)")
	lines := []string{
		m.input.View(),
		fmt.Sprintf("%s %s %s", delayLabel, m.delay.View(), delayHint),
	}

	switch m.focus {
	case focusInput:
		lines = append(lines, stackMutedStyle.Render("ctrl+s capture · tab indent · shift+tab delay · esc back"))
	case focusDelay:
		lines = append(lines, stackMutedStyle.Render("enter capture · tab text · esc back"))
	}
	return lines
}

func (m stackModel) viewTabs() string {
	parts := make([]string, 0, len(tabNames))
	for i, name := range tabNames {
		label := name
		switch stackTab(i) {
		case tabHot:
			label = fmt.Sprintf("%s %d", name, len(m.manager.HotIDs()))
		case tabCold:
			label = fmt.Sprintf("%s %d", name, len(m.manager.Query(memo.StatusCold, "")))
		case tabDone:
			label = fmt.Sprintf("%s %d", name, len(m.manager.Query(memo.StatusDone, "")))
		case tabDelayed:
			label = fmt.Sprintf("%s %d", name, len(m.manager.Query(memo.StatusDelayed, "")))
		}

		if stackTab(i) == m.tab {
			parts = append(parts, stackTabActiveStyle.Render("["+label+"]"))
		} else {
			parts = append(parts, stackTabStyle.Render(" "+label+" "))
		}
	}
	return strings.Join(parts, " ")
}

func (m stackModel) viewList() []string {
	lines := []string{}

	if m.tab != tabHot {
		lines = append(lines, stackMutedStyle.Render("search: ")+m.search.View())
	}

	memos := m.currentMemos()
	if len(memos) == 0 {
		lines = append(lines, stackMutedStyle.Render(m.emptyListText()))
		return lines
	}

	maxVisible := m.listHeight()
	start, end := visibleRange(len(memos), m.cursor, maxVisible)
	for i := start; i < end; i++ {
		lines = append(lines, m.renderMemoLines(i, memos[i])...)
	}
	return lines
}

func (m stackModel) emptyListText() string {
	switch m.tab {
	case tabHot:
		return "the stack is empty, capture something"
	case tabCold:
		return "no archived memos"
	case tabDone:
		return "nothing done yet"
	case tabDelayed:
		return "no delayed memos"
	}
	return "no memos"
}

func (m stackModel) renderMemoLines(index int, mm *memo.Memo) []string {
	cursor := " "
	if index == m.cursor && m.focus == focusList {
		cursor = ">"
	}

	title := truncateText(mm.Title, max(m.width-30, 20))
	meta := m.memoMeta(mm)

	line := fmt.Sprintf("%s %2d. %s", cursor, index+1, title)
	if meta != "" {
		line = renderHeaderLine(m.width, line, meta)
	}
	if index == m.cursor && m.focus == focusList {
		line = stackHighlightStyle.Render(line)
	}

	lines := []string{line}
	if mm.Expanded && mm.Body != "" {
		for _, bodyLine := range wrapText(mm.Body, max(m.width-8, 20)) {
			lines = append(lines, stackBodyStyle.Render("      "+bodyLine))
		}
	}
	return lines
}

func (m stackModel) memoMeta(mm *memo.Memo) string {
	switch mm.Status {
	case memo.StatusDone:
		if mm.CompletedAt != nil {
			return stackDoneStyle.Render("✓ " + mm.CompletedAt.Local().Format("Jan 2 15:04"))
		}
		return stackDoneStyle.Render("✓")
	case memo.StatusDelayed:
		if ready, ok := mm.ReadyAt(); ok {
			return stackDelayedStyle.Render("hot in " + formatRemaining(time.Until(ready)))
		}
	case memo.StatusCold:
		return stackMutedStyle.Render(mm.CreatedAt.Local().Format("Jan 2"))
	}
	return ""
}

func (m stackModel) viewSpotlight() string {
	pick := m.spotlight.Current()
	if pick == nil {
		return ""
	}

	line := spotlightStyle.Render("✶ spotlight: ") + stackAccentStyle.Render(pick.Title)
	if pick.Body != "" {
		line += stackMutedStyle.Render("  " + truncateText(firstLine(pick.Body), 40))
	}
	return line + stackMutedStyle.Render("  (S to put it on the stack)")
}

func (m stackModel) viewFooter() string {
	footer := stackMutedStyle.Render(m.help.View(m.keys))
	if m.status != "" {
		style := stackMutedStyle
		if strings.Contains(m.status, "failed") {
			style = stackErrorStyle
		}
		footer = style.Render(m.status) + "\n" + footer
	}
	return footer
}

func (m stackModel) listHeight() int {
	if m.height <= 0 {
		return 12
	}
	// Header, capture area, tab bar, spotlight, and footer overhead.
	return max(m.height-14, 4)
}

func clamp(value, upper int) int {
	if value < 0 {
		return 0
	}
	if value > upper {
		return upper
	}
	return value
}

func renderHeaderLine(width int, left, right string) string {
	lineWidth := width
	if lineWidth <= 0 {
		lineWidth = 80
	}
	leftWidth := lipgloss.Width(left)
	rightWidth := lipgloss.Width(right)
	if leftWidth+rightWidth+1 >= lineWidth {
		return strings.TrimSpace(left + " " + right)
	}
	spacing := lineWidth - leftWidth - rightWidth
	return left + strings.Repeat(" ", spacing) + right
}

func renderRule(width int) string {
	lineWidth := width
	if lineWidth <= 0 {
		lineWidth = 80
	}
	return stackDividerStyle.Render(strings.Repeat("─", lineWidth))
}

func truncateText(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	if limit <= 3 {
		return string(runes[:max(limit, 0)])
	}
	return string(runes[:limit-3]) + "..."
}

func visibleRange(total, cursor, size int) (int, int) {
	if total <= 0 || size <= 0 {
		return 0, 0
	}
	if total <= size {
		return 0, total
	}
	if cursor < 0 {
		cursor = 0
	}
	if cursor >= total {
		cursor = total - 1
	}
	start := max(cursor-(size/2), 0)
	end := start + size
	if end > total {
		end = total
		start = max(end-size, 0)
	}
	return start, end
}

func wrapText(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}
	lines := []string{}
	for _, paragraph := range strings.Split(text, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		current := ""
		for _, word := range words {
			if current == "" {
				current = word
				continue
			}
			if lipgloss.Width(current)+1+lipgloss.Width(word) <= width {
				current = current + " " + word
				continue
			}
			lines = append(lines, current)
			current = word
		}
		if current != "" {
			lines = append(lines, current)
		}
	}
	return lines
}

func formatRemaining(d time.Duration) string {
	if d <= 0 {
		return "a moment"
	}
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
