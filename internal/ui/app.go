package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/ramanasai/reflectboard/internal/board"
	"github.com/ramanasai/reflectboard/internal/coach"
	"github.com/ramanasai/reflectboard/internal/db"
	"github.com/ramanasai/reflectboard/internal/journal"
	"github.com/ramanasai/reflectboard/internal/version"
)

const (
	headerRows = 2
	footerRows = 2
	moveStep   = 16.0
)

// HistoryStore is what the history screen reads and deletes.
type HistoryStore interface {
	List(ctx context.Context) ([]db.Record, error)
	Delete(ctx context.Context, date string) error
}

type replyMsg struct {
	reply coach.Reply
	ok    bool
	err   error
}

type historyMsg struct {
	recs []db.Record
	err  error
}

type deletedMsg struct {
	date string
	err  error
}

type Model struct {
	ctx    context.Context
	flow   *journal.Flow
	store  HistoryStore
	events *board.Dispatcher
	ctrl   *board.Controller
	theme  Theme
	logger *zap.Logger

	width, height int

	// board editing
	editing bool
	editID  string
	editor  textinput.Model

	// topic selection
	topicCursor int

	// chat
	input      textinput.Model
	spin       spinner.Model
	responding bool

	// history
	history    []db.Record
	histCursor int
	searching  bool
	search     textinput.Model

	status string
	err    string
}

type Option func(*Model)

func WithTheme(t Theme) Option { return func(m *Model) { m.theme = t } }

func WithLogger(l *zap.Logger) Option { return func(m *Model) { m.logger = l } }

func NewModel(ctx context.Context, flow *journal.Flow, store HistoryStore, opts ...Option) Model {
	events := board.NewDispatcher()

	editor := textinput.New()
	editor.Placeholder = "What happened?"
	editor.CharLimit = 280

	input := textinput.New()
	input.Placeholder = "Type your answer, enter to send"
	input.CharLimit = 2000

	search := textinput.New()
	search.Placeholder = "search notes and chats"

	m := Model{
		ctx:    ctx,
		flow:   flow,
		store:  store,
		events: events,
		ctrl:   board.NewController(flow.Board(), events),
		theme:  DefaultTheme,
		logger: zap.NewNop(),
		editor: editor,
		input:  input,
		search: search,
		spin:   spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
	for _, o := range opts {
		o(&m)
	}
	return m
}

// Run starts the full-screen program and blocks until the user quits.
func Run(ctx context.Context, flow *journal.Flow, store HistoryStore, opts ...Option) error {
	m := NewModel(ctx, flow, store, opts...)
	defer m.ctrl.Close()
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m Model) Init() tea.Cmd {
	if m.flow.Step() == journal.StepChat {
		return m.input.Focus()
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.input.Width = max(msg.Width-4, 10)
		m.editor.Width = max(msg.Width-20, 10)
		return m, nil

	case spinner.TickMsg:
		if !m.responding {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case replyMsg:
		m.responding = false
		switch {
		case msg.err != nil:
			m.logger.Warn("send failed", zap.Error(msg.err))
			m.err = msg.err.Error()
		case msg.reply.Reason == coach.ReasonMissingCredentials:
			m.status = "fallback question: no API key configured"
		case msg.reply.Fallback:
			m.status = "fallback question: coach unavailable"
		default:
			m.status = ""
		}
		return m, nil

	case historyMsg:
		if msg.err != nil {
			m.logger.Error("load history failed", zap.Error(msg.err))
			m.err = msg.err.Error()
			return m, nil
		}
		m.history = msg.recs
		m.histCursor = min(m.histCursor, max(len(m.visibleHistory())-1, 0))
		return m, nil

	case deletedMsg:
		if msg.err != nil {
			m.err = msg.err.Error()
			return m, nil
		}
		m.status = "deleted " + msg.date
		return m, m.loadHistoryCmd()

	case tea.MouseMsg:
		if m.flow.Step() == journal.StepInput && !m.editing {
			return m.updateMouse(msg)
		}
		return m, nil

	case tea.KeyMsg:
		if k := msg.String(); k == "ctrl+q" || (k == "ctrl+c" && m.flow.Step() != journal.StepInput) {
			return m, tea.Quit
		}
		m.err = ""
		switch m.flow.Step() {
		case journal.StepInput:
			if m.editing {
				return m.updateEditor(msg)
			}
			return m.updateBoard(msg)
		case journal.StepSelect:
			return m.updateSelect(msg)
		case journal.StepChat:
			return m.updateChat(msg)
		case journal.StepHistory:
			return m.updateHistory(msg)
		}
	}
	return m, nil
}

func (m Model) updateBoard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := msg.String()
	b := m.flow.Board()

	if m.ctrl.Mode() == board.ModeConnecting {
		switch k {
		case "tab", "shift+tab":
			m.cycleSelection(k == "shift+tab")
		case "enter":
			m.completeToSelected()
		default:
			// esc cancels through the controller's key subscription
			m.events.Dispatch(board.Event{Kind: board.EventKey, Key: k})
			if m.ctrl.Mode() == board.ModeIdle {
				m.status = "connection cancelled"
			}
		}
		return m, nil
	}

	switch k {
	case "q":
		return m, tea.Quit
	case "g", "r", "i":
		cat := map[string]board.Category{"g": board.CategoryGood, "r": board.CategoryGrowth, "i": board.CategoryInsight}[k]
		n, err := b.AddNote(cat)
		if err != nil {
			m.err = err.Error()
			return m, nil
		}
		m.ctrl.Select(n.ID)
		return m.startEditing(n)
	case "e", "enter":
		if id, ok := m.ctrl.Selected(); ok {
			n, _ := b.Note(id)
			return m.startEditing(n)
		}
	case "tab", "shift+tab":
		m.cycleSelection(k == "shift+tab")
	case "up", "down", "left", "right", "k", "j", "h", "l":
		m.nudge(k)
	case "c":
		id, ok := m.ctrl.Selected()
		if !ok {
			m.err = "select a note to connect from"
			return m, nil
		}
		if err := m.ctrl.StartConnection(id, board.AnchorRight); err != nil {
			m.err = err.Error()
			return m, nil
		}
		m.status = "connecting: click a target anchor or tab + enter, esc to cancel"
	case "ctrl+c", "ctrl+v", "delete", "backspace", "x":
		if k == "x" {
			k = "delete"
		}
		if _, err := m.ctrl.Shortcut(k); err != nil {
			m.err = err.Error()
			return m, nil
		}
		if k != "ctrl+c" {
			m.flow.Touch()
		}
	case "n":
		if err := m.flow.Next(); err != nil {
			if errors.Is(err, journal.ErrNoNotes) {
				m.err = "write at least one note first"
			} else {
				m.err = err.Error()
			}
			return m, nil
		}
		m.topicCursor = 0
	case "H":
		m.flow.ShowHistory()
		return m, m.loadHistoryCmd()
	case "N":
		m.flow.NewDay()
		m.status = "new day"
	}
	return m, nil
}

func (m Model) startEditing(n board.Note) (tea.Model, tea.Cmd) {
	m.editing = true
	m.editID = n.ID
	m.editor.SetValue(n.Text)
	m.editor.CursorEnd()
	return m, m.editor.Focus()
}

func (m Model) updateEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if err := m.flow.Board().UpdateText(m.editID, strings.TrimSpace(m.editor.Value())); err != nil {
			m.err = err.Error()
		}
		m.flow.Touch()
		fallthrough
	case "esc":
		m.editing = false
		m.editID = ""
		m.editor.Blur()
		m.editor.SetValue("")
		return m, nil
	}
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

func (m Model) cycleSelection(back bool) {
	notes := m.flow.Board().Notes()
	if len(notes) == 0 {
		return
	}
	cur, _ := m.ctrl.Selected()
	i := -1
	for j, n := range notes {
		if n.ID == cur {
			i = j
		}
	}
	if back {
		i = (i - 1 + len(notes)) % len(notes)
	} else {
		i = (i + 1) % len(notes)
	}
	m.ctrl.Select(notes[i].ID)
}

func (m Model) nudge(k string) {
	id, ok := m.ctrl.Selected()
	if !ok {
		return
	}
	n, _ := m.flow.Board().Note(id)
	p := n.Position
	switch k {
	case "up", "k":
		p.Y -= moveStep
	case "down", "j":
		p.Y += moveStep
	case "left", "h":
		p.X -= moveStep
	case "right", "l":
		p.X += moveStep
	}
	if _, err := m.flow.Board().MoveNote(id, p.X, p.Y); err == nil {
		m.flow.Touch()
	}
}

// completeToSelected finishes a keyboard connection on the facing anchor
// of the selected note.
func (m *Model) completeToSelected() {
	origin, ok := m.ctrl.Connecting()
	target, sel := m.ctrl.Selected()
	if !ok || !sel {
		return
	}
	b := m.flow.Board()
	from, _ := b.Bounds(origin.NoteID)
	to, _ := b.Bounds(target)
	_, anchor := board.FacingAnchors(from, to)
	m.finishConnection(target, anchor)
}

func (m *Model) finishConnection(target string, a board.Anchor) {
	_, err := m.ctrl.CompleteConnection(target, a)
	switch {
	case errors.Is(err, board.ErrSelfLoop):
		m.err = "a note cannot connect to itself, pick another note"
	case err != nil:
		m.err = err.Error()
	default:
		m.status = "connected"
		m.flow.Touch()
	}
}

func (m Model) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	cv := m.canvas()
	x, y := msg.X, msg.Y-headerRows
	if !cv.in(x, y) {
		m.events.Dispatch(board.Event{Kind: board.EventPointerLeave})
		return m, nil
	}
	p := cv.pointOf(x, y)
	b := m.flow.Board()

	switch msg.Action {
	case tea.MouseActionMotion:
		m.events.Dispatch(board.Event{Kind: board.EventPointerMove, Point: p})
	case tea.MouseActionRelease:
		_, dragging := m.ctrl.Dragging()
		m.events.Dispatch(board.Event{Kind: board.EventPointerUp, Point: p})
		if dragging {
			m.flow.Touch()
		}
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		id, anchor, onAnchor := m.anchorAt(cv, x, y)
		if m.ctrl.Mode() == board.ModeConnecting {
			switch {
			case onAnchor:
				m.finishConnection(id, anchor)
			default:
				if n, ok := b.HitTest(p); ok {
					m.ctrl.Select(n.ID)
					m.completeToSelected()
				} else {
					m.ctrl.CancelConnection()
					m.status = "connection cancelled"
				}
			}
			return m, nil
		}
		if onAnchor {
			m.ctrl.Select(id)
			if err := m.ctrl.StartConnection(id, anchor); err != nil {
				m.err = err.Error()
			}
			return m, nil
		}
		if n, ok := b.HitTest(p); ok {
			if err := m.ctrl.BeginDrag(n.ID, p); err != nil {
				m.err = err.Error()
			}
			return m, nil
		}
		m.ctrl.Select("")
	}
	return m, nil
}

// anchorAt finds the note anchor drawn at cell (x, y), topmost note first.
// Anchors are only drawn on the selected note until a connection starts.
func (m Model) anchorAt(cv *canvas, x, y int) (string, board.Anchor, bool) {
	b := m.flow.Board()
	notes := b.Notes()
	selected, _ := m.ctrl.Selected()
	connecting := m.ctrl.Mode() == board.ModeConnecting
	for i := len(notes) - 1; i >= 0; i-- {
		if !connecting && notes[i].ID != selected {
			continue
		}
		for _, a := range board.Anchors {
			ap, ok := b.AnchorPosition(notes[i].ID, a)
			if !ok {
				continue
			}
			if c := cv.cellOf(ap); c.x == x && c.y == y {
				return notes[i].ID, a, true
			}
		}
	}
	return "", "", false
}

func (m Model) updateSelect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	notes := m.flow.Board().FilledNotes()
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		m.topicCursor = max(m.topicCursor-1, 0)
	case "down", "j":
		m.topicCursor = min(m.topicCursor+1, max(len(notes)-1, 0))
	case "enter":
		if m.topicCursor >= len(notes) {
			return m, nil
		}
		if err := m.flow.SelectTopic(notes[m.topicCursor].ID); err != nil {
			m.err = err.Error()
			return m, nil
		}
		m.status = ""
		return m, m.input.Focus()
	case "esc", "b":
		m.flow.Back()
	case "H":
		m.flow.ShowHistory()
		return m, m.loadHistoryCmd()
	}
	return m, nil
}

func (m Model) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.input.Blur()
		m.input.SetValue("")
		m.status = ""
		m.flow.Back()
		return m, nil
	case "enter":
		text := strings.TrimSpace(m.input.Value())
		if text == "" || m.responding {
			return m, nil
		}
		m.input.SetValue("")
		m.responding = true
		m.status = ""
		return m, tea.Batch(m.sendCmd(text), m.spin.Tick)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) sendCmd(text string) tea.Cmd {
	flow, ctx := m.flow, m.ctx
	return func() tea.Msg {
		reply, ok, err := flow.Send(ctx, text)
		return replyMsg{reply: reply, ok: ok, err: err}
	}
}

func (m Model) loadHistoryCmd() tea.Cmd {
	store, ctx := m.store, m.ctx
	return func() tea.Msg {
		if store == nil {
			return historyMsg{}
		}
		recs, err := store.List(ctx)
		return historyMsg{recs: recs, err: err}
	}
}

func (m Model) deleteCmd(date string) tea.Cmd {
	store, ctx := m.store, m.ctx
	return func() tea.Msg {
		if store == nil {
			return deletedMsg{date: date}
		}
		return deletedMsg{date: date, err: store.Delete(ctx, date)}
	}
}

func (m Model) visibleHistory() []db.Record {
	return journal.Filter(m.history, m.search.Value())
}

func (m Model) updateHistory(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		switch msg.String() {
		case "enter", "esc":
			m.searching = false
			m.search.Blur()
			if msg.String() == "esc" {
				m.search.SetValue("")
			}
			m.histCursor = 0
			return m, nil
		}
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		m.histCursor = 0
		return m, cmd
	}

	recs := m.visibleHistory()
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc":
		m.flow.Back()
		return m, m.focusForStep()
	case "/":
		m.searching = true
		return m, m.search.Focus()
	case "up", "k":
		m.histCursor = max(m.histCursor-1, 0)
	case "down", "j":
		m.histCursor = min(m.histCursor+1, max(len(recs)-1, 0))
	case "d":
		if m.histCursor < len(recs) {
			return m, m.deleteCmd(recs[m.histCursor].Date)
		}
	case "enter", "b":
		if m.histCursor >= len(recs) {
			return m, nil
		}
		rec := recs[m.histCursor]
		conversation := msg.String() == "enter" && rec.SelectedItem != nil && len(rec.ChatMessages) > 0
		if err := m.flow.Resume(rec, conversation); err != nil {
			m.err = err.Error()
			return m, nil
		}
		m.status = "resumed " + rec.Date
		return m, m.focusForStep()
	}
	return m, nil
}

func (m *Model) focusForStep() tea.Cmd {
	if m.flow.Step() == journal.StepChat {
		return m.input.Focus()
	}
	m.input.Blur()
	return nil
}

func (m Model) canvas() *canvas {
	rows := m.height - headerRows - footerRows
	if m.editing {
		rows--
	}
	return newCanvas(m.width, rows, m.flow.Board().Layout())
}

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	var body, hints string
	switch m.flow.Step() {
	case journal.StepInput:
		body = m.renderBoard()
		hints = "g/r/i add good/growth/insight · enter edit · tab select · arrows move · drag notes · c or click ● connect · x delete · ctrl+c/ctrl+v copy/paste · n next · H history · q quit"
		if m.ctrl.Mode() == board.ModeConnecting {
			hints = "connecting · click a ● on another note or tab + enter · esc cancel"
		}
	case journal.StepSelect:
		body = m.renderSelect()
		hints = "↑/↓ choose · enter talk about it · esc back to board · H history"
	case journal.StepChat:
		body = m.renderChat()
		hints = "enter send · esc back to topics · ctrl+q quit"
	case journal.StepHistory:
		body = m.renderHistory()
		hints = "↑/↓ move · enter resume chat · b open board · / search · d delete · esc back"
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		lipgloss.NewStyle().Height(max(m.height-headerRows-footerRows, 1)).MaxHeight(max(m.height-headerRows-footerRows, 1)).Render(body),
		m.theme.Hint.Render(truncate(hints, m.width)),
		m.renderStatus(),
	)
}

func (m Model) renderHeader() string {
	steps := []journal.Step{journal.StepInput, journal.StepSelect, journal.StepChat, journal.StepHistory}
	cur := m.flow.Step()
	parts := make([]string, 0, len(steps))
	for _, s := range steps {
		if s == cur {
			parts = append(parts, m.theme.Selected.Render(string(s)))
		} else {
			parts = append(parts, m.theme.Label.Render(string(s)))
		}
	}
	title := m.theme.Title.Render("reflectboard "+version.Version) + "  " + m.theme.Label.Render(m.flow.Today()) + "  " + strings.Join(parts, " › ")
	return title + "\n" + m.theme.Rule.Render(strings.Repeat("─", m.width))
}

func (m Model) renderStatus() string {
	switch {
	case m.err != "":
		return m.theme.Error.Render(truncate(m.err, m.width))
	case m.status != "":
		return m.theme.Success.Render(truncate(m.status, m.width))
	}
	return ""
}

func (m Model) renderBoard() string {
	cv := m.canvas()
	b := m.flow.Board()
	l := b.Layout()
	notes := b.Notes()
	selected, _ := m.ctrl.Selected()

	w := span(l.NoteWidth, cv.sx)
	minH := span(l.NoteHeight, cv.sy)
	type placed struct {
		note  board.Note
		at    cellPos
		h     int
		lines []string
	}
	boxes := make([]placed, 0, len(notes))
	for _, n := range notes {
		text := n.Text
		if m.editing && n.ID == m.editID {
			text = m.editor.Value()
		}
		lines := wrap(text, max(w-2, 1))
		if strings.TrimSpace(text) == "" {
			lines = []string{"…"}
		}
		h := max(minH, len(lines)+2)
		// wrapped text makes notes taller than the default
		b.ReportHeight(n.ID, float64(h)*cv.sy)
		boxes = append(boxes, placed{note: n, at: cv.cellOf(n.Position), h: h, lines: lines})
	}

	type head struct {
		at cellPos
		r  rune
		st int
	}
	var heads []head
	link := cv.style(m.theme.Link)
	for _, c := range b.Connections() {
		path, err := b.ConnectionPath(c)
		if err != nil {
			continue
		}
		if at, r, ok := cv.path(path.Points, link, false); ok {
			heads = append(heads, head{at, r, link})
		}
		if c.Label != "" {
			mid := cv.cellOf(path.Points[len(path.Points)/2])
			cv.text(mid.x+1, mid.y, c.Label, link)
		}
	}
	if from, to, ok := m.ctrl.Preview(); ok {
		pst := cv.style(m.theme.Preview)
		if at, r, ok := cv.path(board.Route(from, to).Points, pst, true); ok {
			heads = append(heads, head{at, r, pst})
		}
	}

	for _, p := range boxes {
		border := m.theme.Category(p.note.Category)
		if p.note.ID == selected {
			border = border.Bold(true).Reverse(true)
		}
		cv.box(p.at.x, p.at.y, w, p.h, p.lines, cv.style(border), 0)
	}
	for _, h := range heads {
		cv.set(h.at.x, h.at.y, h.r, h.st)
	}

	// anchors are shown where they can be used
	anchor := cv.style(m.theme.Anchor)
	connecting := m.ctrl.Mode() == board.ModeConnecting
	for _, p := range boxes {
		if !connecting && p.note.ID != selected {
			continue
		}
		for _, a := range board.Anchors {
			if ap, ok := b.AnchorPosition(p.note.ID, a); ok {
				c := cv.cellOf(ap)
				cv.set(c.x, c.y, '●', anchor)
			}
		}
	}

	if len(notes) == 0 {
		cv.text(2, 1, "Empty board. Press g, r or i to add what went well, what to grow, or an insight.", cv.style(m.theme.Hint))
	}

	out := cv.String()
	if m.editing {
		out += "\n" + m.theme.Label.Render("note: ") + m.editor.View()
	}
	return out
}

func (m Model) renderSelect() string {
	var sb strings.Builder
	sb.WriteString(m.theme.Title.Render("Which one do you want to think about more deeply?") + "\n\n")
	for i, n := range m.flow.Board().FilledNotes() {
		marker := "  "
		line := m.theme.Category(n.Category).Render("["+string(n.Category)+"]") + " " + truncate(n.Text, m.width-16)
		if i == m.topicCursor {
			marker = m.theme.Selected.Render("▶ ")
			line = m.theme.Selected.Render(truncate(n.Text, m.width-16))
			line = m.theme.Category(n.Category).Render("["+string(n.Category)+"]") + " " + line
		}
		sb.WriteString(marker + line + "\n")
	}
	return sb.String()
}

func (m Model) renderChat() string {
	var sb strings.Builder
	if topic, ok := m.flow.Topic(); ok {
		sb.WriteString(m.theme.Label.Render("topic ") + m.theme.Selected.Render(truncate(topic.Text, m.width-8)) + "\n\n")
	}

	var lines []string
	width := max(m.width-8, 20)
	for _, msg := range m.flow.Chat().Messages() {
		who, st := "coach", m.theme.AI
		if msg.Sender == coach.SenderUser {
			who, st = "you", m.theme.User
		}
		for i, l := range wrap(msg.Text, width) {
			prefix := "      "
			if i == 0 {
				prefix = fmt.Sprintf("%-6s", who)
			}
			lines = append(lines, st.Render(prefix)+l)
		}
	}
	if m.responding {
		line := m.spin.View() + " thinking"
		if s := m.flow.Chat().Status(); s != "" {
			line += " · " + s
		}
		lines = append(lines, m.theme.Hint.Render(line))
	}

	// keep the newest lines in view
	room := max(m.height-headerRows-footerRows-4, 1)
	if len(lines) > room {
		lines = lines[len(lines)-room:]
	}
	sb.WriteString(strings.Join(lines, "\n"))
	sb.WriteString("\n\n" + m.input.View())
	return sb.String()
}

func (m Model) renderHistory() string {
	var sb strings.Builder
	if m.searching || m.search.Value() != "" {
		sb.WriteString(m.theme.Label.Render("search ") + m.search.View() + "\n\n")
	}
	recs := m.visibleHistory()
	if len(recs) == 0 {
		sb.WriteString(m.theme.Hint.Render("No reflections yet."))
		return sb.String()
	}

	cur := recs[min(m.histCursor, len(recs)-1)].Date
	for _, g := range journal.GroupByMonth(recs) {
		sb.WriteString(m.theme.Title.Render(g.Month) + "\n")
		for _, r := range g.Records {
			topic := "(no topic)"
			if r.SelectedItem != nil {
				topic = r.SelectedItem.Text
			}
			line := fmt.Sprintf("%s  %2d notes  %s", r.Date, len(r.Items), truncate(topic, m.width-26))
			if r.Date == cur {
				sb.WriteString(m.theme.Selected.Render("▶ "+line) + "\n")
			} else {
				sb.WriteString("  " + line + "\n")
			}
		}
	}
	return sb.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 1 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
