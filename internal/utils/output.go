package utils

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ramanasai/reflectboard/internal/board"
	"github.com/ramanasai/reflectboard/internal/coach"
	"github.com/ramanasai/reflectboard/internal/db"
)

type OutputFormat string

const (
	FormatDefault OutputFormat = "default"
	FormatTable   OutputFormat = "table"
	FormatJSON    OutputFormat = "json"
	FormatCSV     OutputFormat = "csv"
	FormatCompact OutputFormat = "compact"
	FormatQuiet   OutputFormat = "quiet"
)

func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatDefault, nil
	case FormatDefault, FormatTable, FormatJSON, FormatCSV, FormatCompact, FormatQuiet:
		return f, nil
	}
	return "", fmt.Errorf("unknown format %q", s)
}

type RenderConfig struct {
	Format OutputFormat
	Width  int
	Color  bool
}

// DefaultRenderConfig sizes output to $COLUMNS when it is set.
func DefaultRenderConfig() RenderConfig {
	width := 100
	if v, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil && v > 40 {
		width = v
	}
	return RenderConfig{Format: FormatDefault, Width: width, Color: true}
}

// RecordList is a page of days plus the query that produced it.
type RecordList struct {
	Records []db.Record `json:"records"`
	Page    Page        `json:"pagination"`
	Query   string      `json:"query,omitempty"`
	Since   string      `json:"since,omitempty"`
	Until   string      `json:"until,omitempty"`
}

type Renderer struct {
	cfg    RenderConfig
	styles styles
}

type styles struct {
	title, separator, meta, topic, text, ai, user, highlight lipgloss.Style
}

func NewRenderer(cfg RenderConfig) *Renderer {
	if cfg.Width <= 0 {
		cfg.Width = 100
	}
	return &Renderer{cfg: cfg, styles: newStyles(cfg.Color)}
}

func newStyles(color bool) styles {
	if !color {
		bold := lipgloss.NewStyle().Bold(true)
		plain := lipgloss.NewStyle()
		return styles{title: bold, separator: plain, meta: plain, topic: bold, text: plain, ai: plain, user: plain, highlight: bold}
	}
	return styles{
		title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#A6E3A1")),
		separator: lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086")),
		meta:      lipgloss.NewStyle().Faint(true),
		topic:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F9E2AF")),
		text:      lipgloss.NewStyle(),
		ai:        lipgloss.NewStyle().Foreground(lipgloss.Color("#89B4FA")),
		user:      lipgloss.NewStyle().Foreground(lipgloss.Color("#CBA6F7")),
		highlight: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F9E2AF")),
	}
}

// CategoryColor is shared with the TUI so both surfaces agree.
func CategoryColor(c board.Category) lipgloss.Color {
	switch c {
	case board.CategoryGood:
		return lipgloss.Color("#A6E3A1")
	case board.CategoryGrowth:
		return lipgloss.Color("#FAB387")
	case board.CategoryInsight:
		return lipgloss.Color("#89B4FA")
	default:
		return lipgloss.Color("#94E2D5")
	}
}

func (r *Renderer) rule() string {
	return r.styles.separator.Render(strings.Repeat("─", min(r.cfg.Width, 120)))
}

func (r *Renderer) RenderList(list RecordList) (string, error) {
	switch r.cfg.Format {
	case FormatJSON:
		return renderJSON(list)
	case FormatCSV:
		return renderCSV(list.Records)
	case FormatTable:
		return r.renderTable(list.Records), nil
	case FormatCompact:
		return r.renderCompact(list.Records), nil
	case FormatQuiet:
		var b strings.Builder
		for _, rec := range list.Records {
			b.WriteString(rec.Date + "\n")
		}
		return b.String(), nil
	default:
		return r.renderDefault(list), nil
	}
}

func (r *Renderer) renderDefault(list RecordList) string {
	var b strings.Builder
	if list.Query != "" {
		b.WriteString(r.styles.title.Render("Search results"))
		b.WriteString("  " + r.styles.separator.Render("query: ") + list.Query)
	} else {
		b.WriteString(r.styles.title.Render("Reflections"))
		if list.Since != "" {
			b.WriteString("  " + r.styles.meta.Render(list.Since+" → "+list.Until))
		}
	}
	b.WriteString("\n" + r.rule() + "\n")

	for _, rec := range list.Records {
		b.WriteString(r.summaryBlock(rec, list.Query))
		b.WriteString(r.rule() + "\n")
	}

	if list.Page.Total > 0 {
		b.WriteString(r.styles.meta.Render(list.Page.Summary()) + "\n")
	}
	if nav := list.Page.Navigation(); nav != "" {
		b.WriteString(r.styles.meta.Render(nav) + "\n")
	}
	return b.String()
}

func (r *Renderer) summaryBlock(rec db.Record, query string) string {
	var b strings.Builder
	counts := countByCategory(rec.Items)
	meta := []string{r.styles.title.Render(rec.Date)}
	for _, c := range board.Categories {
		if counts[c] > 0 {
			st := lipgloss.NewStyle().Foreground(CategoryColor(c))
			if !r.cfg.Color {
				st = lipgloss.NewStyle()
			}
			meta = append(meta, st.Render(fmt.Sprintf("%s:%d", c, counts[c])))
		}
	}
	if n := userTurns(rec.ChatMessages); n > 0 {
		meta = append(meta, r.styles.meta.Render(fmt.Sprintf("%d turn%s", n, plural(n))))
	}
	b.WriteString(strings.Join(meta, "  ") + "\n")

	if rec.SelectedItem != nil {
		b.WriteString("  " + r.styles.topic.Render("★ "+oneLine(rec.SelectedItem.Text, r.cfg.Width-4)) + "\n")
	}
	for _, n := range rec.Items {
		if rec.SelectedItem != nil && n.ID == rec.SelectedItem.ID {
			continue
		}
		text := oneLine(n.Text, r.cfg.Width-6)
		if query != "" {
			text = r.highlight(text, query)
		}
		b.WriteString("  · " + r.styles.text.Render(text) + "\n")
	}
	return b.String()
}

// RenderRecord shows one day in full: notes by category, connections and
// the coaching transcript.
func (r *Renderer) RenderRecord(rec db.Record) (string, error) {
	if r.cfg.Format == FormatJSON {
		return renderJSON(rec)
	}
	var b strings.Builder
	b.WriteString(r.styles.title.Render("Reflection " + rec.Date))
	b.WriteString("\n" + r.rule() + "\n")

	byID := map[string]board.Note{}
	for _, c := range board.Categories {
		var notes []board.Note
		for _, n := range rec.Items {
			byID[n.ID] = n
			if n.Category == c {
				notes = append(notes, n)
			}
		}
		if len(notes) == 0 {
			continue
		}
		head := lipgloss.NewStyle().Bold(true)
		if r.cfg.Color {
			head = head.Foreground(CategoryColor(c))
		}
		b.WriteString(head.Render(string(c)) + "\n")
		for _, n := range notes {
			b.WriteString("  · " + n.Text + "\n")
		}
	}

	if len(rec.Connections) > 0 {
		b.WriteString("\n" + r.styles.meta.Render("connections") + "\n")
		for _, c := range rec.Connections {
			line := fmt.Sprintf("  %s → %s", oneLine(byID[c.From].Text, 40), oneLine(byID[c.To].Text, 40))
			if c.Label != "" {
				line += "  (" + c.Label + ")"
			}
			b.WriteString(line + "\n")
		}
	}

	if rec.SelectedItem != nil {
		b.WriteString("\n" + r.styles.topic.Render("Topic: "+rec.SelectedItem.Text) + "\n")
	}
	for _, m := range rec.ChatMessages {
		if m.Sender == coach.SenderAI {
			b.WriteString(r.styles.ai.Render("coach ") + m.Text + "\n")
		} else {
			b.WriteString(r.styles.user.Render("you   ") + m.Text + "\n")
		}
	}
	return b.String(), nil
}

func (r *Renderer) RenderStats(s db.Stats) (string, error) {
	if r.cfg.Format == FormatJSON {
		return renderJSON(s)
	}
	var b strings.Builder
	b.WriteString(r.styles.title.Render("Journal stats") + "\n" + r.rule() + "\n")
	row := func(k string, v any) {
		b.WriteString(fmt.Sprintf("%-16s %v\n", k, v))
	}
	row("days", s.Days)
	if s.Days > 0 {
		row("range", s.FirstDate+" → "+s.LastDate)
	}
	row("current streak", s.CurrentStreak)
	row("longest streak", s.LongestStreak)
	for _, c := range board.Categories {
		row(string(c)+" notes", s.NotesByCategory[c])
	}
	row("connections", s.Connections)
	row("topics", s.Topics)
	row("chat turns", s.ChatTurns)
	row("avg turns/topic", fmt.Sprintf("%.1f", s.AvgChatTurns))
	return b.String(), nil
}

func renderJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal json: %w", err)
	}
	return string(data) + "\n", nil
}

func renderCSV(recs []db.Record) (string, error) {
	var b strings.Builder
	w := csv.NewWriter(&b)
	_ = w.Write([]string{"date", "good", "growth", "insight", "connections", "topic", "turns"})
	for _, rec := range recs {
		counts := countByCategory(rec.Items)
		topic := ""
		if rec.SelectedItem != nil {
			topic = rec.SelectedItem.Text
		}
		_ = w.Write([]string{
			rec.Date,
			strconv.Itoa(counts[board.CategoryGood]),
			strconv.Itoa(counts[board.CategoryGrowth]),
			strconv.Itoa(counts[board.CategoryInsight]),
			strconv.Itoa(len(rec.Connections)),
			topic,
			strconv.Itoa(userTurns(rec.ChatMessages)),
		})
	}
	w.Flush()
	return b.String(), w.Error()
}

func (r *Renderer) renderTable(recs []db.Record) string {
	var b strings.Builder
	b.WriteString("DATE\tNOTES\tLINKS\tTURNS\tTOPIC\n")
	b.WriteString(strings.Repeat("-", r.cfg.Width) + "\n")
	for _, rec := range recs {
		topic := ""
		if rec.SelectedItem != nil {
			topic = oneLine(rec.SelectedItem.Text, 50)
		}
		fmt.Fprintf(&b, "%s\t%d\t%d\t%d\t%s\n", rec.Date, len(rec.Items), len(rec.Connections), userTurns(rec.ChatMessages), topic)
	}
	return b.String()
}

func (r *Renderer) renderCompact(recs []db.Record) string {
	var b strings.Builder
	for _, rec := range recs {
		line := r.styles.meta.Render(rec.Date) + " " + fmt.Sprintf("%d notes", len(rec.Items))
		if rec.SelectedItem != nil {
			line += " " + r.styles.topic.Render(oneLine(rec.SelectedItem.Text, 70))
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (r *Renderer) highlight(text, query string) string {
	i := strings.Index(strings.ToLower(text), strings.ToLower(query))
	if i < 0 {
		return text
	}
	j := i + len(query)
	if j > len(text) {
		return text
	}
	return text[:i] + r.styles.highlight.Render(text[i:j]) + text[j:]
}

func countByCategory(notes []board.Note) map[board.Category]int {
	m := make(map[board.Category]int, len(board.Categories))
	for _, n := range notes {
		m[n.Category]++
	}
	return m
}

func userTurns(msgs []coach.Message) int {
	n := 0
	for _, m := range msgs {
		if m.Sender == coach.SenderUser {
			n++
		}
	}
	return n
}

// oneLine flattens newlines and truncates to max runes.
func oneLine(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	if max < 4 {
		max = 4
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
