package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ramanasai/reflectboard/internal/board"
	"github.com/ramanasai/reflectboard/internal/coach"
	"github.com/ramanasai/reflectboard/internal/encryption"
	"go.uber.org/zap"
)

// DateLayout is the calendar-day key of a record.
const DateLayout = "2006-01-02"

var (
	ErrNotFound    = errors.New("record not found")
	ErrInvalidDate = errors.New("invalid date, want YYYY-MM-DD")
	// ErrUnreadable wraps every failure to decode a stored row.
	ErrUnreadable = errors.New("record unreadable")
)

// Record is one day's reflection.
type Record struct {
	Date         string             `json:"date"`
	Items        []board.Note       `json:"items"`
	Connections  []board.Connection `json:"connections"`
	SelectedItem *board.Note        `json:"selectedItem"`
	ChatMessages []coach.Message    `json:"chatMessages"`
	CreatedAt    time.Time          `json:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt"`
}

// Matches reports whether keyword occurs, ignoring case, in any note,
// the selected topic or any chat message. An empty keyword matches.
func (r Record) Matches(keyword string) bool {
	k := strings.ToLower(strings.TrimSpace(keyword))
	if k == "" {
		return true
	}
	has := func(s string) bool { return strings.Contains(strings.ToLower(s), k) }
	for _, n := range r.Items {
		if has(n.Text) {
			return true
		}
	}
	if r.SelectedItem != nil && has(r.SelectedItem.Text) {
		return true
	}
	for _, m := range r.ChatMessages {
		if has(m.Text) {
			return true
		}
	}
	return false
}

// ValidDate reports whether s is a YYYY-MM-DD calendar day.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// normalize keeps only notes with text and connections whose endpoints
// both survive.
func normalize(rec Record) Record {
	items := make([]board.Note, 0, len(rec.Items))
	kept := make(map[string]bool, len(rec.Items))
	for _, n := range rec.Items {
		if n.Filled() {
			items = append(items, n)
			kept[n.ID] = true
		}
	}
	conns := make([]board.Connection, 0, len(rec.Connections))
	for _, c := range rec.Connections {
		if c.From != c.To && kept[c.From] && kept[c.To] {
			conns = append(conns, c)
		}
	}
	rec.Items = items
	rec.Connections = conns
	if rec.ChatMessages == nil {
		rec.ChatMessages = []coach.Message{}
	}
	return rec
}

// Store persists records keyed by date.
type Store struct {
	db     *sql.DB
	sl     sealer
	now    func() time.Time
	logger *zap.Logger
}

type StoreOption func(*Store)

// WithEncryptor seals every record written from now on.
func WithEncryptor(e *encryption.Encryptor) StoreOption {
	return func(s *Store) { s.sl = sealer{enc: e} }
}

func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

func WithLogger(l *zap.Logger) StoreOption {
	return func(s *Store) { s.logger = l }
}

func NewStore(db *sql.DB, opts ...StoreOption) *Store {
	s := &Store{db: db, now: time.Now, logger: zap.NewNop()}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) Encrypted() bool { return s.sl.enabled() }

const recordColumns = `date, items, connections, selected_item, chat_messages, encrypted, created_at, updated_at`

// Upsert writes the record for rec.Date, replacing any previous one.
// CreatedAt of an existing record is kept. A stored row this store cannot
// read (sealed without a passphrase configured, or under another one) is
// never overwritten; the error wraps ErrUnreadable and the cause.
func (s *Store) Upsert(ctx context.Context, rec Record) (Record, error) {
	if !ValidDate(rec.Date) {
		return Record{}, fmt.Errorf("upsert %q: %w", rec.Date, ErrInvalidDate)
	}
	rec = normalize(rec)

	items, err := json.Marshal(rec.Items)
	if err != nil {
		return Record{}, fmt.Errorf("encode items: %w", err)
	}
	conns, err := json.Marshal(rec.Connections)
	if err != nil {
		return Record{}, fmt.Errorf("encode connections: %w", err)
	}
	chat, err := json.Marshal(rec.ChatMessages)
	if err != nil {
		return Record{}, fmt.Errorf("encode chat: %w", err)
	}
	itemsS, connsS, chatS := string(items), string(conns), string(chat)

	var selected sql.NullString
	if rec.SelectedItem != nil {
		b, err := json.Marshal(rec.SelectedItem)
		if err != nil {
			return Record{}, fmt.Errorf("encode selected item: %w", err)
		}
		selected = sql.NullString{String: string(b), Valid: true}
	}

	if err := s.sl.seal(&itemsS, &connsS, &chatS); err != nil {
		return Record{}, err
	}
	if selected.Valid {
		if err := s.sl.seal(&selected.String); err != nil {
			return Record{}, err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Record{}, fmt.Errorf("upsert %s: %w", rec.Date, err)
	}
	defer func() { _ = tx.Rollback() }()

	existing := tx.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM reflections WHERE date = ?`, rec.Date)
	if _, err := s.scan(existing); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("upsert %s: %w", rec.Date, err)
	}

	now := s.now().UTC().Format(time.RFC3339Nano)
	_, err = tx.ExecContext(ctx, `
		INSERT INTO reflections (`+recordColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			items = excluded.items,
			connections = excluded.connections,
			selected_item = excluded.selected_item,
			chat_messages = excluded.chat_messages,
			encrypted = excluded.encrypted,
			updated_at = excluded.updated_at
	`, rec.Date, itemsS, connsS, selected, chatS, s.sl.enabled(), now, now)
	if err != nil {
		return Record{}, fmt.Errorf("upsert %s: %w", rec.Date, err)
	}
	if err := tx.Commit(); err != nil {
		return Record{}, fmt.Errorf("upsert %s: %w", rec.Date, err)
	}
	return s.Get(ctx, rec.Date)
}

func (s *Store) Get(ctx context.Context, date string) (Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM reflections WHERE date = ?`, date)
	rec, err := s.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("get %s: %w", date, ErrNotFound)
	}
	return rec, err
}

// List returns every record, newest date first.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	return s.ListRange(ctx, "", "", 0, 0)
}

// ListRange returns records with since <= date <= until, newest first.
// Empty bounds are open; limit <= 0 means no limit. Unreadable rows are
// logged and left out, so a page can be short of limit (Count still
// includes them).
func (s *Store) ListRange(ctx context.Context, since, until string, limit, offset int) ([]Record, error) {
	where, args := rangeClause(since, until)
	if limit <= 0 {
		limit = -1
	}
	args = append(args, limit, offset)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM reflections`+where+` ORDER BY date DESC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := s.scan(rows)
		if errors.Is(err, ErrUnreadable) {
			s.logger.Warn("skipping unreadable record", zap.Error(err))
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Count returns the number of records in the range.
func (s *Store) Count(ctx context.Context, since, until string) (int, error) {
	where, args := rangeClause(since, until)
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reflections`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

// Search filters records in Go so encrypted payloads are searchable too.
func (s *Store) Search(ctx context.Context, keyword string) ([]Record, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, r := range all {
		if r.Matches(keyword) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, date string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM reflections WHERE date = ?`, date)
	if err != nil {
		return fmt.Errorf("delete %s: %w", date, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s: %w", date, err)
	}
	if n == 0 {
		return fmt.Errorf("delete %s: %w", date, ErrNotFound)
	}
	return nil
}

func rangeClause(since, until string) (string, []any) {
	var conds []string
	var args []any
	if since != "" {
		conds = append(conds, "date >= ?")
		args = append(args, since)
	}
	if until != "" {
		conds = append(conds, "date <= ?")
		args = append(args, until)
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

type scanner interface {
	Scan(dest ...any) error
}

func (s *Store) scan(sc scanner) (Record, error) {
	var (
		rec                  Record
		items, conns, chat   string
		selected             sql.NullString
		encrypted            bool
		createdAt, updatedAt string
	)
	if err := sc.Scan(&rec.Date, &items, &conns, &selected, &chat, &encrypted, &createdAt, &updatedAt); err != nil {
		return Record{}, err
	}
	if err := s.sl.open(encrypted, &items, &conns, &chat); err != nil {
		return Record{}, fmt.Errorf("record %s: %w: %w", rec.Date, ErrUnreadable, err)
	}
	if selected.Valid {
		if err := s.sl.open(encrypted, &selected.String); err != nil {
			return Record{}, fmt.Errorf("record %s: %w: %w", rec.Date, ErrUnreadable, err)
		}
	}

	if err := json.Unmarshal([]byte(items), &rec.Items); err != nil {
		return Record{}, fmt.Errorf("record %s items: %w: %w", rec.Date, ErrUnreadable, err)
	}
	if err := json.Unmarshal([]byte(conns), &rec.Connections); err != nil {
		return Record{}, fmt.Errorf("record %s connections: %w: %w", rec.Date, ErrUnreadable, err)
	}
	if err := json.Unmarshal([]byte(chat), &rec.ChatMessages); err != nil {
		return Record{}, fmt.Errorf("record %s chat: %w: %w", rec.Date, ErrUnreadable, err)
	}
	if selected.Valid && selected.String != "" && selected.String != "null" {
		var n board.Note
		if err := json.Unmarshal([]byte(selected.String), &n); err != nil {
			return Record{}, fmt.Errorf("record %s selected item: %w: %w", rec.Date, ErrUnreadable, err)
		}
		rec.SelectedItem = &n
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	rec.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return rec, nil
}
