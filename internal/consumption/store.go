package consumption

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
)

var (
	ErrInvalidArgument = errors.New("invalid filter argument")
	ErrUnknownTable    = errors.New("table has no columns")
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Store reads the consumption table. The column list is fetched once at
// construction and reused to label every row for the process lifetime;
// the table itself only changes between importer runs.
type Store struct {
	db      *sql.DB
	table   string
	columns []string
}

func NewStore(ctx context.Context, db *sql.DB, table string) (*Store, error) {
	if !identPattern.MatchString(table) {
		return nil, fmt.Errorf("%w: table name %q", ErrInvalidArgument, table)
	}
	s := &Store{db: db, table: table}
	const q = `
		SELECT column_name FROM information_schema.columns
		WHERE table_schema = 'public' AND table_name = $1
		ORDER BY ordinal_position
	`
	rows, err := db.QueryContext(ctx, q, table)
	if err != nil {
		return nil, fmt.Errorf("fetch columns: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		s.columns = append(s.columns, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(s.columns) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	return s, nil
}

func (s *Store) Columns() []string {
	return s.columns
}

func (s *Store) All(ctx context.Context) ([][]string, error) {
	return s.queryRows(ctx, "SELECT * FROM "+s.table+" ORDER BY id")
}

// ByID accepts a comma-separated identifier list. Every token must be
// an integer; the list is bound as an array, never spliced into SQL.
func (s *Store) ByID(ctx context.Context, idList string) ([][]string, error) {
	ids, err := parseIDList(idList)
	if err != nil {
		return nil, err
	}
	return s.queryRows(ctx,
		"SELECT * FROM "+s.table+" WHERE id = ANY($1) ORDER BY id",
		pq.Array(ids))
}

// ByDate matches the date's text rendering, so SQL wildcards in the
// pattern keep working. The pattern travels in the bind value.
func (s *Store) ByDate(ctx context.Context, pattern string) ([][]string, error) {
	if pattern == "" {
		return nil, fmt.Errorf("%w: empty date", ErrInvalidArgument)
	}
	return s.queryRows(ctx,
		"SELECT * FROM "+s.table+" WHERE date::text LIKE $1 ORDER BY id",
		pattern)
}

// ByRange compares on the timestamp column itself. Bounds may carry a
// trailing SQL wildcard ("2019-09-11 12:%"); normalizeBound coerces them
// to full timestamps first, so the noon reading sits inside the range
// exactly as it did under MySQL's string-to-datetime coercion.
func (s *Store) ByRange(ctx context.Context, start, end string) ([][]string, error) {
	from, err := normalizeBound(start)
	if err != nil {
		return nil, err
	}
	to, err := normalizeBound(end)
	if err != nil {
		return nil, err
	}
	return s.queryRows(ctx,
		"SELECT * FROM "+s.table+" WHERE date BETWEEN $1 AND $2 ORDER BY id",
		from, to)
}

const boundLayout = "2006-01-02 15:04:05"

// normalizeBound truncates a range bound at the first SQL wildcard and
// fills the missing tail from a zeroed template, mirroring how MySQL
// coerced partial date strings: "2019-09-11 12:%" becomes
// "2019-09-11 12:00:00". The result must parse as a full timestamp.
func normalizeBound(raw string) (string, error) {
	const pad = "0000-01-01 00:00:00"
	bound := raw
	if i := strings.IndexAny(bound, "%_"); i >= 0 {
		bound = bound[:i]
	}
	if bound == "" || len(bound) > len(pad) {
		return "", fmt.Errorf("%w: range bound %q", ErrInvalidArgument, raw)
	}
	bound += pad[len(bound):]
	if _, err := time.Parse(boundLayout, bound); err != nil {
		return "", fmt.Errorf("%w: range bound %q is not a date", ErrInvalidArgument, raw)
	}
	return bound, nil
}

func parseIDList(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("%w: empty id list", ErrInvalidArgument)
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: id %q is not numeric", ErrInvalidArgument, p)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *Store) queryRows(ctx context.Context, query string, args ...any) ([][]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := [][]string{}
	for rows.Next() {
		raw := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		rec := make([]string, len(cols))
		for i, v := range raw {
			rec[i] = coerce(v)
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// coerce renders a scanned value the way the response contract expects:
// everything is a string, NULL is empty.
func coerce(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case time.Time:
		return t.Format("2006-01-02 15:04:05")
	case []byte:
		return string(t)
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
