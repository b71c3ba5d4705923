package source

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/okian/rollcall/internal/domain/model"
	"github.com/okian/rollcall/pkg/logger"
)

// DefaultQuery reads the attendance sheet mirrored into a table.
const DefaultQuery = "SELECT date, name, idx FROM attendance"

// SQLSource runs a read-only query and maps its columns to raw rows.
type SQLSource struct {
	db      *sqlx.DB
	query   string
	columns Columns
	timeout time.Duration
	logger  logger.Logger
}

// Connect opens and pings a database. driver is any registered
// database/sql driver name, e.g. "sqlite3" or "postgres".
func Connect(ctx context.Context, driver, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, unavailable(KindSQL, fmt.Errorf("connect %s: %w", driver, err))
	}
	return db, nil
}

// NewSQLSource constructs a SQLSource. An empty query uses DefaultQuery.
func NewSQLSource(db *sqlx.DB, query string, opts ...Option) *SQLSource {
	s := newSettings(opts)
	if strings.TrimSpace(query) == "" {
		query = DefaultQuery
	}
	return &SQLSource{db: db, query: query, columns: s.columns, timeout: s.timeout, logger: s.logger}
}

// Name implements Source.
func (s *SQLSource) Name() string { return KindSQL }

// Fetch implements Source.
func (s *SQLSource) Fetch(ctx context.Context) ([]model.RawRow, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rs, err := s.db.QueryxContext(ctx, s.query)
	if err != nil {
		return nil, unavailable(s.Name(), err)
	}
	defer rs.Close()

	header, err := rs.Columns()
	if err != nil {
		return nil, unavailable(s.Name(), err)
	}
	idx, err := resolve(header, s.columns)
	if err != nil {
		return nil, unavailable(s.Name(), err)
	}

	rows := []model.RawRow{}
	for rs.Next() {
		vals, err := rs.SliceScan()
		if err != nil {
			return nil, unavailable(s.Name(), err)
		}
		text := make([]string, len(vals))
		for i, v := range vals {
			text[i] = stringify(v)
		}
		rows = append(rows, idx.row(text))
	}
	if err := rs.Err(); err != nil {
		return nil, unavailable(s.Name(), err)
	}
	s.logger.Debug(ctx, "sql rows read", logger.Int("rows", len(rows)))
	return rows, nil
}

// stringify renders a driver value the way a CSV export would.
func stringify(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format(time.RFC3339)
	default:
		return fmt.Sprint(x)
	}
}
