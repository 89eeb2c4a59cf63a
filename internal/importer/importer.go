package importer

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"log/slog"

	"github.com/lib/pq"
)

// Importer loads CSV readings into the consumption table. All rows of a
// file go in one transaction: a bad row rolls back the whole import.
type Importer struct {
	db     *sql.DB
	table  string
	logger *slog.Logger
}

func New(db *sql.DB, table string, logger *slog.Logger) *Importer {
	return &Importer{db: db, table: table, logger: logger}
}

var ErrBadHeader = errors.New("csv header does not match the expected format")

// csvDateLayout is the meter export format, e.g. "11 Sep 2019 10:45:00".
const csvDateLayout = "02 Jan 2006 15:04:05"

const expectedColumns = 9

// parseRecord converts one CSV line into bind values: the date
// reformatted to the table's rendering and eight decimal readings with
// empty cells mapped to NULL.
func parseRecord(rec []string) ([]any, error) {
	if len(rec) != expectedColumns {
		return nil, fmt.Errorf("expected %d fields, got %d", expectedColumns, len(rec))
	}
	date, err := time.Parse(csvDateLayout, rec[0])
	if err != nil {
		return nil, fmt.Errorf("parse date %q: %w", rec[0], err)
	}
	vals := make([]any, 0, expectedColumns)
	vals = append(vals, date.Format("2006-01-02 15:04:05"))
	for _, field := range rec[1:] {
		if field == "" {
			vals = append(vals, nil)
			continue
		}
		if _, err := strconv.ParseFloat(field, 64); err != nil {
			return nil, fmt.Errorf("value %q is not numeric", field)
		}
		vals = append(vals, field)
	}
	return vals, nil
}

// ImportFile reads the CSV at path and inserts every data row. Returns
// the number of rows imported.
func (im *Importer) ImportFile(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read header: %w", err)
	}
	if len(header) != expectedColumns {
		return 0, fmt.Errorf("%w: %d columns", ErrBadHeader, len(header))
	}

	tx, err := im.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}

	insert := "INSERT INTO " + im.table +
		" (date, energy, reactive_energy, power, maximeter, reactive_power, voltage, intensity, power_factor)" +
		" VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)"
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		tx.Rollback()
		return 0, err
	}
	defer stmt.Close()

	imported := 0
	line := 1
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("line %d: %w", line, err)
		}
		vals, err := parseRecord(rec)
		if err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("line %d: %w", line, err)
		}
		if _, err := stmt.ExecContext(ctx, vals...); err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("line %d: %w", line, err)
		}
		imported++
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	im.logger.Info("csv imported", "path", path, "rows", imported, "table", im.table)
	return imported, nil
}

// CreateReadOnlyUser provisions the login role the query service runs
// as: SELECT on the consumption and users tables, nothing else.
func (im *Importer) CreateReadOnlyUser(ctx context.Context, name, password string) error {
	var exists bool
	if err := im.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM pg_roles WHERE rolname = $1)`, name).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		create := "CREATE ROLE " + pq.QuoteIdentifier(name) + " LOGIN PASSWORD " + pq.QuoteLiteral(password)
		if _, err := im.db.ExecContext(ctx, create); err != nil {
			return err
		}
	}
	grant := "GRANT SELECT ON " + pq.QuoteIdentifier(im.table) + ", users TO " + pq.QuoteIdentifier(name)
	if _, err := im.db.ExecContext(ctx, grant); err != nil {
		return err
	}
	im.logger.Info("read-only user ready", "name", name)
	return nil
}
