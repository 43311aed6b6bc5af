package db

import (
	"database/sql"
	"fmt"
)

// Queryer is satisfied by *sql.DB, *sql.Tx and *DB.
type Queryer interface {
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// HasTable reports whether a table with the given name exists.
func (db *DB) HasTable(name string) (bool, error) {
	return HasTable(db, name)
}

// HasColumn reports whether table has a column named column.
func (db *DB) HasColumn(table, column string) (bool, error) {
	return HasColumn(db, table, column)
}

// HasTable reports whether a table with the given name exists.
func HasTable(q Queryer, name string) (bool, error) {
	var n int
	err := q.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// HasColumn reports whether table has a column named column.
func HasColumn(q Queryer, table, column string) (bool, error) {
	rows, err := q.Query(fmt.Sprintf("PRAGMA table_info(%q)", table))
	if err != nil {
		return false, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid       int
			name      string
			colType   string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return false, fmt.Errorf("failed to scan column of %s: %w", table, err)
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}

// RowCounts returns the number of rows in each named table.
func RowCounts(q Queryer, tables ...string) (map[string]int, error) {
	counts := make(map[string]int, len(tables))
	for _, table := range tables {
		var n int
		if err := q.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %q", table)).Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}
