package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// SQLStore keeps documents as JSON text in the documents table of a SQLite
// (or libSQL/Turso) database.
type SQLStore struct {
	db *sql.DB
}

var _ Store = (*SQLStore)(nil)

// NewSQLStore creates a SQLStore on a database initialized by database.InitDB.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Get(ctx context.Context, collection, id string) (Record, error) {
	var data string
	err := s.db.QueryRowContext(ctx, "SELECT data FROM documents WHERE collection = ? AND id = ?", collection, id).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: failed to get %s/%s: %w", ErrUnavailable, collection, id, err)
	}
	var rec Record
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("%w: corrupt document %s/%s: %w", ErrUnavailable, collection, id, err)
	}
	return rec, nil
}

func (s *SQLStore) Put(ctx context.Context, collection, id string, rec Record) error {
	raw, err := checkSize(rec)
	if err != nil {
		return err
	}
	now := time.Now().UnixMilli()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (collection, id, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(collection, id) DO UPDATE SET
			data = excluded.data,
			updated_at = excluded.updated_at
	`, collection, id, string(raw), now, now)
	if err != nil {
		return fmt.Errorf("%w: failed to put %s/%s: %w", ErrUnavailable, collection, id, err)
	}
	log.Debug("Stored document", "collection", collection, "id", id, "bytes", len(raw))
	return nil
}

func (s *SQLStore) Update(ctx context.Context, collection, id string, partial Record) error {
	raw, err := checkSize(partial)
	if err != nil {
		return err
	}
	// json_patch follows RFC 7396: objects merge recursively, everything else replaces.
	result, err := s.db.ExecContext(ctx, `
		UPDATE documents SET data = json_patch(data, ?), updated_at = ?
		WHERE collection = ? AND id = ?
	`, string(raw), time.Now().UnixMilli(), collection, id)
	if err != nil {
		return fmt.Errorf("%w: failed to update %s/%s: %w", ErrUnavailable, collection, id, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: failed to get rows affected: %w", ErrUnavailable, err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, collection, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE collection = ? AND id = ?", collection, id)
	if err != nil {
		return fmt.Errorf("%w: failed to delete %s/%s: %w", ErrUnavailable, collection, id, err)
	}
	return nil
}

func (s *SQLStore) Query(ctx context.Context, collection string, q Query) ([]Record, error) {
	if err := validateQuery(q); err != nil {
		return nil, err
	}

	var (
		sb   strings.Builder
		args = []any{collection}
	)
	sb.WriteString("SELECT data FROM documents WHERE collection = ?")
	for _, f := range q.Filters {
		path := "$." + f.Field
		if f.Op == OpArrayContains {
			sb.WriteString(" AND EXISTS (SELECT 1 FROM json_each(documents.data, ?) WHERE json_each.value = ?)")
		} else {
			sb.WriteString(" AND json_extract(data, ?) " + sqlOperator(f.Op) + " ?")
		}
		args = append(args, path, sqlValue(f.Value))
	}
	if q.OrderBy != nil {
		dir := "ASC"
		if q.OrderBy.Desc {
			dir = "DESC"
		}
		sb.WriteString(" ORDER BY json_extract(data, ?) " + dir + ", id ASC")
		args = append(args, "$."+q.OrderBy.Field)
	} else {
		sb.WriteString(" ORDER BY created_at ASC, id ASC")
	}
	if q.Limit > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query %s: %w", ErrUnavailable, collection, err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("%w: failed to scan document row: %w", ErrUnavailable, err)
		}
		var rec Record
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			log.Error("Skipping corrupt document", "collection", collection, "error", err)
			continue
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to iterate %s: %w", ErrUnavailable, collection, err)
	}
	return records, nil
}

func sqlOperator(op Op) string {
	if op == OpEqual {
		return "="
	}
	return string(op)
}

// sqlValue maps Go values to what json_extract yields for the same JSON value.
func sqlValue(v any) any {
	switch val := v.(type) {
	case bool:
		if val {
			return 1
		}
		return 0
	case time.Time:
		return val.UTC().Format(time.RFC3339Nano)
	case fmt.Stringer:
		return val.String()
	default:
		return v
	}
}
