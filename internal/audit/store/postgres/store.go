package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"opsledger/internal/audit"
	id "opsledger/pkg/domain"
)

// Store implements audit.Store on PostgreSQL. Entries go to the audit_logs
// table; snapshots are JSONB so the trail survives schema drift in the
// entities it describes.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Append inserts one entry. The table has no UPDATE or DELETE path.
func (s *Store) Append(ctx context.Context, entry audit.Entry) error {
	prev, err := marshalSnapshot(entry.PreviousValue)
	if err != nil {
		return fmt.Errorf("marshal previous value: %w", err)
	}
	next, err := marshalSnapshot(entry.NewValue)
	if err != nil {
		return fmt.Errorf("marshal new value: %w", err)
	}

	query := `
		INSERT INTO audit_logs (
			id, action_type, record_type, record_id, worker_id,
			performed_by, performed_by_role, previous_value, new_value,
			reason, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = s.db.ExecContext(ctx, query,
		uuid.UUID(entry.ID),
		string(entry.Action),
		string(entry.RecordType),
		entry.RecordID,
		nullableString(entry.WorkerID),
		entry.PerformedBy,
		string(entry.PerformedByRole),
		prev,
		next,
		nullableString(entry.Reason),
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

// List returns entries newest first, filtered per the query.
func (s *Store) List(ctx context.Context, q audit.Query) ([]audit.Entry, error) {
	var (
		conditions []string
		args       []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if q.RecordType != "" {
		conditions = append(conditions, "record_type = "+arg(string(q.RecordType)))
	}
	if len(q.Actions) > 0 {
		actions := make([]string, len(q.Actions))
		for i, a := range q.Actions {
			actions[i] = string(a)
		}
		conditions = append(conditions, "action_type = ANY("+arg(pq.Array(actions))+")")
	}
	if q.RecordID != "" {
		conditions = append(conditions, "record_id = "+arg(q.RecordID))
	}
	if q.WorkerID != "" {
		conditions = append(conditions, "worker_id = "+arg(q.WorkerID))
	}

	query := `
		SELECT id, action_type, record_type, record_id, worker_id,
			   performed_by, performed_by_role, previous_value, new_value,
			   reason, created_at
		FROM audit_logs
	`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if q.Limit > 0 {
		query += " LIMIT " + arg(q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit logs: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]audit.Entry, error) {
	var entries []audit.Entry

	for rows.Next() {
		var (
			entry    audit.Entry
			entryID  uuid.UUID
			workerID sql.NullString
			reason   sql.NullString
			prev     []byte
			next     []byte
		)

		err := rows.Scan(
			&entryID,
			&entry.Action,
			&entry.RecordType,
			&entry.RecordID,
			&workerID,
			&entry.PerformedBy,
			&entry.PerformedByRole,
			&prev,
			&next,
			&reason,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}

		entry.ID = id.AuditEntryID(entryID)
		entry.WorkerID = workerID.String
		entry.Reason = reason.String
		if entry.PreviousValue, err = unmarshalSnapshot(prev); err != nil {
			return nil, fmt.Errorf("decode previous value: %w", err)
		}
		if entry.NewValue, err = unmarshalSnapshot(next); err != nil {
			return nil, fmt.Errorf("decode new value: %w", err)
		}

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit logs: %w", err)
	}
	return entries, nil
}

func marshalSnapshot(s audit.Snapshot) (any, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

func unmarshalSnapshot(raw []byte) (audit.Snapshot, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var s audit.Snapshot
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return s, nil
}

func nullableString(v string) any {
	if v == "" {
		return nil
	}
	return v
}
