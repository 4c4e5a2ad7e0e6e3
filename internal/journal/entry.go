package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Op is the mutation kind.
type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Outcome is how a mutation attempt ended.
type Outcome string

const (
	// OutcomeOK means the store accepted the write.
	OutcomeOK Outcome = "ok"
	// OutcomeFailed means the store (or the network) rejected it.
	OutcomeFailed Outcome = "failed"
	// OutcomeDryRun means the write was skipped by dry-run mode.
	OutcomeDryRun Outcome = "dry_run"
	// OutcomeDiscarded means the write succeeded but its response was
	// superseded by a newer reload and never rendered.
	OutcomeDiscarded Outcome = "discarded"
)

// Entry is one journal row.
type Entry struct {
	Seq        int64           `json:"seq"`
	RequestID  string          `json:"request_id"`
	Op         Op              `json:"op"`
	AliasID    int64           `json:"alias_id"`
	Payload    json.RawMessage `json:"payload"`
	Outcome    Outcome         `json:"outcome"`
	Error      string          `json:"error,omitempty"`
	RecordedAt time.Time       `json:"recorded_at"`
}

// Filter narrows List results.
type Filter struct {
	// AliasID restricts results to one alias when non-zero.
	AliasID int64
	// Limit keeps only the most recent N entries when positive.
	Limit int
}

// Record appends an entry and returns its seq. Seq and RecordedAt on e are
// ignored; they are assigned here.
func (j *Journal) Record(ctx context.Context, e Entry) (int64, error) {
	payload := string(e.Payload)
	if payload == "" {
		payload = "{}"
	}
	if !json.Valid([]byte(payload)) {
		return 0, fmt.Errorf("record %s: payload is not valid JSON", e.Op)
	}

	res, err := j.db.ExecContext(ctx, `
		INSERT INTO mutations (request_id, op, alias_id, payload, outcome, error, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		e.RequestID,
		string(e.Op),
		e.AliasID,
		payload,
		string(e.Outcome),
		e.Error,
		j.now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("record %s: %w", e.Op, err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("record %s: %w", e.Op, err)
	}
	return seq, nil
}

// List returns entries ordered by seq ascending. Returns an empty slice (not
// nil) when nothing matches.
func (j *Journal) List(ctx context.Context, f Filter) ([]Entry, error) {
	query := `
		SELECT seq, request_id, op, alias_id, payload, outcome, error, recorded_at
		FROM mutations
		WHERE (? = 0 OR alias_id = ?)
		ORDER BY seq DESC`
	args := []any{f.AliasID, f.AliasID}
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query mutations: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mutations: %w", err)
	}

	// newest-first from SQL so LIMIT keeps the tail; flip back to seq order
	for i, k := 0, len(entries)-1; i < k; i, k = i+1, k-1 {
		entries[i], entries[k] = entries[k], entries[i]
	}
	return entries, nil
}

func scanEntry(rows *sql.Rows) (Entry, error) {
	var (
		e          Entry
		op         string
		payload    string
		outcome    string
		recordedAt string
	)
	if err := rows.Scan(&e.Seq, &e.RequestID, &op, &e.AliasID, &payload, &outcome, &e.Error, &recordedAt); err != nil {
		return Entry{}, fmt.Errorf("scan mutation: %w", err)
	}
	ts, err := time.Parse(time.RFC3339Nano, recordedAt)
	if err != nil {
		return Entry{}, fmt.Errorf("parse recorded_at %q: %w", recordedAt, err)
	}
	e.Op = Op(op)
	e.Outcome = Outcome(outcome)
	e.Payload = json.RawMessage(payload)
	e.RecordedAt = ts
	return e, nil
}
