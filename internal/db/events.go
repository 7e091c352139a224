package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	EventSwitch           = "switch"
	EventAlreadyActive    = "already_active"
	EventDiscover         = "discover"
	EventCredentialUpdate = "credential_update"
	EventLogin            = "login"
	EventRestore          = "restore"
	sqliteTimeLayout      = "2006-01-02 15:04:05"
)

// Event is one row of the activity log.
type Event struct {
	// OperationID groups the events of one command invocation.
	// LogEvent assigns a new one when empty.
	OperationID      string
	Timestamp        time.Time
	Type             string
	AccountUUID      string
	OrganizationUUID string
	Label            string
	Details          map[string]any
}

// AccountStats aggregates events per account.
type AccountStats struct {
	AccountUUID      string
	OrganizationUUID string
	TotalSwitches    int
	FirstSeen        time.Time
	LastSwitched     time.Time
}

// Filter narrows RecentEvents. Zero values match everything.
type Filter struct {
	AccountUUID string
	Type        string
	Since       time.Time
	Limit       int
}

// EventLogger is the subset of DB used by callers that only record events.
type EventLogger interface {
	LogEvent(event Event) error
}

// NewOperationID returns an ID to tag the events of one operation.
func NewOperationID() string {
	return uuid.NewString()
}

func (d *DB) LogEvent(event Event) error {
	if d == nil || d.conn == nil {
		return fmt.Errorf("db is not open")
	}

	eventType := strings.TrimSpace(event.Type)
	if eventType == "" {
		return fmt.Errorf("event type is required")
	}
	opID := strings.TrimSpace(event.OperationID)
	if opID == "" {
		opID = NewOperationID()
	}

	ts := event.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	tsStr := formatSQLiteTime(ts)

	var detailsStr sql.NullString
	if event.Details != nil {
		b, err := json.Marshal(event.Details)
		if err != nil {
			return fmt.Errorf("marshal details: %w", err)
		}
		detailsStr = sql.NullString{String: string(b), Valid: true}
	}

	tx, err := d.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.Exec(
		`INSERT INTO activity_log (operation_id, timestamp, event_type, account_uuid, organization_uuid, label, details) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		opID,
		tsStr,
		eventType,
		event.AccountUUID,
		event.OrganizationUUID,
		event.Label,
		detailsStr,
	); err != nil {
		return fmt.Errorf("insert activity_log: %w", err)
	}

	if event.AccountUUID != "" && event.OrganizationUUID != "" {
		if err := updateAccountStats(tx, eventType, event.AccountUUID, event.OrganizationUUID, tsStr); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}

// RecentEvents returns events newest first.
func (d *DB) RecentEvents(f Filter) ([]Event, error) {
	if d == nil || d.conn == nil {
		return nil, fmt.Errorf("db is not open")
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT operation_id, timestamp, event_type, account_uuid, organization_uuid, label, details
		 FROM activity_log
		 WHERE datetime(timestamp) >= datetime(?)`
	args := []any{formatSQLiteTime(f.Since)}
	if f.AccountUUID != "" {
		query += ` AND account_uuid = ?`
		args = append(args, f.AccountUUID)
	}
	if f.Type != "" {
		query += ` AND event_type = ?`
		args = append(args, f.Type)
	}
	query += ` ORDER BY timestamp DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := d.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query activity_log: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var tsStr string
		var e Event
		var label, details sql.NullString
		if err := rows.Scan(&e.OperationID, &tsStr, &e.Type, &e.AccountUUID, &e.OrganizationUUID, &label, &details); err != nil {
			return nil, fmt.Errorf("scan activity_log: %w", err)
		}

		ts, err := parseSQLiteTime(tsStr)
		if err != nil {
			return nil, fmt.Errorf("parse timestamp %q: %w", tsStr, err)
		}
		e.Timestamp = ts
		e.Label = label.String

		if details.Valid && details.String != "" {
			var m map[string]any
			if err := json.Unmarshal([]byte(details.String), &m); err == nil {
				e.Details = m
			}
		}

		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activity_log: %w", err)
	}
	return out, nil
}

// Stats returns per-account aggregates, most recently switched first.
// A non-empty accountUUID restricts the result to that account.
func (d *DB) Stats(accountUUID string) ([]AccountStats, error) {
	if d == nil || d.conn == nil {
		return nil, fmt.Errorf("db is not open")
	}

	query := `SELECT account_uuid, organization_uuid, total_switches, first_seen, last_switched
		 FROM account_stats`
	var args []any
	if accountUUID != "" {
		query += ` WHERE account_uuid = ?`
		args = append(args, accountUUID)
	}
	query += ` ORDER BY COALESCE(last_switched, '') DESC, COALESCE(first_seen, '') DESC`

	rows, err := d.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query account_stats: %w", err)
	}
	defer rows.Close()

	var out []AccountStats
	for rows.Next() {
		var st AccountStats
		var firstSeen, lastSwitched sql.NullString
		if err := rows.Scan(&st.AccountUUID, &st.OrganizationUUID, &st.TotalSwitches, &firstSeen, &lastSwitched); err != nil {
			return nil, fmt.Errorf("scan account_stats: %w", err)
		}
		if firstSeen.Valid {
			st.FirstSeen, _ = parseSQLiteTime(firstSeen.String)
		}
		if lastSwitched.Valid {
			st.LastSwitched, _ = parseSQLiteTime(lastSwitched.String)
		}
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate account_stats: %w", err)
	}
	return out, nil
}

func updateAccountStats(tx *sql.Tx, eventType, accountUUID, organizationUUID, ts string) error {
	switch eventType {
	case EventSwitch:
		_, err := tx.Exec(
			`INSERT INTO account_stats (account_uuid, organization_uuid, total_switches, first_seen, last_switched)
			 VALUES (?, ?, 1, ?, ?)
			 ON CONFLICT(account_uuid, organization_uuid) DO UPDATE SET
			   total_switches = total_switches + 1,
			   last_switched = MAX(COALESCE(last_switched, ''), excluded.last_switched)`,
			accountUUID,
			organizationUUID,
			ts,
			ts,
		)
		if err != nil {
			return fmt.Errorf("update account_stats switch: %w", err)
		}
	case EventDiscover:
		_, err := tx.Exec(
			`INSERT INTO account_stats (account_uuid, organization_uuid, first_seen)
			 VALUES (?, ?, ?)
			 ON CONFLICT(account_uuid, organization_uuid) DO UPDATE SET
			   first_seen = COALESCE(first_seen, excluded.first_seen)`,
			accountUUID,
			organizationUUID,
			ts,
		)
		if err != nil {
			return fmt.Errorf("update account_stats discover: %w", err)
		}
	}

	return nil
}

func formatSQLiteTime(t time.Time) string {
	if t.IsZero() {
		// This makes "since" queries behave like "since the beginning of time".
		return "1970-01-01 00:00:00"
	}
	return t.UTC().Format(sqliteTimeLayout)
}

func parseSQLiteTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty time")
	}
	if ts, err := time.ParseInLocation(sqliteTimeLayout, s, time.UTC); err == nil {
		return ts, nil
	}
	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return ts.UTC(), nil
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unsupported time format")
}
