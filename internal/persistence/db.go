// Package persistence provides SQLite-based storage for the simulation's
// durable state: the financial journal, open loans, placed assets, market
// price snapshots, and run metadata.
package persistence

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/yashchitneni/shipfast-sub003/internal/ledger"
	"github.com/yashchitneni/shipfast-sub003/internal/market"
	"github.com/yashchitneni/shipfast-sub003/internal/notify"
)

// DB wraps a SQLite connection for simulation state persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS financial_records (
		id TEXT PRIMARY KEY,
		player_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		category TEXT NOT NULL,
		amount REAL NOT NULL,
		description TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		balance REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS loans (
		id TEXT PRIMARY KEY,
		player_id TEXT NOT NULL,
		principal REAL NOT NULL,
		interest_rate REAL NOT NULL,
		remaining_balance REAL NOT NULL,
		term_days INTEGER NOT NULL,
		issued_at TEXT NOT NULL,
		payments_made INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS placed_assets (
		id TEXT PRIMARY KEY,
		player_id TEXT NOT NULL,
		definition_id TEXT NOT NULL,
		pos_x REAL NOT NULL,
		pos_y REAL NOT NULL,
		rotation REAL NOT NULL,
		status TEXT NOT NULL,
		health REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS price_snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sequence INTEGER NOT NULL,
		taken_at TEXT NOT NULL,
		condition TEXT NOT NULL,
		goods_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		type TEXT NOT NULL,
		amount REAL NOT NULL,
		description TEXT NOT NULL,
		timestamp TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sim_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_records_player ON financial_records(player_id);
	CREATE INDEX IF NOT EXISTS idx_records_timestamp ON financial_records(timestamp);
	CREATE INDEX IF NOT EXISTS idx_snapshots_sequence ON price_snapshots(sequence);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// AppendRecords appends journal entries for a player. The journal table is
// append-only, matching the in-memory journal's contract.
func (db *DB) AppendRecords(playerID string, records []ledger.FinancialRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex(`INSERT OR IGNORE INTO financial_records
		(id, player_id, kind, category, amount, description, timestamp, balance)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		_, err := stmt.Exec(
			r.ID.String(), playerID, string(r.Kind), r.Category,
			r.Amount, r.Description, r.Timestamp.UTC().Format(time.RFC3339Nano), r.Balance,
		)
		if err != nil {
			return fmt.Errorf("insert record %s: %w", r.ID, err)
		}
	}

	return tx.Commit()
}

// SaveLoans writes a player's active loans (full replace).
func (db *DB) SaveLoans(playerID string, loans []ledger.Loan) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM loans WHERE player_id = ?", playerID); err != nil {
		return err
	}

	for _, l := range loans {
		_, err := tx.Exec(`INSERT INTO loans
			(id, player_id, principal, interest_rate, remaining_balance, term_days, issued_at, payments_made)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			l.ID.String(), playerID, l.Principal, l.InterestRate,
			l.RemainingBalance, l.TermDays, l.IssuedAt.UTC().Format(time.RFC3339Nano), l.PaymentsMade,
		)
		if err != nil {
			return fmt.Errorf("insert loan %s: %w", l.ID, err)
		}
	}

	return tx.Commit()
}

// SaveAssets writes a player's placed assets (full replace).
func (db *DB) SaveAssets(playerID string, assets []ledger.PlacedAsset) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM placed_assets WHERE player_id = ?", playerID); err != nil {
		return err
	}

	for _, a := range assets {
		_, err := tx.Exec(`INSERT INTO placed_assets
			(id, player_id, definition_id, pos_x, pos_y, rotation, status, health)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			a.ID.String(), playerID, a.DefinitionID,
			a.Position.X, a.Position.Y, a.Rotation, a.Status, a.Health,
		)
		if err != nil {
			return fmt.Errorf("insert asset %s: %w", a.ID, err)
		}
	}

	return tx.Commit()
}

// SaveEvents appends notification events.
func (db *DB) SaveEvents(events []notify.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range events {
		_, err := tx.Exec(
			"INSERT INTO events (type, amount, description, timestamp) VALUES (?, ?, ?, ?)",
			e.Type, e.Amount, e.Description, e.Timestamp.UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// RecentEvents returns the most recent N events, newest first.
func (db *DB) RecentEvents(limit int) ([]notify.Event, error) {
	rows, err := db.conn.Queryx(
		"SELECT type, amount, description, timestamp FROM events ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []notify.Event
	for rows.Next() {
		var (
			typ, description, ts string
			amount               float64
		)
		if err := rows.Scan(&typ, &amount, &description, &ts); err != nil {
			return nil, err
		}
		evt := notify.Event{Type: typ, Amount: amount, Description: description}
		evt.Timestamp, _ = time.Parse(time.RFC3339Nano, ts)
		events = append(events, evt)
	}
	return events, rows.Err()
}

// SavePriceSnapshot appends one market snapshot. Goods are stored as a JSON
// blob; price history is read back whole, never queried per good.
func (db *DB) SavePriceSnapshot(snap *market.Snapshot) error {
	goods := make([]market.Good, 0, len(snap.Goods))
	for _, g := range snap.Goods {
		goods = append(goods, g)
	}
	blob, err := json.Marshal(goods)
	if err != nil {
		return fmt.Errorf("marshal snapshot goods: %w", err)
	}

	_, err = db.conn.Exec(
		"INSERT INTO price_snapshots (sequence, taken_at, condition, goods_json) VALUES (?, ?, ?, ?)",
		snap.Sequence, snap.UpdatedAt.UTC().Format(time.RFC3339Nano), snap.State.Condition.String(), string(blob),
	)
	return err
}

// SaveMeta stores a key-value pair in run metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO sim_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM sim_meta WHERE key = ?", key)
	return value, err
}

// SaveLedgerState performs a full save of one player's financial state.
func (db *DB) SaveLedgerState(led *ledger.Ledger) error {
	fin := led.Snapshot()
	slog.Info("saving ledger state",
		"player", fin.PlayerID,
		"records", len(led.Records()),
		"loans", len(fin.Loans),
		"assets", fin.AssetCount,
	)

	if err := db.AppendRecords(fin.PlayerID, led.Records()); err != nil {
		return fmt.Errorf("save records: %w", err)
	}
	if err := db.SaveLoans(fin.PlayerID, fin.Loans); err != nil {
		return fmt.Errorf("save loans: %w", err)
	}
	if err := db.SaveAssets(fin.PlayerID, led.Assets()); err != nil {
		return fmt.Errorf("save assets: %w", err)
	}
	if err := db.SaveMeta("cash:"+fin.PlayerID, fmt.Sprintf("%.2f", fin.Cash)); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}

	return nil
}

// RecentRecords returns a player's most recent N journal entries, newest
// first.
func (db *DB) RecentRecords(playerID string, limit int) ([]ledger.FinancialRecord, error) {
	rows, err := db.conn.Queryx(
		`SELECT id, kind, category, amount, description, timestamp, balance
		 FROM financial_records WHERE player_id = ? ORDER BY timestamp DESC LIMIT ?`,
		playerID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []ledger.FinancialRecord
	for rows.Next() {
		var (
			id, kind, category, description, ts string
			amount, balance                     float64
		)
		if err := rows.Scan(&id, &kind, &category, &amount, &description, &ts, &balance); err != nil {
			return nil, err
		}
		rec := ledger.FinancialRecord{
			Kind:        ledger.TransactionKind(kind),
			Category:    category,
			Amount:      amount,
			Description: description,
			Balance:     balance,
		}
		rec.ID, _ = uuid.Parse(id)
		rec.Timestamp, _ = time.Parse(time.RFC3339Nano, ts)
		records = append(records, rec)
	}
	return records, rows.Err()
}
