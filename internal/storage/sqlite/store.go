// Package sqlite persists factory state in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/quantumauth-io/quantum-go-utils/log"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/XTakerDAO/token-factory-sub001/internal/apperrors"
	"github.com/XTakerDAO/token-factory-sub001/internal/events"
	"github.com/XTakerDAO/token-factory-sub001/internal/fees"
	"github.com/XTakerDAO/token-factory-sub001/internal/registry"
	"github.com/XTakerDAO/token-factory-sub001/internal/storage"
	"github.com/XTakerDAO/token-factory-sub001/internal/storage/sqlite/migrations"
	"github.com/XTakerDAO/token-factory-sub001/internal/storage/sqlitemigrate"
	"github.com/XTakerDAO/token-factory-sub001/internal/token"
)

type Store struct {
	sqlDB *sql.DB
}

func toMillis(t time.Time) int64 { return t.UTC().UnixMilli() }

func fromMillis(v int64) time.Time { return time.UnixMilli(v).UTC() }

// Open opens the database at path and applies embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite: storage path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// one writer; commits are already serialized by the ledger
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}
	if err := sqlitemigrate.Apply(ctx, sqlDB, migrations.FS, "."); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("sqlite: migrate: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) Load(ctx context.Context) (*storage.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		snap                           storage.Snapshot
		owner, feeAmount, feeRecipient string
		totalFees                      string
	)
	err := s.sqlDB.QueryRowContext(ctx, `
SELECT version, owner, fee_amount, fee_recipient, total_created, total_fees, last_seq
FROM factory_state WHERE id = 1`).Scan(
		&snap.Header.Version, &owner, &feeAmount, &feeRecipient,
		&snap.Header.TotalCreated, &totalFees, &snap.Header.LastSeq,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: load header: %w", err)
	}

	amount, err := token.ParseAmount(feeAmount)
	if err != nil {
		return nil, fmt.Errorf("sqlite: fee amount: %w", err)
	}
	snap.Header.Owner = common.HexToAddress(owner)
	snap.Header.Fee = fees.NewSchedule(amount, common.HexToAddress(feeRecipient))
	if snap.Header.TotalFees, err = token.ParseAmount(totalFees); err != nil {
		return nil, fmt.Errorf("sqlite: total fees: %w", err)
	}

	if snap.Templates, err = s.loadTemplates(ctx); err != nil {
		return nil, err
	}
	if snap.Records, err = s.loadRecords(ctx); err != nil {
		return nil, err
	}
	if snap.CreatorCounts, err = s.loadCounts(ctx); err != nil {
		return nil, err
	}
	if snap.Payouts, err = s.loadPayouts(ctx); err != nil {
		return nil, err
	}
	if snap.Tokens, err = s.loadTokens(ctx); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (s *Store) loadTemplates(ctx context.Context) ([]registry.Template, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT id, implementation FROM templates ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: load templates: %w", err)
	}
	defer rows.Close()

	var out []registry.Template
	for rows.Next() {
		var id, impl string
		if err := rows.Scan(&id, &impl); err != nil {
			return nil, fmt.Errorf("sqlite: scan template: %w", err)
		}
		out = append(out, registry.Template{ID: common.HexToHash(id), Implementation: common.HexToAddress(impl)})
	}
	return out, rows.Err()
}

func (s *Store) loadRecords(ctx context.Context) ([]storage.Record, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT address, creator, symbol, config_hash, template_id, implementation, salt, nonce, fee_paid, deploy_index, created_at
FROM assets ORDER BY deploy_index`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: load assets: %w", err)
	}
	defer rows.Close()

	var out []storage.Record
	for rows.Next() {
		var (
			r                                                    storage.Record
			address, creator, configHash, templateID, impl, salt string
			feePaid                                              string
			createdAt                                            int64
		)
		if err := rows.Scan(&address, &creator, &r.Symbol, &configHash, &templateID, &impl, &salt,
			&r.Nonce, &feePaid, &r.Index, &createdAt); err != nil {
			return nil, fmt.Errorf("sqlite: scan asset: %w", err)
		}
		r.Address = common.HexToAddress(address)
		r.Creator = common.HexToAddress(creator)
		r.ConfigHash = common.HexToHash(configHash)
		r.TemplateID = common.HexToHash(templateID)
		r.Implementation = common.HexToAddress(impl)
		r.Salt = common.HexToHash(salt)
		r.CreatedAt = fromMillis(createdAt)
		if r.FeePaid, err = token.ParseAmount(feePaid); err != nil {
			return nil, fmt.Errorf("sqlite: asset %s fee: %w", address, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) loadCounts(ctx context.Context) (map[common.Address]uint64, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT creator, count FROM creator_counts`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: load creator counts: %w", err)
	}
	defer rows.Close()

	out := map[common.Address]uint64{}
	for rows.Next() {
		var (
			creator string
			count   uint64
		)
		if err := rows.Scan(&creator, &count); err != nil {
			return nil, fmt.Errorf("sqlite: scan creator count: %w", err)
		}
		out[common.HexToAddress(creator)] = count
	}
	return out, rows.Err()
}

func (s *Store) loadPayouts(ctx context.Context) (map[common.Address]*uint256.Int, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT recipient, amount FROM payouts`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: load payouts: %w", err)
	}
	defer rows.Close()

	out := map[common.Address]*uint256.Int{}
	for rows.Next() {
		var recipient, raw string
		if err := rows.Scan(&recipient, &raw); err != nil {
			return nil, fmt.Errorf("sqlite: scan payout: %w", err)
		}
		v, err := token.ParseAmount(raw)
		if err != nil {
			return nil, fmt.Errorf("sqlite: payout %s: %w", recipient, err)
		}
		out[common.HexToAddress(recipient)] = v
	}
	return out, rows.Err()
}

func (s *Store) loadTokens(ctx context.Context) ([]token.Snapshot, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT state FROM tokens ORDER BY address`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: load tokens: %w", err)
	}
	defer rows.Close()

	var out []token.Snapshot
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("sqlite: scan token: %w", err)
		}
		var snap token.Snapshot
		if err := json.Unmarshal([]byte(raw), &snap); err != nil {
			return nil, fmt.Errorf("sqlite: decode token: %w", err)
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

// Commit writes the batch in a single transaction.
func (s *Store) Commit(ctx context.Context, b *storage.Batch) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	if b == nil {
		return fmt.Errorf("sqlite: nil batch")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}
	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Error("sqlite rollback failed", "batch", b.ID, "error", rbErr)
			return
		}
		log.Warn("sqlite batch rolled back", "batch", b.ID, "error", err)
	}()

	now := toMillis(time.Now())
	if err = writeHeader(ctx, tx, b.Header, now); err != nil {
		return err
	}
	for _, t := range b.TemplatePuts {
		if _, err = tx.ExecContext(ctx, `
INSERT INTO templates (id, implementation, updated_at) VALUES (?, ?, ?)
ON CONFLICT(id) DO UPDATE SET implementation = excluded.implementation, updated_at = excluded.updated_at`,
			t.ID.Hex(), t.Implementation.Hex(), now); err != nil {
			return fmt.Errorf("sqlite: put template: %w", err)
		}
	}
	for _, id := range b.TemplateDeletes {
		if _, err = tx.ExecContext(ctx, `DELETE FROM templates WHERE id = ?`, id.Hex()); err != nil {
			return fmt.Errorf("sqlite: delete template: %w", err)
		}
	}
	for _, r := range b.Records {
		if err = insertRecord(ctx, tx, r); err != nil {
			return err
		}
	}
	for creator, count := range b.CreatorCounts {
		if _, err = tx.ExecContext(ctx, `
INSERT INTO creator_counts (creator, count) VALUES (?, ?)
ON CONFLICT(creator) DO UPDATE SET count = excluded.count`, creator.Hex(), count); err != nil {
			return fmt.Errorf("sqlite: put creator count: %w", err)
		}
	}
	for recipient, amount := range b.Payouts {
		if _, err = tx.ExecContext(ctx, `
INSERT INTO payouts (recipient, amount) VALUES (?, ?)
ON CONFLICT(recipient) DO UPDATE SET amount = excluded.amount`, recipient.Hex(), amount.Dec()); err != nil {
			return fmt.Errorf("sqlite: put payout: %w", err)
		}
	}
	for _, snap := range b.Tokens {
		raw, mErr := json.Marshal(snap)
		if mErr != nil {
			err = fmt.Errorf("sqlite: encode token: %w", mErr)
			return err
		}
		if _, err = tx.ExecContext(ctx, `
INSERT INTO tokens (address, state, updated_at) VALUES (?, ?, ?)
ON CONFLICT(address) DO UPDATE SET state = excluded.state, updated_at = excluded.updated_at`,
			snap.Address.Hex(), string(raw), now); err != nil {
			return fmt.Errorf("sqlite: put token: %w", err)
		}
	}
	for _, ev := range b.Events {
		if _, err = tx.ExecContext(ctx, `
INSERT INTO events (seq, op_id, name, topic, emitter, payload, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			ev.Seq, ev.OpID, string(ev.Name), ev.Topic.Hex(), ev.Emitter.Hex(), string(ev.Payload), toMillis(ev.Time)); err != nil {
			return fmt.Errorf("sqlite: append event %d: %w", ev.Seq, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	return nil
}

func writeHeader(ctx context.Context, tx *sql.Tx, h storage.Header, now int64) error {
	totalFees := new(uint256.Int)
	if h.TotalFees != nil {
		totalFees = h.TotalFees
	}
	_, err := tx.ExecContext(ctx, `
INSERT INTO factory_state (id, version, owner, fee_amount, fee_recipient, total_created, total_fees, last_seq, updated_at)
VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    version = excluded.version,
    owner = excluded.owner,
    fee_amount = excluded.fee_amount,
    fee_recipient = excluded.fee_recipient,
    total_created = excluded.total_created,
    total_fees = excluded.total_fees,
    last_seq = excluded.last_seq,
    updated_at = excluded.updated_at`,
		h.Version, h.Owner.Hex(), h.Fee.Fee().Dec(), h.Fee.Recipient.Hex(),
		h.TotalCreated, totalFees.Dec(), h.LastSeq, now,
	)
	if err != nil {
		return fmt.Errorf("sqlite: write header: %w", err)
	}
	return nil
}

func insertRecord(ctx context.Context, tx *sql.Tx, r storage.Record) error {
	feePaid := new(uint256.Int)
	if r.FeePaid != nil {
		feePaid = r.FeePaid
	}
	_, err := tx.ExecContext(ctx, `
INSERT INTO assets (address, creator, symbol, config_hash, template_id, implementation, salt, nonce, fee_paid, deploy_index, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Address.Hex(), r.Creator.Hex(), r.Symbol, r.ConfigHash.Hex(), r.TemplateID.Hex(),
		r.Implementation.Hex(), r.Salt.Hex(), r.Nonce, feePaid.Dec(), r.Index, toMillis(r.CreatedAt),
	)
	if isUniqueViolation(err) {
		if strings.Contains(strings.ToLower(err.Error()), "assets.symbol") {
			return apperrors.Wrap(apperrors.CodeSymbolAlreadyExists, "symbol "+r.Symbol+" is already deployed", err)
		}
		return apperrors.Wrap(apperrors.CodeAddressInUse, "address "+r.Address.Hex()+" is already in use", err)
	}
	if err != nil {
		return fmt.Errorf("sqlite: insert asset: %w", err)
	}
	return nil
}

func (s *Store) Events(ctx context.Context, afterSeq uint64, limit int) ([]events.Event, error) {
	query := `SELECT seq, op_id, name, topic, emitter, payload, created_at FROM events WHERE seq > ? ORDER BY seq`
	args := []any{afterSeq}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list events: %w", err)
	}
	defer rows.Close()

	var out []events.Event
	for rows.Next() {
		var (
			ev                   events.Event
			name, topic, emitter string
			payload              string
			createdAt            int64
		)
		if err := rows.Scan(&ev.Seq, &ev.OpID, &name, &topic, &emitter, &payload, &createdAt); err != nil {
			return nil, fmt.Errorf("sqlite: scan event: %w", err)
		}
		ev.Name = events.Name(name)
		ev.Topic = common.HexToHash(topic)
		ev.Emitter = common.HexToAddress(emitter)
		ev.Payload = json.RawMessage(payload)
		ev.Time = fromMillis(createdAt)
		out = append(out, ev)
	}
	return out, rows.Err()
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

var _ storage.Store = (*Store)(nil)
