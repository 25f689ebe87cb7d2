package postgres

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/ourllet/internal/domain"
	"github.com/iho/ourllet/internal/usecase"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	db querier
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return newLedgerRepository(pool)
}

func newLedgerRepository(db querier) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// CreateTx inserts a ledger unless its id is already taken, and reports
// whether the row was inserted. A conflicting insert from a concurrent
// transaction waits for it and then reports false.
func (r *LedgerRepository) CreateTx(ctx context.Context, tx usecase.Transaction, ledger *domain.Ledger) (bool, error) {
	tag, err := txQuerier(tx).Exec(ctx,
		`INSERT INTO ledgers (id, name, created_at, updated_at) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO NOTHING`,
		ledger.ID, ledger.Name, ledger.CreatedAt, ledger.UpdatedAt,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// GetByID retrieves a ledger by ID.
func (r *LedgerRepository) GetByID(ctx context.Context, id string) (*domain.Ledger, error) {
	return scanLedger(r.db.QueryRow(ctx,
		`SELECT id, name, created_at, updated_at FROM ledgers WHERE id = $1`, id))
}

// GetByIDForUpdate retrieves a ledger and locks its row until the transaction ends.
func (r *LedgerRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Ledger, error) {
	return scanLedger(txQuerier(tx).QueryRow(ctx,
		`SELECT id, name, created_at, updated_at FROM ledgers WHERE id = $1 FOR UPDATE`, id))
}

func scanLedger(row interface{ Scan(dest ...any) error }) (*domain.Ledger, error) {
	var l domain.Ledger
	if err := row.Scan(&l.ID, &l.Name, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, notFound(err)
	}
	return &l, nil
}

// ListByUser lists the ledgers userID belongs to, ordered by id.
func (r *LedgerRepository) ListByUser(ctx context.Context, userID string, name *string) ([]*domain.Ledger, error) {
	q := psql.
		Select("l.id", "l.name", "l.created_at", "l.updated_at").
		From("ledgers l").
		Join("ledger_members m ON m.ledger_id = l.id").
		Where(sq.Eq{"m.user_id": userID}).
		OrderBy("l.id")
	if name != nil {
		q = q.Where(sq.Eq{"l.name": *name})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ledgers := make([]*domain.Ledger, 0)
	for rows.Next() {
		var l domain.Ledger
		if err := rows.Scan(&l.ID, &l.Name, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		ledgers = append(ledgers, &l)
	}

	return ledgers, rows.Err()
}

// UpdateName sets or clears the display name.
func (r *LedgerRepository) UpdateName(ctx context.Context, id string, name *string, updatedAt time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE ledgers SET name = $2, updated_at = $3 WHERE id = $1`, id, name, updatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteTx removes a ledger and everything recorded in it.
func (r *LedgerRepository) DeleteTx(ctx context.Context, tx usecase.Transaction, id string) error {
	q := txQuerier(tx)

	for _, stmt := range []string{
		`DELETE FROM ledger_entries WHERE ledger_id = $1`,
		`DELETE FROM fixed_entries WHERE ledger_id = $1`,
		`DELETE FROM ledger_members WHERE ledger_id = $1`,
	} {
		if _, err := q.Exec(ctx, stmt, id); err != nil {
			return err
		}
	}

	tag, err := q.Exec(ctx, `DELETE FROM ledgers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AddMemberTx inserts a membership row.
func (r *LedgerRepository) AddMemberTx(ctx context.Context, tx usecase.Transaction, member *domain.LedgerMember) error {
	_, err := txQuerier(tx).Exec(ctx,
		`INSERT INTO ledger_members (ledger_id, user_id, joined_at) VALUES ($1, $2, $3)`,
		member.LedgerID, member.UserID, member.JoinedAt,
	)
	return err
}

const isMemberQuery = `SELECT EXISTS (SELECT 1 FROM ledger_members WHERE ledger_id = $1 AND user_id = $2)`

// IsMember reports whether userID belongs to ledgerID.
func (r *LedgerRepository) IsMember(ctx context.Context, ledgerID, userID string) (bool, error) {
	var ok bool
	err := r.db.QueryRow(ctx, isMemberQuery, ledgerID, userID).Scan(&ok)
	return ok, err
}

// IsMemberTx is IsMember inside a transaction.
func (r *LedgerRepository) IsMemberTx(ctx context.Context, tx usecase.Transaction, ledgerID, userID string) (bool, error) {
	var ok bool
	err := txQuerier(tx).QueryRow(ctx, isMemberQuery, ledgerID, userID).Scan(&ok)
	return ok, err
}

// CountMembersTx counts a ledger's members.
func (r *LedgerRepository) CountMembersTx(ctx context.Context, tx usecase.Transaction, ledgerID string) (int, error) {
	var n int
	err := txQuerier(tx).QueryRow(ctx, `SELECT COUNT(*) FROM ledger_members WHERE ledger_id = $1`, ledgerID).Scan(&n)
	return n, err
}
