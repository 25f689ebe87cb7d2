package postgres

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/ourllet/internal/domain"
)

var entryColumns = []string{
	"id", "ledger_id", "user_id", "type", "amount", "title", "category", "memo", "date", "created_at",
}

// EntryRepository implements usecase.EntryRepository.
type EntryRepository struct {
	db querier
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(pool *pgxpool.Pool) *EntryRepository {
	return newEntryRepository(pool)
}

func newEntryRepository(db querier) *EntryRepository {
	return &EntryRepository{db: db}
}

// Create creates a new entry.
func (r *EntryRepository) Create(ctx context.Context, entry *domain.Entry) error {
	query := `
		INSERT INTO ledger_entries (id, ledger_id, user_id, type, amount, title, category, memo, date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.Exec(ctx, query,
		entry.ID,
		entry.LedgerID,
		entry.UserID,
		string(entry.Type),
		decimalToNumeric(entry.Amount),
		entry.Title,
		entry.Category,
		entry.Memo,
		entry.Date,
		entry.CreatedAt,
	)

	return err
}

// GetByID retrieves an entry by ID.
func (r *EntryRepository) GetByID(ctx context.Context, id string) (*domain.Entry, error) {
	query, args, err := psql.Select(entryColumns...).From("ledger_entries").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}

	entry, err := scanEntry(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, notFound(err)
	}

	return entry, nil
}

// List lists a ledger's entries, newest first.
func (r *EntryRepository) List(ctx context.Context, filter domain.EntryFilter) ([]*domain.Entry, error) {
	q := psql.Select(entryColumns...).
		From("ledger_entries").
		Where(sq.Eq{"ledger_id": filter.LedgerID}).
		OrderBy("date DESC", "created_at DESC").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset))

	if filter.Period != nil {
		q = q.Where(sq.GtOrEq{"date": filter.Period.Start()}).Where(sq.LtOrEq{"date": filter.Period.End()})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	return r.queryEntries(ctx, query, args...)
}

// ListByType lists a ledger's entries of one type between start and end inclusive.
func (r *EntryRepository) ListByType(ctx context.Context, ledgerID string, entryType domain.EntryType, start, end time.Time) ([]*domain.Entry, error) {
	query, args, err := psql.Select(entryColumns...).
		From("ledger_entries").
		Where(sq.Eq{"ledger_id": ledgerID, "type": string(entryType)}).
		Where("date BETWEEN ? AND ?", start, end).
		OrderBy("date", "created_at").
		ToSql()
	if err != nil {
		return nil, err
	}

	return r.queryEntries(ctx, query, args...)
}

func (r *EntryRepository) queryEntries(ctx context.Context, query string, args ...any) ([]*domain.Entry, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*domain.Entry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

func scanEntry(row interface{ Scan(dest ...any) error }) (*domain.Entry, error) {
	var (
		e         domain.Entry
		entryType string
	)

	err := row.Scan(
		&e.ID,
		&e.LedgerID,
		&e.UserID,
		&entryType,
		&e.Amount,
		&e.Title,
		&e.Category,
		&e.Memo,
		&e.Date,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.Type = domain.EntryType(entryType)

	return &e, nil
}

// Update replaces an entry's fields.
func (r *EntryRepository) Update(ctx context.Context, entry *domain.Entry) error {
	query := `
		UPDATE ledger_entries
		SET ledger_id = $2, type = $3, amount = $4, title = $5, category = $6, memo = $7, date = $8
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query,
		entry.ID,
		entry.LedgerID,
		string(entry.Type),
		decimalToNumeric(entry.Amount),
		entry.Title,
		entry.Category,
		entry.Memo,
		entry.Date,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// Delete removes an entry.
func (r *EntryRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM ledger_entries WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// SumByType sums a ledger's entries of one type between start and end inclusive.
func (r *EntryRepository) SumByType(ctx context.Context, ledgerID string, entryType domain.EntryType, start, end time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM ledger_entries
		WHERE ledger_id = $1 AND type = $2 AND date BETWEEN $3 AND $4
	`

	var sum decimal.Decimal
	if err := r.db.QueryRow(ctx, query, ledgerID, string(entryType), start, end).Scan(&sum); err != nil {
		return decimal.Zero, err
	}

	return sum, nil
}

// SumsByType sums a ledger's entries per type between start and end inclusive.
func (r *EntryRepository) SumsByType(ctx context.Context, ledgerID string, start, end time.Time) (map[domain.EntryType]decimal.Decimal, error) {
	query := `
		SELECT type, COALESCE(SUM(amount), 0)
		FROM ledger_entries
		WHERE ledger_id = $1 AND date BETWEEN $2 AND $3
		GROUP BY type
	`

	rows, err := r.db.Query(ctx, query, ledgerID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sums := make(map[domain.EntryType]decimal.Decimal, 3)
	for rows.Next() {
		var (
			entryType string
			sum       decimal.Decimal
		)
		if err := rows.Scan(&entryType, &sum); err != nil {
			return nil, err
		}
		sums[domain.EntryType(entryType)] = sum
	}

	return sums, rows.Err()
}

// SumExpensesByCategory sums a ledger's expenses per category between start
// and end inclusive. Entries without a category are reported under "".
func (r *EntryRepository) SumExpensesByCategory(ctx context.Context, ledgerID string, start, end time.Time) ([]domain.CategoryAmount, error) {
	query := `
		SELECT COALESCE(category, ''), COALESCE(SUM(amount), 0)
		FROM ledger_entries
		WHERE ledger_id = $1 AND type = 'expense' AND date BETWEEN $2 AND $3
		GROUP BY category
	`

	rows, err := r.db.Query(ctx, query, ledgerID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]domain.CategoryAmount, 0)
	for rows.Next() {
		var ca domain.CategoryAmount
		if err := rows.Scan(&ca.Category, &ca.Amount); err != nil {
			return nil, err
		}
		result = append(result, ca)
	}

	return result, rows.Err()
}
