package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/ourllet/internal/domain"
)

const fixedEntryColumns = `id, ledger_id, user_id, type, title, category, amount, day_of_month, memo, excluded_dates, created_at, updated_at`

// FixedEntryRepository implements usecase.FixedEntryRepository.
type FixedEntryRepository struct {
	db querier
}

// NewFixedEntryRepository creates a new FixedEntryRepository.
func NewFixedEntryRepository(pool *pgxpool.Pool) *FixedEntryRepository {
	return newFixedEntryRepository(pool)
}

func newFixedEntryRepository(db querier) *FixedEntryRepository {
	return &FixedEntryRepository{db: db}
}

// Create inserts a fixed entry.
func (r *FixedEntryRepository) Create(ctx context.Context, f *domain.FixedEntry) error {
	query := `
		INSERT INTO fixed_entries (` + fixedEntryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.Exec(ctx, query,
		f.ID,
		f.LedgerID,
		f.UserID,
		string(f.Type),
		f.Title,
		f.Category,
		decimalToNumeric(f.Amount),
		f.DayOfMonth,
		f.Memo,
		excludedDatesArg(f.ExcludedDates),
		f.CreatedAt,
		f.UpdatedAt,
	)

	return err
}

// GetByID retrieves a fixed entry by ID.
func (r *FixedEntryRepository) GetByID(ctx context.Context, id string) (*domain.FixedEntry, error) {
	f, err := scanFixedEntry(r.db.QueryRow(ctx, `SELECT `+fixedEntryColumns+` FROM fixed_entries WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}

	return f, nil
}

// ListByLedger lists a ledger's fixed entries ordered by type, day of month and creation time.
func (r *FixedEntryRepository) ListByLedger(ctx context.Context, ledgerID string) ([]*domain.FixedEntry, error) {
	query := `
		SELECT ` + fixedEntryColumns + `
		FROM fixed_entries
		WHERE ledger_id = $1
		ORDER BY type, day_of_month, created_at
	`

	rows, err := r.db.Query(ctx, query, ledgerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]*domain.FixedEntry, 0)
	for rows.Next() {
		f, err := scanFixedEntry(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, f)
	}

	return list, rows.Err()
}

func scanFixedEntry(row interface{ Scan(dest ...any) error }) (*domain.FixedEntry, error) {
	var (
		f         domain.FixedEntry
		fixedType string
	)

	err := row.Scan(
		&f.ID,
		&f.LedgerID,
		&f.UserID,
		&fixedType,
		&f.Title,
		&f.Category,
		&f.Amount,
		&f.DayOfMonth,
		&f.Memo,
		&f.ExcludedDates,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	f.Type = domain.FixedEntryType(fixedType)
	if f.ExcludedDates == nil {
		f.ExcludedDates = []time.Time{}
	}

	return &f, nil
}

// Update replaces a fixed entry's mutable fields.
func (r *FixedEntryRepository) Update(ctx context.Context, f *domain.FixedEntry) error {
	query := `
		UPDATE fixed_entries
		SET type = $2, title = $3, category = $4, amount = $5, day_of_month = $6,
		    memo = $7, excluded_dates = $8, updated_at = $9
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query,
		f.ID,
		string(f.Type),
		f.Title,
		f.Category,
		decimalToNumeric(f.Amount),
		f.DayOfMonth,
		f.Memo,
		excludedDatesArg(f.ExcludedDates),
		f.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// Delete removes a fixed entry.
func (r *FixedEntryRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM fixed_entries WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// excludedDatesArg keeps the column NOT NULL by sending an empty array for nil.
func excludedDatesArg(dates []time.Time) []time.Time {
	if dates == nil {
		return []time.Time{}
	}
	return dates
}
