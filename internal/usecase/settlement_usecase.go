package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/iho/ourllet/internal/domain"
)

// SettlementUseCase builds monthly settlement and summary reports.
type SettlementUseCase struct {
	entryRepo EntryRepository
	fixedRepo FixedEntryRepository
	metrics   MetricsRecorder
}

// NewSettlementUseCase creates a new SettlementUseCase.
func NewSettlementUseCase(entryRepo EntryRepository, fixedRepo FixedEntryRepository) *SettlementUseCase {
	return &SettlementUseCase{
		entryRepo: entryRepo,
		fixedRepo: fixedRepo,
		metrics:   noopMetrics{},
	}
}

// WithMetrics sets the metrics recorder.
func (uc *SettlementUseCase) WithMetrics(m MetricsRecorder) *SettlementUseCase {
	if m != nil {
		uc.metrics = m
	}
	return uc
}

// SettlementInput represents input for a settlement report.
type SettlementInput struct {
	LedgerID string
	Period   string
	Debug    bool
}

// GetSettlement computes the monthly settlement of a ledger. Callers gate membership.
func (uc *SettlementUseCase) GetSettlement(ctx context.Context, input SettlementInput) (*domain.Settlement, error) {
	period, err := validateReportInput(input.LedgerID, input.Period)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	start, end := period.Start(), period.End()

	var (
		in       = domain.SettlementInput{Period: period, Debug: input.Debug}
		fixed    []*domain.FixedEntry
		incomes  []*domain.Entry
		g, gctx  = errgroup.WithContext(ctx)
		ledgerID = input.LedgerID
	)

	g.Go(func() error {
		sum, err := uc.entryRepo.SumByType(gctx, ledgerID, domain.EntryTypeIncome, start, end)
		if err != nil {
			return fmt.Errorf("sum income: %w", err)
		}
		in.IncomeFromEntries = sum
		return nil
	})
	g.Go(func() error {
		sum, err := uc.entryRepo.SumByType(gctx, ledgerID, domain.EntryTypeSavings, start, end)
		if err != nil {
			return fmt.Errorf("sum savings: %w", err)
		}
		in.SavingsTotal = sum
		return nil
	})
	g.Go(func() error {
		byCategory, err := uc.entryRepo.SumExpensesByCategory(gctx, ledgerID, start, end)
		if err != nil {
			return fmt.Errorf("sum expenses by category: %w", err)
		}
		in.ExpenseByCategory = byCategory
		return nil
	})
	g.Go(func() error {
		list, err := uc.fixedRepo.ListByLedger(gctx, ledgerID)
		if err != nil {
			return fmt.Errorf("list fixed entries: %w", err)
		}
		fixed = list
		return nil
	})
	if input.Debug {
		g.Go(func() error {
			list, err := uc.entryRepo.ListByType(gctx, ledgerID, domain.EntryTypeIncome, start, end)
			if err != nil {
				return fmt.Errorf("list income entries: %w", err)
			}
			incomes = list
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	in.FixedEntries = make([]domain.FixedEntry, 0, len(fixed))
	for _, f := range fixed {
		in.FixedEntries = append(in.FixedEntries, *f)
	}
	if input.Debug {
		in.IncomeEntries = make([]domain.Entry, 0, len(incomes))
		for _, e := range incomes {
			in.IncomeEntries = append(in.IncomeEntries, *e)
		}
	}

	settlement := domain.BuildSettlement(in)
	uc.metrics.RecordSettlement(time.Since(started), len(settlement.Items))

	return &settlement, nil
}

// GetSummary returns the month's ad-hoc totals of a ledger. Callers gate membership.
func (uc *SettlementUseCase) GetSummary(ctx context.Context, ledgerID, period string) (*domain.Summary, error) {
	p, err := validateReportInput(ledgerID, period)
	if err != nil {
		return nil, err
	}

	sums, err := uc.entryRepo.SumsByType(ctx, ledgerID, p.Start(), p.End())
	if err != nil {
		return nil, fmt.Errorf("sum entries: %w", err)
	}
	if sums == nil {
		sums = map[domain.EntryType]decimal.Decimal{}
	}

	summary := domain.NewSummary(p, sums)
	return &summary, nil
}

func validateReportInput(ledgerID, period string) (domain.Period, error) {
	var msgs []string
	if err := domain.ValidateLedgerID(ledgerID); err != nil {
		msgs = append(msgs, err.Error())
	}
	p, err := domain.ParsePeriod(period)
	if err != nil {
		msgs = append(msgs, err.Error())
	}
	if len(msgs) > 0 {
		return domain.Period{}, domain.NewValidationError(msgs...)
	}
	return p, nil
}
