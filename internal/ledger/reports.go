package ledger

import (
	"context"
	"fmt"

	"github.com/Veraticus/sharebook/internal/common"
	"github.com/Veraticus/sharebook/internal/model"
	"github.com/Veraticus/sharebook/internal/report"
	"github.com/Veraticus/sharebook/internal/service"
	"golang.org/x/sync/errgroup"
)

// What a report reads from the store.
type reportInputs uint8

const (
	needTransactions reportInputs = 1 << iota
	needExpensesOnly
	needDisbursements
	needShareholders
)

type reportData struct {
	txns          []model.Transaction
	disbursements []model.Disbursement
	shareholders  []model.Shareholder
}

// load reads the records a report needs for r concurrently.
func (s *Service) load(ctx context.Context, r model.DateRange, needs reportInputs) (*reportData, error) {
	if _, err := s.requireUser(ctx); err != nil {
		return nil, err
	}
	if err := r.Validate(); err != nil {
		return nil, common.NewValidationError("%v", err)
	}

	data := &reportData{}
	g, gctx := errgroup.WithContext(ctx)

	if needs&(needTransactions|needExpensesOnly) != 0 {
		filter := service.TransactionFilter{From: &r.From, To: &r.To}
		if needs&needExpensesOnly != 0 {
			expense := model.TransactionExpense
			filter.Type = &expense
		}
		g.Go(func() error {
			txns, err := s.store.ListTransactions(gctx, filter)
			if err != nil {
				return err
			}
			data.txns = txns
			return nil
		})
	}

	if needs&needDisbursements != 0 {
		g.Go(func() error {
			// Payout volume is low; the range is applied in memory.
			all, err := s.store.ListDisbursements(gctx, service.DisbursementFilter{})
			if err != nil {
				return err
			}
			data.disbursements = report.FilterDisbursements(all, r)
			return nil
		})
	}

	if needs&needShareholders != 0 {
		g.Go(func() error {
			shareholders, err := s.store.ListShareholders(gctx, false)
			if err != nil {
				return err
			}
			data.shareholders = shareholders
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load report data: %w", err)
	}
	return data, nil
}

// Metrics returns the headline figures for r.
func (s *Service) Metrics(ctx context.Context, r model.DateRange) (model.Metrics, error) {
	data, err := s.load(ctx, r, needTransactions|needDisbursements)
	if err != nil {
		return model.Metrics{}, err
	}
	return report.BuildMetrics(data.txns, data.disbursements), nil
}

// ProfitSummary returns profit and payouts for r.
func (s *Service) ProfitSummary(ctx context.Context, r model.DateRange) (model.ProfitSummary, error) {
	data, err := s.load(ctx, r, needTransactions|needDisbursements)
	if err != nil {
		return model.ProfitSummary{}, err
	}
	return report.BuildProfitSummary(data.txns, data.disbursements), nil
}

// MonthlyTrend returns income and expenses per month for r, oldest first.
func (s *Service) MonthlyTrend(ctx context.Context, r model.DateRange) ([]model.MonthlyTrendPoint, error) {
	data, err := s.load(ctx, r, needTransactions)
	if err != nil {
		return nil, err
	}
	return report.BuildMonthlyTrend(data.txns, s.loc), nil
}

// ExpenseBreakdown returns the expense total of every category seen in r.
func (s *Service) ExpenseBreakdown(ctx context.Context, r model.DateRange) ([]model.CategoryBreakdown, error) {
	data, err := s.load(ctx, r, needExpensesOnly)
	if err != nil {
		return nil, err
	}
	return report.BuildExpenseBreakdown(data.txns), nil
}

// TopExpenseCategories returns the limit largest expense categories in r.
func (s *Service) TopExpenseCategories(ctx context.Context, r model.DateRange, limit int) ([]model.CategoryBreakdown, error) {
	data, err := s.load(ctx, r, needExpensesOnly)
	if err != nil {
		return nil, err
	}
	return report.BuildTopExpenseCategories(data.txns, limit), nil
}

// ShareholderShares returns each active shareholder's share of the net profit in r.
func (s *Service) ShareholderShares(ctx context.Context, r model.DateRange) ([]model.ShareholderShare, error) {
	data, err := s.load(ctx, r, needTransactions|needDisbursements|needShareholders)
	if err != nil {
		return nil, err
	}
	return report.BuildShareholderShares(data.txns, data.shareholders, data.disbursements), nil
}
