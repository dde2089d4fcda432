package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/sharebook/internal/auth"
	"github.com/Veraticus/sharebook/internal/cli"
	"github.com/Veraticus/sharebook/internal/common"
	"github.com/Veraticus/sharebook/internal/ledger"
	"github.com/Veraticus/sharebook/internal/model"
	"github.com/Veraticus/sharebook/internal/service"
	"github.com/Veraticus/sharebook/internal/storage"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// dateLayout is the only date format accepted on the command line.
const dateLayout = "2006-01-02"

// authenticator resolves the acting user from the context first, then from config.
func (a *app) authenticator() service.Authenticator {
	return auth.Chain{auth.FromContext{}, auth.Static{UserID: a.cfg.User}}
}

// requireUser fails with common.ErrUnauthenticated when no user is configured.
func (a *app) requireUser(ctx context.Context) error {
	if _, ok := a.authenticator().CurrentUserID(ctx); !ok {
		return common.ErrUnauthenticated
	}
	return nil
}

// initStorage opens the configured database and brings its schema up to date.
// Nothing touches the database file until a user has been resolved.
func (a *app) initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	if err := a.requireUser(ctx); err != nil {
		return nil, err
	}

	store, err := storage.NewSQLiteStorage(a.cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// initService wires the ledger over a freshly opened store. Callers close the store.
func (a *app) initService(ctx context.Context) (*ledger.Service, *storage.SQLiteStorage, error) {
	store, err := a.initStorage(ctx)
	if err != nil {
		return nil, nil, err
	}

	svc := ledger.New(store, a.authenticator(), ledger.WithLocation(a.cfg.Location))
	return svc, store, nil
}

// withService runs fn against an open ledger and closes the store afterwards.
func (a *app) withService(cmd *cobra.Command, fn func(ctx context.Context, svc *ledger.Service) error) error {
	ctx := cmd.Context()

	svc, store, err := a.initService(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	return fn(ctx, svc)
}

func (a *app) money(d decimal.Decimal) string {
	return cli.FormatMoney(d, a.cfg.Currency)
}

func (a *app) parseDate(value string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(value), a.cfg.Location)
	if err != nil {
		return time.Time{}, common.NewUserError(fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", value), err)
	}
	return t, nil
}

// parseRange reads --from/--to. Missing bounds default to the current calendar year;
// the end date includes the whole day.
func (a *app) parseRange(from, to string) (model.DateRange, error) {
	r := model.YearRange(time.Now().In(a.cfg.Location))

	if from != "" {
		start, err := a.parseDate(from)
		if err != nil {
			return model.DateRange{}, err
		}
		r.From = start
	}
	if to != "" {
		end, err := a.parseDate(to)
		if err != nil {
			return model.DateRange{}, err
		}
		r.To = endOfDay(end)
	}

	return r, nil
}

func endOfDay(t time.Time) time.Time {
	return t.AddDate(0, 0, 1).Add(-time.Millisecond)
}

func parseAmount(value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Decimal{}, common.NewUserError(fmt.Sprintf("invalid amount %q", value), err)
	}
	return d, nil
}

func parseType(value string) (model.TransactionType, error) {
	t := model.TransactionType(strings.ToLower(strings.TrimSpace(value)))
	if !t.Valid() {
		return "", common.NewUserError(fmt.Sprintf("invalid type %q, expected income or expense", value), nil)
	}
	return t, nil
}

func orDash(s string) string {
	if s == "" {
		return cli.SubtleStyle.Render("—")
	}
	return s
}

func activeLabel(active bool) string {
	if active {
		return cli.SuccessStyle.Render("active")
	}
	return cli.SubtleStyle.Render("inactive")
}
