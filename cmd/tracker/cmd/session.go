package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rustyeddy/tracker/auth"
	"github.com/rustyeddy/tracker/journal"
	"github.com/rustyeddy/tracker/portfolio"
	"github.com/rustyeddy/tracker/report"
	"github.com/rustyeddy/tracker/store"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const defaultFlushTimeout = 10 * time.Second

// currentUser picks the user id: --user, then a valid login token, then
// the configured id.
func currentUser() (string, error) {
	if userFlag != "" {
		return userFlag, nil
	}
	token, err := auth.LoadToken(cfg.Auth.TokenFile)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return cfg.User.ID, nil
	case err != nil:
		return "", err
	}
	claims, err := issuer().Verify(token)
	if err != nil {
		return "", fmt.Errorf("stored login is not valid (%v); run tracker login again", err)
	}
	return claims.UserID(), nil
}

func issuer() auth.Issuer {
	return auth.Issuer{Secret: []byte(cfg.AuthSecret()), TTL: cfg.Auth.TokenTTL}
}

func openJournal(ctx context.Context) (journal.Journal, error) {
	opts := []journal.Option{
		journal.WithLogger(log),
		journal.WithPollInterval(cfg.Store.PollInterval),
		journal.WithKeyPrefix(cfg.Store.Redis.Prefix),
	}
	switch cfg.Store.Type {
	case "redis":
		return journal.DialRedis(ctx, &redis.Options{
			Addr:     cfg.Store.Redis.Addr,
			Password: cfg.Store.Redis.Password,
			DB:       cfg.Store.Redis.DB,
		}, opts...)
	case "memory":
		return journal.NewMemory(opts...), nil
	default:
		return journal.NewSQLite(cfg.Store.DBPath, opts...)
	}
}

// withStore opens the user's store, runs fn and waits for its writes.
func withStore(cmd *cobra.Command, fn func(ctx context.Context, s *store.Store) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	user, err := currentUser()
	if err != nil {
		return err
	}
	j, err := openJournal(ctx)
	if err != nil {
		return fmt.Errorf("open %s journal: %w", cfg.Store.Type, err)
	}
	defer j.Close()

	policy, err := store.ParsePolicy(cfg.Store.Conflict)
	if err != nil {
		return err
	}
	s := store.New(j, user, store.WithLogger(log), store.WithPolicy(policy))
	defer func() {
		if err := s.Close(); err != nil {
			log.Warn("close store", zap.Error(err))
		}
	}()
	if err := s.Load(ctx); err != nil {
		return err
	}

	if err := fn(ctx, s); err != nil {
		return err
	}

	timeout := cfg.Store.FlushTimeout
	if timeout <= 0 {
		timeout = defaultFlushTimeout
	}
	flushCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return s.Flush(flushCtx)
}

// selectPortfolio resolves --portfolio by id or case-insensitive name. With
// no flag, a user with exactly one portfolio gets that one.
func selectPortfolio(s *store.Store) (portfolio.Portfolio, error) {
	return findPortfolio(s.List(), portfolioFlag)
}

func findPortfolio(all []portfolio.Portfolio, ref string) (portfolio.Portfolio, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		switch len(all) {
		case 0:
			return portfolio.Portfolio{}, fmt.Errorf("no portfolios yet; create one with tracker portfolio create")
		case 1:
			return all[0], nil
		default:
			return portfolio.Portfolio{}, fmt.Errorf("%d portfolios found; choose one with --portfolio", len(all))
		}
	}

	var byName []portfolio.Portfolio
	for _, p := range all {
		if p.ID == ref {
			return p, nil
		}
		if strings.EqualFold(p.Name, ref) {
			byName = append(byName, p)
		}
	}
	switch len(byName) {
	case 0:
		return portfolio.Portfolio{}, fmt.Errorf("%w: %q", store.ErrPortfolioNotFound, ref)
	case 1:
		return byName[0], nil
	default:
		return portfolio.Portfolio{}, fmt.Errorf("%d portfolios are named %q; use the id", len(byName), ref)
	}
}

// show renders markdown to the command's output.
func show(cmd *cobra.Command, markdown string) error {
	out, err := report.Render(markdown, cfg.Display.WordWrap, cfg.Display.PlainText)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
	return err
}

func amount(field, s string) (decimal.Decimal, error) {
	return portfolio.ParseAmount(field, s)
}

// amountFlag returns the parsed flag value and whether the flag was set.
func amountFlag(cmd *cobra.Command, name, field string) (*decimal.Decimal, error) {
	if !cmd.Flags().Changed(name) {
		return nil, nil
	}
	raw, err := cmd.Flags().GetString(name)
	if err != nil {
		return nil, err
	}
	d, err := amount(field, raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
