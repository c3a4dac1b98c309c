package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"gnomeshade/internal/cache"
	"gnomeshade/internal/core"
	"gnomeshade/internal/log"
	"gnomeshade/internal/storage"
)

// Viewer identifies whose data a report is built for. CounterpartyID decides
// which accounts count as the viewer's own.
type Viewer struct {
	UserID         uuid.UUID
	CounterpartyID uuid.UUID
}

// CategoryQuery selects the transactions and grouping of a category report.
type CategoryQuery struct {
	From  *time.Time
	To    *time.Time
	Split core.Split
	Root  *uuid.UUID
}

func (q CategoryQuery) key() string {
	f := func(t *time.Time) string {
		if t == nil {
			return "-"
		}
		return t.UTC().Format(time.RFC3339)
	}
	root := "-"
	if q.Root != nil {
		root = q.Root.String()
	}
	return fmt.Sprintf("%s|%s|%s|%s", f(q.From), f(q.To), q.Split, root)
}

// ReportService computes balance and category reports and caches them per
// owner. Invalidate bumps the owner's generation so older keys never match.
type ReportService struct {
	store  *storage.Store
	logger *log.Logger

	balances   *cache.LRUCache[[]core.Balance]
	histories  *cache.LRUCache[[]core.BalancePoint]
	categories *cache.LRUCache[core.CategoryReport]
	group      singleflight.Group

	loadTimeout time.Duration

	mu          sync.Mutex
	generations map[uuid.UUID]uint64
}

func NewReportService(store *storage.Store, size int, ttl time.Duration, logger *log.Logger) *ReportService {
	if logger == nil {
		logger = log.Discard()
	}
	return &ReportService{
		store:       store,
		logger:      logger.WithComponent(log.ComponentReports),
		loadTimeout: 30 * time.Second,
		balances:    cache.NewLRUCache[[]core.Balance](size, ttl),
		histories:   cache.NewLRUCache[[]core.BalancePoint](size, ttl),
		categories:  cache.NewLRUCache[core.CategoryReport](size, ttl),
		generations: make(map[uuid.UUID]uint64),
	}
}

// Caches returns the caches to register with a cleanup manager.
func (s *ReportService) Caches() []cache.Cleaner {
	return []cache.Cleaner{s.balances, s.histories, s.categories}
}

// CacheStats summarizes the report caches.
type CacheStats struct {
	Entries int
	Hits    uint64
	Misses  uint64
}

func (s *ReportService) CacheStats() CacheStats {
	var st CacheStats
	add := func(size int, hits, misses uint64) {
		st.Entries += size
		st.Hits += hits
		st.Misses += misses
	}
	h, m := s.balances.Stats()
	add(s.balances.Size(), h, m)
	h, m = s.histories.Stats()
	add(s.histories.Size(), h, m)
	h, m = s.categories.Stats()
	add(s.categories.Size(), h, m)
	return st
}

// Invalidate discards every cached report of the owner.
func (s *ReportService) Invalidate(ownerID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generations[ownerID]++
}

func (s *ReportService) key(ownerID uuid.UUID, kind, params string) string {
	s.mu.Lock()
	gen := s.generations[ownerID]
	s.mu.Unlock()
	return fmt.Sprintf("%s:%d:%s:%s", ownerID, gen, kind, params)
}

// cached returns the value under key, computing it once across concurrent
// callers on a miss.
func cached[T any](ctx context.Context, s *ReportService, c *cache.LRUCache[T], key string, load func(context.Context) (T, error)) (T, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err, shared := s.group.Do(key, func() (any, error) {
		// Other callers may be waiting on this load, so it outlives the
		// request that started it.
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.loadTimeout)
		defer cancel()
		v, err := load(lctx)
		if err != nil {
			return nil, err
		}
		c.Set(key, v)
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	s.logger.DebugContext(ctx, "Report computed", "key", key, "shared", shared)
	return v.(T), nil
}

// Balances returns the balance of every in-currency row of the owner's accounts.
func (s *ReportService) Balances(ctx context.Context, ownerID uuid.UUID) ([]core.Balance, error) {
	return cached(ctx, s, s.balances, s.key(ownerID, "balances", ""), func(ctx context.Context) ([]core.Balance, error) {
		var accounts []core.Account
		var transfers []core.Transfer
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			accounts, err = s.store.Accounts.Get(gctx, ownerID)
			return err
		})
		g.Go(func() (err error) {
			transfers, err = s.store.Transfers.Get(gctx, ownerID)
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("load balances: %w", err)
		}
		return core.AccountBalances(accounts, transfers), nil
	})
}

// AccountBalance returns the per-currency balances of one account.
func (s *ReportService) AccountBalance(ctx context.Context, accountID, ownerID uuid.UUID) ([]core.Balance, error) {
	if _, err := s.store.Accounts.FindByID(ctx, accountID, ownerID); err != nil {
		return nil, err
	}
	all, err := s.Balances(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out := []core.Balance{}
	for _, b := range all {
		if b.AccountID == accountID {
			out = append(out, b)
		}
	}
	return out, nil
}

// BalanceHistory returns period candles of one account's running balance.
func (s *ReportService) BalanceHistory(ctx context.Context, accountID, ownerID uuid.UUID, split core.Split) ([]core.BalancePoint, error) {
	key := s.key(ownerID, "history", accountID.String()+"|"+string(split))
	return cached(ctx, s, s.histories, key, func(ctx context.Context) ([]core.BalancePoint, error) {
		account, err := s.store.Accounts.FindByID(ctx, accountID, ownerID)
		if err != nil {
			return nil, err
		}
		transfers, err := s.store.Transfers.Get(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		inCurrency := make(map[uuid.UUID]bool, len(account.Currencies))
		for _, c := range account.Currencies {
			inCurrency[c.ID] = true
		}
		points := core.BalanceHistory(inCurrency, transfers, split)
		if points == nil {
			points = []core.BalancePoint{}
		}
		return points, nil
	})
}

// Categories returns the viewer's spending per category and period.
func (s *ReportService) Categories(ctx context.Context, viewer Viewer, q CategoryQuery) (core.CategoryReport, error) {
	key := s.key(viewer.UserID, "categories", q.key())
	return cached(ctx, s, s.categories, key, func(ctx context.Context) (core.CategoryReport, error) {
		in := core.CategoryReportInput{Split: q.Split, Root: q.Root}
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			in.Transactions, err = s.store.DetailedTransactions(gctx, viewer.UserID, viewer.CounterpartyID, q.From, q.To)
			return err
		})
		g.Go(func() (err error) {
			in.Accounts, err = s.store.Accounts.Get(gctx, viewer.UserID)
			return err
		})
		g.Go(func() (err error) {
			in.Products, err = s.store.Products.Get(gctx, viewer.UserID)
			return err
		})
		g.Go(func() (err error) {
			in.Categories, err = s.store.Categories.Get(gctx, viewer.UserID)
			return err
		})
		if err := g.Wait(); err != nil {
			return core.CategoryReport{}, fmt.Errorf("load category report: %w", err)
		}
		return core.BuildCategoryReport(in), nil
	})
}
