package service

import (
	"context"
	"log/slog"

	"github.com/egannguyen/sales-orders/internal/entity"
	"github.com/egannguyen/sales-orders/internal/messaging"
	"github.com/egannguyen/sales-orders/internal/report"
	"github.com/egannguyen/sales-orders/internal/repository"
)

// ReportCache stores computed reports between order changes.
type ReportCache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any) error
	Invalidate(ctx context.Context) error
}

const topClientsKey = "top-clients"

// ReportService serves the revenue reports over completed orders. The cache
// is optional; cache failures fall back to the database.
type ReportService struct {
	reports repository.ReportRepository
	cache   ReportCache
}

func NewReportService(reports repository.ReportRepository, cache ReportCache) *ReportService {
	return &ReportService{reports: reports, cache: cache}
}

// TopClients returns every client with completed orders, highest revenue first.
func (s *ReportService) TopClients(ctx context.Context) ([]entity.ClientRevenue, error) {
	var rows []entity.ClientRevenue
	if s.cached(ctx, topClientsKey, &rows) {
		return rows, nil
	}
	rows, err := s.reports.ClientRevenue(ctx)
	if err != nil {
		return nil, err
	}
	s.store(ctx, topClientsKey, rows)
	return rows, nil
}

// TopSellers returns the best sellers by completed-order revenue, ranked
// with pipeline p.
func (s *ReportService) TopSellers(ctx context.Context, p report.Pipeline) ([]entity.SellerRevenue, error) {
	key := "top-sellers:" + string(p)
	var rows []entity.SellerRevenue
	if s.cached(ctx, key, &rows) {
		return rows, nil
	}
	groups, err := s.reports.SellerRevenue(ctx)
	if err != nil {
		return nil, err
	}
	rows = report.TopSellers(groups, report.TopSellersLimit, p)
	s.store(ctx, key, rows)
	return rows, nil
}

// InvalidateReports drops every cached report. It is a no-op without a cache.
func (s *ReportService) InvalidateReports(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Invalidate(ctx)
}

// HandleOrderEvent drops cached reports when an order changes. It is meant
// to be registered as a message consumer, so that instances other than the
// one that committed the change drop their cache too.
func (s *ReportService) HandleOrderEvent(ctx context.Context, payload []byte) error {
	env, err := messaging.DecodeEnvelope(payload)
	if err != nil {
		return err
	}
	slog.Debug("Invalidating report cache", "event", env.Type)
	return s.InvalidateReports(ctx)
}

func (s *ReportService) cached(ctx context.Context, key string, dst any) bool {
	if s.cache == nil {
		return false
	}
	hit, err := s.cache.Get(ctx, key, dst)
	if err != nil {
		slog.Warn("Report cache read failed", "key", key, "err", err)
		return false
	}
	return hit
}

func (s *ReportService) store(ctx context.Context, key string, v any) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, v); err != nil {
		slog.Warn("Report cache write failed", "key", key, "err", err)
	}
}
