package services

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/username/markfolio/backend/src/logger"
	"github.com/username/markfolio/backend/src/models"
	"github.com/username/markfolio/backend/src/parsers"
	"github.com/username/markfolio/backend/src/store"
	"github.com/username/markfolio/backend/src/utils"
)

const (
	// Derived-result caches, rebuilt lazily after any write invalidates them.
	ckStats       = "res_dashboard_stats"
	ckPnLAll      = "res_pnl_unfiltered"
	ckInstruments = "res_instruments"
	ckTraders     = "res_traders"

	// At most this many rejected rows are echoed back per upload.
	maxReportedInvalidRows = 10
)

type dashboardServiceImpl struct {
	repo        *store.Repository
	csvParser   *parsers.CSVParser
	reportCache *cache.Cache
}

func NewDashboardService(repo *store.Repository, reportCache *cache.Cache) DashboardService {
	return &dashboardServiceImpl{
		repo:        repo,
		csvParser:   parsers.NewCSVParser(),
		reportCache: reportCache,
	}
}

// UploadTrades validates every parsed row independently and appends the
// valid ones to the trade collection. Rejected rows never abort the batch.
func (s *dashboardServiceImpl) UploadTrades(ctx context.Context, csvText string) (*models.UploadResult, error) {
	startTime := time.Now()

	rows := s.csvParser.Parse(csvText)
	if len(rows) == 0 {
		return nil, ErrEmptyCSV
	}

	valid, invalid := parsers.PartitionTrades(rows)
	if len(valid) > 0 {
		if err := s.repo.AppendTrades(ctx, valid); err != nil {
			return nil, err
		}
		s.invalidateDerived()
	}

	reported := invalid[:utils.MinInt(len(invalid), maxReportedInvalidRows)]
	if reported == nil {
		reported = []models.InvalidTrade{}
	}

	logger.L.Info("Trade upload processed",
		"rows", len(rows),
		"valid", len(valid),
		"invalid", len(invalid),
		"duration", time.Since(startTime))

	return &models.UploadResult{
		ValidCount:    len(valid),
		InvalidCount:  len(invalid),
		InvalidTrades: reported,
	}, nil
}

// CreateTrade validates and appends a single record. Validation failures are
// returned as row errors, not as an operation error.
func (s *dashboardServiceImpl) CreateTrade(ctx context.Context, row models.RawRow) (*models.Trade, []string, error) {
	trade, errs := parsers.ValidateTrade(row)
	if len(errs) > 0 {
		return nil, errs, nil
	}
	if err := s.repo.AppendTrades(ctx, []models.Trade{trade}); err != nil {
		return nil, nil, err
	}
	s.invalidateDerived()
	return &trade, nil, nil
}

func (s *dashboardServiceImpl) ClearTrades(ctx context.Context) error {
	if err := s.repo.ReplaceTrades(ctx, nil); err != nil {
		return err
	}
	s.invalidateDerived()
	logger.L.Info("Trade collection cleared")
	return nil
}

// UploadMarketPrices parses rows without validation and replaces the whole
// price collection with the result.
func (s *dashboardServiceImpl) UploadMarketPrices(ctx context.Context, csvText string) (*models.PriceUploadResult, error) {
	rows := s.csvParser.Parse(csvText)
	if len(rows) == 0 {
		return nil, ErrEmptyCSV
	}

	prices := parsers.ParseMarketPrices(rows)
	if err := s.repo.ReplaceMarketPrices(ctx, prices); err != nil {
		return nil, err
	}
	s.invalidateDerived()

	logger.L.Info("Market price collection replaced", "count", len(prices))
	return &models.PriceUploadResult{Count: len(prices)}, nil
}

func (s *dashboardServiceImpl) ListMarketPrices(ctx context.Context) ([]models.MarketPrice, error) {
	return s.repo.MarketPrices(ctx)
}

func (s *dashboardServiceImpl) ClearMarketPrices(ctx context.Context) error {
	if err := s.repo.ReplaceMarketPrices(ctx, nil); err != nil {
		return err
	}
	s.invalidateDerived()
	logger.L.Info("Market price collection cleared")
	return nil
}

func (s *dashboardServiceImpl) ClearAll(ctx context.Context) error {
	if err := s.repo.ReplaceTrades(ctx, nil); err != nil {
		return err
	}
	if err := s.repo.ReplaceMarketPrices(ctx, nil); err != nil {
		return err
	}
	s.invalidateDerived()
	logger.L.Info("All collections cleared")
	return nil
}

// invalidateDerived drops every cached derived result, forcing a full
// recalculation on the next read.
func (s *dashboardServiceImpl) invalidateDerived() {
	for _, key := range []string{ckStats, ckPnLAll, ckInstruments, ckTraders} {
		s.reportCache.Delete(key)
	}
	logger.L.Debug("Invalidated derived-result caches")
}
