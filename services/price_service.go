// services/price_service.go
package services

import (
	"context"
	"fmt"
	"maps"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"guildhall/models"
)

const priceListPath = "pricelist/pricelist.json"

// PriceService holds the current ticker price list.
type PriceService struct {
	fixtures *FixtureClient
	logger   *zap.Logger
	now      func() time.Time

	mu       sync.RWMutex
	prices   models.PriceList
	previous models.PriceList
	err      string
	loadedAt time.Time
}

func NewPriceService(fixtures *FixtureClient, logger *zap.Logger) *PriceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PriceService{fixtures: fixtures, logger: logger.Named("prices"), now: time.Now}
}

// Load fetches the price list. On failure the previous list is kept and Err is set.
func (s *PriceService) Load(ctx context.Context) error {
	var prices models.PriceList
	if err := s.fixtures.GetJSON(ctx, priceListPath, &prices); err != nil {
		s.mu.Lock()
		s.err = fmt.Sprintf("failed to load price data: %v", err)
		s.mu.Unlock()
		return fmt.Errorf("load prices: %w", err)
	}

	s.mu.Lock()
	s.previous = s.prices
	s.prices = prices
	s.err = ""
	s.loadedAt = s.now()
	s.mu.Unlock()

	s.logger.Debug("[PRICES] price list refreshed", zap.Int("tickers", len(prices)))
	return nil
}

// Prices returns a copy of the current list; nil before the first successful load.
func (s *PriceService) Prices() models.PriceList {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.prices == nil {
		return nil
	}
	return maps.Clone(s.prices)
}

func (s *PriceService) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

func (s *PriceService) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

// Changes is the percent move of each ticker since the previous successful load.
// Tickers missing from either list, or previously priced at zero, are left out.
func (s *PriceService) Changes() map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	changes := make(map[string]float64, len(s.prices))
	for ticker, now := range s.prices {
		before, ok := s.previous[ticker]
		if !ok || before == 0 {
			continue
		}
		changes[ticker] = (now - before) / before * 100
	}
	return changes
}

// TokenPrice is 0 for unknown tickers.
func (s *PriceService) TokenPrice(symbol string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prices[symbol]
}

// BalanceValue sums amount × price over a balance map.
func (s *PriceService) BalanceValue(balances map[string]float64) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0.0
	for asset, amount := range balances {
		total += amount * s.prices[asset]
	}
	return total
}

var pricePrinter = message.NewPrinter(language.English)

// FormatPrice renders a USD price with precision by magnitude.
func FormatPrice(price float64) string {
	switch {
	case price == 0:
		return "$0.00"
	case price < 0.01:
		return "$" + strconv.FormatFloat(price, 'f', 6, 64)
	case price < 1:
		return "$" + strconv.FormatFloat(price, 'f', 4, 64)
	case price < 100:
		return "$" + strconv.FormatFloat(price, 'f', 2, 64)
	}
	return "$" + pricePrinter.Sprint(number.Decimal(price, number.MaxFractionDigits(2)))
}

// FormatChange renders a percentage change with an explicit sign.
func FormatChange(change float64) string {
	sign := ""
	if change >= 0 {
		sign = "+"
	}
	return sign + strconv.FormatFloat(change, 'f', 2, 64) + "%"
}
