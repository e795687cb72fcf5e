// services/wallet_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"go.uber.org/zap"

	"guildhall/models"
)

const (
	walletListPath = "userwallet/test_wallets.json"
	demoWalletName = "Alice"
)

func walletBalancePath(address string) string {
	return path.Join("balance", fmt.Sprintf("wallet_%s_balance.json", address))
}

// WalletService reads test wallets and their balances. Balances are never cached.
type WalletService struct {
	fixtures *FixtureClient
	logger   *zap.Logger
	now      func() time.Time
}

func NewWalletService(fixtures *FixtureClient, logger *zap.Logger) *WalletService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WalletService{fixtures: fixtures, logger: logger.Named("wallets"), now: time.Now}
}

func (s *WalletService) WithClock(now func() time.Time) *WalletService {
	s.now = now
	return s
}

func (s *WalletService) ListWallets(ctx context.Context) ([]models.Wallet, error) {
	var wallets []models.Wallet
	if err := s.fixtures.GetCachedJSON(ctx, walletListPath, &wallets); err != nil {
		return nil, fmt.Errorf("failed to load wallets: %w", err)
	}
	return wallets, nil
}

// Wallet looks an address up in the wallet list.
func (s *WalletService) Wallet(ctx context.Context, address string) (models.Wallet, bool, error) {
	wallets, err := s.ListWallets(ctx)
	if err != nil {
		return models.Wallet{}, false, err
	}
	for _, w := range wallets {
		if w.Address == address {
			return w, true, nil
		}
	}
	return models.Wallet{}, false, nil
}

// DemoWallet returns the wallet used for demo logins.
func (s *WalletService) DemoWallet(ctx context.Context) (models.Wallet, error) {
	wallets, err := s.ListWallets(ctx)
	if err != nil {
		return models.Wallet{}, err
	}
	for _, w := range wallets {
		if w.Name == demoWalletName {
			return w, nil
		}
	}
	return models.Wallet{}, fmt.Errorf("demo wallet %q not in wallet list", demoWalletName)
}

// Balance loads the wallet's balance file. A wallet without one gets zero balances and no guilds.
func (s *WalletService) Balance(ctx context.Context, wallet models.Wallet) (*models.WalletBalance, error) {
	var b models.WalletBalance
	err := s.fixtures.GetJSON(ctx, walletBalancePath(wallet.Address), &b)
	if errors.Is(err, ErrFixtureNotFound) {
		s.logger.Debug("[WALLETS] no balance file, using defaults", zap.String("wallet", wallet.Address))
		return s.defaultBalance(wallet), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load balance for %s: %w", wallet.Address, err)
	}
	if b.Balances == nil {
		b.Balances = map[string]float64{}
	}
	return &b, nil
}

func (s *WalletService) defaultBalance(wallet models.Wallet) *models.WalletBalance {
	balances := make(map[string]float64, len(models.DefaultBalanceTickers))
	for _, t := range models.DefaultBalanceTickers {
		balances[t] = 0
	}
	return &models.WalletBalance{
		WalletID:    wallet.Address,
		Owner:       wallet.Name,
		Guilds:      []string{},
		Balances:    balances,
		LastUpdated: s.now().UTC().Format(time.RFC3339),
	}
}

// IsInGuild reports whether the wallet's balance file lists guildID.
func (s *WalletService) IsInGuild(ctx context.Context, wallet models.Wallet, guildID string) (bool, error) {
	b, err := s.Balance(ctx, wallet)
	if err != nil {
		return false, err
	}
	return b.InGuild(guildID), nil
}

// TokenBalance returns one entry of the balance map, zero when absent.
func TokenBalance(b *models.WalletBalance, token string) float64 {
	if b == nil {
		return 0
	}
	return b.Balances[token]
}
