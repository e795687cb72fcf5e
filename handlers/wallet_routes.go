// handlers/wallet_routes.go
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"guildhall/services"
)

func SetupWalletRoutes(app *fiber.App, d Deps) {
	app.Get("/wallets", func(c *fiber.Ctx) error {
		wallets, err := d.Wallets.ListWallets(c.UserContext())
		if err != nil {
			return failure(c, "failed to load wallets", err)
		}
		return c.JSON(wallets)
	})

	// Demo login picks a fixed wallet.
	app.Get("/wallets/demo", func(c *fiber.Ctx) error {
		w, err := d.Wallets.DemoWallet(c.UserContext())
		if err != nil {
			return errorJSON(c, fiber.StatusNotFound, err.Error())
		}
		return c.JSON(w)
	})

	app.Get("/wallets/:address/balance", func(c *fiber.Ctx) error {
		wallet, ok, err := d.Wallets.Wallet(c.UserContext(), c.Params("address"))
		if err != nil {
			return failure(c, "failed to load wallets", err)
		}
		if !ok {
			return errorJSON(c, fiber.StatusNotFound, "wallet not found")
		}
		balance, err := d.Wallets.Balance(c.UserContext(), wallet)
		if err != nil {
			return failure(c, "failed to load balance", err)
		}
		value := d.Prices.BalanceValue(balance.Balances)
		return c.JSON(fiber.Map{
			"balance":        balance,
			"usdValue":       value,
			"usdValueFormat": services.FormatPrice(value),
		})
	})

	app.Get("/prices", func(c *fiber.Ctx) error {
		prices := d.Prices.Prices()
		formatted := make(map[string]string, len(prices))
		for ticker, p := range prices {
			formatted[ticker] = services.FormatPrice(p)
		}
		changes := make(map[string]string)
		for ticker, pct := range d.Prices.Changes() {
			changes[ticker] = services.FormatChange(pct)
		}
		return c.JSON(fiber.Map{
			"prices":    prices,
			"formatted": formatted,
			"changes":   changes,
			"loadedAt":  d.Prices.LoadedAt(),
			"error":     d.Prices.Err(),
		})
	})
}
