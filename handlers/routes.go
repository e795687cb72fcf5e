// handlers/routes.go
package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"guildhall/middleware"
	"guildhall/services"
)

// Deps are the services the routes read from. Journal may be nil.
type Deps struct {
	Quests       *services.QuestStore
	Journal      *services.ActivityService
	Guilds       *services.GuildService
	Members      *services.MemberService
	Wallets      *services.WalletService
	Prices       *services.PriceService
	ServiceToken string
	// AssetBaseURL, when set, is where fixture-relative guild logos are served from.
	AssetBaseURL string
	Logger       *zap.Logger
}

// Setup registers every route. Mutations live under /s and need the service token and a member.
func Setup(app *fiber.App, d Deps) {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	secured := app.Group("/s",
		middleware.ServiceTokenMiddleware(d.ServiceToken, d.Logger),
		middleware.MemberContextMiddleware(d.Logger),
	)

	SetupQuestRoutes(app, secured, d)
	SetupGuildRoutes(app, d)
	SetupWalletRoutes(app, d)

	app.Get("/stream/quests/:id/activity",
		middleware.StreamAuthMiddleware(d.ServiceToken, d.Logger),
		streamQuestActivity(d.Journal, d.Logger),
	)
}

func errorJSON(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

func failure(c *fiber.Ctx, msg string, err error) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": msg,
		"cause": err.Error(),
	})
}
