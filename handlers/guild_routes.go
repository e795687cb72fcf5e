// handlers/guild_routes.go
package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"guildhall/models"
	"guildhall/services"
	"guildhall/utils"
)

func withAssetLogo(base string, g models.GuildProfile) models.GuildProfile {
	if base != "" {
		g.Logo = utils.ImagePath(base, g.Logo)
	}
	return g
}

func SetupGuildRoutes(app *fiber.App, d Deps) {
	app.Get("/guilds", func(c *fiber.Ctx) error {
		guilds := d.Guilds.Guilds()
		if len(guilds) == 0 {
			guilds = d.Guilds.LoadAvailableGuilds(c.UserContext())
		}
		out := make([]models.GuildProfile, len(guilds))
		for i, g := range guilds {
			out[i] = withAssetLogo(d.AssetBaseURL, g)
		}
		return c.JSON(out)
	})

	app.Get("/guilds/:id", func(c *fiber.Ctx) error {
		g, ok := d.Guilds.Guild(c.Params("id"))
		if !ok {
			return errorJSON(c, fiber.StatusNotFound, "guild not found")
		}
		return c.JSON(withAssetLogo(d.AssetBaseURL, g))
	})

	app.Get("/guilds/:id/members", func(c *fiber.Ctx) error {
		id := c.Params("id")
		session := d.Guilds.NewSession()
		if err := session.Select(c.UserContext(), id); err != nil {
			if errors.Is(err, services.ErrGuildNotFound) {
				return errorJSON(c, fiber.StatusNotFound, "guild not found")
			}
			return failure(c, "failed to load guild members", err)
		}
		members := session.MembersByRole(c.Query("role"))

		type memberRow struct {
			Wallet   string `json:"walletAddress"`
			Username string `json:"username"`
			Role     string `json:"role"`
			RoleName string `json:"roleName"`
			IsActive bool   `json:"isActive"`
		}
		rows := make([]memberRow, len(members))
		for i, m := range members {
			rows[i] = memberRow{
				Wallet:   m.WalletAddress,
				Username: m.Username,
				Role:     m.Role,
				RoleName: session.RoleName(m.Role),
				IsActive: m.IsActive,
			}
		}
		return c.JSON(fiber.Map{
			"guild":   session.Active().ID,
			"count":   len(rows),
			"total":   session.MemberCount(),
			"active":  len(session.ActiveMembers()),
			"members": rows,
		})
	})

	app.Get("/guilds/:id/members/:wallet", func(c *fiber.Ctx) error {
		id, address := c.Params("id"), c.Params("wallet")
		if _, ok := d.Guilds.Guild(id); !ok {
			return errorJSON(c, fiber.StatusNotFound, "guild not found")
		}
		wallet, ok, err := d.Wallets.Wallet(c.UserContext(), address)
		if err != nil {
			return failure(c, "failed to load wallets", err)
		}
		if !ok {
			return errorJSON(c, fiber.StatusNotFound, "wallet not found")
		}

		view, err := d.Members.LoadMember(c.UserContext(), wallet, id)
		switch {
		case err == nil:
			return c.JSON(view)
		case errors.Is(err, services.ErrNotInGuild):
			return errorJSON(c, fiber.StatusForbidden, err.Error())
		case errors.Is(err, services.ErrNotGuildMember), errors.Is(err, services.ErrMemberNotFound):
			return errorJSON(c, fiber.StatusNotFound, err.Error())
		case errors.Is(err, services.ErrMemberDataMismatch):
			return errorJSON(c, fiber.StatusConflict, err.Error())
		default:
			return failure(c, "failed to load member profile", err)
		}
	})

	app.Get("/guilds/:id/activity", func(c *fiber.Ctx) error {
		if d.Journal == nil {
			return errorJSON(c, fiber.StatusServiceUnavailable, "activity journal disabled")
		}
		counts, err := d.Journal.CountByAction(c.UserContext(), c.Params("id"))
		if err != nil {
			return failure(c, "failed to summarise guild activity", err)
		}
		return c.JSON(counts)
	})
}
