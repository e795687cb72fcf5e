// handlers/quest_routes.go
package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"guildhall/middleware"
	"guildhall/models"
	"guildhall/services"
)

type applyRequest struct {
	MemberName string `json:"memberName"`
	Message    string `json:"message"`
}

type assignRequest struct {
	MemberID string `json:"memberID"`
}

type verifyRequest struct {
	Notes    string                     `json:"notes"`
	Quality  models.VerificationQuality `json:"quality"`
	Approved bool                       `json:"approved"`
}

type rewardRequest struct {
	Rewards []models.QuestReward `json:"rewards"`
}

func SetupQuestRoutes(app *fiber.App, secured fiber.Router, d Deps) {
	quests := d.Quests

	// 🔓 Public routes
	app.Get("/quests", func(c *fiber.Ctx) error {
		tab, err := parseTab(c)
		if err != nil {
			return errorJSON(c, fiber.StatusBadRequest, err.Error())
		}
		status := c.Query("status", services.StatusFilterAll)
		if status != services.StatusFilterAll && !models.QuestStatus(status).Valid() {
			return errorJSON(c, fiber.StatusBadRequest, "invalid status filter: "+status)
		}

		info, _ := services.TabInfoFor(tab)
		return c.JSON(fiber.Map{
			"tab":     info,
			"status":  status,
			"items":   services.QuestItems(quests.Filtered(tab, status)),
			"stats":   quests.Stats(tab),
			"loading": quests.Loading(),
			"error":   quests.Err(),
		})
	})

	app.Get("/quests/stats", func(c *fiber.Ctx) error {
		tab, err := parseTab(c)
		if err != nil {
			return errorJSON(c, fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(quests.Stats(tab))
	})

	app.Get("/quests/meta/tabs", func(c *fiber.Ctx) error {
		return c.JSON(services.QuestTabs())
	})

	app.Post("/quests/reload", func(c *fiber.Ctx) error {
		n, err := quests.LoadQuests(c.UserContext())
		if err != nil {
			return failure(c, "failed to reload quests", err)
		}
		return c.JSON(fiber.Map{"loaded": n, "error": quests.Err()})
	})

	app.Get("/quests/:id", func(c *fiber.Ctx) error {
		q, ok := quests.ByID(c.Params("id"))
		if !ok {
			return errorJSON(c, fiber.StatusNotFound, "quest not found")
		}
		return c.JSON(q)
	})

	app.Get("/quests/:id/activity", func(c *fiber.Ctx) error {
		if d.Journal == nil {
			return errorJSON(c, fiber.StatusServiceUnavailable, "activity journal disabled")
		}
		id := c.Params("id")
		if _, ok := quests.ByID(id); !ok {
			return errorJSON(c, fiber.StatusNotFound, "quest not found")
		}
		entries, err := d.Journal.ForQuest(c.UserContext(), id, c.QueryInt("limit", 50))
		if err != nil {
			return failure(c, "failed to load quest activity", err)
		}
		return c.JSON(entries)
	})

	app.Get("/guilds/:id/quests", func(c *fiber.Ctx) error {
		return c.JSON(services.QuestItems(quests.ByGuild(c.Params("id"))))
	})

	// 🔐 Secured routes
	// Assigning, reviewing and paying out are for the guild's quest managers.
	managers := middleware.RequireRole(models.RoleOfficer, models.RoleCouncil, models.RoleFounder)

	secured.Post("/quests/:id/apply", func(c *fiber.Ctx) error {
		var req applyRequest
		if err := parseOptionalBody(c, &req); err != nil {
			return errorJSON(c, fiber.StatusBadRequest, "invalid request body")
		}
		name := req.MemberName
		if name == "" {
			name = middleware.MemberName(c)
		}
		q, err := quests.Apply(c.UserContext(), c.Params("id"), middleware.MemberID(c), name, req.Message)
		return transitionResult(c, q, err)
	})

	secured.Post("/quests/:id/assign", managers, func(c *fiber.Ctx) error {
		var req assignRequest
		if err := c.BodyParser(&req); err != nil {
			return errorJSON(c, fiber.StatusBadRequest, "invalid request body")
		}
		if strings.TrimSpace(req.MemberID) == "" {
			return errorJSON(c, fiber.StatusBadRequest, "memberID is required")
		}
		q, err := quests.Assign(c.UserContext(), c.Params("id"), req.MemberID, middleware.MemberID(c))
		return transitionResult(c, q, err)
	})

	secured.Post("/quests/:id/submit", func(c *fiber.Ctx) error {
		q, err := quests.Submit(c.UserContext(), c.Params("id"), middleware.MemberID(c))
		return transitionResult(c, q, err)
	})

	secured.Post("/quests/:id/verify", managers, func(c *fiber.Ctx) error {
		var req verifyRequest
		if err := c.BodyParser(&req); err != nil {
			return errorJSON(c, fiber.StatusBadRequest, "invalid request body")
		}
		if !req.Quality.Valid() {
			return errorJSON(c, fiber.StatusBadRequest, "quality must be one of excellent, good, satisfactory, needs_improvement")
		}
		q, err := quests.Verify(c.UserContext(), c.Params("id"), middleware.MemberID(c), req.Notes, req.Quality, req.Approved)
		return transitionResult(c, q, err)
	})

	secured.Post("/quests/:id/reward", managers, func(c *fiber.Ctx) error {
		var req rewardRequest
		if err := c.BodyParser(&req); err != nil {
			return errorJSON(c, fiber.StatusBadRequest, "invalid rewards: "+err.Error())
		}
		q, err := quests.Reward(c.UserContext(), c.Params("id"), req.Rewards, middleware.MemberID(c))
		return transitionResult(c, q, err)
	})
}

func parseTab(c *fiber.Ctx) (services.QuestTab, error) {
	tab := services.QuestTab(c.Query("tab", string(services.TabIngame)))
	if !tab.Valid() {
		return "", errors.New("invalid tab: " + string(tab))
	}
	return tab, nil
}

// parseOptionalBody accepts an empty body.
func parseOptionalBody(c *fiber.Ctx, out any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	return c.BodyParser(out)
}

func transitionResult(c *fiber.Ctx, q *models.Quest, err error) error {
	switch {
	case err == nil:
		return c.JSON(q)
	case errors.Is(err, services.ErrQuestNotFound):
		return errorJSON(c, fiber.StatusNotFound, "quest not found")
	case errors.Is(err, services.ErrInvalidTransition):
		return errorJSON(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, services.ErrInvalidRewards):
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	default:
		return failure(c, "quest transition failed", err)
	}
}
