// handlers/activity_stream.go
package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"guildhall/services"
)

const streamPollInterval = 2 * time.Second

// streamQuestActivity pushes new journal entries for a quest as server-sent events.
func streamQuestActivity(journal *services.ActivityService, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if journal == nil {
			return errorJSON(c, fiber.StatusServiceUnavailable, "activity journal disabled")
		}
		questID := c.Params("id")

		c.Set("Content-Type", "text/event-stream")
		c.Set("Cache-Control", "no-cache")
		c.Set("Connection", "keep-alive")
		c.Set("X-Accel-Buffering", "no")

		done := c.Context().Done()
		c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			ticker := time.NewTicker(streamPollInterval)
			defer ticker.Stop()

			cursor := journal.Follow(questID, time.Now())

			// Initial keepalive (comment event)
			_, _ = w.WriteString(":\n\n")
			if err := w.Flush(); err != nil {
				return
			}

			for {
				select {
				case <-ticker.C:
					entries, err := cursor.Next(ctx)
					if err != nil {
						logger.Error("[SSE] activity query failed", zap.String("quest", questID), zap.Error(err))
						continue
					}
					if len(entries) == 0 {
						// Keepalive also detects a closed client.
						_, _ = w.WriteString(":\n\n")
						if err := w.Flush(); err != nil {
							return
						}
						continue
					}

					for _, e := range entries {
						payload, _ := json.Marshal(e)
						fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Action, payload)
					}
					if err := w.Flush(); err != nil {
						// Client disconnected
						return
					}
				case <-done:
					return
				}
			}
		})
		return nil
	}
}
