package handlers

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/RuvimboRue/DevsKonnekt/internal/apperror"
	"github.com/RuvimboRue/DevsKonnekt/internal/models"
	"github.com/RuvimboRue/DevsKonnekt/internal/service"

	"github.com/gofiber/fiber/v3"
)

// WebhookHandler terminates the identity provider's webhook deliveries. Any
// non-2xx acknowledgement triggers the provider's retry-with-backoff, so the
// status codes here are the retry policy.
type WebhookHandler struct {
	ingest *service.IngestService
}

func NewWebhookHandler(ingest *service.IngestService) *WebhookHandler {
	return &WebhookHandler{
		ingest: ingest,
	}
}

func (h *WebhookHandler) RegisterRoutes(app *fiber.App) {
	app.Post("/webhooks/clerk", h.HandleLifecycleEvent)
}

func (h *WebhookHandler) HandleLifecycleEvent(c fiber.Ctx) error {
	var evt models.LifecycleEvent
	if err := c.Bind().Body(&evt); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	// The delivery id lives in the svix-id header; a body event_id is the
	// fallback for providers that inline it.
	if id := c.Get("svix-id"); id != "" {
		evt.EventID = id
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	outcome, err := h.ingest.Ingest(ctx, &evt)
	if err != nil {
		log.Printf("Failed to ingest event %s (%s): %v", evt.EventID, evt.Type, err)

		if errors.Is(err, apperror.ErrNotFound) {
			// Out-of-order delivery: the created event has not landed yet.
			// The provider redelivers on any non-2xx.
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Referenced user not found",
			})
		}
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Temporary failure, please retry",
		})
	}

	if outcome.Status == service.OutcomeRejected {
		log.Printf("Rejected event %s: %s", evt.EventID, outcome.Reason)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": outcome.Reason,
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": fiber.Map{
			"outcome": outcome,
		},
	})
}
