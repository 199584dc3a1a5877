package handlers

import (
	"context"
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/RuvimboRue/DevsKonnekt/internal/apperror"
	"github.com/RuvimboRue/DevsKonnekt/internal/middleware"
	"github.com/RuvimboRue/DevsKonnekt/internal/models"
	"github.com/RuvimboRue/DevsKonnekt/internal/service"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// ProfileHandler is the surface the presentation layer calls. Nothing else
// may touch the document store.
type ProfileHandler struct {
	profileService *service.ProfileService
	queryService   *service.QueryService
}

func NewProfileHandler(profileService *service.ProfileService, queryService *service.QueryService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		queryService:   queryService,
	}
}

func (h *ProfileHandler) RegisterRoutes(app *fiber.App) {
	app.Get("/health", h.HealthCheck)

	profiles := app.Group("/profiles")

	// Read side: profile by owner and the user directory.
	profiles.Get("/", h.SearchDirectory)
	profiles.Get("/user/:userId", h.GetProfileByOwner)

	// Owner mutations: partial update (skill ids in the body are additions)
	// and single-skill removal.
	profiles.Put("/user/:userId", h.UpdateProfile, middleware.RequireOwner("userId"))
	profiles.Delete("/user/:userId/skills/:skillId", h.RemoveSkill, middleware.RequireOwner("userId"))
}

func (h *ProfileHandler) GetProfileByOwner(c fiber.Ctx) error {
	ownerID, err := bson.ObjectIDFromHex(c.Params("userId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid user ID format",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	profile, err := h.queryService.GetByOwner(ctx, ownerID)
	if err != nil {
		log.Printf("Failed to get profile for user %s: %v", ownerID.Hex(), err)
		return h.errorResponse(c, err, "Failed to retrieve profile")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": profile,
	})
}

func (h *ProfileHandler) SearchDirectory(c fiber.Ctx) error {
	query := &models.DirectoryQuery{
		Name:     c.Query("name"),
		Page:     1,
		PageSize: 20,
	}

	if page, err := strconv.Atoi(c.Query("page", "1")); err == nil && page > 0 {
		query.Page = page
	}
	if pageSize, err := strconv.Atoi(c.Query("pageSize", "20")); err == nil && pageSize > 0 && pageSize <= 100 {
		query.PageSize = pageSize
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := h.queryService.SearchDirectory(ctx, query)
	if err != nil {
		log.Printf("Failed to search directory: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to search users",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": result,
	})
}

func (h *ProfileHandler) UpdateProfile(c fiber.Ctx) error {
	ownerID, err := bson.ObjectIDFromHex(c.Params("userId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid user ID format",
		})
	}

	var req models.ProfileUpdateRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	profile, err := h.profileService.UpdateProfile(ctx, ownerID, &req)
	if err != nil {
		log.Printf("Failed to update profile for user %s: %v", ownerID.Hex(), err)
		return h.errorResponse(c, err, "Failed to update profile")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Profile updated successfully",
		"data": fiber.Map{
			"profile": profile,
		},
	})
}

func (h *ProfileHandler) RemoveSkill(c fiber.Ctx) error {
	ownerID, err := bson.ObjectIDFromHex(c.Params("userId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid user ID format",
		})
	}

	skillID, err := bson.ObjectIDFromHex(c.Params("skillId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid skill ID format",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	profile, err := h.profileService.RemoveSkill(ctx, ownerID, skillID)
	if err != nil {
		log.Printf("Failed to remove skill %s for user %s: %v", skillID.Hex(), ownerID.Hex(), err)
		return h.errorResponse(c, err, "Failed to remove skill")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Skill removed successfully",
		"data": fiber.Map{
			"profile": profile,
		},
	})
}

func (h *ProfileHandler) HealthCheck(c fiber.Ctx) error {
	return c.Status(fiber.StatusOK).SendString("DevsKonnekt profile service is healthy")
}

// errorResponse maps the error taxonomy onto status codes without leaking
// storage internals.
func (h *ProfileHandler) errorResponse(c fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Profile not found",
		})
	case errors.Is(err, apperror.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	case errors.Is(err, apperror.ErrStorageUnavailable), errors.Is(err, apperror.ErrVersionConflict):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Temporary failure, please retry",
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fallback,
		})
	}
}
