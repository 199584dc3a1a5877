package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"
)

const (
	// Profile permissions
	ReadProfilePermission   = "read:profile"
	UpdateProfilePermission = "update:profile"
	DeleteProfilePermission = "delete:profile"

	// Admin permissions
	AdminPermission   = "admin"
	ManagerPermission = "manager"
)

// RequireOwner gates a profile mutation to the authenticated owner. The API
// gateway authenticates the caller and injects X-User-ID / X-User-Permissions;
// this service only compares the stable id against the route's owner.
func RequireOwner(param string) fiber.Handler {
	return func(c fiber.Ctx) error {
		currentUserID := c.Get("X-User-ID")
		if currentUserID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "User authentication required",
			})
		}

		permissions := c.Get("X-User-Permissions")
		hasElevatedPermissions := strings.Contains(permissions, AdminPermission) ||
			strings.Contains(permissions, ManagerPermission)

		if !hasElevatedPermissions && c.Params(param) != currentUserID {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Access denied",
			})
		}

		return c.Next()
	}
}
