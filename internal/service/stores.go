package service

import (
	"context"

	"github.com/RuvimboRue/DevsKonnekt/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Store contracts consumed by the services. The Mongo repositories implement
// them in production; tests swap in in-memory fakes.

type UserStore interface {
	Insert(ctx context.Context, user *models.User) (*models.User, error)
	FindByID(ctx context.Context, id bson.ObjectID) (*models.User, error)
	FindByExternalID(ctx context.Context, externalID string) (*models.User, error)
	ApplyPatch(ctx context.Context, externalID string, patch *models.UserPatch) (*models.User, error)
	SetProfilePending(ctx context.Context, id bson.ObjectID, pending bool) error
	Delete(ctx context.Context, id bson.ObjectID) error
	Search(ctx context.Context, name string, page, pageSize int) ([]*models.User, int64, error)
}

type ProfileStore interface {
	Insert(ctx context.Context, profile *models.Profile) (*models.Profile, error)
	FindByUserID(ctx context.Context, userID bson.ObjectID) (*models.Profile, error)
	FindByUserIDs(ctx context.Context, userIDs []bson.ObjectID) ([]*models.Profile, error)
	Update(ctx context.Context, userID bson.ObjectID, update *models.ProfileUpdate, expectedVersion int64) (*models.Profile, error)
	DeleteByUserID(ctx context.Context, userID bson.ObjectID) error
}

type SkillStore interface {
	FindByIDs(ctx context.Context, ids []bson.ObjectID) ([]*models.Skill, error)
}

type ProjectStore interface {
	FindByIDs(ctx context.Context, ids []bson.ObjectID) ([]*models.Project, error)
}

// EventLedger tracks applied provider event ids for webhook deduplication.
type EventLedger interface {
	IsApplied(ctx context.Context, eventID string) (bool, error)
	MarkApplied(ctx context.Context, eventID string) error
}

// Publisher pushes profile lifecycle events onto the platform bus.
type Publisher interface {
	PublishProfileEvent(event *models.ProfileEvent) error
}
