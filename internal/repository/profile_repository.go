package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RuvimboRue/DevsKonnekt/internal/apperror"
	"github.com/RuvimboRue/DevsKonnekt/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type ProfileRepository struct {
	collection *mongo.Collection
}

func NewProfileRepository(db *mongo.Database) *ProfileRepository {
	return &ProfileRepository{
		collection: db.Collection("Profiles"),
	}
}

func (r *ProfileRepository) Insert(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	if profile.ID.IsZero() {
		profile.ID = bson.NewObjectID()
	}
	if profile.Skills == nil {
		profile.Skills = []bson.ObjectID{}
	}
	if profile.Interests == nil {
		profile.Interests = []string{}
	}
	if profile.Projects == nil {
		profile.Projects = []bson.ObjectID{}
	}
	if profile.Version == 0 {
		profile.Version = 1
	}

	currentTime := int(time.Now().Unix())
	if profile.Metadata.CreatedAt == 0 {
		profile.Metadata.CreatedAt = currentTime
	}
	profile.Metadata.UpdatedAt = currentTime

	_, err := r.collection.InsertOne(ctx, profile)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperror.Conflict("profile", profile.UserID.Hex())
		}
		return nil, fmt.Errorf("failed to insert profile: %w", err)
	}
	return profile, nil
}

func (r *ProfileRepository) FindByUserID(ctx context.Context, userID bson.ObjectID) (*models.Profile, error) {
	var profile models.Profile
	err := r.collection.FindOne(ctx, bson.M{"userId": userID}).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NotFound("profile", userID.Hex())
		}
		return nil, err
	}
	return &profile, nil
}

func (r *ProfileRepository) FindByUserIDs(ctx context.Context, userIDs []bson.ObjectID) ([]*models.Profile, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"userId": bson.M{"$in": userIDs}})
	if err != nil {
		return nil, fmt.Errorf("failed to find profiles: %w", err)
	}
	defer cursor.Close(ctx)

	var profiles []*models.Profile
	if err = cursor.All(ctx, &profiles); err != nil {
		return nil, fmt.Errorf("failed to decode profiles: %w", err)
	}

	return profiles, nil
}

// Update applies a partial update guarded by the document version. The filter
// matches on the version read before the modify step; a concurrent writer
// bumps it and the update matches nothing, which surfaces as a version
// conflict for the caller to retry.
func (r *ProfileRepository) Update(ctx context.Context, userID bson.ObjectID, update *models.ProfileUpdate, expectedVersion int64) (*models.Profile, error) {
	set := bson.M{"metadata.updatedAt": int(time.Now().Unix())}
	setString := func(key string, value *string) {
		if value != nil {
			set[key] = *value
		}
	}
	setBool := func(key string, value *bool) {
		if value != nil {
			set[key] = *value
		}
	}

	setString("bio", update.Bio)
	setString("jobTitle", update.JobTitle)
	setBool("employed", update.Employed)
	setBool("avilableForHire", update.AvailableForHire)
	setBool("availableForCollaboration", update.AvailableForCollaboration)
	setString("country", update.Country)
	setString("state", update.State)
	setString("city", update.City)
	setString("linkedin", update.Linkedin)
	setString("github", update.Github)
	setString("twitter", update.Twitter)
	setString("otherVCS", update.OtherVCS)
	setString("website", update.Website)
	setString("coverImage", update.CoverImage)
	if update.Interests != nil {
		set["interests"] = update.Interests
	}
	if update.Skills != nil {
		set["skills"] = update.Skills
	}

	filter := bson.M{"userId": userID, "version": expectedVersion}
	change := bson.M{
		"$set": set,
		"$inc": bson.M{"version": 1},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Profile
	err := r.collection.FindOneAndUpdate(ctx, filter, change, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.VersionConflict("profile", userID.Hex())
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return &updated, nil
}

func (r *ProfileRepository) DeleteByUserID(ctx context.Context, userID bson.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"userId": userID})
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	if result.DeletedCount == 0 {
		return apperror.NotFound("profile", userID.Hex())
	}
	return nil
}

func (r *ProfileRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "metadata.createdAt", Value: -1}},
		},
	}

	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create profile indexes: %w", err)
	}
	return nil
}
