package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/RuvimboRue/DevsKonnekt/internal/apperror"
	"github.com/RuvimboRue/DevsKonnekt/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type UserRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		collection: db.Collection("Users"),
	}
}

func (r *UserRepository) Insert(ctx context.Context, user *models.User) (*models.User, error) {
	if user.ID.IsZero() {
		user.ID = bson.NewObjectID()
	}

	currentTime := int(time.Now().Unix())
	if user.Metadata.CreatedAt == 0 {
		user.Metadata.CreatedAt = currentTime
	}
	user.Metadata.UpdatedAt = currentTime

	_, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperror.Conflict("user", user.ExternalID)
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	return user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id bson.ObjectID) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NotFound("user", id.Hex())
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"externalId": externalID}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NotFound("user", externalID)
		}
		return nil, err
	}
	return &user, nil
}

// ApplyPatch sets only the fields the patch carries. Absent fields stay as
// stored.
func (r *UserRepository) ApplyPatch(ctx context.Context, externalID string, patch *models.UserPatch) (*models.User, error) {
	set := bson.M{"metadata.updatedAt": int(time.Now().Unix())}
	if patch.FirstName != nil {
		set["firstName"] = *patch.FirstName
	}
	if patch.LastName != nil {
		set["lastName"] = *patch.LastName
	}
	if patch.Username != nil {
		set["username"] = *patch.Username
	}
	if patch.Emails != nil {
		set["emails"] = patch.Emails
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.User
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"externalId": externalID}, bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NotFound("user", externalID)
		}
		return nil, fmt.Errorf("failed to patch user: %w", err)
	}
	return &updated, nil
}

func (r *UserRepository) SetProfilePending(ctx context.Context, id bson.ObjectID, pending bool) error {
	update := bson.M{
		"$set": bson.M{
			"profilePending":     pending,
			"metadata.updatedAt": int(time.Now().Unix()),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to set profilePending: %w", err)
	}
	if result.MatchedCount == 0 {
		return apperror.NotFound("user", id.Hex())
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id bson.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if result.DeletedCount == 0 {
		return apperror.NotFound("user", id.Hex())
	}
	return nil
}

// Search matches name case-insensitively as a literal substring of first
// name, last name or username. An empty name matches everyone. Results are
// ordered by creation time with _id as tiebreak so pages stay stable across
// calls.
func (r *UserRepository) Search(ctx context.Context, name string, page, pageSize int) ([]*models.User, int64, error) {
	filter := bson.M{}
	if name != "" {
		pattern := regexp.QuoteMeta(name)
		filter["$or"] = []bson.M{
			{"firstName": bson.M{"$regex": pattern, "$options": "i"}},
			{"lastName": bson.M{"$regex": pattern, "$options": "i"}},
			{"username": bson.M{"$regex": pattern, "$options": "i"}},
		}
	}

	totalCount, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	opts := options.Find()
	opts.SetSort(bson.D{{Key: "metadata.createdAt", Value: 1}, {Key: "_id", Value: 1}})
	opts.SetSkip(int64((page - 1) * pageSize))
	opts.SetLimit(int64(pageSize))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []*models.User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, 0, fmt.Errorf("failed to decode users: %w", err)
	}

	return users, totalCount, nil
}

func (r *UserRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "externalId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{
			Keys: bson.D{{Key: "firstName", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "lastName", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "metadata.createdAt", Value: 1}},
		},
	}

	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}
	return nil
}
