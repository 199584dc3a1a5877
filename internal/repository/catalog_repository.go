package repository

import (
	"context"
	"fmt"

	"github.com/RuvimboRue/DevsKonnekt/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// Skill and Project collections are owned by the catalog service; this side
// only resolves references for populated reads.

type SkillRepository struct {
	collection *mongo.Collection
}

func NewSkillRepository(db *mongo.Database) *SkillRepository {
	return &SkillRepository{
		collection: db.Collection("Skills"),
	}
}

func (r *SkillRepository) FindByIDs(ctx context.Context, ids []bson.ObjectID) ([]*models.Skill, error) {
	if len(ids) == 0 {
		return []*models.Skill{}, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to find skills: %w", err)
	}
	defer cursor.Close(ctx)

	var skills []*models.Skill
	if err = cursor.All(ctx, &skills); err != nil {
		return nil, fmt.Errorf("failed to decode skills: %w", err)
	}
	return skills, nil
}

type ProjectRepository struct {
	collection *mongo.Collection
}

func NewProjectRepository(db *mongo.Database) *ProjectRepository {
	return &ProjectRepository{
		collection: db.Collection("Projects"),
	}
}

func (r *ProjectRepository) FindByIDs(ctx context.Context, ids []bson.ObjectID) ([]*models.Project, error) {
	if len(ids) == 0 {
		return []*models.Project{}, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to find projects: %w", err)
	}
	defer cursor.Close(ctx)

	var projects []*models.Project
	if err = cursor.All(ctx, &projects); err != nil {
		return nil, fmt.Errorf("failed to decode projects: %w", err)
	}
	return projects, nil
}
