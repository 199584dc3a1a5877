package models

import (
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Skill and Project live in a catalog owned outside this service. Profiles
// hold weak references to them; nothing here cascades into the catalog.

type Skill struct {
	ID       bson.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name     string        `json:"name" bson:"name"`
	Category string        `json:"category,omitempty" bson:"category,omitempty"`
}

type Project struct {
	ID          bson.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Title       string        `json:"title" bson:"title"`
	Description string        `json:"description,omitempty" bson:"description,omitempty"`
	RepoURL     string        `json:"repoUrl,omitempty" bson:"repoUrl,omitempty"`
}
