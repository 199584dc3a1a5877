package models

import (
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Profile is the one-to-one satellite of a User, created and deleted with it.
// Skills is a set: membership is unique, insertion order carries no meaning.
// Projects is an ordered sequence. Both hold non-owning references resolved
// at query time.
//
// The avilableForHire wire name is misspelled on purpose: existing clients
// bind to it.
type Profile struct {
	ID     bson.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID bson.ObjectID `json:"userId" bson:"userId"`

	Bio                       string `json:"bio,omitempty" bson:"bio,omitempty"`
	JobTitle                  string `json:"jobTitle,omitempty" bson:"jobTitle,omitempty"`
	Employed                  bool   `json:"employed" bson:"employed"`
	AvailableForHire          bool   `json:"avilableForHire" bson:"avilableForHire"`
	AvailableForCollaboration bool   `json:"availableForCollaboration" bson:"availableForCollaboration"`

	Country string `json:"country,omitempty" bson:"country,omitempty"`
	State   string `json:"state,omitempty" bson:"state,omitempty"`
	City    string `json:"city,omitempty" bson:"city,omitempty"`

	Linkedin string `json:"linkedin,omitempty" bson:"linkedin,omitempty"`
	Github   string `json:"github,omitempty" bson:"github,omitempty"`
	Twitter  string `json:"twitter,omitempty" bson:"twitter,omitempty"`
	OtherVCS string `json:"otherVCS,omitempty" bson:"otherVCS,omitempty"`
	Website  string `json:"website,omitempty" bson:"website,omitempty"`

	CoverImage string          `json:"coverImage,omitempty" bson:"coverImage,omitempty"`
	Interests  []string        `json:"interests" bson:"interests"`
	Skills     []bson.ObjectID `json:"skills" bson:"skills"`
	Projects   []bson.ObjectID `json:"projects" bson:"projects"`

	// Version guards read-modify-write cycles on this document. Bumped on
	// every write, checked in the update filter.
	Version int64 `json:"-" bson:"version"`

	Metadata Metadata `json:"metadata" bson:"metadata"`
}

// HasSkill reports set membership by reference identity.
func (p *Profile) HasSkill(id bson.ObjectID) bool {
	for _, s := range p.Skills {
		if s == id {
			return true
		}
	}
	return false
}
