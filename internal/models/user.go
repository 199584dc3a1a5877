package models

import (
	"go.mongodb.org/mongo-driver/v2/bson"
)

type Metadata struct {
	CreatedAt int `json:"createdAt" bson:"createdAt"`
	UpdatedAt int `json:"updatedAt" bson:"updatedAt"`
}

// User is the identity root. ExternalID is the identity provider's id and is
// immutable once set; the owning Profile points back at User via its userId
// field, the User holds no profile reference.
type User struct {
	ID         bson.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	ExternalID string        `json:"externalId" bson:"externalId"`
	FirstName  string        `json:"firstName,omitempty" bson:"firstName,omitempty"`
	LastName   string        `json:"lastName,omitempty" bson:"lastName,omitempty"`
	Username   string        `json:"username,omitempty" bson:"username,omitempty"`
	Emails     []string      `json:"emails,omitempty" bson:"emails,omitempty"`

	// ProfilePending marks a user whose profile creation failed after the
	// user was durably created. Cleared by out-of-band reconciliation.
	ProfilePending bool `json:"-" bson:"profilePending,omitempty"`

	Metadata Metadata `json:"metadata" bson:"metadata"`
}

// UserPatch carries the fields of an account-updated event. Nil means the
// field was absent from the event and the stored value is left untouched.
type UserPatch struct {
	FirstName *string
	LastName  *string
	Username  *string
	Emails    []string
}

func (p *UserPatch) IsEmpty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Username == nil && p.Emails == nil
}
