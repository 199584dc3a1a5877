package models

import (
	"go.mongodb.org/mongo-driver/v2/bson"
)

// ProfileUpdateRequest is the owner-facing partial update. Nil pointer means
// leave the stored field alone. Skills carries additions only; removals go
// through the dedicated skill-removal endpoint.
type ProfileUpdateRequest struct {
	Bio                       *string  `json:"bio,omitempty"`
	JobTitle                  *string  `json:"jobTitle,omitempty"`
	Employed                  *bool    `json:"employed,omitempty"`
	AvailableForHire          *bool    `json:"avilableForHire,omitempty"`
	AvailableForCollaboration *bool    `json:"availableForCollaboration,omitempty"`
	Country                   *string  `json:"country,omitempty"`
	State                     *string  `json:"state,omitempty"`
	City                      *string  `json:"city,omitempty"`
	Linkedin                  *string  `json:"linkedin,omitempty"`
	Github                    *string  `json:"github,omitempty"`
	Twitter                   *string  `json:"twitter,omitempty"`
	OtherVCS                  *string  `json:"otherVCS,omitempty"`
	Website                   *string  `json:"website,omitempty"`
	CoverImage                *string  `json:"coverImage,omitempty"`
	Interests                 []string `json:"interests,omitempty"`
	Skills                    []string `json:"skills,omitempty"`
}

// ProfileUpdate is the store-level patch a request reduces to. Skills, when
// non-nil, replaces the full set (the merge engine computes the union before
// the write, never the store).
type ProfileUpdate struct {
	Bio                       *string
	JobTitle                  *string
	Employed                  *bool
	AvailableForHire          *bool
	AvailableForCollaboration *bool
	Country                   *string
	State                     *string
	City                      *string
	Linkedin                  *string
	Github                    *string
	Twitter                   *string
	OtherVCS                  *string
	Website                   *string
	CoverImage                *string
	Interests                 []string
	Skills                    []bson.ObjectID
}

// PopulatedProfile is the read-side join of a profile with its owning user
// and resolved skill/project references.
type PopulatedProfile struct {
	Profile  *Profile   `json:"profile"`
	User     *User      `json:"user,omitempty"`
	Skills   []*Skill   `json:"skills"`
	Projects []*Project `json:"projects"`
}

type DirectoryQuery struct {
	Name     string `query:"name"`
	Page     int    `query:"page"`
	PageSize int    `query:"pageSize"`
}

type DirectoryEntry struct {
	User    *User    `json:"user"`
	Profile *Profile `json:"profile,omitempty"`
}

type DirectoryResult struct {
	Entries     []*DirectoryEntry `json:"users"`
	TotalCount  int64             `json:"totalCount"`
	PageCount   int               `json:"pageCount"`
	CurrentPage int               `json:"currentPage"`
}
