package handlers

import (
	"context"

	"github.com/RuvimboRue/DevsKonnekt/internal/apperror"
	"github.com/RuvimboRue/DevsKonnekt/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Minimal in-memory stores for driving the handlers through real service
// instances. Handler tests are single-threaded, so no locking.

type memUserStore struct {
	users map[bson.ObjectID]*models.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[bson.ObjectID]*models.User)}
}

func (s *memUserStore) Insert(_ context.Context, user *models.User) (*models.User, error) {
	for _, u := range s.users {
		if u.ExternalID == user.ExternalID {
			return nil, apperror.Conflict("user", user.ExternalID)
		}
	}
	if user.ID.IsZero() {
		user.ID = bson.NewObjectID()
	}
	s.users[user.ID] = user
	return user, nil
}

func (s *memUserStore) FindByID(_ context.Context, id bson.ObjectID) (*models.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, apperror.NotFound("user", id.Hex())
}

func (s *memUserStore) FindByExternalID(_ context.Context, externalID string) (*models.User, error) {
	for _, u := range s.users {
		if u.ExternalID == externalID {
			return u, nil
		}
	}
	return nil, apperror.NotFound("user", externalID)
}

func (s *memUserStore) ApplyPatch(_ context.Context, externalID string, patch *models.UserPatch) (*models.User, error) {
	for _, u := range s.users {
		if u.ExternalID == externalID {
			if patch.FirstName != nil {
				u.FirstName = *patch.FirstName
			}
			if patch.LastName != nil {
				u.LastName = *patch.LastName
			}
			if patch.Username != nil {
				u.Username = *patch.Username
			}
			if patch.Emails != nil {
				u.Emails = patch.Emails
			}
			return u, nil
		}
	}
	return nil, apperror.NotFound("user", externalID)
}

func (s *memUserStore) SetProfilePending(_ context.Context, id bson.ObjectID, pending bool) error {
	u, ok := s.users[id]
	if !ok {
		return apperror.NotFound("user", id.Hex())
	}
	u.ProfilePending = pending
	return nil
}

func (s *memUserStore) Delete(_ context.Context, id bson.ObjectID) error {
	if _, ok := s.users[id]; !ok {
		return apperror.NotFound("user", id.Hex())
	}
	delete(s.users, id)
	return nil
}

func (s *memUserStore) Search(_ context.Context, _ string, _, _ int) ([]*models.User, int64, error) {
	result := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		result = append(result, u)
	}
	return result, int64(len(result)), nil
}

type memProfileStore struct {
	profiles map[bson.ObjectID]*models.Profile
}

func newMemProfileStore() *memProfileStore {
	return &memProfileStore{profiles: make(map[bson.ObjectID]*models.Profile)}
}

func (s *memProfileStore) Insert(_ context.Context, profile *models.Profile) (*models.Profile, error) {
	if _, ok := s.profiles[profile.UserID]; ok {
		return nil, apperror.Conflict("profile", profile.UserID.Hex())
	}
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
	s.profiles[profile.UserID] = profile
	return profile, nil
}

func (s *memProfileStore) FindByUserID(_ context.Context, userID bson.ObjectID) (*models.Profile, error) {
	if p, ok := s.profiles[userID]; ok {
		copied := *p
		copied.Skills = append([]bson.ObjectID(nil), p.Skills...)
		return &copied, nil
	}
	return nil, apperror.NotFound("profile", userID.Hex())
}

func (s *memProfileStore) FindByUserIDs(_ context.Context, userIDs []bson.ObjectID) ([]*models.Profile, error) {
	var result []*models.Profile
	for _, id := range userIDs {
		if p, ok := s.profiles[id]; ok {
			result = append(result, p)
		}
	}
	return result, nil
}

func (s *memProfileStore) Update(_ context.Context, userID bson.ObjectID, update *models.ProfileUpdate, expectedVersion int64) (*models.Profile, error) {
	p, ok := s.profiles[userID]
	if !ok || p.Version != expectedVersion {
		return nil, apperror.VersionConflict("profile", userID.Hex())
	}
	if update.Bio != nil {
		p.Bio = *update.Bio
	}
	if update.JobTitle != nil {
		p.JobTitle = *update.JobTitle
	}
	if update.Employed != nil {
		p.Employed = *update.Employed
	}
	if update.AvailableForHire != nil {
		p.AvailableForHire = *update.AvailableForHire
	}
	if update.AvailableForCollaboration != nil {
		p.AvailableForCollaboration = *update.AvailableForCollaboration
	}
	if update.Country != nil {
		p.Country = *update.Country
	}
	if update.State != nil {
		p.State = *update.State
	}
	if update.City != nil {
		p.City = *update.City
	}
	if update.Linkedin != nil {
		p.Linkedin = *update.Linkedin
	}
	if update.Github != nil {
		p.Github = *update.Github
	}
	if update.Twitter != nil {
		p.Twitter = *update.Twitter
	}
	if update.OtherVCS != nil {
		p.OtherVCS = *update.OtherVCS
	}
	if update.Website != nil {
		p.Website = *update.Website
	}
	if update.CoverImage != nil {
		p.CoverImage = *update.CoverImage
	}
	if update.Interests != nil {
		p.Interests = update.Interests
	}
	if update.Skills != nil {
		p.Skills = append([]bson.ObjectID(nil), update.Skills...)
	}
	p.Version++
	copied := *p
	copied.Skills = append([]bson.ObjectID(nil), p.Skills...)
	return &copied, nil
}

func (s *memProfileStore) DeleteByUserID(_ context.Context, userID bson.ObjectID) error {
	if _, ok := s.profiles[userID]; !ok {
		return apperror.NotFound("profile", userID.Hex())
	}
	delete(s.profiles, userID)
	return nil
}

type memSkillStore struct {
	skills map[bson.ObjectID]*models.Skill
}

func (s *memSkillStore) FindByIDs(_ context.Context, ids []bson.ObjectID) ([]*models.Skill, error) {
	result := []*models.Skill{}
	for _, id := range ids {
		if sk, ok := s.skills[id]; ok {
			result = append(result, sk)
		}
	}
	return result, nil
}

type memProjectStore struct {
	projects map[bson.ObjectID]*models.Project
}

func (s *memProjectStore) FindByIDs(_ context.Context, ids []bson.ObjectID) ([]*models.Project, error) {
	result := []*models.Project{}
	for _, id := range ids {
		if p, ok := s.projects[id]; ok {
			result = append(result, p)
		}
	}
	return result, nil
}
