package service

import (
	"context"
	"errors"
	"sync"

	"github.com/RuvimboRue/DevsKonnekt/internal/apperror"
	"github.com/RuvimboRue/DevsKonnekt/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// writeAttempts bounds the read-modify-write retry when the version guard
// trips. The per-owner lock serializes writers inside this process; the
// version check catches writers on other replicas.
const writeAttempts = 3

// ProfileService mutates a profile on behalf of its owner. Skill mutations
// are set operations: union on add, filter on remove, always persisted as a
// full replacement of the skill set so retried requests cannot double-insert.
type ProfileService struct {
	profiles ProfileStore

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewProfileService(profiles ProfileStore) *ProfileService {
	return &ProfileService{
		profiles: profiles,
		locks:    make(map[string]*sync.Mutex),
	}
}

// AddSkills merges newSkillIDs into the owner's skill set. Applying the same
// ids twice, in any order, yields the same set.
func (s *ProfileService) AddSkills(ctx context.Context, ownerID bson.ObjectID, newSkillIDs []bson.ObjectID) (*models.Profile, error) {
	lock := s.lockFor(ownerID)
	lock.Lock()
	defer lock.Unlock()

	var lastErr error
	for attempt := 0; attempt < writeAttempts; attempt++ {
		profile, err := s.loadProfile(ctx, ownerID)
		if err != nil {
			return nil, err
		}

		merged := unionSkills(profile.Skills, newSkillIDs)
		if len(merged) == len(profile.Skills) {
			return profile, nil
		}

		updated, err := s.profiles.Update(ctx, ownerID, &models.ProfileUpdate{Skills: merged}, profile.Version)
		if err == nil {
			return updated, nil
		}
		if !errors.Is(err, apperror.ErrVersionConflict) {
			return nil, apperror.StorageUnavailable("profiles.update", err)
		}
		lastErr = err
	}
	return nil, lastErr
}

// RemoveSkill drops a single skill reference. Removing an id that is not
// present is a no-op, not an error.
func (s *ProfileService) RemoveSkill(ctx context.Context, ownerID bson.ObjectID, skillID bson.ObjectID) (*models.Profile, error) {
	lock := s.lockFor(ownerID)
	lock.Lock()
	defer lock.Unlock()

	var lastErr error
	for attempt := 0; attempt < writeAttempts; attempt++ {
		profile, err := s.loadProfile(ctx, ownerID)
		if err != nil {
			return nil, err
		}

		if !profile.HasSkill(skillID) {
			return profile, nil
		}
		filtered := make([]bson.ObjectID, 0, len(profile.Skills)-1)
		for _, id := range profile.Skills {
			if id != skillID {
				filtered = append(filtered, id)
			}
		}

		updated, err := s.profiles.Update(ctx, ownerID, &models.ProfileUpdate{Skills: filtered}, profile.Version)
		if err == nil {
			return updated, nil
		}
		if !errors.Is(err, apperror.ErrVersionConflict) {
			return nil, apperror.StorageUnavailable("profiles.update", err)
		}
		lastErr = err
	}
	return nil, lastErr
}

// UpdateProfile applies a partial field update. Skill ids in the request are
// additions and go through the same union as AddSkills.
func (s *ProfileService) UpdateProfile(ctx context.Context, ownerID bson.ObjectID, req *models.ProfileUpdateRequest) (*models.Profile, error) {
	newSkillIDs, err := parseSkillIDs(req.Skills)
	if err != nil {
		return nil, err
	}

	lock := s.lockFor(ownerID)
	lock.Lock()
	defer lock.Unlock()

	var lastErr error
	for attempt := 0; attempt < writeAttempts; attempt++ {
		profile, err := s.loadProfile(ctx, ownerID)
		if err != nil {
			return nil, err
		}

		update := &models.ProfileUpdate{
			Bio:                       req.Bio,
			JobTitle:                  req.JobTitle,
			Employed:                  req.Employed,
			AvailableForHire:          req.AvailableForHire,
			AvailableForCollaboration: req.AvailableForCollaboration,
			Country:                   req.Country,
			State:                     req.State,
			City:                      req.City,
			Linkedin:                  req.Linkedin,
			Github:                    req.Github,
			Twitter:                   req.Twitter,
			OtherVCS:                  req.OtherVCS,
			Website:                   req.Website,
			CoverImage:                req.CoverImage,
			Interests:                 req.Interests,
		}
		if newSkillIDs != nil {
			update.Skills = unionSkills(profile.Skills, newSkillIDs)
		}

		updated, err := s.profiles.Update(ctx, ownerID, update, profile.Version)
		if err == nil {
			return updated, nil
		}
		if !errors.Is(err, apperror.ErrVersionConflict) {
			return nil, apperror.StorageUnavailable("profiles.update", err)
		}
		lastErr = err
	}
	return nil, lastErr
}

func (s *ProfileService) loadProfile(ctx context.Context, ownerID bson.ObjectID) (*models.Profile, error) {
	profile, err := s.profiles.FindByUserID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		return nil, apperror.StorageUnavailable("profiles.findByUserId", err)
	}
	return profile, nil
}

func (s *ProfileService) lockFor(ownerID bson.ObjectID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := ownerID.Hex()
	lock, ok := s.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[key] = lock
	}
	return lock
}

// unionSkills appends the ids not already present, deduplicating additions
// against the set and against each other. Existing order is kept, which
// carries no meaning but keeps writes minimal.
func unionSkills(existing, additions []bson.ObjectID) []bson.ObjectID {
	seen := make(map[bson.ObjectID]struct{}, len(existing)+len(additions))
	merged := make([]bson.ObjectID, 0, len(existing)+len(additions))
	for _, id := range existing {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		merged = append(merged, id)
	}
	for _, id := range additions {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		merged = append(merged, id)
	}
	return merged
}

func parseSkillIDs(hexIDs []string) ([]bson.ObjectID, error) {
	if hexIDs == nil {
		return nil, nil
	}
	ids := make([]bson.ObjectID, 0, len(hexIDs))
	for _, hex := range hexIDs {
		id, err := bson.ObjectIDFromHex(hex)
		if err != nil {
			return nil, apperror.ValidationFailed("skills", "invalid skill id "+hex)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
