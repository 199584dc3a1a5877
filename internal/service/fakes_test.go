package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/RuvimboRue/DevsKonnekt/internal/apperror"
	"github.com/RuvimboRue/DevsKonnekt/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

var errFakeStore = errors.New("store offline")

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// In-memory store fakes. They mirror the Mongo repositories' observable
// behavior, including the version guard on profile updates, so the services
// under test cannot tell the difference.

type fakeUserStore struct {
	mu      sync.Mutex
	users   map[bson.ObjectID]*models.User
	order   []bson.ObjectID
	failing bool
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		users: make(map[bson.ObjectID]*models.User),
	}
}

func (s *fakeUserStore) Insert(_ context.Context, user *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return nil, errFakeStore
	}
	for _, u := range s.users {
		if u.ExternalID == user.ExternalID {
			return nil, apperror.Conflict("user", user.ExternalID)
		}
	}
	if user.ID.IsZero() {
		user.ID = bson.NewObjectID()
	}
	stored := *user
	s.users[user.ID] = &stored
	s.order = append(s.order, user.ID)
	return user, nil
}

func (s *fakeUserStore) FindByID(_ context.Context, id bson.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return nil, errFakeStore
	}
	user, ok := s.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id.Hex())
	}
	result := *user
	return &result, nil
}

func (s *fakeUserStore) FindByExternalID(_ context.Context, externalID string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return nil, errFakeStore
	}
	for _, u := range s.users {
		if u.ExternalID == externalID {
			result := *u
			return &result, nil
		}
	}
	return nil, apperror.NotFound("user", externalID)
}

func (s *fakeUserStore) ApplyPatch(_ context.Context, externalID string, patch *models.UserPatch) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return nil, errFakeStore
	}
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
			result := *u
			return &result, nil
		}
	}
	return nil, apperror.NotFound("user", externalID)
}

func (s *fakeUserStore) SetProfilePending(_ context.Context, id bson.ObjectID, pending bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return apperror.NotFound("user", id.Hex())
	}
	user.ProfilePending = pending
	return nil
}

func (s *fakeUserStore) Delete(_ context.Context, id bson.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return errFakeStore
	}
	if _, ok := s.users[id]; !ok {
		return apperror.NotFound("user", id.Hex())
	}
	delete(s.users, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *fakeUserStore) Search(_ context.Context, name string, page, pageSize int) ([]*models.User, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return nil, 0, errFakeStore
	}
	var matched []*models.User
	for _, id := range s.order {
		u := s.users[id]
		if name == "" || containsFold(u.FirstName, name) || containsFold(u.LastName, name) || containsFold(u.Username, name) {
			result := *u
			matched = append(matched, &result)
		}
	}
	total := int64(len(matched))
	start := (page - 1) * pageSize
	if start >= len(matched) {
		return []*models.User{}, total, nil
	}
	end := start + pageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

type fakeProfileStore struct {
	mu       sync.Mutex
	profiles map[bson.ObjectID]*models.Profile
	// insertFailures makes the next n inserts fail, for retry tests.
	insertFailures int
	failing        bool
}

func newFakeProfileStore() *fakeProfileStore {
	return &fakeProfileStore{
		profiles: make(map[bson.ObjectID]*models.Profile),
	}
}

func (s *fakeProfileStore) Insert(_ context.Context, profile *models.Profile) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertFailures > 0 {
		s.insertFailures--
		return nil, errFakeStore
	}
	if s.failing {
		return nil, errFakeStore
	}
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
	stored := *profile
	s.profiles[profile.UserID] = &stored
	return profile, nil
}

func (s *fakeProfileStore) FindByUserID(_ context.Context, userID bson.ObjectID) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return nil, errFakeStore
	}
	profile, ok := s.profiles[userID]
	if !ok {
		return nil, apperror.NotFound("profile", userID.Hex())
	}
	result := *profile
	result.Skills = append([]bson.ObjectID(nil), profile.Skills...)
	return &result, nil
}

func (s *fakeProfileStore) FindByUserIDs(_ context.Context, userIDs []bson.ObjectID) ([]*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []*models.Profile
	for _, id := range userIDs {
		if p, ok := s.profiles[id]; ok {
			copied := *p
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (s *fakeProfileStore) Update(_ context.Context, userID bson.ObjectID, update *models.ProfileUpdate, expectedVersion int64) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return nil, errFakeStore
	}
	profile, ok := s.profiles[userID]
	if !ok || profile.Version != expectedVersion {
		return nil, apperror.VersionConflict("profile", userID.Hex())
	}
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setBool := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	setString(&profile.Bio, update.Bio)
	setString(&profile.JobTitle, update.JobTitle)
	setBool(&profile.Employed, update.Employed)
	setBool(&profile.AvailableForHire, update.AvailableForHire)
	setBool(&profile.AvailableForCollaboration, update.AvailableForCollaboration)
	setString(&profile.Country, update.Country)
	setString(&profile.State, update.State)
	setString(&profile.City, update.City)
	setString(&profile.Linkedin, update.Linkedin)
	setString(&profile.Github, update.Github)
	setString(&profile.Twitter, update.Twitter)
	setString(&profile.OtherVCS, update.OtherVCS)
	setString(&profile.Website, update.Website)
	setString(&profile.CoverImage, update.CoverImage)
	if update.Interests != nil {
		profile.Interests = update.Interests
	}
	if update.Skills != nil {
		profile.Skills = append([]bson.ObjectID(nil), update.Skills...)
	}
	profile.Version++
	result := *profile
	result.Skills = append([]bson.ObjectID(nil), profile.Skills...)
	return &result, nil
}

func (s *fakeProfileStore) DeleteByUserID(_ context.Context, userID bson.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return errFakeStore
	}
	if _, ok := s.profiles[userID]; !ok {
		return apperror.NotFound("profile", userID.Hex())
	}
	delete(s.profiles, userID)
	return nil
}

type fakeSkillStore struct {
	skills map[bson.ObjectID]*models.Skill
}

func newFakeSkillStore() *fakeSkillStore {
	return &fakeSkillStore{skills: make(map[bson.ObjectID]*models.Skill)}
}

func (s *fakeSkillStore) FindByIDs(_ context.Context, ids []bson.ObjectID) ([]*models.Skill, error) {
	result := []*models.Skill{}
	for _, id := range ids {
		if sk, ok := s.skills[id]; ok {
			result = append(result, sk)
		}
	}
	return result, nil
}

type fakeProjectStore struct {
	projects map[bson.ObjectID]*models.Project
}

func newFakeProjectStore() *fakeProjectStore {
	return &fakeProjectStore{projects: make(map[bson.ObjectID]*models.Project)}
}

func (s *fakeProjectStore) FindByIDs(_ context.Context, ids []bson.ObjectID) ([]*models.Project, error) {
	// Deliberately unordered, like a $in query.
	result := []*models.Project{}
	for i := len(ids) - 1; i >= 0; i-- {
		if p, ok := s.projects[ids[i]]; ok {
			result = append(result, p)
		}
	}
	return result, nil
}

type fakeLedger struct {
	mu      sync.Mutex
	applied map[string]struct{}
	// failMark makes MarkApplied fail while IsApplied keeps working.
	failMark bool
	failing  bool
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{applied: make(map[string]struct{})}
}

func (l *fakeLedger) IsApplied(_ context.Context, eventID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failing {
		return false, errFakeStore
	}
	_, ok := l.applied[eventID]
	return ok, nil
}

func (l *fakeLedger) MarkApplied(_ context.Context, eventID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failing || l.failMark {
		return errFakeStore
	}
	l.applied[eventID] = struct{}{}
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []models.ProfileEvent
}

func (p *fakePublisher) PublishProfileEvent(event *models.ProfileEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, *event)
	return nil
}
