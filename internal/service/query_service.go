package service

import (
	"context"
	"errors"
	"log"

	"github.com/RuvimboRue/DevsKonnekt/internal/apperror"
	"github.com/RuvimboRue/DevsKonnekt/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// QueryService is the read side: populated profile lookups and the user
// directory. Reference resolution happens here, explicitly, so the data
// model stays free of hidden I/O.
type QueryService struct {
	users    UserStore
	profiles ProfileStore
	skills   SkillStore
	projects ProjectStore
}

func NewQueryService(users UserStore, profiles ProfileStore, skills SkillStore, projects ProjectStore) *QueryService {
	return &QueryService{
		users:    users,
		profiles: profiles,
		skills:   skills,
		projects: projects,
	}
}

// GetByOwner returns the owner's profile with the owning user and the
// referenced skill and project entities resolved. Project order follows the
// stored sequence; skills are a set and come back in no particular order.
func (s *QueryService) GetByOwner(ctx context.Context, ownerID bson.ObjectID) (*models.PopulatedProfile, error) {
	profile, err := s.profiles.FindByUserID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		return nil, apperror.StorageUnavailable("profiles.findByUserId", err)
	}

	populated := &models.PopulatedProfile{
		Profile:  profile,
		Skills:   []*models.Skill{},
		Projects: []*models.Project{},
	}

	user, err := s.users.FindByID(ctx, profile.UserID)
	if err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.StorageUnavailable("users.findById", err)
		}
		// Orphaned profile: the cascade delete did not finish. Reconciliation
		// cleans these up; the read still serves what exists.
		log.Printf("profile %s references missing user %s", profile.ID.Hex(), profile.UserID.Hex())
	} else {
		populated.User = user
	}

	if len(profile.Skills) > 0 {
		skills, err := s.skills.FindByIDs(ctx, profile.Skills)
		if err != nil {
			return nil, apperror.StorageUnavailable("skills.findByIds", err)
		}
		populated.Skills = skills
	}

	if len(profile.Projects) > 0 {
		projects, err := s.projects.FindByIDs(ctx, profile.Projects)
		if err != nil {
			return nil, apperror.StorageUnavailable("projects.findByIds", err)
		}
		populated.Projects = orderProjects(profile.Projects, projects)
	}

	return populated, nil
}

// SearchDirectory matches users by name substring and populates each with
// its profile. An empty name matches all users.
func (s *QueryService) SearchDirectory(ctx context.Context, query *models.DirectoryQuery) (*models.DirectoryResult, error) {
	if query.Page < 1 {
		query.Page = 1
	}
	if query.PageSize < 1 || query.PageSize > 100 {
		query.PageSize = 20
	}

	users, totalCount, err := s.users.Search(ctx, query.Name, query.Page, query.PageSize)
	if err != nil {
		return nil, apperror.StorageUnavailable("users.search", err)
	}

	entries := make([]*models.DirectoryEntry, 0, len(users))
	if len(users) > 0 {
		userIDs := make([]bson.ObjectID, 0, len(users))
		for _, u := range users {
			userIDs = append(userIDs, u.ID)
		}

		profiles, err := s.profiles.FindByUserIDs(ctx, userIDs)
		if err != nil {
			return nil, apperror.StorageUnavailable("profiles.findByUserIds", err)
		}
		byUser := make(map[bson.ObjectID]*models.Profile, len(profiles))
		for _, p := range profiles {
			byUser[p.UserID] = p
		}

		for _, u := range users {
			entries = append(entries, &models.DirectoryEntry{
				User:    u,
				Profile: byUser[u.ID],
			})
		}
	}

	pageCount := int((totalCount + int64(query.PageSize) - 1) / int64(query.PageSize))

	return &models.DirectoryResult{
		Entries:     entries,
		TotalCount:  totalCount,
		PageCount:   pageCount,
		CurrentPage: query.Page,
	}, nil
}

// orderProjects restores the profile's stored project sequence after the
// unordered $in fetch. Dangling references are skipped.
func orderProjects(sequence []bson.ObjectID, fetched []*models.Project) []*models.Project {
	byID := make(map[bson.ObjectID]*models.Project, len(fetched))
	for _, p := range fetched {
		byID[p.ID] = p
	}
	ordered := make([]*models.Project, 0, len(sequence))
	for _, id := range sequence {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}
	return ordered
}
