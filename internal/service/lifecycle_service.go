package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/RuvimboRue/DevsKonnekt/internal/apperror"
	"github.com/RuvimboRue/DevsKonnekt/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// OutcomeStatus tags the result of a lifecycle operation so the ingestion
// boundary can decide acknowledgement policy without unpacking errors.
type OutcomeStatus string

const (
	OutcomeApplied  OutcomeStatus = "applied"
	OutcomePending  OutcomeStatus = "pending"
	OutcomeRejected OutcomeStatus = "rejected"
)

type Outcome struct {
	Status OutcomeStatus `json:"status"`
	UserID bson.ObjectID `json:"userId,omitempty"`
	// Duplicate marks a replayed event that was absorbed as a no-op.
	Duplicate bool   `json:"duplicate,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// profileCreateAttempts bounds the retry of profile creation after the user
// insert has already succeeded. Past that the user is flagged
// profilePending and left to reconciliation instead of being rolled back:
// the identity provider owns user existence.
const profileCreateAttempts = 3

// LifecycleService owns the rule that every user has exactly one profile,
// created with the user and removed with it.
type LifecycleService struct {
	users     UserStore
	profiles  ProfileStore
	publisher Publisher
}

func NewLifecycleService(users UserStore, profiles ProfileStore, publisher Publisher) *LifecycleService {
	return &LifecycleService{
		users:     users,
		profiles:  profiles,
		publisher: publisher,
	}
}

// OnUserCreated persists the user, then its single empty profile. Replays
// are absorbed: an existing external id reuses the stored user and only
// fills in a missing profile.
func (s *LifecycleService) OnUserCreated(ctx context.Context, evt *models.LifecycleEvent) (*Outcome, error) {
	user, err := s.users.FindByExternalID(ctx, evt.Data.ID)
	if err != nil && !errors.Is(err, apperror.ErrNotFound) {
		return nil, apperror.StorageUnavailable("users.findByExternalId", err)
	}

	if user == nil {
		user, err = s.users.Insert(ctx, &models.User{
			ExternalID: evt.Data.ID,
			FirstName:  stringValue(evt.Data.FirstName),
			LastName:   stringValue(evt.Data.LastName),
			Username:   stringValue(evt.Data.Username),
			Emails:     evt.Emails(),
		})
		if errors.Is(err, apperror.ErrConflict) {
			// Lost a race with a duplicate delivery; the other writer's
			// record is the one to keep.
			user, err = s.users.FindByExternalID(ctx, evt.Data.ID)
		}
		if err != nil {
			return nil, apperror.StorageUnavailable("users.insert", err)
		}
	}

	if _, err := s.profiles.FindByUserID(ctx, user.ID); err == nil {
		return &Outcome{Status: OutcomeApplied, UserID: user.ID, Duplicate: true}, nil
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, apperror.StorageUnavailable("profiles.findByUserId", err)
	}

	profile := newDefaultProfile(user.ID)
	var created *models.Profile
	for attempt := 1; attempt <= profileCreateAttempts; attempt++ {
		created, err = s.profiles.Insert(ctx, profile)
		if err == nil || errors.Is(err, apperror.ErrConflict) {
			break
		}
		log.Printf("profile creation attempt %d/%d for user %s failed: %v",
			attempt, profileCreateAttempts, user.ID.Hex(), err)
	}
	if errors.Is(err, apperror.ErrConflict) {
		return &Outcome{Status: OutcomeApplied, UserID: user.ID, Duplicate: true}, nil
	}
	if err != nil {
		if perr := s.users.SetProfilePending(ctx, user.ID, true); perr != nil {
			return nil, apperror.StorageUnavailable("users.setProfilePending", perr)
		}
		return &Outcome{Status: OutcomePending, UserID: user.ID}, nil
	}

	if user.ProfilePending {
		if perr := s.users.SetProfilePending(ctx, user.ID, false); perr != nil {
			log.Printf("failed to clear profilePending for user %s: %v", user.ID.Hex(), perr)
		}
	}

	s.publish(&models.ProfileEvent{
		EventType:  models.EventTypeProfileCreated,
		ProfileID:  created.ID.Hex(),
		UserID:     user.ID.Hex(),
		ExternalID: user.ExternalID,
		Timestamp:  time.Now().Unix(),
	})

	return &Outcome{Status: OutcomeApplied, UserID: user.ID}, nil
}

// OnUserUpdated applies only the fields present in the event. An update for
// an unknown user is not buffered and no user is synthesized; the provider
// redelivers once the created event has landed.
func (s *LifecycleService) OnUserUpdated(ctx context.Context, evt *models.LifecycleEvent) (*Outcome, error) {
	patch := evt.Patch()
	if patch.IsEmpty() {
		user, err := s.users.FindByExternalID(ctx, evt.Data.ID)
		if err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				return nil, err
			}
			return nil, apperror.StorageUnavailable("users.findByExternalId", err)
		}
		return &Outcome{Status: OutcomeApplied, UserID: user.ID, Duplicate: true}, nil
	}

	user, err := s.users.ApplyPatch(ctx, evt.Data.ID, patch)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		return nil, apperror.StorageUnavailable("users.applyPatch", err)
	}

	return &Outcome{Status: OutcomeApplied, UserID: user.ID}, nil
}

// OnUserDeleted removes the profile first, then the user. Replaying a delete
// for an already-absent user succeeds as a no-op.
func (s *LifecycleService) OnUserDeleted(ctx context.Context, externalID string) (*Outcome, error) {
	user, err := s.users.FindByExternalID(ctx, externalID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return &Outcome{Status: OutcomeApplied, Duplicate: true}, nil
		}
		return nil, apperror.StorageUnavailable("users.findByExternalId", err)
	}

	if err := s.profiles.DeleteByUserID(ctx, user.ID); err != nil && !errors.Is(err, apperror.ErrNotFound) {
		return nil, apperror.StorageUnavailable("profiles.deleteByUserId", err)
	}

	if err := s.users.Delete(ctx, user.ID); err != nil && !errors.Is(err, apperror.ErrNotFound) {
		return nil, apperror.StorageUnavailable("users.delete", err)
	}

	s.publish(&models.ProfileEvent{
		EventType:  models.EventTypeProfileDeleted,
		UserID:     user.ID.Hex(),
		ExternalID: externalID,
		Timestamp:  time.Now().Unix(),
	})

	return &Outcome{Status: OutcomeApplied, UserID: user.ID}, nil
}

func (s *LifecycleService) publish(event *models.ProfileEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishProfileEvent(event); err != nil {
		log.Printf("Failed to publish %s event for user %s: %v", event.EventType, event.UserID, err)
	}
}

// newDefaultProfile is the empty profile created alongside a user: open to
// hire and collaboration, not employed, nothing filled in yet.
func newDefaultProfile(userID bson.ObjectID) *models.Profile {
	return &models.Profile{
		UserID:                    userID,
		Employed:                  false,
		AvailableForHire:          true,
		AvailableForCollaboration: true,
		Interests:                 []string{},
		Skills:                    []bson.ObjectID{},
		Projects:                  []bson.ObjectID{},
	}
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
