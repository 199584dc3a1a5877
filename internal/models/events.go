package models

type LifecycleEventType string

const (
	EventUserCreated LifecycleEventType = "user.created"
	EventUserUpdated LifecycleEventType = "user.updated"
	EventUserDeleted LifecycleEventType = "user.deleted"
)

func (t LifecycleEventType) Known() bool {
	switch t {
	case EventUserCreated, EventUserUpdated, EventUserDeleted:
		return true
	}
	return false
}

type EmailAddress struct {
	EmailAddress string `json:"email_address"`
}

// UserPayload mirrors the identity provider's snake_case user object.
// Pointer fields distinguish "absent from the event" from "set to empty".
type UserPayload struct {
	ID             string         `json:"id"`
	FirstName      *string        `json:"first_name,omitempty"`
	LastName       *string        `json:"last_name,omitempty"`
	Username       *string        `json:"username,omitempty"`
	EmailAddresses []EmailAddress `json:"email_addresses,omitempty"`
}

// LifecycleEvent is a provider-delivered account lifecycle notification.
// Delivery is at-least-once and unordered; EventID is the provider's
// delivery id and keys deduplication.
type LifecycleEvent struct {
	EventID   string             `json:"event_id,omitempty"`
	Type      LifecycleEventType `json:"type"`
	Data      UserPayload        `json:"data"`
	Timestamp int64              `json:"timestamp,omitempty"`
}

// Emails flattens the provider's email address objects. Nil when the field
// was absent from the event.
func (e *LifecycleEvent) Emails() []string {
	if e.Data.EmailAddresses == nil {
		return nil
	}
	emails := make([]string, 0, len(e.Data.EmailAddresses))
	for _, a := range e.Data.EmailAddresses {
		if a.EmailAddress != "" {
			emails = append(emails, a.EmailAddress)
		}
	}
	return emails
}

// Patch reduces an account-updated payload to the fields it actually carries.
func (e *LifecycleEvent) Patch() *UserPatch {
	return &UserPatch{
		FirstName: e.Data.FirstName,
		LastName:  e.Data.LastName,
		Username:  e.Data.Username,
		Emails:    e.Emails(),
	}
}

// ProfileEvent is published on the platform bus after lifecycle effects.
type ProfileEventType string

const (
	EventTypeProfileCreated ProfileEventType = "profile.created"
	EventTypeProfileUpdated ProfileEventType = "profile.updated"
	EventTypeProfileDeleted ProfileEventType = "profile.deleted"
)

type ProfileEvent struct {
	EventID    string           `json:"eventId"`
	EventType  ProfileEventType `json:"eventType"`
	ProfileID  string           `json:"profileId,omitempty"`
	UserID     string           `json:"userId"`
	ExternalID string           `json:"externalId,omitempty"`
	Timestamp  int64            `json:"timestamp"`
}
