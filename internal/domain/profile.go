package domain

import (
	"context"
	"strings"
	"time"
)

// TeeShirtSize is the attendee tee shirt size selection.
type TeeShirtSize string

const (
	SizeNotSpecified TeeShirtSize = "NOT_SPECIFIED"
	SizeXS           TeeShirtSize = "XS"
	SizeS            TeeShirtSize = "S"
	SizeM            TeeShirtSize = "M"
	SizeL            TeeShirtSize = "L"
	SizeXL           TeeShirtSize = "XL"
	SizeXXL          TeeShirtSize = "XXL"
	SizeXXXL         TeeShirtSize = "XXXL"
)

// Valid reports whether s is a known tee shirt size.
func (s TeeShirtSize) Valid() bool {
	switch s {
	case SizeNotSpecified, SizeXS, SizeS, SizeM, SizeL, SizeXL, SizeXXL, SizeXXXL:
		return true
	}
	return false
}

// Profile represents a user profile. ID is the opaque authenticated user id
// supplied by the host platform; it is never validated here.
type Profile struct {
	ID           string       `json:"id"`
	DisplayName  string       `json:"display_name"`
	MainEmail    string       `json:"main_email"`
	TeeShirtSize TeeShirtSize `json:"tee_shirt_size"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// NewProfile returns a new Profile for the given user id. The display name
// defaults to the local part of the email until the user saves one.
func NewProfile(userID, mainEmail string, createdAt time.Time) *Profile {
	displayName := mainEmail
	if local, _, found := strings.Cut(mainEmail, "@"); found && local != "" {
		displayName = local
	}
	return &Profile{
		ID:           userID,
		DisplayName:  displayName,
		MainEmail:    mainEmail,
		TeeShirtSize: SizeNotSpecified,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
}

// ProfileRepository defines the interface for profile storage.
type ProfileRepository interface {
	Create(ctx context.Context, prof *Profile) error
	GetByID(ctx context.Context, id string) (*Profile, error)
	ListByIDs(ctx context.Context, ids []string) ([]*Profile, error)
	Update(ctx context.Context, prof *Profile) error
}

// ProfileService defines profile operations. Profiles are created lazily on
// first access and mutated only by their owning user.
type ProfileService interface {
	GetOrCreateProfile(ctx context.Context, userID, mainEmail string) (*Profile, error)
	SaveProfile(ctx context.Context, userID string, displayName string, size TeeShirtSize) (*Profile, error)
}
