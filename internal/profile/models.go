// internal/profile/models.go

package profile

import (
    "time"

    "github.com/lib/pq"
)

// Gender values stored on a profile
const (
    GenderMale   = "male"
    GenderFemale = "female"
)

// Orientation values with defined matching behavior. Any other stored
// value is allowed but matches no candidates during discovery.
const (
    OrientationStraight = "straight"
    OrientationGay      = "gay"
    OrientationLesbian  = "lesbian"
)

// RelationshipTypeAny means the profile has no relationship-type preference
const RelationshipTypeAny = "any"

// Profile is one dating identity. Owned by the profile-editing flows;
// read-only from the matchmaking core's perspective.
type Profile struct {
    ID          int64      `json:"id" db:"id"`
    UserID      int64      `json:"user_id" db:"user_id"`
    DisplayName string     `json:"display_name" db:"display_name"`
    Bio         *string    `json:"bio,omitempty" db:"bio"`
    BirthDate   time.Time  `json:"birth_date" db:"birth_date"`
    Age         int        `json:"age" db:"age"`
    Gender      string     `json:"gender" db:"gender"`
    Orientation string     `json:"orientation" db:"orientation"`

    // Location
    City      *string  `json:"city,omitempty" db:"city"`
    Country   *string  `json:"country,omitempty" db:"country"`
    Latitude  *float64 `json:"latitude,omitempty" db:"latitude"`
    Longitude *float64 `json:"longitude,omitempty" db:"longitude"`

    // Partner preferences
    MinAge           *int     `json:"min_age,omitempty" db:"min_age"`
    MaxAge           *int     `json:"max_age,omitempty" db:"max_age"`
    MaxDistanceKM    *float64 `json:"max_distance_km,omitempty" db:"max_distance_km"`
    RelationshipType *string  `json:"relationship_type,omitempty" db:"relationship_type"`

    // Lifestyle
    Smoking  *string `json:"smoking,omitempty" db:"smoking"`
    Drinking *string `json:"drinking,omitempty" db:"drinking"`
    Religion *string `json:"religion,omitempty" db:"religion"`
    Politics *string `json:"politics,omitempty" db:"politics"`
    Zodiac   *string `json:"zodiac,omitempty" db:"zodiac"`

    Languages pq.StringArray `json:"languages" db:"languages"`
    Interests pq.StringArray `json:"interests" db:"interests"`

    CreatedAt time.Time `json:"created_at" db:"created_at"`
    UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

    // Computed per discovery query when the viewer has a coordinate
    DistanceKM *float64 `json:"distance_km,omitempty" db:"distance_km"`
}

// HasCoordinate reports whether the profile has a usable location
func (p *Profile) HasCoordinate() bool {
    return p.Latitude != nil && p.Longitude != nil
}

// PreferredRelationshipType returns the stored preference, or "any"
func (p *Profile) PreferredRelationshipType() string {
    if p.RelationshipType == nil || *p.RelationshipType == "" {
        return RelationshipTypeAny
    }
    return *p.RelationshipType
}
