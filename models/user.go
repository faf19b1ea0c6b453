// models/user.go
package models

// UserProfile is what the caller must supply before invoking the engine:
// identity, positions and interests. Obtaining it is a precondition; the
// engine hard-fails without it.
type UserProfile struct {
	ID              string     `bson:"id" json:"id"`
	Interests       []Category `bson:"interests,omitempty" json:"interests,omitempty"`
	CurrentLocation Coordinate `bson:"current_location" json:"currentLocation"`
	HomeLocation    *Coordinate `bson:"home_location,omitempty" json:"homeLocation,omitempty"`
	WorkLocation    *Coordinate `bson:"work_location,omitempty" json:"workLocation,omitempty"`

	// PreferredRadiusMiles survives across sessions when set.
	PreferredRadiusMiles float64 `bson:"preferred_radius_miles,omitempty" json:"preferredRadiusMiles,omitempty"`
}

// FeedFilters narrows a feed request. All fields are optional.
type FeedFilters struct {
	Categories       []Category `json:"categories,omitempty"`
	PartOfDay        PartOfDay  `json:"partOfDay,omitempty"`
	MaxDistanceMiles float64    `json:"maxDistanceMiles,omitempty"`
	MaxPriceLevel    int        `json:"maxPriceLevel,omitempty"`
	OpenNow          bool       `json:"openNow,omitempty"`
}

// HasDistanceCap reports whether the caller imposed an explicit distance
// ceiling. A user-imposed cap is a hard stop for radius expansion; the
// system default is not.
func (f FeedFilters) HasDistanceCap() bool {
	return f.MaxDistanceMiles > 0
}
