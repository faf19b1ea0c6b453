package models

// Candidate is a venue returned by the places provider, pre-scoring.
// Instances are created per fetch and never mutated; the ProviderID is the
// dedup key across paginated fetches.
type Candidate struct {
	ProviderID       string     `bson:"provider_id" json:"providerId"`
	Name             string     `bson:"name" json:"name"`
	Coordinate       Coordinate `bson:"coordinate" json:"coordinate"`
	Category         Category   `bson:"category" json:"category"`
	ProviderType     string     `bson:"provider_type,omitempty" json:"providerType,omitempty"`
	RawProviderHours []DayHours `bson:"raw_provider_hours,omitempty" json:"rawProviderHours,omitempty"`
	Rating           float64    `bson:"rating" json:"rating"`
	ReviewCount      int        `bson:"review_count" json:"reviewCount"`
	PriceLevel       int        `bson:"price_level" json:"priceLevel"`
	PhotoRefs        []string   `bson:"photo_refs,omitempty" json:"photoRefs,omitempty"`
	Sponsored        bool       `bson:"sponsored" json:"sponsored"`
}

// IsMalformed reports whether the candidate lacks the fields the engine
// cannot work without. Malformed candidates are dropped individually; they
// never abort a batch.
func (c Candidate) IsMalformed() bool {
	return c.ProviderID == "" || c.Coordinate.IsZero()
}
