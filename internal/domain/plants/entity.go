package plants

import (
	"time"

	"github.com/bryanwahyu/leafsense/internal/domain/diagnosis"
)

// ProfileID identifier type for plant profiles.
type ProfileID string

// GeoPoint is an optional photo location.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether the coordinates are on the globe.
func (g GeoPoint) Valid() bool {
	return g.Latitude >= -90 && g.Latitude <= 90 && g.Longitude >= -180 && g.Longitude <= 180
}

// EnvironmentalData describes the conditions the photo was taken under.
// Immutable once submitted with an analysis.
type EnvironmentalData struct {
	Sunlight          string    `json:"sunlight"`
	Watering          string    `json:"watering"`
	Notes             string    `json:"notes"`
	OrganicPreference bool      `json:"organicPreference"`
	Location          *GeoPoint `json:"location,omitempty"`
}

// AnalysisRecord is one validated diagnosis at one point in time:
// the model prediction plus identity, timestamp, stored image and the
// environmental context the request was made with. Created exactly once,
// never edited afterwards.
type AnalysisRecord struct {
	ID          string            `json:"id"`
	Date        time.Time         `json:"date"`
	ImageURL    string            `json:"imageUrl"`
	Environment EnvironmentalData `json:"environmentalData"`
	diagnosis.Prediction
}

// Aggregate root: PlantProfile owns the chronological, append-only history
// of its analyses. The last element is always the most recent.
type PlantProfile struct {
	ID              ProfileID         `json:"id"`
	TenantID        string            `json:"tenantId"`
	Name            string            `json:"name"`
	CreatedAt       time.Time         `json:"createdAt"`
	AnalysisHistory []*AnalysisRecord `json:"analysisHistory"`
}
