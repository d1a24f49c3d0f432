package geocode

// Address holds the place-name components a provider returns for a result.
// Empty strings mean the component is absent.
type Address struct {
	Suburb  string `json:"suburb,omitempty"`
	Village string `json:"village,omitempty"`
	Town    string `json:"town,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Country string `json:"country,omitempty"`
}

// Suggestion is one place returned by the provider for a free-text query.
type Suggestion struct {
	DisplayName string  `json:"display_name"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Address     Address `json:"address"`
}

// Coordinates is a WGS84 point.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Coordinates returns the suggestion's point.
func (s Suggestion) Coordinates() Coordinates {
	return Coordinates{Latitude: s.Latitude, Longitude: s.Longitude}
}
