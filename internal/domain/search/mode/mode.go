package mode

// Mode discriminates the search request variants.
type Mode string

// Search mode constants.
const (
	// Text is fuzzy full-text search over the description.
	Text Mode = "text"
	// Advanced is a conjunction of exact filters.
	Advanced Mode = "advanced"
	// Nearby is a geo-distance search.
	Nearby Mode = "nearby"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Text || m == Advanced || m == Nearby
}
