package domain

// KeyPrefix namespaces every key this service writes to the search backend.
const KeyPrefix = "ufo:"

// IndexName is the search index holding sighting documents.
const IndexName = "ufo-avistamentos"

// SightingKeyPrefix prefixes the hash of every indexed sighting document.
const SightingKeyPrefix = KeyPrefix + "sighting:"

// WeekCachePrefix prefixes cached weekly rankings.
const WeekCachePrefix = KeyPrefix + "semana:"

// SightingKey returns the hash key of an indexed sighting.
func SightingKey(id string) string {
	return SightingKeyPrefix + id
}
