package document

import (
	"github.com/kailas-cloud/ufotracker/internal/db"
	"github.com/kailas-cloud/ufotracker/internal/domain"
)

// IndexDefinition returns the FT schema of the sighting index.
// Keyword fields are case-sensitive tags so buckets keep the stored spelling.
func IndexDefinition(name string) (*db.IndexDefinition, error) {
	return db.NewIndex(name).
		Prefix(domain.SightingKeyPrefix).
		Tag(FieldID).
		Text(FieldCity).
		ExactTag(FieldState).
		ExactTag(FieldObjectType).
		Text(FieldDescription).
		SortableNumeric(FieldReliability).
		SortableNumeric(FieldReliabilityRank).
		SortableNumeric(FieldTimestamp).
		Geo(FieldLocation).
		Build()
}
