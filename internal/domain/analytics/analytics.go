// Package analytics holds the aggregated views computed over sighting documents.
package analytics

import (
	"fmt"

	"github.com/kailas-cloud/ufotracker/internal/domain/sighting"
)

// HighReliabilityThreshold is the inclusive reliability bound counted as "high".
const HighReliabilityThreshold = 70

// TimelineBucketHours is the width of one timeline bucket.
const TimelineBucketHours = 3

// CategoryCount is one bucket of a terms distribution, kept in backend order.
type CategoryCount struct {
	Category string
	Count    int64
}

// ReliabilityStats summarizes reliability over the whole corpus. StdDev is the population deviation.
type ReliabilityStats struct {
	Mean                 float64
	StdDev               float64
	HighReliabilityCount int64
}

// TimelinePoint is the number of sightings in a 3-hour slot of the day.
type TimelinePoint struct {
	Label string
	Count int64
}

// HourLabel renders the start hour of a timeline bucket ("00h".."21h").
func HourLabel(hour int) string {
	return fmt.Sprintf("%02dh", hour)
}

// EmptyTimeline returns all timeline slots with zero counts.
func EmptyTimeline() []TimelinePoint {
	points := make([]TimelinePoint, 0, 24/TimelineBucketHours)
	for h := 0; h < 24; h += TimelineBucketHours {
		points = append(points, TimelinePoint{Label: HourLabel(h)})
	}
	return points
}

// WeeklyTopSighting is the highest-reliability document of a state in a week.
type WeeklyTopSighting struct {
	State    string
	Sighting sighting.Document
}

// RankingEntry is the ranking view of a WeeklyTopSighting. Reliability may be nil.
type RankingEntry struct {
	State       string
	Reliability *int
}

// Ranking projects top sightings to ranking entries, preserving order.
func Ranking(tops []WeeklyTopSighting) []RankingEntry {
	out := make([]RankingEntry, len(tops))
	for i, t := range tops {
		out[i] = RankingEntry{State: t.State, Reliability: t.Sighting.Reliability()}
	}
	return out
}
