// Package trace scores how completely a component's life is accounted for
// by its documented history.
package trace

import (
	"math"
	"time"

	"github.com/aerotrace-systems/aerotrace/internal/models"
)

// Rating buckets a completeness score for display.
type Rating string

const (
	RatingComplete Rating = "complete"
	RatingGood     Rating = "good"
	RatingFair     Rating = "fair"
	RatingPoor     Rating = "poor"
)

// GapSeverity classifies an unexplained stretch of time between events.
type GapSeverity string

const (
	GapCritical GapSeverity = "critical"
	GapWarning  GapSeverity = "warning"
	GapMinor    GapSeverity = "minor"
)

// Gap is an unexplained stretch between two consecutive events, with the
// bounding records identified for display.
type Gap struct {
	FromEventID  string           `json:"from_event_id"`
	ToEventID    string           `json:"to_event_id"`
	FromType     models.EventType `json:"from_type"`
	ToType       models.EventType `json:"to_type"`
	FromDate     time.Time        `json:"from_date"`
	ToDate       time.Time        `json:"to_date"`
	FromFacility string           `json:"from_facility,omitempty"`
	ToFacility   string           `json:"to_facility,omitempty"`
	Days         int              `json:"days"`
	Severity     GapSeverity      `json:"severity"`
	Duration     string           `json:"duration"`
}

// Input is everything the calculator needs about one component.
// Events must be sorted ascending by event date.
type Input struct {
	ManufactureDate time.Time
	Events          []models.LifecycleEvent
	Documents       []models.Document
	RetiredAt       *time.Time
}

// Report is the completeness result for one component.
type Report struct {
	Score          int    `json:"score"`
	DocumentedDays int    `json:"documented_days"`
	TotalDays      int    `json:"total_days"`
	GapCount       int    `json:"gap_count"`
	TotalGapDays   int    `json:"total_gap_days"`
	Rating         Rating `json:"rating"`
	Gaps           []Gap  `json:"gaps"`
	TotalEvents    int    `json:"total_events"`
	TotalDocuments int    `json:"total_documents"`
}

// How many days of shop processing or transit a single touchpoint
// reasonably accounts for, per event type. Install is handled separately:
// it covers the whole installed stretch through the next removal.
var coverageWindowDays = map[models.EventType]int{
	models.EventManufacture:         7,
	models.EventRemove:              7,
	models.EventTeardown:            7,
	models.EventDetailedInspection:  7,
	models.EventReassembly:          7,
	models.EventFunctionalTest:      7,
	models.EventFinalInspection:     7,
	models.EventRetire:              7,
	models.EventScrap:               7,
	models.EventReceivingInspection: 14,
	models.EventRepair:              14,
	models.EventReleaseToService:    14,
	models.EventTransfer:            14,
}

const (
	gapFlagDays     = 30
	gapWarningDays  = 90
	gapCriticalDays = 180
)

// Calculate scores trace completeness for one component as of now. Pure:
// no I/O, deterministic for a given now. An empty event list produces a
// zeroed poor-rated report with no date arithmetic.
func Calculate(in Input, now time.Time) Report {
	if len(in.Events) == 0 {
		return Report{
			Rating:         RatingPoor,
			TotalDocuments: len(in.Documents),
		}
	}

	end := now
	if in.RetiredAt != nil {
		end = *in.RetiredAt
	}
	totalDays := wholeDays(in.ManufactureDate, end)
	if totalDays < 1 {
		totalDays = 1
	}

	covered := make(map[int]struct{})
	cover := func(d int) { covered[d] = struct{}{} }

	for i := range in.Events {
		e := &in.Events[i]
		offset := wholeDays(in.ManufactureDate, e.EventDate)

		if e.Type == models.EventInstall {
			// Installed means in service and accounted for until removed.
			until := totalDays
			for j := i + 1; j < len(in.Events); j++ {
				if in.Events[j].Type == models.EventRemove {
					until = wholeDays(in.ManufactureDate, in.Events[j].EventDate)
					break
				}
			}
			for d := offset; d <= until; d++ {
				cover(d)
			}
			continue
		}

		window, ok := coverageWindowDays[e.Type]
		if !ok {
			window = 7
		}
		for d := offset - window; d <= offset+window; d++ {
			cover(d)
		}
	}

	documented := len(covered)
	score := int(math.Round(100 * float64(documented) / float64(totalDays)))
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	gaps := findGaps(in.Events)
	totalGapDays := 0
	for _, g := range gaps {
		totalGapDays += g.Days
	}

	return Report{
		Score:          score,
		DocumentedDays: documented,
		TotalDays:      totalDays,
		GapCount:       len(gaps),
		TotalGapDays:   totalGapDays,
		Rating:         rating(score),
		Gaps:           gaps,
		TotalEvents:    len(in.Events),
		TotalDocuments: len(in.Documents),
	}
}

// findGaps walks consecutive event pairs and records stretches above the
// flag threshold. Pairs led by an install are skipped: installed time is
// already covered.
func findGaps(events []models.LifecycleEvent) []Gap {
	var gaps []Gap
	for i := 1; i < len(events); i++ {
		prev, cur := &events[i-1], &events[i]
		if prev.Type == models.EventInstall {
			continue
		}
		days := wholeDays(prev.EventDate, cur.EventDate)
		if days <= gapFlagDays {
			continue
		}
		gaps = append(gaps, Gap{
			FromEventID:  prev.ID,
			ToEventID:    cur.ID,
			FromType:     prev.Type,
			ToType:       cur.Type,
			FromDate:     prev.EventDate,
			ToDate:       cur.EventDate,
			FromFacility: prev.Facility.Name,
			ToFacility:   cur.Facility.Name,
			Days:         days,
			Severity:     gapSeverity(days),
			Duration:     FormatDuration(days),
		})
	}
	return gaps
}

func gapSeverity(days int) GapSeverity {
	switch {
	case days > gapCriticalDays:
		return GapCritical
	case days > gapWarningDays:
		return GapWarning
	default:
		return GapMinor
	}
}

func rating(score int) Rating {
	switch {
	case score > 95:
		return RatingComplete
	case score >= 80:
		return RatingGood
	case score >= 60:
		return RatingFair
	default:
		return RatingPoor
	}
}

// wholeDays returns the count of whole days from a to b.
func wholeDays(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
