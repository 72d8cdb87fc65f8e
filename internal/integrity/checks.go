package integrity

import (
	"fmt"
	"sort"
	"time"

	"github.com/aerotrace-systems/aerotrace/internal/models"
)

// DetectedIssue is one finding produced by a check function, before dedup
// and persistence turn it into an Exception.
type DetectedIssue struct {
	Type        models.ExceptionType
	Severity    models.Severity
	Title       string
	Description string
	Evidence    Evidence
}

// Plausibility and gap thresholds. Rates above these are flagged as likely
// data-entry errors or falsified records.
const (
	maxCyclesPerDay      = 20.0
	maxFlightHoursPerDay = 18.0

	// Off-aircraft events should be followed by another record within this
	// many days. Supply-chain events get a wide allowance for warehousing
	// and transit.
	gapThresholdDays            = 30
	supplyChainGapThresholdDays = 450

	gapCriticalDays = 365
	gapWarningDays  = 180

	staleDraftDays = 30
)

// Events during which a part is installed and flying; time after these is
// accounted for and never opens a documentation gap.
var inServiceEvents = map[models.EventType]bool{
	models.EventInstall:            true,
	models.EventDetailedInspection: true,
	models.EventFunctionalTest:     true,
}

var supplyChainEvents = map[models.EventType]bool{
	models.EventManufacture:      true,
	models.EventReleaseToService: true,
	models.EventTransfer:         true,
}

// Maintenance work that must happen at a certificated facility.
var maintenanceEvents = map[models.EventType]bool{
	models.EventRepair:              true,
	models.EventReassembly:          true,
	models.EventReleaseToService:    true,
	models.EventFunctionalTest:      true,
	models.EventDetailedInspection:  true,
	models.EventTeardown:            true,
	models.EventReceivingInspection: true,
}

type checkFunc func(snap *models.ComponentSnapshot, now time.Time) []DetectedIssue

// The eight independent checks run against every snapshot. Each is pure and
// only reads the fields it needs; absent optional data is skipped, not an
// error.
var allChecks = []checkFunc{
	checkCycleCounters,
	checkFlightHourCounters,
	checkDocumentationGaps,
	checkReleaseCertificates,
	checkBirthRecords,
	checkEventSequence,
	checkStaleDraftDocuments,
	checkFacilityCertifications,
}

func runChecks(snap *models.ComponentSnapshot, now time.Time) []DetectedIssue {
	var issues []DetectedIssue
	for _, check := range allChecks {
		issues = append(issues, check(snap, now)...)
	}
	return issues
}

// checkCycleCounters flags cycle counters that go backwards between
// consecutive counted events, and forward jumps that accumulate faster than
// any aircraft plausibly flies.
func checkCycleCounters(snap *models.ComponentSnapshot, _ time.Time) []DetectedIssue {
	var issues []DetectedIssue
	var prev *models.LifecycleEvent

	for i := range snap.Events {
		e := &snap.Events[i]
		if e.Cycles == nil {
			continue
		}
		if prev != nil {
			issues = append(issues, compareCounters(prev, e, "cycles",
				float64(*prev.Cycles), float64(*e.Cycles), maxCyclesPerDay,
				models.ExceptionCycleDiscrepancy, models.ExceptionCycleRateImplausible)...)
		}
		prev = e
	}
	return issues
}

// checkFlightHourCounters is the flight-hours twin of checkCycleCounters.
func checkFlightHourCounters(snap *models.ComponentSnapshot, _ time.Time) []DetectedIssue {
	var issues []DetectedIssue
	var prev *models.LifecycleEvent

	for i := range snap.Events {
		e := &snap.Events[i]
		if e.FlightHours == nil {
			continue
		}
		if prev != nil {
			issues = append(issues, compareCounters(prev, e, "flight_hours",
				*prev.FlightHours, *e.FlightHours, maxFlightHoursPerDay,
				models.ExceptionHoursDiscrepancy, models.ExceptionHoursRateImplausible)...)
		}
		prev = e
	}
	return issues
}

func compareCounters(prev, next *models.LifecycleEvent, counter string, prevVal, nextVal, maxPerDay float64, regressionType, rateType models.ExceptionType) []DetectedIssue {
	if nextVal < prevVal {
		return []DetectedIssue{{
			Type:     regressionType,
			Severity: models.SeverityCritical,
			Title:    fmt.Sprintf("%s counter decreased", counterLabel(counter)),
			Description: fmt.Sprintf("%s dropped from %g to %g between %s on %s and %s on %s",
				counterLabel(counter), prevVal, nextVal,
				prev.Type, prev.EventDate.Format("2006-01-02"),
				next.Type, next.EventDate.Format("2006-01-02")),
			Evidence: CounterRegressionEvidence{
				Counter:     counter,
				PrevEventID: prev.ID,
				NextEventID: next.ID,
				PrevDate:    prev.EventDate,
				NextDate:    next.EventDate,
				PrevValue:   prevVal,
				NextValue:   nextVal,
			},
		}}
	}

	if nextVal > prevVal {
		days := next.EventDate.Sub(prev.EventDate).Hours() / 24
		if days > 0 {
			delta := nextVal - prevVal
			perDay := delta / days
			if perDay > maxPerDay {
				return []DetectedIssue{{
					Type:     rateType,
					Severity: models.SeverityWarning,
					Title:    fmt.Sprintf("Implausible %s accumulation rate", counterLabel(counter)),
					Description: fmt.Sprintf("%s increased by %g over %.1f days (%.1f/day, threshold %g/day)",
						counterLabel(counter), delta, days, perDay, maxPerDay),
					Evidence: CounterRateEvidence{
						Counter:     counter,
						PrevEventID: prev.ID,
						NextEventID: next.ID,
						PrevDate:    prev.EventDate,
						NextDate:    next.EventDate,
						Delta:       delta,
						ElapsedDays: days,
						PerDay:      perDay,
						Threshold:   maxPerDay,
					},
				}}
			}
		}
	}

	return nil
}

func counterLabel(counter string) string {
	if counter == "cycles" {
		return "Cycle"
	}
	return "Flight hours"
}

// checkDocumentationGaps flags stretches of undocumented time following
// off-aircraft events, including the open stretch from the last recorded
// event to the present. Time after in-service events is never a gap: a part
// may legitimately fly for years between touches.
func checkDocumentationGaps(snap *models.ComponentSnapshot, now time.Time) []DetectedIssue {
	var issues []DetectedIssue

	for i := range snap.Events {
		prev := &snap.Events[i]
		if inServiceEvents[prev.Type] {
			continue
		}

		threshold := gapThresholdDays
		if supplyChainEvents[prev.Type] {
			threshold = supplyChainGapThresholdDays
		}

		if i+1 < len(snap.Events) {
			next := &snap.Events[i+1]
			gapDays := wholeDays(prev.EventDate, next.EventDate)
			if gapDays <= threshold {
				continue
			}
			nextDate := next.EventDate
			issues = append(issues, DetectedIssue{
				Type:     models.ExceptionDocumentationGap,
				Severity: gapSeverity(gapDays),
				Title:    "Undocumented period in component history",
				Description: fmt.Sprintf("%d days with no record between %s on %s and %s on %s",
					gapDays, prev.Type, prev.EventDate.Format("2006-01-02"),
					next.Type, next.EventDate.Format("2006-01-02")),
				Evidence: DocumentationGapEvidence{
					PrevEventID:   prev.ID,
					PrevEventType: string(prev.Type),
					PrevDate:      prev.EventDate,
					NextEventID:   next.ID,
					NextEventType: string(next.Type),
					NextDate:      &nextDate,
					GapDays:       gapDays,
					ThresholdDays: threshold,
				},
			})
			continue
		}

		// Trailing gap: last event to now.
		gapDays := wholeDays(prev.EventDate, now)
		if gapDays <= threshold {
			continue
		}
		issues = append(issues, DetectedIssue{
			Type:     models.ExceptionDocumentationGap,
			Severity: gapSeverity(gapDays),
			Title:    "Component history has gone quiet",
			Description: fmt.Sprintf("no record in the %d days since %s on %s",
				gapDays, prev.Type, prev.EventDate.Format("2006-01-02")),
			Evidence: DocumentationGapEvidence{
				PrevEventID:   prev.ID,
				PrevEventType: string(prev.Type),
				PrevDate:      prev.EventDate,
				ThresholdDays: threshold,
			},
		})
	}
	return issues
}

func gapSeverity(days int) models.Severity {
	if days > gapCriticalDays {
		return models.SeverityCritical
	}
	return models.SeverityWarning
}

// checkReleaseCertificates flags release-to-service events on components
// that have no 8130-style certificate at all, generated or uploaded.
//
// The prose in the source maintenance manual suggests repair, reassembly and
// final inspection should require one too; the implemented condition is
// deliberately the narrower one until product intent is clarified.
func checkReleaseCertificates(snap *models.ComponentSnapshot, _ time.Time) []DetectedIssue {
	if hasReleaseCertificate(snap) {
		return nil
	}

	var issues []DetectedIssue
	for i := range snap.Events {
		e := &snap.Events[i]
		if e.Type != models.EventReleaseToService {
			continue
		}
		issues = append(issues, DetectedIssue{
			Type:     models.ExceptionMissingReleaseCert,
			Severity: models.SeverityWarning,
			Title:    "Release to service without 8130-3",
			Description: fmt.Sprintf("released to service on %s but no authorized release certificate is on file",
				e.EventDate.Format("2006-01-02")),
			Evidence: MissingReleaseCertEvidence{
				EventID:   e.ID,
				EventDate: e.EventDate,
			},
		})
	}
	return issues
}

func hasReleaseCertificate(snap *models.ComponentSnapshot) bool {
	for _, d := range snap.Documents {
		if d.DocType == models.DocTypeReleaseCertificate {
			return true
		}
	}
	for i := range snap.Events {
		for _, gd := range snap.Events[i].Documents {
			if gd.DocType == models.DocTypeReleaseCertificate {
				return true
			}
		}
	}
	return false
}

// checkBirthRecords produces two independent findings: a missing
// manufacture event and a missing birth certificate document.
func checkBirthRecords(snap *models.ComponentSnapshot, _ time.Time) []DetectedIssue {
	var issues []DetectedIssue

	hasManufacture := false
	for i := range snap.Events {
		if snap.Events[i].Type == models.EventManufacture {
			hasManufacture = true
			break
		}
	}
	if !hasManufacture {
		issues = append(issues, DetectedIssue{
			Type:        models.ExceptionMissingBirthCert,
			Severity:    models.SeverityWarning,
			Title:       "No manufacture event on record",
			Description: "component history does not begin with a manufacture event",
			Evidence:    MissingBirthRecordEvidence{Missing: "manufacture_event"},
		})
	}

	hasBirthCert := false
	for _, d := range snap.Documents {
		if d.DocType == models.DocTypeBirthCertificate {
			hasBirthCert = true
			break
		}
	}
	if !hasBirthCert {
		issues = append(issues, DetectedIssue{
			Type:        models.ExceptionMissingBirthCert,
			Severity:    models.SeverityWarning,
			Title:       "No birth certificate document",
			Description: "no birth certificate is attached to this component",
			Evidence:    MissingBirthRecordEvidence{Missing: "birth_certificate"},
		})
	}

	return issues
}

// checkEventSequence flags records whose entry order disagrees with their
// dates, and a second installation with no removal in between: a
// component cannot be on two aircraft at once.
func checkEventSequence(snap *models.ComponentSnapshot, _ time.Time) []DetectedIssue {
	var issues []DetectedIssue

	// Walk in recorded order; a record dated before its predecessor means
	// the history was entered out of order or a date was altered.
	recorded := make([]*models.LifecycleEvent, 0, len(snap.Events))
	for i := range snap.Events {
		recorded = append(recorded, &snap.Events[i])
	}
	sort.SliceStable(recorded, func(i, j int) bool {
		return recorded[i].Sequence < recorded[j].Sequence
	})

	for i := 1; i < len(recorded); i++ {
		prev, cur := recorded[i-1], recorded[i]
		if cur.EventDate.Before(prev.EventDate) {
			issues = append(issues, DetectedIssue{
				Type:     models.ExceptionDateSequence,
				Severity: models.SeverityCritical,
				Title:    "Event dated before its predecessor",
				Description: fmt.Sprintf("%s dated %s was recorded after %s dated %s",
					cur.Type, cur.EventDate.Format("2006-01-02"),
					prev.Type, prev.EventDate.Format("2006-01-02")),
				Evidence: SequenceEvidence{
					Kind:          "out_of_order",
					FirstEventID:  prev.ID,
					SecondEventID: cur.ID,
					FirstDate:     prev.EventDate,
					SecondDate:    cur.EventDate,
				},
			})
		}
	}

	var openInstall *models.LifecycleEvent
	for i := range snap.Events {
		e := &snap.Events[i]
		switch e.Type {
		case models.EventInstall:
			if openInstall != nil {
				issues = append(issues, DetectedIssue{
					Type:     models.ExceptionDateSequence,
					Severity: models.SeverityCritical,
					Title:    "Installed twice with no removal",
					Description: fmt.Sprintf("installed on %s and again on %s with no remove event between",
						openInstall.EventDate.Format("2006-01-02"), e.EventDate.Format("2006-01-02")),
					Evidence: SequenceEvidence{
						Kind:          "double_install",
						FirstEventID:  openInstall.ID,
						SecondEventID: e.ID,
						FirstDate:     openInstall.EventDate,
						SecondDate:    e.EventDate,
					},
				})
			}
			openInstall = e
		case models.EventRemove:
			openInstall = nil
		}
	}

	return issues
}

// checkStaleDraftDocuments flags event-attached generated documents still
// in draft more than thirty days after creation.
func checkStaleDraftDocuments(snap *models.ComponentSnapshot, now time.Time) []DetectedIssue {
	var issues []DetectedIssue
	for i := range snap.Events {
		e := &snap.Events[i]
		for _, doc := range e.Documents {
			if doc.Status != "draft" {
				continue
			}
			age := wholeDays(doc.CreatedAt, now)
			if age <= staleDraftDays {
				continue
			}
			issues = append(issues, DetectedIssue{
				Type:     models.ExceptionStaleDraftDocument,
				Severity: models.SeverityInfo,
				Title:    "Generated document never signed",
				Description: fmt.Sprintf("%s for %s event is still a draft %d days after creation",
					doc.DocType, e.Type, age),
				Evidence: StaleDraftEvidence{
					EventID:    e.ID,
					DocumentID: doc.ID,
					DocType:    doc.DocType,
					CreatedAt:  doc.CreatedAt,
				},
			})
		}
	}
	return issues
}

// checkFacilityCertifications flags maintenance work performed at an MRO
// with no facility certificate number recorded.
func checkFacilityCertifications(snap *models.ComponentSnapshot, _ time.Time) []DetectedIssue {
	var issues []DetectedIssue
	for i := range snap.Events {
		e := &snap.Events[i]
		if !maintenanceEvents[e.Type] {
			continue
		}
		if e.Facility.Type != models.FacilityMRO || e.Facility.CertificateNumber != "" {
			continue
		}
		issues = append(issues, DetectedIssue{
			Type:     models.ExceptionFacilityNotCertified,
			Severity: models.SeverityWarning,
			Title:    "Maintenance at uncertificated facility",
			Description: fmt.Sprintf("%s performed at %s with no repair station certificate on record",
				e.Type, e.Facility.Name),
			Evidence: UncertifiedFacilityEvidence{
				EventID:      e.ID,
				EventType:    string(e.Type),
				FacilityName: e.Facility.Name,
			},
		})
	}
	return issues
}

// wholeDays returns the count of whole days from a to b.
func wholeDays(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
