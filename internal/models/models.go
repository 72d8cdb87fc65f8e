package models

import (
	"encoding/json"
	"time"
)

// ComponentStatus is the current lifecycle state of a component.
type ComponentStatus string

const (
	StatusServiceable ComponentStatus = "serviceable"
	StatusInRepair    ComponentStatus = "in_repair"
	StatusRetired     ComponentStatus = "retired"
	StatusScrapped    ComponentStatus = "scrapped"
)

// EventType identifies one kind of lifecycle event.
type EventType string

const (
	EventManufacture         EventType = "manufacture"
	EventInstall             EventType = "install"
	EventRemove              EventType = "remove"
	EventReceivingInspection EventType = "receiving_inspection"
	EventTeardown            EventType = "teardown"
	EventDetailedInspection  EventType = "detailed_inspection"
	EventRepair              EventType = "repair"
	EventReassembly          EventType = "reassembly"
	EventFunctionalTest      EventType = "functional_test"
	EventFinalInspection     EventType = "final_inspection"
	EventReleaseToService    EventType = "release_to_service"
	EventTransfer            EventType = "transfer"
	EventRetire              EventType = "retire"
	EventScrap               EventType = "scrap"
)

// FacilityType distinguishes where an event took place.
type FacilityType string

const (
	FacilityOEM       FacilityType = "oem"
	FacilityMRO       FacilityType = "mro"
	FacilityOperator  FacilityType = "operator"
	FacilityWarehouse FacilityType = "warehouse"
)

// Component is a serialized aerospace part and the root of its history.
// Components are created once and never deleted, only retired or scrapped.
type Component struct {
	ID              string          `json:"id"`
	PartNumber      string          `json:"part_number"`
	SerialNumber    string          `json:"serial_number"`
	Description     string          `json:"description,omitempty"`
	ManufactureDate time.Time       `json:"manufacture_date"`
	Status          ComponentStatus `json:"status"`
	RetiredAt       *time.Time      `json:"retired_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// Facility is the location where a lifecycle event was performed.
type Facility struct {
	Name              string       `json:"name"`
	Type              FacilityType `json:"type"`
	CertificateNumber string       `json:"certificate_number,omitempty"`
}

// Performer is the person who performed or signed off an event.
type Performer struct {
	Name          string `json:"name"`
	Certification string `json:"certification,omitempty"`
}

// EvidenceItem is a file or photo attached to an event.
type EvidenceItem struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"` // photo, scan, data_plate, logbook_page
	URI        string    `json:"uri"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// GeneratedDocument is a compliance document produced for a single event.
type GeneratedDocument struct {
	ID        string     `json:"id"`
	DocType   string     `json:"doc_type"`
	Status    string     `json:"status"` // draft, signed, void
	CreatedAt time.Time  `json:"created_at"`
	SignedAt  *time.Time `json:"signed_at,omitempty"`
}

// PartConsumed records a subcomponent or consumable used during an event.
type PartConsumed struct {
	PartNumber string `json:"part_number"`
	Quantity   int    `json:"quantity"`
	BatchLot   string `json:"batch_lot,omitempty"`
}

// LifecycleEvent is one documented fact in a component's history.
// Chronological ordering and non-decreasing counters are expected but not
// enforced at write time; the integrity engine reports violations instead.
type LifecycleEvent struct {
	ID            string              `json:"id"`
	ComponentID   string              `json:"component_id"`
	Type          EventType           `json:"type"`
	EventDate     time.Time           `json:"event_date"`
	Sequence      int                 `json:"sequence"` // order the record was entered
	Facility      Facility            `json:"facility"`
	Performer     Performer           `json:"performer"`
	FlightHours   *float64            `json:"flight_hours,omitempty"`
	Cycles        *int                `json:"cycles,omitempty"`
	Aircraft      string              `json:"aircraft,omitempty"`
	Operator      string              `json:"operator,omitempty"`
	WorkOrder     string              `json:"work_order,omitempty"`
	CMMReference  string              `json:"cmm_reference,omitempty"`
	Notes         string              `json:"notes,omitempty"`
	RecordHash    string              `json:"record_hash,omitempty"`
	Evidence      []EvidenceItem      `json:"evidence,omitempty"`
	Documents     []GeneratedDocument `json:"documents,omitempty"`
	PartsConsumed []PartConsumed      `json:"parts_consumed,omitempty"`
}

// Document is a component-level compliance artifact, independent of any
// single event (birth certificate, uploaded 8130-3, ...).
type Document struct {
	ID          string    `json:"id"`
	ComponentID string    `json:"component_id"`
	DocType     string    `json:"doc_type"`
	Title       string    `json:"title,omitempty"`
	URI         string    `json:"uri,omitempty"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// Document types the integrity checks care about.
const (
	DocTypeBirthCertificate   = "birth_certificate"
	DocTypeReleaseCertificate = "8130-3"
)

// ExceptionType identifies one kind of detected integrity issue.
type ExceptionType string

const (
	ExceptionCycleDiscrepancy     ExceptionType = "cycle_count_discrepancy"
	ExceptionCycleRateImplausible ExceptionType = "cycle_rate_implausible"
	ExceptionHoursDiscrepancy     ExceptionType = "flight_hours_discrepancy"
	ExceptionHoursRateImplausible ExceptionType = "flight_hours_rate_implausible"
	ExceptionDocumentationGap     ExceptionType = "documentation_gap"
	ExceptionMissingReleaseCert   ExceptionType = "missing_release_certificate"
	ExceptionMissingBirthCert     ExceptionType = "missing_birth_certificate"
	ExceptionDateSequence         ExceptionType = "date_sequence_inconsistency"
	ExceptionStaleDraftDocument   ExceptionType = "stale_draft_document"
	ExceptionFacilityNotCertified ExceptionType = "facility_not_certified"
)

// Severity of a detected exception.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// ExceptionStatus is the human-review state of an exception.
type ExceptionStatus string

const (
	ExceptionOpen          ExceptionStatus = "open"
	ExceptionInvestigating ExceptionStatus = "investigating"
	ExceptionResolved      ExceptionStatus = "resolved"
	ExceptionFalsePositive ExceptionStatus = "false_positive"
)

// Exception is a detected integrity issue on a component's history.
// Created by a scan, mutated only by explicit human review, never deleted.
type Exception struct {
	ID          string          `json:"id"`
	ComponentID string          `json:"component_id"`
	Type        ExceptionType   `json:"type"`
	Severity    Severity        `json:"severity"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Evidence    json.RawMessage `json:"evidence"`
	Status      ExceptionStatus `json:"status"`
	DetectedAt  time.Time       `json:"detected_at"`
	ResolvedBy  *string         `json:"resolved_by,omitempty"`
	ResolvedAt  *time.Time      `json:"resolved_at,omitempty"`
	Resolution  string          `json:"resolution,omitempty"`
}

// Alert is a manually curated flag on a component. Alerts are sibling data
// consumed by reporting; the integrity engine never creates them.
type Alert struct {
	ID          string    `json:"id"`
	ComponentID string    `json:"component_id"`
	Title       string    `json:"title"`
	Severity    Severity  `json:"severity"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// ComponentSnapshot is a fully loaded component as the integrity engine
// consumes it: events sorted ascending by event date, plus documents,
// existing exceptions and alerts.
type ComponentSnapshot struct {
	Component  Component        `json:"component"`
	Events     []LifecycleEvent `json:"events"`
	Documents  []Document       `json:"documents"`
	Exceptions []Exception      `json:"exceptions"`
	Alerts     []Alert          `json:"alerts"`
}

// IngestComponentRequest registers a component together with the history
// that arrived with it. Ids and sequence numbers are assigned server-side;
// events may be supplied in any order.
type IngestComponentRequest struct {
	PartNumber      string           `json:"part_number"`
	SerialNumber    string           `json:"serial_number"`
	Description     string           `json:"description,omitempty"`
	ManufactureDate time.Time        `json:"manufacture_date"`
	Status          ComponentStatus  `json:"status,omitempty"`
	RetiredAt       *time.Time       `json:"retired_at,omitempty"`
	Events          []LifecycleEvent `json:"events,omitempty"`
	Documents       []Document       `json:"documents,omitempty"`
}

// UpdateExceptionRequest is the human-review request to move an exception
// through its status lifecycle.
type UpdateExceptionRequest struct {
	Status     ExceptionStatus `json:"status"`
	ResolvedBy string          `json:"resolved_by,omitempty"`
	Resolution string          `json:"resolution,omitempty"`
}

// ValidSeverity reports whether s is a known severity value.
func ValidSeverity(s Severity) bool {
	switch s {
	case SeverityCritical, SeverityWarning, SeverityInfo:
		return true
	}
	return false
}

// ValidStatusTransition reports whether an exception may move from one
// review status to another. Resolved and false-positive are terminal.
func ValidStatusTransition(from, to ExceptionStatus) bool {
	switch from {
	case ExceptionOpen:
		return to == ExceptionInvestigating || to == ExceptionResolved || to == ExceptionFalsePositive
	case ExceptionInvestigating:
		return to == ExceptionResolved || to == ExceptionFalsePositive
	}
	return false
}

// Retired reports whether the component has reached the end of its life.
func (c *Component) Retired() bool {
	return c.Status == StatusRetired || c.Status == StatusScrapped
}
