package integrity

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Evidence is the structured payload identifying exactly which records
// triggered a finding. Each exception type has its own shape; the pair
// (exception type, canonical fingerprint of the evidence) is the dedup key
// that decides whether a fresh finding duplicates a recorded one.
type Evidence interface {
	evidence()
}

// CounterRegressionEvidence records a counter that went backwards between
// two consecutive counted events.
type CounterRegressionEvidence struct {
	Counter     string    `json:"counter"` // cycles or flight_hours
	PrevEventID string    `json:"prev_event_id"`
	NextEventID string    `json:"next_event_id"`
	PrevDate    time.Time `json:"prev_date"`
	NextDate    time.Time `json:"next_date"`
	PrevValue   float64   `json:"prev_value"`
	NextValue   float64   `json:"next_value"`
}

// CounterRateEvidence records an implausible accumulation rate between two
// consecutive counted events.
type CounterRateEvidence struct {
	Counter     string    `json:"counter"`
	PrevEventID string    `json:"prev_event_id"`
	NextEventID string    `json:"next_event_id"`
	PrevDate    time.Time `json:"prev_date"`
	NextDate    time.Time `json:"next_date"`
	Delta       float64   `json:"delta"`
	ElapsedDays float64   `json:"elapsed_days"`
	PerDay      float64   `json:"per_day"`
	Threshold   float64   `json:"threshold"`
}

// DocumentationGapEvidence records an unexplained stretch of time after an
// off-aircraft event. NextEventID is empty for the trailing gap between the
// last recorded event and the present; the trailing gap deliberately omits
// the day count so its fingerprint stays stable across scans.
type DocumentationGapEvidence struct {
	PrevEventID   string     `json:"prev_event_id"`
	PrevEventType string     `json:"prev_event_type"`
	PrevDate      time.Time  `json:"prev_date"`
	NextEventID   string     `json:"next_event_id,omitempty"`
	NextEventType string     `json:"next_event_type,omitempty"`
	NextDate      *time.Time `json:"next_date,omitempty"`
	GapDays       int        `json:"gap_days,omitempty"`
	ThresholdDays int        `json:"threshold_days"`
}

// MissingReleaseCertEvidence identifies a release-to-service event with no
// 8130-style certificate anywhere on the component.
type MissingReleaseCertEvidence struct {
	EventID   string    `json:"event_id"`
	EventDate time.Time `json:"event_date"`
}

// MissingBirthRecordEvidence identifies which half of the birth record is
// absent: the manufacture event or the birth certificate document.
type MissingBirthRecordEvidence struct {
	Missing string `json:"missing"` // manufacture_event or birth_certificate
}

// SequenceEvidence records either a date regression between consecutively
// recorded events or a second installation with no intervening removal.
type SequenceEvidence struct {
	Kind          string    `json:"kind"` // out_of_order or double_install
	FirstEventID  string    `json:"first_event_id"`
	SecondEventID string    `json:"second_event_id"`
	FirstDate     time.Time `json:"first_date"`
	SecondDate    time.Time `json:"second_date"`
}

// StaleDraftEvidence identifies a generated document still in draft well
// after its creation.
type StaleDraftEvidence struct {
	EventID    string    `json:"event_id"`
	DocumentID string    `json:"document_id"`
	DocType    string    `json:"doc_type"`
	CreatedAt  time.Time `json:"created_at"`
}

// UncertifiedFacilityEvidence identifies a maintenance event performed at an
// MRO with no certificate number on record.
type UncertifiedFacilityEvidence struct {
	EventID      string `json:"event_id"`
	EventType    string `json:"event_type"`
	FacilityName string `json:"facility_name"`
}

func (CounterRegressionEvidence) evidence()   {}
func (CounterRateEvidence) evidence()         {}
func (DocumentationGapEvidence) evidence()    {}
func (MissingReleaseCertEvidence) evidence()  {}
func (MissingBirthRecordEvidence) evidence()  {}
func (SequenceEvidence) evidence()            {}
func (StaleDraftEvidence) evidence()          {}
func (UncertifiedFacilityEvidence) evidence() {}

// Fingerprint computes an order-independent hash of serialized evidence.
// The JSON is decoded and re-encoded through Go maps, which marshal with
// sorted keys, so two payloads with identical content but different field
// order produce the same fingerprint.
func Fingerprint(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", fmt.Errorf("empty evidence payload")
	}

	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("failed to decode evidence: %w", err)
	}

	canonical, err := json.Marshal(decoded)
	if err != nil {
		return "", fmt.Errorf("failed to canonicalize evidence: %w", err)
	}

	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

func dedupKey(t string, fingerprint string) string {
	return t + ":" + fingerprint
}
