package model

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

type MedicalRecord struct {
	ID            int64     `json:"id"`
	PatientID     int64     `json:"patient_id"`
	DoctorID      int64     `json:"doctor_id"`
	RecordDetails string    `json:"record_details"`
	Timestamp     Timestamp `json:"timestamp"`
}

// OwnedBy reports whether the record was written by the given user id. The id
// comes from the session as text, so the comparison is textual.
func (r MedicalRecord) OwnedBy(userID string) bool {
	return userID != "" && strconv.FormatInt(r.DoctorID, 10) == strings.TrimSpace(userID)
}

type CreateRecordRequest struct {
	PatientID     int64  `json:"patient_id"`
	RecordDetails string `json:"record_details"`
}

type UpdateRecordRequest struct {
	RecordDetails string `json:"record_details"`
}

// MedicalLog is one audit trail line for a patient.
type MedicalLog struct {
	Patient int64  `json:"Patient,omitempty"`
	Log     string `json:"log"`
}

// Timestamp accepts RFC 3339 values and the zoneless ISO-8601 form the
// records API emits; zoneless values are read as UTC.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	var lastErr error
	for _, layout := range timestampLayouts {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			t.Time = parsed.UTC()
			return nil
		}
		lastErr = err
	}
	return lastErr
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}
