package view

import (
	"fmt"
	"strconv"
	"time"

	"github.com/jwalitptl/records-portal/internal/model"
)

// State of an asynchronously loaded panel.
type State int

const (
	StateLoading State = iota
	StateReady
	StateFailed
)

type AlertKind string

const (
	AlertSuccess AlertKind = "success"
	AlertError   AlertKind = "error"
)

// Alert is a one-shot message shown above the page content.
type Alert struct {
	Kind AlertKind
	Text string
}

func Success(text string) *Alert { return &Alert{Kind: AlertSuccess, Text: text} }
func Failure(text string) *Alert { return &Alert{Kind: AlertError, Text: text} }

type RecordRow struct {
	ID         string
	PatientID  string
	DoctorID   string
	Details    string
	Timestamp  string
	Selectable bool
	Selected   bool
}

// RecordsPanel is the listing of one patient's records.
type RecordsPanel struct {
	State     State
	PatientID string
	Rows      []RecordRow
	Message   string
	// SelectAction is the form target of each row's select button.
	SelectAction string
}

// NewRecordsPanel starts in the loading state.
func NewRecordsPanel(patientID string) *RecordsPanel {
	return &RecordsPanel{
		State:     StateLoading,
		PatientID: patientID,
		Message:   MsgLoadingRecords,
	}
}

// Fill replaces the loading state with rows. An empty list shows emptyMsg.
func (p *RecordsPanel) Fill(records []model.MedicalRecord, selectable bool, selectedID string) {
	p.State = StateReady
	p.Rows = make([]RecordRow, 0, len(records))
	for _, r := range records {
		id := strconv.FormatInt(r.ID, 10)
		p.Rows = append(p.Rows, RecordRow{
			ID:         id,
			PatientID:  strconv.FormatInt(r.PatientID, 10),
			DoctorID:   strconv.FormatInt(r.DoctorID, 10),
			Details:    r.RecordDetails,
			Timestamp:  FormatTimestamp(r.Timestamp.Time),
			Selectable: selectable,
			Selected:   selectable && id == selectedID,
		})
	}
	p.Message = ""
	if len(p.Rows) == 0 {
		p.Message = MsgNoMedicalRecords
	}
}

// Fail replaces the loading state with an inline error.
func (p *RecordsPanel) Fail(msg string) {
	p.State = StateFailed
	p.Rows = nil
	p.Message = msg
}

// LogsPanel is the patient's audit trail.
type LogsPanel struct {
	State   State
	Entries []string
	Message string
	Denied  bool
}

func NewLogsPanel() *LogsPanel {
	return &LogsPanel{State: StateLoading, Message: MsgLoadingLogs}
}

func (p *LogsPanel) Fill(logs []model.MedicalLog) {
	p.State = StateReady
	p.Entries = make([]string, 0, len(logs))
	for _, l := range logs {
		p.Entries = append(p.Entries, l.Log)
	}
	p.Message = ""
	if len(p.Entries) == 0 {
		p.Message = MsgNoLogs
	}
}

func (p *LogsPanel) Fail(msg string, denied bool) {
	p.State = StateFailed
	p.Entries = nil
	p.Message = msg
	p.Denied = denied
}

// FormatTimestamp renders record times the way the dashboards show them.
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02 15:04:05 UTC")
}

func DoctorWelcome(username string) string {
	return fmt.Sprintf("Welcome Dr. %s", username)
}

func PatientWelcome(username, userID string) string {
	return fmt.Sprintf("Welcome %s, your Patient ID is: %s", username, userID)
}

func (p *RecordsPanel) Loading() bool { return p.State == StateLoading }
func (p *RecordsPanel) Failed() bool  { return p.State == StateFailed }
func (p *LogsPanel) Loading() bool    { return p.State == StateLoading }
func (p *LogsPanel) Failed() bool     { return p.State == StateFailed }
