package view

// LoginPage backs the login template.
type LoginPage struct {
	Email  string
	Notice string
	Alert  *Alert
}

// DoctorPage backs the doctor dashboard.
type DoctorPage struct {
	Welcome   string
	PatientID string
	Records   *RecordsPanel
	Alert     *Alert
	// AddForm holds values echoed back after a failed add.
	AddForm AddForm
}

type AddForm struct {
	PatientID string
	Details   string
}

// PatientPage backs the patient dashboard.
type PatientPage struct {
	Welcome string
	Records *RecordsPanel
	Logs    *LogsPanel
}

// Mode selects which doctor action a record page performs.
type Mode string

const (
	ModeUpdate Mode = "update"
	ModeDelete Mode = "delete"
)

// RecordPage backs the update-record and delete-record pages.
type RecordPage struct {
	Mode      Mode
	Welcome   string
	PatientID string
	Records   *RecordsPanel
	Alert     *Alert
	// FormOpen shows the update form or delete confirmation for SelectedID.
	FormOpen   bool
	SelectedID string
	Details    string
}

// ErrorPage backs the generic error template.
type ErrorPage struct {
	Status    int
	Message   string
	RequestID string
}
