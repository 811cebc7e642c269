package model

// Forms posted by the dashboard pages.

type AddRecordForm struct {
	PatientID     string `form:"patient_id" validate:"notblank"`
	RecordDetails string `form:"record_details" validate:"notblank"`
}

type UpdateRecordForm struct {
	PatientID     string `form:"patient_id"`
	RecordDetails string `form:"record_details" validate:"notblank"`
}

// RecordActionForm selects or deletes a record within a patient listing.
type RecordActionForm struct {
	PatientID string `form:"patient_id"`
	RecordID  string `form:"record_id"`
}
