package view

import (
	"net/url"

	"github.com/jwalitptl/records-portal/internal/model"
)

const (
	PathLogin           = "/login"
	PathLogout          = "/logout"
	PathDoctorDashboard = "/dashboard/doctor"
	PathPatientDash     = "/dashboard/patient"
	PathUpdateRecord    = "/records/update"
	PathDeleteRecord    = "/records/delete"
)

// DashboardPath returns the landing page for role.
func DashboardPath(role model.Role) (string, bool) {
	switch role {
	case model.RoleDoctor:
		return PathDoctorDashboard, true
	case model.RolePatient:
		return PathPatientDash, true
	default:
		return "", false
	}
}

// LoginWithNotice builds the login redirect target carrying a notice code.
func LoginWithNotice(code string) string {
	if code == "" {
		return PathLogin
	}
	return PathLogin + "?" + url.Values{"notice": {code}}.Encode()
}

// WithPatient appends the patient id query to a listing page path.
func WithPatient(path, patientID string) string {
	if patientID == "" {
		return path
	}
	return path + "?" + url.Values{"patient_id": {patientID}}.Encode()
}
