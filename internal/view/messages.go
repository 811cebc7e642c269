package view

// User-facing messages.
const (
	MsgAccessDenied     = "Access denied!"
	MsgLoginFailed      = "Login failed!"
	MsgNetworkError     = "Network error. Please try again later."
	MsgInvalidRole      = "Invalid user role."
	MsgCredentialsReq   = "Email and password are required."
	MsgUnauthorized     = "Unauthorized access. Redirecting to login..."
	MsgSessionExpired   = "Session expired. Please log in again."
	MsgInvalidSession   = "Invalid session. Please log in again."
	MsgLoggedOut        = "You have been logged out."
	MsgPatientIDPrompt  = "Please enter a Patient ID."
	MsgLoadingRecords   = "Loading records..."
	MsgLoadingLogs      = "Loading logs..."
	MsgNoRecordsFound   = "No records found for this patient."
	MsgFetchRecordsFail = "Failed to fetch medical records."
	MsgNoMedicalRecords = "No medical records found."
	MsgLogsDenied       = "Access denied: you can only view your own logs."
	MsgFetchLogsFail    = "Failed to fetch medical logs."
	MsgNoLogs           = "No logs found for this patient."
	MsgAddRequired      = "Patient ID and record details are required."
	MsgPatientIDNumeric = "Patient ID must be a number."
	MsgAdded            = "Medical record added successfully."
	MsgAddFailed        = "Failed to add record."
	MsgUpdateRequired   = "Updated details are required."
	MsgNoRecordSelected = "No record selected."
	MsgUpdated          = "Medical record updated successfully."
	MsgUpdateFailed     = "Failed to update record."
	MsgDeleted          = "Medical record deleted successfully."
	MsgDeleteFailed     = "Failed to delete record."
	MsgTooManyRequests  = "Too many login attempts. Please wait and try again."
	MsgInternalError    = "Something went wrong. Please try again."
	MsgBadForm          = "The form could not be read. Please try again."
)

// Notice codes carried on the login redirect.
const (
	NoticeExpired      = "expired"
	NoticeUnauthorized = "unauthorized"
	NoticeInvalid      = "invalid"
	NoticeLogout       = "logout"
)

// NoticeMessage maps a redirect notice to the message shown on the login page.
func NoticeMessage(code string) string {
	switch code {
	case NoticeExpired:
		return MsgSessionExpired
	case NoticeUnauthorized:
		return MsgUnauthorized
	case NoticeInvalid:
		return MsgInvalidSession
	case NoticeLogout:
		return MsgLoggedOut
	default:
		return ""
	}
}
