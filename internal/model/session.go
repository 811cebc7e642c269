package model

import "time"

// Session is the per-browser state the portal keeps server-side.
type Session struct {
	ID               string    `json:"id"`
	Token            string    `json:"token,omitempty"`
	Role             Role      `json:"role,omitempty"`
	UserID           string    `json:"user_id,omitempty"`
	Username         string    `json:"username,omitempty"`
	SelectedRecordID string    `json:"selected_record_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Authenticated reports whether a login has stored a token.
func (s *Session) Authenticated() bool {
	return s != nil && s.Token != ""
}

// Clear drops everything but the session id.
func (s *Session) Clear() {
	s.Token = ""
	s.Role = ""
	s.UserID = ""
	s.Username = ""
	s.SelectedRecordID = ""
}
