package recordsapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jwalitptl/records-portal/internal/model"
)

// Login exchanges credentials for an access token. It is the only call made
// without a bearer token.
func (c *Client) Login(ctx context.Context, req model.LoginRequest) (*model.LoginResponse, error) {
	var resp model.LoginResponse
	if err := c.do(ctx, "login", http.MethodPost, "/login/", "", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PatientRecords lists every record of one patient.
func (c *Client) PatientRecords(ctx context.Context, token, patientID string) ([]model.MedicalRecord, error) {
	var records []model.MedicalRecord
	path := "/records/patient/" + url.PathEscape(patientID)
	if err := c.do(ctx, "list_records", http.MethodGet, path, token, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *Client) CreateRecord(ctx context.Context, token string, req model.CreateRecordRequest) (*model.MedicalRecord, error) {
	var record model.MedicalRecord
	if err := c.do(ctx, "create_record", http.MethodPost, "/records/", token, req, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (c *Client) UpdateRecord(ctx context.Context, token, recordID string, req model.UpdateRecordRequest) (*model.MedicalRecord, error) {
	var record model.MedicalRecord
	path := "/records/update/" + url.PathEscape(recordID)
	if err := c.do(ctx, "update_record", http.MethodPut, path, token, req, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (c *Client) DeleteRecord(ctx context.Context, token, recordID string) error {
	path := "/records/delete/" + url.PathEscape(recordID)
	return c.do(ctx, "delete_record", http.MethodDelete, path, token, nil, nil)
}

// PatientLogs reads the audit trail of one patient. The API answers an empty
// trail with an object instead of a list; both decode to a slice.
func (c *Client) PatientLogs(ctx context.Context, token, patientID string) ([]model.MedicalLog, error) {
	var raw json.RawMessage
	path := "/immdb/log/" + url.PathEscape(patientID)
	if err := c.do(ctx, "list_logs", http.MethodGet, path, token, nil, &raw); err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return []model.MedicalLog{}, nil
	}
	var logs []model.MedicalLog
	if err := json.Unmarshal(trimmed, &logs); err != nil {
		return nil, fmt.Errorf("failed to decode list_logs response: %w", err)
	}
	return logs, nil
}
