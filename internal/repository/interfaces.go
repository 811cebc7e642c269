package repository

import (
	"context"

	"github.com/jwalitptl/records-portal/internal/model"
)

// The records API is the system of record; these interfaces are what the
// services need from it. recordsapi.Client implements all of them.
type (
	// AuthRepository exchanges credentials for an access token
	AuthRepository interface {
		Login(ctx context.Context, req model.LoginRequest) (*model.LoginResponse, error)
	}

	MedicalRecordRepository interface {
		PatientRecords(ctx context.Context, token, patientID string) ([]model.MedicalRecord, error)
		CreateRecord(ctx context.Context, token string, req model.CreateRecordRequest) (*model.MedicalRecord, error)
		UpdateRecord(ctx context.Context, token, recordID string, req model.UpdateRecordRequest) (*model.MedicalRecord, error)
		DeleteRecord(ctx context.Context, token, recordID string) error
	}

	// MedicalLogRepository reads a patient's audit trail
	MedicalLogRepository interface {
		PatientLogs(ctx context.Context, token, patientID string) ([]model.MedicalLog, error)
	}
)
