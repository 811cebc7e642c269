package records

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/jwalitptl/records-portal/internal/model"
	"github.com/jwalitptl/records-portal/internal/repository"
	"github.com/jwalitptl/records-portal/internal/session"
	"github.com/jwalitptl/records-portal/internal/view"
	apperrors "github.com/jwalitptl/records-portal/pkg/errors"
	"github.com/jwalitptl/records-portal/pkg/validator"
)

// Outcome is the result of a record mutation.
type Outcome struct {
	Alert *view.Alert
	// Done is set on success: the form closes and its inputs are cleared.
	Done bool
	// Records is the listing fetched again after a successful mutation.
	Records *view.RecordsPanel
}

type Service struct {
	records   repository.MedicalRecordRepository
	logs      repository.MedicalLogRepository
	store     session.Store
	validator validator.Validator
	log       zerolog.Logger
}

func NewService(records repository.MedicalRecordRepository, logs repository.MedicalLogRepository,
	store session.Store, v validator.Validator, log zerolog.Logger) *Service {
	return &Service{
		records:   records,
		logs:      logs,
		store:     store,
		validator: v,
		log:       log,
	}
}

func (s *Service) fetch(ctx context.Context, sess *model.Session, patientID string) ([]model.MedicalRecord, error) {
	records, err := s.records.PatientRecords(ctx, sess.Token, patientID)
	if err != nil {
		s.log.Warn().Err(err).Str("patient_id", patientID).Str("user_id", sess.UserID).Msg("failed to fetch records")
		return nil, err
	}
	return records, nil
}

// DoctorListing shows every record of a patient without a select action.
func (s *Service) DoctorListing(ctx context.Context, sess *model.Session, patientID string) *view.RecordsPanel {
	patientID = strings.TrimSpace(patientID)
	panel := view.NewRecordsPanel(patientID)
	if patientID == "" {
		panel.Fail(view.MsgPatientIDPrompt)
		return panel
	}

	records, err := s.fetch(ctx, sess, patientID)
	if err != nil {
		panel.Fail(view.MsgNoRecordsFound)
		return panel
	}
	panel.Fill(records, false, "")
	return panel
}

// OwnedListing shows only the records the signed-in doctor wrote, each with a
// select action. The filter is presentational; the records API authorizes
// every mutation itself.
func (s *Service) OwnedListing(ctx context.Context, sess *model.Session, patientID string) *view.RecordsPanel {
	patientID = strings.TrimSpace(patientID)
	panel := view.NewRecordsPanel(patientID)
	if patientID == "" {
		panel.Fail(view.MsgPatientIDPrompt)
		return panel
	}

	records, err := s.fetch(ctx, sess, patientID)
	if err != nil {
		panel.Fail(view.MsgNoRecordsFound)
		return panel
	}

	owned := make([]model.MedicalRecord, 0, len(records))
	for _, r := range records {
		if r.OwnedBy(sess.UserID) {
			owned = append(owned, r)
		}
	}
	panel.Fill(owned, true, sess.SelectedRecordID)
	return panel
}

// PatientDashboard loads the patient's records and audit trail concurrently
// and returns once both have settled, in whichever order they finish.
func (s *Service) PatientDashboard(ctx context.Context, sess *model.Session) *view.PatientPage {
	page := &view.PatientPage{
		Welcome: view.PatientWelcome(sess.Username, sess.UserID),
		Records: view.NewRecordsPanel(sess.UserID),
		Logs:    view.NewLogsPanel(),
	}

	var g errgroup.Group
	g.Go(func() error {
		records, err := s.fetch(ctx, sess, sess.UserID)
		if err != nil {
			page.Records.Fail(view.MsgFetchRecordsFail)
			return nil
		}
		page.Records.Fill(records, false, "")
		return nil
	})
	g.Go(func() error {
		logs, err := s.logs.PatientLogs(ctx, sess.Token, sess.UserID)
		switch {
		case err == nil:
			page.Logs.Fill(logs)
		case apperrors.Is(err, apperrors.ErrForbidden):
			s.log.Warn().Str("user_id", sess.UserID).Msg("log access denied")
			page.Logs.Fail(view.MsgLogsDenied, true)
		default:
			s.log.Warn().Err(err).Str("user_id", sess.UserID).Msg("failed to fetch logs")
			page.Logs.Fail(view.MsgFetchLogsFail, false)
		}
		return nil
	})
	_ = g.Wait()

	return page
}

// SelectRecord remembers recordID for the next update or delete. Only a
// record the signed-in doctor wrote for patientID can be selected; any other
// id drops the current selection. The returned panel is the owned listing
// with the selection marked, and is set even when err is not nil.
func (s *Service) SelectRecord(ctx context.Context, sess *model.Session, patientID, recordID string) (*view.RecordsPanel, error) {
	panel := s.OwnedListing(ctx, sess, patientID)

	recordID = strings.TrimSpace(recordID)
	owned := false
	for _, row := range panel.Rows {
		if recordID != "" && row.ID == recordID {
			owned = true
			break
		}
	}
	if !owned {
		if recordID != "" {
			s.log.Warn().
				Str("user_id", sess.UserID).
				Str("patient_id", panel.PatientID).
				Str("record_id", recordID).
				Msg("selection of record outside own listing")
		}
		recordID = ""
	}

	sess.SelectedRecordID = recordID
	for i := range panel.Rows {
		panel.Rows[i].Selected = recordID != "" && panel.Rows[i].ID == recordID
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return panel, fmt.Errorf("failed to save session: %w", err)
	}
	if !owned {
		return panel, apperrors.NewBadRequest(view.MsgNoRecordSelected, nil)
	}
	return panel, nil
}

// ClearSelection forgets the selected record.
func (s *Service) ClearSelection(ctx context.Context, sess *model.Session) error {
	if sess.SelectedRecordID == "" {
		return nil
	}
	sess.SelectedRecordID = ""
	if err := s.store.Save(ctx, sess); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func failureMessage(err error, fallback string) string {
	if apperrors.Is(err, apperrors.ErrUnavailable) {
		return view.MsgNetworkError
	}
	return fallback
}

// AddRecord creates a record and refreshes the doctor listing for the same
// patient.
func (s *Service) AddRecord(ctx context.Context, sess *model.Session, form model.AddRecordForm) Outcome {
	form.PatientID = strings.TrimSpace(form.PatientID)
	form.RecordDetails = strings.TrimSpace(form.RecordDetails)
	if err := s.validator.Validate(form); err != nil {
		return Outcome{Alert: view.Failure(view.MsgAddRequired)}
	}
	patientID, err := strconv.ParseInt(form.PatientID, 10, 64)
	if err != nil {
		return Outcome{Alert: view.Failure(view.MsgPatientIDNumeric)}
	}

	record, err := s.records.CreateRecord(ctx, sess.Token, model.CreateRecordRequest{
		PatientID:     patientID,
		RecordDetails: form.RecordDetails,
	})
	if err != nil {
		s.log.Warn().Err(err).Str("patient_id", form.PatientID).Str("user_id", sess.UserID).Msg("failed to add record")
		return Outcome{Alert: view.Failure(failureMessage(err, view.MsgAddFailed))}
	}

	s.log.Info().Int64("record_id", record.ID).Str("patient_id", form.PatientID).Str("user_id", sess.UserID).Msg("record added")
	return Outcome{
		Alert:   view.Success(view.MsgAdded),
		Done:    true,
		Records: s.DoctorListing(ctx, sess, form.PatientID),
	}
}

// UpdateRecord replaces the details of the selected record.
func (s *Service) UpdateRecord(ctx context.Context, sess *model.Session, form model.UpdateRecordForm) Outcome {
	form.RecordDetails = strings.TrimSpace(form.RecordDetails)
	if err := s.validator.Validate(form); err != nil {
		return Outcome{Alert: view.Failure(view.MsgUpdateRequired)}
	}
	recordID := sess.SelectedRecordID
	if recordID == "" {
		return Outcome{Alert: view.Failure(view.MsgNoRecordSelected)}
	}

	if _, err := s.records.UpdateRecord(ctx, sess.Token, recordID, model.UpdateRecordRequest{
		RecordDetails: form.RecordDetails,
	}); err != nil {
		s.log.Warn().Err(err).Str("record_id", recordID).Str("user_id", sess.UserID).Msg("failed to update record")
		return Outcome{Alert: view.Failure(failureMessage(err, view.MsgUpdateFailed))}
	}

	s.log.Info().Str("record_id", recordID).Str("user_id", sess.UserID).Msg("record updated")
	return s.afterMutation(ctx, sess, form.PatientID, view.MsgUpdated)
}

// DeleteRecord removes the selected record.
func (s *Service) DeleteRecord(ctx context.Context, sess *model.Session, patientID string) Outcome {
	recordID := sess.SelectedRecordID
	if recordID == "" {
		return Outcome{Alert: view.Failure(view.MsgNoRecordSelected)}
	}

	if err := s.records.DeleteRecord(ctx, sess.Token, recordID); err != nil {
		s.log.Warn().Err(err).Str("record_id", recordID).Str("user_id", sess.UserID).Msg("failed to delete record")
		return Outcome{Alert: view.Failure(failureMessage(err, view.MsgDeleteFailed))}
	}

	s.log.Info().Str("record_id", recordID).Str("user_id", sess.UserID).Msg("record deleted")
	return s.afterMutation(ctx, sess, patientID, view.MsgDeleted)
}

func (s *Service) afterMutation(ctx context.Context, sess *model.Session, patientID, msg string) Outcome {
	if err := s.ClearSelection(ctx, sess); err != nil {
		s.log.Error().Err(err).Str("session_id", sess.ID).Msg("failed to clear selection")
	}
	out := Outcome{Alert: view.Success(msg), Done: true}
	if strings.TrimSpace(patientID) != "" {
		out.Records = s.OwnedListing(ctx, sess, patientID)
	}
	return out
}
