package medication

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/safefam/api/internal/model"
	"github.com/safefam/api/internal/repository"
	apperrors "github.com/safefam/api/pkg/errors"
	"github.com/safefam/api/pkg/textlist"
	"github.com/safefam/api/pkg/timefmt"
)

const logHistoryLimit = 100

type Service struct {
	medications repository.MedicationRepository
	logs        repository.MedicationLogRepository
	members     repository.MemberRepository
	now         func() time.Time
}

func NewService(
	medications repository.MedicationRepository,
	logs repository.MedicationLogRepository,
	members repository.MemberRepository,
) *Service {
	return &Service{
		medications: medications,
		logs:        logs,
		members:     members,
		now:         time.Now,
	}
}

func (s *Service) Create(ctx context.Context, familyID uuid.UUID, req *model.MedicationRequest) (*model.Medication, error) {
	if _, err := s.members.Get(ctx, familyID, req.FamilyMemberID); err != nil {
		return nil, err
	}

	med := &model.Medication{
		RefillReminderDays: model.DefaultRefillReminderDays,
		ReminderEnabled:    true,
		IsActive:           true,
	}
	if err := applyRequest(med, req); err != nil {
		return nil, err
	}

	if err := s.medications.Create(ctx, med); err != nil {
		return nil, err
	}
	return med, nil
}

func (s *Service) Get(ctx context.Context, familyID, id uuid.UUID) (*model.Medication, error) {
	return s.medications.Get(ctx, familyID, id)
}

// Update applies a full edit. is_active only changes here.
func (s *Service) Update(ctx context.Context, familyID, id uuid.UUID, req *model.MedicationRequest) (*model.Medication, error) {
	med, err := s.medications.Get(ctx, familyID, id)
	if err != nil {
		return nil, err
	}
	if req.FamilyMemberID != med.FamilyMemberID {
		if _, err := s.members.Get(ctx, familyID, req.FamilyMemberID); err != nil {
			return nil, err
		}
	}

	if err := applyRequest(med, req); err != nil {
		return nil, err
	}
	if err := s.medications.Update(ctx, med); err != nil {
		return nil, err
	}
	return med, nil
}

func (s *Service) Delete(ctx context.Context, familyID, id uuid.UUID) (*model.Medication, error) {
	med, err := s.medications.Get(ctx, familyID, id)
	if err != nil {
		return nil, err
	}
	if err := s.medications.Delete(ctx, familyID, id); err != nil {
		return nil, err
	}
	return med, nil
}

// List splits the family's medications on is_active. Store errors yield two
// empty lists.
func (s *Service) List(ctx context.Context, familyID uuid.UUID, memberID *uuid.UUID) *model.MedicationList {
	list := &model.MedicationList{
		Active:   []*model.Medication{},
		Inactive: []*model.Medication{},
	}

	meds, err := s.medications.List(ctx, familyID, &model.MedicationFilters{FamilyMemberID: memberID})
	if err != nil {
		log.Error().Err(err).Str("family_id", familyID.String()).Msg("failed to list medications")
		return list
	}

	for _, m := range meds {
		if m.IsActive {
			list.Active = append(list.Active, m)
		} else {
			list.Inactive = append(list.Inactive, m)
		}
	}
	return list
}

// LogDose appends a taken dose stamped now. Repeated calls add repeated rows.
func (s *Service) LogDose(ctx context.Context, familyID, medicationID uuid.UUID, notes string) (*model.MedicationLog, error) {
	if _, err := s.medications.Get(ctx, familyID, medicationID); err != nil {
		return nil, err
	}

	now := model.NewDateTime(s.now())
	entry := &model.MedicationLog{
		MedicationID:  medicationID,
		ScheduledTime: now,
		TakenTime:     &now,
		Status:        model.MedicationLogStatusTaken,
		Notes:         model.StrPtr(notes),
	}
	if err := s.logs.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to log dose: %w", err)
	}
	return entry, nil
}

func (s *Service) ListLogs(ctx context.Context, familyID, medicationID uuid.UUID) ([]*model.MedicationLog, error) {
	if _, err := s.medications.Get(ctx, familyID, medicationID); err != nil {
		return nil, err
	}

	logs, err := s.logs.ListByMedication(ctx, medicationID, logHistoryLimit)
	if err != nil {
		log.Error().Err(err).Str("medication_id", medicationID.String()).Msg("failed to list medication logs")
		return []*model.MedicationLog{}, nil
	}
	if logs == nil {
		return []*model.MedicationLog{}, nil
	}
	return logs, nil
}

// DailySchedule derives the dose slots of one medication for day.
func (s *Service) DailySchedule(ctx context.Context, familyID, medicationID uuid.UUID, day time.Time) ([]*model.DoseSlot, error) {
	med, err := s.medications.Get(ctx, familyID, medicationID)
	if err != nil {
		return nil, err
	}

	midnight := model.DateOf(day).Time
	logs, err := s.logs.ListBetween(ctx, medicationID, midnight.Add(-MatchWindow), midnight.Add(24*time.Hour+MatchWindow))
	if err != nil {
		log.Error().Err(err).Str("medication_id", medicationID.String()).Msg("failed to load doses for schedule")
		logs = nil
	}
	return BuildSchedule(med, day, logs, s.now()), nil
}

func applyRequest(med *model.Medication, req *model.MedicationRequest) error {
	start, err := timefmt.ParseDate(req.StartDate)
	if err != nil {
		return apperrors.BadRequest(err.Error(), nil)
	}
	var end *model.Date
	if req.EndDate != "" {
		t, err := timefmt.ParseDate(req.EndDate)
		if err != nil {
			return apperrors.BadRequest(err.Error(), nil)
		}
		if t.Before(start) {
			return apperrors.BadRequest("end date cannot be before start date", nil)
		}
		d := model.DateOf(t)
		end = &d
	}

	med.FamilyMemberID = req.FamilyMemberID
	med.Name = req.Name
	med.Dosage = req.Dosage
	med.Frequency = req.Frequency
	med.TimeOfDay = textlist.Split(req.TimeOfDay)
	med.StartDate = model.DateOf(start)
	med.EndDate = end
	med.Instructions = model.StrPtr(req.Instructions)
	med.PrescribingDoctor = model.StrPtr(req.PrescribingDoctor)
	med.Pharmacy = model.StrPtr(req.Pharmacy)
	if req.RefillReminderDays != nil {
		med.RefillReminderDays = *req.RefillReminderDays
	}
	if req.ReminderEnabled != nil {
		med.ReminderEnabled = *req.ReminderEnabled
	}
	if req.IsActive != nil {
		med.IsActive = *req.IsActive
	}
	return nil
}
