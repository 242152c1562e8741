package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/safefam/api/internal/model"
	"github.com/safefam/api/internal/repository"
)

type Service struct {
	appointments repository.AppointmentRepository
	members      repository.MemberRepository
	now          func() time.Time
}

func NewService(appointments repository.AppointmentRepository, members repository.MemberRepository) *Service {
	return &Service{
		appointments: appointments,
		members:      members,
		now:          time.Now,
	}
}

func (s *Service) Create(ctx context.Context, familyID uuid.UUID, req *model.AppointmentRequest) (*model.Appointment, error) {
	if _, err := s.members.Get(ctx, familyID, req.FamilyMemberID); err != nil {
		return nil, err
	}

	at, err := resolveDate(req)
	if err != nil {
		return nil, err
	}

	status := model.AppointmentStatusScheduled
	if req.Status != "" {
		status = model.AppointmentStatus(req.Status)
		if err := checkTransition(status, status); err != nil {
			return nil, err
		}
	}

	appt := &model.Appointment{Status: status}
	applyRequest(appt, req, at)

	if err := s.appointments.Create(ctx, appt); err != nil {
		return nil, err
	}
	return Decorate(appt), nil
}

func (s *Service) Get(ctx context.Context, familyID, id uuid.UUID) (*model.Appointment, error) {
	appt, err := s.appointments.Get(ctx, familyID, id)
	if err != nil {
		return nil, err
	}
	return Decorate(appt), nil
}

// Update is a full edit. A status change goes through the same guard as
// UpdateStatus.
func (s *Service) Update(ctx context.Context, familyID, id uuid.UUID, req *model.AppointmentRequest) (*model.Appointment, error) {
	appt, err := s.appointments.Get(ctx, familyID, id)
	if err != nil {
		return nil, err
	}
	if req.FamilyMemberID != appt.FamilyMemberID {
		if _, err := s.members.Get(ctx, familyID, req.FamilyMemberID); err != nil {
			return nil, err
		}
	}

	at, err := resolveDate(req)
	if err != nil {
		return nil, err
	}
	if req.Status != "" {
		next := model.AppointmentStatus(req.Status)
		if err := checkTransition(appt.Status, next); err != nil {
			return nil, err
		}
		appt.Status = next
	}

	applyRequest(appt, req, at)
	if err := s.appointments.Update(ctx, appt); err != nil {
		return nil, err
	}
	return Decorate(appt), nil
}

// UpdateStatus is the complete/cancel shortcut. Repeating the current status
// changes nothing.
func (s *Service) UpdateStatus(ctx context.Context, familyID, id uuid.UUID, status model.AppointmentStatus) (*model.Appointment, error) {
	appt, err := s.appointments.Get(ctx, familyID, id)
	if err != nil {
		return nil, err
	}
	if err := checkTransition(appt.Status, status); err != nil {
		return nil, err
	}
	if appt.Status == status {
		return Decorate(appt), nil
	}

	if err := s.appointments.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	appt.Status = status
	return Decorate(appt), nil
}

func (s *Service) Delete(ctx context.Context, familyID, id uuid.UUID) (*model.Appointment, error) {
	appt, err := s.appointments.Get(ctx, familyID, id)
	if err != nil {
		return nil, err
	}
	if err := s.appointments.Delete(ctx, familyID, id); err != nil {
		return nil, err
	}
	return appt, nil
}

// List returns the family's appointments split into upcoming and past.
// Store errors yield an empty partition.
func (s *Service) List(ctx context.Context, familyID uuid.UUID, filters *model.AppointmentFilters) *model.AppointmentPartition {
	appts, err := s.appointments.List(ctx, familyID, filters)
	if err != nil {
		log.Error().Err(err).Str("family_id", familyID.String()).Msg("failed to list appointments")
		appts = nil
	}
	for _, a := range appts {
		Decorate(a)
	}
	return Partition(appts, s.now())
}

func applyRequest(appt *model.Appointment, req *model.AppointmentRequest, at time.Time) {
	appt.FamilyMemberID = req.FamilyMemberID
	appt.Title = req.Title
	appt.AppointmentType = req.AppointmentType
	appt.DoctorName = model.StrPtr(req.DoctorName)
	appt.Location = model.StrPtr(req.Location)
	appt.AppointmentDate = model.DateTime{Time: at}
	appt.Notes = model.StrPtr(req.Notes)

	if req.DurationMinutes != nil {
		appt.DurationMinutes = *req.DurationMinutes
	} else if appt.DurationMinutes == 0 {
		appt.DurationMinutes = model.DefaultAppointmentDuration
	}
}
