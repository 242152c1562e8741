package vaccination

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/safefam/api/internal/model"
	"github.com/safefam/api/internal/repository"
	apperrors "github.com/safefam/api/pkg/errors"
	"github.com/safefam/api/pkg/timefmt"
)

// DueWindow is how far ahead a next dose is flagged as due.
const DueWindow = 30 * 24 * time.Hour

type Service struct {
	vaccinations repository.VaccinationRepository
	members      repository.MemberRepository
	now          func() time.Time
}

func NewService(vaccinations repository.VaccinationRepository, members repository.MemberRepository) *Service {
	return &Service{
		vaccinations: vaccinations,
		members:      members,
		now:          time.Now,
	}
}

func (s *Service) Create(ctx context.Context, familyID uuid.UUID, req *model.VaccinationRequest) (*model.Vaccination, error) {
	if _, err := s.members.Get(ctx, familyID, req.FamilyMemberID); err != nil {
		return nil, err
	}

	v := &model.Vaccination{}
	if err := applyRequest(v, req); err != nil {
		return nil, err
	}
	if err := s.vaccinations.Create(ctx, v); err != nil {
		return nil, err
	}
	return s.flag(v), nil
}

func (s *Service) Get(ctx context.Context, familyID, id uuid.UUID) (*model.Vaccination, error) {
	v, err := s.vaccinations.Get(ctx, familyID, id)
	if err != nil {
		return nil, err
	}
	return s.flag(v), nil
}

func (s *Service) Update(ctx context.Context, familyID, id uuid.UUID, req *model.VaccinationRequest) (*model.Vaccination, error) {
	v, err := s.vaccinations.Get(ctx, familyID, id)
	if err != nil {
		return nil, err
	}
	if req.FamilyMemberID != v.FamilyMemberID {
		if _, err := s.members.Get(ctx, familyID, req.FamilyMemberID); err != nil {
			return nil, err
		}
	}

	if err := applyRequest(v, req); err != nil {
		return nil, err
	}
	if err := s.vaccinations.Update(ctx, v); err != nil {
		return nil, err
	}
	return s.flag(v), nil
}

func (s *Service) Delete(ctx context.Context, familyID, id uuid.UUID) (*model.Vaccination, error) {
	v, err := s.vaccinations.Get(ctx, familyID, id)
	if err != nil {
		return nil, err
	}
	if err := s.vaccinations.Delete(ctx, familyID, id); err != nil {
		return nil, err
	}
	return v, nil
}

// List returns vaccinations newest first with next_dose_due set. Store
// errors yield an empty list.
func (s *Service) List(ctx context.Context, familyID uuid.UUID, memberID *uuid.UUID) []*model.Vaccination {
	list, err := s.vaccinations.List(ctx, familyID, memberID, 0)
	if err != nil {
		log.Error().Err(err).Str("family_id", familyID.String()).Msg("failed to list vaccinations")
		return []*model.Vaccination{}
	}

	out := make([]*model.Vaccination, 0, len(list))
	for _, v := range list {
		out = append(out, s.flag(v))
	}
	return out
}

// NextDoseDue reports whether the next dose falls on or before today plus
// the due window. Overdue doses count.
func NextDoseDue(v *model.Vaccination, now time.Time) bool {
	if v.NextDoseDate == nil {
		return false
	}
	limit := model.DateOf(now).Add(DueWindow)
	return !v.NextDoseDate.After(limit)
}

func (s *Service) flag(v *model.Vaccination) *model.Vaccination {
	v.NextDoseDue = NextDoseDue(v, s.now())
	return v
}

func applyRequest(v *model.Vaccination, req *model.VaccinationRequest) error {
	given, err := timefmt.ParseDate(req.DateAdministered)
	if err != nil {
		return apperrors.BadRequest(err.Error(), nil)
	}

	var next *model.Date
	if req.NextDoseDate != "" {
		t, err := timefmt.ParseDate(req.NextDoseDate)
		if err != nil {
			return apperrors.BadRequest(err.Error(), nil)
		}
		d := model.DateOf(t)
		next = &d
	}

	v.FamilyMemberID = req.FamilyMemberID
	v.VaccineName = req.VaccineName
	v.DateAdministered = model.DateOf(given)
	v.NextDoseDate = next
	v.AdministeredBy = model.StrPtr(req.AdministeredBy)
	v.Location = model.StrPtr(req.Location)
	v.BatchNumber = model.StrPtr(req.BatchNumber)
	v.Notes = model.StrPtr(req.Notes)
	return nil
}
