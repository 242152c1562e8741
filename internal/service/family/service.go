package family

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"

	"github.com/safefam/api/internal/model"
	"github.com/safefam/api/internal/repository"
	apperrors "github.com/safefam/api/pkg/errors"
	"github.com/safefam/api/pkg/textlist"
	"github.com/safefam/api/pkg/timefmt"
)

const (
	contextCacheTTL     = 5 * time.Minute
	relationshipSelf    = "Self"
	detailListLimit     = 5
	errDeletePrimary    = "cannot delete the primary account member"
	errAlreadyOnboarded = "family already set up for this account"
)

type Service struct {
	families     repository.FamilyRepository
	members      repository.MemberRepository
	medications  repository.MedicationRepository
	appointments repository.AppointmentRepository
	vaccinations repository.VaccinationRepository
	contexts     *gocache.Cache
	now          func() time.Time
}

func NewService(
	families repository.FamilyRepository,
	members repository.MemberRepository,
	medications repository.MedicationRepository,
	appointments repository.AppointmentRepository,
	vaccinations repository.VaccinationRepository,
) *Service {
	return &Service{
		families:     families,
		members:      members,
		medications:  medications,
		appointments: appointments,
		vaccinations: vaccinations,
		contexts:     gocache.New(contextCacheTTL, 2*contextCacheTTL),
		now:          time.Now,
	}
}

// ResolveContext maps a logged-in user onto their family. Users without a
// member row get an OnboardingRequired error.
func (s *Service) ResolveContext(ctx context.Context, userID uuid.UUID) (*model.FamilyContext, error) {
	key := userID.String()
	if cached, ok := s.contexts.Get(key); ok {
		return cached.(*model.FamilyContext), nil
	}

	member, err := s.members.GetByProfile(ctx, userID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.OnboardingRequired()
		}
		return nil, fmt.Errorf("failed to resolve family context: %w", err)
	}

	fc := &model.FamilyContext{UserID: userID, FamilyID: member.FamilyID, MemberID: member.ID}
	s.contexts.Set(key, fc, gocache.DefaultExpiration)
	return fc, nil
}

func (s *Service) InvalidateContext(userID uuid.UUID) {
	s.contexts.Delete(userID.String())
}

// Onboard creates the caller's family and their primary member in one
// transaction.
func (s *Service) Onboard(ctx context.Context, userID uuid.UUID, req *model.OnboardingRequest) (*model.FamilyContext, error) {
	existing, err := s.members.GetByProfile(ctx, userID)
	if err != nil && !apperrors.IsNotFound(err) {
		return nil, fmt.Errorf("failed to check existing membership: %w", err)
	}
	if existing != nil {
		return nil, apperrors.Conflict(errAlreadyOnboarded)
	}

	dob, err := optionalDate(req.DateOfBirth)
	if err != nil {
		return nil, err
	}

	family := &model.Family{Name: req.FamilyName, CreatedBy: userID}
	primary := &model.FamilyMember{
		ProfileID:        &userID,
		FullName:         req.FullName,
		Relationship:     model.StrPtr(relationshipSelf),
		DateOfBirth:      dob,
		BloodType:        normalizeBloodType(req.BloodType),
		EmergencyContact: model.StrPtr(req.EmergencyContact),
		EmergencyPhone:   model.StrPtr(req.EmergencyPhone),
		IsPrimaryAccount: true,
	}

	if err := s.families.Onboard(ctx, family, primary); err != nil {
		if apperrors.HasCode(err, apperrors.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to onboard family: %w", err)
	}

	s.InvalidateContext(userID)
	return &model.FamilyContext{UserID: userID, FamilyID: family.ID, MemberID: primary.ID}, nil
}

func (s *Service) GetFamily(ctx context.Context, familyID uuid.UUID) (*model.Family, error) {
	return s.families.Get(ctx, familyID)
}

func (s *Service) UpdateFamily(ctx context.Context, familyID uuid.UUID, req *model.UpdateFamilyRequest) (*model.Family, error) {
	family, err := s.families.Get(ctx, familyID)
	if err != nil {
		return nil, err
	}
	family.Name = req.Name
	if err := s.families.Update(ctx, family); err != nil {
		return nil, err
	}
	return family, nil
}

// ListMembers never fails: store errors are logged and reported as an
// empty list.
func (s *Service) ListMembers(ctx context.Context, familyID uuid.UUID, order repository.MemberOrder) []*model.FamilyMember {
	members, err := s.members.List(ctx, familyID, order)
	if err != nil {
		log.Error().Err(err).Str("family_id", familyID.String()).Msg("failed to list family members")
		return []*model.FamilyMember{}
	}
	if members == nil {
		return []*model.FamilyMember{}
	}
	return members
}

func (s *Service) AddMember(ctx context.Context, familyID uuid.UUID, req *model.MemberRequest) (*model.FamilyMember, error) {
	member := &model.FamilyMember{FamilyID: familyID}
	if err := applyMemberRequest(member, req); err != nil {
		return nil, err
	}
	if err := s.members.Create(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

func (s *Service) GetMember(ctx context.Context, familyID, id uuid.UUID) (*model.FamilyMember, error) {
	return s.members.Get(ctx, familyID, id)
}

func (s *Service) UpdateMember(ctx context.Context, familyID, id uuid.UUID, req *model.MemberRequest) (*model.FamilyMember, error) {
	member, err := s.members.Get(ctx, familyID, id)
	if err != nil {
		return nil, err
	}
	if err := applyMemberRequest(member, req); err != nil {
		return nil, err
	}
	if err := s.members.Update(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

func (s *Service) DeleteMember(ctx context.Context, familyID, id uuid.UUID) (*model.FamilyMember, error) {
	member, err := s.members.Get(ctx, familyID, id)
	if err != nil {
		return nil, err
	}
	if member.IsPrimaryAccount {
		return nil, apperrors.BadRequest(errDeletePrimary, nil)
	}
	if err := s.members.Delete(ctx, familyID, id); err != nil {
		return nil, err
	}
	if member.ProfileID != nil {
		s.InvalidateContext(*member.ProfileID)
	}
	return member, nil
}

// MemberDetail loads the member profile page. Only the member lookup can
// fail; the related lists degrade to empty.
func (s *Service) MemberDetail(ctx context.Context, familyID, id uuid.UUID) (*model.MemberDetail, error) {
	member, err := s.members.Get(ctx, familyID, id)
	if err != nil {
		return nil, err
	}

	detail := &model.MemberDetail{
		Member:               member,
		ActiveMedications:    []*model.Medication{},
		UpcomingAppointments: []*model.Appointment{},
		RecentVaccinations:   []*model.Vaccination{},
	}

	meds, err := s.medications.List(ctx, familyID, &model.MedicationFilters{FamilyMemberID: &id, ActiveOnly: true})
	if err != nil {
		log.Error().Err(err).Str("member_id", id.String()).Msg("failed to load member medications")
	} else if meds != nil {
		detail.ActiveMedications = meds
	}

	appts, err := s.appointments.ListUpcoming(ctx, familyID, &id, timefmt.Wall(s.now()), detailListLimit)
	if err != nil {
		log.Error().Err(err).Str("member_id", id.String()).Msg("failed to load member appointments")
	} else if appts != nil {
		detail.UpcomingAppointments = appts
	}

	vax, err := s.vaccinations.List(ctx, familyID, &id, detailListLimit)
	if err != nil {
		log.Error().Err(err).Str("member_id", id.String()).Msg("failed to load member vaccinations")
	} else if vax != nil {
		detail.RecentVaccinations = vax
	}

	return detail, nil
}

// Emergency lists every member's critical information, primary account
// first and then by name.
func (s *Service) Emergency(ctx context.Context, familyID uuid.UUID) []*model.EmergencyCard {
	members := s.ListMembers(ctx, familyID, repository.MemberOrderEmergency)

	cards := make([]*model.EmergencyCard, 0, len(members))
	for _, m := range members {
		cards = append(cards, &model.EmergencyCard{
			MemberID:          m.ID,
			FullName:          m.FullName,
			IsPrimaryAccount:  m.IsPrimaryAccount,
			BloodType:         m.BloodType,
			Allergies:         nonNil(m.Allergies),
			ChronicConditions: nonNil(m.ChronicConditions),
			EmergencyContact:  m.EmergencyContact,
			EmergencyPhone:    m.EmergencyPhone,
		})
	}
	return cards
}

func applyMemberRequest(member *model.FamilyMember, req *model.MemberRequest) error {
	dob, err := optionalDate(req.DateOfBirth)
	if err != nil {
		return err
	}

	member.FullName = req.FullName
	member.Relationship = model.StrPtr(req.Relationship)
	member.DateOfBirth = dob
	member.BloodType = normalizeBloodType(req.BloodType)
	member.Allergies = textlist.SplitOrNil(req.Allergies)
	member.ChronicConditions = textlist.SplitOrNil(req.ChronicConditions)
	member.EmergencyContact = model.StrPtr(req.EmergencyContact)
	member.EmergencyPhone = model.StrPtr(req.EmergencyPhone)
	return nil
}

func optionalDate(s string) (*model.Date, error) {
	if s == "" {
		return nil, nil
	}
	t, err := timefmt.ParseDate(s)
	if err != nil {
		return nil, apperrors.BadRequest(err.Error(), nil)
	}
	d := model.DateOf(t)
	return &d, nil
}

func normalizeBloodType(s string) *string {
	p := model.StrPtr(s)
	if p == nil {
		return nil
	}
	upper := strings.ToUpper(*p)
	return &upper
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
