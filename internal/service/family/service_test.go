package family

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safefam/api/internal/model"
	"github.com/safefam/api/internal/repository"
	"github.com/safefam/api/internal/repository/repotest"
	apperrors "github.com/safefam/api/pkg/errors"
)

func newService(store *repotest.Store) *Service {
	return NewService(store.FamilyRepo(), store.MemberRepo(), store.MedicationRepo(), store.AppointmentRepo(), store.VaccinationRepo())
}

func TestOnboardAndResolveContext(t *testing.T) {
	store := repotest.NewStore()
	svc := newService(store)
	ctx := context.Background()
	userID := uuid.New()

	_, err := svc.ResolveContext(ctx, userID)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrOnboardingRequired))

	fc, err := svc.Onboard(ctx, userID, &model.OnboardingRequest{
		FamilyName:  "The Smiths",
		FullName:    "John Smith",
		DateOfBirth: "1980-04-12",
		BloodType:   "a+",
	})
	require.NoError(t, err)
	assert.Equal(t, userID, fc.UserID)

	resolved, err := svc.ResolveContext(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, fc.FamilyID, resolved.FamilyID)
	assert.Equal(t, fc.MemberID, resolved.MemberID)

	primary := store.Members[fc.MemberID]
	assert.True(t, primary.IsPrimaryAccount)
	assert.Equal(t, "Self", *primary.Relationship)
	assert.Equal(t, "A+", *primary.BloodType)
	assert.Equal(t, "1980-04-12", primary.DateOfBirth.String())

	_, err = svc.Onboard(ctx, userID, &model.OnboardingRequest{FamilyName: "Again", FullName: "John"})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrConflict))
}

// staleMembers misses rows written by a concurrent onboarding.
type staleMembers struct {
	repository.MemberRepository
}

func (staleMembers) GetByProfile(context.Context, uuid.UUID) (*model.FamilyMember, error) {
	return nil, apperrors.NotFound("family member", nil)
}

func TestOnboardRaceIsConflict(t *testing.T) {
	store := repotest.NewStore()
	svc := NewService(store.FamilyRepo(), staleMembers{store.MemberRepo()}, store.MedicationRepo(), store.AppointmentRepo(), store.VaccinationRepo())
	ctx := context.Background()
	userID := uuid.New()

	_, err := svc.Onboard(ctx, userID, &model.OnboardingRequest{FamilyName: "The Smiths", FullName: "John Smith"})
	require.NoError(t, err)

	_, err = svc.Onboard(ctx, userID, &model.OnboardingRequest{FamilyName: "The Smiths", FullName: "John Smith"})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrConflict))
	assert.Len(t, store.Families, 1)
}

func TestResolveContextIsCached(t *testing.T) {
	store := repotest.NewStore()
	svc := newService(store)
	user, fam, _ := store.SeedFamily("Smith", "John Smith")

	_, err := svc.ResolveContext(context.Background(), user.ID)
	require.NoError(t, err)

	store.Err = errors.New("db down")
	fc, err := svc.ResolveContext(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, fam.ID, fc.FamilyID)

	svc.InvalidateContext(user.ID)
	_, err = svc.ResolveContext(context.Background(), user.ID)
	assert.Error(t, err)
}

func TestAddMemberSplitsLists(t *testing.T) {
	store := repotest.NewStore()
	svc := newService(store)
	_, fam, _ := store.SeedFamily("Smith", "John Smith")

	member, err := svc.AddMember(context.Background(), fam.ID, &model.MemberRequest{
		FullName:     "Emily Smith",
		Relationship: "Daughter",
		Allergies:    "peanuts, shellfish",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"peanuts", "shellfish"}, []string(member.Allergies))
	assert.Nil(t, member.ChronicConditions)
	assert.False(t, member.IsPrimaryAccount)

	_, err = svc.AddMember(context.Background(), fam.ID, &model.MemberRequest{FullName: "Bad", DateOfBirth: "not-a-date"})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrBadRequest))
}

func TestDeleteMember(t *testing.T) {
	store := repotest.NewStore()
	svc := newService(store)
	_, fam, primary := store.SeedFamily("Smith", "John Smith")
	child := store.SeedMember(fam.ID, "Emily Smith")
	ctx := context.Background()

	_, err := svc.DeleteMember(ctx, fam.ID, primary.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrBadRequest))
	assert.Contains(t, store.Members, primary.ID)

	deleted, err := svc.DeleteMember(ctx, fam.ID, child.ID)
	require.NoError(t, err)
	assert.Equal(t, child.ID, deleted.ID)
	assert.NotContains(t, store.Members, child.ID)
}

func TestMembersAreFamilyScoped(t *testing.T) {
	store := repotest.NewStore()
	svc := newService(store)
	_, famA, _ := store.SeedFamily("A", "Alice")
	_, _, memberB := store.SeedFamily("B", "Bob")

	_, err := svc.GetMember(context.Background(), famA.ID, memberB.ID)
	assert.True(t, apperrors.IsNotFound(err))

	_, err = svc.UpdateMember(context.Background(), famA.ID, memberB.ID, &model.MemberRequest{FullName: "Hijack"})
	assert.True(t, apperrors.IsNotFound(err))
	assert.Equal(t, "Bob", store.Members[memberB.ID].FullName)
}

func TestListMembersDegradesToEmpty(t *testing.T) {
	store := repotest.NewStore()
	svc := newService(store)
	_, fam, _ := store.SeedFamily("Smith", "John Smith")

	assert.Len(t, svc.ListMembers(context.Background(), fam.ID, repository.MemberOrderCreated), 1)

	store.Err = errors.New("db down")
	members := svc.ListMembers(context.Background(), fam.ID, repository.MemberOrderCreated)
	assert.NotNil(t, members)
	assert.Empty(t, members)
}

func TestMemberDetail(t *testing.T) {
	store := repotest.NewStore()
	svc := newService(store)
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	_, fam, member := store.SeedFamily("Smith", "John Smith")

	active, inactive := uuid.New(), uuid.New()
	store.Medications[active] = &model.Medication{Base: model.Base{ID: active}, FamilyMemberID: member.ID, Name: "Active", IsActive: true}
	store.Medications[inactive] = &model.Medication{Base: model.Base{ID: inactive}, FamilyMemberID: member.ID, Name: "Stopped"}

	future, past := uuid.New(), uuid.New()
	store.Appointments[future] = &model.Appointment{
		Base: model.Base{ID: future}, FamilyMemberID: member.ID, Title: "Future",
		AppointmentDate: model.NewDateTime(now.Add(48 * time.Hour)), Status: model.AppointmentStatusScheduled,
	}
	store.Appointments[past] = &model.Appointment{
		Base: model.Base{ID: past}, FamilyMemberID: member.ID, Title: "Past",
		AppointmentDate: model.NewDateTime(now.Add(-48 * time.Hour)), Status: model.AppointmentStatusScheduled,
	}

	detail, err := svc.MemberDetail(context.Background(), fam.ID, member.ID)
	require.NoError(t, err)
	require.Len(t, detail.ActiveMedications, 1)
	assert.Equal(t, "Active", detail.ActiveMedications[0].Name)
	require.Len(t, detail.UpcomingAppointments, 1)
	assert.Equal(t, "Future", detail.UpcomingAppointments[0].Title)
	assert.NotNil(t, detail.RecentVaccinations)
	assert.Empty(t, detail.RecentVaccinations)
}

func TestEmergencyOrdersPrimaryFirst(t *testing.T) {
	store := repotest.NewStore()
	svc := newService(store)
	_, fam, _ := store.SeedFamily("Smith", "Zed Smith")
	store.SeedMember(fam.ID, "Anna Smith")

	cards := svc.Emergency(context.Background(), fam.ID)
	require.Len(t, cards, 2)
	assert.Equal(t, "Zed Smith", cards[0].FullName)
	assert.True(t, cards[0].IsPrimaryAccount)
	assert.Equal(t, "Anna Smith", cards[1].FullName)
	assert.Equal(t, []string{}, cards[1].Allergies)
}
