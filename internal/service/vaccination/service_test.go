package vaccination

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safefam/api/internal/model"
	"github.com/safefam/api/internal/repository/repotest"
	apperrors "github.com/safefam/api/pkg/errors"
)

func TestNextDoseDue(t *testing.T) {
	now := time.Date(2025, 6, 10, 18, 0, 0, 0, time.UTC)
	date := func(y int, m time.Month, d int) *model.Date {
		v := model.NewDate(y, m, d)
		return &v
	}

	assert.False(t, NextDoseDue(&model.Vaccination{}, now))
	assert.True(t, NextDoseDue(&model.Vaccination{NextDoseDate: date(2025, 7, 10)}, now))
	assert.False(t, NextDoseDue(&model.Vaccination{NextDoseDate: date(2025, 7, 11)}, now))
	assert.True(t, NextDoseDue(&model.Vaccination{NextDoseDate: date(2025, 5, 1)}, now))
}

func vaccinationRequest(memberID uuid.UUID, given, next string) *model.VaccinationRequest {
	return &model.VaccinationRequest{
		FamilyMemberID:   memberID,
		VaccineName:      "Tdap",
		DateAdministered: given,
		NextDoseDate:     next,
		Location:         "City Clinic",
	}
}

func TestListOrdersAndFlags(t *testing.T) {
	store := repotest.NewStore()
	_, family, member := store.SeedFamily("Garcia", "Ana Garcia")
	svc := NewService(store.VaccinationRepo(), store.MemberRepo())
	svc.now = func() time.Time { return time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	old, err := svc.Create(ctx, family.ID, vaccinationRequest(member.ID, "2024-01-05", ""))
	require.NoError(t, err)
	recent, err := svc.Create(ctx, family.ID, vaccinationRequest(member.ID, "2025-05-20", "2025-06-25"))
	require.NoError(t, err)

	list := svc.List(ctx, family.ID, nil)
	require.Len(t, list, 2)
	assert.Equal(t, recent.ID, list[0].ID)
	assert.True(t, list[0].NextDoseDue)
	assert.Equal(t, old.ID, list[1].ID)
	assert.False(t, list[1].NextDoseDue)
	assert.Equal(t, "Ana Garcia", list[0].MemberName)
}

func TestCreateRejectsForeignMember(t *testing.T) {
	store := repotest.NewStore()
	_, family, _ := store.SeedFamily("Garcia", "Ana Garcia")
	_, _, stranger := store.SeedFamily("Smith", "Bob Smith")
	svc := NewService(store.VaccinationRepo(), store.MemberRepo())

	_, err := svc.Create(context.Background(), family.ID, vaccinationRequest(stranger.ID, "2025-01-01", ""))
	assert.True(t, apperrors.IsNotFound(err))
}

func TestUpdateAndDelete(t *testing.T) {
	store := repotest.NewStore()
	_, family, member := store.SeedFamily("Garcia", "Ana Garcia")
	svc := NewService(store.VaccinationRepo(), store.MemberRepo())
	ctx := context.Background()

	v, err := svc.Create(ctx, family.ID, vaccinationRequest(member.ID, "2025-01-01", "2025-07-01"))
	require.NoError(t, err)

	req := vaccinationRequest(member.ID, "2025-01-02", "")
	req.BatchNumber = "B-1138"
	updated, err := svc.Update(ctx, family.ID, v.ID, req)
	require.NoError(t, err)
	assert.Nil(t, updated.NextDoseDate)
	require.NotNil(t, updated.BatchNumber)
	assert.Equal(t, "B-1138", *updated.BatchNumber)

	_, err = svc.Delete(ctx, family.ID, v.ID)
	require.NoError(t, err)
	assert.Empty(t, svc.List(ctx, family.ID, nil))
}
