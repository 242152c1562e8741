package record

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safefam/api/internal/model"
	"github.com/safefam/api/internal/repository/repotest"
	apperrors "github.com/safefam/api/pkg/errors"
)

func TestGroupByType(t *testing.T) {
	records := []*model.HealthRecord{
		{Title: "a", RecordType: "lab_result"},
		{Title: "b", RecordType: "imaging"},
		{Title: "c", RecordType: "lab_result"},
	}

	groups := GroupByType(records)
	require.Len(t, groups, 2)
	assert.Equal(t, "lab_result", groups[0].RecordType)
	assert.Equal(t, []*model.HealthRecord{records[0], records[2]}, groups[0].Records)
	assert.Equal(t, "imaging", groups[1].RecordType)

	assert.NotNil(t, GroupByType(nil))
}

func recordRequest(memberID uuid.UUID, recordType, date string) *model.HealthRecordRequest {
	return &model.HealthRecordRequest{
		FamilyMemberID: memberID,
		RecordType:     recordType,
		Title:          recordType + " " + date,
		Date:           date,
	}
}

func TestListNewestFirstAndGrouped(t *testing.T) {
	store := repotest.NewStore()
	_, family, member := store.SeedFamily("Garcia", "Ana Garcia")
	svc := NewService(store.HealthRecordRepo(), store.MemberRepo())
	ctx := context.Background()

	for _, r := range []*model.HealthRecordRequest{
		recordRequest(member.ID, "lab_result", "2025-01-10"),
		recordRequest(member.ID, "imaging", "2025-03-01"),
		recordRequest(member.ID, "lab_result", "2025-04-02"),
	} {
		_, err := svc.Create(ctx, family.ID, r)
		require.NoError(t, err)
	}

	list := svc.List(ctx, family.ID, nil)
	require.Len(t, list.Records, 3)
	assert.Equal(t, "2025-04-02", list.Records[0].Date.String())
	require.Len(t, list.Groups, 2)
	assert.Equal(t, "lab_result", list.Groups[0].RecordType)
	assert.Len(t, list.Groups[0].Records, 2)

	filtered := svc.List(ctx, family.ID, &model.HealthRecordFilters{RecordType: "imaging"})
	assert.Len(t, filtered.Records, 1)
}

func TestListDegradesToEmpty(t *testing.T) {
	store := repotest.NewStore()
	_, family, _ := store.SeedFamily("Garcia", "Ana Garcia")
	svc := NewService(store.HealthRecordRepo(), store.MemberRepo())
	store.Err = errors.New("down")

	list := svc.List(context.Background(), family.ID, nil)
	assert.NotNil(t, list.Records)
	assert.Empty(t, list.Groups)
}

func TestCrossFamilyAccess(t *testing.T) {
	store := repotest.NewStore()
	_, family, member := store.SeedFamily("Garcia", "Ana Garcia")
	_, other, _ := store.SeedFamily("Smith", "Bob Smith")
	svc := NewService(store.HealthRecordRepo(), store.MemberRepo())
	ctx := context.Background()

	rec, err := svc.Create(ctx, family.ID, recordRequest(member.ID, "lab_result", "2025-01-10"))
	require.NoError(t, err)

	_, err = svc.Get(ctx, other.ID, rec.ID)
	assert.True(t, apperrors.IsNotFound(err))
	_, err = svc.Update(ctx, other.ID, rec.ID, recordRequest(member.ID, "lab_result", "2025-01-11"))
	assert.True(t, apperrors.IsNotFound(err))
}
