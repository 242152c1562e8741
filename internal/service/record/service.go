package record

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/safefam/api/internal/model"
	"github.com/safefam/api/internal/repository"
	apperrors "github.com/safefam/api/pkg/errors"
	"github.com/safefam/api/pkg/timefmt"
)

type Service struct {
	records repository.HealthRecordRepository
	members repository.MemberRepository
}

func NewService(records repository.HealthRecordRepository, members repository.MemberRepository) *Service {
	return &Service{records: records, members: members}
}

func (s *Service) Create(ctx context.Context, familyID uuid.UUID, req *model.HealthRecordRequest) (*model.HealthRecord, error) {
	if _, err := s.members.Get(ctx, familyID, req.FamilyMemberID); err != nil {
		return nil, err
	}

	rec := &model.HealthRecord{}
	if err := applyRequest(rec, req); err != nil {
		return nil, err
	}
	if err := s.records.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Service) Get(ctx context.Context, familyID, id uuid.UUID) (*model.HealthRecord, error) {
	return s.records.Get(ctx, familyID, id)
}

func (s *Service) Update(ctx context.Context, familyID, id uuid.UUID, req *model.HealthRecordRequest) (*model.HealthRecord, error) {
	rec, err := s.records.Get(ctx, familyID, id)
	if err != nil {
		return nil, err
	}
	if req.FamilyMemberID != rec.FamilyMemberID {
		if _, err := s.members.Get(ctx, familyID, req.FamilyMemberID); err != nil {
			return nil, err
		}
	}

	if err := applyRequest(rec, req); err != nil {
		return nil, err
	}
	if err := s.records.Update(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Service) Delete(ctx context.Context, familyID, id uuid.UUID) (*model.HealthRecord, error) {
	rec, err := s.records.Get(ctx, familyID, id)
	if err != nil {
		return nil, err
	}
	if err := s.records.Delete(ctx, familyID, id); err != nil {
		return nil, err
	}
	return rec, nil
}

// List returns the records newest first along with their grouping by type.
// Store errors yield an empty list.
func (s *Service) List(ctx context.Context, familyID uuid.UUID, filters *model.HealthRecordFilters) *model.HealthRecordList {
	records, err := s.records.List(ctx, familyID, filters)
	if err != nil {
		log.Error().Err(err).Str("family_id", familyID.String()).Msg("failed to list health records")
		records = nil
	}
	if records == nil {
		records = []*model.HealthRecord{}
	}
	return &model.HealthRecordList{Records: records, Groups: GroupByType(records)}
}

// GroupByType buckets records by record_type. Groups appear in order of
// first occurrence and keep the input order within each group.
func GroupByType(records []*model.HealthRecord) []*model.HealthRecordGroup {
	groups := []*model.HealthRecordGroup{}
	index := map[string]*model.HealthRecordGroup{}
	for _, r := range records {
		g, ok := index[r.RecordType]
		if !ok {
			g = &model.HealthRecordGroup{RecordType: r.RecordType}
			index[r.RecordType] = g
			groups = append(groups, g)
		}
		g.Records = append(g.Records, r)
	}
	return groups
}

func applyRequest(rec *model.HealthRecord, req *model.HealthRecordRequest) error {
	date, err := timefmt.ParseDate(req.Date)
	if err != nil {
		return apperrors.BadRequest(err.Error(), nil)
	}

	rec.FamilyMemberID = req.FamilyMemberID
	rec.RecordType = req.RecordType
	rec.Title = req.Title
	rec.Description = model.StrPtr(req.Description)
	rec.Date = model.DateOf(date)
	rec.DoctorName = model.StrPtr(req.DoctorName)
	rec.Facility = model.StrPtr(req.Facility)
	rec.FileURL = model.StrPtr(req.FileURL)
	return nil
}
