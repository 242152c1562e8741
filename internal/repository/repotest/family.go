package repotest

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/safefam/api/internal/model"
	"github.com/safefam/api/internal/repository"
	apperrors "github.com/safefam/api/pkg/errors"
)

type familyRepo struct{ s *Store }

func (r *familyRepo) Onboard(_ context.Context, family *model.Family, primary *model.FamilyMember) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}

	if primary.ProfileID != nil {
		for _, m := range r.s.Members {
			if m.ProfileID != nil && *m.ProfileID == *primary.ProfileID {
				return apperrors.Conflict("family already set up for this account")
			}
		}
	}

	now := r.s.stamp()
	family.ID = uuid.New()
	family.CreatedAt, family.UpdatedAt = now, now
	primary.ID = uuid.New()
	primary.FamilyID = family.ID
	primary.IsPrimaryAccount = true
	primary.CreatedAt, primary.UpdatedAt = now, now

	f, m := *family, *primary
	r.s.Families[f.ID] = &f
	r.s.Members[m.ID] = &m
	return nil
}

func (r *familyRepo) Get(_ context.Context, id uuid.UUID) (*model.Family, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}

	f, ok := r.s.Families[id]
	if !ok {
		return nil, apperrors.NotFound("family", nil)
	}
	c := *f
	return &c, nil
}

func (r *familyRepo) Update(_ context.Context, family *model.Family) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}

	if _, ok := r.s.Families[family.ID]; !ok {
		return apperrors.NotFound("family", nil)
	}
	family.UpdatedAt = r.s.stamp()
	c := *family
	r.s.Families[family.ID] = &c
	return nil
}

type memberRepo struct{ s *Store }

func (r *memberRepo) Create(_ context.Context, member *model.FamilyMember) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}

	member.ID = uuid.New()
	member.CreatedAt = r.s.stamp()
	member.UpdatedAt = member.CreatedAt
	c := *member
	r.s.Members[c.ID] = &c
	return nil
}

func (r *memberRepo) Get(_ context.Context, familyID, id uuid.UUID) (*model.FamilyMember, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}

	if !r.s.inFamily(familyID, id) {
		return nil, apperrors.NotFound("family member", nil)
	}
	c := *r.s.Members[id]
	return &c, nil
}

func (r *memberRepo) GetByProfile(_ context.Context, profileID uuid.UUID) (*model.FamilyMember, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}

	for _, m := range r.s.Members {
		if m.ProfileID != nil && *m.ProfileID == profileID {
			c := *m
			return &c, nil
		}
	}
	return nil, apperrors.NotFound("family member", nil)
}

func (r *memberRepo) Update(_ context.Context, member *model.FamilyMember) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}

	if !r.s.inFamily(member.FamilyID, member.ID) {
		return apperrors.NotFound("family member", nil)
	}
	member.UpdatedAt = r.s.stamp()
	c := *member
	r.s.Members[c.ID] = &c
	return nil
}

func (r *memberRepo) Delete(_ context.Context, familyID, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}

	if !r.s.inFamily(familyID, id) || r.s.Members[id].IsPrimaryAccount {
		return apperrors.NotFound("family member", nil)
	}
	delete(r.s.Members, id)
	for medID, med := range r.s.Medications {
		if med.FamilyMemberID == id {
			delete(r.s.Medications, medID)
		}
	}
	for apptID, a := range r.s.Appointments {
		if a.FamilyMemberID == id {
			delete(r.s.Appointments, apptID)
		}
	}
	for vaxID, v := range r.s.Vaccinations {
		if v.FamilyMemberID == id {
			delete(r.s.Vaccinations, vaxID)
		}
	}
	for recID, rec := range r.s.Records {
		if rec.FamilyMemberID == id {
			delete(r.s.Records, recID)
		}
	}
	return nil
}

func (r *memberRepo) List(_ context.Context, familyID uuid.UUID, order repository.MemberOrder) ([]*model.FamilyMember, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}

	var out []*model.FamilyMember
	for _, m := range r.s.Members {
		if m.FamilyID == familyID {
			c := *m
			out = append(out, &c)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		switch order {
		case repository.MemberOrderName:
			return out[i].FullName < out[j].FullName
		case repository.MemberOrderEmergency:
			if out[i].IsPrimaryAccount != out[j].IsPrimaryAccount {
				return out[i].IsPrimaryAccount
			}
			return out[i].FullName < out[j].FullName
		default:
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
	})
	return out, nil
}
