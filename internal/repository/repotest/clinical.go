package repotest

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/safefam/api/internal/model"
	apperrors "github.com/safefam/api/pkg/errors"
	"github.com/safefam/api/pkg/timefmt"
)

type medicationRepo struct{ s *Store }

func (r *medicationRepo) Create(_ context.Context, med *model.Medication) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}

	med.ID = uuid.New()
	med.CreatedAt = r.s.stamp()
	med.UpdatedAt = med.CreatedAt
	c := *med
	r.s.Medications[c.ID] = &c
	return nil
}

func (r *medicationRepo) Get(_ context.Context, familyID, id uuid.UUID) (*model.Medication, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}

	med, ok := r.s.Medications[id]
	if !ok || !r.s.inFamily(familyID, med.FamilyMemberID) {
		return nil, apperrors.NotFound("medication", nil)
	}
	c := *med
	c.MemberName = r.s.memberName(c.FamilyMemberID)
	return &c, nil
}

func (r *medicationRepo) Update(_ context.Context, med *model.Medication) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}

	if _, ok := r.s.Medications[med.ID]; !ok {
		return apperrors.NotFound("medication", nil)
	}
	med.UpdatedAt = r.s.stamp()
	c := *med
	r.s.Medications[c.ID] = &c
	return nil
}

func (r *medicationRepo) Delete(_ context.Context, familyID, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}

	med, ok := r.s.Medications[id]
	if !ok || !r.s.inFamily(familyID, med.FamilyMemberID) {
		return apperrors.NotFound("medication", nil)
	}
	delete(r.s.Medications, id)
	return nil
}

func (r *medicationRepo) List(_ context.Context, familyID uuid.UUID, filters *model.MedicationFilters) ([]*model.Medication, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}

	var out []*model.Medication
	for _, med := range r.s.Medications {
		if !r.s.inFamily(familyID, med.FamilyMemberID) {
			continue
		}
		if filters != nil {
			if filters.FamilyMemberID != nil && med.FamilyMemberID != *filters.FamilyMemberID {
				continue
			}
			if filters.ActiveOnly && !med.IsActive {
				continue
			}
		}
		c := *med
		c.MemberName = r.s.memberName(c.FamilyMemberID)
		out = append(out, &c)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].IsActive != out[j].IsActive {
			return out[i].IsActive
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

type medicationLogRepo struct{ s *Store }

func (r *medicationLogRepo) Create(_ context.Context, log *model.MedicationLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}

	log.ID = uuid.New()
	log.CreatedAt = r.s.stamp()
	c := *log
	r.s.Logs = append(r.s.Logs, &c)
	return nil
}

func (r *medicationLogRepo) ListByMedication(_ context.Context, medicationID uuid.UUID, limit int) ([]*model.MedicationLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}

	var out []*model.MedicationLog
	for i := len(r.s.Logs) - 1; i >= 0; i-- {
		if r.s.Logs[i].MedicationID == medicationID {
			c := *r.s.Logs[i]
			out = append(out, &c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ScheduledTime.After(out[j].ScheduledTime.Time)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *medicationLogRepo) ListBetween(_ context.Context, medicationID uuid.UUID, from, to time.Time) ([]*model.MedicationLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}

	var out []*model.MedicationLog
	for _, l := range r.s.Logs {
		if l.MedicationID == medicationID && !l.ScheduledTime.Before(from) && l.ScheduledTime.Before(to) {
			c := *l
			out = append(out, &c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ScheduledTime.Before(out[j].ScheduledTime.Time)
	})
	return out, nil
}

type appointmentRepo struct{ s *Store }

func (r *appointmentRepo) Create(_ context.Context, a *model.Appointment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}

	a.ID = uuid.New()
	a.CreatedAt = r.s.stamp()
	a.UpdatedAt = a.CreatedAt
	c := *a
	r.s.Appointments[c.ID] = &c
	return nil
}

func (r *appointmentRepo) Get(_ context.Context, familyID, id uuid.UUID) (*model.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}

	a, ok := r.s.Appointments[id]
	if !ok || !r.s.inFamily(familyID, a.FamilyMemberID) {
		return nil, apperrors.NotFound("appointment", nil)
	}
	c := *a
	c.MemberName = r.s.memberName(c.FamilyMemberID)
	return &c, nil
}

func (r *appointmentRepo) Update(_ context.Context, a *model.Appointment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}

	if _, ok := r.s.Appointments[a.ID]; !ok {
		return apperrors.NotFound("appointment", nil)
	}
	a.UpdatedAt = r.s.stamp()
	c := *a
	r.s.Appointments[c.ID] = &c
	return nil
}

func (r *appointmentRepo) UpdateStatus(_ context.Context, id uuid.UUID, status model.AppointmentStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}

	a, ok := r.s.Appointments[id]
	if !ok {
		return apperrors.NotFound("appointment", nil)
	}
	a.Status = status
	a.UpdatedAt = r.s.stamp()
	return nil
}

func (r *appointmentRepo) Delete(_ context.Context, familyID, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}

	a, ok := r.s.Appointments[id]
	if !ok || !r.s.inFamily(familyID, a.FamilyMemberID) {
		return apperrors.NotFound("appointment", nil)
	}
	delete(r.s.Appointments, id)
	return nil
}

func (r *appointmentRepo) List(_ context.Context, familyID uuid.UUID, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}

	var out []*model.Appointment
	for _, a := range r.s.Appointments {
		if !r.s.inFamily(familyID, a.FamilyMemberID) {
			continue
		}
		if filters != nil {
			if filters.FamilyMemberID != nil && a.FamilyMemberID != *filters.FamilyMemberID {
				continue
			}
			if filters.Status != "" && string(a.Status) != filters.Status {
				continue
			}
		}
		c := *a
		c.MemberName = r.s.memberName(c.FamilyMemberID)
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].AppointmentDate.Before(out[j].AppointmentDate.Time)
	})
	return out, nil
}

func (r *appointmentRepo) ListUpcoming(_ context.Context, familyID uuid.UUID, memberID *uuid.UUID, now time.Time, limit int) ([]*model.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}

	wall := timefmt.Wall(now)
	var out []*model.Appointment
	for _, a := range r.s.Appointments {
		if !r.s.inFamily(familyID, a.FamilyMemberID) || a.Status != model.AppointmentStatusScheduled {
			continue
		}
		if memberID != nil && a.FamilyMemberID != *memberID {
			continue
		}
		if a.AppointmentDate.Before(wall) {
			continue
		}
		c := *a
		c.MemberName = r.s.memberName(c.FamilyMemberID)
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].AppointmentDate.Before(out[j].AppointmentDate.Time)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type vaccinationRepo struct{ s *Store }

func (r *vaccinationRepo) Create(_ context.Context, v *model.Vaccination) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}

	v.ID = uuid.New()
	v.CreatedAt = r.s.stamp()
	v.UpdatedAt = v.CreatedAt
	c := *v
	r.s.Vaccinations[c.ID] = &c
	return nil
}

func (r *vaccinationRepo) Get(_ context.Context, familyID, id uuid.UUID) (*model.Vaccination, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}

	v, ok := r.s.Vaccinations[id]
	if !ok || !r.s.inFamily(familyID, v.FamilyMemberID) {
		return nil, apperrors.NotFound("vaccination", nil)
	}
	c := *v
	c.MemberName = r.s.memberName(c.FamilyMemberID)
	return &c, nil
}

func (r *vaccinationRepo) Update(_ context.Context, v *model.Vaccination) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}

	if _, ok := r.s.Vaccinations[v.ID]; !ok {
		return apperrors.NotFound("vaccination", nil)
	}
	v.UpdatedAt = r.s.stamp()
	c := *v
	r.s.Vaccinations[c.ID] = &c
	return nil
}

func (r *vaccinationRepo) Delete(_ context.Context, familyID, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}

	v, ok := r.s.Vaccinations[id]
	if !ok || !r.s.inFamily(familyID, v.FamilyMemberID) {
		return apperrors.NotFound("vaccination", nil)
	}
	delete(r.s.Vaccinations, id)
	return nil
}

func (r *vaccinationRepo) List(_ context.Context, familyID uuid.UUID, memberID *uuid.UUID, limit int) ([]*model.Vaccination, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}

	var out []*model.Vaccination
	for _, v := range r.s.Vaccinations {
		if !r.s.inFamily(familyID, v.FamilyMemberID) {
			continue
		}
		if memberID != nil && v.FamilyMemberID != *memberID {
			continue
		}
		c := *v
		c.MemberName = r.s.memberName(c.FamilyMemberID)
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DateAdministered.Equal(out[j].DateAdministered.Time) {
			return out[i].DateAdministered.After(out[j].DateAdministered.Time)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type healthRecordRepo struct{ s *Store }

func (r *healthRecordRepo) Create(_ context.Context, rec *model.HealthRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}

	rec.ID = uuid.New()
	rec.CreatedAt = r.s.stamp()
	rec.UpdatedAt = rec.CreatedAt
	c := *rec
	r.s.Records[c.ID] = &c
	return nil
}

func (r *healthRecordRepo) Get(_ context.Context, familyID, id uuid.UUID) (*model.HealthRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}

	rec, ok := r.s.Records[id]
	if !ok || !r.s.inFamily(familyID, rec.FamilyMemberID) {
		return nil, apperrors.NotFound("health record", nil)
	}
	c := *rec
	c.MemberName = r.s.memberName(c.FamilyMemberID)
	return &c, nil
}

func (r *healthRecordRepo) Update(_ context.Context, rec *model.HealthRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}

	if _, ok := r.s.Records[rec.ID]; !ok {
		return apperrors.NotFound("health record", nil)
	}
	rec.UpdatedAt = r.s.stamp()
	c := *rec
	r.s.Records[c.ID] = &c
	return nil
}

func (r *healthRecordRepo) Delete(_ context.Context, familyID, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}

	rec, ok := r.s.Records[id]
	if !ok || !r.s.inFamily(familyID, rec.FamilyMemberID) {
		return apperrors.NotFound("health record", nil)
	}
	delete(r.s.Records, id)
	return nil
}

func (r *healthRecordRepo) List(_ context.Context, familyID uuid.UUID, filters *model.HealthRecordFilters) ([]*model.HealthRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}

	var out []*model.HealthRecord
	for _, rec := range r.s.Records {
		if !r.s.inFamily(familyID, rec.FamilyMemberID) {
			continue
		}
		if filters != nil {
			if filters.FamilyMemberID != nil && rec.FamilyMemberID != *filters.FamilyMemberID {
				continue
			}
			if filters.RecordType != "" && rec.RecordType != filters.RecordType {
				continue
			}
		}
		c := *rec
		c.MemberName = r.s.memberName(c.FamilyMemberID)
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.After(out[j].Date.Time)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

type insightsRepo struct{ s *Store }

func (r *insightsRepo) Counts(_ context.Context, familyID uuid.UUID, now time.Time) (*model.Insights, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}

	wall := timefmt.Wall(now)
	var ins model.Insights
	for _, med := range r.s.Medications {
		if med.IsActive && r.s.inFamily(familyID, med.FamilyMemberID) {
			ins.ActiveMedications++
		}
	}
	for _, a := range r.s.Appointments {
		if a.Status == model.AppointmentStatusScheduled && !a.AppointmentDate.Before(wall) && r.s.inFamily(familyID, a.FamilyMemberID) {
			ins.UpcomingAppointments++
		}
	}
	for _, v := range r.s.Vaccinations {
		if r.s.inFamily(familyID, v.FamilyMemberID) {
			ins.Vaccinations++
		}
	}
	for _, rec := range r.s.Records {
		if r.s.inFamily(familyID, rec.FamilyMemberID) {
			ins.HealthRecords++
		}
	}
	return &ins, nil
}
