// Package repotest provides in-memory repositories for service and handler
// tests. They honour the same family scoping and ordering as the Postgres
// implementations.
package repotest

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/safefam/api/internal/model"
	"github.com/safefam/api/internal/repository"
)

type Store struct {
	mu sync.Mutex

	Users         map[uuid.UUID]*model.User
	Tokens        []*model.UserToken
	Families      map[uuid.UUID]*model.Family
	Members       map[uuid.UUID]*model.FamilyMember
	Medications   map[uuid.UUID]*model.Medication
	Logs          []*model.MedicationLog
	Appointments  map[uuid.UUID]*model.Appointment
	Vaccinations  map[uuid.UUID]*model.Vaccination
	Records       map[uuid.UUID]*model.HealthRecord
	Outbox        []*model.OutboxEvent
	DeadLetters   []*model.OutboxEvent
	Notifications []*model.Notification

	// Err, when set, is returned by every repository call.
	Err error
	// Now is the clock used for "today" and due checks.
	Now func() time.Time

	tick time.Time
}

func NewStore() *Store {
	return &Store{
		Users:        map[uuid.UUID]*model.User{},
		Families:     map[uuid.UUID]*model.Family{},
		Members:      map[uuid.UUID]*model.FamilyMember{},
		Medications:  map[uuid.UUID]*model.Medication{},
		Appointments: map[uuid.UUID]*model.Appointment{},
		Vaccinations: map[uuid.UUID]*model.Vaccination{},
		Records:      map[uuid.UUID]*model.HealthRecord{},
		Now:          time.Now,
		tick:         time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// stamp returns strictly increasing timestamps so created_at ordering is
// deterministic.
func (s *Store) stamp() time.Time {
	s.tick = s.tick.Add(time.Millisecond)
	return s.tick
}

func (s *Store) FamilyRepo() repository.FamilyRepository         { return &familyRepo{s} }
func (s *Store) MemberRepo() repository.MemberRepository         { return &memberRepo{s} }
func (s *Store) MedicationRepo() repository.MedicationRepository { return &medicationRepo{s} }
func (s *Store) MedicationLogRepo() repository.MedicationLogRepository {
	return &medicationLogRepo{s}
}
func (s *Store) AppointmentRepo() repository.AppointmentRepository { return &appointmentRepo{s} }
func (s *Store) VaccinationRepo() repository.VaccinationRepository { return &vaccinationRepo{s} }
func (s *Store) HealthRecordRepo() repository.HealthRecordRepository {
	return &healthRecordRepo{s}
}
func (s *Store) InsightsRepo() repository.InsightsRepository         { return &insightsRepo{s} }
func (s *Store) UserRepo() repository.UserRepository                 { return &userRepo{s} }
func (s *Store) TokenRepo() repository.TokenRepository               { return &tokenRepo{s} }
func (s *Store) OutboxRepo() repository.OutboxRepository             { return &outboxRepo{s} }
func (s *Store) NotificationRepo() repository.NotificationRepository { return &notificationRepo{s} }
func (s *Store) ReminderRepo() repository.ReminderRepository         { return &reminderRepo{s} }

// inFamily reports whether memberID belongs to familyID.
func (s *Store) inFamily(familyID, memberID uuid.UUID) bool {
	m, ok := s.Members[memberID]
	return ok && m.FamilyID == familyID
}

func (s *Store) memberName(memberID uuid.UUID) string {
	if m, ok := s.Members[memberID]; ok {
		return m.FullName
	}
	return ""
}

// SeedFamily creates a user, a family and its primary member.
func (s *Store) SeedFamily(familyName, memberName string) (*model.User, *model.Family, *model.FamilyMember) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.stamp()
	user := &model.User{
		Base:  model.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Email: uuid.NewString()[:8] + "@example.com",
	}
	family := &model.Family{
		Base:      model.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Name:      familyName,
		CreatedBy: user.ID,
	}
	profile := user.ID
	member := &model.FamilyMember{
		Base:             model.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		FamilyID:         family.ID,
		ProfileID:        &profile,
		FullName:         memberName,
		Relationship:     model.StrPtr("Self"),
		IsPrimaryAccount: true,
	}
	s.Users[user.ID] = user
	s.Families[family.ID] = family
	s.Members[member.ID] = member
	return user, family, member
}

// SeedMember adds a non-primary member to a family.
func (s *Store) SeedMember(familyID uuid.UUID, name string) *model.FamilyMember {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.stamp()
	member := &model.FamilyMember{
		Base:     model.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		FamilyID: familyID,
		FullName: name,
	}
	s.Members[member.ID] = member
	return member
}

// Locked runs fn while holding the store lock, for tests that inspect the
// store while a worker goroutine is still writing to it.
func (s *Store) Locked(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}
