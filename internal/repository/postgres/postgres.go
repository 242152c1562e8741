package postgres

import (
	"github.com/jmoiron/sqlx"

	"github.com/safefam/api/internal/repository"
)

type familyRepository struct {
	BaseRepository
}

type memberRepository struct {
	db *sqlx.DB
}

type medicationRepository struct {
	db *sqlx.DB
}

type medicationLogRepository struct {
	db *sqlx.DB
}

type appointmentRepository struct {
	db *sqlx.DB
}

type vaccinationRepository struct {
	db *sqlx.DB
}

type healthRecordRepository struct {
	db *sqlx.DB
}

type insightsRepository struct {
	db *sqlx.DB
}

type reminderRepository struct {
	db *sqlx.DB
}

func NewFamilyRepository(base BaseRepository) repository.FamilyRepository {
	return &familyRepository{base}
}

func NewMemberRepository(db *sqlx.DB) repository.MemberRepository {
	return &memberRepository{db: db}
}

func NewMedicationRepository(db *sqlx.DB) repository.MedicationRepository {
	return &medicationRepository{db: db}
}

func NewMedicationLogRepository(db *sqlx.DB) repository.MedicationLogRepository {
	return &medicationLogRepository{db: db}
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{db: db}
}

func NewVaccinationRepository(db *sqlx.DB) repository.VaccinationRepository {
	return &vaccinationRepository{db: db}
}

func NewHealthRecordRepository(db *sqlx.DB) repository.HealthRecordRepository {
	return &healthRecordRepository{db: db}
}

func NewInsightsRepository(db *sqlx.DB) repository.InsightsRepository {
	return &insightsRepository{db: db}
}

func NewReminderRepository(db *sqlx.DB) repository.ReminderRepository {
	return &reminderRepository{db: db}
}
