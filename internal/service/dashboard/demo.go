package dashboard

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/safefam/api/internal/model"
	"github.com/safefam/api/internal/service/appointment"
	"github.com/safefam/api/pkg/timefmt"
)

var (
	demoFamilyID = uuid.MustParse("00000000-0000-4000-8000-000000000001")
	demoJohnID   = uuid.MustParse("00000000-0000-4000-8000-000000000011")
	demoJaneID   = uuid.MustParse("00000000-0000-4000-8000-000000000012")
	demoEmilyID  = uuid.MustParse("00000000-0000-4000-8000-000000000013")
)

func demoMember(id uuid.UUID, name, relationship string, dob model.Date, blood string, primary bool) *model.FamilyMember {
	return &model.FamilyMember{
		Base:             model.Base{ID: id},
		FamilyID:         demoFamilyID,
		FullName:         name,
		Relationship:     model.StrPtr(relationship),
		DateOfBirth:      &dob,
		BloodType:        model.StrPtr(blood),
		IsPrimaryAccount: primary,
	}
}

// DemoDashboard is the static dataset served when live data cannot be
// loaded in time. Appointment dates are relative to now.
func DemoDashboard(now time.Time) *model.Dashboard {
	today := model.DateOf(timefmt.Wall(now)).Time

	return &model.Dashboard{
		DemoMode: true,
		Family: &model.Family{
			Base: model.Base{ID: demoFamilyID},
			Name: "Demo Family",
		},
		Members: []*model.FamilyMember{
			demoMember(demoJohnID, "John Smith", "Self", model.NewDate(1985, time.March, 15), "A+", true),
			demoMember(demoJaneID, "Jane Smith", "Spouse", model.NewDate(1987, time.July, 22), "B+", false),
			demoMember(demoEmilyID, "Emily Smith", "Daughter", model.NewDate(2015, time.November, 10), "A+", false),
		},
		UpcomingAppointments: []*model.Appointment{
			appointment.Decorate(&model.Appointment{
				Base:            model.Base{ID: uuid.MustParse("00000000-0000-4000-8000-000000000021")},
				FamilyMemberID:  demoEmilyID,
				Title:           "Check-up",
				AppointmentType: "Check-up",
				DoctorName:      model.StrPtr("Dr. Johnson"),
				Location:        model.StrPtr("City Medical Center"),
				AppointmentDate: model.DateTime{Time: today.AddDate(0, 0, 2).Add(10 * time.Hour)},
				DurationMinutes: model.DefaultAppointmentDuration,
				Status:          model.AppointmentStatusScheduled,
				MemberName:      "Emily Smith",
			}),
			appointment.Decorate(&model.Appointment{
				Base:            model.Base{ID: uuid.MustParse("00000000-0000-4000-8000-000000000022")},
				FamilyMemberID:  demoJaneID,
				Title:           "Dental",
				AppointmentType: "Dental",
				DoctorName:      model.StrPtr("Dr. Williams"),
				Location:        model.StrPtr("Smile Dentistry"),
				AppointmentDate: model.DateTime{Time: today.AddDate(0, 0, 5).Add(14*time.Hour + 30*time.Minute)},
				DurationMinutes: model.DefaultAppointmentDuration,
				Status:          model.AppointmentStatusScheduled,
				MemberName:      "Jane Smith",
			}),
		},
		ActiveMedications: []*model.Medication{
			demoMedication("00000000-0000-4000-8000-000000000031", demoJohnID, "John Smith", "Lisinopril", "10mg", today),
			demoMedication("00000000-0000-4000-8000-000000000032", demoJaneID, "Jane Smith", "Vitamin D", "1000 IU", today),
		},
	}
}

func demoMedication(id string, memberID uuid.UUID, memberName, name, dosage string, today time.Time) *model.Medication {
	return &model.Medication{
		Base:               model.Base{ID: uuid.MustParse(id)},
		FamilyMemberID:     memberID,
		Name:               name,
		Dosage:             dosage,
		Frequency:          "Once daily",
		TimeOfDay:          pq.StringArray{"Morning"},
		StartDate:          model.DateOf(today.AddDate(0, -3, 0)),
		RefillReminderDays: model.DefaultRefillReminderDays,
		ReminderEnabled:    true,
		IsActive:           true,
		MemberName:         memberName,
	}
}
