package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/safefam/api/internal/email"
	"github.com/safefam/api/internal/model"
	"github.com/safefam/api/internal/repository"
	eventsvc "github.com/safefam/api/internal/service/event"
	"github.com/safefam/api/pkg/event"
	"github.com/safefam/api/pkg/logger"
	"github.com/safefam/api/pkg/metrics"
	"github.com/safefam/api/pkg/timefmt"
)

const (
	AppointmentLookahead = 24 * time.Hour
	VaccinationLookahead = 7
)

// Result counts the outcome of one scan.
type Result struct {
	Sent    int
	Skipped int
	Failed  int
}

type Service struct {
	reminders     repository.ReminderRepository
	notifications repository.NotificationRepository
	emailSvc      email.Service
	recorder      event.Recorder
	metrics       *metrics.Metrics
	logger        *logger.Logger
	now           func() time.Time
}

func NewService(
	reminders repository.ReminderRepository,
	notifications repository.NotificationRepository,
	emailSvc email.Service,
	recorder event.Recorder,
	metrics *metrics.Metrics,
	logger *logger.Logger,
) *Service {
	return &Service{
		reminders:     reminders,
		notifications: notifications,
		emailSvc:      emailSvc,
		recorder:      recorder,
		metrics:       metrics,
		logger:        logger,
		now:           time.Now,
	}
}

// Scan finds due refills, appointments and vaccinations and emails the
// primary account of each family once per reminder per day. A failing scan
// query aborts the run; a failing email only marks its notification.
func (s *Service) Scan(ctx context.Context) (*Result, error) {
	timer := prometheus.NewTimer(s.metrics.ReminderScan)
	defer timer.ObserveDuration()

	now := timefmt.Wall(s.now())
	today := model.DateOf(now).Time

	var candidates []*model.ReminderCandidate
	refills, err := s.reminders.FindRefillsDue(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("failed to scan refills: %w", err)
	}
	candidates = append(candidates, refills...)

	appointments, err := s.reminders.FindAppointmentsBetween(ctx, now, now.Add(AppointmentLookahead))
	if err != nil {
		return nil, fmt.Errorf("failed to scan appointments: %w", err)
	}
	candidates = append(candidates, appointments...)

	vaccinations, err := s.reminders.FindVaccinationsDue(ctx, today, today.AddDate(0, 0, VaccinationLookahead))
	if err != nil {
		return nil, fmt.Errorf("failed to scan vaccinations: %w", err)
	}
	candidates = append(candidates, vaccinations...)

	result := &Result{}
	for _, c := range candidates {
		s.deliver(ctx, c, result)
	}

	s.logger.Info("Reminder scan finished",
		"sent", result.Sent,
		"skipped", result.Skipped,
		"failed", result.Failed)
	return result, nil
}

func (s *Service) deliver(ctx context.Context, c *model.ReminderCandidate, result *Result) {
	subject, body := Compose(c)
	n := &model.Notification{
		UserID:        c.UserID,
		Channel:       model.NotificationChannelEmail,
		Recipient:     c.Email,
		Subject:       subject,
		Body:          body,
		Status:        model.NotificationStatusPending,
		ReferenceType: c.Kind,
		ReferenceID:   c.ReferenceID,
	}

	created, err := s.notifications.CreateIfAbsent(ctx, n)
	if err != nil {
		s.logger.Error(err, "Failed to create notification", "reference_id", c.ReferenceID.String())
		result.Failed++
		return
	}
	if !created {
		s.metrics.RemindersSkipped.WithLabelValues(string(c.Kind)).Inc()
		result.Skipped++
		return
	}

	if err := s.emailSvc.SendCustom(ctx, c.Email, subject, body); err != nil {
		s.logger.Error(err, "Failed to send reminder", "notification_id", n.ID.String())
		if markErr := s.notifications.MarkFailed(ctx, n.ID, err.Error()); markErr != nil {
			s.logger.Error(markErr, "Failed to mark notification failed", "notification_id", n.ID.String())
		}
		result.Failed++
		return
	}

	if err := s.notifications.MarkSent(ctx, n.ID, s.now()); err != nil {
		s.logger.Error(err, "Failed to mark notification sent", "notification_id", n.ID.String())
	}
	s.metrics.RemindersSent.WithLabelValues(string(c.Kind)).Inc()
	result.Sent++

	familyID := c.FamilyID
	payload := map[string]interface{}{
		"notification_id": n.ID,
		"kind":            c.Kind,
		"reference_id":    c.ReferenceID,
		"member_name":     c.MemberName,
	}
	if err := s.recorder.Record(ctx, eventsvc.TypeReminderSent, &familyID, payload); err != nil {
		s.logger.Error(err, "Failed to record reminder event", "notification_id", n.ID.String())
	}
}

// Compose renders the subject and body of a reminder email.
func Compose(c *model.ReminderCandidate) (string, string) {
	switch c.Kind {
	case model.ReminderKindRefill:
		return fmt.Sprintf("Refill reminder: %s", c.Title),
			fmt.Sprintf("%s's prescription for %s runs out on %s. Contact the pharmacy to arrange a refill.\n",
				c.MemberName, c.Title, timefmt.FormatDate(c.DueAt))
	case model.ReminderKindAppointment:
		return fmt.Sprintf("Upcoming appointment: %s", c.Title),
			fmt.Sprintf("%s has %q on %s at %s.\n",
				c.MemberName, c.Title, timefmt.FormatDate(c.DueAt), timefmt.FormatClock(c.DueAt))
	case model.ReminderKindVaccination:
		return fmt.Sprintf("Vaccination due: %s", c.Title),
			fmt.Sprintf("%s's next %s dose is due on %s.\n",
				c.MemberName, c.Title, timefmt.FormatDate(c.DueAt))
	}
	return "SafeFam reminder", fmt.Sprintf("Reminder for %s: %s\n", c.MemberName, c.Title)
}
