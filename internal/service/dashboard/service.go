package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/safefam/api/internal/model"
	"github.com/safefam/api/internal/repository"
	"github.com/safefam/api/internal/service/appointment"
	"github.com/safefam/api/pkg/messaging"
)

const (
	DefaultFetchTimeout = 5 * time.Second
	upcomingLimit       = 5
)

type Repositories struct {
	Families     repository.FamilyRepository
	Members      repository.MemberRepository
	Appointments repository.AppointmentRepository
	Medications  repository.MedicationRepository
	Insights     repository.InsightsRepository
}

type Service struct {
	repos   Repositories
	cache   SnapshotCache
	timeout time.Duration
	now     func() time.Time
}

// NewService builds the dashboard service. A nil cache disables snapshot
// caching; a non-positive timeout uses DefaultFetchTimeout.
func NewService(repos Repositories, cache SnapshotCache, timeout time.Duration) *Service {
	if cache == nil {
		cache = nopCache{}
	}
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &Service{repos: repos, cache: cache, timeout: timeout, now: time.Now}
}

type fetchResult struct {
	dashboard *model.Dashboard
	err       error
}

// Dashboard loads the family home screen. The store fetch races the
// configured timeout; on timeout or error the demo dataset is returned.
func (s *Service) Dashboard(ctx context.Context, familyID uuid.UUID) *model.Dashboard {
	if d, ok := s.cache.Get(ctx, familyID); ok {
		return d
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	done := make(chan fetchResult, 1)
	go func() {
		d, err := s.fetch(fetchCtx, familyID)
		done <- fetchResult{dashboard: d, err: err}
	}()

	select {
	case <-fetchCtx.Done():
		log.Warn().Str("family_id", familyID.String()).Dur("timeout", s.timeout).Msg("dashboard fetch timed out, serving demo data")
		return DemoDashboard(s.now())
	case res := <-done:
		if res.err != nil {
			log.Error().Err(res.err).Str("family_id", familyID.String()).Msg("dashboard fetch failed, serving demo data")
			return DemoDashboard(s.now())
		}
		s.cache.Set(ctx, familyID, res.dashboard)
		return res.dashboard
	}
}

func (s *Service) fetch(ctx context.Context, familyID uuid.UUID) (*model.Dashboard, error) {
	family, err := s.repos.Families.Get(ctx, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load family: %w", err)
	}
	members, err := s.repos.Members.List(ctx, familyID, repository.MemberOrderCreated)
	if err != nil {
		return nil, fmt.Errorf("failed to load members: %w", err)
	}
	appts, err := s.repos.Appointments.ListUpcoming(ctx, familyID, nil, s.now(), upcomingLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load appointments: %w", err)
	}
	meds, err := s.repos.Medications.List(ctx, familyID, &model.MedicationFilters{ActiveOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to load medications: %w", err)
	}

	d := &model.Dashboard{
		Family:               family,
		Members:              orEmpty(members),
		UpcomingAppointments: orEmpty(appts),
		ActiveMedications:    orEmpty(meds),
	}
	for _, a := range d.UpcomingAppointments {
		appointment.Decorate(a)
	}
	return d, nil
}

// Insights counts the family's tracked items and lists its members by
// name. Store errors give zeros and an empty member list.
func (s *Service) Insights(ctx context.Context, familyID uuid.UUID) *model.Insights {
	ins, err := s.repos.Insights.Counts(ctx, familyID, s.now())
	if err != nil {
		log.Error().Err(err).Str("family_id", familyID.String()).Msg("failed to count insights")
		ins = &model.Insights{}
	}

	ins.Members = []*model.MemberSummary{}
	members, err := s.repos.Members.List(ctx, familyID, repository.MemberOrderName)
	if err != nil {
		log.Error().Err(err).Str("family_id", familyID.String()).Msg("failed to list members for insights")
		return ins
	}
	for _, m := range members {
		ins.Members = append(ins.Members, &model.MemberSummary{
			ID:           m.ID,
			FullName:     m.FullName,
			Relationship: m.Relationship,
		})
	}
	return ins
}

func (s *Service) Invalidate(ctx context.Context, familyID uuid.UUID) {
	s.cache.Invalidate(ctx, familyID)
}

// WatchEvents drops a family's snapshot whenever one of its events is
// published. It returns when ctx is done or the subscription closes.
func (s *Service) WatchEvents(ctx context.Context, broker messaging.Broker) error {
	msgs, err := broker.Subscribe(ctx, messaging.EventsChannel)
	if err != nil {
		return fmt.Errorf("failed to subscribe to events: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case raw, ok := <-msgs:
			if !ok {
				return nil
			}
			var env model.EventEnvelope
			if err := json.Unmarshal(raw, &env); err != nil {
				log.Warn().Err(err).Msg("ignoring malformed event")
				continue
			}
			if env.FamilyID != nil {
				s.cache.Invalidate(ctx, *env.FamilyID)
			}
		}
	}
}

func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
