package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safefam/api/internal/model"
	"github.com/safefam/api/internal/repository"
	"github.com/safefam/api/internal/repository/repotest"
	"github.com/safefam/api/pkg/messaging"
)

type mapCache struct {
	mu    sync.Mutex
	items map[uuid.UUID]*model.Dashboard
}

func newMapCache() *mapCache { return &mapCache{items: map[uuid.UUID]*model.Dashboard{}} }

func (c *mapCache) Get(_ context.Context, id uuid.UUID) (*model.Dashboard, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.items[id]
	return d, ok
}

func (c *mapCache) Set(_ context.Context, id uuid.UUID, d *model.Dashboard) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[id] = d
}

func (c *mapCache) Invalidate(_ context.Context, id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, id)
}

func (c *mapCache) has(id uuid.UUID) bool {
	_, ok := c.Get(context.Background(), id)
	return ok
}

// blockingFamilies never answers before the context expires.
type blockingFamilies struct {
	repository.FamilyRepository
}

func (blockingFamilies) Get(ctx context.Context, _ uuid.UUID) (*model.Family, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func repos(store *repotest.Store) Repositories {
	return Repositories{
		Families:     store.FamilyRepo(),
		Members:      store.MemberRepo(),
		Appointments: store.AppointmentRepo(),
		Medications:  store.MedicationRepo(),
		Insights:     store.InsightsRepo(),
	}
}

func seedClinical(store *repotest.Store, memberID uuid.UUID, now time.Time) {
	medID, apptID := uuid.New(), uuid.New()
	store.Medications[medID] = &model.Medication{
		Base:           model.Base{ID: medID},
		FamilyMemberID: memberID,
		Name:           "Metformin",
		IsActive:       true,
	}
	store.Appointments[apptID] = &model.Appointment{
		Base:            model.Base{ID: apptID},
		FamilyMemberID:  memberID,
		Title:           "Eye exam",
		AppointmentDate: model.DateTime{Time: now.Add(48 * time.Hour)},
		Status:          model.AppointmentStatusScheduled,
	}
}

func TestDashboardLiveData(t *testing.T) {
	store := repotest.NewStore()
	_, family, member := store.SeedFamily("Garcia", "Ana Garcia")
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	seedClinical(store, member.ID, now)

	cache := newMapCache()
	svc := NewService(repos(store), cache, time.Second)
	svc.now = func() time.Time { return now }

	d := svc.Dashboard(context.Background(), family.ID)
	assert.False(t, d.DemoMode)
	assert.Equal(t, "Garcia", d.Family.Name)
	assert.Len(t, d.Members, 1)
	require.Len(t, d.UpcomingAppointments, 1)
	assert.Equal(t, "June 12, 2025", d.UpcomingAppointments[0].DisplayDate)
	assert.Len(t, d.ActiveMedications, 1)
	assert.True(t, cache.has(family.ID))
}

func TestDashboardServesCachedSnapshot(t *testing.T) {
	store := repotest.NewStore()
	_, family, _ := store.SeedFamily("Garcia", "Ana Garcia")
	cache := newMapCache()
	cached := &model.Dashboard{Family: &model.Family{Name: "cached"}}
	cache.Set(context.Background(), family.ID, cached)

	svc := NewService(repos(store), cache, time.Second)
	assert.Same(t, cached, svc.Dashboard(context.Background(), family.ID))
}

func TestDashboardFallsBackToDemoOnTimeout(t *testing.T) {
	store := repotest.NewStore()
	_, family, _ := store.SeedFamily("Garcia", "Ana Garcia")
	r := repos(store)
	r.Families = blockingFamilies{}

	cache := newMapCache()
	svc := NewService(r, cache, 20*time.Millisecond)

	start := time.Now()
	d := svc.Dashboard(context.Background(), family.ID)
	assert.Less(t, time.Since(start), time.Second)
	assert.True(t, d.DemoMode)
	assert.Equal(t, "Demo Family", d.Family.Name)
	assert.Len(t, d.Members, 3)
	assert.False(t, cache.has(family.ID))
}

func TestDashboardFallsBackToDemoOnError(t *testing.T) {
	store := repotest.NewStore()
	_, family, _ := store.SeedFamily("Garcia", "Ana Garcia")
	store.Err = errors.New("connection reset")

	svc := NewService(repos(store), nil, time.Second)
	d := svc.Dashboard(context.Background(), family.ID)
	assert.True(t, d.DemoMode)
}

func TestDemoDashboardIsUpcoming(t *testing.T) {
	now := time.Date(2025, 6, 10, 23, 0, 0, 0, time.UTC)
	d := DemoDashboard(now)

	require.Len(t, d.UpcomingAppointments, 2)
	for _, a := range d.UpcomingAppointments {
		assert.True(t, a.AppointmentDate.After(now))
		assert.NotEmpty(t, a.DisplayTime)
	}
	assert.Equal(t, "10:00 AM", d.UpcomingAppointments[0].DisplayTime)
	assert.Equal(t, "2:30 PM", d.UpcomingAppointments[1].DisplayTime)
	assert.True(t, d.Members[0].IsPrimaryAccount)
}

func TestInsights(t *testing.T) {
	store := repotest.NewStore()
	_, family, member := store.SeedFamily("Garcia", "Ana Garcia")
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	seedClinical(store, member.ID, now)

	svc := NewService(repos(store), nil, time.Second)
	svc.now = func() time.Time { return now }

	ins := svc.Insights(context.Background(), family.ID)
	assert.Equal(t, 1, ins.ActiveMedications)
	assert.Equal(t, 1, ins.UpcomingAppointments)
	assert.Zero(t, ins.Vaccinations)
	require.Len(t, ins.Members, 1)
	assert.Equal(t, "Ana Garcia", ins.Members[0].FullName)
	assert.Equal(t, "Self", *ins.Members[0].Relationship)

	store.SeedMember(family.ID, "Ben Garcia")
	store.SeedMember(family.ID, "Aaron Garcia")
	ins = svc.Insights(context.Background(), family.ID)
	require.Len(t, ins.Members, 3)
	assert.Equal(t, "Aaron Garcia", ins.Members[0].FullName)
	assert.Equal(t, "Ben Garcia", ins.Members[2].FullName)

	store.Err = errors.New("down")
	assert.Equal(t, &model.Insights{Members: []*model.MemberSummary{}}, svc.Insights(context.Background(), family.ID))
}

func TestWatchEventsInvalidatesSnapshot(t *testing.T) {
	broker := messaging.NewMemoryBroker()
	defer broker.Close()

	cache := newMapCache()
	familyID := uuid.New()
	cache.Set(context.Background(), familyID, &model.Dashboard{})

	svc := NewService(Repositories{}, cache, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- svc.WatchEvents(ctx, broker) }()

	env := model.EventEnvelope{ID: uuid.New(), Type: "MEDICATION_CREATE", FamilyID: &familyID, Payload: json.RawMessage(`{}`)}
	assert.Eventually(t, func() bool {
		_ = broker.Publish(ctx, messaging.EventsChannel, env)
		return !cache.has(familyID)
	}, time.Second, 10*time.Millisecond)

	cancel()
	assert.NoError(t, <-errCh)
}
