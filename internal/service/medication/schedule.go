package medication

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/safefam/api/internal/model"
	"github.com/safefam/api/pkg/timefmt"
)

// MatchWindow is how far a taken dose may sit from its slot and still count
// for it.
const MatchWindow = time.Hour

const (
	firstDoseHour = 8
	lastDoseHour  = 20
)

var namedSlots = map[string]int{
	"morning":   8 * 60,
	"afternoon": 13 * 60,
	"evening":   18 * 60,
	"night":     21 * 60,
	"bedtime":   21 * 60,
}

type slot struct {
	label   string
	minutes int
}

// DosesPerDay reads a free-text frequency. Unrecognised text means once a
// day; "as needed" means no fixed doses.
func DosesPerDay(frequency string) int {
	f := strings.ToLower(strings.TrimSpace(frequency))
	switch {
	case strings.Contains(f, "as needed"), strings.Contains(f, "prn"):
		return 0
	case strings.Contains(f, "four"):
		return 4
	case strings.Contains(f, "three"):
		return 3
	case strings.Contains(f, "twice"), strings.Contains(f, "two"):
		return 2
	case strings.Contains(f, "once"), strings.Contains(f, "one"):
		return 1
	}

	if fields := strings.Fields(f); len(fields) > 0 {
		if n, err := strconv.Atoi(fields[0]); err == nil && n >= 0 && n <= 6 {
			return n
		}
	}
	return 1
}

func parseClock(s string) (int, bool) {
	t, err := time.Parse(timefmt.ClockLayout, s)
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}

// slotsFor derives the dose times of a medication from time_of_day, falling
// back to frequency spread evenly between 08:00 and 20:00.
func slotsFor(med *model.Medication) []slot {
	seen := map[int]bool{}
	var slots []slot
	for _, raw := range med.TimeOfDay {
		label := strings.TrimSpace(raw)
		minutes, ok := namedSlots[strings.ToLower(label)]
		if !ok {
			if minutes, ok = parseClock(label); !ok {
				continue
			}
		}
		if seen[minutes] {
			continue
		}
		seen[minutes] = true
		slots = append(slots, slot{label: label, minutes: minutes})
	}

	if len(slots) == 0 {
		n := DosesPerDay(med.Frequency)
		for i := 0; i < n; i++ {
			hour := firstDoseHour
			if n > 1 {
				hour += i * (lastDoseHour - firstDoseHour) / (n - 1)
			}
			slots = append(slots, slot{label: "Dose " + strconv.Itoa(i+1), minutes: hour * 60})
		}
	}

	sort.SliceStable(slots, func(i, j int) bool { return slots[i].minutes < slots[j].minutes })
	return slots
}

// ScheduledOn reports whether med has doses on day.
func ScheduledOn(med *model.Medication, day time.Time) bool {
	if !med.IsActive {
		return false
	}
	d := model.DateOf(day).Time
	if d.Before(med.StartDate.Time) {
		return false
	}
	return med.EndDate == nil || !d.After(med.EndDate.Time)
}

// BuildSchedule lays out med's doses for day and marks each against the
// taken logs. A log satisfies at most one slot. All times are wall clock.
func BuildSchedule(med *model.Medication, day time.Time, logs []*model.MedicationLog, now time.Time) []*model.DoseSlot {
	out := []*model.DoseSlot{}
	if !ScheduledOn(med, day) {
		return out
	}

	midnight := model.DateOf(day).Time
	now = timefmt.Wall(now)
	used := make([]bool, len(logs))

	for _, s := range slotsFor(med) {
		at := midnight.Add(time.Duration(s.minutes) * time.Minute)
		ds := &model.DoseSlot{
			MedicationID: med.ID,
			Label:        s.label,
			Time:         model.DateTime{Time: at},
			Display:      timefmt.FormatClock(at),
			Status:       model.MedicationLogStatusPending,
		}

		if i := closestTaken(logs, used, at); i >= 0 {
			used[i] = true
			id := logs[i].ID
			ds.Status = model.MedicationLogStatusTaken
			ds.LogID = &id
		} else if at.Before(now) {
			ds.Status = model.MedicationLogStatusMissed
		}
		out = append(out, ds)
	}
	return out
}

func closestTaken(logs []*model.MedicationLog, used []bool, at time.Time) int {
	best := -1
	var bestGap time.Duration
	for i, l := range logs {
		if used[i] || l.Status != model.MedicationLogStatusTaken {
			continue
		}
		taken := l.ScheduledTime.Time
		if l.TakenTime != nil {
			taken = l.TakenTime.Time
		}
		gap := timefmt.Wall(taken).Sub(at)
		if gap < 0 {
			gap = -gap
		}
		if gap > MatchWindow {
			continue
		}
		if best < 0 || gap < bestGap {
			best, bestGap = i, gap
		}
	}
	return best
}
