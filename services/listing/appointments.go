package listing

import (
	"sort"
	"time"

	"mindease/models"
	"mindease/services/appointment"
)

// Tab is a therapist-side appointment view.
type Tab string

const (
	TabToday     Tab = "today"
	TabUpcoming  Tab = "upcoming"
	TabCompleted Tab = "completed"
	TabCancelled Tab = "cancelled"
	TabAbsences  Tab = "absences"
)

func (t Tab) Valid() bool {
	switch t {
	case TabToday, TabUpcoming, TabCompleted, TabCancelled, TabAbsences:
		return true
	}
	return false
}

// newestFirst reports whether the tab lists past sessions.
func (t Tab) newestFirst() bool {
	return t == TabCompleted || t == TabCancelled || t == TabAbsences
}

// AppointmentQuery selects a tab, or with Date set, the sessions of one day.
type AppointmentQuery struct {
	Tab  Tab
	Date string
	Page int
}

// FilterByTab narrows projections to a tab and orders them: past-facing tabs
// newest first, the rest soonest first. Today and upcoming go by date alone;
// the others by status. Sessions with an unreadable date sort last.
func FilterByTab(list []appointment.Projection, tab Tab, now time.Time, loc *time.Location) []appointment.Projection {
	if loc == nil {
		loc = time.Local
	}
	n := now.In(loc)
	todayStart := time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, loc)
	todayEnd := todayStart.AddDate(0, 0, 1)

	out := make([]appointment.Projection, 0, len(list))
	for _, p := range list {
		status := p.Appointment.Status
		keep := false
		switch tab {
		case TabToday:
			keep = p.StartsAt != nil && !p.StartsAt.Before(todayStart) && p.StartsAt.Before(todayEnd)
		case TabUpcoming:
			keep = p.StartsAt != nil && !p.StartsAt.Before(todayEnd)
		case TabCompleted:
			keep = status == models.StatusCompleted
		case TabCancelled:
			keep = status == models.StatusCancelled
		case TabAbsences:
			keep = status.IsAbsence()
		}
		if keep {
			out = append(out, p)
		}
	}
	sortByStart(out, tab.newestFirst())
	return out
}

// FilterByDate keeps sessions that fall on the given day.
func FilterByDate(list []appointment.Projection, date string, loc *time.Location) ([]appointment.Projection, error) {
	day, err := appointment.ParseDate(date, loc)
	if err != nil {
		return nil, err
	}
	out := make([]appointment.Projection, 0)
	for _, p := range list {
		if p.StartsAt == nil {
			continue
		}
		s := p.StartsAt.In(day.Location())
		if s.Year() == day.Year() && s.Month() == day.Month() && s.Day() == day.Day() {
			out = append(out, p)
		}
	}
	sortByStart(out, false)
	return out, nil
}

func sortByStart(list []appointment.Projection, desc bool) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i].StartsAt, list[j].StartsAt
		if a == nil || b == nil {
			return a != nil
		}
		if desc {
			return a.After(*b)
		}
		return a.Before(*b)
	})
}

// BrowseAppointments applies the query and paginates the result.
func BrowseAppointments(list []appointment.Projection, q AppointmentQuery, now time.Time, loc *time.Location) (Page[appointment.Projection], error) {
	if q.Date != "" {
		matched, err := FilterByDate(list, q.Date, loc)
		if err != nil {
			return Page[appointment.Projection]{}, err
		}
		return Paginate(matched, q.Page, AppointmentPageSize), nil
	}
	tab := q.Tab
	if !tab.Valid() {
		tab = TabToday
	}
	return Paginate(FilterByTab(list, tab, now, loc), q.Page, AppointmentPageSize), nil
}
