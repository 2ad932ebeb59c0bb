// Package appointmentstest provides in-memory stores for tests that need a
// working booking path without MongoDB.
package appointmentstest

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	appterrors "staffbook/internal/appointments/errors"
	"staffbook/internal/appointments/repository"
	"staffbook/internal/events"
	mongotx "staffbook/pkg/db/mongo"
	apperrors "staffbook/pkg/errors"
	"staffbook/pkg/lock"
	"staffbook/pkg/model"
)

// Repository is an in-memory AppointmentRepository. It enforces the same
// uniqueness as the production indexes and rolls back failed transactions.
type Repository struct {
	mu    sync.Mutex
	items map[string]*model.Appointment

	// CreateErr, when set, fails every Create.
	CreateErr error
	// DeleteErr, when set, fails every DeleteFutureInstances.
	DeleteErr error
}

func NewRepository() *Repository {
	return &Repository{items: map[string]*model.Appointment{}}
}

// Seed stores a copy of a and returns its id.
func (r *Repository) Seed(a model.Appointment) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.ID == "" {
		a.ID = primitive.NewObjectID().Hex()
	}
	a.SyncActive()
	r.items[a.ID] = &a
	return a.ID
}

// All returns copies of every stored appointment ordered by date and start.
func (r *Repository) All() []model.Appointment {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Appointment, 0, len(r.items))
	for _, a := range r.items {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out
}

func (r *Repository) clashes(a *model.Appointment) bool {
	for id, other := range r.items {
		if id == a.ID {
			continue
		}
		if a.Active && other.Active && a.StaffID != "" &&
			other.StaffID == a.StaffID && other.Date == a.Date && other.StartTime == a.StartTime {
			return true
		}
		if a.RecurringID != "" && other.RecurringID == a.RecurringID &&
			other.Date == a.Date && other.StartTime == a.StartTime {
			return true
		}
	}
	return false
}

func (r *Repository) Create(_ context.Context, a *model.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.CreateErr != nil {
		return r.CreateErr
	}

	a.SyncActive()
	if r.clashes(a) {
		return appterrors.ErrDuplicate
	}
	a.ID = primitive.NewObjectID().Hex()
	a.CreatedAt = time.Now().UTC()
	a.UpdatedAt = a.CreatedAt
	stored := *a
	r.items[a.ID] = &stored
	return nil
}

func (r *Repository) FindByID(_ context.Context, id string) (*model.Appointment, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, appterrors.ErrInvalidID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.items[id]
	if !ok {
		return nil, appterrors.ErrNotFound
	}
	out := *a
	return &out, nil
}

func (r *Repository) match(f repository.Filter) []*model.Appointment {
	out := []*model.Appointment{}
	for _, a := range r.All() {
		if f.StaffID != "" && a.StaffID != f.StaffID {
			continue
		}
		if f.ClientID != "" && a.ClientID != f.ClientID {
			continue
		}
		if f.Date != "" && a.Date != f.Date {
			continue
		}
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		a := a
		out = append(out, &a)
	}
	return out
}

func (r *Repository) List(_ context.Context, f repository.Filter, limit int, offset int64) ([]*model.Appointment, error) {
	all := r.match(f)
	if offset >= int64(len(all)) {
		return []*model.Appointment{}, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r *Repository) Count(_ context.Context, f repository.Filter) (int64, error) {
	return int64(len(r.match(f))), nil
}

func (r *Repository) active(keep func(a *model.Appointment) bool) []*model.Appointment {
	out := []*model.Appointment{}
	for _, a := range r.All() {
		a := a
		if a.Active && keep(&a) {
			out = append(out, &a)
		}
	}
	return out
}

func (r *Repository) FindActiveByStaffDate(_ context.Context, staffID, date string) ([]*model.Appointment, error) {
	return r.active(func(a *model.Appointment) bool { return a.StaffID == staffID && a.Date == date }), nil
}

func (r *Repository) FindActiveByClientDate(_ context.Context, clientID, date string) ([]*model.Appointment, error) {
	return r.active(func(a *model.Appointment) bool { return a.ClientID == clientID && a.Date == date }), nil
}

func (r *Repository) UpdateStatus(_ context.Context, id string, from, to model.AppointmentStatus, actor string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.items[id]
	if !ok || a.Status != from {
		return appterrors.ErrStaleStatus
	}
	a.Status = to
	a.UpdatedBy = actor
	a.SyncActive()
	return nil
}

func (r *Repository) Reschedule(_ context.Context, id string, from model.AppointmentStatus, moved *model.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.items[id]
	if !ok || a.Status != from {
		return appterrors.ErrStaleStatus
	}
	next := *moved
	next.ID = id
	next.SyncActive()
	if r.clashes(&next) {
		return appterrors.ErrDuplicate
	}
	r.items[id] = &next
	return nil
}

func (r *Repository) ExistsOccurrence(_ context.Context, recurringID, date, startTime string) (bool, error) {
	for _, a := range r.All() {
		if a.RecurringID == recurringID && a.Date == date && a.StartTime == startTime {
			return true, nil
		}
	}
	return false, nil
}

func (r *Repository) CountByRecurring(_ context.Context, recurringID string) (int64, error) {
	var n int64
	for _, a := range r.All() {
		if a.RecurringID == recurringID {
			n++
		}
	}
	return n, nil
}

func (r *Repository) DeleteFutureInstances(_ context.Context, recurringID, afterDate string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.DeleteErr != nil {
		return 0, r.DeleteErr
	}
	var n int64
	for id, a := range r.items {
		if a.RecurringID != recurringID || a.Date <= afterDate {
			continue
		}
		if a.Status == model.StatusPending || a.Status == model.StatusConfirmed {
			delete(r.items, id)
			n++
		}
	}
	return n, nil
}

// ExecuteTransaction restores the previous contents when fn fails.
func (r *Repository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	r.mu.Lock()
	snapshot := make(map[string]*model.Appointment, len(r.items))
	for id, a := range r.items {
		c := *a
		snapshot[id] = &c
	}
	r.mu.Unlock()

	if err := fn(mongo.NewSessionContext(ctx, nil)); err != nil {
		r.mu.Lock()
		r.items = snapshot
		r.mu.Unlock()
		return err
	}
	return nil
}

// Schedules is an in-memory ScheduleReader keyed by staff id.
type Schedules struct {
	Weekly    map[string]map[int]*model.WeeklySchedule
	Overrides map[string]map[string]*model.AvailabilityOverride
	TimeOff   map[string][]*model.TimeOffRequest
}

func NewSchedules() *Schedules {
	return &Schedules{
		Weekly:    map[string]map[int]*model.WeeklySchedule{},
		Overrides: map[string]map[string]*model.AvailabilityOverride{},
		TimeOff:   map[string][]*model.TimeOffRequest{},
	}
}

// OpenEveryDay gives staffID the same hours on all seven weekdays.
func (s *Schedules) OpenEveryDay(staffID, start, end string) *Schedules {
	days := map[int]*model.WeeklySchedule{}
	for d := 0; d < 7; d++ {
		days[d] = &model.WeeklySchedule{StaffID: staffID, DayOfWeek: d, OpenStart: start, OpenEnd: end, Available: true}
	}
	s.Weekly[staffID] = days
	return s
}

func (s *Schedules) FindWeekly(_ context.Context, staffID string, dayOfWeek int) (*model.WeeklySchedule, error) {
	return s.Weekly[staffID][dayOfWeek], nil
}

func (s *Schedules) FindOverride(_ context.Context, staffID, date string) (*model.AvailabilityOverride, error) {
	return s.Overrides[staffID][date], nil
}

func (s *Schedules) FindApprovedTimeOff(_ context.Context, staffID, date string) ([]*model.TimeOffRequest, error) {
	var out []*model.TimeOffRequest
	for _, t := range s.TimeOff[staffID] {
		if t.Status == model.TimeOffApproved && t.Covers(date) {
			out = append(out, t)
		}
	}
	return out, nil
}

// Locker grants every key that is not already held.
type Locker struct {
	mu   sync.Mutex
	held map[string]bool
}

func NewLocker() *Locker {
	return &Locker{held: map[string]bool{}}
}

// Hold marks key as taken by someone else.
func (l *Locker) Hold(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.held[key] = true
}

func (l *Locker) Acquire(_ context.Context, key string) (*lock.Lease, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return nil, apperrors.Conflict("slot is locked")
	}
	l.held[key] = true
	return &lock.Lease{Key: key, Owner: "test", ExpiresAt: time.Now().Add(time.Minute)}, nil
}

func (l *Locker) Release(_ context.Context, lease *lock.Lease) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, lease.Key)
	return nil
}

// Publisher records published events.
type Publisher struct {
	mu           sync.Mutex
	Appointments []string
	Waitlist     []string
	Last         events.AppointmentEvent
	LastWaitlist events.WaitlistEvent
}

func (p *Publisher) PublishAppointment(_ context.Context, eventType string, e events.AppointmentEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Appointments = append(p.Appointments, eventType)
	p.Last = e
	return nil
}

func (p *Publisher) PublishWaitlist(_ context.Context, eventType string, e events.WaitlistEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Waitlist = append(p.Waitlist, eventType)
	p.LastWaitlist = e
	return nil
}
