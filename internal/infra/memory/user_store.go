package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"bloodlink-service/internal/domain"
)

// UserStore is an in-memory implementation of app.UserStore for tests and
// Postgres-less runs.
type UserStore struct {
	mu           sync.Mutex
	nextUser     int64
	nextRequest  int64
	nextAppt     int64
	users        map[int64]domain.User
	byEmail      map[string]int64
	requests     []domain.BloodRequest
	appointments map[int64]domain.Appointment
}

func NewUserStore() *UserStore {
	return &UserStore{
		users:        make(map[int64]domain.User),
		byEmail:      make(map[string]int64),
		appointments: make(map[int64]domain.Appointment),
	}
}

func (s *UserStore) CreateUser(_ context.Context, u domain.User) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byEmail[u.Email]; taken {
		return domain.User{}, domain.ErrEmailTaken
	}
	s.nextUser++
	u.ID = s.nextUser
	s.users[u.ID] = u
	s.byEmail[u.Email] = u.ID
	return u, nil
}

func (s *UserStore) UserByEmail(_ context.Context, email string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byEmail[email]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return s.users[id], nil
}

func (s *UserStore) UserByID(_ context.Context, id int64) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return u, nil
}

func (s *UserStore) CreateRequest(_ context.Context, r domain.BloodRequest) (domain.BloodRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextRequest++
	r.ID = s.nextRequest
	s.requests = append(s.requests, r)
	return r, nil
}

func (s *UserStore) MatchingDonors(_ context.Context, bloodGroup, city, state string, cutoff time.Time) ([]domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []domain.User
	for _, u := range s.users {
		if u.BloodGroup != bloodGroup || u.City != city || u.State != state {
			continue
		}
		if u.LastDonationDate != nil && u.LastDonationDate.After(cutoff) {
			continue
		}
		matched = append(matched, u)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	return matched, nil
}

func (s *UserStore) PendingRequests(_ context.Context, bloodGroup, city, state string, limit int) ([]domain.BloodRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.BloodRequest
	// Newest first, like the dashboard shows them.
	for i := len(s.requests) - 1; i >= 0 && len(out) < limit; i-- {
		r := s.requests[i]
		if r.Status == "pending" && r.BloodGroup == bloodGroup && r.City == city && r.State == state {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *UserStore) CreateAppointment(_ context.Context, a domain.Appointment) (domain.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextAppt++
	a.ID = s.nextAppt
	s.appointments[a.ID] = a
	return a, nil
}

func (s *UserStore) AppointmentsFor(_ context.Context, userID int64) ([]domain.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Appointment
	for _, a := range s.appointments {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *UserStore) CancelAppointment(_ context.Context, userID, appointmentID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.appointments[appointmentID]
	if !ok || a.UserID != userID {
		return domain.ErrAppointmentNotFound
	}
	if a.Status != domain.AppointmentPending {
		return domain.ErrAppointmentNotPending
	}
	a.Status = domain.AppointmentCancelled
	s.appointments[appointmentID] = a
	return nil
}
