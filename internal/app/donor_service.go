package app

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"bloodlink-service/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// donationCooldown is how long after a donation a donor is left alone before
// being matched to new blood requests.
const donationCooldown = 90 * 24 * time.Hour

// UserStore persists donor accounts, blood requests and appointments.
type UserStore interface {
	CreateUser(ctx context.Context, u domain.User) (domain.User, error)
	UserByEmail(ctx context.Context, email string) (domain.User, error)
	UserByID(ctx context.Context, id int64) (domain.User, error)

	CreateRequest(ctx context.Context, r domain.BloodRequest) (domain.BloodRequest, error)
	// MatchingDonors returns donors of the given group/location whose last
	// donation is unset or before cutoff.
	MatchingDonors(ctx context.Context, bloodGroup, city, state string, cutoff time.Time) ([]domain.User, error)
	PendingRequests(ctx context.Context, bloodGroup, city, state string, limit int) ([]domain.BloodRequest, error)

	CreateAppointment(ctx context.Context, a domain.Appointment) (domain.Appointment, error)
	AppointmentsFor(ctx context.Context, userID int64) ([]domain.Appointment, error)
	// CancelAppointment cancels a pending appointment owned by userID.
	CancelAppointment(ctx context.Context, userID, appointmentID int64) error
}

// Notifier tells matching donors about a new blood request. Actual email
// delivery lives outside this service; the default implementation just logs.
type Notifier interface {
	NotifyDonor(ctx context.Context, donor domain.User, req domain.BloodRequest) error
}

// LogNotifier is the slog-backed Notifier used when no mail transport is wired.
type LogNotifier struct {
	Log *slog.Logger
}

func (n LogNotifier) NotifyDonor(_ context.Context, donor domain.User, req domain.BloodRequest) error {
	log := n.Log
	if log == nil {
		log = slog.Default()
	}
	log.Info("donor match notification",
		"donor", donor.Email,
		"blood_group", req.BloodGroup,
		"city", req.City,
		"requester", req.RequesterName,
	)
	return nil
}

// DonorService covers registration, login, blood requests, the dashboard and
// appointment booking.
type DonorService struct {
	users    UserStore
	scores   *ScoreService
	notifier Notifier
	log      *slog.Logger
	now      func() time.Time
}

func NewDonorService(users UserStore, scores *ScoreService, notifier Notifier, log *slog.Logger) *DonorService {
	if log == nil {
		log = slog.Default()
	}
	if notifier == nil {
		notifier = LogNotifier{Log: log}
	}
	return &DonorService{users: users, scores: scores, notifier: notifier, log: log, now: time.Now}
}

// RegisterInput is the coerced registration form.
type RegisterInput struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
	Phone           string
	Age             int
	BloodGroup      string
	City            string
	State           string
}

var (
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phonePattern = regexp.MustCompile(`^\d{10}$`)
)

func validateRegistration(in RegisterInput) error {
	var problems []string
	if strings.TrimSpace(in.Name) == "" {
		problems = append(problems, "Name is required.")
	}
	switch {
	case strings.TrimSpace(in.Email) == "":
		problems = append(problems, "Email is required.")
	case !emailPattern.MatchString(in.Email):
		problems = append(problems, "Invalid email format.")
	}
	switch {
	case in.Password == "":
		problems = append(problems, "Password is required.")
	case len(in.Password) < 6:
		problems = append(problems, "Password must be at least 6 characters.")
	}
	if in.Password != in.ConfirmPassword {
		problems = append(problems, "Passwords do not match.")
	}
	switch {
	case strings.TrimSpace(in.Phone) == "":
		problems = append(problems, "Phone number is required.")
	case !phonePattern.MatchString(in.Phone):
		problems = append(problems, "Invalid phone number format. Please enter 10 digits.")
	}
	switch {
	case in.Age < 18:
		problems = append(problems, "Age must be 18 or above.")
	case in.Age > 100:
		problems = append(problems, "Please enter a valid age.")
	}
	if in.BloodGroup == "" {
		problems = append(problems, "Blood group is required.")
	}
	if strings.TrimSpace(in.City) == "" {
		problems = append(problems, "City is required.")
	}
	if strings.TrimSpace(in.State) == "" {
		problems = append(problems, "State is required.")
	}
	if len(problems) > 0 {
		return &domain.ValidationError{Problems: problems}
	}
	return nil
}

// Register validates the form, hashes the password and creates the donor.
func (s *DonorService) Register(ctx context.Context, in RegisterInput) (domain.User, error) {
	if err := validateRegistration(in); err != nil {
		return domain.User{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}
	user := domain.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: string(hash),
		Phone:        strings.TrimSpace(in.Phone),
		Age:          in.Age,
		BloodGroup:   in.BloodGroup,
		City:         strings.TrimSpace(in.City),
		State:        strings.TrimSpace(in.State),
		CreatedAt:    s.now(),
	}
	return s.users.CreateUser(ctx, user)
}

// Authenticate verifies credentials and returns the donor.
func (s *DonorService) Authenticate(ctx context.Context, email, password string) (domain.User, error) {
	user, err := s.users.UserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return domain.User{}, domain.ErrBadCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return domain.User{}, domain.ErrBadCredentials
	}
	return user, nil
}

// RequestInput is the coerced blood request form.
type RequestInput struct {
	RequesterName string
	BloodGroup    string
	City          string
	State         string
	Message       string
}

func validateRequest(in RequestInput) error {
	var problems []string
	if strings.TrimSpace(in.RequesterName) == "" {
		problems = append(problems, "Name is required.")
	}
	if in.BloodGroup == "" {
		problems = append(problems, "Blood group is required.")
	}
	if strings.TrimSpace(in.City) == "" {
		problems = append(problems, "City is required.")
	}
	if strings.TrimSpace(in.State) == "" {
		problems = append(problems, "State is required.")
	}
	if len(problems) > 0 {
		return &domain.ValidationError{Problems: problems}
	}
	return nil
}

// CreateRequest stores a blood request and notifies eligible matching donors.
// It returns the stored request and how many donors were notified.
func (s *DonorService) CreateRequest(ctx context.Context, in RequestInput) (domain.BloodRequest, int, error) {
	if err := validateRequest(in); err != nil {
		return domain.BloodRequest{}, 0, err
	}
	req := domain.BloodRequest{
		RequesterName: strings.TrimSpace(in.RequesterName),
		BloodGroup:    in.BloodGroup,
		City:          strings.TrimSpace(in.City),
		State:         strings.TrimSpace(in.State),
		Message:       strings.TrimSpace(in.Message),
		Status:        "pending",
		CreatedAt:     s.now(),
	}
	req, err := s.users.CreateRequest(ctx, req)
	if err != nil {
		return domain.BloodRequest{}, 0, err
	}

	cutoff := s.now().Add(-donationCooldown)
	donors, err := s.users.MatchingDonors(ctx, req.BloodGroup, req.City, req.State, cutoff)
	if err != nil {
		s.log.Error("donor matching failed", "request", req.ID, "err", err)
		return req, 0, nil
	}
	notified := 0
	for _, donor := range donors {
		if err := s.notifier.NotifyDonor(ctx, donor, req); err != nil {
			s.log.Error("donor notification failed", "donor", donor.ID, "err", err)
			continue
		}
		notified++
	}
	return req, notified, nil
}

// Dashboard assembles the signed-in donor's overview.
func (s *DonorService) Dashboard(ctx context.Context, userID int64) (domain.Dashboard, error) {
	user, err := s.users.UserByID(ctx, userID)
	if err != nil {
		return domain.Dashboard{}, err
	}

	appointments, err := s.users.AppointmentsFor(ctx, userID)
	if err != nil {
		return domain.Dashboard{}, err
	}
	dash := domain.Dashboard{User: user}
	for _, a := range appointments {
		if a.Status == domain.AppointmentCompleted {
			dash.History = append(dash.History, a)
		} else if a.Status != domain.AppointmentCancelled {
			dash.Upcoming = append(dash.Upcoming, a)
		}
	}

	requests, err := s.users.PendingRequests(ctx, user.BloodGroup, user.City, user.State, 3)
	if err != nil {
		s.log.Error("pending request lookup failed", "user", userID, "err", err)
	} else {
		dash.MatchingRequests = requests
	}

	if s.scores != nil {
		badges, err := s.scores.Badges(ctx, userID)
		if err != nil {
			s.log.Error("badge lookup failed", "user", userID, "err", err)
		} else {
			dash.Badges = badges
		}
	}
	return dash, nil
}

// BookAppointment schedules a future donation slot.
func (s *DonorService) BookAppointment(ctx context.Context, userID int64, date time.Time, center string) (domain.Appointment, error) {
	if userID <= 0 {
		return domain.Appointment{}, domain.ErrUnauthorized
	}
	var problems []string
	if !date.After(s.now()) {
		problems = append(problems, "Appointment date must be in the future.")
	}
	if strings.TrimSpace(center) == "" {
		problems = append(problems, "Donation center is required.")
	}
	if len(problems) > 0 {
		return domain.Appointment{}, &domain.ValidationError{Problems: problems}
	}
	return s.users.CreateAppointment(ctx, domain.Appointment{
		UserID: userID,
		Date:   date,
		Center: strings.TrimSpace(center),
		Status: domain.AppointmentPending,
	})
}

// Appointments lists the donor's appointments, soonest first.
func (s *DonorService) Appointments(ctx context.Context, userID int64) ([]domain.Appointment, error) {
	if userID <= 0 {
		return nil, domain.ErrUnauthorized
	}
	return s.users.AppointmentsFor(ctx, userID)
}

// CancelAppointment cancels one of the donor's pending appointments.
func (s *DonorService) CancelAppointment(ctx context.Context, userID, appointmentID int64) error {
	if userID <= 0 {
		return domain.ErrUnauthorized
	}
	return s.users.CancelAppointment(ctx, userID, appointmentID)
}
