package domain

import "time"

// ChatTurn is one user/bot exchange inside a session transcript.
type ChatTurn struct {
	UserText string    `json:"user"`
	BotText  string    `json:"bot"`
	At       time.Time `json:"at"`
}

// FaqEntry is a canned question/answer pair, fixed at process start.
type FaqEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// TriviaQuestion models an MCQ question with exactly one correct choice.
type TriviaQuestion struct {
	Prompt       string   `json:"prompt"`
	Choices      []string `json:"choices"`
	CorrectIndex int      `json:"correctIndex"`
	Explanation  string   `json:"explanation"`
}

// TriviaCatalog is the fixed question bank for one game.
type TriviaCatalog struct {
	Game      string           `json:"game"`
	Questions []TriviaQuestion `json:"questions"`
}

// AnswerResult summarizes the outcome of a single answer submission.
type AnswerResult struct {
	Correct      bool   `json:"correct"`
	CorrectIndex int    `json:"correctIndex"`
	Explanation  string `json:"explanation"`
}

// LeaderboardEntry is a persisted score, append-only.
type LeaderboardEntry struct {
	UserID      int64     `json:"user_id"`
	DisplayName string    `json:"name"`
	Game        string    `json:"-"`
	Score       int       `json:"score"`
	AchievedAt  time.Time `json:"-"`
}

// Badge is a one-time achievement; at most one per (user, code).
type Badge struct {
	ID          int64     `json:"-"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	AwardedAt   time.Time `json:"awarded_at,omitempty"`
}

// StatSnapshot is a user's cumulative history for one game,
// the input to badge rules.
type StatSnapshot struct {
	Plays      int
	BestScore  int
	TotalScore int
}

// Average returns the mean score over all plays, 0 when none.
func (s StatSnapshot) Average() float64 {
	if s.Plays == 0 {
		return 0
	}
	return float64(s.TotalScore) / float64(s.Plays)
}

// User is a registered donor account.
type User struct {
	ID               int64      `json:"id"`
	Name             string     `json:"name"`
	Email            string     `json:"email"`
	PasswordHash     string     `json:"-"`
	Phone            string     `json:"phone"`
	Age              int        `json:"age"`
	BloodGroup       string     `json:"blood_group"`
	City             string     `json:"city"`
	State            string     `json:"state"`
	LastDonationDate *time.Time `json:"last_donation_date,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// BloodRequest is an open request for donors of a given group/location.
type BloodRequest struct {
	ID            int64     `json:"id"`
	RequesterName string    `json:"requester_name"`
	BloodGroup    string    `json:"blood_group"`
	City          string    `json:"city"`
	State         string    `json:"state"`
	Message       string    `json:"message"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

// Appointment statuses.
const (
	AppointmentPending   = "pending"
	AppointmentConfirmed = "confirmed"
	AppointmentCompleted = "completed"
	AppointmentCancelled = "cancelled"
)

// Appointment is a scheduled donation slot for a donor.
type Appointment struct {
	ID     int64     `json:"id"`
	UserID int64     `json:"user_id"`
	Date   time.Time `json:"appointment_date"`
	Center string    `json:"center"`
	Status string    `json:"status"`
}

// Dashboard aggregates everything the donor dashboard shows.
type Dashboard struct {
	User             User           `json:"user"`
	Upcoming         []Appointment  `json:"upcoming_appointments"`
	History          []Appointment  `json:"donation_history"`
	MatchingRequests []BloodRequest `json:"matching_requests"`
	Badges           []Badge        `json:"badges"`
}
