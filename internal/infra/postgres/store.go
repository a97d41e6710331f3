// Package postgres implements the persistence ports on a pgx connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bloodlink-service/internal/domain"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

const uniqueViolation = "23505"

// Store implements app.UserStore and app.ScoreStore against Postgres. All
// cross-user safety relies on per-row atomicity and the unique constraints
// declared in the migrations.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO users (name, email, password_hash, phone, age, blood_group, city, state, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		u.Name, u.Email, u.PasswordHash, u.Phone, u.Age, u.BloodGroup, u.City, u.State, u.CreatedAt,
	).Scan(&u.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.User{}, domain.ErrEmailTaken
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (domain.User, error) {
	return s.scanUser(s.pool.QueryRow(ctx, `
		SELECT id, name, email, password_hash, phone, age, blood_group, city, state, last_donation_date, created_at
		FROM users WHERE email = $1`, email))
}

func (s *Store) UserByID(ctx context.Context, id int64) (domain.User, error) {
	return s.scanUser(s.pool.QueryRow(ctx, `
		SELECT id, name, email, password_hash, phone, age, blood_group, city, state, last_donation_date, created_at
		FROM users WHERE id = $1`, id))
}

func (s *Store) scanUser(row pgx.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Phone, &u.Age,
		&u.BloodGroup, &u.City, &u.State, &u.LastDonationDate, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}

func (s *Store) CreateRequest(ctx context.Context, r domain.BloodRequest) (domain.BloodRequest, error) {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO requests (requester_name, blood_group, city, state, message, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		r.RequesterName, r.BloodGroup, r.City, r.State, r.Message, r.Status, r.CreatedAt,
	).Scan(&r.ID)
	if err != nil {
		return domain.BloodRequest{}, fmt.Errorf("create request: %w", err)
	}
	return r, nil
}

func (s *Store) MatchingDonors(ctx context.Context, bloodGroup, city, state string, cutoff time.Time) ([]domain.User, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, email, password_hash, phone, age, blood_group, city, state, last_donation_date, created_at
		FROM users
		WHERE blood_group = $1 AND city = $2 AND state = $3
		  AND (last_donation_date IS NULL OR last_donation_date <= $4)
		ORDER BY id`,
		bloodGroup, city, state, cutoff)
	if err != nil {
		return nil, fmt.Errorf("match donors: %w", err)
	}
	defer rows.Close()

	var donors []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Phone, &u.Age,
			&u.BloodGroup, &u.City, &u.State, &u.LastDonationDate, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("match donors: %w", err)
		}
		donors = append(donors, u)
	}
	return donors, rows.Err()
}

func (s *Store) PendingRequests(ctx context.Context, bloodGroup, city, state string, limit int) ([]domain.BloodRequest, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, requester_name, blood_group, city, state, message, status, created_at
		FROM requests
		WHERE status = 'pending' AND blood_group = $1 AND city = $2 AND state = $3
		ORDER BY created_at DESC
		LIMIT $4`,
		bloodGroup, city, state, limit)
	if err != nil {
		return nil, fmt.Errorf("pending requests: %w", err)
	}
	defer rows.Close()

	var out []domain.BloodRequest
	for rows.Next() {
		var r domain.BloodRequest
		if err := rows.Scan(&r.ID, &r.RequesterName, &r.BloodGroup, &r.City, &r.State,
			&r.Message, &r.Status, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("pending requests: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) CreateAppointment(ctx context.Context, a domain.Appointment) (domain.Appointment, error) {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO appointments (user_id, appointment_date, center, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		a.UserID, a.Date, a.Center, a.Status,
	).Scan(&a.ID)
	if err != nil {
		return domain.Appointment{}, fmt.Errorf("create appointment: %w", err)
	}
	return a, nil
}

func (s *Store) AppointmentsFor(ctx context.Context, userID int64) ([]domain.Appointment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, appointment_date, center, status
		FROM appointments WHERE user_id = $1
		ORDER BY appointment_date ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	defer rows.Close()

	var out []domain.Appointment
	for rows.Next() {
		var a domain.Appointment
		if err := rows.Scan(&a.ID, &a.UserID, &a.Date, &a.Center, &a.Status); err != nil {
			return nil, fmt.Errorf("list appointments: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) CancelAppointment(ctx context.Context, userID, appointmentID int64) error {
	var status string
	err := s.pool.QueryRow(ctx, `
		SELECT status FROM appointments WHERE id = $1 AND user_id = $2`,
		appointmentID, userID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrAppointmentNotFound
	}
	if err != nil {
		return fmt.Errorf("cancel appointment: %w", err)
	}
	if status != domain.AppointmentPending {
		return domain.ErrAppointmentNotPending
	}
	_, err = s.pool.Exec(ctx, `
		UPDATE appointments SET status = $1 WHERE id = $2 AND user_id = $3 AND status = $4`,
		domain.AppointmentCancelled, appointmentID, userID, domain.AppointmentPending)
	if err != nil {
		return fmt.Errorf("cancel appointment: %w", err)
	}
	return nil
}

func (s *Store) InsertScore(ctx context.Context, entry domain.LeaderboardEntry) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO game_scores (user_id, game, score, achieved_at)
		VALUES ($1, $2, $3, $4)`,
		entry.UserID, entry.Game, entry.Score, entry.AchievedAt)
	if err != nil {
		return fmt.Errorf("insert score: %w", err)
	}
	return nil
}

func (s *Store) Stats(ctx context.Context, userID int64, game string) (domain.StatSnapshot, error) {
	var stats domain.StatSnapshot
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(MAX(score), 0), COALESCE(SUM(score), 0)
		FROM game_scores WHERE user_id = $1 AND game = $2`,
		userID, game).Scan(&stats.Plays, &stats.BestScore, &stats.TotalScore)
	if err != nil {
		return domain.StatSnapshot{}, fmt.Errorf("load stats: %w", err)
	}
	return stats, nil
}

func (s *Store) Leaderboard(ctx context.Context, game string, limit int) ([]domain.LeaderboardEntry, error) {
	// Best score per user for display; the full history stays in game_scores
	// for badge rules.
	rows, err := s.pool.Query(ctx, `
		SELECT best.user_id, u.name, best.score, best.achieved_at
		FROM (
			SELECT DISTINCT ON (user_id) user_id, score, achieved_at
			FROM game_scores
			WHERE game = $1
			ORDER BY user_id, score DESC, achieved_at ASC
		) best
		JOIN users u ON u.id = best.user_id
		ORDER BY best.score DESC, best.achieved_at ASC
		LIMIT $2`,
		game, limit)
	if err != nil {
		return nil, fmt.Errorf("load leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []domain.LeaderboardEntry
	for rows.Next() {
		e := domain.LeaderboardEntry{Game: game}
		if err := rows.Scan(&e.UserID, &e.DisplayName, &e.Score, &e.AchievedAt); err != nil {
			return nil, fmt.Errorf("load leaderboard: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Store) AwardBadge(ctx context.Context, userID int64, code string, at time.Time) (domain.Badge, bool, error) {
	// The unique index on (user_id, badge_id) absorbs duplicate awards,
	// including racing ones; RowsAffected tells us whether this call won.
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO user_badges (user_id, badge_id, awarded_at)
		SELECT $1, b.id, $2 FROM badges b WHERE b.code = $3
		ON CONFLICT (user_id, badge_id) DO NOTHING`,
		userID, at, code)
	if err != nil {
		return domain.Badge{}, false, fmt.Errorf("award badge: %w", err)
	}

	var badge domain.Badge
	err = s.pool.QueryRow(ctx, `
		SELECT b.id, b.code, b.name, b.description, ub.awarded_at
		FROM user_badges ub
		JOIN badges b ON b.id = ub.badge_id
		WHERE ub.user_id = $1 AND b.code = $2`,
		userID, code).Scan(&badge.ID, &badge.Code, &badge.Name, &badge.Description, &badge.AwardedAt)
	if err != nil {
		return domain.Badge{}, false, fmt.Errorf("award badge: %w", err)
	}
	return badge, tag.RowsAffected() > 0, nil
}

func (s *Store) BadgesFor(ctx context.Context, userID int64) ([]domain.Badge, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT b.id, b.code, b.name, b.description, ub.awarded_at
		FROM user_badges ub
		JOIN badges b ON b.id = ub.badge_id
		WHERE ub.user_id = $1
		ORDER BY ub.awarded_at ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("load badges: %w", err)
	}
	defer rows.Close()

	var badges []domain.Badge
	for rows.Next() {
		var b domain.Badge
		if err := rows.Scan(&b.ID, &b.Code, &b.Name, &b.Description, &b.AwardedAt); err != nil {
			return nil, fmt.Errorf("load badges: %w", err)
		}
		badges = append(badges, b)
	}
	return badges, rows.Err()
}
