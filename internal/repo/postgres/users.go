package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/unilinkhq/unilink/internal/domain/user"
	"github.com/unilinkhq/unilink/internal/observability"
)

var ErrEmailAlreadyUsed = errors.New("email already in use")

// userColumns is the SELECT/RETURNING list; scanUser must stay in the same
// order.
const userColumns = `id, name, email, email_verified, password_hash, image,
	created_at, updated_at, role,
	registration_number, university, enrollment_year,
	aadhaar_number, graduation_year, current_company, current_position,
	institution_id, institution_name, accreditation_status,
	department_id, department_name, access_level,
	bio, phone, location, linkedin_url, github_url, portfolio_url, career_goals,
	skills, interests, achievements, projects, mentorship_preferences`

// updateColumns maps the JSON field names accepted on the profile-update path
// to their columns. Keys not present here never reach SQL.
var updateColumns = map[string]string{
	"name":                  "name",
	"image":                 "image",
	"role":                  "role",
	"registrationNumber":    "registration_number",
	"university":            "university",
	"enrollmentYear":        "enrollment_year",
	"aadhaarNumber":         "aadhaar_number",
	"graduationYear":        "graduation_year",
	"currentCompany":        "current_company",
	"currentPosition":       "current_position",
	"institutionId":         "institution_id",
	"institutionName":       "institution_name",
	"accreditationStatus":   "accreditation_status",
	"departmentId":          "department_id",
	"departmentName":        "department_name",
	"accessLevel":           "access_level",
	"bio":                   "bio",
	"phone":                 "phone",
	"location":              "location",
	"linkedinUrl":           "linkedin_url",
	"githubUrl":             "github_url",
	"portfolioUrl":          "portfolio_url",
	"careerGoals":           "career_goals",
	"skills":                "skills",
	"interests":             "interests",
	"achievements":          "achievements",
	"projects":              "projects",
	"mentorshipPreferences": "mentorship_preferences",
}

// integer columns need an explicit conversion because JSON numbers decode to
// float64
var intColumns = map[string]struct{}{
	"enrollment_year": {},
	"graduation_year": {},
}

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, prom: prom}
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	err := r.observe("users.create", func() error {
		_, execErr := r.pool.Exec(ctx,
			`INSERT INTO users (
				id, name, email, email_verified, password_hash, image,
				created_at, updated_at, role,
				registration_number, university, enrollment_year,
				aadhaar_number, graduation_year, current_company, current_position,
				institution_id, institution_name, accreditation_status,
				department_id, department_name, access_level
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22)`,
			u.ID, u.Name, u.Email, u.EmailVerified, u.PasswordHash, u.Image,
			u.CreatedAt, u.UpdatedAt, u.Role,
			u.RegistrationNumber, u.University, u.EnrollmentYear,
			u.AadhaarNumber, u.GraduationYear, u.CurrentCompany, u.CurrentPosition,
			u.InstitutionID, u.InstitutionName, u.AccreditationStatus,
			u.DepartmentID, u.DepartmentName, u.AccessLevel,
		)
		return execErr
	})

	if err != nil {
		var pgErr *pgconn.PgError

		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return user.User{}, ErrEmailAlreadyUsed
		}

		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User

	err := r.observe("users.get_by_email", func() error {
		var scanErr error

		u, scanErr = scanUser(r.pool.QueryRow(ctx,
			`SELECT `+userColumns+` FROM users WHERE email = $1`,
			email,
		))

		return scanErr
	})

	return u, err
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	var u user.User

	err := r.observe("users.get_by_id", func() error {
		var scanErr error

		u, scanErr = scanUser(r.pool.QueryRow(ctx,
			`SELECT `+userColumns+` FROM users WHERE id = $1`,
			id,
		))

		return scanErr
	})

	return u, err
}

// UpdateProfile applies the already-validated field set as one UPDATE.
// updated_at is always advanced, even when the values are a no-op.
func (r *UsersRepo) UpdateProfile(ctx context.Context, id string, fields map[string]any) (user.User, error) {
	// deterministic placeholder order keeps the statement stable across calls
	keys := make([]string, 0, len(fields))

	for key := range fields {
		if _, ok := updateColumns[key]; ok {
			keys = append(keys, key)
		}
	}

	sort.Strings(keys)

	if len(keys) == 0 {
		return user.User{}, errors.New("no updatable columns in field set")
	}

	set := make([]string, 0, len(keys)+1)
	args := make([]any, 0, len(keys)+2)

	for _, key := range keys {
		col := updateColumns[key]
		val := fields[key]

		if _, ok := intColumns[col]; ok {
			if f, isFloat := val.(float64); isFloat {
				val = int64(f)
			}
		}

		args = append(args, val)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	args = append(args, time.Now().UTC())
	set = append(set, fmt.Sprintf("updated_at = $%d", len(args)))

	args = append(args, id)

	query := fmt.Sprintf(
		`UPDATE users SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(set, ", "), len(args), userColumns,
	)

	var u user.User

	err := r.observe("users.update_profile", func() error {
		var scanErr error
		u, scanErr = scanUser(r.pool.QueryRow(ctx, query, args...))
		return scanErr
	})

	return u, err
}

func (r *UsersRepo) MarkEmailVerified(ctx context.Context, id string) (user.User, error) {
	var u user.User

	err := r.observe("users.mark_email_verified", func() error {
		var scanErr error

		u, scanErr = scanUser(r.pool.QueryRow(ctx,
			`UPDATE users SET email_verified = TRUE, updated_at = $2 WHERE id = $1 RETURNING `+userColumns,
			id, time.Now().UTC(),
		))

		return scanErr
	})

	return u, err
}

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User

	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.EmailVerified, &u.PasswordHash, &u.Image,
		&u.CreatedAt, &u.UpdatedAt, &u.Role,
		&u.RegistrationNumber, &u.University, &u.EnrollmentYear,
		&u.AadhaarNumber, &u.GraduationYear, &u.CurrentCompany, &u.CurrentPosition,
		&u.InstitutionID, &u.InstitutionName, &u.AccreditationStatus,
		&u.DepartmentID, &u.DepartmentName, &u.AccessLevel,
		&u.Bio, &u.Phone, &u.Location, &u.LinkedinURL, &u.GithubURL, &u.PortfolioURL, &u.CareerGoals,
		&u.Skills, &u.Interests, &u.Achievements, &u.Projects, &u.MentorshipPreferences,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}

	return u, nil
}
