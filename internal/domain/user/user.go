package user

import (
	"encoding/json"
	"errors"
	"time"
)

var ErrNotFound = errors.New("user not found")

// User mirrors one row of the users table. The optional persona and profile
// columns are pointers so a missing value round-trips as JSON null instead of
// a zero value.
type User struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	EmailVerified bool      `json:"emailVerified"`
	PasswordHash  string    `json:"-"` // never expose hash in JSON
	Image         *string   `json:"image"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`

	// Persona tag: alumni | student | university | government. Free text on
	// purpose; nothing cross-checks it against the persona columns below.
	Role *string `json:"role"`

	// Student
	RegistrationNumber *string `json:"registrationNumber"`
	University         *string `json:"university"`
	EnrollmentYear     *int    `json:"enrollmentYear"`

	// Alumni
	AadhaarNumber   *string `json:"aadhaarNumber"`
	GraduationYear  *int    `json:"graduationYear"`
	CurrentCompany  *string `json:"currentCompany"`
	CurrentPosition *string `json:"currentPosition"`

	// University
	InstitutionID       *string `json:"institutionId"`
	InstitutionName     *string `json:"institutionName"`
	AccreditationStatus *string `json:"accreditationStatus"`

	// Government
	DepartmentID   *string `json:"departmentId"`
	DepartmentName *string `json:"departmentName"`
	AccessLevel    *string `json:"accessLevel"`

	// Profile
	Bio          *string `json:"bio"`
	Phone        *string `json:"phone"`
	Location     *string `json:"location"`
	LinkedinURL  *string `json:"linkedinUrl"`
	GithubURL    *string `json:"githubUrl"`
	PortfolioURL *string `json:"portfolioUrl"`
	CareerGoals  *string `json:"careerGoals"`

	// Structured collections, stored as JSONB and returned verbatim.
	Skills                json.RawMessage `json:"skills"`
	Interests             json.RawMessage `json:"interests"`
	Achievements          json.RawMessage `json:"achievements"`
	Projects              json.RawMessage `json:"projects"`
	MentorshipPreferences json.RawMessage `json:"mentorshipPreferences"`
}
