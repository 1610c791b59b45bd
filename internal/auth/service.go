package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/unilinkhq/unilink/internal/domain/session"
	"github.com/unilinkhq/unilink/internal/domain/user"
	"github.com/unilinkhq/unilink/internal/security"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type UserStore interface {
	Create(ctx context.Context, u user.User) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	MarkEmailVerified(ctx context.Context, id string) (user.User, error)
}

type SessionWriter interface {
	Create(ctx context.Context, sess session.Session) error
	GetByToken(ctx context.Context, token string) (session.Session, error)
	DeleteByToken(ctx context.Context, token string) error
}

// Service issues and tears down sessions. The profile endpoints only ever
// read them, through Sessions.Verify.
type Service struct {
	users        UserStore
	sessions     SessionWriter
	verification *VerificationManager
	sessionTTL   time.Duration
}

func NewService(users UserStore, sessions SessionWriter, verification *VerificationManager, sessionTTL time.Duration) *Service {
	return &Service{
		users:        users,
		sessions:     sessions,
		verification: verification,
		sessionTTL:   sessionTTL,
	}
}

// SignUpParams carries the registration form. The persona fields are optional
// and land on the user row as-is.
type SignUpParams struct {
	Name     string
	Email    string
	Password string
	Role     *string

	RegistrationNumber *string
	University         *string
	EnrollmentYear     *int

	AadhaarNumber   *string
	GraduationYear  *int
	CurrentCompany  *string
	CurrentPosition *string

	InstitutionID       *string
	InstitutionName     *string
	AccreditationStatus *string

	DepartmentID   *string
	DepartmentName *string
	AccessLevel    *string

	IPAddress *string
	UserAgent *string
}

// SignUp creates the account and an initial session, and returns a signed
// email-verification token to be delivered out-of-band.
func (s *Service) SignUp(ctx context.Context, params SignUpParams) (user.User, session.Session, string, error) {
	hash, err := security.HashPassword(params.Password)

	if err != nil {
		return user.User{}, session.Session{}, "", err
	}

	now := time.Now().UTC()

	u := user.User{
		ID:           uuid.NewString(),
		Name:         params.Name,
		Email:        params.Email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,

		Role:               params.Role,
		RegistrationNumber: params.RegistrationNumber,
		University:         params.University,
		EnrollmentYear:     params.EnrollmentYear,

		AadhaarNumber:   params.AadhaarNumber,
		GraduationYear:  params.GraduationYear,
		CurrentCompany:  params.CurrentCompany,
		CurrentPosition: params.CurrentPosition,

		InstitutionID:       params.InstitutionID,
		InstitutionName:     params.InstitutionName,
		AccreditationStatus: params.AccreditationStatus,

		DepartmentID:   params.DepartmentID,
		DepartmentName: params.DepartmentName,
		AccessLevel:    params.AccessLevel,
	}

	created, err := s.users.Create(ctx, u)

	if err != nil {
		return user.User{}, session.Session{}, "", err
	}

	sess, err := s.createSession(ctx, created.ID, params.IPAddress, params.UserAgent)

	if err != nil {
		return user.User{}, session.Session{}, "", err
	}

	verifyToken, err := s.verification.Generate(created.ID, created.Email)

	if err != nil {
		return user.User{}, session.Session{}, "", err
	}

	return created, sess, verifyToken, nil
}

func (s *Service) SignIn(ctx context.Context, email, password string, ip, userAgent *string) (user.User, session.Session, error) {
	found, err := s.users.GetByEmail(ctx, email)

	if err != nil {
		// do not leak whether the email exists
		return user.User{}, session.Session{}, ErrInvalidCredentials
	}

	err = security.CheckPassword(found.PasswordHash, password)

	if err != nil {
		return user.User{}, session.Session{}, ErrInvalidCredentials
	}

	sess, err := s.createSession(ctx, found.ID, ip, userAgent)

	if err != nil {
		return user.User{}, session.Session{}, err
	}

	return found, sess, nil
}

// SignOut is idempotent: deleting an unknown token succeeds.
func (s *Service) SignOut(ctx context.Context, token string) error {
	err := s.sessions.DeleteByToken(ctx, token)

	if errors.Is(err, session.ErrNotFound) {
		return nil
	}

	return err
}

// Session resolves a token to its session and owning user.
func (s *Service) Session(ctx context.Context, token string) (session.Session, user.User, error) {
	sess, err := s.sessions.GetByToken(ctx, token)

	if err != nil {
		return session.Session{}, user.User{}, err
	}

	if sess.Expired(time.Now().UTC()) {
		return session.Session{}, user.User{}, ErrSessionExpired
	}

	u, err := s.users.GetByID(ctx, sess.UserID)

	if err != nil {
		return session.Session{}, user.User{}, err
	}

	return sess, u, nil
}

func (s *Service) VerifyEmail(ctx context.Context, token string) (user.User, error) {
	claims, err := s.verification.Verify(token)

	if err != nil {
		return user.User{}, err
	}

	return s.users.MarkEmailVerified(ctx, claims.UserID)
}

func (s *Service) createSession(ctx context.Context, userID string, ip, userAgent *string) (session.Session, error) {
	token, err := newSessionToken()

	if err != nil {
		return session.Session{}, err
	}

	now := time.Now().UTC()

	sess := session.Session{
		ID:        uuid.NewString(),
		Token:     token,
		UserID:    userID,
		ExpiresAt: now.Add(s.sessionTTL),
		CreatedAt: now,
		UpdatedAt: now,
		IPAddress: ip,
		UserAgent: userAgent,
	}

	err = s.sessions.Create(ctx, sess)

	if err != nil {
		return session.Session{}, err
	}

	return sess, nil
}

func newSessionToken() (string, error) {
	buf := make([]byte, 32)

	_, err := rand.Read(buf)

	if err != nil {
		return "", err
	}

	return hex.EncodeToString(buf), nil
}
