package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"taskflow/internal/domain/entity"
	repo "taskflow/internal/domain/repository"
	"taskflow/pkg/helpers"
	"taskflow/pkg/mailer"
)

// emailShape is intentionally loose: one @ separating non-empty local and
// domain parts with at least one dot in the domain.
var emailShape = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// UserService is the auth gate and profile service: it owns registration,
// login, session issue/revoke, and reads/writes of the caller's own profile.
type UserService struct {
	Repo         repo.UserRepository
	Sessions     *helpers.SessionStore
	JWT          *helpers.JWTManager
	GCS          *storage.Client
	GCSBucket    string
	Pub          *helpers.RabbitPublisher
	Logger       *logrus.Logger
	ES           *elasticsearch.Client
	ESUsersIndex string
}

// TokenPair is the credential issued at register/login: a short-lived access
// token and a refresh token, both bound to one session ID.
type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// NormalizeEmail lowercases and trims an email so uniqueness and login are
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user, issues a session, and enqueues a welcome email.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*entity.User, TokenPair, error) {
	name := strings.TrimSpace(in.Name)
	if utf8.RuneCountInString(name) < 2 || utf8.RuneCountInString(name) > 50 {
		return nil, TokenPair{}, invalid("name", "must be between 2 and 50 characters")
	}
	email := NormalizeEmail(in.Email)
	if !emailShape.MatchString(email) {
		return nil, TokenPair{}, invalid("email", "must be a valid email")
	}
	if len(in.Password) < 6 {
		return nil, TokenPair{}, invalid("password", "must be at least 6 characters long")
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, TokenPair{}, fmt.Errorf("hash password: %w", err)
	}

	u := &entity.User{Email: email, Password: hash, Name: name}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return nil, TokenPair{}, ErrEmailTaken
		}
		return nil, TokenPair{}, err
	}

	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}

	s.sendWelcomeEmail(ctx, u)
	_ = s.indexUser(ctx, u)
	return u, pair, nil
}

// Authenticate validates email/password without issuing tokens. Unknown
// email and wrong password both return ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	u, err := s.Repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil || u == nil {
		return nil, ErrInvalidCredentials
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// Login authenticates and issues a fresh session, superseding any previous one.
func (s *UserService) Login(ctx context.Context, email, password string) (*entity.User, TokenPair, error) {
	u, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, TokenPair{}, err
	}
	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

// IssueTokens generates an access/refresh pair under a new session ID and
// records the session in Redis.
func (s *UserService) IssueTokens(ctx context.Context, u *entity.User) (TokenPair, error) {
	sid := uuid.NewString()
	access, aexp, err := s.JWT.GenerateAccessToken(u.ID, sid)
	if err != nil {
		return TokenPair{}, fmt.Errorf("generate access token: %w", err)
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(u.ID, sid)
	if err != nil {
		return TokenPair{}, fmt.Errorf("generate refresh token: %w", err)
	}
	if err := s.Sessions.Save(ctx, u.ID, sid, u.Email, u.Name); err != nil {
		return TokenPair{}, fmt.Errorf("save session: %w", err)
	}
	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

// Refresh rotates the session and token pair when the refresh token is valid
// and still belongs to the current session.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, ErrInvalidCredentials
	}
	u, err := s.Repo.GetByID(ctx, claims.UserID)
	if err != nil || u == nil {
		return TokenPair{}, ErrInvalidCredentials
	}
	ok, err := s.Sessions.Resolve(ctx, u.ID, claims.SessionID)
	if err != nil || !ok {
		return TokenPair{}, ErrInvalidCredentials
	}

	sid := uuid.NewString()
	access, aexp, err := s.JWT.GenerateAccessToken(u.ID, sid)
	if err != nil {
		return TokenPair{}, fmt.Errorf("generate access token: %w", err)
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(u.ID, sid)
	if err != nil {
		return TokenPair{}, fmt.Errorf("generate refresh token: %w", err)
	}
	if err := s.Sessions.Rotate(ctx, u.ID, sid); err != nil {
		return TokenPair{}, fmt.Errorf("rotate session: %w", err)
	}
	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

// Logout revokes the user's session; every outstanding token stops resolving.
func (s *UserService) Logout(ctx context.Context, userID string) error {
	return s.Sessions.Revoke(ctx, userID)
}

// GetProfile returns the caller's own user record.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// UpdateProfileInput carries optional fields: nil means "leave unchanged".
type UpdateProfileInput struct {
	Name      *string
	Bio       *string
	AvatarURL *string
}

// UpdateProfile merges only the supplied fields into the existing record.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if utf8.RuneCountInString(name) < 2 || utf8.RuneCountInString(name) > 50 {
			return nil, invalid("name", "must be between 2 and 50 characters")
		}
		u.Name = name
	}
	if in.Bio != nil {
		if utf8.RuneCountInString(*in.Bio) > 500 {
			return nil, invalid("bio", "must be at most 500 characters")
		}
		u.Bio = *in.Bio
	}
	if in.AvatarURL != nil {
		if *in.AvatarURL != "" && !validURL(*in.AvatarURL) {
			return nil, invalid("avatar", "must be a valid URL")
		}
		u.AvatarURL = *in.AvatarURL
	}

	if err := s.Repo.Update(ctx, u); err != nil {
		return nil, err
	}
	_ = s.indexUser(ctx, u)
	return u, nil
}

// UploadAvatar stores an avatar in GCS and points the profile at its URL.
func (s *UserService) UploadAvatar(ctx context.Context, userID string, r io.Reader, filename, contentType string) (*entity.User, error) {
	if s.GCS == nil || s.GCSBucket == "" {
		return nil, errors.New("avatar storage not configured")
	}
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join("avatars", userID, uuid.NewString()+ext))
	avatarURL, err := helpers.UploadObject(ctx, s.GCS, s.GCSBucket, objectPath, contentType, r)
	if err != nil {
		return nil, fmt.Errorf("upload avatar: %w", err)
	}

	u.AvatarURL = avatarURL
	if err := s.Repo.Update(ctx, u); err != nil {
		return nil, err
	}
	_ = s.indexUser(ctx, u)
	return u, nil
}

func validURL(s string) bool {
	parsed, err := url.Parse(s)
	return err == nil && parsed.Scheme != "" && parsed.Host != ""
}

func (s *UserService) sendWelcomeEmail(ctx context.Context, u *entity.User) {
	if s.Pub == nil {
		return
	}
	job := mailer.EmailJob{
		To:      u.Email,
		Subject: "Welcome to TaskFlow",
		Text:    "Hi " + u.Name + ",\n\nYour account is ready. Log in and start tracking your tasks.",
	}
	if err := s.Pub.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("enqueue welcome email failed")
	}
}

// indexUser mirrors the public user fields into Elasticsearch, best effort.
func (s *UserService) indexUser(ctx context.Context, u *entity.User) error {
	if s.ES == nil || s.ESUsersIndex == "" {
		return nil
	}
	doc := map[string]any{
		"id":         u.ID,
		"email":      u.Email,
		"name":       u.Name,
		"bio":        u.Bio,
		"avatar_url": u.AvatarURL,
		"created_at": u.CreatedAt.Format(time.RFC3339Nano),
		"updated_at": u.UpdatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESUsersIndex, DocumentID: u.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("es index failed")
		}
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("user_id", u.ID).Warn("es index response error")
	}
	return nil
}
