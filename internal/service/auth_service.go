package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"go-discussion-board/internal/model"
	"go-discussion-board/internal/token"
	"go-discussion-board/pkg/apierror"
)

const minUsernameLength = 3

// UserStore is the persistence surface the auth service needs.
type UserStore interface {
	FindByID(ctx context.Context, id int64) (model.User, error)
	FindByUsername(ctx context.Context, username string) (model.User, error)
	Create(ctx context.Context, username string) (model.User, error)
	UpdateAvatar(ctx context.Context, id int64, avatarURL *string) (model.User, error)
}

type AuthService struct {
	users  UserStore
	tokens *token.Issuer
}

func NewAuthService(users UserStore, tokens *token.Issuer) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// RegisterOrLogin resolves the username to a user, creating it on first
// sight, and issues an access token either way. The username is both the
// identifier and the sole credential; there is no password anywhere in this
// flow, so signup and login collapse into one idempotent operation.
func (s *AuthService) RegisterOrLogin(ctx context.Context, username string) (model.AuthSession, error) {
	username = strings.TrimSpace(username)
	if utf8.RuneCountInString(username) < minUsernameLength {
		return model.AuthSession{}, apierror.New("BAD_REQUEST",
			"username must be at least 3 characters", "username", http.StatusBadRequest)
	}

	user, err := s.users.FindByUsername(ctx, username)
	if errors.Is(err, model.ErrUserNotFound) {
		user, err = s.users.Create(ctx, username)
		if errors.Is(err, model.ErrUserAlreadyExists) {
			// A concurrent registration for the same username won the
			// insert; their row is ours too. Log in against it.
			user, err = s.users.FindByUsername(ctx, username)
		}
	}
	if err != nil {
		return model.AuthSession{}, err
	}

	return s.session(user)
}

// Authenticate verifies a bearer token and re-resolves its subject against
// the user store. A token whose user has since been deleted is rejected.
func (s *AuthService) Authenticate(ctx context.Context, rawToken string) (model.User, error) {
	claims, err := s.tokens.Verify(rawToken)
	if err != nil {
		return model.User{}, err
	}

	userID, err := claims.UserID()
	if err != nil {
		return model.User{}, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.User{}, model.ErrUnauthorized
	}
	if err != nil {
		return model.User{}, err
	}

	return user, nil
}

// UpdateAvatar sets the one mutable user field. An empty URL clears the
// avatar back to null.
func (s *AuthService) UpdateAvatar(ctx context.Context, userID int64, avatarURL string) (model.User, error) {
	avatarURL = strings.TrimSpace(avatarURL)

	var av *string
	if avatarURL != "" {
		av = &avatarURL
	}

	return s.users.UpdateAvatar(ctx, userID, av)
}

func (s *AuthService) session(user model.User) (model.AuthSession, error) {
	accessToken, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return model.AuthSession{}, err
	}

	return model.AuthSession{
		User:        user,
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.tokens.TTL().Seconds()),
	}, nil
}
