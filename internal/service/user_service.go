package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"eldrix/admin/internal/apperr"
	"eldrix/admin/internal/ids"
	"eldrix/admin/internal/models"
	"eldrix/admin/internal/notify"
	"eldrix/admin/internal/repository"
	"eldrix/admin/internal/security"
)

type CreateUserInput struct {
	Name         string `validate:"required,max=120"`
	Email        string `validate:"required,email"`
	Phone        string `validate:"required,e164"`
	TempPassword string `validate:"required,min=8,max=128"`
}

type CreateUserResult struct {
	User      models.User
	SetupLink string
	SMSQueued bool
}

type UserDetail struct {
	User      models.User
	TechUsage []models.TechUsage
}

type UserService struct {
	users         UserStore
	techUsage     TechUsageStore
	notifier      notify.Notifier
	setupLinkBase string
	setupSecret   string
	hash          func(string) (string, error)
	now           func() time.Time
	log           zerolog.Logger
}

func NewUserService(users UserStore, techUsage TechUsageStore, notifier notify.Notifier, setupLinkBase, setupSecret string, log zerolog.Logger) *UserService {
	return &UserService{
		users:         users,
		techUsage:     techUsage,
		notifier:      notifier,
		setupLinkBase: setupLinkBase,
		setupSecret:   setupSecret,
		hash:          security.HashPassword,
		now:           func() time.Time { return time.Now().UTC() },
		log:           log,
	}
}

// Create registers a user with the onboarding defaults and queues a welcome
// SMS carrying a signed setup link.
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (CreateUserResult, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Phone = strings.TrimSpace(input.Phone)
	if err := validateInput(input); err != nil {
		return CreateUserResult{}, err
	}

	hash, err := s.hash(input.TempPassword)
	if err != nil {
		return CreateUserResult{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	user := models.User{
		ID:                     ids.New(),
		Name:                   input.Name,
		Email:                  input.Email,
		Phone:                  input.Phone,
		PasswordHash:           []byte(hash),
		PreferredContactMethod: models.ContactMethodPhone,
		ExperienceLevel:        models.ExperienceBeginner,
		EmailList:              true,
		SMSConsent:             true,
		Notification:           false,
		DarkMode:               false,
		CreatedAt:              now,
		UpdatedAt:              now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return CreateUserResult{}, apperr.ErrConflict.WithMessage("User with this email already exists")
		}
		return CreateUserResult{}, fmt.Errorf("create user: %w", err)
	}

	link := security.SetupLink(s.setupLinkBase, s.setupSecret, user.ID)
	result := CreateUserResult{User: user, SetupLink: link}

	if s.notifier != nil {
		err := s.notifier.Notify(ctx, notify.Notification{
			Kind:   notify.KindUserWelcome,
			UserID: user.ID,
			Phone:  user.Phone,
			Text:   fmt.Sprintf("Hi %s, welcome to Eldrix! Finish setting up your account here: %s", user.Name, link),
		})
		if err != nil {
			s.log.Error().Err(err).Str("user_id", user.ID).Msg("queue welcome sms failed")
		} else {
			result.SMSQueued = true
		}
	}

	s.log.Info().Str("user_id", user.ID).Bool("sms_queued", result.SMSQueued).Msg("user created")
	return result, nil
}

func (s *UserService) Get(ctx context.Context, id string) (UserDetail, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return UserDetail{}, apperr.NotFound("User")
		}
		return UserDetail{}, fmt.Errorf("load user: %w", err)
	}
	usage, err := s.techUsage.ListByUser(ctx, id)
	if err != nil {
		return UserDetail{}, fmt.Errorf("load tech usage: %w", err)
	}
	return UserDetail{User: user, TechUsage: usage}, nil
}

// List returns users ordered by name, case-insensitively.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperr.NotFound("User")
		}
		return fmt.Errorf("delete user: %w", err)
	}
	s.log.Info().Str("user_id", id).Msg("user deleted")
	return nil
}
