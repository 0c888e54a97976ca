package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"socialfeed/internal/models"

	"github.com/go-playground/validator/v10"
)

// userValidate checks signup and profile inputs.
var userValidate *validator.Validate

func init() {
	userValidate = validator.New(validator.WithRequiredStructEnabled())
	_ = userValidate.RegisterValidation("handle", validateHandle)
}

// validateHandle rejects handles containing whitespace.
func validateHandle(fl validator.FieldLevel) bool {
	return !strings.ContainsFunc(fl.Field().String(), unicode.IsSpace)
}

// UserService manages accounts and profiles.
type UserService struct {
	*core
}

type CreateUserInput struct {
	Username string `validate:"required,max=64"`
	Email    string `validate:"required,email,max=254"`
	Handle   string `validate:"omitempty,max=64,handle"`
	Bio      string `validate:"max=500"`
	PhotoRef string
}

// SaveProfileInput replaces the editable profile fields. A nil PhotoRef keeps the current photo.
type SaveProfileInput struct {
	Username string `validate:"required,max=64"`
	Email    string `validate:"required,email,max=254"`
	Handle   string `validate:"omitempty,max=64,handle"`
	Bio      string `validate:"max=500"`
	PhotoRef *string
}

// ProfileResult is the saved user and the number of posts whose author name was resynced.
type ProfileResult struct {
	User         *models.User `json:"user"`
	PostsRenamed int          `json:"posts_renamed"`
}

// CreateUser registers a new account. Emails are unique ignoring case.
func (s *UserService) CreateUser(ctx context.Context, in CreateUserInput) (u *models.User, err error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.Handle = strings.TrimSpace(in.Handle)
	in.Bio = strings.TrimSpace(in.Bio)
	if err := userValidate.Struct(in); err != nil {
		return nil, validationError(err)
	}

	ctx, done := s.startOperation(ctx, "UserService.CreateUser", Session{})
	defer func() { done(err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.users.List(ctx)
	if err != nil {
		return nil, internalErr(err)
	}
	if users.ByEmail(in.Email) != nil {
		return nil, models.NewConflictError("An account with that email already exists")
	}

	handle := in.Handle
	if handle == "" {
		handle = models.DefaultHandle(in.Username)
	}
	u = &models.User{
		ID:        s.newID("user"),
		Username:  in.Username,
		Email:     in.Email,
		Handle:    handle,
		PhotoRef:  strings.TrimSpace(in.PhotoRef),
		Bio:       in.Bio,
		Following: []string{},
		CreatedAt: s.now(),
	}
	users = append(users, u)
	if err := s.users.SaveAll(ctx, users); err != nil {
		return nil, internalErr(err)
	}
	return u, nil
}

// SaveProfile updates the session user's profile and resyncs the author name on their posts.
func (s *UserService) SaveProfile(ctx context.Context, sess Session, in SaveProfileInput) (res ProfileResult, err error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.Handle = strings.TrimSpace(in.Handle)
	in.Bio = strings.TrimSpace(in.Bio)
	if err := userValidate.Struct(in); err != nil {
		return ProfileResult{}, validationError(err)
	}

	ctx, done := s.startOperation(ctx, "UserService.SaveProfile", sess)
	defer func() { done(err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.users.List(ctx)
	if err != nil {
		return ProfileResult{}, internalErr(err)
	}
	me, err := actor(users, sess)
	if err != nil {
		return ProfileResult{}, err
	}
	if other := users.ByEmail(in.Email); other != nil && other.ID != me.ID {
		return ProfileResult{}, models.NewConflictError("An account with that email already exists")
	}

	me.Username = in.Username
	me.Email = in.Email
	me.Handle = in.Handle
	if me.Handle == "" {
		me.Handle = models.DefaultHandle(in.Username)
	}
	me.Bio = in.Bio
	if in.PhotoRef != nil {
		me.PhotoRef = strings.TrimSpace(*in.PhotoRef)
	}
	if err := s.users.SaveAll(ctx, users); err != nil {
		return ProfileResult{}, internalErr(err)
	}

	renamed, err := s.renameAuthor(ctx, me.ID, me.Username)
	if err != nil {
		return ProfileResult{}, err
	}
	return ProfileResult{User: me, PostsRenamed: renamed}, nil
}

func (s *UserService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, internalErr(err)
	}
	u := users.ByID(userID)
	if u == nil {
		return nil, models.NewNotFoundError("User", userID)
	}
	return u, nil
}

// FindByEmail looks a user up by email, ignoring case.
func (s *UserService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, internalErr(err)
	}
	u := users.ByEmail(email)
	if u == nil {
		return nil, models.NewNotFoundError("User", email)
	}
	return u, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]*models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, internalErr(err)
	}
	if users == nil {
		return []*models.User{}, nil
	}
	return users, nil
}

// validationError turns the first failed rule into a readable message.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return models.NewValidationError(err.Error())
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return models.NewValidationError(fmt.Sprintf("%s is required", fe.Field()))
	case "email":
		return models.NewValidationError("Email must be a valid email address")
	case "max":
		return models.NewValidationError(fmt.Sprintf("%s too long (max %s characters)", fe.Field(), fe.Param()))
	case "handle":
		return models.NewValidationError("Handle must not contain spaces")
	default:
		return models.NewValidationError(fmt.Sprintf("%s is invalid", fe.Field()))
	}
}
