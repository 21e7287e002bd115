package types

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type RegisterRequest struct {
	Username string `form:"username" json:"username" validate:"required,max=64"`
	Email    string `form:"email" json:"email" validate:"required,email,max=255"`
	Password string `form:"password" json:"password" validate:"required"`
	Fullname string `form:"fullname" json:"fullname" validate:"required,max=255"`

	// Local paths of staged uploads, filled in by the transport layer.
	AvatarPath     string `form:"-" json:"-"`
	CoverImagePath string `form:"-" json:"-"`
}

func NewRegisterRequestFromContext(ctx echo.Context) (*RegisterRequest, error) {
	var body RegisterRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	return &body, nil
}

func (r *RegisterRequest) Validate() error {
	r.Username = strings.ToLower(strings.TrimSpace(r.Username))
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Fullname = strings.TrimSpace(r.Fullname)

	if r.Username == "" || r.Email == "" || r.Fullname == "" || strings.TrimSpace(r.Password) == "" {
		return errors.New("all fields are required")
	}

	return structError(validate.Struct(r))
}

type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

func NewLoginRequestFromContext(ctx echo.Context) (*LoginRequest, error) {
	var body LoginRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	return &body, nil
}

func (r *LoginRequest) Validate() error {
	r.Username = strings.ToLower(strings.TrimSpace(r.Username))
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))

	if r.Username == "" && r.Email == "" {
		return errors.New("username or email is required")
	}
	if r.Password == "" {
		return errors.New("password is required")
	}

	return nil
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" form:"refreshToken"`
}

// NewRefreshTokenRequestFromContext prefers the refreshToken cookie over the
// request body.
func NewRefreshTokenRequestFromContext(ctx echo.Context) (*RefreshTokenRequest, error) {
	var body RefreshTokenRequest
	if cookie, err := ctx.Cookie("refreshToken"); err == nil && cookie.Value != "" {
		body.RefreshToken = cookie.Value
		return &body, nil
	}

	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	return &body, nil
}

func (r *RefreshTokenRequest) Validate() error {
	r.RefreshToken = strings.TrimSpace(r.RefreshToken)
	if r.RefreshToken == "" {
		return errors.New("refresh token is required")
	}

	return nil
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

func NewChangePasswordRequestFromContext(ctx echo.Context) (*ChangePasswordRequest, error) {
	var body ChangePasswordRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	return &body, nil
}

func (r *ChangePasswordRequest) Validate() error {
	if r.OldPassword == "" || strings.TrimSpace(r.NewPassword) == "" {
		return errors.New("oldPassword and newPassword are required")
	}

	return nil
}

type UpdateAccountRequest struct {
	Fullname string `json:"fullname" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
}

func NewUpdateAccountRequestFromContext(ctx echo.Context) (*UpdateAccountRequest, error) {
	var body UpdateAccountRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	return &body, nil
}

func (r *UpdateAccountRequest) Validate() error {
	r.Fullname = strings.TrimSpace(r.Fullname)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))

	if r.Fullname == "" || r.Email == "" {
		return errors.New("fullname and email are required")
	}

	return structError(validate.Struct(r))
}

type ChannelProfileRequest struct {
	Username string `param:"username" json:"username"`
}

func NewChannelProfileRequestFromContext(ctx echo.Context) *ChannelProfileRequest {
	return &ChannelProfileRequest{Username: ctx.Param("username")}
}

func (r *ChannelProfileRequest) Validate() error {
	r.Username = strings.ToLower(strings.TrimSpace(r.Username))
	if r.Username == "" {
		return errors.New("username is missing")
	}

	return nil
}

type ValidateTokenRequest struct {
	AccessToken string `json:"accessToken"`
}

func (r *ValidateTokenRequest) Validate() error {
	r.AccessToken = strings.TrimSpace(r.AccessToken)
	if r.AccessToken == "" {
		return errors.New("access token is required")
	}

	return nil
}

func structError(err error) error {
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", field))
		case "email":
			messages = append(messages, fmt.Sprintf("%s must be a valid email address", field))
		case "max":
			messages = append(messages, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
		default:
			messages = append(messages, fmt.Sprintf("%s is invalid", field))
		}
	}
	return errors.New(strings.Join(messages, "; "))
}
