package biopass

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"

	"github.com/biopass/go-biopass/middleware/authgate"
)

type AuthControllerRoutes struct {
	Login          string
	Logout         string
	ForgotPassword string
	ResetPassword  string
	ChangePassword string
}

// AuthController exposes the credential and session flows over HTTP. All
// endpoints speak JSON; the admin frontend is the only consumer.
type AuthController struct {
	Debug    bool
	Logger   Logger
	Auth     *Auther
	Sessions *SessionRecorder
	Forgot   *ForgotPasswordHandler
	Reset    *ResetPasswordHandler
	Change   *ChangePasswordHandler
	Routes   *AuthControllerRoutes
}

// NewAuthController wires the flow handlers against a repository manager.
func NewAuthController(repo RepositoryManager, cfg Config, mailer Mailer) *AuthController {
	logger := defLogger{}
	return &AuthController{
		Logger:   logger,
		Auth:     NewAuthenticator(repo, cfg).WithLogger(logger),
		Sessions: NewSessionRecorder(repo).WithLogger(logger),
		Forgot:   NewForgotPasswordHandler(repo, mailer).WithLogger(logger),
		Reset:    NewResetPasswordHandler(repo).WithLogger(logger),
		Change:   NewChangePasswordHandler(repo).WithLogger(logger),
		Routes: &AuthControllerRoutes{
			Login:          "/login",
			Logout:         "/logout",
			ForgotPassword: "/forgot-password",
			ResetPassword:  "/reset-password",
			ChangePassword: "/change-password",
		},
	}
}

// RegisterAuthRoutes mounts the controller. The protected handler, normally
// built with middleware/authgate, guards logout and change-password; the
// recovery flow and login stay public.
func RegisterAuthRoutes(app fiber.Router, controller *AuthController, protected fiber.Handler) {
	app.Post(controller.Routes.Login, controller.LoginPost)
	app.Post(controller.Routes.ForgotPassword, controller.ForgotPasswordPost)
	app.Post(controller.Routes.ResetPassword, controller.ResetPasswordPost)

	app.Post(controller.Routes.Logout, protected, controller.LogoutPost)
	app.Post(controller.Routes.ChangePassword, protected, controller.ChangePasswordPost)
}

// LoginPayload is the login request body
type LoginPayload struct {
	Email       string `form:"email" json:"email"`
	Password    string `form:"password" json:"password"`
	DeviceLabel string `form:"device_label" json:"device_label"`
}

// Validate will validate the payload
func (r LoginPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

// personView is the response projection of a person record. Credential
// columns never leave the server.
type personView struct {
	ID       int64  `json:"id"`
	FullName string `json:"full_name"`
	Type     string `json:"type"`
	Email    string `json:"email"`
	UnitID   int64  `json:"unit_id"`
}

func (a *AuthController) LoginPost(c *fiber.Ctx) error {
	payload := new(LoginPayload)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("login parse payload: %s", err)
		return a.renderParseError(c, err)
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("login validate payload: %s", err)
		return a.renderValidationError(c, err)
	}

	res, err := a.Auth.Login(c.UserContext(), payload.Email, payload.Password, payload.DeviceLabel)
	if err != nil {
		return a.renderError(c, err)
	}

	if a.Debug {
		fmt.Println(print.MaybePrettyJSON(res))
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"token": res.Token,
		"person": personView{
			ID:       res.Person.ID,
			FullName: res.Person.FullName,
			Type:     res.Person.Type,
			Email:    res.Person.Email,
			UnitID:   res.Person.RegistrationUnitID,
		},
		"requires_password_change": res.RequiresPasswordChange,
		"access_log_id":            res.AccessLogID,
	})
}

// ForgotPasswordPayload is the reset-initiation request body
type ForgotPasswordPayload struct {
	Email string `form:"email" json:"email"`
}

// Validate will validate the payload
func (r ForgotPasswordPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

func (a *AuthController) ForgotPasswordPost(c *fiber.Ctx) error {
	payload := new(ForgotPasswordPayload)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("forgot password parse payload: %s", err)
		return a.renderParseError(c, err)
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("forgot password validate payload: %s", err)
		return a.renderValidationError(c, err)
	}

	res, err := a.Forgot.Execute(c.UserContext(), ForgotPasswordMessage{
		Email: payload.Email,
	})
	if err != nil {
		return a.renderError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(res)
}

// ResetPasswordPayload is the reset-finalization request body
type ResetPasswordPayload struct {
	Email           string `form:"email" json:"email"`
	Token           string `form:"token" json:"token"`
	Password        string `form:"new_password" json:"new_password"`
	ConfirmPassword string `form:"new_password_confirm" json:"new_password_confirm"`
}

// Validate will validate the payload
func (r ResetPasswordPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Token, validation.Required, validation.Length(6, 6), is.Digit),
		validation.Field(&r.Password, validation.Required),
		validation.Field(
			&r.ConfirmPassword,
			validation.Required,
			validation.By(ValidateStringEquals(r.Password)),
		),
	)
}

func (a *AuthController) ResetPasswordPost(c *fiber.Ctx) error {
	payload := new(ResetPasswordPayload)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("reset password parse payload: %s", err)
		return a.renderParseError(c, err)
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("reset password validate payload: %s", err)
		if mismatchedConfirmation(payload.Password, payload.ConfirmPassword) {
			return a.renderErrorResponse(c, fiber.StatusBadRequest, TextCodePasswordMismatch, "passwords do not match")
		}
		return a.renderValidationError(c, err)
	}

	res, err := a.Reset.Execute(c.UserContext(), ResetPasswordMessage{
		Email:    payload.Email,
		Token:    payload.Token,
		Password: payload.Password,
	})
	if err != nil {
		return a.renderError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(res)
}

// ChangePasswordPayload is the authenticated password-change request body.
// The subject is taken from the request principal, never from the body.
type ChangePasswordPayload struct {
	CurrentPassword    string `form:"current_password" json:"current_password"`
	NewPassword        string `form:"new_password" json:"new_password"`
	NewPasswordConfirm string `form:"new_password_confirm" json:"new_password_confirm"`
}

// Validate will validate the payload
func (r ChangePasswordPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CurrentPassword, validation.Required),
		validation.Field(&r.NewPassword, validation.Required),
		validation.Field(
			&r.NewPasswordConfirm,
			validation.Required,
			validation.By(ValidateStringEquals(r.NewPassword)),
		),
	)
}

func (a *AuthController) ChangePasswordPost(c *fiber.Ctx) error {
	principal, ok := authgate.PrincipalFrom(c)
	if !ok {
		return a.renderError(c, ErrTokenMalformed)
	}

	payload := new(ChangePasswordPayload)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("change password parse payload: %s", err)
		return a.renderParseError(c, err)
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("change password validate payload: %s", err)
		if mismatchedConfirmation(payload.NewPassword, payload.NewPasswordConfirm) {
			return a.renderErrorResponse(c, fiber.StatusBadRequest, TextCodePasswordMismatch, "passwords do not match")
		}
		return a.renderValidationError(c, err)
	}

	res, err := a.Change.Execute(c.UserContext(), ChangePasswordMessage{
		PersonID:        principal.ID,
		CurrentPassword: payload.CurrentPassword,
		NewPassword:     payload.NewPassword,
	})
	if err != nil {
		return a.renderError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(res)
}

// LogoutPayload is the logout request body
type LogoutPayload struct {
	AccessLogID int64 `form:"access_log_id" json:"access_log_id"`
}

func (a *AuthController) LogoutPost(c *fiber.Ctx) error {
	payload := new(LogoutPayload)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("logout parse payload: %s", err)
		return a.renderParseError(c, err)
	}

	res, err := a.Sessions.Logout(c.UserContext(), payload.AccessLogID)
	if err != nil {
		return a.renderError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(res)
}

func (a *AuthController) renderParseError(c *fiber.Ctx, err error) error {
	return a.renderErrorResponse(c, fiber.StatusBadRequest, TextCodeMissingParameters, "could not parse request body")
}

func (a *AuthController) renderValidationError(c *fiber.Ctx, err error) error {
	return a.renderErrorResponse(c, fiber.StatusBadRequest, TextCodeMissingParameters, err.Error())
}

func (a *AuthController) renderError(c *fiber.Ctx, err error) error {
	status := StatusCode(err)
	if status >= fiber.StatusInternalServerError {
		a.Logger.Error("request failed: %s", err)
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) && a.Debug {
			fmt.Println(print.MaybePrettyJSON(richErr.Metadata))
		}
	}
	message := err.Error()
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		message = richErr.Message
	}
	return a.renderErrorResponse(c, status, ClientCode(err), message)
}

func (a *AuthController) renderErrorResponse(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error":   code,
		"message": message,
	})
}

// ValidateStringEquals will check that both values match
func ValidateStringEquals(str string) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		if s != str {
			return goerrors.New("values must match", goerrors.CategoryValidation)
		}
		return nil
	}
}

func mismatchedConfirmation(password, confirm string) bool {
	return password != "" && confirm != "" && password != confirm
}
