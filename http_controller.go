package passwordless

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-router"
	"github.com/nyaruka/phonenumbers"
)

// RegisterHookRoutes mounts the trigger endpoints on the given router. The
// host identity platform calls these as webhooks during its sign-in flow.
func RegisterHookRoutes[T any](app router.Router[T], hooks *Hooks, opts ...HooksControllerOption) {
	controller := NewHooksController(hooks, opts...)

	app.Post(controller.Routes.PreSignUp, controller.PreSignUp).
		SetName("hooks.pre-sign-up")
	app.Post(controller.Routes.DefineChallenge, controller.DefineChallenge).
		SetName("hooks.define-challenge")
	app.Post(controller.Routes.CreateChallenge, controller.CreateChallenge).
		SetName("hooks.create-challenge")
	app.Post(controller.Routes.VerifyChallenge, controller.VerifyChallenge).
		SetName("hooks.verify-challenge")
	app.Post(controller.Routes.PreToken, controller.PreTokenIssuance).
		SetName("hooks.pre-token")
	app.Post(controller.Routes.PostConfirmation, controller.PostConfirmation).
		SetName("hooks.post-confirmation")
}

// HooksControllerRoutes holds the endpoint paths.
type HooksControllerRoutes struct {
	PreSignUp        string
	DefineChallenge  string
	CreateChallenge  string
	VerifyChallenge  string
	PreToken         string
	PostConfirmation string
}

// HooksController translates HTTP payloads into hook invocations.
type HooksController struct {
	Logger Logger
	Hooks  *Hooks
	Routes *HooksControllerRoutes
	Region string
}

// HooksControllerOption customizes the controller.
type HooksControllerOption func(*HooksController) *HooksController

// WithControllerLogger sets the controller logger.
func WithControllerLogger(logger Logger) HooksControllerOption {
	return func(c *HooksController) *HooksController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

// WithDefaultPhoneRegion sets the region used to normalize national phone
// numbers in sign-up attributes.
func WithDefaultPhoneRegion(region string) HooksControllerOption {
	return func(c *HooksController) *HooksController {
		if region != "" {
			c.Region = region
		}
		return c
	}
}

// NewHooksController builds the controller with default routes.
func NewHooksController(hooks *Hooks, opts ...HooksControllerOption) *HooksController {
	c := &HooksController{
		Logger: defLogger{},
		Hooks:  hooks,
		Region: "NO",
		Routes: &HooksControllerRoutes{
			PreSignUp:        "/hooks/pre-sign-up",
			DefineChallenge:  "/hooks/define-challenge",
			CreateChallenge:  "/hooks/create-challenge",
			VerifyChallenge:  "/hooks/verify-challenge",
			PreToken:         "/hooks/pre-token",
			PostConfirmation: "/hooks/post-confirmation",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Hooks == nil {
		panic("Missing Hooks in hooks controller...")
	}

	return c
}

// PreSignUpPayload is the sign-up trigger body.
type PreSignUpPayload struct {
	Origin     string            `json:"origin"`
	Email      string            `json:"email"`
	Attributes map[string]string `json:"attributes"`
	Identities string            `json:"identities"`
}

// Validate will run validation rules
func (r PreSignUpPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Origin,
			validation.Required,
			validation.In(string(OriginDirect), string(OriginExternalProvider)),
		),
		validation.Field(&r.Email, is.Email),
	)
}

func (a *HooksController) PreSignUp(ctx router.Context) error {
	payload := new(PreSignUpPayload)

	if err := ctx.Bind(payload); err != nil {
		return a.badRequest(ctx, "failed to parse body", err)
	}

	if err := payload.Validate(); err != nil {
		return a.badRequest(ctx, "invalid payload", err)
	}

	evt := PreSignUpEvent{
		Origin:        SignUpOrigin(payload.Origin),
		Email:         payload.Email,
		Attributes:    a.normalizeAttributes(payload.Attributes),
		RawIdentities: payload.Identities,
	}

	res, err := a.Hooks.PreSignUp(ctx.Context(), evt)
	if err != nil {
		a.Logger.Error("pre-sign-up hook: %v", err)
		return ctx.JSON(router.StatusInternalServerError, map[string]string{
			"error": "pre-sign-up failed",
		})
	}

	return ctx.JSON(router.StatusOK, res)
}

// DefineChallengePayload carries the session history.
type DefineChallengePayload struct {
	UserExists bool             `json:"user_exists"`
	Rounds     []ChallengeRound `json:"rounds"`
}

func (a *HooksController) DefineChallenge(ctx router.Context) error {
	payload := new(DefineChallengePayload)

	if err := ctx.Bind(payload); err != nil {
		return a.badRequest(ctx, "failed to parse body", err)
	}

	decision, err := a.Hooks.DefineChallenge(ctx.Context(), DefineChallengeEvent{
		UserExists: payload.UserExists,
		Rounds:     payload.Rounds,
	})
	if err != nil {
		a.Logger.Error("define-challenge hook: %v", err)
		return ctx.JSON(router.StatusInternalServerError, map[string]string{
			"error": "define-challenge failed",
		})
	}

	return ctx.JSON(router.StatusOK, decision)
}

// CreateChallengePayload names the destination for the fresh code.
type CreateChallengePayload struct {
	Kind        string `json:"challenge_kind"`
	Destination string `json:"destination"`
}

// Validate will run validation rules
func (r CreateChallengePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Destination, validation.Required, is.Email),
	)
}

func (a *HooksController) CreateChallenge(ctx router.Context) error {
	payload := new(CreateChallengePayload)

	if err := ctx.Bind(payload); err != nil {
		return a.badRequest(ctx, "failed to parse body", err)
	}

	if err := payload.Validate(); err != nil {
		return a.badRequest(ctx, "invalid payload", err)
	}

	params, err := a.Hooks.CreateChallenge(ctx.Context(), CreateChallengeEvent{
		Kind:        ChallengeKind(payload.Kind),
		Destination: payload.Destination,
	})
	if err != nil {
		a.Logger.Error("create-challenge hook: %v", err)
		return ctx.JSON(router.StatusInternalServerError, map[string]string{
			"error": "create-challenge failed",
		})
	}

	return ctx.JSON(router.StatusOK, params)
}

// VerifyChallengePayload carries the round parameters and the user's answer.
type VerifyChallengePayload struct {
	Private map[string]string `json:"privateChallengeParameters"`
	Answer  string            `json:"challengeAnswer"`
}

func (a *HooksController) VerifyChallenge(ctx router.Context) error {
	payload := new(VerifyChallengePayload)

	if err := ctx.Bind(payload); err != nil {
		return a.badRequest(ctx, "failed to parse body", err)
	}

	res, err := a.Hooks.VerifyChallenge(ctx.Context(), VerifyChallengeEvent{
		Private: payload.Private,
		Answer:  payload.Answer,
	})
	if err != nil {
		a.Logger.Error("verify-challenge hook: %v", err)
		return ctx.JSON(router.StatusInternalServerError, map[string]string{
			"error": "verify-challenge failed",
		})
	}

	return ctx.JSON(router.StatusOK, res)
}

// PreTokenPayload carries the candidate claims.
type PreTokenPayload struct {
	Claims map[string]any `json:"claims"`
}

func (a *HooksController) PreTokenIssuance(ctx router.Context) error {
	payload := new(PreTokenPayload)

	if err := ctx.Bind(payload); err != nil {
		return a.badRequest(ctx, "failed to parse body", err)
	}

	claims, err := a.Hooks.PreTokenIssuance(ctx.Context(), PreTokenEvent{Claims: payload.Claims})
	if err != nil {
		a.Logger.Error("pre-token hook: %v", err)
		return ctx.JSON(router.StatusInternalServerError, map[string]string{
			"error": "pre-token failed",
		})
	}

	return ctx.JSON(router.StatusOK, map[string]any{"claims": claims})
}

// PostConfirmationPayload identifies the confirmed account.
type PostConfirmationPayload struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// Validate will run validation rules
func (r PostConfirmationPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

func (a *HooksController) PostConfirmation(ctx router.Context) error {
	payload := new(PostConfirmationPayload)

	if err := ctx.Bind(payload); err != nil {
		return a.badRequest(ctx, "failed to parse body", err)
	}

	if err := payload.Validate(); err != nil {
		return a.badRequest(ctx, "invalid payload", err)
	}

	if err := a.Hooks.PostConfirmation(ctx.Context(), PostConfirmationEvent{
		UserID: payload.UserID,
		Email:  payload.Email,
	}); err != nil {
		a.Logger.Error("post-confirmation hook: %v", err)
		return ctx.JSON(router.StatusInternalServerError, map[string]string{
			"error": "post-confirmation failed",
		})
	}

	return ctx.JSON(router.StatusOK, map[string]bool{"ok": true})
}

// normalizeAttributes rewrites a phone_number attribute into E.164 so the
// record matches what the identity platform stores.
func (a *HooksController) normalizeAttributes(attrs map[string]string) map[string]string {
	raw, ok := attrs["phone_number"]
	if !ok || raw == "" {
		return attrs
	}

	num, err := phonenumbers.Parse(raw, a.Region)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		a.Logger.Warn("pre-sign-up: dropping unparseable phone number")
		delete(attrs, "phone_number")
		return attrs
	}

	attrs["phone_number"] = phonenumbers.Format(num, phonenumbers.E164)
	return attrs
}

func (a *HooksController) badRequest(ctx router.Context, msg string, err error) error {
	a.Logger.Error("%s: %v", msg, err)
	return ctx.JSON(router.StatusBadRequest, map[string]any{
		"error":      msg,
		"validation": FormatValidationErrorToMap(err),
	})
}
