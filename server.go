package passwordless

import (
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-router"
)

// NewServer builds a fiber-backed HTTP server with the hook routes mounted.
// Hosts that embed the hooks in another process can skip this and call
// RegisterHookRoutes on their own router.
func NewServer(hooks *Hooks, opts ...HooksControllerOption) router.Server[*fiber.App] {
	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			AppName:       "passwordless-hooks",
			StrictRouting: false,
		}))
	})

	RegisterHookRoutes(srv.Router(), hooks, opts...)

	return srv
}
