package app

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	log "github.com/sirupsen/logrus"
	"github.com/xbt573/flup/internal/controller/paste"
	"gorm.io/gorm"
)

type App struct {
	fiber   *fiber.App
	options Options
}

type Options struct {
	BodyLimit uint

	// Testing puts the error text into 500 responses.
	Testing bool

	// DB, when set, gets a connection scoped to each request.
	DB *gorm.DB
}

func New(pasteController paste.Controller, opts Options) *App {
	a := &App{options: opts}

	f := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		BodyLimit:             int(opts.BodyLimit),
		ErrorHandler:          a.handleError,
	})

	f.Use(recover.New())
	f.Use(accessLog)
	if opts.DB != nil {
		f.Use(scopedConnection(opts.DB))
	}

	f.Get("/", pasteController.Usage)
	f.Post("/", pasteController.Create)
	f.Get("/:id", pasteController.Get)

	a.fiber = f
	return a
}

// Fiber exposes the underlying application, mostly for fiber.App.Test.
func (a *App) Fiber() *fiber.App {
	return a.fiber
}

func (a *App) Listen(addr string, ctx context.Context) error {
	errch := make(chan error)

	go func() {
		errch <- a.fiber.Listen(addr)
	}()

	select {
	case <-ctx.Done():
		return a.fiber.Shutdown()
	case err := <-errch:
		if err != nil {
			return err
		}
	}

	return nil
}

func (a *App) handleError(ctx *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "internal server error\n"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message + "\n"
	} else {
		log.WithFields(log.Fields{
			"err":    err,
			"method": ctx.Method(),
			"path":   ctx.Path(),
		}).Error("internal error")

		if a.options.Testing {
			message = err.Error() + "\n"
		}
	}

	ctx.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return ctx.Status(code).SendString(message)
}
