package app

import (
	"time"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
	"github.com/xbt573/flup/internal/database"
	"gorm.io/gorm"
)

// scopedConnection attaches a database.Session to the request context and
// releases it when the request is done, whatever the outcome.
func scopedConnection(db *gorm.DB) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		s := database.NewSession(ctx.UserContext(), db)
		defer func() {
			if err := s.Close(); err != nil {
				log.WithField("err", err).Warn("Could not release connection")
			}
		}()

		ctx.SetUserContext(database.WithSession(ctx.UserContext(), s))
		return ctx.Next()
	}
}

func accessLog(ctx *fiber.Ctx) error {
	start := time.Now()
	err := ctx.Next()

	logger := log.WithFields(log.Fields{
		"method":  ctx.Method(),
		"path":    ctx.Path(),
		"latency": time.Since(start),
	})
	if err != nil {
		// The error handler has not written the status yet.
		logger.WithField("err", err).Debug("Request failed")
	} else {
		logger.WithField("status", ctx.Response().StatusCode()).Debug("Request")
	}

	return err
}
