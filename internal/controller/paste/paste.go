package paste

import (
	"errors"
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
	pasteService "github.com/xbt573/flup/internal/service/paste"
	"golang.org/x/net/idna"
)

const Usage = `flup is a simple pastebin: you upload a file and get a URL to it
(the file) as a response.

the file must be uploaded with POST request to /, attaching the file to
a form field named 'f', and using the content-type multipart/form-data.

uploading a file with curl:
    $ curl -F 'f=@file.txt' localhost:5000

uploading a file with httpie:
    $ http -f localhost:5000 f@file.txt

uploading from stdin with curl:
    $ cat file.txt | curl -F 'f=@-' localhost:5000
`

const (
	FormField = "f"

	msgNoFile     = "no file provided\n"
	msgNotText    = "not ok\n"
	msgNotFound   = "could not retrieve your file, sorry\n"
	previewLength = 40
)

type Controller interface {
	Usage(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Get(ctx *fiber.Ctx) error
}

type concreteController struct {
	pasteService pasteService.Service
}

func New(pasteService pasteService.Service) Controller {
	return &concreteController{pasteService}
}

func sendText(ctx *fiber.Ctx, status int, body string) error {
	ctx.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return ctx.Status(status).SendString(body)
}

func (c *concreteController) Usage(ctx *fiber.Ctx) error {
	return sendText(ctx, fiber.StatusOK, Usage)
}

func (c *concreteController) Create(ctx *fiber.Ctx) error {
	header, err := ctx.FormFile(FormField)
	if err != nil {
		log.WithField("err", err).Debug("Upload without file")
		return sendText(ctx, fiber.StatusBadRequest, msgNoFile)
	}

	f, err := header.Open()
	if err != nil {
		return fmt.Errorf("could not open uploaded file: %w", err)
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return fmt.Errorf("could not read uploaded file: %w", err)
	}

	paste, err := c.pasteService.Create(ctx.UserContext(), content)
	if err != nil {
		if errors.Is(err, pasteService.ErrInvalidEncoding) {
			log.WithField("size", len(content)).Debug("Couldn't decode file, probably a binary")
			return sendText(ctx, fiber.StatusBadRequest, msgNotText)
		}

		return err
	}

	log.WithFields(log.Fields{
		"id":      paste.Name,
		"preview": preview(paste.Content),
	}).Debug("Stored upload")

	ctx.Set(fiber.HeaderContentLocation, "/"+paste.Name)
	ctx.Set(fiber.HeaderLocation, location(ctx, paste.Name))

	return sendText(ctx, fiber.StatusCreated, paste.Name+"\n")
}

func (c *concreteController) Get(ctx *fiber.Ctx) error {
	id := ctx.Params("id")

	paste, err := c.pasteService.Get(ctx.UserContext(), id)
	if err != nil {
		if errors.Is(err, pasteService.ErrNotFound) {
			return sendText(ctx, fiber.StatusNotFound, msgNotFound)
		}

		return err
	}

	return sendText(ctx, fiber.StatusOK, paste.Content)
}

func location(ctx *fiber.Ctx, id string) string {
	host := ctx.Hostname()

	if unicodeHost, err := idna.ToUnicode(host); err == nil {
		host = unicodeHost
	} else {
		log.WithFields(log.Fields{"err": err, "host": host}).Debug("Could not convert host to unicode")
	}

	return fmt.Sprintf("%v://%v/%v", ctx.Protocol(), host, id)
}

func preview(content string) string {
	runes := []rune(content)
	if len(runes) <= previewLength {
		return content
	}

	return string(runes[:previewLength]) + "..."
}
