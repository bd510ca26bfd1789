package paste

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/xbt573/flup/internal/models"
	"github.com/xbt573/flup/internal/repository/entry"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrExists          = errors.New("already exists")
	ErrInvalidEncoding = errors.New("content is not valid UTF-8")
)

// IdentifierSize is the number of random bytes behind every identifier.
const IdentifierSize = 4

type Service interface {
	// Create stores content under a fresh identifier. Content that is not
	// valid UTF-8 is rejected with ErrInvalidEncoding and nothing is stored.
	Create(ctx context.Context, content []byte) (models.Entry, error)

	Get(ctx context.Context, id string) (models.Entry, error)
}

type Options struct {
	// Generate returns a new identifier. Defaults to NewIdentifier.
	Generate func() (string, error)
}

type concreteService struct {
	entryRepository entry.Repository

	options Options
}

func New(entryRepository entry.Repository, options Options) Service {
	if options.Generate == nil {
		options.Generate = NewIdentifier
	}

	return &concreteService{entryRepository, options}
}

// NewIdentifier returns IdentifierSize random bytes as unpadded URL-safe
// base64. Uniqueness is left to the size of the keyspace: there is no
// lookup before insert and no retry.
func NewIdentifier() (string, error) {
	b := make([]byte, IdentifierSize)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("could not read random bytes: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}

func (c *concreteService) Create(ctx context.Context, content []byte) (models.Entry, error) {
	if !utf8.Valid(content) {
		return models.Entry{}, ErrInvalidEncoding
	}

	id, err := c.options.Generate()
	if err != nil {
		return models.Entry{}, err
	}

	e := models.Entry{
		Name:    id,
		Content: string(content),
	}

	if err := c.entryRepository.Create(ctx, e); err != nil {
		if errors.Is(err, entry.ErrExists) {
			return models.Entry{}, fmt.Errorf("identifier collision on %q: %w", id, ErrExists)
		}

		return models.Entry{}, err
	}

	return e, nil
}

func (c *concreteService) Get(ctx context.Context, id string) (models.Entry, error) {
	e, err := c.entryRepository.GetByName(ctx, id)
	if err != nil {
		if errors.Is(err, entry.ErrNotFound) {
			return models.Entry{}, ErrNotFound
		}

		return models.Entry{}, err
	}

	return e, nil
}
