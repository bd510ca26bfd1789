package entry

import (
	"context"
	"errors"
	"fmt"

	"github.com/xbt573/flup/internal/database"
	"github.com/xbt573/flup/internal/models"
	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("entry not found")
	ErrExists   = errors.New("entry already exists")
)

type Repository interface {
	// Initialize creates the backing table. It fails if the table exists.
	Initialize(ctx context.Context) error

	// Create inserts entry and commits. It never overwrites: an existing
	// name yields ErrExists.
	Create(ctx context.Context, entry models.Entry) error

	// GetByName returns ErrNotFound if no entry has that name.
	GetByName(ctx context.Context, name string) (models.Entry, error)

	Count(ctx context.Context) (int64, error)
}

type concreteRepository struct {
	db *gorm.DB
}

func New(db *gorm.DB) Repository {
	return &concreteRepository{db}
}

// conn prefers the connection scoped to the current request.
func (c *concreteRepository) conn(ctx context.Context) (*gorm.DB, error) {
	if s := database.FromContext(ctx); s != nil {
		return s.DB()
	}

	return c.db.WithContext(ctx), nil
}

func (c *concreteRepository) Initialize(ctx context.Context) error {
	db, err := c.conn(ctx)
	if err != nil {
		return err
	}

	migrator := db.Migrator()
	if migrator.HasTable(&models.Entry{}) {
		return fmt.Errorf("table %q: %w", models.Entry{}.TableName(), ErrExists)
	}

	return migrator.CreateTable(&models.Entry{})
}

func (c *concreteRepository) Create(ctx context.Context, entry models.Entry) error {
	db, err := c.conn(ctx)
	if err != nil {
		return err
	}

	result := db.Create(&entry)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%.40q: %w", entry.Name, ErrExists)
		}

		return fmt.Errorf("could not insert %.40q: %w", entry.Name, result.Error)
	}

	return nil
}

func (c *concreteRepository) GetByName(ctx context.Context, name string) (models.Entry, error) {
	var entry models.Entry

	db, err := c.conn(ctx)
	if err != nil {
		return entry, err
	}

	result := db.Where("name = ?", name).Take(&entry)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return entry, fmt.Errorf("%.40q: %w", name, ErrNotFound)
		}

		return entry, result.Error
	}

	return entry, nil
}

func (c *concreteRepository) Count(ctx context.Context) (int64, error) {
	var count int64

	db, err := c.conn(ctx)
	if err != nil {
		return 0, err
	}

	result := db.Model(&models.Entry{}).Count(&count)

	return count, result.Error
}
