package entry

import (
	"context"
	"fmt"

	"github.com/boltdb/bolt"
	"github.com/xbt573/flup/internal/models"
)

var bucketName = []byte(models.Entry{}.TableName())

// boltRepository keeps entries in a single bucket keyed by name. Every call
// runs in its own bolt transaction.
type boltRepository bolt.DB

func NewBolt(db *bolt.DB) Repository {
	return (*boltRepository)(db)
}

func (r *boltRepository) Initialize(ctx context.Context) error {
	return (*bolt.DB)(r).Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucket(bucketName); err != nil {
			if err == bolt.ErrBucketExists {
				return fmt.Errorf("bucket %q: %w", bucketName, ErrExists)
			}

			return fmt.Errorf("could not create bucket %q: %w", bucketName, err)
		}

		return nil
	})
}

func (r *boltRepository) Create(ctx context.Context, entry models.Entry) error {
	return (*bolt.DB)(r).Update(func(tx *bolt.Tx) error {
		b, err := bucket(tx)
		if err != nil {
			return err
		}

		key := []byte(entry.Name)
		if b.Get(key) != nil {
			return fmt.Errorf("%.40q: %w", entry.Name, ErrExists)
		}

		if err := b.Put(key, []byte(entry.Content)); err != nil {
			return fmt.Errorf("could not put %.40q: %w", entry.Name, err)
		}

		return nil
	})
}

func (r *boltRepository) GetByName(ctx context.Context, name string) (models.Entry, error) {
	entry := models.Entry{Name: name}

	err := (*bolt.DB)(r).View(func(tx *bolt.Tx) error {
		b, err := bucket(tx)
		if err != nil {
			return err
		}

		value := b.Get([]byte(name))
		if value == nil {
			return fmt.Errorf("%.40q: %w", name, ErrNotFound)
		}

		// value is only valid for the lifetime of tx; the conversion copies it.
		entry.Content = string(value)
		return nil
	})
	if err != nil {
		return models.Entry{}, err
	}

	return entry, nil
}

func (r *boltRepository) Count(ctx context.Context) (int64, error) {
	var count int64

	err := (*bolt.DB)(r).View(func(tx *bolt.Tx) error {
		b, err := bucket(tx)
		if err != nil {
			return err
		}

		count = int64(b.Stats().KeyN)
		return nil
	})

	return count, err
}

func bucket(tx *bolt.Tx) (*bolt.Bucket, error) {
	b := tx.Bucket(bucketName)
	if b == nil {
		return nil, fmt.Errorf("bucket %q does not exist, run initdb first", bucketName)
	}

	return b, nil
}
