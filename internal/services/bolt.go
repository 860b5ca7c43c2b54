package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/basedoracle/oracle-web-ui/internal/models"
	bolt "go.etcd.io/bbolt"
)

// BoltDB implements the conversation store using a BoltDB backend, giving conversations a lifetime
// beyond the process. Each session owns one bucket holding its messages in sequence order.
type BoltDB struct {
	db *bolt.DB
}

// NewBoltDB creates a new BoltDB instance with the specified file path. The database file is
// created with 0600 permissions if it doesn't exist.
func NewBoltDB(path string) (BoltDB, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return BoltDB{}, fmt.Errorf("failed to open bolt db: %w", err)
	}

	return BoltDB{db: db}, nil
}

// Close releases the underlying database file.
func (b BoltDB) Close() error {
	return b.db.Close()
}

func sessionBucketName(sessionID string) []byte {
	return []byte(fmt.Sprintf("session-%s", sessionID))
}

// Messages retrieves all messages associated with the specified session in their stored order.
// An unknown session yields an empty slice, not an error.
func (b BoltDB) Messages(_ context.Context, sessionID string) ([]models.Message, error) {
	var messages []models.Message
	err := b.db.View(func(tx *bolt.Tx) error {
		bk := tx.Bucket(sessionBucketName(sessionID))
		if bk == nil {
			return nil
		}

		return bk.ForEach(func(_, v []byte) error {
			var message models.Message
			if err := json.Unmarshal(v, &message); err != nil {
				return fmt.Errorf("failed to unmarshal message: %w", err)
			}
			messages = append(messages, message)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// AppendMessage stores a new message at the end of the session's bucket. It prefixes the key with
// a sequence number so iteration order matches insertion order, and returns the message ID.
func (b BoltDB) AppendMessage(_ context.Context, sessionID string, message models.Message) (string, error) {
	err := b.db.Update(func(tx *bolt.Tx) error {
		bk, err := tx.CreateBucketIfNotExists(sessionBucketName(sessionID))
		if err != nil {
			return fmt.Errorf("failed to create session bucket: %w", err)
		}

		seq, err := bk.NextSequence()
		if err != nil {
			return fmt.Errorf("failed to get next sequence: %w", err)
		}

		v, err := json.Marshal(message)
		if err != nil {
			return fmt.Errorf("failed to marshal message: %w", err)
		}

		return bk.Put([]byte(fmt.Sprintf("%020d-%s", seq, message.ID)), v)
	})

	return message.ID, err
}

// UpdateMessage replaces the stored message with a matching ID. If the message doesn't exist, the
// operation is silently ignored.
func (b BoltDB) UpdateMessage(_ context.Context, sessionID string, message models.Message) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bk := tx.Bucket(sessionBucketName(sessionID))
		if bk == nil {
			return nil
		}

		return bk.ForEach(func(k, _ []byte) error {
			if !strings.HasSuffix(string(k), message.ID) {
				return nil
			}

			v, err := json.Marshal(message)
			if err != nil {
				return fmt.Errorf("failed to marshal message: %w", err)
			}
			return bk.Put(k, v)
		})
	})
}

// Reset deletes the session's bucket and seeds a fresh one with exactly one assistant welcome
// message, which is returned.
func (b BoltDB) Reset(_ context.Context, sessionID string) (models.Message, error) {
	welcome := models.NewWelcomeMessage()

	err := b.db.Update(func(tx *bolt.Tx) error {
		name := sessionBucketName(sessionID)
		if tx.Bucket(name) != nil {
			if err := tx.DeleteBucket(name); err != nil {
				return fmt.Errorf("failed to delete session bucket: %w", err)
			}
		}

		bk, err := tx.CreateBucket(name)
		if err != nil {
			return fmt.Errorf("failed to create session bucket: %w", err)
		}

		seq, err := bk.NextSequence()
		if err != nil {
			return fmt.Errorf("failed to get next sequence: %w", err)
		}

		v, err := json.Marshal(welcome)
		if err != nil {
			return fmt.Errorf("failed to marshal message: %w", err)
		}

		return bk.Put([]byte(fmt.Sprintf("%020d-%s", seq, welcome.ID)), v)
	})
	if err != nil {
		return models.Message{}, err
	}

	return welcome, nil
}
