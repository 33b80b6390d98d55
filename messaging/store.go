package messaging

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/TestimonyAdegoke/montessa-sub006/database"
	apperrors "github.com/TestimonyAdegoke/montessa-sub006/errors"
)

const resourceMessage = "message"

// DBSource yields the current database handle. database.Component satisfies
// it; the handle is nil until the component has started.
type DBSource interface {
	DB() *database.DB
}

// Store persists messages with GORM.
type Store struct {
	source DBSource
}

// NewStore creates a Store reading its handle from source on every call.
func NewStore(source DBSource) *Store {
	return &Store{source: source}
}

func (s *Store) session(ctx context.Context) (*gorm.DB, error) {
	db := s.source.DB()
	if db == nil {
		return nil, apperrors.ServiceUnavailable("database")
	}
	return db.WithContext(ctx), nil
}

// Create inserts m and fills its id and timestamps.
func (s *Store) Create(ctx context.Context, m *Message) error {
	db, err := s.session(ctx)
	if err != nil {
		return err
	}
	if err := db.Create(m).Error; err != nil {
		return database.FromDatabase(err, resourceMessage)
	}
	return nil
}

// Get loads a message of tenantID by id.
func (s *Store) Get(ctx context.Context, tenantID string, id uuid.UUID) (*Message, error) {
	db, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	var m Message
	err = db.Where("id = ? AND tenant_id = ?", id, tenantID).Take(&m).Error
	if err != nil {
		appErr := database.FromDatabase(err, resourceMessage)
		if appErr.Code == apperrors.ErrCodeNotFound {
			return nil, apperrors.NotFound(resourceMessage, id.String())
		}
		return nil, appErr
	}
	return &m, nil
}

// Conversation returns up to limit messages exchanged between a and b,
// newest first.
func (s *Store) Conversation(ctx context.Context, tenantID, a, b string, limit int) ([]Message, error) {
	db, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	var out []Message
	err = db.
		Where("tenant_id = ?", tenantID).
		Where(db.Where("sender_id = ? AND recipient_id = ?", a, b).
			Or("sender_id = ? AND recipient_id = ?", b, a)).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, database.FromDatabase(err, resourceMessage)
	}
	return out, nil
}

// MarkRead stamps read_at if the message is still unread. It reports
// whether this call was the one that marked it.
func (s *Store) MarkRead(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	db, err := s.session(ctx)
	if err != nil {
		return false, err
	}
	res := db.Model(&Message{}).
		Where("id = ? AND read_at IS NULL", id).
		Update("read_at", at)
	if res.Error != nil {
		return false, database.FromDatabase(res.Error, resourceMessage)
	}
	return res.RowsAffected == 1, nil
}
