package messaging

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/TestimonyAdegoke/montessa-sub006/errors"
	"github.com/TestimonyAdegoke/montessa-sub006/logger"
	"github.com/TestimonyAdegoke/montessa-sub006/observability"
	"github.com/TestimonyAdegoke/montessa-sub006/realtime"
	"github.com/TestimonyAdegoke/montessa-sub006/validation"
)

const (
	DefaultConversationLimit = 50
	MaxConversationLimit     = 200
)

// SendInput is a new message from SenderID.
type SendInput struct {
	TenantID    string
	SenderID    string
	RecipientID string `json:"recipientId" validate:"required,notblank,max=64"`
	Body        string `json:"body" validate:"required,notblank,max=4000"`
}

// NotifyInput is an ad-hoc event for one user.
type NotifyInput struct {
	RecipientUserID string          `json:"recipientUserId" validate:"required,notblank,max=64"`
	Kind            string          `json:"kind" validate:"required,eventkind,max=64"`
	Data            json.RawMessage `json:"data"`
}

// Service stores messages and emits their realtime events.
type Service struct {
	store   *Store
	emitter realtime.Emitter
	metrics *observability.Metrics
	log     *logger.Logger
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithMetrics records operation metrics on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock overrides the clock used for read receipts.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a Service.
func NewService(store *Store, emitter realtime.Emitter, log *logger.Logger, opts ...Option) *Service {
	if log == nil {
		log = logger.Nop()
	}
	s := &Service{
		store:   store,
		emitter: emitter,
		log:     log.WithComponent("messaging"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send stores the message and then emits message.created to the recipient.
// A failed emit is logged and does not fail the send: the message is
// already durable.
func (s *Service) Send(ctx context.Context, in SendInput) (msg *Message, err error) {
	ctx, op := observability.StartOperation(ctx, "messaging.send", in.SenderID, s.metrics)
	defer func() { op.End(ctx, err) }()

	if err := validation.Validate(in); err != nil {
		return nil, err
	}
	if in.RecipientID == in.SenderID {
		return nil, apperrors.InvalidInput("recipientId", "cannot message yourself")
	}

	msg = &Message{
		TenantID:    in.TenantID,
		SenderID:    in.SenderID,
		RecipientID: in.RecipientID,
		Body:        in.Body,
	}
	if err := s.store.Create(ctx, msg); err != nil {
		return nil, err
	}

	s.emit(ctx, msg.RecipientID, realtime.KindMessageCreated, msg)
	return msg, nil
}

// Conversation returns the caller's exchange with other, newest first.
// A non-positive limit selects the default; larger limits are capped.
func (s *Service) Conversation(ctx context.Context, tenantID, caller, other string, limit int) ([]Message, error) {
	if other == "" {
		return nil, apperrors.MissingField("with")
	}
	return s.store.Conversation(ctx, tenantID, caller, other, normalizeLimit(limit))
}

func normalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultConversationLimit
	case limit > MaxConversationLimit:
		return MaxConversationLimit
	}
	return limit
}

// MarkRead marks a message read on behalf of its recipient and emits
// message.read to the sender. Marking an already read message returns it
// unchanged without a second event.
func (s *Service) MarkRead(ctx context.Context, tenantID, caller string, id uuid.UUID) (msg *Message, err error) {
	ctx, op := observability.StartOperation(ctx, "messaging.mark_read", caller, s.metrics)
	defer func() { op.End(ctx, err) }()

	msg, err = s.store.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if msg.RecipientID != caller {
		return nil, apperrors.Forbidden("Only the recipient can mark a message as read.")
	}
	if msg.ReadAt != nil {
		return msg, nil
	}

	at := s.now().UTC()
	marked, err := s.store.MarkRead(ctx, id, at)
	if err != nil {
		return nil, err
	}
	if !marked {
		// Another request marked it first.
		return s.store.Get(ctx, tenantID, id)
	}
	msg.ReadAt = &at

	s.emit(ctx, msg.SenderID, realtime.KindMessageRead, readReceipt{
		MessageID: msg.ID.String(),
		ReaderID:  caller,
		ReadAt:    at,
	})
	return msg, nil
}

// Notify emits an event without storing anything.
func (s *Service) Notify(ctx context.Context, in NotifyInput) (res realtime.Result, err error) {
	ctx, op := observability.StartOperation(ctx, "messaging.notify", "", s.metrics)
	defer func() { op.End(ctx, err) }()

	if err := validation.Validate(in); err != nil {
		return realtime.Result{}, err
	}
	var data any
	if len(in.Data) > 0 {
		data = in.Data
	}
	ev, err := realtime.NewEvent(in.RecipientUserID, in.Kind, data)
	if err != nil {
		return realtime.Result{}, apperrors.InvalidInput("data", "must be valid JSON").WithCause(err)
	}
	res, err = s.emitter.Emit(ctx, ev)
	if err != nil {
		return realtime.Result{}, err
	}
	return res, nil
}

func (s *Service) emit(ctx context.Context, userID, kind string, data any) {
	ev, err := realtime.NewEvent(userID, kind, data)
	if err != nil {
		s.log.WithContext(ctx).Error("Event encoding failed", logger.ErrorFields("emit", err))
		return
	}
	res, err := s.emitter.Emit(ctx, ev)
	if err != nil {
		s.metrics.RecordError(ctx, errorCode(err), "messaging")
		s.log.WithContext(ctx).Warn("Event not delivered", map[string]interface{}{
			logger.FieldEventKind: kind,
			logger.FieldError:     err.Error(),
			"target_user_id":      userID,
		})
		return
	}
	s.log.WithContext(ctx).Debug("Event emitted", map[string]interface{}{
		logger.FieldEventKind: kind,
		"target_user_id":      userID,
		"delivered":           res.Delivered,
		"relayed":             res.Relayed,
	})
}

func errorCode(err error) string {
	if appErr, ok := apperrors.AsAppError(err); ok {
		return string(appErr.Code)
	}
	return string(apperrors.ErrCodeInternal)
}
