package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmagtibay/clinic-api/internal/model"
	"github.com/rmagtibay/clinic-api/pkg/logger"
	"github.com/rmagtibay/clinic-api/pkg/messaging"
	"github.com/rmagtibay/clinic-api/pkg/metrics"
)

var (
	testLogger  = logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, TimeFormat: time.RFC3339, Output: io.Discard})
	testMetrics = metrics.NewMetrics("clinic", "worker_test")
)

type fakeOutboxRepo struct {
	pending   []*model.OutboxEvent
	processed []uuid.UUID
	failed    map[uuid.UUID]string
}

func (f *fakeOutboxRepo) GetPendingEvents(_ context.Context, limit int) ([]*model.OutboxEvent, error) {
	if len(f.pending) > limit {
		return f.pending[:limit], nil
	}
	return f.pending, nil
}

func (f *fakeOutboxRepo) MarkProcessed(_ context.Context, id uuid.UUID) error {
	f.processed = append(f.processed, id)
	return nil
}

func (f *fakeOutboxRepo) MarkFailed(_ context.Context, id uuid.UUID, errMsg string) error {
	if f.failed == nil {
		f.failed = map[uuid.UUID]string{}
	}
	f.failed[id] = errMsg
	return nil
}

type fakeBroker struct {
	published []messaging.Message
	failures  int
	attempts  int
}

func (f *fakeBroker) Publish(_ context.Context, _ string, message interface{}) error {
	f.attempts++
	if f.attempts <= f.failures {
		return errors.New("broker unavailable")
	}
	f.published = append(f.published, message.(messaging.Message))
	return nil
}

func (f *fakeBroker) Subscribe(context.Context, string) (<-chan []byte, error) { return nil, nil }

func (f *fakeBroker) Close() error { return nil }

func pendingEvent(t *testing.T) *model.OutboxEvent {
	t.Helper()
	event, err := model.NewOutboxEvent(model.EventSaleCompleted, map[string]string{"receipt": "REC-1"})
	require.NoError(t, err)
	return event
}

func newProcessor(repo *fakeOutboxRepo, broker *fakeBroker) *OutboxProcessor {
	return NewOutboxProcessor(repo, broker, OutboxProcessorConfig{
		RetryAttempts: 3,
		RetryDelay:    time.Millisecond,
	}, testLogger, testMetrics)
}

func TestProcessEventsPublishesAndMarks(t *testing.T) {
	event := pendingEvent(t)
	repo := &fakeOutboxRepo{pending: []*model.OutboxEvent{event}}
	broker := &fakeBroker{}

	require.NoError(t, newProcessor(repo, broker).processEvents(context.Background()))

	require.Len(t, broker.published, 1)
	assert.Equal(t, model.EventSaleCompleted, broker.published[0].Type)
	payload, ok := broker.published[0].Payload.(json.RawMessage)
	require.True(t, ok)
	assert.JSONEq(t, `{"receipt":"REC-1"}`, string(payload))
	assert.Equal(t, []uuid.UUID{event.ID}, repo.processed)
	assert.Empty(t, repo.failed)
}

func TestProcessEventsRetriesTransientFailures(t *testing.T) {
	event := pendingEvent(t)
	repo := &fakeOutboxRepo{pending: []*model.OutboxEvent{event}}
	broker := &fakeBroker{failures: 2}

	require.NoError(t, newProcessor(repo, broker).processEvents(context.Background()))

	assert.Equal(t, 3, broker.attempts)
	assert.Len(t, broker.published, 1)
	assert.Equal(t, []uuid.UUID{event.ID}, repo.processed)
}

func TestProcessEventsMarksFailedAfterExhaustion(t *testing.T) {
	event := pendingEvent(t)
	repo := &fakeOutboxRepo{pending: []*model.OutboxEvent{event}}
	broker := &fakeBroker{failures: 10}

	// A single failing event does not abort the batch.
	require.NoError(t, newProcessor(repo, broker).processEvents(context.Background()))

	assert.Equal(t, 3, broker.attempts)
	assert.Empty(t, repo.processed)
	assert.Equal(t, "broker unavailable", repo.failed[event.ID])
}

func TestProcessEventsRespectsBatchSize(t *testing.T) {
	repo := &fakeOutboxRepo{pending: []*model.OutboxEvent{pendingEvent(t), pendingEvent(t), pendingEvent(t)}}
	broker := &fakeBroker{}

	p := NewOutboxProcessor(repo, broker, OutboxProcessorConfig{
		BatchSize:     2,
		RetryAttempts: 1,
		RetryDelay:    time.Millisecond,
	}, testLogger, testMetrics)

	require.NoError(t, p.processEvents(context.Background()))
	assert.Len(t, broker.published, 2)
}
