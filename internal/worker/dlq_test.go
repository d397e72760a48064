package worker

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── newDeadLetter ─────────────────────────────────────────────────────────────

func TestNewDeadLetter_DocumentJob(t *testing.T) {
	job := Job{Type: JobDocumentDelivery, Payload: json.RawMessage(`{"document_id":"9b6c1f0e-0000-4000-8000-000000000001"}`)}
	now := time.Date(2026, 3, 10, 8, 30, 0, 0, time.FixedZone("CET", 3600))

	dl := newDeadLetter(QueueDocuments, job, errors.New("disk full"), now)

	assert.Equal(t, QueueDocuments, dl.Queue)
	assert.Equal(t, JobDocumentDelivery, dl.JobType)
	assert.Equal(t, "9b6c1f0e-0000-4000-8000-000000000001", dl.DocumentID)
	assert.Equal(t, "disk full", dl.Reason)
	assert.False(t, dl.Permanent)
	assert.Equal(t, MaxJobAttempts, dl.Attempts)
	assert.Equal(t, time.UTC, dl.FailedAt.Location())
	assert.True(t, dl.FailedAt.Equal(now))
}

func TestNewDeadLetter_PermanentFailureCountsOneAttempt(t *testing.T) {
	raw, _ := json.Marshal(EmailJobPayload{DocumentID: "abc", ToEmail: "kunde@example.de"})
	dl := newDeadLetter(QueueEmail, Job{Type: JobEmail, Payload: raw}, permanent(errors.New("ungültige Adresse")), time.Now())

	assert.True(t, dl.Permanent)
	assert.Equal(t, 1, dl.Attempts)
	assert.Equal(t, "abc", dl.DocumentID)
}

func TestNewDeadLetter_UnreadablePayload(t *testing.T) {
	dl := newDeadLetter(QueueEmail, Job{Type: JobEmail, Payload: json.RawMessage(`[]`)}, errors.New("x"), time.Now())
	assert.Empty(t, dl.DocumentID)
	assert.JSONEq(t, `[]`, string(dl.Payload))
}

// ── requeueTarget ─────────────────────────────────────────────────────────────

func TestRequeueTarget(t *testing.T) {
	payload := json.RawMessage(`{"document_id":"d1"}`)

	t.Run("retryable entry goes back onto its queue", func(t *testing.T) {
		raw, _ := json.Marshal(DeadLetter{Queue: QueueDocuments, JobType: JobDocumentDelivery, Payload: payload})
		target, data, err := requeueTarget(string(raw))
		require.NoError(t, err)
		assert.Equal(t, QueueDocuments, target)

		job, err := decodeJob(string(data))
		require.NoError(t, err)
		assert.Equal(t, JobDocumentDelivery, job.Type)
		assert.JSONEq(t, string(payload), string(job.Payload))
	})

	t.Run("permanent entry stays in the dead letter queue", func(t *testing.T) {
		raw, _ := json.Marshal(DeadLetter{Queue: QueueEmail, JobType: JobEmail, Payload: payload, Permanent: true})
		target, data, err := requeueTarget(string(raw))
		require.NoError(t, err)
		assert.Equal(t, "dlq:"+QueueEmail, target)
		assert.Equal(t, string(raw), string(data))
	})

	t.Run("garbage", func(t *testing.T) {
		_, _, err := requeueTarget("kein json")
		assert.Error(t, err)
	})
}
