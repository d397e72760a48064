package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// DLQPrefix prefixes the dead letter list of a queue: dlq:jobs:documents.
const DLQPrefix = "dlq:"

// DeadLetter is a document or mail job that could not be delivered. Permanent
// failures (unknown document, not issued, bad payload) are kept for inspection
// only; the rest can be re-queued once the cause (SMTP, disk) is fixed.
type DeadLetter struct {
	Queue      string          `json:"queue"`
	JobType    string          `json:"job_type"`
	DocumentID string          `json:"document_id,omitempty"`
	Payload    json.RawMessage `json:"payload"`
	Reason     string          `json:"reason"`
	Permanent  bool            `json:"permanent"`
	Attempts   int             `json:"attempts"`
	FailedAt   time.Time       `json:"failed_at"`
}

// newDeadLetter describes the final failure of job taken from queue.
func newDeadLetter(queue string, job Job, cause error, now time.Time) DeadLetter {
	var perm errPermanent
	isPermanent := errors.As(cause, &perm)
	attempts := MaxJobAttempts
	if isPermanent {
		attempts = 1
	}

	// both payload kinds carry the document id under the same key
	var ref struct {
		DocumentID string `json:"document_id"`
	}
	_ = json.Unmarshal(job.Payload, &ref)

	return DeadLetter{
		Queue:      queue,
		JobType:    job.Type,
		DocumentID: ref.DocumentID,
		Payload:    job.Payload,
		Reason:     cause.Error(),
		Permanent:  isPermanent,
		Attempts:   attempts,
		FailedAt:   now.UTC(),
	}
}

func deadLetterKey(queue string) string { return DLQPrefix + queue }

// sendToDLQ dead-letters job. Failures are only logged: the job is lost either
// way and the worker must keep consuming.
func sendToDLQ(ctx context.Context, rdb *redis.Client, queue string, job Job, cause error) {
	dl := newDeadLetter(queue, job, cause, time.Now())
	data, err := json.Marshal(dl)
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: marshal entry")
		return
	}
	if err := rdb.LPush(ctx, deadLetterKey(queue), data).Err(); err != nil {
		log.Error().Err(err).Str("queue", queue).Str("document_id", dl.DocumentID).Msg("dlq: push failed")
		return
	}
	log.Warn().
		Str("queue", queue).
		Str("job_type", dl.JobType).
		Str("document_id", dl.DocumentID).
		Bool("permanent", dl.Permanent).
		Str("reason", dl.Reason).
		Msg("dlq: job moved to dead letter queue")
}

// DLQLength returns the number of entries in a DLQ, reported by /health.
func DLQLength(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, deadLetterKey(queue)).Result()
}

// ListDeadLetters returns up to limit entries of queue's DLQ, newest first.
func ListDeadLetters(ctx context.Context, rdb *redis.Client, queue string, limit int64) ([]DeadLetter, error) {
	raw, err := rdb.LRange(ctx, deadLetterKey(queue), 0, limit-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]DeadLetter, 0, len(raw))
	for _, r := range raw {
		var dl DeadLetter
		if err := json.Unmarshal([]byte(r), &dl); err != nil {
			return nil, fmt.Errorf("dlq entry: %w", err)
		}
		out = append(out, dl)
	}
	return out, nil
}

// RequeueDeadLetters moves the retryable entries of queue's DLQ back onto the
// queue, oldest first. Permanent entries stay in the DLQ. It returns the number
// of re-queued jobs.
func RequeueDeadLetters(ctx context.Context, rdb *redis.Client, queue string) (int, error) {
	key := deadLetterKey(queue)
	n, err := rdb.LLen(ctx, key).Result()
	if err != nil {
		return 0, err
	}

	requeued := 0
	for i := int64(0); i < n; i++ {
		raw, err := rdb.RPop(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			break
		}
		if err != nil {
			return requeued, err
		}
		target, data, err := requeueTarget(raw)
		if err != nil {
			return requeued, err
		}
		if err := rdb.LPush(ctx, target, data).Err(); err != nil {
			return requeued, err
		}
		if target == queue {
			requeued++
		}
	}
	if requeued > 0 {
		log.Info().Str("queue", queue).Int("requeued", requeued).Msg("dlq: jobs re-queued")
	}
	return requeued, nil
}

// requeueTarget decides where a popped DLQ entry goes: a job envelope onto its
// original queue, or the unchanged entry back into the DLQ when permanent.
func requeueTarget(raw string) (string, []byte, error) {
	var dl DeadLetter
	if err := json.Unmarshal([]byte(raw), &dl); err != nil {
		return "", nil, fmt.Errorf("dlq entry: %w", err)
	}
	if dl.Permanent {
		return deadLetterKey(dl.Queue), []byte(raw), nil
	}
	data, err := json.Marshal(Job{Type: dl.JobType, Payload: dl.Payload})
	return dl.Queue, data, err
}
