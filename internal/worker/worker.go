package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/personality-engine/internal/services/queue"
	"github.com/redis/go-redis/v9"
)

const (
	// pollTimeout bounds each blocking dequeue so shutdown and decay ticks are checked
	pollTimeout = 1 * time.Second
	lockTTL     = 30 * time.Second
)

// ErrCharacterLocked is returned by Start when another worker owns the
// character, either at startup or after this worker's lock was taken over.
var ErrCharacterLocked = errors.New("character is locked by another worker")

var errLockLost = errors.New("character lock lost")

var releaseLockScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

var refreshLockScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("pexpire", KEYS[1], ARGV[2])
	else
		return 0
	end
`)

// Worker is the single writer for one character: it drains the character's
// queue in order and runs decay ticks between requests.
type Worker struct {
	id            string
	characterID   uuid.UUID
	queue         *queue.EventQueue
	processor     *Processor
	redisClient   *redis.Client
	log           *slog.Logger
	decayInterval time.Duration
	lastDecay     time.Time
	lastRefresh   time.Time
	ctx           context.Context
	cancel        context.CancelFunc
}

// New creates a new worker instance
func New(characterID uuid.UUID, q *queue.EventQueue, processor *Processor, redisClient *redis.Client, log *slog.Logger, workerID string, decayInterval time.Duration) *Worker {
	ctx, cancel := context.WithCancel(context.Background())

	if workerID == "" {
		workerID = fmt.Sprintf("worker-%s", uuid.New().String()[:8])
	}

	return &Worker{
		id:            workerID,
		characterID:   characterID,
		queue:         q,
		processor:     processor,
		redisClient:   redisClient,
		log:           log,
		decayInterval: decayInterval,
		lastDecay:     time.Now(),
		ctx:           ctx,
		cancel:        cancel,
	}
}

// ID returns the worker id
func (w *Worker) ID() string {
	return w.id
}

// Start processes requests until Stop is called
func (w *Worker) Start() error {
	w.log.Info("Worker starting", "worker_id", w.id, "character_id", w.characterID.String())

	locked, err := w.acquireLock()
	if err != nil {
		return fmt.Errorf("failed to acquire character lock: %w", err)
	}
	if !locked {
		return ErrCharacterLocked
	}
	defer w.releaseLock()

	for {
		select {
		case <-w.ctx.Done():
			w.log.Info("Worker shutting down", "worker_id", w.id)
			return nil
		default:
		}

		err := w.processNextRequest()
		if errors.Is(err, errLockLost) {
			w.log.Warn("Lost character lock, stopping", "worker_id", w.id, "character_id", w.characterID.String())
			return ErrCharacterLocked
		}
		if err != nil {
			w.log.Error("Error processing request", "error", err, "worker_id", w.id)
			// Continue processing even on error
			select {
			case <-w.ctx.Done():
			case <-time.After(time.Second):
			}
		}

		now := time.Now()
		if w.decayDue(now) || now.Sub(w.lastRefresh) > lockTTL/3 {
			if !w.holdsLock() {
				w.log.Warn("Lost character lock, stopping", "worker_id", w.id, "character_id", w.characterID.String())
				return ErrCharacterLocked
			}
		}
		w.maybeDecay(now)
	}
}

// Stop gracefully shuts down the worker
func (w *Worker) Stop() {
	w.log.Info("Worker stop requested", "worker_id", w.id)
	w.cancel()
}

// processNextRequest waits briefly for the next request and applies it
func (w *Worker) processNextRequest() error {
	req, err := w.queue.BlockingDequeue(w.ctx, w.characterID, pollTimeout)
	if err != nil {
		if errors.Is(err, queue.ErrQueueEmpty) || errors.Is(err, context.Canceled) {
			return nil
		}
		return fmt.Errorf("failed to dequeue request: %w", err)
	}

	// Another worker may have taken the character while this one stalled.
	if !w.holdsLock() {
		if err := w.queue.Requeue(w.ctx, req); err != nil {
			w.log.Error("Failed to requeue request", "error", err, "request_id", req.RequestID)
		}
		return errLockLost
	}

	start := time.Now()
	if err := w.processor.Process(w.ctx, req); err != nil {
		if pubErr := w.processor.broadcaster.PublishRequestFailed(w.ctx, w.characterID, req.RequestID, err.Error()); pubErr != nil {
			w.log.Error("Failed to publish failure event", "error", pubErr)
		}
		return fmt.Errorf("failed to process request %s: %w", req.RequestID, err)
	}

	w.log.Info("Request processed",
		"worker_id", w.id,
		"request_id", req.RequestID,
		"type", req.Type,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func (w *Worker) decayDue(now time.Time) bool {
	return w.decayInterval > 0 && now.Sub(w.lastDecay) >= w.decayInterval
}

// maybeDecay runs a decay tick once the interval has passed
func (w *Worker) maybeDecay(now time.Time) {
	if !w.decayDue(now) {
		return
	}
	w.processor.Decay(w.ctx, now.Sub(w.lastDecay))
	w.lastDecay = now
}

func lockKey(characterID uuid.UUID) string {
	return fmt.Sprintf("personality-lock:%s", characterID.String())
}

// acquireLock claims the character for this worker. A lock already held
// under this worker's id is reclaimed.
func (w *Worker) acquireLock() (bool, error) {
	ok, err := w.redisClient.SetNX(w.ctx, lockKey(w.characterID), w.id, lockTTL).Result()
	if err != nil {
		return false, err
	}
	if !ok {
		return w.refreshLock()
	}
	w.lastRefresh = time.Now()
	return true, nil
}

// refreshLock extends the lock and reports whether this worker still owns it
func (w *Worker) refreshLock() (bool, error) {
	n, err := refreshLockScript.Run(w.ctx, w.redisClient, []string{lockKey(w.characterID)}, w.id, lockTTL.Milliseconds()).Int()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}
	w.lastRefresh = time.Now()
	return true, nil
}

// holdsLock refreshes the lock. Transient Redis errors keep the lock
// assumed until its TTL could have lapsed.
func (w *Worker) holdsLock() bool {
	owned, err := w.refreshLock()
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			w.log.Error("Failed to refresh character lock", "error", err, "character_id", w.characterID.String())
		}
		return time.Since(w.lastRefresh) < lockTTL
	}
	return owned
}

// releaseLock releases the lock if this worker owns it
func (w *Worker) releaseLock() {
	// The worker context is already cancelled on shutdown.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := releaseLockScript.Run(ctx, w.redisClient, []string{lockKey(w.characterID)}, w.id).Err(); err != nil {
		w.log.Error("Failed to release character lock", "error", err, "character_id", w.characterID.String())
	}
}
