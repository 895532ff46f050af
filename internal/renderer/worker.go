package renderer

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sbenjam1n/eldesc/internal/queue"
	"github.com/sbenjam1n/eldesc/internal/render"
)

// Worker consumes invalidation events and re-renders the affected
// instances, keeping the cached descriptions fresh.
type Worker struct {
	queue    *queue.Queue
	render   *render.Service
	consumer string
}

// New creates a Worker. consumer names this worker within the renderer
// consumer group.
func New(db *pgxpool.Pool, rdb *redis.Client, consumer string) *Worker {
	q := queue.New(rdb)
	return &Worker{
		queue:    q,
		render:   render.NewService(db, q),
		consumer: consumer,
	}
}

// Run blocks on the invalidation stream, re-rendering each popped
// instance. Render failures are logged and acked; the instance stays
// flagged stale for a later retry.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.queue.EnsureStreams(ctx); err != nil {
		return err
	}

	for {
		msg, msgID, err := w.queue.ReadInvalidation(ctx, w.consumer)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("invalidation read error: %v", err)
			continue
		}

		if _, err := w.render.RenderInstance(ctx, msg.ProjectElementID); err != nil {
			log.Printf("re-render instance %d failed: %v", msg.ProjectElementID, err)
		} else {
			log.Printf("re-rendered instance %d (%s)", msg.ProjectElementID, msg.Reason)
		}

		if err := w.queue.Ack(ctx, msgID); err != nil {
			log.Printf("ack %s failed: %v", msgID, err)
		}
	}
}
