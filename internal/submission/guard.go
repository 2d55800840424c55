// internal/submission/guard.go
package submission

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"chronocost/internal/common/logger"
)

var ErrSubmissionInProgress = errors.New("SUBMISSION_IN_PROGRESS")

// releaseScript deletes the key only while it still holds our token, so
// an expired guard re-acquired by a later submit is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Guard allows one in-flight submission per user.
type Guard struct {
	redis *redis.Client
	ttl   time.Duration
	log   logger.Logger
}

func NewGuard(client *redis.Client, ttl time.Duration, log logger.Logger) *Guard {
	return &Guard{
		redis: client,
		ttl:   ttl,
		log:   log.WithFields(map[string]interface{}{"component": "submission-guard"}),
	}
}

func guardKey(userID string) string {
	return "submission:inflight:" + userID
}

// Acquire marks userID as submitting. The returned release must be called
// once the submission has finished, whatever its outcome.
func (g *Guard) Acquire(ctx context.Context, userID string) (func(), error) {
	token := uuid.New().String()
	key := guardKey(userID)

	ok, err := g.redis.SetNX(ctx, key, token, g.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire submission guard: %w", err)
	}
	if !ok {
		return nil, ErrSubmissionInProgress
	}

	return func() {
		// the request context may already be cancelled
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, g.redis, []string{key}, token).Err(); err != nil {
			// the user stays blocked until the key expires
			g.log.Warn("Submission guard release failed", map[string]interface{}{
				"key":   key,
				"ttl":   g.ttl.String(),
				"error": err.Error(),
			})
		}
	}, nil
}
