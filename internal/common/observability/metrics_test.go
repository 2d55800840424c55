// internal/common/observability/metrics_test.go
package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestObservability_NilAndZeroRecordNothing(t *testing.T) {
	ctx := context.Background()

	var nilObs *Observability
	assert.NotPanics(t, func() {
		nilObs.RecordSubmission(ctx, "created", time.Second)
		nilObs.RecordRiskScore(ctx, 0.5, "heuristic")
		nilObs.Shutdown()
	})

	zero := &Observability{}
	assert.NotPanics(t, func() {
		zero.RecordSubmission(ctx, "failed", time.Millisecond)
		zero.RecordRiskScore(ctx, 0.85, "heuristic")
		zero.Shutdown()
	})
}
