package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStartEndSpanNoProvider(t *testing.T) {
	// Without Init spans are no-ops but must be fully usable.
	ctx, span := StartSpan(context.Background(), "challan.issue", "CONSUMER")
	assert.NotNil(t, ctx)
	assert.NotNil(t, span)

	span.WithAttributes(map[string]string{"vehicle.id": "LEA-0001"})
	EndSpan(span, errors.New("boom"))
	EndSpan(nil, nil)
}

func TestSpanContextRoundTrip(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "monitor.sweep", "INTERNAL")
	ctx = WithSpan(ctx, span)
	got, ok := SpanFromContext(ctx)
	assert.True(t, ok)
	assert.NotNil(t, got)
	EndSpan(span, nil)
}
