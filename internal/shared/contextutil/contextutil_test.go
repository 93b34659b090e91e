package contextutil_test

import (
	"context"
	"testing"

	"github.com/Ali-shok/employee-management/internal/shared/contextutil"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestMetadataRoundTrip(t *testing.T) {
	ctx := contextutil.WithRequestID(context.Background(), "rid-1")
	ctx = contextutil.WithEmployeeID(ctx, "42")

	md := contextutil.ExtractMetadata(ctx)

	assert.Equal(t, "rid-1", md.RequestID)
	assert.Equal(t, "42", md.EmployeeID)
}

func TestGetLogger(t *testing.T) {
	fallback := zap.NewNop().Named("fallback")

	t.Run("from context", func(t *testing.T) {
		scoped := zap.NewNop().Named("scoped")
		ctx := contextutil.WithLogger(context.Background(), scoped)

		assert.Same(t, scoped, contextutil.GetLogger(ctx, fallback))
	})

	t.Run("fallback", func(t *testing.T) {
		assert.Same(t, fallback, contextutil.GetLogger(context.Background(), fallback))
	})

	t.Run("never nil", func(t *testing.T) {
		assert.NotNil(t, contextutil.GetLogger(context.Background(), nil))
	})
}
