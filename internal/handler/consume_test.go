package handler_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/libradesk/library-backend/internal/handler"
	"github.com/libradesk/library-backend/pkg/kafka"
)

func TestConsumer_SetupSurvivesRejoin(t *testing.T) {
	t.Parallel()

	consumer := handler.NewConsumer(func(context.Context, kafka.LoanEvent) error {
		return nil
	}, zap.NewNop())

	// the group handler is reused across sessions, so Setup runs once per
	// rejoin after a rebalance
	require.NotPanics(t, func() {
		require.NoError(t, consumer.Setup(nil))
		require.NoError(t, consumer.Setup(nil))
		require.NoError(t, consumer.Setup(nil))
	})
}
