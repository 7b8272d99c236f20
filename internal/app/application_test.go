package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/R3E-Network/fatesheet/internal/app/system"
	"github.com/R3E-Network/fatesheet/internal/logging"
)

func TestNewDefaultsToMemoryStores(t *testing.T) {
	application, err := New(Stores{}, logging.Discard())
	require.NoError(t, err)

	ctx := context.Background()
	items, err := application.Todos.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	items, err = application.Todos.Add(ctx, "Buy milk")
	require.NoError(t, err)
	assert.Equal(t, []string{"Buy milk"}, items)
}

func TestAttachedServicesFollowLifecycle(t *testing.T) {
	application, err := New(Stores{}, logging.Discard())
	require.NoError(t, err)

	var stopped bool
	require.NoError(t, application.Attach(system.Func{
		ServiceName: "probe",
		OnStop: func(context.Context) error {
			stopped = true
			return nil
		},
	}))

	ctx := context.Background()
	require.NoError(t, application.Start(ctx))
	require.NoError(t, application.Stop(ctx))
	assert.True(t, stopped)
}
