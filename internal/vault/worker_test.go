package vault

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepWorkerInitialPass(t *testing.T) {
	svc, meta, payloads := newTestService(t)
	ctx := context.Background()

	resp := createTestObject(t, svc, &CreateRequest{Data: strings.NewReader("x")})
	obj, err := meta.Load(ctx, resp.ID)
	require.NoError(t, err)
	obj.ValidUntil = timePtr(time.Now().Add(-time.Minute))
	require.NoError(t, meta.Save(ctx, obj))

	// An orphaned payload from an interrupted creation.
	orphanID, err := NewToken()
	require.NoError(t, err)
	_, err = payloads.Put(ctx, orphanID, strings.NewReader("orphan"))
	require.NoError(t, err)

	// The initial pass runs before Start returns.
	worker := NewSweepWorker(svc, time.Hour)
	worker.Start(ctx)
	defer worker.Stop()

	exists, err := payloads.Exists(ctx, resp.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = payloads.Exists(ctx, orphanID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSweepWorkerStopBeforeStart(t *testing.T) {
	svc, _, _ := newTestService(t)

	worker := NewSweepWorker(svc, time.Hour)
	assert.NotPanics(t, worker.Stop)
}
