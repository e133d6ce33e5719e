package health

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestChecker_AllHealthy(t *testing.T) {
	c := NewChecker(zerolog.Nop())
	c.Register("peer", func(ctx context.Context) Status { return StatusOK })
	c.Register("store", func(ctx context.Context) Status { return StatusOK })

	assert.True(t, c.IsReady(context.Background()))
}

func TestChecker_OneDown(t *testing.T) {
	c := NewChecker(zerolog.Nop())
	c.Register("peer", func(ctx context.Context) Status { return StatusOK })
	c.Register("store", func(ctx context.Context) Status { return StatusDown })

	assert.False(t, c.IsReady(context.Background()))
}

func TestChecker_Degraded_StillReady(t *testing.T) {
	c := NewChecker(zerolog.Nop())
	c.Register("peer", func(ctx context.Context) Status { return StatusDegraded })

	assert.True(t, c.IsReady(context.Background()))
}

func TestChecker_NoChecks(t *testing.T) {
	c := NewChecker(zerolog.Nop())
	assert.True(t, c.IsReady(context.Background()))
}

func TestChecker_LastRetainsResults(t *testing.T) {
	c := NewChecker(zerolog.Nop())
	c.Register("store", func(ctx context.Context) Status { return StatusDown })

	assert.Empty(t, c.Last())
	c.RunAll(context.Background())
	assert.Equal(t, map[string]Status{"store": StatusDown}, c.Last())
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(ctx context.Context) error { return s.err }

func TestPeerCheck(t *testing.T) {
	assert.Equal(t, StatusOK, PeerCheck(stubPinger{})(context.Background()))
	assert.Equal(t, StatusDegraded, PeerCheck(stubPinger{err: errors.New("refused")})(context.Background()))
}

type stubProber struct{ up bool }

func (s stubProber) Available(ctx context.Context) bool { return s.up }

func TestStoreCheck(t *testing.T) {
	assert.Equal(t, StatusOK, StoreCheck(stubProber{up: true})(context.Background()))
	assert.Equal(t, StatusDown, StoreCheck(stubProber{})(context.Background()))
}
