package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStream struct {
	groupErr error
	batches  []redis.XStream
	pending  []redis.XPendingExt
	claimed  []redis.XMessage
	acked    []string
	groups   int
}

func (f *fakeStream) XGroupCreateMkStream(ctx context.Context, _, _, _ string) *redis.StatusCmd {
	f.groups++
	return redis.NewStatusResult("OK", f.groupErr)
}

func (f *fakeStream) XReadGroup(context.Context, *redis.XReadGroupArgs) *redis.XStreamSliceCmd {
	if len(f.batches) == 0 {
		return redis.NewXStreamSliceCmdResult(nil, redis.Nil)
	}
	return redis.NewXStreamSliceCmdResult(f.batches, nil)
}

func (f *fakeStream) XAck(_ context.Context, _, _ string, ids ...string) *redis.IntCmd {
	f.acked = append(f.acked, ids...)
	return redis.NewIntResult(int64(len(ids)), nil)
}

func (f *fakeStream) XPendingExt(ctx context.Context, _ *redis.XPendingExtArgs) *redis.XPendingExtCmd {
	cmd := redis.NewXPendingExtCmd(ctx)
	cmd.SetVal(f.pending)
	return cmd
}

func (f *fakeStream) XClaim(context.Context, *redis.XClaimArgs) *redis.XMessageSliceCmd {
	return redis.NewXMessageSliceCmdResult(f.claimed, nil)
}

type handlerFunc func(ctx context.Context, msg redis.XMessage) error

func (h handlerFunc) Handle(ctx context.Context, msg redis.XMessage) error { return h(ctx, msg) }

func failOn(id string) handlerFunc {
	return func(_ context.Context, msg redis.XMessage) error {
		if msg.ID == id {
			return errors.New("webhook down")
		}
		return nil
	}
}

func TestConsumer_AcksOnlyHandledMessages(t *testing.T) {
	fs := &fakeStream{batches: []redis.XStream{{
		Stream: "comments:notify",
		Messages: []redis.XMessage{
			{ID: "1-0"}, {ID: "2-0"}, {ID: "3-0"},
		},
	}}}
	c := NewConsumer(fs, "comments:notify", "g", "c1", time.Second, zerolog.Nop(), failOn("2-0"))

	require.NoError(t, c.read(context.Background()))
	assert.Equal(t, []string{"1-0", "3-0"}, fs.acked)
}

func TestConsumer_EmptyReadIsNotAnError(t *testing.T) {
	fs := &fakeStream{}
	c := NewConsumer(fs, "s", "g", "c1", time.Second, zerolog.Nop(), failOn(""))
	assert.NoError(t, c.read(context.Background()))
	assert.Empty(t, fs.acked)
}

func TestConsumer_ClaimsIdleEntries(t *testing.T) {
	fs := &fakeStream{
		pending: []redis.XPendingExt{
			{ID: "5-0", Idle: time.Minute},
			{ID: "6-0", Idle: time.Millisecond},
		},
		claimed: []redis.XMessage{{ID: "5-0"}},
	}
	c := NewConsumer(fs, "s", "g", "c1", time.Second, zerolog.Nop(), failOn(""))

	require.NoError(t, c.claimStalled(context.Background()))
	assert.Equal(t, []string{"5-0"}, fs.acked)
}

func TestConsumer_EnsureGroup(t *testing.T) {
	fs := &fakeStream{groupErr: errors.New("BUSYGROUP Consumer Group name already exists")}
	c := NewConsumer(fs, "s", "g", "c1", time.Second, zerolog.Nop(), failOn(""))
	assert.NoError(t, c.EnsureGroup(context.Background()))

	fs.groupErr = errors.New("NOPERM")
	assert.Error(t, c.EnsureGroup(context.Background()))
	assert.Equal(t, 2, fs.groups)
}

func TestConsumer_StartStopsOnCancel(t *testing.T) {
	fs := &fakeStream{}
	c := NewConsumer(fs, "s", "g", "c1", time.Hour, zerolog.Nop(), failOn(""))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, c.Start(ctx), context.Canceled)
}
