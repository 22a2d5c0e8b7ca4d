package jobs

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type fakeTokens struct {
	cutoff time.Time
	purged int64
	err    error
}

func (f *fakeTokens) PurgeStale(_ context.Context, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	return f.purged, f.err
}

type fakeDrafts struct {
	cutoff time.Time
	count  int64
}

func (f *fakeDrafts) CountStaleDrafts(_ context.Context, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	return f.count, nil
}

func TestRunOnce_UsesCutoffs(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	tokens := &fakeTokens{purged: 3}
	drafts := &fakeDrafts{count: 2}

	var buf bytes.Buffer
	m := NewMaintenance(MaintenanceConfig{}, tokens, drafts, zerolog.New(&buf))
	m.now = func() time.Time { return now }

	m.RunOnce(context.Background())

	assert.Equal(t, now, tokens.cutoff)
	assert.Equal(t, now.Add(-7*24*time.Hour), drafts.cutoff)
	assert.Contains(t, buf.String(), "purged refresh tokens")
	assert.Contains(t, buf.String(), "applications left in draft")
}

func TestRunOnce_PurgeErrorDoesNotStopDraftCount(t *testing.T) {
	tokens := &fakeTokens{err: errors.New("db down")}
	drafts := &fakeDrafts{}

	var buf bytes.Buffer
	m := NewMaintenance(MaintenanceConfig{StaleDraftAge: time.Hour}, tokens, drafts, zerolog.New(&buf))
	m.RunOnce(context.Background())

	assert.False(t, drafts.cutoff.IsZero())
	assert.Contains(t, buf.String(), "token purge failed")
}

func TestNewMaintenance_Defaults(t *testing.T) {
	m := NewMaintenance(MaintenanceConfig{}, &fakeTokens{}, &fakeDrafts{}, zerolog.Nop())
	assert.Equal(t, time.Hour, m.cfg.Interval)
	assert.Equal(t, 30*time.Second, m.cfg.Timeout)
}
