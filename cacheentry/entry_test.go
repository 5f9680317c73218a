package cacheentry_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haldane-cache/autocache/cacheentry"
)

func TestNewRejectsNonPositiveDuration(t *testing.T) {
	_, err := cacheentry.New("v", 0)
	require.Error(t, err)

	_, err = cacheentry.New("v", -time.Second)
	require.Error(t, err)
}

func TestNewHasExpiredAfterDuration(t *testing.T) {
	// Expiration is kept in whole Unix seconds, so the later check point
	// must lie a full second past the entry's expiration.
	e, err := cacheentry.New("v", time.Second)
	require.NoError(t, err)

	assert.False(t, e.HasExpired(time.Now()))
	assert.True(t, e.HasExpired(time.Now().Add(2*time.Second)))

	val, ok := e.Value()
	assert.True(t, ok)
	assert.Equal(t, "v", val)
}

func TestNewAbsentHasNoValue(t *testing.T) {
	e, err := cacheentry.NewAbsent(time.Second)
	require.NoError(t, err)

	val, ok := e.Value()
	assert.False(t, ok)
	assert.Nil(t, val)
}

func TestReserveCarriesForwardPreviousValue(t *testing.T) {
	prev, err := cacheentry.New("old", time.Millisecond)
	require.NoError(t, err)

	reserved, err := cacheentry.Reserve(prev, time.Minute)
	require.NoError(t, err)

	val, ok := reserved.Value()
	assert.True(t, ok)
	assert.Equal(t, "old", val)
	assert.False(t, reserved.HasExpired(time.Now()))
}

func TestReserveOfAbsentStaysAbsent(t *testing.T) {
	prev := cacheentry.Entry{}
	reserved, err := cacheentry.Reserve(prev, time.Minute)
	require.NoError(t, err)

	_, ok := reserved.Value()
	assert.False(t, ok)
}
