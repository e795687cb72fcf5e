package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time          { return f.t }
func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

func TestTTLCache_GetWithinTTL(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	c := NewTTLCache[string](DefaultCacheTTL).WithClock(clock.Now)

	c.Set("http://x/SLP/guildprofiles/guild-1_profile.json", "body")
	clock.Advance(4*time.Minute + 59*time.Second)

	v, ok := c.Get("http://x/SLP/guildprofiles/guild-1_profile.json")
	assert.True(t, ok)
	assert.Equal(t, "body", v)
}

func TestTTLCache_ExpiresAtTTL(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	c := NewTTLCache[int](time.Minute).WithClock(clock.Now)

	c.Set("k", 7)
	clock.Advance(time.Minute)

	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestTTLCache_Purge(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	c := NewTTLCache[int](time.Minute).WithClock(clock.Now)

	c.Set("old", 1)
	clock.Advance(30 * time.Second)
	c.Set("fresh", 2)
	clock.Advance(45 * time.Second)

	assert.Equal(t, 1, c.Purge())
	assert.Equal(t, 1, c.Len())
	_, ok := c.Get("fresh")
	assert.True(t, ok)
}

func TestNewTTLCache_DefaultsNonPositiveTTL(t *testing.T) {
	c := NewTTLCache[int](0)
	assert.Equal(t, DefaultCacheTTL, c.ttl)
}
