package biztime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDateStamp(t *testing.T) {
	ts := time.Date(2024, 3, 9, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, "20240309", DateStamp(ts))
}

func TestUnixMilliRoundTrip(t *testing.T) {
	assert.Nil(t, FromUnixMilliPtr(nil))
	assert.Nil(t, ToUnixMilliPtr(nil))

	now := time.Date(2024, 1, 2, 3, 4, 5, 6_000_000, time.UTC)
	ms := ToUnixMilliPtr(&now)
	back := FromUnixMilliPtr(ms)
	assert.True(t, now.Equal(*back))
	assert.Equal(t, time.UTC, back.Location())
}
