package activity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSwitchTracker_Empty(t *testing.T) {
	st := NewSwitchTracker(0, 0, 0)
	assert.Equal(t, 0, st.Count(time.Now()))
	assert.Equal(t, DefaultWindow, st.Window())
}

func TestSwitchTracker_CountsWithinWindow(t *testing.T) {
	st := NewSwitchTracker(20*time.Minute, 100, 10)
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		st.RecordAt(base.Add(time.Duration(i) * time.Minute))
	}
	assert.Equal(t, 5, st.Count(base.Add(5*time.Minute)))
}

func TestSwitchTracker_WindowEviction(t *testing.T) {
	st := NewSwitchTracker(20*time.Minute, 100, 10)
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		st.RecordAt(base.Add(time.Duration(i) * time.Second))
	}

	// 21 minutes later every earlier switch has aged out.
	n := st.RecordAt(base.Add(21 * time.Minute))
	assert.Equal(t, 1, n, "old switches should be evicted, leaving only the new one")
}

func TestSwitchTracker_Capacity(t *testing.T) {
	st := NewSwitchTracker(20*time.Minute, 100, 10)
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	var n int
	for i := 0; i < 150; i++ {
		n = st.RecordAt(base.Add(time.Duration(i) * time.Second))
	}
	assert.Equal(t, 100, n, "bounded at capacity")
}

func TestSwitchTracker_Excessive(t *testing.T) {
	st := NewSwitchTracker(20*time.Minute, 100, 10)
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	var n int
	for i := 0; i < 10; i++ {
		n = st.RecordAt(base.Add(time.Duration(i) * time.Second))
	}
	assert.False(t, st.Excessive(n), "exactly the threshold is not excessive")

	n = st.RecordAt(base.Add(11 * time.Second))
	assert.True(t, st.Excessive(n))
}

func TestSwitchTracker_Reset(t *testing.T) {
	st := NewSwitchTracker(20*time.Minute, 100, 10)
	now := time.Now()
	st.RecordAt(now)
	st.RecordAt(now.Add(time.Second))

	st.Reset()
	assert.Equal(t, 0, st.Count(now.Add(2*time.Second)), "Reset should clear all data")
}
