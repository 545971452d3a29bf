package daemon

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestScheduleEvery(t *testing.T) {
	t.Run("valid interval returns job ID", func(t *testing.T) {
		s, err := NewScheduler()
		require.NoError(t, err)
		defer s.Stop(context.Background())

		jobID, err := s.ScheduleEvery("rebuild", time.Hour, func() {})
		require.NoError(t, err)
		require.NotEmpty(t, jobID)
	})

	t.Run("rejects non-positive interval", func(t *testing.T) {
		s, err := NewScheduler()
		require.NoError(t, err)
		defer s.Stop(context.Background())

		_, err = s.ScheduleEvery("rebuild", 0, func() {})
		require.Error(t, err)

		_, err = s.ScheduleEvery("rebuild", -time.Minute, func() {})
		require.Error(t, err)
	})

	t.Run("runs the task once started", func(t *testing.T) {
		s, err := NewScheduler()
		require.NoError(t, err)
		defer s.Stop(context.Background())

		var runs atomic.Int32
		_, err = s.ScheduleEvery("tick", 10*time.Millisecond, func() {
			runs.Add(1)
		})
		require.NoError(t, err)

		s.Start(context.Background())
		require.Eventually(t, func() bool {
			return runs.Load() >= 2
		}, 2*time.Second, 5*time.Millisecond)
	})
}

func TestReschedule(t *testing.T) {
	t.Run("updates an existing job", func(t *testing.T) {
		s, err := NewScheduler()
		require.NoError(t, err)
		defer s.Stop(context.Background())

		jobID, err := s.ScheduleEvery("rebuild", time.Hour, func() {})
		require.NoError(t, err)

		newID, err := s.Reschedule(jobID, 2*time.Hour, func() {})
		require.NoError(t, err)
		require.NotEmpty(t, newID)
	})

	t.Run("rejects malformed job ID", func(t *testing.T) {
		s, err := NewScheduler()
		require.NoError(t, err)
		defer s.Stop(context.Background())

		_, err = s.Reschedule("not-a-uuid", time.Hour, func() {})
		require.Error(t, err)
	})

	t.Run("rejects non-positive interval", func(t *testing.T) {
		s, err := NewScheduler()
		require.NoError(t, err)
		defer s.Stop(context.Background())

		jobID, err := s.ScheduleEvery("rebuild", time.Hour, func() {})
		require.NoError(t, err)

		_, err = s.Reschedule(jobID, 0, func() {})
		require.Error(t, err)
	})
}
