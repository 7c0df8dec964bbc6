package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/connectfour-go/internal/testutil"
)

type PoolSuite struct {
	suite.Suite
	pool *Pool
	ctx  context.Context
}

func TestPoolSuite(t *testing.T) {
	suite.Run(t, new(PoolSuite))
}

func (s *PoolSuite) SetupTest() {
	pool, err := New(4, testutil.NopLogger())
	s.Require().NoError(err)
	s.pool = pool
	s.ctx = context.Background()
}

func (s *PoolSuite) TearDownTest() {
	_ = s.pool.Release(time.Second)
}

func (s *PoolSuite) TestSubmitAndWaitRunsTask() {
	ran := false
	s.Require().NoError(s.pool.SubmitAndWait(s.ctx, func() { ran = true }))
	s.True(ran)
}

func (s *PoolSuite) TestSubmitRunsManyTasks() {
	var count atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		s.Require().NoError(s.pool.Submit(func() {
			defer wg.Done()
			count.Add(1)
		}))
	}
	wg.Wait()
	s.Equal(int32(100), count.Load())
}

func (s *PoolSuite) TestPanicDoesNotKillPool() {
	s.Require().NoError(s.pool.SubmitAndWait(s.ctx, func() { panic("boom") }))

	ran := false
	s.Require().NoError(s.pool.SubmitAndWait(s.ctx, func() { ran = true }))
	s.True(ran)
}

func (s *PoolSuite) TestSubmitAndWaitHonoursContext() {
	release := make(chan struct{})
	defer close(release)

	ctx, cancel := context.WithTimeout(s.ctx, 20*time.Millisecond)
	defer cancel()

	err := s.pool.SubmitAndWait(ctx, func() { <-release })
	s.ErrorIs(err, context.DeadlineExceeded)
}

func (s *PoolSuite) TestDoRunsInlineAfterRelease() {
	s.Require().NoError(s.pool.Release(time.Second))

	ran := false
	s.Require().NoError(s.pool.Do(s.ctx, func() { ran = true }))
	s.True(ran)
}

func (s *PoolSuite) TestStats() {
	stats := s.pool.Stats()
	s.Equal(4, stats.Capacity)
	s.Equal(stats.Capacity-stats.Running, stats.Free)
}
