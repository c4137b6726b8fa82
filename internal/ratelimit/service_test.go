package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	dErrors "taskhive/pkg/domain-errors"
)

type LimiterSuite struct {
	suite.Suite
	limiter *Limiter
	now     time.Time
}

func TestLimiterSuite(t *testing.T) {
	suite.Run(t, new(LimiterSuite))
}

func (s *LimiterSuite) SetupTest() {
	s.now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	limiter, err := New(NewInMemoryStore(), WithClock(func() time.Time { return s.now }))
	s.Require().NoError(err)
	s.limiter = limiter
}

func (s *LimiterSuite) allow(key string, max int, window time.Duration) bool {
	allowed, err := s.limiter.Allow(context.Background(), key, max, window)
	s.Require().NoError(err)
	return allowed
}

func (s *LimiterSuite) TestAllowsUpToMaxThenDenies() {
	s.True(s.allow("reset:a@example.com", 3, time.Minute))
	s.True(s.allow("reset:a@example.com", 3, time.Minute))
	s.True(s.allow("reset:a@example.com", 3, time.Minute))
	s.False(s.allow("reset:a@example.com", 3, time.Minute))
}

func (s *LimiterSuite) TestWindowSlides() {
	for i := 0; i < 4; i++ {
		s.allow("k", 3, time.Minute)
	}
	s.False(s.allow("k", 3, time.Minute))

	s.now = s.now.Add(61 * time.Second)
	s.True(s.allow("k", 3, time.Minute), "old timestamps purged once the window passes")
}

func (s *LimiterSuite) TestDeniedRequestsStillCount() {
	for i := 0; i < 10; i++ {
		s.allow("k", 3, time.Hour)
	}

	// Requests over the limit were recorded too, so the key stays limited
	// until a full window of silence elapses.
	s.now = s.now.Add(30 * time.Minute)
	s.False(s.allow("k", 3, time.Hour))
}

func (s *LimiterSuite) TestKeysAreIndependent() {
	for i := 0; i < 4; i++ {
		s.allow("k1", 3, time.Minute)
	}
	s.False(s.allow("k1", 3, time.Minute))
	s.True(s.allow("k2", 3, time.Minute))
}

func (s *LimiterSuite) TestFailsClosedOnStoreError() {
	limiter, err := New(failingWindowStore{})
	s.Require().NoError(err)

	allowed, err := limiter.Allow(context.Background(), "k", 3, time.Minute)
	s.False(allowed)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *LimiterSuite) TestRejectsNonPositiveParams() {
	_, err := s.limiter.Allow(context.Background(), "k", 0, time.Minute)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))

	_, err = s.limiter.Allow(context.Background(), "k", 3, 0)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

type failingWindowStore struct{}

func (failingWindowStore) AddAndCount(context.Context, string, time.Time, time.Duration) (int64, error) {
	return 0, errors.New("store unavailable")
}
