package audit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
)

type PublisherSuite struct {
	suite.Suite
	store *InMemoryStore
}

func TestPublisherSuite(t *testing.T) {
	suite.Run(t, new(PublisherSuite))
}

func (s *PublisherSuite) SetupTest() {
	s.store = NewInMemoryStore()
}

func (s *PublisherSuite) TestEmitPersistsWithTimestamp() {
	p := NewPublisher(s.store)

	err := p.Emit(context.Background(), Event{AccountID: "acct-1", Action: ActionLoginFailed})
	s.Require().NoError(err)

	events, err := s.store.ListByAccount(context.Background(), "acct-1")
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(ActionLoginFailed, events[0].Action)
	s.False(events[0].Timestamp.IsZero())
}

func (s *PublisherSuite) TestAsyncDrainsOnClose() {
	p := NewPublisher(s.store, WithAsyncBuffer(16))

	for i := 0; i < 10; i++ {
		s.Require().NoError(p.Emit(context.Background(), Event{AccountID: "acct-1", Action: ActionLoginSucceeded}))
	}
	p.Close()

	events, err := s.store.ListByAccount(context.Background(), "acct-1")
	s.Require().NoError(err)
	s.Len(events, 10)
}
