package attendance

import (
	"context"

	"github.com/xraph/tally/id"
)

type Store interface {
	Create(ctx context.Context, s *Session) error
	Get(ctx context.Context, sessionID id.SessionID) (*Session, error)
	List(ctx context.Context, opts ListOpts) ([]*Session, error)
	Update(ctx context.Context, s *Session) error
	Delete(ctx context.Context, sessionID id.SessionID) error
}

type ListOpts struct {
	BatchID id.BatchID
	Limit   int
	Offset  int
}
