package infrastructure

import (
	"context"
)

// MessagePublisher sends raw envelopes to a subject; NATSClient implements it
type MessagePublisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}
