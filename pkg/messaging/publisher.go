// Package messaging defines the event contract shared by publishers and the
// subjects they publish on.
package messaging

import (
	"context"
)

const (
	// ProductsSubjectPrefix prefixes every product change subject.
	ProductsSubjectPrefix = "products."
	// ProductsSubjects matches all product change subjects; used as the stream filter.
	ProductsSubjects = ProductsSubjectPrefix + ">"
)

type Event interface {
	Subject() string
	Payload() ([]byte, error)
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher drops every event. Used when messaging is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
