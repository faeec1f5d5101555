package output

import "context"

// DocumentStore is a key-value store of whole JSON documents keyed by
// logical name ("event:1", "lineup:3"). Save always overwrites the whole document.
type DocumentStore interface {
	Load(ctx context.Context, name string) (body []byte, found bool, err error)
	Save(ctx context.Context, name string, body []byte) error
	Delete(ctx context.Context, name string) error
	List(ctx context.Context, prefix string) (map[string][]byte, error)
	// NextID increments and returns the named counter. The first value is 1.
	NextID(ctx context.Context, counter string) (uint, error)
}
