package ledger

import (
	"context"
)

// Ports for outbound adapters.
type (
	// Store is the read contract of the per-tab blob store. ok is false when
	// the key is absent.
	Store interface {
		Get(ctx context.Context, key string) (value string, ok bool, err error)
	}

	// Writer is implemented by stores that can be populated, such as the
	// sqlite mirror fed by the sync worker.
	Writer interface {
		Put(ctx context.Context, key, value string) (changed bool, err error)
	}

	// Lister enumerates every key held by a store.
	Lister interface {
		Keys(ctx context.Context) ([]string, error)
	}

	// Snapshotter is implemented by remote stores that can hand out every
	// key at once. The returned map is shared and must not be modified.
	Snapshotter interface {
		View(ctx context.Context) (map[string]string, error)
	}
)
