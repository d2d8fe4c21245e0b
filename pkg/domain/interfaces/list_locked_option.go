package interfaces

import "github.com/esteira-credito/esteira/pkg/domain/model"

// ListLockedOption is a functional option for filtering cases in ListLocked
type ListLockedOption func(*listLockedConfig)

type listLockedConfig struct {
	ownerID string
}

// WithOwner filters locked cases by lock owner
func WithOwner(ownerID string) ListLockedOption {
	return func(c *listLockedConfig) {
		c.ownerID = ownerID
	}
}

// BuildListLockedConfig builds a listLockedConfig from options
func BuildListLockedConfig(opts ...ListLockedOption) *listLockedConfig {
	cfg := &listLockedConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// OwnerID returns the owner filter, or an empty string if not set
func (c *listLockedConfig) OwnerID() string {
	return c.ownerID
}

// Match reports whether a locked case satisfies the filter
func (c *listLockedConfig) Match(cs *model.Case) bool {
	if !cs.Lock.Active {
		return false
	}
	return c.ownerID == "" || cs.Lock.OwnerID == c.ownerID
}
