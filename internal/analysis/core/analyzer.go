package core

import (
	"go.uber.org/zap"
)

// Descriptor is the metadata every lint rule exposes. It identifies the rule
// in diagnostics and reports regardless of which language host runs it.
type Descriptor interface {
	Name() string
	Description() string
}

// BaseRule provides a foundational implementation of the Descriptor
// interface. It is intended to be embedded within specific rule
// implementations to reduce boilerplate code.
type BaseRule struct {
	name        string
	description string
	Logger      *zap.Logger // Exposed for use in specific rule implementations.
}

// NewBaseRule creates and initializes a new BaseRule with a named sub-logger.
func NewBaseRule(name, description string, logger *zap.Logger) *BaseRule {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BaseRule{
		name:        name,
		description: description,
		Logger:      logger.Named(name),
	}
}

// Name returns the rule's identifier.
func (b *BaseRule) Name() string {
	return b.name
}

// Description returns the rule's human readable description.
func (b *BaseRule) Description() string {
	return b.description
}
