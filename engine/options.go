package engine

import (
	"strings"

	"github.com/hostvm/vm-bridge/errors"
)

// AddOption appends one raw name=value token to the option sink. The token
// is split on the first separator only, so values may themselves contain
// '='. A token without a separator is a syntax error naming the token.
//
// The sink is append-only and order-preserving; duplicates are allowed and
// all of them are applied, in insertion order, to every engine constructed
// afterwards. An engine that de-duplicates sees the last write win.
func (c *Config) AddOption(raw string) error {
	name, value, ok := strings.Cut(raw, "=")
	if !ok {
		return errors.Syntax(raw, "expected <name>=<value>")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.options = append(c.options, Option{Name: name, Value: value})
	return nil
}

// Options returns a copy of the option sink in insertion order.
func (c *Config) Options() []Option {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Option, len(c.options))
	copy(out, c.options)
	return out
}
