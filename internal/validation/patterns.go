// internal/validation/patterns.go
package validation

import (
	"regexp"
	"sync"
)

/*
 * Process-wide cache of compiled validation patterns.
 *
 * Patterns come from stored field definitions, so the set is small and
 * long-lived. Read-through: the first lookup compiles, later lookups share
 * the result. A pattern that fails to compile is cached as nil and the
 * corresponding check is skipped.
 */

type patternCache struct {
	mu       sync.RWMutex
	compiled map[string]*regexp.Regexp
}

var patterns = &patternCache{compiled: map[string]*regexp.Regexp{}}

// lookup returns the compiled pattern, or nil if it does not compile.
func (c *patternCache) lookup(pattern string) *regexp.Regexp {
	c.mu.RLock()
	re, ok := c.compiled[pattern]
	c.mu.RUnlock()
	if ok {
		return re
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		re = nil
	}

	c.mu.Lock()
	c.compiled[pattern] = re
	c.mu.Unlock()
	return re
}
