package prp

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultBranchPrefix is prepended to every implementation branch.
const DefaultBranchPrefix = "implement/"

// SuffixStrategy selects what makes a branch name unique.
type SuffixStrategy string

const (
	// SuffixTimestamp appends Unix seconds, bumped so that a single Namer
	// never issues the same value twice.
	SuffixTimestamp SuffixStrategy = "timestamp"
	// SuffixUUID appends the first 8 hex characters of a random UUID.
	SuffixUUID SuffixStrategy = "uuid"
)

// ParseSuffixStrategy maps a config value to a strategy.
func ParseSuffixStrategy(s string) (SuffixStrategy, error) {
	switch SuffixStrategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", SuffixTimestamp:
		return SuffixTimestamp, nil
	case SuffixUUID:
		return SuffixUUID, nil
	default:
		return "", fmt.Errorf("unknown branch suffix strategy %q (want timestamp or uuid)", s)
	}
}

// Namer derives implementation branch names.
//
// With SuffixTimestamp, names are unique within one Namer but two processes
// naming the same identifier in the same second still collide. Callers that
// create branches must handle an existing branch; see git.StartImplementation.
type Namer struct {
	prefix   string
	strategy SuffixStrategy
	now      func() time.Time

	mu   sync.Mutex
	last int64
}

// NewNamer creates a namer. An empty prefix uses DefaultBranchPrefix.
func NewNamer(prefix string, strategy SuffixStrategy) *Namer {
	if prefix == "" {
		prefix = DefaultBranchPrefix
	}
	if strategy == "" {
		strategy = SuffixTimestamp
	}
	return &Namer{
		prefix:   prefix,
		strategy: strategy,
		now:      time.Now,
	}
}

// WithClock replaces the time source. Used by tests.
func (n *Namer) WithClock(now func() time.Time) *Namer {
	n.now = now
	return n
}

// Branch returns <prefix><identifier>-<suffix>.
func (n *Namer) Branch(identifier string) string {
	return n.prefix + identifier + "-" + n.suffix()
}

func (n *Namer) suffix() string {
	if n.strategy == SuffixUUID {
		return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	ts := n.now().Unix()
	if ts <= n.last {
		ts = n.last + 1
	}
	n.last = ts
	return strconv.FormatInt(ts, 10)
}
