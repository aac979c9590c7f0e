// internal/trader/registry.go
package trader

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/Deezzir/SolanaBot-sub000/internal/chain"
)

// Factory builds a Trader from the shared chain dependencies.
type Factory func(deps Deps) (Trader, error)

// Deps are the shared components every venue trader is built from.
type Deps struct {
	Client    *chain.Client
	Submitter *chain.Submitter
	Logger    *zap.Logger
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// Register installs a venue factory under its name. Venue packages call this
// from init; a duplicate name panics because it is a programming error.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	key := strings.ToLower(name)
	if _, exists := registry[key]; exists {
		panic(fmt.Sprintf("trader: venue %q registered twice", name))
	}
	registry[key] = factory
}

// New builds the trader registered under name (case-insensitive).
func New(name string, deps Deps) (Trader, error) {
	registryMu.RLock()
	factory, ok := registry[strings.ToLower(name)]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown venue %q (supported: %s)", name, strings.Join(Venues(), ", "))
	}
	return factory(deps)
}

// Venues lists the registered venue names, sorted.
func Venues() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
