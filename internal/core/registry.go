package core

import (
	"fmt"
	"slices"
	"sync"
)

// Keys of the two reference tables.
const (
	TableHSN = "hsn"
	TableSAC = "sac"
)

var (
	registryMu sync.RWMutex
	registry   = map[string]TableDefinition{}
)

// Register makes a reference table known to the loaders.
// It is called from init functions and panics on a definition that could
// never load: no key, no code column, a negative sheet, or a key or sheet
// that is already taken.
func Register(def TableDefinition) {
	registryMu.Lock()
	defer registryMu.Unlock()

	switch {
	case def.Info.Key == "":
		panic("register table: empty key")
	case def.Code.Name == "":
		panic(fmt.Sprintf("register table %s: no code column", def.Info.Key))
	case def.Info.Sheet < 0:
		panic(fmt.Sprintf("register table %s: negative sheet %d", def.Info.Key, def.Info.Sheet))
	}

	for key, other := range registry {
		if key == def.Info.Key {
			panic(fmt.Sprintf("register table %s: already registered", key))
		}
		if other.Info.Sheet == def.Info.Sheet {
			panic(fmt.Sprintf("register table %s: sheet %d already used by %s", def.Info.Key, def.Info.Sheet, key))
		}
	}

	registry[def.Info.Key] = def
}

// Get looks up a table definition by key.
func Get(key string) (TableDefinition, bool) {
	registryMu.RLock()
	def, ok := registry[key]
	registryMu.RUnlock()
	return def, ok
}

// All returns the registered definitions in workbook sheet order.
func All() []TableDefinition {
	registryMu.RLock()
	defs := make([]TableDefinition, 0, len(registry))
	for _, def := range registry {
		defs = append(defs, def)
	}
	registryMu.RUnlock()

	slices.SortFunc(defs, func(a, b TableDefinition) int {
		return a.Info.Sheet - b.Info.Sheet
	})
	return defs
}

// TableCount reports how many tables are registered.
func TableCount() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}

// Clear empties the registry. Tests use it to install their own definitions.
func Clear() {
	registryMu.Lock()
	registry = map[string]TableDefinition{}
	registryMu.Unlock()
}
