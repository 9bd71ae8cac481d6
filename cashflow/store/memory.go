// Package store provides Source implementations.
package store

import (
	"context"
	"sync"

	"github.com/warp/cashflow-engine/cashflow"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu          sync.RWMutex
	control     map[string]string
	definitions []cashflow.Definition // insertion order is the configured order
}

func NewMemory() *Memory {
	return &Memory{control: make(map[string]string)}
}

// SetControl replaces the control key/value map.
func (m *Memory) SetControl(kv map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.control = make(map[string]string, len(kv))
	for k, v := range kv {
		m.control[k] = v
	}
}

// Control parses the stored key/value map.
func (m *Memory) Control(_ context.Context) (cashflow.ControlParameters, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cashflow.ParseControl(m.control)
}

// Save adds a definition, replacing any with the same ID in place.
func (m *Memory) Save(_ context.Context, def cashflow.Definition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.definitions {
		if def.ID != "" && m.definitions[i].ID == def.ID {
			m.definitions[i] = def
			return nil
		}
	}
	m.definitions = append(m.definitions, def)
	return nil
}

// Get returns a definition by ID.
func (m *Memory) Get(_ context.Context, id string) (cashflow.Definition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, def := range m.definitions {
		if def.ID == id {
			return def, nil
		}
	}
	return cashflow.Definition{}, cashflow.ErrDefinitionNotFound
}

// Delete removes a definition by ID.
func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, def := range m.definitions {
		if def.ID == id {
			m.definitions = append(m.definitions[:i], m.definitions[i+1:]...)
			return nil
		}
	}
	return cashflow.ErrDefinitionNotFound
}

// Definitions groups definitions by kind, preserving insertion order.
func (m *Memory) Definitions(_ context.Context) (map[cashflow.Kind][]cashflow.Definition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	grouped := make(map[cashflow.Kind][]cashflow.Definition)
	for _, def := range m.definitions {
		grouped[def.Kind] = append(grouped[def.Kind], def)
	}
	return grouped, nil
}
