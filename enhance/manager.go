package enhance

import (
	"sync"

	"github.com/aether-player/aether/log"
)

// Engine receives filter chains.
type Engine interface {
	Running() bool
	SetProperty(name string, value any) error
}

// Store persists the chosen preset.
type Store interface {
	SavePreset(name string) error
}

// Manager tracks the active preset and custom parameters and pushes chains to the engine.
type Manager struct {
	engine Engine
	store  Store

	mu      sync.Mutex
	current string
	custom  Params
}

// NewManager starts with the given preset; an unknown one falls back to off.
func NewManager(engine Engine, store Store, current string) *Manager {
	if !Valid(current) {
		current = Off
	}
	return &Manager{engine: engine, store: store, current: current, custom: DefaultParams()}
}

// Current returns the active preset key.
func (m *Manager) Current() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Custom returns a copy of the custom parameters.
func (m *Manager) Custom() Params {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.custom
}

// FilterChain returns the chain of the active preset.
func (m *Manager) FilterChain() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	chain, _ := Chain(m.current, m.custom)
	return chain
}

// Apply records and persists name, then pushes its chain if the engine is running.
// Persisting and pushing failures are logged; the recorded choice stands regardless.
func (m *Manager) Apply(name string) error {
	m.mu.Lock()
	chain, err := m.record(name)
	m.mu.Unlock()
	if err != nil {
		return err
	}

	m.push(name, chain)
	return nil
}

func (m *Manager) record(name string) (string, error) {
	chain, err := Chain(name, m.custom)
	if err != nil {
		return "", err
	}

	m.current = name
	if m.store != nil {
		if err := m.store.SavePreset(name); err != nil {
			log.Warnf("enhance: persist preset %s: %s", name, err)
		}
	}
	return chain, nil
}

// push runs without m.mu: the engine may call back into FilterChain while starting.
func (m *Manager) push(name, chain string) {
	if m.engine == nil || !m.engine.Running() {
		log.Infof("enhance: preset %s recorded, engine not running", name)
		return
	}

	if err := m.engine.SetProperty("af", chain); err != nil {
		log.Warnf("enhance: push preset %s: %s", name, err)
		return
	}

	log.Infof("enhance: applied %s (%q)", name, chain)
}

// UpdateCustom sets custom parameters, clamping values, and re-applies custom if it is active.
// No value changes when any name is unknown.
func (m *Manager) UpdateCustom(values map[string]float64) error {
	m.mu.Lock()

	next := m.custom
	for name, v := range values {
		if err := next.Set(name, v); err != nil {
			m.mu.Unlock()
			return err
		}
	}
	m.custom = next

	if m.current != Custom {
		m.mu.Unlock()
		return nil
	}

	chain, err := m.record(Custom)
	m.mu.Unlock()
	if err != nil {
		return err
	}

	m.push(Custom, chain)
	return nil
}
