// Package monitor implements incremental temporal predicates over the live
// reference graph. A monitor is a combinator tree evaluated one event at a
// time; once a node is frozen its verdict never changes again, and frozen
// branches are no longer evaluated.
package monitor

import "fmt"

// Factory creates the monitor instance for one object.
type Factory interface {
	NewMonitor(g Graph, objectID string) *Monitor
}

// FactoryFunc adapts a function to Factory.
type FactoryFunc func(g Graph, objectID string) *Monitor

func (f FactoryFunc) NewMonitor(g Graph, objectID string) *Monitor { return f(g, objectID) }

type prototype struct{ tree *Monitor }

// Prototype returns a Factory that binds an independent copy of tree to
// every object it is asked for.
func Prototype(tree *Monitor) Factory { return prototype{tree: tree} }

func (p prototype) NewMonitor(g Graph, objectID string) *Monitor {
	return p.tree.Bind(g, objectID)
}

// Template is a named monitor factory registered with the model before any
// event is processed.
type Template struct {
	Name    string
	Factory Factory
}

// Instantiate creates one fresh monitor per template, in template order.
func Instantiate(templates []Template, g Graph, objectID string) []*Monitor {
	monitors := make([]*Monitor, len(templates))
	for i, t := range templates {
		monitors[i] = t.Factory.NewMonitor(g, objectID)
	}
	return monitors
}

// ValidateTemplates rejects empty or duplicate names and nil factories.
func ValidateTemplates(templates []Template) error {
	seen := make(map[string]bool, len(templates))
	for i, t := range templates {
		if t.Name == "" {
			return fmt.Errorf("template %d has no name", i)
		}
		if t.Factory == nil {
			return fmt.Errorf("template %q has no factory", t.Name)
		}
		if seen[t.Name] {
			return fmt.Errorf("duplicate template name %q", t.Name)
		}
		seen[t.Name] = true
	}
	return nil
}
