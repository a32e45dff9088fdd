// Package dashboard maps dashboard configurations to aggregation recipes and
// shapes their output for the presentation layer.
package dashboard

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gemdash/internal/ledger"
	"gemdash/internal/services"

	"gopkg.in/yaml.v3"
)

//go:embed dashboards.yaml
var builtinRegistry []byte

// Recipe names which aggregation a dashboard runs.
type Recipe string

const (
	RecipeExpenses    Recipe = "expenses"
	RecipeInventory   Recipe = "inventory"
	RecipeOverview    Recipe = "overview"
	RecipeOutstanding Recipe = "outstanding"
)

func (r Recipe) valid() bool {
	switch r {
	case RecipeExpenses, RecipeInventory, RecipeOverview, RecipeOutstanding:
		return true
	}
	return false
}

// Card is a KPI card descriptor. Key names the metric it displays.
type Card struct {
	Title    string `yaml:"title" json:"title"`
	Key      string `yaml:"key" json:"key"`
	Currency string `yaml:"currency,omitempty" json:"currency,omitempty"`
	Trend    string `yaml:"trend,omitempty" json:"trend,omitempty"`
}

// Module is a business unit and the tabs registered to it.
type Module struct {
	ID            string   `yaml:"id" json:"id"`
	Name          string   `yaml:"name" json:"name"`
	Inventory     bool     `yaml:"inventory" json:"inventory"`
	Tabs          []string `yaml:"tabs" json:"tabs"`
	InventoryTabs []string `yaml:"inventoryTabs" json:"inventoryTabs,omitempty"`
}

// Config is one dashboard. Tabs optionally narrows the inventory tabs the
// recipe reads; empty means the module's inventory tabs.
type Config struct {
	ID      string   `yaml:"id" json:"id"`
	Module  string   `yaml:"module" json:"module"`
	Tab     string   `yaml:"tab" json:"tab"`
	DataKey string   `yaml:"dataKey" json:"dataKey"`
	Theme   string   `yaml:"theme" json:"theme"`
	Recipe  Recipe   `yaml:"recipe" json:"recipe"`
	Tabs    []string `yaml:"tabs,omitempty" json:"tabs,omitempty"`
	Cards   []Card   `yaml:"cards" json:"cards"`
}

// Registry is the static dashboard configuration.
type Registry struct {
	Modules     []Module                   `yaml:"modules"`
	Receivables services.ReceivablesLayout `yaml:"receivables"`
	Dashboards  []Config                   `yaml:"dashboards"`

	modules  map[string]int
	configs  map[string]int
	byModTab map[string]int
}

// Default parses the built-in registry.
func Default() (*Registry, error) {
	return Parse(builtinRegistry)
}

// Load reads a registry file, or the built-in registry when path is empty.
func Load(path string) (*Registry, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dashboard registry: %w", err)
	}
	reg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return reg, nil
}

// Parse decodes and indexes a YAML registry. Every problem found is reported.
func Parse(data []byte) (*Registry, error) {
	var reg Registry
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse dashboard registry: %w", err)
	}
	if err := reg.index(); err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *Registry) index() error {
	r.modules = make(map[string]int, len(r.Modules))
	r.configs = make(map[string]int, len(r.Dashboards))
	r.byModTab = make(map[string]int, len(r.Dashboards))

	var errs []error
	for i, m := range r.Modules {
		if m.ID == "" {
			errs = append(errs, fmt.Errorf("module %d: missing id", i))
			continue
		}
		if _, dup := r.modules[m.ID]; dup {
			errs = append(errs, fmt.Errorf("module %q: duplicate id", m.ID))
			continue
		}
		r.modules[m.ID] = i
	}
	for i, c := range r.Dashboards {
		switch {
		case c.ID == "":
			errs = append(errs, fmt.Errorf("dashboard %d: missing id", i))
			continue
		case !c.Recipe.valid():
			errs = append(errs, fmt.Errorf("dashboard %q: unknown recipe %q", c.ID, c.Recipe))
		}
		if _, ok := r.modules[c.Module]; !ok {
			errs = append(errs, fmt.Errorf("dashboard %q: unknown module %q", c.ID, c.Module))
		}
		if _, dup := r.configs[c.ID]; dup {
			errs = append(errs, fmt.Errorf("dashboard %q: duplicate id", c.ID))
			continue
		}
		r.configs[c.ID] = i
		if c.Tab != "" {
			r.byModTab[modTabKey(c.Module, c.Tab)] = i
		}
	}
	return errors.Join(errs...)
}

func modTabKey(module, tab string) string {
	return module + "/" + ledger.NormalizeTab(tab)
}

// Config returns the dashboard registered under id.
func (r *Registry) Config(id string) (Config, bool) {
	i, ok := r.configs[id]
	if !ok {
		return Config{}, false
	}
	return r.Dashboards[i], true
}

// Lookup resolves the dashboard shown on a module's tab. Tab names compare
// after normalization, so "SL Dashboard" and "SL_Dashboard" match.
func (r *Registry) Lookup(module, tab string) (Config, bool) {
	i, ok := r.byModTab[modTabKey(module, tab)]
	if !ok {
		return Config{}, false
	}
	return r.Dashboards[i], true
}

// Module returns the module registered under id.
func (r *Registry) Module(id string) (Module, bool) {
	i, ok := r.modules[id]
	if !ok {
		return Module{}, false
	}
	return r.Modules[i], true
}

// ModuleTabs lists the tabs registered to module, nil when unknown.
func (r *Registry) ModuleTabs(module string) []string {
	m, ok := r.Module(module)
	if !ok {
		return nil
	}
	return m.Tabs
}

// Configs returns every dashboard in registry order.
func (r *Registry) Configs() []Config {
	return r.Dashboards
}

// ModuleOf guesses the module an unregistered dashboard id belongs to:
// "module/tab" ids and bare module ids resolve directly, and
// "<module>-dashboard" style ids resolve by their prefix.
func (r *Registry) ModuleOf(id string) (Module, bool) {
	if mod, _, found := strings.Cut(id, "/"); found {
		return r.Module(mod)
	}
	if m, ok := r.Module(id); ok {
		return m, true
	}
	if mod, _, found := strings.Cut(id, "-"); found {
		return r.Module(mod)
	}
	return Module{}, false
}
