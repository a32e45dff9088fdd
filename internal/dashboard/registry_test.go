package dashboard

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultRegistry(t *testing.T) {
	reg, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	if len(reg.Configs()) == 0 {
		t.Fatal("built-in registry has no dashboards")
	}
	for _, cfg := range reg.Configs() {
		if _, ok := reg.Module(cfg.Module); !ok {
			t.Errorf("%s references unknown module %s", cfg.ID, cfg.Module)
		}
		if len(cfg.Cards) == 0 {
			t.Errorf("%s has no cards", cfg.ID)
		}
	}
	if len(reg.Receivables.CustomerTabs) == 0 || len(reg.Receivables.SalesTabs) == 0 {
		t.Errorf("receivables layout is empty: %+v", reg.Receivables)
	}
}

func TestRegistryLookup(t *testing.T) {
	reg, err := Default()
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		module string
		tab    string
		want   string
	}{
		{"exact tab name", "sl", "SL Dashboard", "sl-dashboard"},
		{"normalized tab name", "sl", "SL_Dashboard", "sl-dashboard"},
		{"wrong module", "tz", "SL Dashboard", ""},
		{"unknown tab", "sl", "Nope", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, ok := reg.Lookup(tt.module, tt.tab)
			if ok != (tt.want != "") || cfg.ID != tt.want {
				t.Errorf("Lookup(%q, %q) = %q, %v; want %q", tt.module, tt.tab, cfg.ID, ok, tt.want)
			}
		})
	}
}

func TestRegistryModuleOf(t *testing.T) {
	reg, err := Default()
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		id   string
		want string
	}{
		{"tz/Some Tab", "tz"},
		{"bkk", "bkk"},
		{"office-summary", "office"},
		{"mars/Tab", ""},
		{"nothing", ""},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			m, ok := reg.ModuleOf(tt.id)
			if ok != (tt.want != "") || m.ID != tt.want {
				t.Errorf("ModuleOf(%q) = %q, %v; want %q", tt.id, m.ID, ok, tt.want)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "invalid yaml",
			yaml:    "modules: [",
			wantErr: "parse dashboard registry",
		},
		{
			name: "unknown recipe",
			yaml: `
modules: [{id: m}]
dashboards: [{id: d, module: m, recipe: magic}]`,
			wantErr: `unknown recipe "magic"`,
		},
		{
			name: "unknown module",
			yaml: `
modules: [{id: m}]
dashboards: [{id: d, module: x, recipe: expenses}]`,
			wantErr: `unknown module "x"`,
		},
		{
			name: "duplicate ids",
			yaml: `
modules: [{id: m}, {id: m}]
dashboards: [{id: d, module: m, recipe: expenses}, {id: d, module: m, recipe: inventory}]`,
			wantErr: "duplicate id",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Parse() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dashboards.yaml")
	data := `
modules:
  - id: lab
    inventory: true
    tabs: [Bench]
    inventoryTabs: [Samples]
dashboards:
  - id: lab-dashboard
    module: lab
    tab: Lab Dashboard
    recipe: inventory
    cards: [{title: Profit, key: profit}]
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	reg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := reg.ModuleTabs("lab"); len(got) != 1 || got[0] != "Bench" {
		t.Errorf("ModuleTabs(lab) = %v", got)
	}
	if _, ok := reg.Config("sl-dashboard"); ok {
		t.Error("file registry should replace the built-in one")
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load() of a missing file should fail")
	}
}
