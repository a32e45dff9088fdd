package services

import (
	"context"
	"encoding/json"
	"testing"

	"gemdash/internal/ledger"
	"gemdash/internal/ledger/memory"
)

type staticTabs map[string][]string

func (s staticTabs) ModuleTabs(module string) []string { return s[module] }

type seedTab struct {
	kind    ledger.Kind
	module  string
	tab     string
	records []map[string]any
}

// newReader builds a reader over a memory store with records JSON-encoded
// under the current key of each (kind, module, tab).
func newReader(t *testing.T, tabs ...seedTab) *ledger.Reader {
	t.Helper()
	return newRawReader(t, nil, tabs...)
}

// newRawReader is newReader plus payloads stored verbatim by key, for tabs
// whose content is not valid record JSON.
func newRawReader(t *testing.T, raw map[string]string, tabs ...seedTab) *ledger.Reader {
	t.Helper()
	items := map[string]string{}
	for _, s := range tabs {
		b, err := json.Marshal(s.records)
		if err != nil {
			t.Fatalf("marshal seed: %v", err)
		}
		items[ledger.Key(s.kind, s.module, s.tab)] = string(b)
	}
	for key, value := range raw {
		items[key] = value
	}
	return ledger.NewReader(memory.New(items), nil)
}

var ctx = context.Background()
