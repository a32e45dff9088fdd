package services

import (
	"testing"
	"time"

	"gemdash/internal/core"

	"github.com/shopspring/decimal"
)

func TestClassify(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
	threshold := ThresholdPolicy{Limit: decimal.NewFromInt(DefaultOverdueThreshold)}
	due := func(y, m, d int) []core.LedgerRecord {
		return []core.LedgerRecord{{DueDate: core.NewDate(y, m, d)}}
	}

	tests := []struct {
		name        string
		policy      OverduePolicy
		outstanding int64
		records     []core.LedgerRecord
		want        core.ClearingStatus
	}{
		{"zero balance is cleared", threshold, 0, nil, core.Cleared},
		{"overpaid is cleared", threshold, -50, nil, core.Cleared},
		{"below threshold is pending", threshold, 100_000, nil, core.Pending},
		{"at threshold is pending", threshold, 5_000_000, nil, core.Pending},
		{"above threshold is overdue", threshold, 6_000_000, nil, core.Overdue},
		{"past due date is overdue", DueDatePolicy{}, 10, due(2024, 3, 9), core.Overdue},
		{"due today is pending", DueDatePolicy{}, 10, due(2024, 3, 10), core.Pending},
		{"future due date is pending", DueDatePolicy{}, 10, due(2024, 4, 1), core.Pending},
		{"no due date is pending", DueDatePolicy{}, 10, []core.LedgerRecord{{}}, core.Pending},
		{"past due but settled is cleared", DueDatePolicy{}, 0, due(2020, 1, 1), core.Cleared},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.policy, decimal.NewFromInt(tt.outstanding), tt.records, now)
			if got != tt.want {
				t.Errorf("Classify() = %s, want %s", got, tt.want)
			}
		})
	}
}
