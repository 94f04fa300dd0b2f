package thinking

import "testing"

func TestConvertLevelToBudget(t *testing.T) {
	cases := []struct {
		level  string
		budget int
		ok     bool
	}{
		{"none", 0, true},
		{"auto", -1, true},
		{"minimal", 512, true},
		{"low", 1024, true},
		{"medium", 8192, true},
		{"HIGH", 24576, true},
		{"xhigh", 32768, true},
		{"frantic", 0, false},
	}
	for _, c := range cases {
		budget, ok := ConvertLevelToBudget(c.level)
		if ok != c.ok || (ok && budget != c.budget) {
			t.Errorf("ConvertLevelToBudget(%q) = (%d, %v), want (%d, %v)", c.level, budget, ok, c.budget, c.ok)
		}
	}
}

func TestConvertBudgetToLevel(t *testing.T) {
	cases := []struct {
		budget int
		level  string
		ok     bool
	}{
		{-2, "", false},
		{-1, "auto", true},
		{0, "none", true},
		{1, "minimal", true},
		{512, "minimal", true},
		{513, "low", true},
		{1024, "low", true},
		{1025, "medium", true},
		{8192, "medium", true},
		{8193, "high", true},
		{24576, "high", true},
		{24577, "xhigh", true},
		{1 << 20, "xhigh", true},
	}
	for _, c := range cases {
		level, ok := ConvertBudgetToLevel(c.budget)
		if ok != c.ok || level != c.level {
			t.Errorf("ConvertBudgetToLevel(%d) = (%q, %v), want (%q, %v)", c.budget, level, ok, c.level, c.ok)
		}
	}
}

func TestLevelBudgetRoundTrip(t *testing.T) {
	for level := range levelToBudgetMap {
		budget, _ := ConvertLevelToBudget(level)
		back, ok := ConvertBudgetToLevel(budget)
		if !ok || back != level {
			t.Errorf("round trip %q -> %d -> %q (ok=%v)", level, budget, back, ok)
		}
	}
}
