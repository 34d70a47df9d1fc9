package model

import (
	"encoding/json"
	"testing"
)

func TestCategoryDistributionKeepsKeyOrder(t *testing.T) {
	in := []byte(`{"dns":4,"security":3,"networking":2}`)

	var d CategoryDistribution
	if err := json.Unmarshal(in, &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	want := CategoryDistribution{
		{Category: "dns", Count: 4},
		{Category: "security", Count: 3},
		{Category: "networking", Count: 2},
	}
	if len(d) != len(want) {
		t.Fatalf("got %d quotas, want %d", len(d), len(want))
	}
	for i := range want {
		if d[i] != want[i] {
			t.Errorf("quota %d: got %+v, want %+v", i, d[i], want[i])
		}
	}

	out, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != string(in) {
		t.Errorf("round trip changed the object: got %s, want %s", out, in)
	}
}

func TestCategoryDistributionNull(t *testing.T) {
	var d CategoryDistribution
	if err := json.Unmarshal([]byte(`null`), &d); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if d != nil {
		t.Errorf("null should decode to nil, got %+v", d)
	}
	if d.Total() != 0 || d.Count("dns") != 0 {
		t.Error("empty distribution must report zero quotas")
	}
}

func TestCategoryDistributionRejectsBadValues(t *testing.T) {
	for _, in := range []string{
		`[1,2,3]`,
		`{"dns":"four"}`,
		`{"dns":1.5}`,
		`"dns"`,
	} {
		var d CategoryDistribution
		if err := json.Unmarshal([]byte(in), &d); err == nil {
			t.Errorf("unmarshal %s: expected error, got %+v", in, d)
		}
	}
}

func TestCategoryDistributionLookups(t *testing.T) {
	d := CategoryDistribution{
		{Category: "dns", Count: 4},
		{Category: "security", Count: 3},
	}
	if got := d.Count("security"); got != 3 {
		t.Errorf("Count(security) = %d, want 3", got)
	}
	if got := d.Count("storage"); got != 0 {
		t.Errorf("Count(storage) = %d, want 0", got)
	}
	if got := d.Total(); got != 7 {
		t.Errorf("Total() = %d, want 7", got)
	}
}

func TestDefaultExamConfig(t *testing.T) {
	cfg := DefaultExamConfig()
	if cfg.TotalQuestions != 18 || cfg.FreeTextCount != 3 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if len(cfg.CategoryDistribution) != 0 {
		t.Errorf("defaults must not pin categories: %+v", cfg.CategoryDistribution)
	}
}
