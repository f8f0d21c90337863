package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestClassifyLabValue(t *testing.T) {
	cases := []struct {
		name     string
		value    string
		min, max *decimal.Decimal
		want     *LabStatus
	}{
		{"within range", "14.2", dec("13.5"), dec("17.5"), labStatusPtr(LabStatusNormal)},
		{"below range", "12.9", dec("13.5"), dec("17.5"), labStatusPtr(LabStatusLow)},
		{"above range", "18.1", dec("13.5"), dec("17.5"), labStatusPtr(LabStatusHigh)},
		{"exactly at min is normal", "13.5", dec("13.5"), dec("17.5"), labStatusPtr(LabStatusNormal)},
		{"exactly at max is normal", "17.5", dec("13.5"), dec("17.5"), labStatusPtr(LabStatusNormal)},
		{"only min, above it", "20", dec("13.5"), nil, labStatusPtr(LabStatusNormal)},
		{"only max, below it", "5", nil, dec("17.5"), labStatusPtr(LabStatusNormal)},
		{"no range", "10", nil, nil, nil},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := ClassifyLabValue(decimal.RequireFromString(c.value), c.min, c.max)
			if (got == nil) != (c.want == nil) {
				t.Fatalf("expected %v, got %v", c.want, got)
			}
			if got != nil && *got != *c.want {
				t.Errorf("expected %s, got %s", *c.want, *got)
			}
		})
	}
}

func labStatusPtr(s LabStatus) *LabStatus {
	return &s
}

func TestValidLabStatus(t *testing.T) {
	for _, valid := range []string{"normal", "high", "low"} {
		if !ValidLabStatus(valid) {
			t.Errorf("expected %q to be valid", valid)
		}
	}
	for _, invalid := range []string{"", "critical", "HIGH", "borderline"} {
		if ValidLabStatus(invalid) {
			t.Errorf("expected %q to be invalid", invalid)
		}
	}
}
