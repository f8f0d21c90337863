package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LabStatus is the qualitative classification of a lab value against its
// reference range
type LabStatus string

const (
	LabStatusNormal LabStatus = "normal"
	LabStatusHigh   LabStatus = "high"
	LabStatusLow    LabStatus = "low"
)

// ValidLabStatus reports whether s is one of the known classifications.
func ValidLabStatus(s string) bool {
	switch LabStatus(s) {
	case LabStatusNormal, LabStatusHigh, LabStatusLow:
		return true
	}
	return false
}

// LabResult is a single structured measurement, either extracted from a
// document or entered manually (DocumentID nil).
type LabResult struct {
	ID           string           `json:"id"`
	DocumentID   *string          `json:"document_id,omitempty"`
	UserID       string           `json:"user_id"`
	TestName     string           `json:"test_name"`
	TestCode     *string          `json:"test_code,omitempty"`
	Value        decimal.Decimal  `json:"value"`
	Unit         string           `json:"unit"`
	ReferenceMin *decimal.Decimal `json:"reference_min,omitempty"`
	ReferenceMax *decimal.Decimal `json:"reference_max,omitempty"`
	Status       *LabStatus       `json:"status,omitempty"`
	RecordedAt   time.Time        `json:"recorded_at"`
	CreatedAt    time.Time        `json:"created_at"`
}

// ClassifyLabValue derives a qualitative status from the value and its
// reference range. Values exactly at either bound are normal. Returns nil
// when no range is known.
func ClassifyLabValue(value decimal.Decimal, refMin, refMax *decimal.Decimal) *LabStatus {
	if refMin == nil && refMax == nil {
		return nil
	}
	status := LabStatusNormal
	if refMin != nil && value.LessThan(*refMin) {
		status = LabStatusLow
	}
	if refMax != nil && value.GreaterThan(*refMax) {
		status = LabStatusHigh
	}
	return &status
}
