package domain

import "time"

// SymptomEntry is a user-logged symptom occurrence.
type SymptomEntry struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	SymptomType     string    `json:"symptom_type"`
	Severity        int       `json:"severity"` // 0-10
	DurationMinutes *int      `json:"duration_minutes,omitempty"`
	Triggers        *string   `json:"triggers,omitempty"`
	Notes           *string   `json:"notes,omitempty"`
	RecordedAt      time.Time `json:"recorded_at"`
	CreatedAt       time.Time `json:"created_at"`
}

// NewSymptomEntry creates a symptom entry recorded at the given time.
func NewSymptomEntry(userID, symptomType string, severity int, recordedAt time.Time) *SymptomEntry {
	return &SymptomEntry{
		ID:          GenerateID(),
		UserID:      userID,
		SymptomType: symptomType,
		Severity:    severity,
		RecordedAt:  recordedAt,
		CreatedAt:   time.Now().UTC(),
	}
}

// Validate checks the entry's fields.
func (s *SymptomEntry) Validate() error {
	if s.SymptomType == "" {
		return ErrInvalidInput
	}
	if s.Severity < 0 || s.Severity > 10 {
		return ErrInvalidInput
	}
	return nil
}
