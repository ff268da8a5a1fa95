package types

import (
	"time"

	"github.com/google/uuid"
)

// TestSeries is a creator-owned exam. Every mutating operation must verify
// CreatedBy and CreatedByModel against the acting identity.
type TestSeries struct {
	ID              uuid.UUID  `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Subject         string     `json:"subject"`
	DurationMinutes int        `json:"duration_minutes"`
	Price           float64    `json:"price"`
	CreatedBy       uuid.UUID  `json:"created_by"`
	CreatedByModel  Role       `json:"created_by_model"`
	Questions       []Question `json:"questions,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type Question struct {
	ID            uuid.UUID `json:"id"`
	TestSeriesID  uuid.UUID `json:"test_series_id"`
	QuestionText  string    `json:"question_text"`
	Options       []string  `json:"options"`
	CorrectAnswer string    `json:"correct_answer"`
	Explanation   string    `json:"explanation,omitempty"`
	Marks         int       `json:"marks"`
	NegativeMarks int       `json:"negative_marks"`
	CreatedAt     time.Time `json:"created_at"`
}

// CreateTestSeriesParams is the validated input for creating a series.
type CreateTestSeriesParams struct {
	Title           string
	Description     string
	Subject         string
	DurationMinutes int
	Price           float64
}

// AddQuestionParams is the validated input for attaching a question.
type AddQuestionParams struct {
	QuestionText  string
	Options       []string
	CorrectAnswer string
	Explanation   string
	Marks         int
	NegativeMarks int
}
