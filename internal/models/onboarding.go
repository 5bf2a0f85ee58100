package models

import "time"

type QuestionCategory string

const (
	CategoryValues            QuestionCategory = "VALUES"
	CategoryLifestyle         QuestionCategory = "LIFESTYLE"
	CategoryRelationshipGoals QuestionCategory = "RELATIONSHIP_GOALS"
	CategoryCommunication     QuestionCategory = "COMMUNICATION"
	CategoryBehaviorScenario  QuestionCategory = "BEHAVIOR_SCENARIO"
	CategoryBoundaries        QuestionCategory = "BOUNDARIES"
	CategoryCommitment        QuestionCategory = "COMMITMENT"
)

func (c QuestionCategory) Valid() bool {
	switch c {
	case CategoryValues, CategoryLifestyle, CategoryRelationshipGoals, CategoryCommunication,
		CategoryBehaviorScenario, CategoryBoundaries, CategoryCommitment:
		return true
	}
	return false
}

type OnboardingQuestion struct {
	ID           string           `json:"id"`
	Category     QuestionCategory `json:"category"`
	QuestionText string           `json:"question_text"`
	Order        int              `json:"order"`
	IsActive     bool             `json:"is_active"`
}

// OnboardingAnswer stores the latest answer a user gave to a question
type OnboardingAnswer struct {
	UserID        string    `json:"user_id"`
	QuestionID    string    `json:"question_id"`
	Answer        string    `json:"answer"`
	FollowUpCount int       `json:"follow_up_count"`
	Confidence    float64   `json:"confidence"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type OnboardingProgress struct {
	TotalQuestions    int  `json:"total_questions"`
	AnsweredQuestions int  `json:"answered_questions"`
	Progress          int  `json:"progress"`
	IsComplete        bool `json:"is_complete"`
}
