package models

import "time"

// Quiz types
const (
	QuizTypeMultipleChoice = "Multiple Choice"
	QuizTypeTrueFalse      = "True/False"
	QuizTypeMixed          = "Mixed"
)

// Question types
const (
	QuestionMultipleChoice = "multiple_choice"
	QuestionTrueFalse      = "true_false"
)

// Quiz sources
const (
	GeneratedByAI       = "ai"
	GeneratedByTemplate = "template"
)

// Question is a quiz question
type Question struct {
	Question      string   `json:"question"`
	Type          string   `json:"type"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

// Quiz is a generated quiz
type Quiz struct {
	ID           string     `json:"id"`
	UserID       string     `json:"userId"`
	Topic        string     `json:"topic"`
	Difficulty   string     `json:"difficulty"`
	QuizType     string     `json:"quizType"`
	NumQuestions int        `json:"numQuestions"`
	Questions    []Question `json:"questions"`
	GeneratedBy  string     `json:"generatedBy"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// GenerateQuizRequest asks for a new quiz
type GenerateQuizRequest struct {
	Topic        string `json:"topic" validate:"notblank,max=200"`
	Difficulty   string `json:"difficulty" validate:"required,oneof=Beginner Intermediate Advanced"`
	NumQuestions int    `json:"numQuestions" validate:"min=1,max=20"`
	QuizType     string `json:"quizType" validate:"required,oneof='Multiple Choice' True/False Mixed"`
}

// AdaptiveQuizRequest asks for a quiz whose difficulty follows past results
type AdaptiveQuizRequest struct {
	Topic string `json:"topic" validate:"notblank,max=200"`
}

// SubmitQuizRequest carries answers keyed by question index
type SubmitQuizRequest struct {
	Answers map[int]string `json:"answers" validate:"required"`
}

// Score is the outcome of grading a quiz
type Score struct {
	Correct    int     `json:"correct"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

// QuestionFeedback explains the grading of a single question
type QuestionFeedback struct {
	Index         int    `json:"index"`
	Question      string `json:"question"`
	UserAnswer    string `json:"userAnswer"`
	CorrectAnswer string `json:"correctAnswer"`
	IsCorrect     bool   `json:"isCorrect"`
	Explanation   string `json:"explanation"`
}

// QuizResult is a persisted quiz attempt
type QuizResult struct {
	ID              string         `json:"id"`
	UserID          string         `json:"userId"`
	QuizID          string         `json:"quizId"`
	Topic           string         `json:"topic"`
	Difficulty      string         `json:"difficulty"`
	ScorePercentage float64        `json:"scorePercentage"`
	CorrectAnswers  int            `json:"correctAnswers"`
	TotalQuestions  int            `json:"totalQuestions"`
	UserAnswers     map[int]string `json:"userAnswers"`
	CompletedAt     time.Time      `json:"completedAt"`
}

// SubmitQuizResponse is returned after grading
type SubmitQuizResponse struct {
	Result          *QuizResult        `json:"result"`
	Score           Score              `json:"score"`
	Feedback        []QuestionFeedback `json:"feedback"`
	NewAchievements []string           `json:"newAchievements"`
}

// Improvement trends
const (
	TrendInsufficientData = "insufficient_data"
	TrendImproving        = "improving"
	TrendDeclining        = "declining"
	TrendStable           = "stable"
)

// TopicPerformance aggregates scores of one topic
type TopicPerformance struct {
	Scores  []float64 `json:"scores"`
	Count   int       `json:"count"`
	Average float64   `json:"average"`
}

// QuizAnalytics summarizes a user's quiz history
type QuizAnalytics struct {
	TotalQuizzesTaken int                          `json:"totalQuizzesTaken"`
	AverageScore      float64                      `json:"averageScore"`
	BestScore         float64                      `json:"bestScore"`
	RecentPerformance []float64                    `json:"recentPerformance"`
	TopicPerformance  map[string]*TopicPerformance `json:"topicPerformance"`
	ImprovementTrend  string                       `json:"improvementTrend"`
}
