package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/edulearn/platform/libs/metrics"
	"github.com/edulearn/platform/services/learn-service/internal/llm"
	"github.com/edulearn/platform/services/learn-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type quizFixture struct {
	service  *quizService
	quizzes  *mockQuizRepository
	results  *mockQuizResultRepository
	progress *mockQuizProgress
}

func newQuizFixture(provider llm.Provider) *quizFixture {
	f := &quizFixture{
		quizzes:  newMockQuizRepository(),
		results:  &mockQuizResultRepository{},
		progress: &mockQuizProgress{},
	}
	f.service = NewQuizService(f.quizzes, f.results, f.progress, provider, metrics.NewMetrics(), zap.NewNop())
	f.service.now = func() time.Time { return fixedNow }
	return f
}

func questionTypes(questions []models.Question) []string {
	types := make([]string, 0, len(questions))
	for _, q := range questions {
		types = append(types, q.Type)
	}
	return types
}

func TestQuizService_GenerateQuiz_Templates(t *testing.T) {
	mc, tf := models.QuestionMultipleChoice, models.QuestionTrueFalse

	tests := []struct {
		name          string
		req           models.GenerateQuizRequest
		expectedTypes []string
		errorContains string
	}{
		{
			name:          "multiple choice falls back to true/false without options",
			req:           models.GenerateQuizRequest{Topic: "Python basics", Difficulty: "Beginner", NumQuestions: 4, QuizType: models.QuizTypeMultipleChoice},
			expectedTypes: []string{mc, mc, tf, tf},
		},
		{
			name:          "true/false",
			req:           models.GenerateQuizRequest{Topic: "python", Difficulty: "Beginner", NumQuestions: 2, QuizType: models.QuizTypeTrueFalse},
			expectedTypes: []string{tf, tf},
		},
		{
			name:          "mixed alternates starting with true/false",
			req:           models.GenerateQuizRequest{Topic: "Machine Learning", Difficulty: "Intermediate", NumQuestions: 3, QuizType: models.QuizTypeMixed},
			expectedTypes: []string{tf, mc, tf},
		},
		{
			name:          "question count is capped by the bank",
			req:           models.GenerateQuizRequest{Topic: "python", Difficulty: "Beginner", NumQuestions: 20, QuizType: models.QuizTypeMultipleChoice},
			expectedTypes: []string{mc, mc, tf, tf},
		},
		{
			name:          "unknown topic uses the default question",
			req:           models.GenerateQuizRequest{Topic: "Cooking", Difficulty: "Advanced", NumQuestions: 5, QuizType: models.QuizTypeMultipleChoice},
			expectedTypes: []string{mc},
		},
		{
			name:          "blank topic",
			req:           models.GenerateQuizRequest{Topic: "  ", Difficulty: "Beginner", NumQuestions: 5, QuizType: models.QuizTypeMixed},
			errorContains: "topic is required",
		},
		{
			name:          "too many questions",
			req:           models.GenerateQuizRequest{Topic: "python", Difficulty: "Beginner", NumQuestions: 21, QuizType: models.QuizTypeMixed},
			errorContains: "between 1 and 20",
		},
		{
			name:          "unknown difficulty",
			req:           models.GenerateQuizRequest{Topic: "python", Difficulty: "Expert", NumQuestions: 5, QuizType: models.QuizTypeMixed},
			errorContains: "invalid difficulty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newQuizFixture(nil)

			quiz, err := f.service.GenerateQuiz(context.Background(), "u-1", tt.req)
			if tt.errorContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
				assert.Empty(t, f.quizzes.quizzes)
				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, quiz.ID)
			assert.Equal(t, "u-1", quiz.UserID)
			assert.Equal(t, models.GeneratedByTemplate, quiz.GeneratedBy)
			assert.Equal(t, tt.expectedTypes, questionTypes(quiz.Questions))
			assert.Equal(t, len(quiz.Questions), quiz.NumQuestions)
			assert.Contains(t, f.quizzes.quizzes, quiz.ID)

			for _, q := range quiz.Questions {
				assert.Contains(t, q.Options, q.CorrectAnswer)
				if q.Type == models.QuestionTrueFalse {
					assert.Equal(t, []string{"True", "False"}, q.Options)
				}
			}
		})
	}
}

func TestQuizService_DefaultQuestionText(t *testing.T) {
	f := newQuizFixture(nil)

	quiz, err := f.service.PreviewQuiz(context.Background(), models.GenerateQuizRequest{
		Topic: "Cooking", Difficulty: "Advanced", NumQuestions: 3, QuizType: models.QuizTypeMultipleChoice,
	})
	require.NoError(t, err)
	require.Len(t, quiz.Questions, 1)
	assert.Equal(t, "This is a advanced level question about cooking.", quiz.Questions[0].Question)
	assert.Empty(t, quiz.ID)
	assert.Empty(t, f.quizzes.quizzes)
}

func TestQuizService_GenerateQuiz_Provider(t *testing.T) {
	valid := json.RawMessage(`{"questions":[
		{"question":"What does len return?","type":"multiple_choice","options":["Size","Type","Id","Hash"],"correctAnswer":"Size","explanation":"len returns the length."},
		{"question":"Tuples are mutable.","type":"true_false","options":["True","False"],"correctAnswer":"False","explanation":"Tuples are immutable."},
		{"question":"Broken","type":"multiple_choice","options":["A","B"],"correctAnswer":"C","explanation":"Answer is not an option."}
	]}`)

	tests := []struct {
		name           string
		response       llm.MockResponse
		expectedSource string
		expectedCount  int
	}{
		{
			name:           "provider questions are used",
			response:       llm.MockResponse{Content: valid},
			expectedSource: models.GeneratedByAI,
			expectedCount:  2,
		},
		{
			name:           "provider error falls back to templates",
			response:       llm.MockResponse{Err: &llm.ErrRateLimit{Err: errors.New("429")}},
			expectedSource: models.GeneratedByTemplate,
			expectedCount:  4,
		},
		{
			name:           "schema violation falls back to templates",
			response:       llm.MockResponse{Content: json.RawMessage(`{"questions":[{"question":"x"}]}`)},
			expectedSource: models.GeneratedByTemplate,
			expectedCount:  4,
		},
		{
			name:           "no usable questions falls back to templates",
			response:       llm.MockResponse{Content: json.RawMessage(`{"questions":[]}`)},
			expectedSource: models.GeneratedByTemplate,
			expectedCount:  4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := llm.NewMockProvider(tt.response)
			f := newQuizFixture(provider)

			quiz, err := f.service.GenerateQuiz(context.Background(), "u-1", models.GenerateQuizRequest{
				Topic: "Python", Difficulty: "Beginner", NumQuestions: 5, QuizType: models.QuizTypeMixed,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.expectedSource, quiz.GeneratedBy)
			assert.Len(t, quiz.Questions, tt.expectedCount)

			require.Equal(t, 1, provider.CallCount())
			call := provider.Calls[0]
			assert.Contains(t, call.Prompt, `"Python"`)
			assert.Equal(t, "quiz_questions", call.Schema.Name)
		})
	}
}

func TestCalculateScore(t *testing.T) {
	quiz := &models.Quiz{Questions: []models.Question{
		{CorrectAnswer: "A"},
		{CorrectAnswer: "True"},
		{CorrectAnswer: "def"},
	}}

	tests := []struct {
		name     string
		quiz     *models.Quiz
		answers  map[int]string
		expected models.Score
	}{
		{
			name:     "two of three",
			quiz:     quiz,
			answers:  map[int]string{0: "A", 1: "True", 2: "func"},
			expected: models.Score{Correct: 2, Total: 3, Percentage: 66.7},
		},
		{
			name:     "answers are compared exactly",
			quiz:     quiz,
			answers:  map[int]string{0: "a", 1: " True ", 2: "def"},
			expected: models.Score{Correct: 1, Total: 3, Percentage: 33.3},
		},
		{
			name:     "missing answers count as wrong",
			quiz:     quiz,
			answers:  map[int]string{2: "def"},
			expected: models.Score{Correct: 1, Total: 3, Percentage: 33.3},
		},
		{
			name:     "empty quiz",
			quiz:     &models.Quiz{},
			answers:  map[int]string{0: "A"},
			expected: models.Score{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CalculateScore(tt.quiz, tt.answers))
		})
	}
}

func TestQuizService_SubmitQuiz(t *testing.T) {
	f := newQuizFixture(nil)
	f.progress.awarded = []string{models.AchievementQuizMaster}
	ctx := context.Background()

	quiz, err := f.service.GenerateQuiz(ctx, "u-1", models.GenerateQuizRequest{
		Topic: "python", Difficulty: "Beginner", NumQuestions: 2, QuizType: models.QuizTypeTrueFalse,
	})
	require.NoError(t, err)

	resp, err := f.service.SubmitQuiz(ctx, "u-1", quiz.ID, map[int]string{0: "True", 1: "False"})
	require.NoError(t, err)

	assert.Equal(t, models.Score{Correct: 1, Total: 2, Percentage: 50}, resp.Score)
	assert.Equal(t, []string{models.AchievementQuizMaster}, resp.NewAchievements)
	require.Len(t, resp.Feedback, 2)
	assert.True(t, resp.Feedback[0].IsCorrect)
	assert.False(t, resp.Feedback[1].IsCorrect)
	assert.Equal(t, "False", resp.Feedback[1].UserAnswer)

	require.Len(t, f.results.results, 1)
	stored := f.results.results[0]
	assert.Equal(t, quiz.ID, stored.QuizID)
	assert.Equal(t, "python", stored.Topic)
	assert.Equal(t, 50.0, stored.ScorePercentage)
	assert.Equal(t, fixedNow, stored.CompletedAt)
	assert.Equal(t, []float64{50}, f.progress.scores)
}

func TestQuizService_SubmitQuiz_Errors(t *testing.T) {
	f := newQuizFixture(nil)
	ctx := context.Background()

	_, err := f.service.SubmitQuiz(ctx, "u-1", "missing", map[int]string{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quiz not found")

	quiz, err := f.service.GenerateQuiz(ctx, "owner", models.GenerateQuizRequest{
		Topic: "python", Difficulty: "Beginner", NumQuestions: 1, QuizType: models.QuizTypeTrueFalse,
	})
	require.NoError(t, err)

	_, err = f.service.SubmitQuiz(ctx, "intruder", quiz.ID, map[int]string{0: "True"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quiz not found")
	assert.Empty(t, f.results.results)
}

func TestQuizAnalytics(t *testing.T) {
	result := func(topic string, score float64) models.QuizResult {
		return models.QuizResult{UserID: "u-1", Topic: topic, ScorePercentage: score}
	}

	tests := []struct {
		name           string
		results        []models.QuizResult
		expectedTrend  string
		expectedAvg    float64
		expectedBest   float64
		expectedRecent []float64
	}{
		{
			name:           "no results",
			expectedTrend:  models.TrendInsufficientData,
			expectedRecent: []float64{},
		},
		{
			name:           "two results",
			results:        []models.QuizResult{result("python", 50), result("python", 70)},
			expectedTrend:  models.TrendInsufficientData,
			expectedAvg:    60,
			expectedBest:   70,
			expectedRecent: []float64{50, 70},
		},
		{
			name: "improving",
			results: []models.QuizResult{
				result("python", 40), result("python", 50), result("math", 60),
				result("math", 70), result("python", 80), result("python", 90),
			},
			expectedTrend:  models.TrendImproving,
			expectedAvg:    65,
			expectedBest:   90,
			expectedRecent: []float64{50, 60, 70, 80, 90},
		},
		{
			name:           "declining",
			results:        []models.QuizResult{result("python", 90), result("python", 80), result("python", 70), result("python", 60)},
			expectedTrend:  models.TrendDeclining,
			expectedAvg:    75,
			expectedBest:   90,
			expectedRecent: []float64{90, 80, 70, 60},
		},
		{
			name:           "stable",
			results:        []models.QuizResult{result("python", 70), result("python", 72), result("python", 68)},
			expectedTrend:  models.TrendStable,
			expectedAvg:    70,
			expectedBest:   72,
			expectedRecent: []float64{70, 72, 68},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analytics := quizAnalytics(tt.results)
			assert.Equal(t, len(tt.results), analytics.TotalQuizzesTaken)
			assert.Equal(t, tt.expectedTrend, analytics.ImprovementTrend)
			assert.Equal(t, tt.expectedAvg, analytics.AverageScore)
			assert.Equal(t, tt.expectedBest, analytics.BestScore)
			assert.Equal(t, tt.expectedRecent, analytics.RecentPerformance)
		})
	}
}

func TestQuizAnalytics_TopicPerformance(t *testing.T) {
	analytics := quizAnalytics([]models.QuizResult{
		{Topic: "python", ScorePercentage: 80},
		{Topic: "math", ScorePercentage: 50},
		{Topic: "python", ScorePercentage: 65},
	})

	require.Contains(t, analytics.TopicPerformance, "python")
	assert.Equal(t, &models.TopicPerformance{Scores: []float64{80, 65}, Count: 2, Average: 72.5}, analytics.TopicPerformance["python"])
	assert.Equal(t, 1, analytics.TopicPerformance["math"].Count)
	assert.Equal(t, 65.0, analytics.AverageScore)
}

func TestQuizService_GenerateAdaptiveQuiz(t *testing.T) {
	tests := []struct {
		name               string
		scores             map[string]float64
		expectedDifficulty string
	}{
		{name: "no history", expectedDifficulty: models.DifficultyBeginner},
		{name: "strong results", scores: map[string]float64{"Python Basics": 85, "python loops": 90}, expectedDifficulty: models.DifficultyAdvanced},
		{name: "medium results", scores: map[string]float64{"PYTHON": 60}, expectedDifficulty: models.DifficultyIntermediate},
		{name: "weak results", scores: map[string]float64{"python": 40}, expectedDifficulty: models.DifficultyBeginner},
		{name: "other topics ignored", scores: map[string]float64{"math": 95}, expectedDifficulty: models.DifficultyBeginner},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newQuizFixture(nil)
			for topic, score := range tt.scores {
				f.results.results = append(f.results.results, models.QuizResult{UserID: "u-1", Topic: topic, ScorePercentage: score})
			}

			quiz, err := f.service.GenerateAdaptiveQuiz(context.Background(), "u-1", "Python")
			require.NoError(t, err)
			assert.Equal(t, tt.expectedDifficulty, quiz.Difficulty)
			assert.Equal(t, models.QuizTypeMixed, quiz.QuizType)
		})
	}
}
