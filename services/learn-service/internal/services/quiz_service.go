package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/edulearn/platform/libs/metrics"
	"github.com/edulearn/platform/services/learn-service/internal/catalog"
	"github.com/edulearn/platform/services/learn-service/internal/llm"
	"github.com/edulearn/platform/services/learn-service/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	maxQuizQuestions      = 20
	adaptiveQuizQuestions = 10
	recentPerformanceSize = 5
	trendWindow           = 3
	trendThreshold        = 5.0
	advancedScore         = 80.0
	intermediateScore     = 60.0
	quizMaxTokens         = 4096
)

// QuizRepository is the interface that wraps methods for quizzes table data access
type QuizRepository interface {
	// Create inserts a quiz with its questions
	//
	// "ctx" is the context for the request.
	// "quiz" is the quiz to insert.
	//
	// Returns an error if any.
	Create(ctx context.Context, quiz *models.Quiz) error
	// GetByID retrieves a quiz
	//
	// "ctx" is the context for the request.
	// "quizID" is the ID of the quiz.
	//
	// Returns the quiz or the "quiz not found" error.
	GetByID(ctx context.Context, quizID string) (*models.Quiz, error)
}

// QuizResultRepository is the interface that wraps methods for quiz_results table data access
type QuizResultRepository interface {
	// Create inserts a graded attempt
	Create(ctx context.Context, result *models.QuizResult) error
	// GetByUser returns the attempts of a user, oldest first
	GetByUser(ctx context.Context, userID string) ([]models.QuizResult, error)
}

// QuizProgressRecorder applies the progress side effects of a graded quiz
type QuizProgressRecorder interface {
	RecordQuizResult(ctx context.Context, userID string, scorePercentage float64) ([]string, error)
}

// quizService implements QuizService
type quizService struct {
	quizRepo   QuizRepository
	resultRepo QuizResultRepository
	progress   QuizProgressRecorder
	provider   llm.Provider
	metrics    *metrics.Metrics
	logger     *zap.Logger
	now        func() time.Time
}

// NewQuizService creates a new quiz service.
// A nil provider makes every quiz come from the template bank.
func NewQuizService(
	quizRepo QuizRepository,
	resultRepo QuizResultRepository,
	progress QuizProgressRecorder,
	provider llm.Provider,
	m *metrics.Metrics,
	logger *zap.Logger,
) *quizService {
	return &quizService{
		quizRepo:   quizRepo,
		resultRepo: resultRepo,
		progress:   progress,
		provider:   provider,
		metrics:    m,
		logger:     logger,
		now:        time.Now,
	}
}

// GenerateQuiz builds a quiz and stores it for the user
func (s *quizService) GenerateQuiz(ctx context.Context, userID string, req models.GenerateQuizRequest) (*models.Quiz, error) {
	quiz, err := s.PreviewQuiz(ctx, req)
	if err != nil {
		return nil, err
	}

	quiz.ID = uuid.NewString()
	quiz.UserID = userID
	if err := s.quizRepo.Create(ctx, quiz); err != nil {
		return nil, err
	}

	s.metrics.QuizzesGenerated.WithLabelValues(quiz.GeneratedBy).Inc()
	return quiz, nil
}

// PreviewQuiz builds a quiz without storing it.
// Provider failures fall back to the template bank.
func (s *quizService) PreviewQuiz(ctx context.Context, req models.GenerateQuizRequest) (*models.Quiz, error) {
	req.Topic = strings.TrimSpace(req.Topic)
	if err := validateQuizRequest(req); err != nil {
		return nil, err
	}

	quiz := &models.Quiz{
		Topic:      req.Topic,
		Difficulty: req.Difficulty,
		QuizType:   req.QuizType,
		CreatedAt:  s.now(),
	}

	if s.provider != nil {
		questions, err := s.generateWithProvider(ctx, req)
		if err == nil {
			quiz.Questions = questions
			quiz.NumQuestions = len(questions)
			quiz.GeneratedBy = models.GeneratedByAI
			return quiz, nil
		}
		s.logger.Warn("quiz generation failed, using templates",
			zap.String("provider", s.provider.Name()),
			zap.String("topic", req.Topic),
			zap.Error(err),
		)
	}

	questions, err := templateQuestions(req)
	if err != nil {
		return nil, err
	}
	quiz.Questions = questions
	quiz.NumQuestions = len(questions)
	quiz.GeneratedBy = models.GeneratedByTemplate
	return quiz, nil
}

func validateQuizRequest(req models.GenerateQuizRequest) error {
	if req.Topic == "" {
		return fmt.Errorf("topic is required")
	}
	if req.NumQuestions < 1 || req.NumQuestions > maxQuizQuestions {
		return fmt.Errorf("number of questions must be between 1 and %d", maxQuizQuestions)
	}
	switch req.Difficulty {
	case models.DifficultyBeginner, models.DifficultyIntermediate, models.DifficultyAdvanced:
	default:
		return fmt.Errorf("invalid difficulty %q", req.Difficulty)
	}
	switch req.QuizType {
	case models.QuizTypeMultipleChoice, models.QuizTypeTrueFalse, models.QuizTypeMixed:
	default:
		return fmt.Errorf("invalid quiz type %q", req.QuizType)
	}
	return nil
}

// templateQuestions picks questions from the template bank
func templateQuestions(req models.GenerateQuizRequest) ([]models.Question, error) {
	bank, err := catalog.TemplatesFor(req.Topic, req.Difficulty)
	if err != nil {
		return nil, err
	}
	if len(bank) > req.NumQuestions {
		bank = bank[:req.NumQuestions]
	}

	questions := make([]models.Question, 0, len(bank))
	for i, t := range bank {
		trueFalse := req.QuizType == models.QuizTypeTrueFalse ||
			(req.QuizType == models.QuizTypeMixed && i%2 == 0) ||
			len(t.Options) == 0

		if trueFalse {
			answer := t.TFAnswer
			if answer == "" {
				answer = "True"
			}
			questions = append(questions, models.Question{
				Question:      t.Question,
				Type:          models.QuestionTrueFalse,
				Options:       []string{"True", "False"},
				CorrectAnswer: answer,
				Explanation:   t.Explanation,
			})
			continue
		}

		questions = append(questions, models.Question{
			Question:      t.Question,
			Type:          models.QuestionMultipleChoice,
			Options:       append([]string(nil), t.Options...),
			CorrectAnswer: t.CorrectAnswer,
			Explanation:   t.Explanation,
		})
	}
	return questions, nil
}

var quizSchema = &llm.Schema{
	Name:        "quiz_questions",
	Description: "A list of quiz questions",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"question":      map[string]any{"type": "string"},
						"type":          map[string]any{"type": "string", "enum": []string{models.QuestionMultipleChoice, models.QuestionTrueFalse}},
						"options":       map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
						"correctAnswer": map[string]any{"type": "string"},
						"explanation":   map[string]any{"type": "string"},
					},
					"required":             []string{"question", "type", "options", "correctAnswer", "explanation"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []string{"questions"},
		"additionalProperties": false,
	},
}

const quizSystemPrompt = "You write quiz questions for an online learning platform. " +
	"Every question has exactly one correct answer, and correctAnswer must be one of the options. " +
	"True/false questions use the options True and False."

func quizPrompt(req models.GenerateQuizRequest) string {
	var kind string
	switch req.QuizType {
	case models.QuizTypeTrueFalse:
		kind = "true/false questions"
	case models.QuizTypeMixed:
		kind = "questions mixing multiple choice (4 options) and true/false"
	default:
		kind = "multiple choice questions with 4 options each"
	}
	return fmt.Sprintf("Create %d %s about %q at %s level. Include a short explanation for each answer.",
		req.NumQuestions, kind, req.Topic, strings.ToLower(req.Difficulty))
}

func (s *quizService) generateWithProvider(ctx context.Context, req models.GenerateQuizRequest) ([]models.Question, error) {
	resp, err := s.provider.Generate(ctx, llm.Request{
		System:      quizSystemPrompt,
		Prompt:      quizPrompt(req),
		Schema:      quizSchema,
		MaxTokens:   quizMaxTokens,
		Temperature: 0.7,
	})
	if err != nil {
		return nil, err
	}

	var out struct {
		Questions []models.Question `json:"questions"`
	}
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, fmt.Errorf("failed to decode questions: %w", err)
	}

	questions := make([]models.Question, 0, len(out.Questions))
	for _, q := range out.Questions {
		if q.Question == "" || !containsString(q.Options, q.CorrectAnswer) {
			continue
		}
		questions = append(questions, q)
		if len(questions) == req.NumQuestions {
			break
		}
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("provider returned no usable questions")
	}
	return questions, nil
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

// GetQuiz returns a quiz owned by the user
func (s *quizService) GetQuiz(ctx context.Context, userID, quizID string) (*models.Quiz, error) {
	quiz, err := s.quizRepo.GetByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if quiz.UserID != userID {
		return nil, fmt.Errorf("quiz not found")
	}
	return quiz, nil
}

// CalculateScore grades answers keyed by question index. Answers must equal the correct answer exactly.
func CalculateScore(quiz *models.Quiz, answers map[int]string) models.Score {
	total := len(quiz.Questions)
	if total == 0 {
		return models.Score{}
	}

	correct := 0
	for i, q := range quiz.Questions {
		if answer, ok := answers[i]; ok && answer == q.CorrectAnswer {
			correct++
		}
	}

	return models.Score{
		Correct:    correct,
		Total:      total,
		Percentage: roundTo(float64(correct)/float64(total)*100, 1),
	}
}

// SubmitQuiz grades and stores an attempt, then applies quiz achievements
func (s *quizService) SubmitQuiz(ctx context.Context, userID, quizID string, answers map[int]string) (*models.SubmitQuizResponse, error) {
	quiz, err := s.GetQuiz(ctx, userID, quizID)
	if err != nil {
		return nil, err
	}
	if answers == nil {
		answers = map[int]string{}
	}

	score := CalculateScore(quiz, answers)
	result := &models.QuizResult{
		ID:              uuid.NewString(),
		UserID:          userID,
		QuizID:          quiz.ID,
		Topic:           quiz.Topic,
		Difficulty:      quiz.Difficulty,
		ScorePercentage: score.Percentage,
		CorrectAnswers:  score.Correct,
		TotalQuestions:  score.Total,
		UserAnswers:     answers,
		CompletedAt:     s.now(),
	}
	if err := s.resultRepo.Create(ctx, result); err != nil {
		return nil, err
	}
	s.metrics.QuizSubmissions.WithLabelValues(quiz.GeneratedBy).Inc()

	awarded, err := s.progress.RecordQuizResult(ctx, userID, score.Percentage)
	if err != nil {
		s.logger.Warn("failed to record quiz progress", zap.Error(err), zap.String("userId", userID))
	}
	if awarded == nil {
		awarded = []string{}
	}

	feedback := make([]models.QuestionFeedback, 0, len(quiz.Questions))
	for i, q := range quiz.Questions {
		answer := answers[i]
		feedback = append(feedback, models.QuestionFeedback{
			Index:         i,
			Question:      q.Question,
			UserAnswer:    answer,
			CorrectAnswer: q.CorrectAnswer,
			IsCorrect:     answer == q.CorrectAnswer,
			Explanation:   q.Explanation,
		})
	}

	return &models.SubmitQuizResponse{
		Result:          result,
		Score:           score,
		Feedback:        feedback,
		NewAchievements: awarded,
	}, nil
}

// GetQuizHistory returns the user's attempts, oldest first
func (s *quizService) GetQuizHistory(ctx context.Context, userID string) ([]models.QuizResult, error) {
	results, err := s.resultRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []models.QuizResult{}
	}
	return results, nil
}

// GetQuizAnalytics summarizes the user's attempts
func (s *quizService) GetQuizAnalytics(ctx context.Context, userID string) (*models.QuizAnalytics, error) {
	results, err := s.resultRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return quizAnalytics(results), nil
}

func quizAnalytics(results []models.QuizResult) *models.QuizAnalytics {
	analytics := &models.QuizAnalytics{
		RecentPerformance: []float64{},
		TopicPerformance:  map[string]*models.TopicPerformance{},
		ImprovementTrend:  models.TrendInsufficientData,
	}
	if len(results) == 0 {
		return analytics
	}

	scores := make([]float64, 0, len(results))
	for _, r := range results {
		scores = append(scores, r.ScorePercentage)
		if r.ScorePercentage > analytics.BestScore {
			analytics.BestScore = r.ScorePercentage
		}

		topic := analytics.TopicPerformance[r.Topic]
		if topic == nil {
			topic = &models.TopicPerformance{Scores: []float64{}}
			analytics.TopicPerformance[r.Topic] = topic
		}
		topic.Scores = append(topic.Scores, r.ScorePercentage)
		topic.Count++
	}

	for _, name := range sortedKeys(analytics.TopicPerformance) {
		topic := analytics.TopicPerformance[name]
		topic.Average = roundTo(mean(topic.Scores), 1)
	}

	analytics.TotalQuizzesTaken = len(results)
	analytics.AverageScore = roundTo(mean(scores), 1)

	recent := scores
	if len(recent) > recentPerformanceSize {
		recent = recent[len(recent)-recentPerformanceSize:]
	}
	analytics.RecentPerformance = append(analytics.RecentPerformance, recent...)
	analytics.ImprovementTrend = improvementTrend(scores)

	return analytics
}

// improvementTrend compares the average of the last attempts with the first ones
func improvementTrend(scores []float64) string {
	if len(scores) < trendWindow {
		return models.TrendInsufficientData
	}

	diff := mean(scores[len(scores)-trendWindow:]) - mean(scores[:trendWindow])
	switch {
	case diff > trendThreshold:
		return models.TrendImproving
	case diff < -trendThreshold:
		return models.TrendDeclining
	default:
		return models.TrendStable
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

// GenerateAdaptiveQuiz picks the difficulty from past results on the topic
func (s *quizService) GenerateAdaptiveQuiz(ctx context.Context, userID, topic string) (*models.Quiz, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, fmt.Errorf("topic is required")
	}

	results, err := s.resultRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.GenerateQuiz(ctx, userID, models.GenerateQuizRequest{
		Topic:        topic,
		Difficulty:   adaptiveDifficulty(results, topic),
		NumQuestions: adaptiveQuizQuestions,
		QuizType:     models.QuizTypeMixed,
	})
}

func adaptiveDifficulty(results []models.QuizResult, topic string) string {
	topic = strings.ToLower(topic)
	var scores []float64
	for _, r := range results {
		if strings.Contains(strings.ToLower(r.Topic), topic) {
			scores = append(scores, r.ScorePercentage)
		}
	}
	if len(scores) == 0 {
		return models.DifficultyBeginner
	}

	avg := mean(scores)
	switch {
	case avg >= advancedScore:
		return models.DifficultyAdvanced
	case avg >= intermediateScore:
		return models.DifficultyIntermediate
	default:
		return models.DifficultyBeginner
	}
}
