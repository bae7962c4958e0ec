package models

import "time"

// Recommendation is a personalized course suggestion
type Recommendation struct {
	Course     *Course `json:"course"`
	Score      float64 `json:"score"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// RecommendationSet is the cached result of personalization
type RecommendationSet struct {
	UserID          string           `json:"userId"`
	Recommendations []Recommendation `json:"recommendations"`
	GeneratedAt     time.Time        `json:"generatedAt"`
}

// LearningPathStep is one step of a learning path
type LearningPathStep struct {
	Step        int     `json:"step"`
	Course      *Course `json:"course"`
	Description string  `json:"description"`
}

// AdaptiveSuggestions tunes pace and difficulty to recent activity
type AdaptiveSuggestions struct {
	DifficultyAdjustment   string   `json:"difficultyAdjustment"`
	RecommendedPace        string   `json:"recommendedPace"`
	SupplementaryMaterials []string `json:"supplementaryMaterials"`
	ReviewTopics           []string `json:"reviewTopics"`
	RecentCompletions      int      `json:"recentCompletions"`
}

// LearningEffectiveness classifies how quickly a user finishes courses
type LearningEffectiveness struct {
	LearningVelocity      string   `json:"learningVelocity"`
	RetentionScore        float64  `json:"retentionScore"`
	PreferredContentTypes []string `json:"preferredContentTypes"`
}

// CategoryCount is an interaction count per category
type CategoryCount struct {
	Category string
	Count    int
}
