package models

import "time"

// Point rewards
const (
	LessonPoints           = 20
	CourseCompletionPoints = 500
	PointsPerLevel         = 1000
)

// UserStats is the per-user progress counter row
type UserStats struct {
	UserID           string     `json:"userId"`
	TotalPoints      int        `json:"totalPoints"`
	Level            int        `json:"level"`
	StreakDays       int        `json:"streakDays"`
	TimeStudiedToday int        `json:"timeStudiedToday"`
	DailyGoalMinutes int        `json:"dailyGoalMinutes"`
	LastActivityDate *time.Time `json:"lastActivityDate,omitempty"`
	TotalStudyTime   int        `json:"totalStudyTime"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// LevelFor returns the level for a point total
func LevelFor(points int) int {
	return points/PointsPerLevel + 1
}

// UserProgress is the aggregated progress view of a user
type UserProgress struct {
	EnrolledCourses          []string            `json:"enrolledCourses"`
	CompletedCourses         []string            `json:"completedCourses"`
	CompletedLessons         int                 `json:"completedLessons"`
	TotalPoints              int                 `json:"totalPoints"`
	Level                    int                 `json:"level"`
	StreakDays               int                 `json:"streakDays"`
	TimeStudiedToday         int                 `json:"timeStudiedToday"`
	DailyGoalMinutes         int                 `json:"dailyGoalMinutes"`
	CourseProgress           map[string]float64  `json:"courseProgress"`
	CompletedLessonsByCourse map[string][]string `json:"completedLessonsByCourse"`
	TimeSpentByCourse        map[string]int      `json:"timeSpentByCourse"`
	LastActivity             *time.Time          `json:"lastActivity,omitempty"`
	CreatedAt                time.Time           `json:"createdAt"`
}

// CompleteLessonRequest is the body of the lesson completion endpoint
type CompleteLessonRequest struct {
	TimeSpentMinutes int `json:"timeSpentMinutes" validate:"min=0,max=1440"`
}

// CompleteLessonResult describes the effect of completing a lesson
type CompleteLessonResult struct {
	Completed          bool     `json:"completed"`
	ProgressPercentage float64  `json:"progressPercentage"`
	CourseCompleted    bool     `json:"courseCompleted"`
	PointsEarned       int      `json:"pointsEarned"`
	NewAchievements    []string `json:"newAchievements"`
}

// ActivityRequest records study minutes
type ActivityRequest struct {
	Minutes int `json:"minutes" validate:"min=1,max=1440"`
}

// StudyDay is the study time of one calendar day
type StudyDay struct {
	Date    string `json:"date"`
	Minutes int    `json:"minutes"`
}

// DetailedProgress extends UserProgress with derived metrics
type DetailedProgress struct {
	BasicStats           *UserProgress     `json:"basicStats"`
	CompletionRate       float64           `json:"completionRate"`
	DailyStudyTime       []StudyDay        `json:"dailyStudyTime"`
	Achievements         []UserAchievement `json:"achievements"`
	TotalStudyHours      float64           `json:"totalStudyHours"`
	AverageSessionLength float64           `json:"averageSessionLength"`
	LearningEfficiency   float64           `json:"learningEfficiency"`
}

// StudyPatterns is part of LearningAnalytics
type StudyPatterns struct {
	TotalTime        int     `json:"totalTime"`
	AverageDailyTime float64 `json:"averageDailyTime"`
	ConsistencyScore float64 `json:"consistencyScore"`
}

// PerformanceMetrics is part of LearningAnalytics
type PerformanceMetrics struct {
	CompletionRate   float64 `json:"completionRate"`
	AverageQuizScore float64 `json:"averageQuizScore"`
	LearningVelocity float64 `json:"learningVelocity"`
}

// EngagementMetrics is part of LearningAnalytics
type EngagementMetrics struct {
	CoursesEnrolled    int `json:"coursesEnrolled"`
	LessonsCompleted   int `json:"lessonsCompleted"`
	AchievementsEarned int `json:"achievementsEarned"`
	CurrentLevel       int `json:"currentLevel"`
}

// LearningAnalytics summarizes study behaviour
type LearningAnalytics struct {
	StudyPatterns      StudyPatterns      `json:"studyPatterns"`
	PerformanceMetrics PerformanceMetrics `json:"performanceMetrics"`
	EngagementMetrics  EngagementMetrics  `json:"engagementMetrics"`
}
