package models

import "time"

// Achievement identifiers
const (
	AchievementFirstCourse     = "first_course"
	AchievementFirstCompletion = "first_completion"
	AchievementWeekStreak      = "week_streak"
	AchievementQuizMaster      = "quiz_master"
	AchievementSpeedLearner    = "speed_learner"
)

// Achievement is an achievement definition
type Achievement struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Points      int    `json:"points"`
}

// Achievements is the fixed set of definitions, in display order
var Achievements = []Achievement{
	{ID: AchievementFirstCourse, Title: "Getting Started", Description: "Enrolled in your first course", Icon: "🎯", Points: 50},
	{ID: AchievementFirstCompletion, Title: "Course Completer", Description: "Completed your first course", Icon: "🏆", Points: 100},
	{ID: AchievementWeekStreak, Title: "Week Warrior", Description: "Studied for 7 consecutive days", Icon: "🔥", Points: 150},
	{ID: AchievementQuizMaster, Title: "Quiz Master", Description: "Scored 90% or higher on 5 quizzes", Icon: "🧠", Points: 200},
	{ID: AchievementSpeedLearner, Title: "Speed Learner", Description: "Completed 3 courses in a month", Icon: "⚡", Points: 300},
}

// FindAchievement returns the definition with the given id
func FindAchievement(id string) (Achievement, bool) {
	for _, a := range Achievements {
		if a.ID == id {
			return a, true
		}
	}
	return Achievement{}, false
}

// UserAchievement is an achievement earned by a user
type UserAchievement struct {
	Achievement
	EarnedAt time.Time `json:"earnedAt"`
}
