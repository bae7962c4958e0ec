package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCourses(t *testing.T) {
	got, err := Courses()
	require.NoError(t, err)
	require.Len(t, got, 5)

	titles := make([]string, 0, len(got))
	for _, c := range got {
		titles = append(titles, c.Title)
		assert.Len(t, c.Lessons, 5, c.Title)
		assert.NotEmpty(t, c.Tags, c.Title)
	}
	assert.Equal(t, []string{
		"Python Programming Fundamentals",
		"Data Science with Python",
		"Introduction to Machine Learning",
		"Digital Marketing Strategy",
		"Calculus I: Limits and Derivatives",
	}, titles)

	assert.Equal(t, "Mathematics", got[4].Category)
	assert.Equal(t, 4.7, got[1].Rating)
	assert.Equal(t, "Power rule, product rule, chain rule.", got[4].Lessons[4].Content)
}

func TestTemplatesFor(t *testing.T) {
	tests := []struct {
		name          string
		topic         string
		expectedCount int
		firstQuestion string
	}{
		{name: "python", topic: "Python Basics", expectedCount: 4, firstQuestion: "What is Python primarily used for?"},
		{name: "first key wins", topic: "Python for Machine Learning", expectedCount: 4, firstQuestion: "What is Python primarily used for?"},
		{name: "machine learning", topic: "machine learning", expectedCount: 3, firstQuestion: "What is supervised learning?"},
		{name: "data science", topic: "Intro to Data Science", expectedCount: 2, firstQuestion: "What does pandas library primarily handle?"},
		{name: "marketing", topic: "Marketing 101", expectedCount: 2, firstQuestion: "What does SEO stand for?"},
		{name: "mathematics", topic: "Mathematics", expectedCount: 2, firstQuestion: "What is the derivative of x²?"},
		{name: "fallback", topic: "Ancient History", expectedCount: 1, firstQuestion: "This is a advanced level question about ancient history."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TemplatesFor(tt.topic, "Advanced")
			require.NoError(t, err)
			assert.Len(t, got, tt.expectedCount)
			assert.Equal(t, tt.firstQuestion, got[0].Question)
		})
	}
}

func TestTemplatesFor_TrueFalseOnly(t *testing.T) {
	got, err := TemplatesFor("mathematics", "Beginner")
	require.NoError(t, err)
	assert.Empty(t, got[1].Options)
	assert.Equal(t, "False", got[1].TFAnswer)
}
