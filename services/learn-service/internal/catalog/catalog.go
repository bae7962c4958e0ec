// Package catalog holds the embedded seed catalog and quiz template bank
package catalog

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed courses.yaml
var coursesYAML []byte

//go:embed quiz_templates.yaml
var quizTemplatesYAML []byte

// CourseSeed is a catalog course with its lessons in order
type CourseSeed struct {
	Title            string       `yaml:"title"`
	Description      string       `yaml:"description"`
	Category         string       `yaml:"category"`
	Difficulty       string       `yaml:"difficulty"`
	EstimatedHours   int          `yaml:"estimated_hours"`
	Rating           float64      `yaml:"rating"`
	Instructor       string       `yaml:"instructor"`
	Tags             []string     `yaml:"tags"`
	Prerequisites    []string     `yaml:"prerequisites"`
	LearningOutcomes []string     `yaml:"learning_outcomes"`
	Lessons          []LessonSeed `yaml:"lessons"`
}

// LessonSeed is a catalog lesson
type LessonSeed struct {
	Title           string `yaml:"title"`
	DurationMinutes int    `yaml:"duration_minutes"`
	Content         string `yaml:"content"`
}

// TemplateQuestion is a question in the template bank.
// Options are empty for questions that only work as true/false.
type TemplateQuestion struct {
	Question      string   `yaml:"question"`
	Options       []string `yaml:"options"`
	CorrectAnswer string   `yaml:"correct_answer"`
	TFAnswer      string   `yaml:"tf_answer"`
	Explanation   string   `yaml:"explanation"`
}

// QuizTopic groups template questions under a match key
type QuizTopic struct {
	Key       string             `yaml:"key"`
	Questions []TemplateQuestion `yaml:"questions"`
}

var (
	loadOnce  sync.Once
	courses   []CourseSeed
	templates []QuizTopic
	loadErr   error
)

func load() error {
	loadOnce.Do(func() {
		var c struct {
			Courses []CourseSeed `yaml:"courses"`
		}
		if err := yaml.Unmarshal(coursesYAML, &c); err != nil {
			loadErr = fmt.Errorf("failed to parse course catalog: %w", err)
			return
		}

		var q struct {
			Topics []QuizTopic `yaml:"topics"`
		}
		if err := yaml.Unmarshal(quizTemplatesYAML, &q); err != nil {
			loadErr = fmt.Errorf("failed to parse quiz templates: %w", err)
			return
		}

		courses = c.Courses
		templates = q.Topics
	})
	return loadErr
}

// Courses returns the seed catalog
func Courses() ([]CourseSeed, error) {
	if err := load(); err != nil {
		return nil, err
	}
	out := make([]CourseSeed, len(courses))
	copy(out, courses)
	return out, nil
}

// TemplatesFor returns the questions of the first topic whose key is contained in
// the lowercased topic, or a single generic question when nothing matches
func TemplatesFor(topic, difficulty string) ([]TemplateQuestion, error) {
	if err := load(); err != nil {
		return nil, err
	}

	lowered := strings.ToLower(topic)
	for _, t := range templates {
		if strings.Contains(lowered, t.Key) {
			out := make([]TemplateQuestion, len(t.Questions))
			copy(out, t.Questions)
			return out, nil
		}
	}

	return []TemplateQuestion{{
		Question:      fmt.Sprintf("This is a %s level question about %s.", strings.ToLower(difficulty), lowered),
		Options:       []string{"Option A", "Option B", "Option C", "Option D"},
		CorrectAnswer: "Option A",
		TFAnswer:      "True",
		Explanation:   "This is a template explanation.",
	}}, nil
}
