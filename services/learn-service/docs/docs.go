// Package docs registers the OpenAPI description of the learn service. Regenerate with `swag init -g cmd/api/main.go`.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/auth/register": {"post": {"tags": ["auth"], "summary": "Register a new user", "responses": {"201": {"description": "Created"}, "400": {"description": "Validation failed"}, "409": {"description": "Username already exists"}}}},
        "/auth/login": {"post": {"tags": ["auth"], "summary": "Login user", "responses": {"200": {"description": "OK"}, "401": {"description": "Invalid credentials"}}}},
        "/auth/refresh": {"post": {"tags": ["auth"], "summary": "Refresh access token", "responses": {"200": {"description": "OK"}, "401": {"description": "Invalid refresh token"}}}},
        "/auth/logout": {"post": {"tags": ["auth"], "summary": "Logout user", "responses": {"200": {"description": "OK"}}}},
        "/profile": {
            "get": {"tags": ["profile"], "summary": "Get profile", "security": [{"ApiKeyAuth": []}], "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["profile"], "summary": "Deactivate account", "security": [{"ApiKeyAuth": []}], "responses": {"204": {"description": "No Content"}}}
        },
        "/profile/preferences": {"patch": {"tags": ["profile"], "summary": "Update learning preferences", "security": [{"ApiKeyAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/profile/account": {"patch": {"tags": ["profile"], "summary": "Update account", "security": [{"ApiKeyAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/courses": {"get": {"tags": ["courses"], "summary": "Search courses", "responses": {"200": {"description": "OK"}}}},
        "/courses/categories": {"get": {"tags": ["courses"], "summary": "List categories", "responses": {"200": {"description": "OK"}}}},
        "/courses/{courseId}": {"get": {"tags": ["courses"], "summary": "Get course", "responses": {"200": {"description": "OK"}, "404": {"description": "Course not found"}}}},
        "/courses/{courseId}/lessons": {"get": {"tags": ["courses"], "summary": "Get course lessons", "responses": {"200": {"description": "OK"}}}},
        "/courses/{courseId}/stats": {"get": {"tags": ["courses"], "summary": "Get course statistics", "responses": {"200": {"description": "OK"}}}},
        "/courses/{courseId}/enroll": {"post": {"tags": ["learning"], "summary": "Enroll in a course", "security": [{"ApiKeyAuth": []}], "responses": {"201": {"description": "Created"}, "409": {"description": "Already enrolled"}}}},
        "/courses/{courseId}/view": {"post": {"tags": ["learning"], "summary": "Record a course view", "security": [{"ApiKeyAuth": []}], "responses": {"204": {"description": "No Content"}}}},
        "/courses/{courseId}/lessons/{lessonId}/complete": {"post": {"tags": ["learning"], "summary": "Complete a lesson", "security": [{"ApiKeyAuth": []}], "responses": {"200": {"description": "OK"}, "403": {"description": "Not enrolled"}}}},
        "/me/enrollments": {"get": {"tags": ["learning"], "summary": "Get my enrollments", "security": [{"ApiKeyAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/me/activity": {"post": {"tags": ["progress"], "summary": "Record study time", "security": [{"ApiKeyAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/me/progress": {"get": {"tags": ["progress"], "summary": "Get my progress", "security": [{"ApiKeyAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/me/progress/detailed": {"get": {"tags": ["progress"], "summary": "Get my detailed progress", "security": [{"ApiKeyAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/me/analytics": {"get": {"tags": ["progress"], "summary": "Get my learning analytics", "security": [{"ApiKeyAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/me/achievements": {"get": {"tags": ["progress"], "summary": "Get my achievements", "security": [{"ApiKeyAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/achievements": {"get": {"tags": ["progress"], "summary": "List achievements", "security": [{"ApiKeyAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/me/recommendations": {"get": {"tags": ["recommendations"], "summary": "Get personalized recommendations", "security": [{"ApiKeyAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/me/recommended-courses": {"get": {"tags": ["recommendations"], "summary": "Get catalog matches", "security": [{"ApiKeyAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/me/learning-path": {"get": {"tags": ["recommendations"], "summary": "Get a learning path", "security": [{"ApiKeyAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/me/adaptive-suggestions": {"get": {"tags": ["recommendations"], "summary": "Get adaptive suggestions for a course", "security": [{"ApiKeyAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/me/learning-effectiveness": {"get": {"tags": ["recommendations"], "summary": "Analyze learning effectiveness", "security": [{"ApiKeyAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/quizzes": {"post": {"tags": ["quizzes"], "summary": "Generate a quiz", "security": [{"ApiKeyAuth": []}], "responses": {"201": {"description": "Created"}}}},
        "/quizzes/adaptive": {"post": {"tags": ["quizzes"], "summary": "Generate an adaptive quiz", "security": [{"ApiKeyAuth": []}], "responses": {"201": {"description": "Created"}}}},
        "/quizzes/{quizId}": {"get": {"tags": ["quizzes"], "summary": "Get a quiz", "security": [{"ApiKeyAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/quizzes/{quizId}/submit": {"post": {"tags": ["quizzes"], "summary": "Submit quiz answers", "security": [{"ApiKeyAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/me/quizzes/history": {"get": {"tags": ["quizzes"], "summary": "Get my quiz history", "security": [{"ApiKeyAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/me/quizzes/analytics": {"get": {"tags": ["quizzes"], "summary": "Get my quiz analytics", "security": [{"ApiKeyAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/admin/users/stats": {"get": {"tags": ["admin"], "summary": "Get user statistics", "security": [{"ApiKeyAuth": []}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}},
        "/internal/users/{userId}/contact": {"get": {"tags": ["internal"], "summary": "Get user contact", "responses": {"200": {"description": "OK"}, "404": {"description": "User not found"}}}}
    },
    "securityDefinitions": {
        "ApiKeyAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "EduLearn Learn API",
	Description:      "API for courses, progress tracking, recommendations and quizzes",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
