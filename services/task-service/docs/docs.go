// Package docs registers the OpenAPI description of the task admin API. Regenerate with `swag init -g cmd/api/main.go`.
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
        "/admin/email-templates": {"get": {"tags": ["admin"], "summary": "Get list of email templates", "security": [{"ApiKeyAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/admin/email-templates/{slug}": {
            "get": {"tags": ["admin"], "summary": "Get email template by slug", "security": [{"ApiKeyAuth": []}], "responses": {"200": {"description": "OK"}, "404": {"description": "Email template not found"}}},
            "patch": {"tags": ["admin"], "summary": "Update email template", "security": [{"ApiKeyAuth": []}], "responses": {"200": {"description": "OK"}, "400": {"description": "Invalid request body"}, "404": {"description": "Email template not found"}}}
        },
        "/admin/task-logs": {"get": {"tags": ["admin"], "summary": "Get list of task logs", "security": [{"ApiKeyAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/admin/task-logs/{id}": {"get": {"tags": ["admin"], "summary": "Get task log by ID", "security": [{"ApiKeyAuth": []}], "responses": {"200": {"description": "OK"}, "400": {"description": "Invalid task log ID"}, "404": {"description": "Task log not found"}}}},
        "/admin/tasks/{type}": {"post": {"tags": ["tasks"], "summary": "Trigger a maintenance task", "security": [{"ApiKeyAuth": []}], "responses": {"202": {"description": "Accepted"}, "400": {"description": "Unsupported task type"}}}},
        "/admin/schedule": {"get": {"tags": ["tasks"], "summary": "Get the recurring job schedule", "security": [{"ApiKeyAuth": []}], "responses": {"200": {"description": "OK"}, "400": {"description": "Invalid n"}}}}
    },
    "securityDefinitions": {
        "ApiKeyAuth": {"type": "apiKey", "name": "X-API-Key", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8082",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "EduLearn Task API",
	Description:      "Admin API for e-mail templates, task logs and background jobs",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
