// Package docs registers the OpenAPI description of the data explorer. Regenerate with `swag init -g cmd/api/main.go`.
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
        "/datasets": {
            "post": {"tags": ["datasets"], "summary": "Upload a dataset", "consumes": ["multipart/form-data"], "security": [{"ApiKeyAuth": []}], "responses": {"201": {"description": "Created"}, "400": {"description": "Unsupported or empty file"}, "413": {"description": "File too large"}}},
            "get": {"tags": ["datasets"], "summary": "List datasets", "security": [{"ApiKeyAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/datasets/{id}": {
            "get": {"tags": ["datasets"], "summary": "Get dataset metadata", "security": [{"ApiKeyAuth": []}], "responses": {"200": {"description": "OK"}, "404": {"description": "Dataset not found"}}},
            "delete": {"tags": ["datasets"], "summary": "Delete a dataset", "security": [{"ApiKeyAuth": []}], "responses": {"204": {"description": "No Content"}, "404": {"description": "Dataset not found"}}}
        },
        "/datasets/{id}/preview": {"get": {"tags": ["analysis"], "summary": "Preview rows", "security": [{"ApiKeyAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/datasets/{id}/summary": {"get": {"tags": ["analysis"], "summary": "Summary statistics for numeric columns", "security": [{"ApiKeyAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/datasets/{id}/quality": {"get": {"tags": ["analysis"], "summary": "Data quality report", "security": [{"ApiKeyAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/datasets/{id}/columns/{column}": {"get": {"tags": ["analysis"], "summary": "Column information", "security": [{"ApiKeyAuth": []}], "responses": {"200": {"description": "OK"}, "404": {"description": "Column not found"}}}},
        "/datasets/{id}/filter": {"post": {"tags": ["analysis"], "summary": "Apply filters", "security": [{"ApiKeyAuth": []}], "responses": {"200": {"description": "OK"}, "400": {"description": "Invalid filter"}}}},
        "/datasets/{id}/charts": {"post": {"tags": ["charts"], "summary": "Build a chart", "security": [{"ApiKeyAuth": []}], "responses": {"200": {"description": "OK"}, "400": {"description": "Invalid chart configuration"}}}},
        "/datasets/{id}/charts/recommendations": {"get": {"tags": ["charts"], "summary": "Recommend chart types", "security": [{"ApiKeyAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/datasets/{id}/charts/export": {"post": {"tags": ["export"], "summary": "Export a chart as HTML or JSON", "security": [{"ApiKeyAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/datasets/{id}/export": {"post": {"tags": ["export"], "summary": "Export filtered data as CSV or Excel", "security": [{"ApiKeyAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/datasets/{id}/report": {"post": {"tags": ["export"], "summary": "Generate a markdown report", "security": [{"ApiKeyAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/sessions": {"post": {"tags": ["sessions"], "summary": "Save a session", "security": [{"ApiKeyAuth": []}], "responses": {"201": {"description": "Created"}, "400": {"description": "Validation failed"}}}},
        "/sessions/shared": {"get": {"tags": ["sessions"], "summary": "Decode a share token", "security": [{"ApiKeyAuth": []}], "responses": {"200": {"description": "OK"}, "400": {"description": "Invalid share link"}}}},
        "/sessions/{id}": {"get": {"tags": ["sessions"], "summary": "Get a session", "security": [{"ApiKeyAuth": []}], "responses": {"200": {"description": "OK"}, "404": {"description": "Session not found"}}}},
        "/sessions/{id}/share": {"get": {"tags": ["sessions"], "summary": "Get a share link", "security": [{"ApiKeyAuth": []}], "responses": {"200": {"description": "OK"}}}}
    },
    "securityDefinitions": {
        "ApiKeyAuth": {
            "type": "apiKey",
            "name": "X-API-Key",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8081",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "EduLearn Data Explorer API",
	Description:      "API for uploading datasets, computing statistics, building charts and exporting results",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
