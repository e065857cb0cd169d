// Package docs registers the OpenAPI description served at /swagger.
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
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Liveness and dependency state",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/metrics": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Process metrics snapshot",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/analyze": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["assessments"],
                "summary": "Score one assessment",
                "description": "Every field is optional. Missing measurements are filled with placeholders and lower the confidence score. Results are screening indicators, not a diagnosis.",
                "parameters": [
                    {"in": "body", "name": "request", "required": false, "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "Risk output"},
                    "400": {"description": "Structurally invalid request"},
                    "422": {"description": "Processing error"},
                    "429": {"description": "Rate limit exceeded"},
                    "504": {"description": "Request timed out"}
                }
            }
        },
        "/api/assessments": {
            "get": {
                "produces": ["application/json"],
                "tags": ["assessments"],
                "summary": "List recent assessments",
                "parameters": [
                    {"type": "integer", "in": "query", "name": "limit", "description": "1-100, default 20"}
                ],
                "responses": {"200": {"description": "OK"}, "503": {"description": "History disabled"}}
            }
        },
        "/api/assessments/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["assessments"],
                "summary": "Fetch a stored assessment",
                "parameters": [{"type": "string", "in": "path", "name": "id", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["assessments"],
                "summary": "Erase a stored assessment",
                "parameters": [{"type": "string", "in": "path", "name": "id", "required": true}],
                "responses": {"200": {"description": "Deleted"}, "404": {"description": "Not found"}}
            }
        }
    }
}`

// SwaggerInfo holds the exported metadata; cmd/server fills in Host.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Cognitive Risk Indicator API",
	Description:      "Non-diagnostic cognitive screening from short behavioural tests.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
