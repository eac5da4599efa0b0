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
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/dashboard": {
            "get": {
                "description": "Both stream panels, latest card, chart series, table rows and system status",
                "produces": ["application/json"],
                "tags": ["dashboard"],
                "summary": "Full dashboard projection",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}}
                }
            }
        },
        "/api/v1/status": {
            "get": {
                "produces": ["application/json"],
                "tags": ["dashboard"],
                "summary": "Status stream and latest card",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}}
                }
            }
        },
        "/api/v1/history": {
            "get": {
                "produces": ["application/json"],
                "tags": ["dashboard"],
                "summary": "History stream and downsampled chart",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}}
                }
            }
        },
        "/api/v1/history/table": {
            "get": {
                "produces": ["application/json"],
                "tags": ["dashboard"],
                "summary": "Paginated history table",
                "parameters": [
                    {"type": "integer", "default": 1, "description": "Page number, from 1", "name": "page", "in": "query"},
                    {"type": "integer", "default": 25, "description": "Rows per page", "name": "size", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/refresh": {
            "post": {
                "description": "Dispatches an out-of-band fetch; the result shows up in later reads",
                "produces": ["application/json"],
                "tags": ["dashboard"],
                "summary": "Refresh now",
                "parameters": [
                    {"type": "string", "default": "all", "description": "status, history or all", "name": "stream", "in": "query"}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "409": {"description": "Conflict", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Workshop Monitor API",
	Description:      "Live environmental telemetry dashboard: status and history streams with derived views.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
