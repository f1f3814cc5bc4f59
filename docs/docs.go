// Package docs registers the OpenAPI document served at /docs.json.
// Keep it in sync with the handler annotations (swag init -g cmd/api/main.go).
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
        "/meetings": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Returns every stored meeting, newest first",
                "produces": ["application/json"],
                "tags": ["Meetings"],
                "summary": "List meetings",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/meeting.MeetingResponse"}}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/common.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Summarizes the transcript, extracts action items and indexes the meeting for search",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Meetings"],
                "summary": "Summarize and store a transcript",
                "parameters": [
                    {"description": "Transcript", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/meeting.CreateMeetingRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/meeting.MeetingResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/common.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/common.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/common.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            }
        },
        "/meetings/search": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Ranks the caller's meetings by similarity to the query",
                "produces": ["application/json"],
                "tags": ["Meetings"],
                "summary": "Search the caller's meetings",
                "parameters": [
                    {"type": "string", "description": "Query text", "name": "q", "in": "query", "required": true},
                    {"type": "integer", "description": "Number of results (1-20, default 5)", "name": "topK", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/meeting.SimilarMeetingResponse"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/common.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/common.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            }
        },
        "/token": {
            "post": {
                "description": "Signs a token for username@example.com, creating that user when needed. Not mounted in production; refused for registered accounts.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Issue a development token",
                "parameters": [
                    {"description": "Username", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/user.TokenRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/user.TokenResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/common.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/common.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            }
        },
        "/users": {
            "post": {
                "description": "Creates the user, or refreshes the name of an existing one, and returns a bearer token",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Register a user",
                "parameters": [
                    {"description": "Credentials", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/user.CreateUserRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/user.CreateUserResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/common.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "common.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "integer", "example": 1001},
                "error": {"type": "string", "example": "title and transcript required"}
            }
        },
        "meeting.CreateMeetingRequest": {
            "type": "object",
            "required": ["title", "transcript"],
            "properties": {
                "title": {"type": "string"},
                "transcript": {"type": "string"}
            }
        },
        "meeting.MeetingResponse": {
            "type": "object",
            "properties": {
                "actionItems": {"type": "array", "items": {"type": "string"}},
                "createdAt": {"type": "string"},
                "id": {"type": "string"},
                "summary": {"type": "string"},
                "title": {"type": "string"},
                "transcript": {"type": "string"},
                "updatedAt": {"type": "string"},
                "userId": {"type": "string"}
            }
        },
        "meeting.SimilarMeetingResponse": {
            "type": "object",
            "properties": {
                "meetingId": {"type": "string"},
                "score": {"type": "number"},
                "title": {"type": "string"}
            }
        },
        "user.CreateUserRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "user.CreateUserResponse": {
            "type": "object",
            "properties": {
                "token": {"type": "string"},
                "user": {"$ref": "#/definitions/user.UserResponse"}
            }
        },
        "user.TokenRequest": {
            "type": "object",
            "required": ["username"],
            "properties": {
                "username": {"type": "string"}
            }
        },
        "user.TokenResponse": {
            "type": "object",
            "properties": {
                "token": {"type": "string"}
            }
        },
        "user.UserResponse": {
            "type": "object",
            "properties": {
                "createdAt": {"type": "string"},
                "email": {"type": "string"},
                "id": {"type": "string"},
                "name": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
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
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Meeting Notes API",
	Description:      "Summarizes meeting transcripts, extracts action items and searches past meetings by similarity",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
