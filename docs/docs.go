// Package docs registers the OpenAPI document served under /swagger/.
// Regenerate the full document from the controller annotations with `swag init -g cmd/server/main.go`.
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
        "/ticket/verify/{ticketCode}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["tickets"],
                "summary": "Verify a ticket code",
                "parameters": [
                    {"type": "string", "description": "Ticket code", "name": "ticketCode", "in": "path", "required": true},
                    {"type": "string", "description": "Event ID (UUID) the ticket must belong to", "name": "eventId", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "data.valid tells whether the ticket was found for the event", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "401": {"description": "error.code: unauthorized", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "403": {"description": "error.code: forbidden", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "429": {"description": "error.code: rate_limited", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/event/{eventId}/check-in": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["check-in"],
                "summary": "Check in a ticket",
                "parameters": [
                    {"type": "string", "description": "Event ID (UUID)", "name": "eventId", "in": "path", "required": true},
                    {"description": "Scanned or typed ticket code", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/controllers.TicketCodeRequest"}}
                ],
                "responses": {
                    "200": {"description": "data contains user.fullName and checkInDate", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "404": {"description": "error.code: ticket_not_found or not_found", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "409": {"description": "error.code: already_checked_in", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "422": {"description": "error.code: event_mismatch", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/event/{eventId}/uncheck-in": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["check-in"],
                "summary": "Undo a check-in",
                "parameters": [
                    {"type": "string", "description": "Event ID (UUID)", "name": "eventId", "in": "path", "required": true},
                    {"description": "Ticket code", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/controllers.TicketCodeRequest"}}
                ],
                "responses": {
                    "200": {"description": "data contains user.fullName", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "409": {"description": "error.code: not_checked_in", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/event/{eventId}/check-ins": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["check-in"],
                "summary": "List check-ins of an event",
                "parameters": [
                    {"type": "string", "description": "Event ID (UUID)", "name": "eventId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "data is an array of check-ins", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/event/{eventId}/counts": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["check-in"],
                "summary": "Get attendee and check-in counts",
                "parameters": [
                    {"type": "string", "description": "Event ID (UUID)", "name": "eventId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "data contains eventName, totalAttendees, checkedInCount, locationType", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        }
    },
    "definitions": {
        "controllers.TicketCodeRequest": {
            "type": "object",
            "required": ["ticketCode"],
            "properties": {"ticketCode": {"type": "string"}}
        },
        "helpers.APIError": {
            "type": "object",
            "properties": {"code": {"type": "string"}, "message": {"type": "string"}}
        },
        "helpers.APIResponse": {
            "type": "object",
            "properties": {"data": {}, "error": {"$ref": "#/definitions/helpers.APIError"}}
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Event Check-in API",
	Description:      "Ticket verification, check-in and attendance counts for event operators.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
