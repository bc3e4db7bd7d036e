package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Scribe Portal API",
        "description": "Matches students with disabilities to volunteer scribes for exams.",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Student", "description": "Exam requests, candidate discovery, invitations, feedback"},
        {"name": "Scribe", "description": "Invitations, accepted requests, availability, profile"},
        {"name": "Chat", "description": "Room tokens for the external messaging provider"},
        {"name": "Locations", "description": "Static geography and language lists"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Database unreachable"}
                }
            }
        },
        "/student/createRequest": {
            "post": {
                "tags": ["Student"],
                "summary": "Create an exam request and return the first candidate page",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/CandidatePage"}},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/APIError"}}
                }
            }
        },
        "/student/load-scribes": {
            "get": {
                "tags": ["Student"],
                "summary": "Load a further page of ranked candidates",
                "parameters": [
                    {"name": "examRequestId", "in": "query", "type": "string", "required": true},
                    {"name": "page", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/CandidatePage"}},
                    "409": {"description": "Request no longer open", "schema": {"$ref": "#/definitions/APIError"}}
                }
            }
        },
        "/student/send-request": {
            "post": {
                "tags": ["Student"],
                "summary": "Invite selected scribes",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SendRequest"}}
                ],
                "responses": {
                    "200": {"description": "Invitations sent"},
                    "409": {"description": "Request no longer open", "schema": {"$ref": "#/definitions/APIError"}}
                }
            }
        },
        "/student/get-requests": {
            "get": {
                "tags": ["Student"],
                "summary": "List own exam requests",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/RequestPage"}}
                }
            }
        },
        "/student/feedback": {
            "post": {
                "tags": ["Student"],
                "summary": "Rate the scribe of a completed request",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/Feedback"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Already rated or not completed", "schema": {"$ref": "#/definitions/APIError"}}
                }
            }
        },
        "/scribe/acceptRequest": {
            "post": {
                "tags": ["Scribe"],
                "summary": "Redeem an invitation token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/Token"}}
                ],
                "responses": {
                    "200": {"description": "Accepted"},
                    "404": {"description": "Unknown token", "schema": {"$ref": "#/definitions/APIError"}},
                    "409": {"description": "Token used or request taken", "schema": {"$ref": "#/definitions/APIError"}}
                }
            }
        },
        "/scribe/reject-invite": {
            "post": {
                "tags": ["Scribe"],
                "summary": "Decline a pending invitation",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/Token"}}
                ],
                "responses": {
                    "200": {"description": "Declined"}
                }
            }
        },
        "/scribe/get-request": {
            "get": {
                "tags": ["Scribe"],
                "summary": "List accepted requests",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/RequestPage"}}
                }
            }
        },
        "/scribe/invites": {
            "get": {
                "tags": ["Scribe"],
                "summary": "List pending invitations",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/scribe/profile": {
            "get": {
                "tags": ["Scribe"],
                "summary": "Own profile",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/scribe/get-unavailability": {
            "get": {
                "tags": ["Scribe"],
                "summary": "List blocked dates",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/scribe/set-unavailability": {
            "post": {
                "tags": ["Scribe"],
                "summary": "Block a date",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/Unavailability"}}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/scribe/delete-unavailability": {
            "post": {
                "tags": ["Scribe"],
                "summary": "Unblock a date",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/chat/token": {
            "post": {
                "tags": ["Chat"],
                "summary": "Issue a chat room token for a booking",
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Not a participant", "schema": {"$ref": "#/definitions/APIError"}}
                }
            }
        },
        "/locations/states": {
            "get": {
                "tags": ["Locations"],
                "summary": "Supported states",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/locations/districts/{state}": {
            "get": {
                "tags": ["Locations"],
                "summary": "Districts of a state",
                "parameters": [
                    {"name": "state", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Unknown state", "schema": {"$ref": "#/definitions/APIError"}}
                }
            }
        },
        "/locations/metadata": {
            "get": {
                "tags": ["Locations"],
                "summary": "Form metadata",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        }
    },
    "definitions": {
        "CreateRequest": {
            "type": "object",
            "required": ["date", "language", "state", "district", "city"],
            "properties": {
                "date": {"type": "string", "example": "2026-03-14"},
                "time": {"type": "string", "example": "10:30"},
                "language": {"type": "string"},
                "state": {"type": "string"},
                "district": {"type": "string"},
                "city": {"type": "string"}
            }
        },
        "SendRequest": {
            "type": "object",
            "required": ["examRequestId", "scribeIds"],
            "properties": {
                "examRequestId": {"type": "string"},
                "scribeIds": {"type": "array", "items": {"type": "string"}}
            }
        },
        "Feedback": {
            "type": "object",
            "required": ["examRequestId", "stars"],
            "properties": {
                "examRequestId": {"type": "string"},
                "stars": {"type": "integer", "minimum": 1, "maximum": 5},
                "review": {"type": "string"}
            }
        },
        "Token": {
            "type": "object",
            "required": ["token"],
            "properties": {
                "token": {"type": "string"}
            }
        },
        "Unavailability": {
            "type": "object",
            "required": ["date", "reason"],
            "properties": {
                "date": {"type": "string", "example": "2026-03-14"},
                "reason": {"type": "string", "enum": ["PERSONAL", "EXAM_BOOKED"]}
            }
        },
        "CandidatePage": {
            "type": "object",
            "properties": {
                "exam_request_id": {"type": "string"},
                "scribes": {"type": "array", "items": {"type": "object"}},
                "has_more": {"type": "boolean"}
            }
        },
        "RequestPage": {
            "type": "object",
            "properties": {
                "requests": {"type": "array", "items": {"type": "object"}},
                "has_more": {"type": "boolean"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "code": {"type": "string"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
