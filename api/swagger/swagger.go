package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "CSSC API",
        "description": "Class scheduling and course communication backend",
        "version": "0.1.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Authentication"},
        {"name": "Schedule", "description": "Weekly projection, reschedules, history"},
        {"name": "Rooms", "description": "Room occupancy and availability"},
        {"name": "Courses", "description": "Subscriptions and recurring templates"}
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
                    "200": {"description": "Ready"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate a user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/schedule/real": {
            "get": {
                "tags": ["Schedule"],
                "summary": "Projected weekly schedule",
                "parameters": [
                    {"name": "start_date", "in": "query", "type": "string"},
                    {"name": "end_date", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule/default": {
            "get": {
                "tags": ["Schedule"],
                "summary": "Every course's recurring weekly template",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule/update": {
            "post": {
                "tags": ["Schedule"],
                "summary": "Reschedule a class to a new room and time",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RescheduleRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Room already booked"}
                }
            }
        },
        "/schedule/history/{course_id}": {
            "get": {
                "tags": ["Schedule"],
                "summary": "Full schedule change history of a course",
                "parameters": [
                    {"name": "course_id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Not the course komting"}
                }
            }
        },
        "/schedule/export": {
            "get": {
                "tags": ["Schedule"],
                "summary": "Weekly schedule as PDF",
                "produces": ["application/pdf"],
                "parameters": [
                    {"name": "start_date", "in": "query", "type": "string"},
                    {"name": "end_date", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "PDF document"}
                }
            }
        },
        "/rooms": {
            "get": {
                "tags": ["Rooms"],
                "summary": "List active rooms",
                "parameters": [
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/rooms/{id}": {
            "get": {
                "tags": ["Rooms"],
                "summary": "Room details",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/rooms/{id}/schedule": {
            "get": {
                "tags": ["Rooms"],
                "summary": "A room's bookings over a date range",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "from_date", "in": "query", "type": "string"},
                    {"name": "to_date", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/rooms/free-slots": {
            "get": {
                "tags": ["Rooms"],
                "summary": "Rooms free for one fixed slot",
                "parameters": [
                    {"name": "date", "in": "query", "required": true, "type": "string"},
                    {"name": "start_time", "in": "query", "required": true, "type": "string"},
                    {"name": "end_time", "in": "query", "required": true, "type": "string"},
                    {"name": "min_capacity", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/rooms/status": {
            "get": {
                "tags": ["Rooms"],
                "summary": "Per-room occupancy at an instant",
                "parameters": [
                    {"name": "date", "in": "query", "type": "string"},
                    {"name": "time", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/rooms/available-for-reschedule": {
            "get": {
                "tags": ["Rooms"],
                "summary": "Free slots across all rooms for a reschedule",
                "parameters": [
                    {"name": "original_date", "in": "query", "required": true, "type": "string"},
                    {"name": "original_start_time", "in": "query", "required": true, "type": "string"},
                    {"name": "original_end_time", "in": "query", "required": true, "type": "string"},
                    {"name": "duration_minutes", "in": "query", "type": "integer"},
                    {"name": "from_date", "in": "query", "type": "string"},
                    {"name": "to_date", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/schedules/my": {
            "get": {
                "tags": ["Courses"],
                "summary": "Recurring templates of the caller's subscribed courses",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/schedules/all": {
            "get": {
                "tags": ["Courses"],
                "summary": "Recurring templates of every active course",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/{id}/subscribe": {
            "post": {
                "tags": ["Courses"],
                "summary": "Subscribe the caller to a course",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Courses"],
                "summary": "Remove the caller's course subscription",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "RescheduleRequest": {
            "type": "object",
            "properties": {
                "courseId": {"type": "string"},
                "newRoomId": {"type": "string"},
                "newDate": {"type": "string"},
                "newStartTime": {"type": "string"},
                "newEndTime": {"type": "string"},
                "weekNumber": {"type": "integer"},
                "meetingNumber": {"type": "integer"},
                "changeReason": {"type": "string"}
            },
            "required": ["courseId", "newDate", "newStartTime", "newEndTime"]
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
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
