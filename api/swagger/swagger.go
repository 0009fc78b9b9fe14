package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "PulsePlan API",
        "description": "Engagement-driven scheduling optimizer",
        "version": "0.1.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Analysis", "description": "Asynchronous engagement analysis"},
        {"name": "Slots", "description": "Ranked best-time-to-post recommendations"},
        {"name": "Insights", "description": "Summarised engagement insights"},
        {"name": "Calendar", "description": "Scheduled-post calendar"}
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
        "/api/v1/analysis": {
            "post": {
                "tags": ["Analysis"],
                "summary": "Request an engagement analysis run",
                "parameters": [
                    {"name": "request", "in": "body", "schema": {"$ref": "#/definitions/AnalysisRequest"}}
                ],
                "responses": {
                    "202": {"description": "Task accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Analysis already running; payload carries the active task id", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/analysis/status": {
            "get": {
                "tags": ["Analysis"],
                "summary": "Poll an analysis task",
                "parameters": [
                    {"name": "taskId", "in": "query", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Task status", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown or foreign task"}
                }
            }
        },
        "/api/v1/slots": {
            "get": {
                "tags": ["Slots"],
                "summary": "Ranked posting slots",
                "parameters": [
                    {"name": "platform", "in": "query", "type": "string"},
                    {"name": "day", "in": "query", "type": "integer", "description": "0=Sunday .. 6=Saturday"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Slots; meta.note set when served from defaults", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/slots/export": {
            "get": {
                "tags": ["Slots"],
                "summary": "Download the posting schedule report",
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "produces": ["text/csv", "application/pdf"],
                "responses": {
                    "200": {"description": "Report file"},
                    "400": {"description": "Unsupported format"}
                }
            }
        },
        "/api/v1/insights": {
            "get": {
                "tags": ["Insights"],
                "summary": "Engagement insights digest",
                "responses": {
                    "200": {"description": "Insights", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/events": {
            "get": {
                "tags": ["Calendar"],
                "summary": "List calendar events",
                "parameters": [
                    {"name": "start", "in": "query", "type": "string", "format": "date-time"},
                    {"name": "end", "in": "query", "type": "string", "format": "date-time"},
                    {"name": "platform", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "pageSize", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Events", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Calendar"],
                "summary": "Schedule a new event",
                "parameters": [
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EventRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created; warning set when the window overlaps existing events", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload or window"}
                }
            }
        },
        "/api/v1/events/{id}": {
            "get": {
                "tags": ["Calendar"],
                "summary": "Get one calendar event",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Event with recorded conflicts", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "put": {
                "tags": ["Calendar"],
                "summary": "Update a scheduled event",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EventRequest"}}
                ],
                "responses": {
                    "200": {"description": "Updated", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "delete": {
                "tags": ["Calendar"],
                "summary": "Delete a scheduled event",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "204": {"description": "Deleted"},
                    "404": {"description": "Not found"}
                }
            }
        }
    },
    "definitions": {
        "AnalysisRequest": {
            "type": "object",
            "properties": {
                "forceRegenerate": {"type": "boolean"}
            }
        },
        "EventRequest": {
            "type": "object",
            "required": ["title", "start_time", "end_time"],
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"},
                "start_time": {"type": "string", "format": "date-time"},
                "end_time": {"type": "string", "format": "date-time"},
                "all_day": {"type": "boolean"},
                "platform": {"type": "string"},
                "status": {"type": "string"},
                "recurrence_rule": {"type": "string"}
            }
        },
        "OptimalSlot": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "platform": {"type": "string"},
                "day_of_week": {"type": "integer"},
                "hour": {"type": "integer"},
                "minute": {"type": "integer"},
                "engagement_score": {"type": "number"},
                "confidence_level": {"type": "number"},
                "based_on_posts_count": {"type": "integer"},
                "is_default": {"type": "boolean"},
                "last_updated": {"type": "string", "format": "date-time"}
            }
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
