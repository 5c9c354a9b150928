// Package docs registers the OpenAPI description served by the swagger UI.
// Keep it in step with the godoc annotations on the controllers; `swag init -g cmd/main.go` rebuilds it.
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
        "/admin/exams": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Admin - Exams"],
                "summary": "(Admin) Create the final exam of a journey",
                "parameters": [
                    {"name": "exam_data", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.ExamCreateDTO"}}
                ],
                "responses": {
                    "201": {"description": "Exam created successfully", "schema": {"$ref": "#/definitions/dto.APIResponse"}},
                    "400": {"description": "Invalid input data", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/exams/{exam_id}/start": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["User - Exams"],
                "summary": "(User) Start or resume a final exam",
                "parameters": [
                    {"type": "integer", "name": "exam_id", "in": "path", "required": true},
                    {"type": "integer", "name": "user_id", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.APIResponse"}},
                    "400": {"description": "Invalid ID, exam already completed or time expired", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "401": {"description": "No user identity", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "403": {"description": "Journey tutorials not completed", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "404": {"description": "Exam not found or has no questions", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/exams/{exam_id}/submit": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["User - Exams"],
                "summary": "(User) Submit the final exam",
                "parameters": [
                    {"type": "integer", "name": "exam_id", "in": "path", "required": true},
                    {"name": "submission", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.ExamSubmitDTO"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.APIResponse"}},
                    "400": {"description": "Invalid body, session not started or already submitted, or late", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "401": {"description": "No user identity", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "404": {"description": "Exam not found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/exams/{exam_id}/my-submissions": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["User - Exams"],
                "summary": "(User) List my submissions for an exam",
                "parameters": [
                    {"type": "integer", "name": "exam_id", "in": "path", "required": true},
                    {"type": "integer", "name": "user_id", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.APIResponse"}},
                    "404": {"description": "Exam not found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/journeys/{journey_id}/exam": {
            "get": {
                "produces": ["application/json"],
                "tags": ["User - Exams"],
                "summary": "(User) Get the final exam of a journey",
                "parameters": [
                    {"type": "integer", "name": "journey_id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.APIResponse"}},
                    "404": {"description": "Journey has no exam", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/tracking/tutorials/{tutorial_id}/track": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["User - Tracking"],
                "summary": "(User) Record opening or completing a tutorial",
                "parameters": [
                    {"type": "integer", "name": "tutorial_id", "in": "path", "required": true},
                    {"name": "track", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.TrackTutorialDTO"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.APIResponse"}},
                    "400": {"description": "Invalid tutorial ID or action", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/tracking/heartbeat": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["User - Tracking"],
                "summary": "(User) Report that a tutorial is still open",
                "parameters": [
                    {"name": "heartbeat", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.HeartbeatDTO"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.APIResponse"}},
                    "400": {"description": "Missing identifiers", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/tracking/summary": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["User - Tracking"],
                "summary": "(User) Summarize tracked activity in a date range",
                "parameters": [
                    {"type": "string", "name": "startDate", "in": "query"},
                    {"type": "string", "name": "endDate", "in": "query"},
                    {"type": "integer", "name": "user_id", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.APIResponse"}},
                    "400": {"description": "Invalid dates", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/tracking/activities": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["User - Tracking"],
                "summary": "(User) List recently viewed tutorials",
                "parameters": [
                    {"type": "integer", "name": "limit", "in": "query"},
                    {"type": "integer", "name": "offset", "in": "query"},
                    {"type": "integer", "name": "user_id", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.APIResponse"}},
                    "400": {"description": "Invalid pagination", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/tracking/update-summary": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["User - Tracking"],
                "summary": "(User) Recompute my progress summary",
                "parameters": [
                    {"name": "body", "in": "body", "schema": {"$ref": "#/definitions/dto.UpdateSummaryDTO"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.APIResponse"}},
                    "500": {"description": "Storage error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/insights": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["User - Insights"],
                "summary": "(User) Generate learning insights",
                "parameters": [
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.InsightRequestDTO"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.APIResponse"}},
                    "502": {"description": "Insight provider failed", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/insights/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["User - Insights"],
                "summary": "Insight provider status",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.InsightHealthDTO"}}
                }
            }
        }
    },
    "definitions": {
        "dto.APIResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "success"},
                "message": {"type": "string"},
                "data": {}
            }
        },
        "dto.ErrorResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "fail"},
                "code": {"type": "string"},
                "message": {"type": "string"},
                "details": {"type": "array", "items": {"type": "string"}},
                "data": {}
            }
        },
        "dto.ExamQuestionCreateDTO": {
            "type": "object",
            "required": ["question_no", "question_text", "option_a", "option_b", "option_c", "option_d", "correct_answer"],
            "properties": {
                "question_no": {"type": "integer", "minimum": 1},
                "question_text": {"type": "string"},
                "option_a": {"type": "string"},
                "option_b": {"type": "string"},
                "option_c": {"type": "string"},
                "option_d": {"type": "string"},
                "correct_answer": {"type": "string", "example": "A"}
            }
        },
        "dto.ExamCreateDTO": {
            "type": "object",
            "required": ["journey_id", "title", "duration_seconds", "questions"],
            "properties": {
                "journey_id": {"type": "integer"},
                "title": {"type": "string"},
                "duration_seconds": {"type": "integer"},
                "passing_score": {"type": "integer", "minimum": 0, "maximum": 100},
                "questions": {"type": "array", "items": {"$ref": "#/definitions/dto.ExamQuestionCreateDTO"}}
            }
        },
        "dto.SubmittedAnswerDTO": {
            "type": "object",
            "properties": {
                "question_no": {"type": "integer"},
                "question_id": {"type": "integer"},
                "selected_option": {"type": "string"}
            }
        },
        "dto.ExamSubmitDTO": {
            "type": "object",
            "required": ["answers"],
            "properties": {
                "user_id": {"type": "integer"},
                "answers": {"type": "array", "items": {"$ref": "#/definitions/dto.SubmittedAnswerDTO"}},
                "start_time": {"type": "string"},
                "duration_seconds": {"type": "integer"}
            }
        },
        "dto.TrackTutorialDTO": {
            "type": "object",
            "required": ["action"],
            "properties": {
                "action": {"type": "string", "enum": ["start", "complete"]},
                "user_id": {"type": "integer"}
            }
        },
        "dto.HeartbeatDTO": {
            "type": "object",
            "required": ["tutorialId", "journeyId"],
            "properties": {
                "tutorialId": {"type": "integer"},
                "journeyId": {"type": "integer"},
                "user_id": {"type": "integer"}
            }
        },
        "dto.UpdateSummaryDTO": {
            "type": "object",
            "properties": {
                "user_id": {"type": "integer"}
            }
        },
        "dto.InsightStatsDTO": {
            "type": "object",
            "properties": {
                "avg_study_duration_hours": {"type": "number"},
                "total_tutorial_completed": {"type": "integer"},
                "total_study_days": {"type": "integer"},
                "consistency_score": {"type": "number"},
                "avg_exam_score": {"type": "number"}
            }
        },
        "dto.InsightRequestDTO": {
            "type": "object",
            "properties": {
                "userId": {"type": "integer"},
                "stats": {"$ref": "#/definitions/dto.InsightStatsDTO"},
                "userProfile": {"type": "object", "properties": {"name": {"type": "string"}}}
            }
        },
        "dto.InsightHealthDTO": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "provider": {"type": "string"},
                "service_url": {"type": "string"},
                "token_configured": {"type": "boolean"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{"http", "https"},
	Title:            "Learning Journey Exam & Insight API",
	Description:      "Final exam sessions, tutorial tracking, progress summaries and learning insights for learning journeys.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
