// Package swagger holds the hand-maintained OpenAPI document served at /docs.
package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "ClassTrack Approval API",
        "description": "Grade and honor approval workflow service",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Grades", "description": "Grade submission and validation workflow"},
        {"name": "Honors", "description": "Honor evaluation and principal decisions"},
        {"name": "Criteria", "description": "Honor criteria management"},
        {"name": "Certificates", "description": "Certificate eligibility gate"},
        {"name": "Reports", "description": "Honor roll projections and exports"}
    ],
    "paths": {
        "/grades": {
            "get": {
                "tags": ["Grades"],
                "summary": "List grade records",
                "parameters": [
                    {"name": "studentId", "in": "query", "type": "string"},
                    {"name": "subjectId", "in": "query", "type": "string"},
                    {"name": "academicLevelId", "in": "query", "type": "string"},
                    {"name": "schoolYear", "in": "query", "type": "string"},
                    {"name": "gradingPeriodId", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "latestOnly", "in": "query", "type": "boolean"},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "offset", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Grades"],
                "summary": "Create a draft grade record",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateGradeRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden"}
                }
            }
        },
        "/grades/pending": {
            "get": {
                "tags": ["Grades"],
                "summary": "List grades awaiting validation",
                "parameters": [
                    {"name": "departmentId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/grades/{id}/submit": {
            "post": {
                "tags": ["Grades"],
                "summary": "Submit a draft grade for validation",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "409": {"description": "Concurrent update lost"},
                    "422": {"description": "Invalid state transition"}
                }
            }
        },
        "/grades/{id}/approve": {
            "post": {
                "tags": ["Grades"],
                "summary": "Approve a submitted grade",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Out of scope for role"},
                    "422": {"description": "Invalid state transition"}
                }
            }
        },
        "/grades/{id}/return": {
            "post": {
                "tags": ["Grades"],
                "summary": "Return a submitted grade for correction",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReturnGradeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Missing reason"}
                }
            }
        },
        "/honors/evaluate": {
            "post": {
                "tags": ["Honors"],
                "summary": "Evaluate honor eligibility for a student key",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EvaluateHonorsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/honors": {
            "get": {
                "tags": ["Honors"],
                "summary": "List honor results",
                "parameters": [
                    {"name": "studentId", "in": "query", "type": "string"},
                    {"name": "academicLevelId", "in": "query", "type": "string"},
                    {"name": "schoolYear", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/honors/pending": {
            "get": {
                "tags": ["Honors"],
                "summary": "List honor results awaiting a decision",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/honors/{id}/approve": {
            "post": {
                "tags": ["Honors"],
                "summary": "Approve a pending honor result",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Principal only"},
                    "409": {"description": "Already decided"}
                }
            }
        },
        "/honors/{id}/reject": {
            "post": {
                "tags": ["Honors"],
                "summary": "Reject a pending honor result",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RejectHonorRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Missing reason"},
                    "403": {"description": "Principal only"}
                }
            }
        },
        "/honor-criteria": {
            "get": {
                "tags": ["Criteria"],
                "summary": "List honor criteria",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Criteria"],
                "summary": "Create an honor criterion",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpsertCriterionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"}
                }
            }
        },
        "/honor-criteria/{id}": {
            "put": {
                "tags": ["Criteria"],
                "summary": "Update an honor criterion",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpsertCriterionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/certificates/eligibility": {
            "get": {
                "tags": ["Certificates"],
                "summary": "Check certificate eligibility for a student key",
                "parameters": [
                    {"name": "studentId", "in": "query", "required": true, "type": "string"},
                    {"name": "academicLevelId", "in": "query", "required": true, "type": "string"},
                    {"name": "schoolYear", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/honor-roll": {
            "get": {
                "tags": ["Reports"],
                "summary": "Honor roll for a level and school year",
                "parameters": [
                    {"name": "academicLevelId", "in": "query", "required": true, "type": "string"},
                    {"name": "schoolYear", "in": "query", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        }
    },
    "definitions": {
        "CreateGradeRequest": {
            "type": "object",
            "required": ["student_id", "subject_id", "academic_level_id", "school_year", "grade"],
            "properties": {
                "student_id": {"type": "string"},
                "subject_id": {"type": "string"},
                "academic_level_id": {"type": "string"},
                "grading_period_id": {"type": "string"},
                "school_year": {"type": "string"},
                "grade": {"type": "number", "minimum": 0, "maximum": 100},
                "year_of_study": {"type": "integer"}
            }
        },
        "ReturnGradeRequest": {
            "type": "object",
            "required": ["reason"],
            "properties": {
                "reason": {"type": "string"}
            }
        },
        "EvaluateHonorsRequest": {
            "type": "object",
            "required": ["student_id", "academic_level_id", "school_year"],
            "properties": {
                "student_id": {"type": "string"},
                "academic_level_id": {"type": "string"},
                "school_year": {"type": "string"}
            }
        },
        "RejectHonorRequest": {
            "type": "object",
            "required": ["reason"],
            "properties": {
                "reason": {"type": "string"}
            }
        },
        "UpsertCriterionRequest": {
            "type": "object",
            "required": ["honor_type"],
            "properties": {
                "honor_type": {"type": "string"},
                "minimum_grade": {"type": "number"},
                "maximum_grade": {"type": "number"},
                "criteria_description": {"type": "string"},
                "academic_level_id": {"type": "string"},
                "is_active": {"type": "boolean"}
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
                "meta": {"type": "object"},
                "request_id": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "limit": {"type": "integer"},
                "total": {"type": "integer"},
                "total_pages": {"type": "integer"}
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
