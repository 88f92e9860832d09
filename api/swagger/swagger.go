// Package swagger serves the static OpenAPI document for the API explorer.
package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Kampos Xestion API",
        "description": "Grade book service for professors: students, subjects, enrollments, weighted grades, statistics and reports.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {"name": "Auth", "description": "Registration, login and profile"},
        {"name": "Students", "description": "Student roster and bulk import"},
        {"name": "Subjects", "description": "Subjects and evaluation configuration"},
        {"name": "Enrollments", "description": "Student/subject enrollments"},
        {"name": "Grades", "description": "Grade entry and computed finals"},
        {"name": "Stats", "description": "Subject and professor statistics"},
        {"name": "Reports", "description": "Asynchronous PDF/CSV/zip reports"},
        {"name": "Backup", "description": "Snapshot export, restore and migration"}
    ],
    "paths": {
        "/auth/register": {"post": {"tags": ["Auth"], "summary": "Register a professor account", "responses": {"201": {"description": "Created"}}}},
        "/auth/login": {"post": {"tags": ["Auth"], "summary": "Authenticate and issue a token", "responses": {"200": {"description": "OK"}}}},
        "/auth/me": {
            "get": {"tags": ["Auth"], "summary": "Get profile", "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["Auth"], "summary": "Update profile", "responses": {"200": {"description": "OK"}}}
        },
        "/students": {
            "get": {"tags": ["Students"], "summary": "List students", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["Students"], "summary": "Create a student", "responses": {"201": {"description": "Created"}}}
        },
        "/students/import": {"post": {"tags": ["Students"], "summary": "Bulk import students from CSV or JSON", "responses": {"200": {"description": "OK"}}}},
        "/students/{id}": {
            "get": {"tags": ["Students"], "summary": "Get one student", "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["Students"], "summary": "Update a student", "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["Students"], "summary": "Delete a student", "responses": {"204": {"description": "No Content"}, "409": {"description": "Blocked by enrollments"}}}
        },
        "/subjects": {
            "get": {"tags": ["Subjects"], "summary": "List subjects", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["Subjects"], "summary": "Create a subject", "responses": {"201": {"description": "Created"}}}
        },
        "/subjects/{id}": {
            "get": {"tags": ["Subjects"], "summary": "Get one subject", "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["Subjects"], "summary": "Update a subject", "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["Subjects"], "summary": "Delete a subject", "responses": {"204": {"description": "No Content"}, "409": {"description": "Blocked by enrollments"}}}
        },
        "/subjects/{id}/config": {"put": {"tags": ["Subjects"], "summary": "Replace evaluation configuration", "responses": {"200": {"description": "OK"}}}},
        "/enrollments": {
            "get": {"tags": ["Enrollments"], "summary": "List enrollments", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["Enrollments"], "summary": "Enroll a student", "responses": {"201": {"description": "Created"}, "409": {"description": "Already enrolled"}}}
        },
        "/enrollments/{id}": {"delete": {"tags": ["Enrollments"], "summary": "Delete enrollment and its grade record", "responses": {"204": {"description": "No Content"}}}},
        "/grades/subjects/{subjectId}/init": {"post": {"tags": ["Grades"], "summary": "Initialize grade records for enrolled students", "responses": {"200": {"description": "OK"}, "412": {"description": "No evaluation configuration"}}}},
        "/grades/subjects/{subjectId}": {"get": {"tags": ["Grades"], "summary": "List grade records of a subject", "responses": {"200": {"description": "OK"}}}},
        "/grades/students/{studentId}": {"get": {"tags": ["Grades"], "summary": "List a student's grade records", "responses": {"200": {"description": "OK"}}}},
        "/grades/students/{studentId}/subjects/{subjectId}": {
            "get": {"tags": ["Grades"], "summary": "Get one grade record", "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["Grades"], "summary": "Save entered scores", "responses": {"200": {"description": "OK"}}}
        },
        "/stats/overview": {"get": {"tags": ["Stats"], "summary": "Professor-wide overview", "responses": {"200": {"description": "OK"}}}},
        "/stats/subjects/{subjectId}": {"get": {"tags": ["Stats"], "summary": "Subject statistics", "responses": {"200": {"description": "OK"}}}},
        "/reports": {"post": {"tags": ["Reports"], "summary": "Queue a report job", "responses": {"202": {"description": "Accepted"}}}},
        "/reports/{id}": {"get": {"tags": ["Reports"], "summary": "Report job status", "responses": {"200": {"description": "OK"}}}},
        "/reports/download/{token}": {"get": {"tags": ["Reports"], "summary": "Download a finished report", "responses": {"200": {"description": "OK"}}}},
        "/backup/export": {"get": {"tags": ["Backup"], "summary": "Export snapshot", "responses": {"200": {"description": "OK"}}}},
        "/backup/restore": {"post": {"tags": ["Backup"], "summary": "Restore snapshot", "responses": {"200": {"description": "OK"}}}},
        "/migration/run": {"post": {"tags": ["Backup"], "summary": "Migrate file backend data to PostgreSQL", "responses": {"200": {"description": "OK"}}}}
    },
    "definitions": {
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
