package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "2school API",
        "description": "Role-based school management backend",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Authentication"},
        {"name": "Users", "description": "Account lifecycle"},
        {"name": "Classes", "description": "Classrooms and rosters"},
        {"name": "Subjects", "description": "Subject catalog"},
        {"name": "Items", "description": "Homework and disciplinary files"},
        {"name": "Grades", "description": "Student marks"}
    ],
    "paths": {
        "/": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate with email and password",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Token in Authorization header", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Wrong username or password"}
                }
            }
        },
        "/signup": {
            "post": {
                "tags": ["Users"],
                "summary": "Create an account with a mailed temporary password (admin only)",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SignupRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "User already exists"}
                }
            }
        },
        "/getUser/{id}": {
            "get": {
                "tags": ["Users"],
                "summary": "Get a user profile",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/modifyUser/{id}": {
            "patch": {
                "tags": ["Users"],
                "summary": "Update a user profile; self-edits get a fresh token",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ModifyUserRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/deleteUser/{id}": {
            "delete": {
                "tags": ["Users"],
                "summary": "Delete an account and everything referencing it (admin only)",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Deleted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/getAllUsers": {
            "get": {
                "tags": ["Users"],
                "summary": "List every account grouped by role (admin only)",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/getClasses/{userId}": {
            "get": {
                "tags": ["Classes"],
                "summary": "List the classrooms visible to the caller",
                "parameters": [
                    {"name": "userId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/getClass/{id}": {
            "get": {
                "tags": ["Classes"],
                "summary": "Get a classroom with every reference resolved",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Not a member of the classroom"}
                }
            }
        },
        "/createClass": {
            "post": {
                "tags": ["Classes"],
                "summary": "Create a classroom (admin only)",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateClassRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/addUserToClass": {
            "put": {
                "tags": ["Classes"],
                "summary": "Add a teacher or student to a roster (admin only)",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AddUserToClassRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exportClass/{id}": {
            "get": {
                "tags": ["Classes"],
                "summary": "Export the classroom roster as CSV or PDF (admin only)",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File download"}
                }
            }
        },
        "/createSubject": {
            "post": {
                "tags": ["Subjects"],
                "summary": "Create a subject (admin only)",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateSubjectRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Subject already exists"}
                }
            }
        },
        "/getSubjects": {
            "get": {
                "tags": ["Subjects"],
                "summary": "List the subject catalog",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/addSubjectToTeacher": {
            "put": {
                "tags": ["Subjects"],
                "summary": "Assign a subject to a teacher (admin only)",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AddSubjectToTeacherRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/addHomeworkToClass": {
            "post": {
                "tags": ["Items"],
                "summary": "Publish homework, optionally with a multipart attachment (teacher only)",
                "consumes": ["multipart/form-data", "application/json"],
                "parameters": [
                    {"name": "classId", "in": "query", "required": true, "type": "string"},
                    {"name": "content", "in": "formData", "type": "string"},
                    {"name": "subjectId", "in": "formData", "required": true, "type": "string"},
                    {"name": "teacherId", "in": "formData", "required": true, "type": "string"},
                    {"name": "attachment", "in": "formData", "type": "file"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Accumulated validation errors", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/getHomeworks/{classId}": {
            "get": {
                "tags": ["Items"],
                "summary": "List a classroom's homework",
                "parameters": [
                    {"name": "classId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/addReport/{classId}": {
            "post": {
                "tags": ["Items"],
                "summary": "File a disciplinary report (teacher only)",
                "parameters": [
                    {"name": "classId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateReportRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Accumulated validation errors", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/getReports/{classId}": {
            "get": {
                "tags": ["Items"],
                "summary": "List a classroom's disciplinary files",
                "parameters": [
                    {"name": "classId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/modifyItem": {
            "patch": {
                "tags": ["Items"],
                "summary": "Update a homework or disciplinary file (author or admin)",
                "parameters": [
                    {"name": "itemId", "in": "query", "required": true, "type": "string"},
                    {"name": "classId", "in": "query", "required": false, "type": "string", "description": "Required for homework"},
                    {"name": "itemType", "in": "query", "required": true, "type": "string", "enum": ["homework", "disciplinaryFile"]},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ModifyItemRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/deleteItem": {
            "delete": {
                "tags": ["Items"],
                "summary": "Delete a homework or disciplinary file (author or admin)",
                "parameters": [
                    {"name": "itemId", "in": "query", "required": true, "type": "string"},
                    {"name": "itemType", "in": "query", "required": true, "type": "string", "enum": ["homework", "disciplinaryFile"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/addGrade": {
            "post": {
                "tags": ["Grades"],
                "summary": "Record a mark for a student (teacher only)",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AddGradeRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/getGrades/{studentId}": {
            "get": {
                "tags": ["Grades"],
                "summary": "List a student's grades",
                "parameters": [
                    {"name": "studentId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
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
        "SignupRequest": {
            "type": "object",
            "properties": {
                "firstName": {"type": "string"},
                "lastName": {"type": "string"},
                "email": {"type": "string"},
                "userCategory": {"type": "integer", "enum": [345, 589, 118]},
                "avatar": {"type": "string"}
            },
            "required": ["firstName", "lastName", "email", "userCategory"]
        },
        "ModifyUserRequest": {
            "type": "object",
            "properties": {
                "firstName": {"type": "string"},
                "lastName": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"},
                "avatar": {"type": "string"}
            }
        },
        "CreateClassRequest": {
            "type": "object",
            "properties": {
                "section": {"type": "string"},
                "gradeOfClass": {"type": "integer"},
                "logo": {"type": "string"}
            },
            "required": ["section", "gradeOfClass"]
        },
        "AddUserToClassRequest": {
            "type": "object",
            "properties": {
                "userId": {"type": "string"},
                "classId": {"type": "string"}
            },
            "required": ["userId", "classId"]
        },
        "CreateSubjectRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"}
            },
            "required": ["name"]
        },
        "AddSubjectToTeacherRequest": {
            "type": "object",
            "properties": {
                "teacherId": {"type": "string"},
                "subjectId": {"type": "string"}
            },
            "required": ["teacherId", "subjectId"]
        },
        "CreateReportRequest": {
            "type": "object",
            "properties": {
                "content": {"type": "string"},
                "classId": {"type": "string"},
                "teacherId": {"type": "string"},
                "studentId": {"type": "string"}
            },
            "required": ["content", "teacherId"]
        },
        "ModifyItemRequest": {
            "type": "object",
            "properties": {
                "itemType": {"type": "string", "enum": ["homework", "disciplinaryFile"]},
                "itemId": {"type": "string"},
                "classId": {"type": "string"},
                "content": {"type": "string"},
                "subjectId": {"type": "string"}
            }
        },
        "AddGradeRequest": {
            "type": "object",
            "properties": {
                "value": {"type": "integer", "minimum": 2, "maximum": 10},
                "studentId": {"type": "string"},
                "subjectId": {"type": "string"},
                "teacherId": {"type": "string"}
            },
            "required": ["value", "studentId", "subjectId", "teacherId"]
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "statusCode": {"type": "integer"},
                "message": {"type": "string"},
                "errors": {"type": "array", "items": {"type": "string"}},
                "tokenExpired": {"type": "boolean"}
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
