package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Admissions Evaluation API",
        "description": "Applicant intake, rubric-based assessment, and admission decisions",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Per-role registration, login, and session status"},
        {"name": "Applicants", "description": "Applicant profile and document submission"},
        {"name": "Assessors", "description": "Evaluator worklist and applicant views"},
        {"name": "Evaluations", "description": "Rubric scoring and finalization"},
        {"name": "Admin", "description": "Roster, decisions, and account management"},
        {"name": "Reports", "description": "Evaluation summary PDFs and roster exports"}
    ],
    "paths": {
        "/auth/applicant/register": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Register applicant account",
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Email already registered"}
                }
            }
        },
        "/auth/applicant/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate applicant",
                "responses": {
                    "200": {"description": "Session cookie set"},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/assessor/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate assessor",
                "responses": {
                    "200": {"description": "Session cookie set"},
                    "403": {"description": "Account not approved"}
                }
            }
        },
        "/auth/admin/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate admin",
                "responses": {
                    "200": {"description": "Session cookie set"}
                }
            }
        },
        "/applicant/profile": {
            "get": {
                "tags": ["Applicants"],
                "summary": "Applicant profile with documents and assigned assessors",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/applicant/documents": {
            "post": {
                "tags": ["Applicants"],
                "summary": "Upload application documents",
                "responses": {
                    "201": {"description": "Stored"},
                    "400": {"description": "Oversized or disallowed file"}
                }
            }
        },
        "/assessor/applicants": {
            "get": {
                "tags": ["Assessors"],
                "summary": "Assigned applicants",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/assessor/evaluations": {
            "post": {
                "tags": ["Evaluations"],
                "summary": "Submit draft evaluation",
                "responses": {
                    "201": {"description": "Draft appended"},
                    "404": {"description": "Applicant not assigned"}
                }
            }
        },
        "/assessor/evaluations/finalize": {
            "post": {
                "tags": ["Evaluations"],
                "summary": "Finalize the most recent evaluation",
                "responses": {
                    "200": {"description": "Finalized"},
                    "400": {"description": "No evaluation to finalize"}
                }
            }
        },
        "/admin/applicants": {
            "get": {
                "tags": ["Admin"],
                "summary": "Applicant roster",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/admin/dashboard": {
            "get": {
                "tags": ["Admin"],
                "summary": "Dashboard statistics",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/admin/reports/{id}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Report job status",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        }
    },
    "definitions": {
        "Envelope": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "data": {"type": "object"},
                "error": {"type": "string"},
                "pagination": {"$ref": "#/definitions/Pagination"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "pageSize": {"type": "integer"},
                "total": {"type": "integer"},
                "totalPages": {"type": "integer"}
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
