// Package docs holds the OpenAPI description served under /swagger.
// Regenerate with `swag init -g cmd/server/main.go` after changing handler annotations.
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
        "/": {
            "get": {
                "description": "Reports whether the visitor is signed in and where to sign in.",
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Landing",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.LandingResponse"}}
                }
            }
        },
        "/signin": {
            "get": {
                "description": "Sign-in screen data with the cached user hint.",
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Sign-in page",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.SigninPageResponse"}}
                }
            },
            "post": {
                "description": "Signs in against the backend and stores the session.",
                "consumes": ["application/json", "application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Sign in",
                "parameters": [
                    {"description": "Credentials", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.SigninRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.SigninResponse"}},
                    "303": {"description": "See Other"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/logout": {
            "post": {
                "description": "Ends the session. The local session is always cleared.",
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Sign out",
                "responses": {
                    "200": {"description": "OK"},
                    "303": {"description": "See Other"}
                }
            }
        },
        "/me": {
            "get": {
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Verified user of the session",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.User"}},
                    "302": {"description": "Found"}
                }
            }
        },
        "/main-menu": {
            "get": {
                "description": "Current user and the projects they may launch.",
                "produces": ["application/json"],
                "tags": ["portal"],
                "summary": "Main menu",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Dashboard"}},
                    "202": {"description": "Accepted"},
                    "302": {"description": "Found"},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/projects/{id}/launch": {
            "get": {
                "description": "Redirects to the line-of-business application of the project.",
                "tags": ["portal"],
                "summary": "Launch a project",
                "parameters": [
                    {"type": "string", "description": "Project ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "302": {"description": "Found"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/api/users": {
            "get": {
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "List users",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.User"}}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Create user",
                "parameters": [
                    {"description": "User", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.CreateUserInput"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/model.User"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/api/audit-logs": {
            "get": {
                "produces": ["application/json"],
                "tags": ["audit-logs"],
                "summary": "List audit logs",
                "parameters": [
                    {"type": "string", "name": "search", "in": "query"},
                    {"type": "string", "name": "action", "in": "query"},
                    {"type": "string", "name": "entity_type", "in": "query"},
                    {"type": "string", "name": "date_from", "in": "query"},
                    {"type": "string", "name": "date_to", "in": "query"},
                    {"type": "integer", "name": "per_page", "in": "query"},
                    {"type": "integer", "name": "page", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.AuditLogPage"}}
                }
            }
        },
        "/api/departments": {
            "get": {
                "produces": ["application/json"],
                "tags": ["departments"],
                "summary": "List departments",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.Department"}}}
                }
            }
        }
    },
    "definitions": {
        "errors.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "error": {"type": "string"}
            }
        },
        "handler.LandingResponse": {
            "type": "object",
            "properties": {
                "authenticated": {"type": "boolean"},
                "signin_url": {"type": "string"}
            }
        },
        "handler.SigninPageResponse": {
            "type": "object",
            "properties": {
                "authenticated": {"type": "boolean"},
                "user": {"$ref": "#/definitions/model.User"}
            }
        },
        "handler.SigninRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"},
                "return_to": {"type": "string"}
            }
        },
        "handler.SigninResponse": {
            "type": "object",
            "properties": {
                "redirect": {"type": "string"},
                "user": {"$ref": "#/definitions/model.User"}
            }
        },
        "model.Role": {
            "type": "object",
            "properties": {
                "level": {"type": "integer"},
                "name": {"type": "string"},
                "slug": {"type": "string"}
            }
        },
        "model.User": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "role": {"$ref": "#/definitions/model.Role"},
                "username": {"type": "string"}
            }
        },
        "model.CreateUserInput": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "name": {"type": "string"},
                "password": {"type": "string"},
                "role_id": {"type": "integer"},
                "username": {"type": "string"}
            }
        },
        "model.Department": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"}
            }
        },
        "model.Dashboard": {
            "type": "object",
            "properties": {
                "projects": {"type": "array", "items": {"type": "object"}},
                "user": {"$ref": "#/definitions/model.User"}
            }
        },
        "model.AuditLogPage": {
            "type": "object",
            "properties": {
                "logs": {"type": "array", "items": {"type": "object"}},
                "pagination": {"type": "object"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "Sphere Portal API",
	Description:      "Single sign-on portal in front of the Sphere backend API.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
