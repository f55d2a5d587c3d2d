// Package docs holds the OpenAPI document served under /swagger.
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
        "/api/walks": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "walks"
                ],
                "summary": "List open walk requests",
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            },
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "walks"
                ],
                "summary": "Post a walk request for one of your dogs",
                "parameters": [
                    {
                        "description": "Request payload",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/api/walks/myrequests": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "walks"
                ],
                "summary": "List your open walk requests, newest first",
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/api/walks/dogs": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "walks"
                ],
                "summary": "List every dog with its owner",
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/api/walks/{id}/apply": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "walks"
                ],
                "summary": "Apply to walk an open request",
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Walk request ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/api/walks/{id}/complete": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "walks"
                ],
                "summary": "Mark an accepted walk as completed",
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Walk request ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/api/walks/{id}/cancel": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "walks"
                ],
                "summary": "Cancel an open or accepted walk",
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Walk request ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/api/walks/{id}/history": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "walks"
                ],
                "summary": "Status history of a walk request",
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Walk request ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/api/walkers/summary": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "walkers"
                ],
                "summary": "Ratings and completed walks per walker",
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/api/dogs": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "dogs"
                ],
                "summary": "Dog directory: name, size and owner",
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/api/users": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "users"
                ],
                "summary": "List users",
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/api/users/register": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "users"
                ],
                "summary": "Register a new user",
                "parameters": [
                    {
                        "description": "Request payload",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/api/users/login": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "users"
                ],
                "summary": "Login",
                "parameters": [
                    {
                        "description": "Request payload",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/api/users/logout": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "users"
                ],
                "summary": "Logout",
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/api/users/me": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "users"
                ],
                "summary": "Current session user",
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/api/users/me/dogs": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "users"
                ],
                "summary": "List the session owner's dogs",
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Dog Walk Marketplace API",
	Description:      "Owners post walk requests for their dogs; walkers apply to them.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
