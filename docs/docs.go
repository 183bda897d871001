// Package docs registers the storefront API reference with swag. The server
// serves it at /swagger/index.html when http.swagger_enabled is set.
package docs

import "github.com/swaggo/swag/v2"

const docTemplate = `{
    "openapi": "3.1.0",
    "info": {
        "title": "{{.Title}}",
        "description": "{{escape .Description}}",
        "version": "{{.Version}}"
    },
    "servers": [{"url": "{{.BasePath}}"}],
    "tags": [
        {"name": "catalog"}, {"name": "cart"}, {"name": "checkout"},
        {"name": "auth"}, {"name": "content"}, {"name": "admin"}
    ],
    "paths": {
        "/products": {
            "get": {
                "tags": ["catalog"],
                "summary": "List active products",
                "parameters": [
                    {"$ref": "#/components/parameters/page"},
                    {"$ref": "#/components/parameters/perPage"},
                    {"name": "category", "in": "query", "schema": {"type": "string"}},
                    {"name": "search", "in": "query", "schema": {"type": "string"}},
                    {"name": "in_stock", "in": "query", "schema": {"type": "boolean"}}
                ],
                "responses": {"200": {"$ref": "#/components/responses/ok"}}
            }
        },
        "/products/categories": {
            "get": {
                "tags": ["catalog"],
                "summary": "Categories with product counts",
                "responses": {"200": {"$ref": "#/components/responses/ok"}}
            }
        },
        "/products/{id}": {
            "get": {
                "tags": ["catalog"],
                "summary": "Product with reviews and average rating",
                "parameters": [{"$ref": "#/components/parameters/id"}],
                "responses": {
                    "200": {"$ref": "#/components/responses/ok"},
                    "404": {"$ref": "#/components/responses/error"}
                }
            }
        },
        "/products/{id}/reviews": {
            "post": {
                "tags": ["catalog"],
                "summary": "Add a review",
                "parameters": [{"$ref": "#/components/parameters/id"}],
                "requestBody": {"content": {"application/json": {"schema": {"$ref": "#/components/schemas/ReviewRequest"}}}},
                "responses": {
                    "201": {"$ref": "#/components/responses/ok"},
                    "400": {"$ref": "#/components/responses/error"}
                }
            }
        },
        "/cart": {
            "get": {
                "tags": ["cart"],
                "summary": "View the session cart",
                "responses": {"200": {"$ref": "#/components/responses/ok"}}
            }
        },
        "/cart/add": {
            "post": {
                "tags": ["cart"],
                "summary": "Add a product to the cart",
                "requestBody": {"content": {"application/json": {"schema": {"$ref": "#/components/schemas/CartAddRequest"}}}},
                "responses": {
                    "200": {"$ref": "#/components/responses/ok"},
                    "422": {"$ref": "#/components/responses/error"}
                }
            }
        },
        "/cart/update": {
            "put": {
                "tags": ["cart"],
                "summary": "Set a line quantity; zero removes the line",
                "responses": {"200": {"$ref": "#/components/responses/ok"}}
            }
        },
        "/cart/remove/{product_id}": {
            "delete": {
                "tags": ["cart"],
                "summary": "Remove a line",
                "parameters": [{"name": "product_id", "in": "path", "required": true, "schema": {"type": "string", "format": "uuid"}}],
                "responses": {"200": {"$ref": "#/components/responses/ok"}}
            }
        },
        "/cart/clear": {
            "delete": {
                "tags": ["cart"],
                "summary": "Empty the cart",
                "responses": {"200": {"$ref": "#/components/responses/ok"}}
            }
        },
        "/checkout/whatsapp": {
            "post": {
                "tags": ["checkout"],
                "summary": "Place an order from the session cart",
                "requestBody": {"content": {"application/json": {"schema": {"$ref": "#/components/schemas/WhatsAppCheckoutRequest"}}}},
                "responses": {
                    "201": {"$ref": "#/components/responses/ok"},
                    "422": {"$ref": "#/components/responses/error"}
                }
            }
        },
        "/orders": {
            "post": {
                "tags": ["checkout"],
                "summary": "Place an order from client supplied lines",
                "description": "Prices and totals are recomputed from the catalog.",
                "requestBody": {"content": {"application/json": {"schema": {"$ref": "#/components/schemas/CreateOrderRequest"}}}},
                "responses": {
                    "201": {"$ref": "#/components/responses/ok"},
                    "422": {"$ref": "#/components/responses/error"}
                }
            }
        },
        "/auth/register": {
            "post": {"tags": ["auth"], "summary": "Create a client account", "responses": {"201": {"$ref": "#/components/responses/ok"}, "409": {"$ref": "#/components/responses/error"}}}
        },
        "/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Exchange credentials for a token pair",
                "requestBody": {"content": {"application/json": {"schema": {"$ref": "#/components/schemas/LoginRequest"}}}},
                "responses": {"200": {"$ref": "#/components/responses/ok"}, "401": {"$ref": "#/components/responses/error"}}
            }
        },
        "/auth/refresh": {
            "post": {"tags": ["auth"], "summary": "Rotate a refresh token", "responses": {"200": {"$ref": "#/components/responses/ok"}}}
        },
        "/auth/me": {
            "get": {"tags": ["auth"], "summary": "Current user", "security": [{"BearerAuth": []}], "responses": {"200": {"$ref": "#/components/responses/ok"}}}
        },
        "/auth/logout": {
            "post": {"tags": ["auth"], "summary": "Revoke the access token", "security": [{"BearerAuth": []}], "responses": {"200": {"$ref": "#/components/responses/ok"}}}
        },
        "/auth/password": {
            "put": {"tags": ["auth"], "summary": "Change password", "security": [{"BearerAuth": []}], "responses": {"200": {"$ref": "#/components/responses/ok"}}}
        },
        "/articles": {
            "get": {"tags": ["content"], "summary": "Published articles", "parameters": [{"$ref": "#/components/parameters/page"}], "responses": {"200": {"$ref": "#/components/responses/ok"}}}
        },
        "/articles/{slug}": {
            "get": {"tags": ["content"], "summary": "Article by slug", "parameters": [{"$ref": "#/components/parameters/slug"}], "responses": {"200": {"$ref": "#/components/responses/ok"}, "404": {"$ref": "#/components/responses/error"}}}
        },
        "/case-studies": {
            "get": {"tags": ["content"], "summary": "Case studies", "responses": {"200": {"$ref": "#/components/responses/ok"}}}
        },
        "/case-studies/{slug}": {
            "get": {"tags": ["content"], "summary": "Case study by slug", "parameters": [{"$ref": "#/components/parameters/slug"}], "responses": {"200": {"$ref": "#/components/responses/ok"}, "404": {"$ref": "#/components/responses/error"}}}
        },
        "/admin/products": {
            "get": {"tags": ["admin"], "summary": "All products including inactive", "security": [{"BearerAuth": []}], "responses": {"200": {"$ref": "#/components/responses/ok"}}},
            "post": {"tags": ["admin"], "summary": "Create a product", "security": [{"BearerAuth": []}], "responses": {"201": {"$ref": "#/components/responses/ok"}}}
        },
        "/admin/products/{id}": {
            "put": {"tags": ["admin"], "summary": "Update a product", "security": [{"BearerAuth": []}], "parameters": [{"$ref": "#/components/parameters/id"}], "responses": {"200": {"$ref": "#/components/responses/ok"}}},
            "delete": {"tags": ["admin"], "summary": "Delete a product", "security": [{"BearerAuth": []}], "parameters": [{"$ref": "#/components/parameters/id"}], "responses": {"200": {"$ref": "#/components/responses/ok"}}}
        },
        "/admin/orders": {
            "get": {"tags": ["admin"], "summary": "Orders, newest first", "security": [{"BearerAuth": []}], "parameters": [{"name": "status", "in": "query", "schema": {"type": "string"}}], "responses": {"200": {"$ref": "#/components/responses/ok"}}}
        },
        "/admin/orders/export_csv": {
            "get": {
                "tags": ["admin"],
                "summary": "Orders as CSV",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "CSV attachment", "content": {"text/csv": {}}}}
            }
        },
        "/admin/orders/{id}/status": {
            "put": {"tags": ["admin"], "summary": "Move an order to another status", "security": [{"BearerAuth": []}], "parameters": [{"$ref": "#/components/parameters/id"}], "responses": {"200": {"$ref": "#/components/responses/ok"}, "422": {"$ref": "#/components/responses/error"}}}
        },
        "/admin/orders/{id}/slip.pdf": {
            "get": {
                "tags": ["admin"],
                "summary": "Printable order slip",
                "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/components/parameters/id"}],
                "responses": {"200": {"description": "PDF document", "content": {"application/pdf": {}}}}
            }
        },
        "/admin/stock_alerts": {
            "get": {
                "tags": ["admin"],
                "summary": "Low-stock event stream",
                "description": "Server-sent events. EventSource clients pass the access token as jwt_token.",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "jwt_token", "in": "query", "schema": {"type": "string"}}],
                "responses": {"200": {"description": "Event stream", "content": {"text/event-stream": {}}}}
            }
        }
    },
    "components": {
        "securitySchemes": {
            "BearerAuth": {"type": "http", "scheme": "bearer", "bearerFormat": "JWT"}
        },
        "parameters": {
            "id": {"name": "id", "in": "path", "required": true, "schema": {"type": "string", "format": "uuid"}},
            "slug": {"name": "slug", "in": "path", "required": true, "schema": {"type": "string"}},
            "page": {"name": "page", "in": "query", "schema": {"type": "integer", "minimum": 1}},
            "perPage": {"name": "per_page", "in": "query", "schema": {"type": "integer", "minimum": 1, "maximum": 100}}
        },
        "responses": {
            "ok": {"description": "Success envelope", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/Response"}}}},
            "error": {"description": "Error envelope", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/Response"}}}}
        },
        "schemas": {
            "Response": {
                "type": "object",
                "properties": {
                    "success": {"type": "boolean"},
                    "data": {},
                    "error": {"$ref": "#/components/schemas/ErrorInfo"},
                    "meta": {"$ref": "#/components/schemas/Meta"}
                }
            },
            "ErrorInfo": {
                "type": "object",
                "properties": {
                    "code": {"type": "string", "examples": ["ERR_INSUFFICIENT_STOCK"]},
                    "message": {"type": "string"},
                    "request_id": {"type": "string"},
                    "timestamp": {"type": "string", "format": "date-time"},
                    "details": {"type": "array", "items": {"type": "object", "properties": {"field": {"type": "string"}, "message": {"type": "string"}, "code": {"type": "string"}}}}
                }
            },
            "Meta": {
                "type": "object",
                "properties": {
                    "total": {"type": "integer"},
                    "page": {"type": "integer"},
                    "page_size": {"type": "integer"},
                    "total_pages": {"type": "integer"}
                }
            },
            "ReviewRequest": {
                "type": "object",
                "required": ["author_name", "rating", "comment"],
                "properties": {
                    "author_name": {"type": "string", "maxLength": 100},
                    "rating": {"type": "integer", "minimum": 1, "maximum": 5},
                    "comment": {"type": "string"}
                }
            },
            "CartAddRequest": {
                "type": "object",
                "required": ["product_id"],
                "properties": {
                    "product_id": {"type": "string", "format": "uuid"},
                    "quantity": {"type": "integer", "minimum": 1}
                }
            },
            "WhatsAppCheckoutRequest": {
                "type": "object",
                "required": ["customer"],
                "properties": {
                    "customer": {"type": "object", "required": ["name"], "properties": {"name": {"type": "string"}, "phone": {"type": "string"}}}
                }
            },
            "CreateOrderRequest": {
                "type": "object",
                "required": ["cart_items", "customer_name"],
                "properties": {
                    "cart_items": {"type": "array", "items": {"type": "object", "required": ["id", "quantity"], "properties": {"id": {"type": "string", "format": "uuid"}, "quantity": {"type": "integer", "minimum": 1}}}},
                    "customer_name": {"type": "string"},
                    "total_price": {"type": "string", "description": "Ignored; the server recomputes totals"},
                    "whatsapp_message": {"type": "string"}
                }
            },
            "LoginRequest": {
                "type": "object",
                "required": ["username", "password"],
                "properties": {"username": {"type": "string"}, "password": {"type": "string", "format": "password"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Dental Shop API",
	Description:      "Storefront and back-office API for a dental equipment shop.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
