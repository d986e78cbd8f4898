// Package docs registers the OpenAPI description served at /swagger.
package docs

import "github.com/swaggo/swag/v2"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "{{.Title}}",
        "description": "{{escape .Description}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "schemes": {{ marshal .Schemes }},
    "paths": {
        "/catalog/categories": {
            "get": {"tags": ["catalog"], "summary": "List product categories", "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.Response"}}}}
        },
        "/catalog/products": {
            "get": {"tags": ["catalog"], "summary": "List products in insertion order", "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.Response"}}}},
            "post": {"tags": ["catalog"], "summary": "Add a product or merge it into an existing one",
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/catalog.UpsertProductRequest"}}],
                "responses": {
                    "200": {"description": "Merged", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "503": {"description": "Snapshot write failed", "schema": {"$ref": "#/definitions/dto.Response"}}
                }}
        },
        "/catalog/products/preview": {
            "post": {"tags": ["catalog"], "summary": "Preview an upsert without storing it",
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/catalog.UpsertProductRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.Response"}}}}
        },
        "/catalog/products/lookup": {
            "get": {"tags": ["catalog"], "summary": "Find a product by name, ignoring case", "produces": ["application/json"],
                "parameters": [{"in": "query", "name": "name", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.Response"}}
                }}
        },
        "/catalog/products/export.csv": {
            "get": {"tags": ["catalog"], "summary": "Download the catalog as CSV", "produces": ["text/csv"],
                "responses": {"200": {"description": "OK", "schema": {"type": "file"}}}}
        },
        "/catalog/products/{id}": {
            "get": {"tags": ["catalog"], "summary": "Get a product by id", "produces": ["application/json"],
                "parameters": [{"in": "path", "name": "id", "type": "string", "format": "uuid", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.Response"}}
                }},
            "delete": {"tags": ["catalog"], "summary": "Remove a product", "produces": ["application/json"],
                "parameters": [{"in": "path", "name": "id", "type": "string", "format": "uuid", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.Response"}}}}
        },
        "/captures": {
            "post": {"tags": ["captures"], "summary": "Verify a captured image",
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/handler.CaptureRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "422": {"description": "Unusable image", "schema": {"$ref": "#/definitions/dto.Response"}}
                }}
        },
        "/invoices/quick": {
            "post": {"tags": ["invoices"], "summary": "Issue a single-product invoice",
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/invoice.QuickInvoiceRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.Response"}}
                }}
        },
        "/invoices/{id}": {
            "get": {"tags": ["invoices"], "summary": "Get an issued invoice", "produces": ["application/json"],
                "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.Response"}}
                }}
        },
        "/invoices/{id}/quantity": {
            "patch": {"tags": ["invoices"], "summary": "Change the quantity of a single-product invoice",
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "required": true},
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/invoice.UpdateQuantityRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.Response"}}}}
        },
        "/invoices/{id}/pdf": {
            "get": {"tags": ["invoices"], "summary": "Export an invoice as a paginated PDF", "produces": ["application/pdf"],
                "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "503": {"description": "Rendering or storage failed", "schema": {"$ref": "#/definitions/dto.Response"}}
                }}
        },
        "/invoice-drafts": {
            "post": {"tags": ["invoice-drafts"], "summary": "Open an invoice draft", "produces": ["application/json"],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.Response"}}}}
        },
        "/invoice-drafts/{id}": {
            "get": {"tags": ["invoice-drafts"], "summary": "Get an invoice draft", "produces": ["application/json"],
                "parameters": [{"in": "path", "name": "id", "type": "string", "format": "uuid", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.Response"}}}},
            "delete": {"tags": ["invoice-drafts"], "summary": "Discard an invoice draft",
                "parameters": [{"in": "path", "name": "id", "type": "string", "format": "uuid", "required": true}],
                "responses": {"204": {"description": "No Content"}}}
        },
        "/invoice-drafts/{id}/lines": {
            "post": {"tags": ["invoice-drafts"], "summary": "Add a product to a draft",
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "format": "uuid", "required": true},
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/invoice.AddLineRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.Response"}}}}
        },
        "/invoice-drafts/{id}/lines/{productId}": {
            "put": {"tags": ["invoice-drafts"], "summary": "Replace the quantity of a draft line",
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "format": "uuid", "required": true},
                    {"in": "path", "name": "productId", "type": "string", "format": "uuid", "required": true},
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/invoice.SetLineQuantityRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.Response"}}}},
            "delete": {"tags": ["invoice-drafts"], "summary": "Remove a product from a draft", "produces": ["application/json"],
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "format": "uuid", "required": true},
                    {"in": "path", "name": "productId", "type": "string", "format": "uuid", "required": true}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.Response"}}}}
        },
        "/invoice-drafts/{id}/finalize": {
            "post": {"tags": ["invoice-drafts"], "summary": "Finalize a draft into a composed invoice",
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "format": "uuid", "required": true},
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/invoice.FinalizeDraftRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.Response"}}
                }}
        }
    },
    "definitions": {
        "dto.Response": {"type": "object", "properties": {
            "success": {"type": "boolean"},
            "data": {},
            "error": {"$ref": "#/definitions/dto.ErrorInfo"}
        }},
        "dto.ErrorInfo": {"type": "object", "properties": {
            "code": {"type": "string", "example": "ERR_VALIDATION"},
            "message": {"type": "string"},
            "details": {"type": "object", "additionalProperties": {"type": "string"}},
            "request_id": {"type": "string"},
            "retryable": {"type": "boolean"}
        }},
        "catalog.ImageDTO": {"type": "object", "required": ["mime", "data"], "properties": {
            "mime": {"type": "string", "example": "image/png"},
            "data": {"type": "string", "description": "base64 payload"}
        }},
        "catalog.UpsertProductRequest": {"type": "object", "required": ["name", "category", "unit_price", "customer_name"], "properties": {
            "name": {"type": "string", "maxLength": 200, "example": "Hammer"},
            "category": {"type": "string", "maxLength": 100, "example": "Home & Garden"},
            "unit_price": {"type": "string", "example": "12.50"},
            "customer_name": {"type": "string", "maxLength": 200, "example": "Ana"},
            "image": {"$ref": "#/definitions/catalog.ImageDTO"}
        }},
        "handler.CaptureRequest": {"type": "object", "required": ["payload"], "properties": {
            "payload": {"type": "string", "description": "data URL or bare base64 image"}
        }},
        "invoice.QuickInvoiceRequest": {"type": "object", "required": ["product_id"], "properties": {
            "product_id": {"type": "string", "format": "uuid"},
            "quantity": {"description": "number or numeric string, defaults to 1"}
        }},
        "invoice.UpdateQuantityRequest": {"type": "object", "properties": {
            "quantity": {"description": "number or numeric string"}
        }},
        "invoice.AddLineRequest": {"type": "object", "required": ["product_id"], "properties": {
            "product_id": {"type": "string", "format": "uuid"},
            "quantity": {"type": "integer", "example": 1}
        }},
        "invoice.SetLineQuantityRequest": {"type": "object", "properties": {
            "quantity": {"type": "integer", "example": 2}
        }},
        "invoice.CustomerDTO": {"type": "object", "properties": {
            "name": {"type": "string"},
            "email": {"type": "string", "format": "email"},
            "phone": {"type": "string", "maxLength": 50},
            "address": {"type": "string", "maxLength": 500}
        }},
        "invoice.FinalizeDraftRequest": {"type": "object", "properties": {
            "customer": {"$ref": "#/definitions/invoice.CustomerDTO"},
            "notes": {"type": "string", "maxLength": 2000}
        }}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Instant Order API",
	Description:      "Product catalog, image capture and invoice export for the order kiosk.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
