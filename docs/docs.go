// Package docs registers the Swagger document served at /swagger.
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
        "/locks": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["locks"],
                "summary": "Acquire a hold on a slot",
                "parameters": [
                    {"description": "Hold request", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/lock.AcquireRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/lock.AcquireResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/locks/{holdID}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["locks"],
                "summary": "Get hold",
                "parameters": [{"type": "string", "description": "Hold ID", "name": "holdID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/lock.Hold"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["locks"],
                "summary": "Release a hold",
                "parameters": [{"type": "string", "description": "Hold ID", "name": "holdID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.OKResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/slots/{slotID}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["slots"],
                "summary": "Get slot",
                "parameters": [{"type": "string", "description": "Slot ID", "name": "slotID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/slot.Slot"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/facilities/{facilityID}/slots": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["slots"],
                "summary": "List facility slots",
                "parameters": [
                    {"type": "string", "description": "Facility ID", "name": "facilityID", "in": "path", "required": true},
                    {"type": "string", "description": "RFC3339 lower bound on start time", "name": "from", "in": "query"},
                    {"type": "string", "description": "RFC3339 upper bound on start time", "name": "to", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/slot.Slot"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/payments/captured": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Final payment signal. Books the slots regardless of holds. Repeated signals with the same externalRef return the existing booking with created=false.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["bookings"],
                "summary": "Confirm a paid booking",
                "parameters": [
                    {"description": "Captured payment", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/booking.PaymentCapturedRequest"}}
                ],
                "responses": {
                    "200": {"description": "Duplicate signal", "schema": {"$ref": "#/definitions/booking.ConfirmResponse"}},
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/booking.ConfirmResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/bookings": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["bookings"],
                "summary": "Sell slots at the front desk",
                "parameters": [
                    {"description": "Walk-in sale", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/booking.CounterSaleRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/booking.ConfirmResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/bookings/{bookingID}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["bookings"],
                "summary": "Get booking",
                "parameters": [{"type": "string", "description": "Booking ID", "name": "bookingID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/booking.Booking"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Health check",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/api.HealthResponse"}}}
            }
        },
        "/metrics": {
            "get": {
                "description": "Exposes Prometheus metrics in text format",
                "produces": ["text/plain"],
                "tags": ["system"],
                "summary": "Prometheus metrics",
                "responses": {"200": {"description": "OK", "schema": {"type": "string"}}}
            }
        }
    },
    "definitions": {
        "api.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "string", "example": "SLOT_LOCKED"},
                "error": {"type": "string", "example": "something went wrong"}
            }
        },
        "api.OKResponse": {
            "type": "object",
            "properties": {"ok": {"type": "boolean", "example": true}}
        },
        "api.HealthResponse": {
            "type": "object",
            "properties": {"status": {"type": "string", "example": "ok"}}
        },
        "lock.AcquireRequest": {
            "type": "object",
            "required": ["slotId"],
            "properties": {
                "slotId": {"type": "string"},
                "ttlMs": {"type": "integer"},
                "metadata": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "lock.AcquireResponse": {
            "type": "object",
            "properties": {
                "holdId": {"type": "string"},
                "slotId": {"type": "string"},
                "expiresAt": {"type": "string"}
            }
        },
        "lock.Hold": {
            "type": "object",
            "properties": {
                "holdId": {"type": "string"},
                "slotId": {"type": "string"},
                "holderId": {"type": "string"},
                "expiresAt": {"type": "string"},
                "metadata": {"type": "object", "additionalProperties": {"type": "string"}},
                "createdAt": {"type": "string"}
            }
        },
        "slot.Slot": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "facilityId": {"type": "string"},
                "ground": {"type": "string"},
                "startTime": {"type": "string"},
                "endTime": {"type": "string"},
                "status": {"type": "string", "enum": ["available", "locked", "booked", "blocked"]},
                "holderId": {"type": "string"},
                "lockedAt": {"type": "string"},
                "lockExpiresAt": {"type": "string"},
                "bookingId": {"type": "string"},
                "customerName": {"type": "string"},
                "channel": {"type": "string"}
            }
        },
        "booking.PaymentCapturedRequest": {
            "type": "object",
            "required": ["slotIds", "customerName"],
            "properties": {
                "slotIds": {"type": "array", "items": {"type": "string"}},
                "customerName": {"type": "string"},
                "customerPhone": {"type": "string"},
                "amount": {"type": "integer"},
                "externalRef": {"type": "string"},
                "channel": {"type": "string"}
            }
        },
        "booking.CounterSaleRequest": {
            "type": "object",
            "required": ["slotIds", "customerName"],
            "properties": {
                "slotIds": {"type": "array", "items": {"type": "string"}},
                "customerName": {"type": "string"},
                "customerPhone": {"type": "string"},
                "amount": {"type": "integer"}
            }
        },
        "booking.Booking": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "facilityId": {"type": "string"},
                "slotIds": {"type": "array", "items": {"type": "string"}},
                "customerName": {"type": "string"},
                "customerPhone": {"type": "string"},
                "amount": {"type": "integer"},
                "status": {"type": "string"},
                "paymentStatus": {"type": "string"},
                "channel": {"type": "string"},
                "externalRef": {"type": "string"},
                "createdAt": {"type": "string"}
            }
        },
        "booking.ConfirmResponse": {
            "type": "object",
            "properties": {
                "booking": {"$ref": "#/definitions/booking.Booking"},
                "created": {"type": "boolean"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Groundslot API",
	Description:      "Slot hold and booking arbitration across sales channels.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
