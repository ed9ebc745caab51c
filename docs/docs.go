// Package docs holds the OpenAPI description served at /swagger.
// Keep it in step with the handler annotations when routes change.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
	"schemes": {{ marshal .Schemes }},
	"swagger": "2.0",
	"info": {
		"description": "{{escape .Description}}",
		"title": "{{.Title}}",
		"contact": {
			"name": "API Support",
			"email": "support@straye.io"
		},
		"license": {
			"name": "MIT",
			"url": "https://opensource.org/licenses/MIT"
		},
		"version": "{{.Version}}"
	},
	"host": "{{.Host}}",
	"basePath": "{{.BasePath}}",
	"paths": {
		"/auth/me": {
			"get": {
				"security": [
					{
						"BearerAuth": []
					},
					{
						"ApiKeyAuth": []
					}
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"Auth"
				],
				"summary": "Current user",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					}
				}
			}
		},
		"/reference": {
			"get": {
				"security": [
					{
						"BearerAuth": []
					},
					{
						"ApiKeyAuth": []
					}
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"Reference"
				],
				"summary": "Active reference data version",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					}
				}
			}
		},
		"/reference/phase-in": {
			"get": {
				"security": [
					{
						"BearerAuth": []
					},
					{
						"ApiKeyAuth": []
					}
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"Reference"
				],
				"summary": "Phase-in schedule",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "array",
							"items": {
								"type": "object"
							}
						}
					}
				}
			}
		},
		"/reference/categories": {
			"get": {
				"security": [
					{
						"BearerAuth": []
					},
					{
						"ApiKeyAuth": []
					}
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"Reference"
				],
				"summary": "Goods categories and CN heading bands",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "array",
							"items": {
								"type": "object"
							}
						}
					}
				}
			}
		},
		"/reference/country-tiers": {
			"get": {
				"security": [
					{
						"BearerAuth": []
					},
					{
						"ApiKeyAuth": []
					}
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"Reference"
				],
				"summary": "Country markup tiers",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "array",
							"items": {
								"type": "object"
							}
						}
					}
				}
			}
		},
		"/calculations": {
			"post": {
				"security": [
					{
						"BearerAuth": []
					},
					{
						"ApiKeyAuth": []
					}
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"Calculations"
				],
				"summary": "Calculate an ad-hoc record",
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/domain.CalculationRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					},
					"400": {
						"description": "Invalid input",
						"schema": {
							"$ref": "#/definitions/domain.APIError"
						}
					}
				}
			}
		},
		"/calculations/preview": {
			"post": {
				"security": [
					{
						"BearerAuth": []
					},
					{
						"ApiKeyAuth": []
					}
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"Calculations"
				],
				"summary": "Conservative preview of an ad-hoc record",
				"description": "Display figure only; never used for submission.",
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/domain.CalculationRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					},
					"400": {
						"description": "Invalid input",
						"schema": {
							"$ref": "#/definitions/domain.APIError"
						}
					}
				}
			}
		},
		"/calculations/certificates": {
			"post": {
				"security": [
					{
						"BearerAuth": []
					},
					{
						"ApiKeyAuth": []
					}
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"Calculations"
				],
				"summary": "Certificates for explicit totals",
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/domain.CertificateRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					},
					"400": {
						"description": "Invalid input",
						"schema": {
							"$ref": "#/definitions/domain.APIError"
						}
					}
				}
			}
		},
		"/defaults/resolve": {
			"post": {
				"security": [
					{
						"BearerAuth": []
					},
					{
						"ApiKeyAuth": []
					}
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"Calculations"
				],
				"summary": "Resolve the marked-up default value for a CN code",
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/domain.ResolveDefaultRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					},
					"400": {
						"description": "Invalid input",
						"schema": {
							"$ref": "#/definitions/domain.APIError"
						}
					},
					"404": {
						"description": "No applicable default",
						"schema": {
							"$ref": "#/definitions/domain.APIError"
						}
					}
				}
			}
		},
		"/entries": {
			"get": {
				"security": [
					{
						"BearerAuth": []
					},
					{
						"ApiKeyAuth": []
					}
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"Entries"
				],
				"summary": "List entries",
				"parameters": [
					{
						"type": "integer",
						"description": "Page number",
						"name": "page",
						"in": "query"
					},
					{
						"type": "integer",
						"description": "Page size",
						"name": "pageSize",
						"in": "query"
					},
					{
						"type": "integer",
						"description": "Filter by reporting year",
						"name": "reportingYear",
						"in": "query"
					},
					{
						"type": "string",
						"description": "Filter by CN code prefix",
						"name": "cnCode",
						"in": "query"
					},
					{
						"type": "string",
						"description": "Filter by country of origin",
						"name": "country",
						"in": "query"
					},
					{
						"type": "string",
						"description": "Filter by validation status",
						"name": "validationStatus",
						"in": "query"
					},
					{
						"type": "string",
						"description": "Filter by verification status",
						"name": "verificationStatus",
						"in": "query"
					},
					{
						"type": "boolean",
						"description": "Filter by submission",
						"name": "submitted",
						"in": "query"
					},
					{
						"type": "string",
						"description": "Search reference, description and importer",
						"name": "search",
						"in": "query"
					},
					{
						"type": "string",
						"description": "Sort field",
						"name": "sortBy",
						"in": "query"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/domain.PaginatedResponse"
						}
					},
					"400": {
						"description": "Invalid input",
						"schema": {
							"$ref": "#/definitions/domain.APIError"
						}
					}
				}
			},
			"post": {
				"security": [
					{
						"BearerAuth": []
					},
					{
						"ApiKeyAuth": []
					}
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"Entries"
				],
				"summary": "Create entry",
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/domain.CreateEntryRequest"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/domain.EntryDTO"
						}
					},
					"400": {
						"description": "Invalid input",
						"schema": {
							"$ref": "#/definitions/domain.APIError"
						}
					}
				}
			}
		},
		"/entries/{id}": {
			"get": {
				"security": [
					{
						"BearerAuth": []
					},
					{
						"ApiKeyAuth": []
					}
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"Entries"
				],
				"summary": "Get entry",
				"parameters": [
					{
						"type": "string",
						"format": "uuid",
						"description": "Entry ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/domain.EntryDTO"
						}
					},
					"404": {
						"description": "Not found",
						"schema": {
							"$ref": "#/definitions/domain.APIError"
						}
					}
				}
			},
			"put": {
				"security": [
					{
						"BearerAuth": []
					},
					{
						"ApiKeyAuth": []
					}
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"Entries"
				],
				"summary": "Update entry",
				"description": "Each present field is checked against the capabilities of the entry's current state.",
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"format": "uuid",
						"description": "Entry ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/domain.UpdateEntryRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/domain.EntryDTO"
						}
					},
					"400": {
						"description": "Invalid input",
						"schema": {
							"$ref": "#/definitions/domain.APIError"
						}
					},
					"404": {
						"description": "Not found",
						"schema": {
							"$ref": "#/definitions/domain.APIError"
						}
					},
					"409": {
						"description": "Not allowed in the entry's current state",
						"schema": {
							"$ref": "#/definitions/domain.APIError"
						}
					}
				}
			},
			"delete": {
				"security": [
					{
						"BearerAuth": []
					},
					{
						"ApiKeyAuth": []
					}
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"Entries"
				],
				"summary": "Delete entry",
				"parameters": [
					{
						"type": "string",
						"format": "uuid",
						"description": "Entry ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"204": {
						"description": "No Content"
					},
					"404": {
						"description": "Not found",
						"schema": {
							"$ref": "#/definitions/domain.APIError"
						}
					},
					"409": {
						"description": "Not allowed in the entry's current state",
						"schema": {
							"$ref": "#/definitions/domain.APIError"
						}
					}
				}
			}
		},
		"/entries/{id}/precursors": {
			"post": {
				"security": [
					{
						"BearerAuth": []
					},
					{
						"ApiKeyAuth": []
					}
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"Entries"
				],
				"summary": "Add precursor",
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"format": "uuid",
						"description": "Entry ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/domain.PrecursorRequest"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/domain.EntryDTO"
						}
					},
					"400": {
						"description": "Invalid input",
						"schema": {
							"$ref": "#/definitions/domain.APIError"
						}
					},
					"404": {
						"description": "Not found",
						"schema": {
							"$ref": "#/definitions/domain.APIError"
						}
					},
					"409": {
						"description": "Not allowed in the entry's current state",
						"schema": {
							"$ref": "#/definitions/domain.APIError"
						}
					}
				}
			}
		},
		"/entries/{id}/precursors/{precursorId}": {
			"delete": {
				"security": [
					{
						"BearerAuth": []
					},
					{
						"ApiKeyAuth": []
					}
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"Entries"
				],
				"summary": "Remove precursor",
				"parameters": [
					{
						"type": "string",
						"format": "uuid",
						"description": "Entry ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"type": "string",
						"format": "uuid",
						"description": "Precursor ID",
						"name": "precursorId",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/domain.EntryDTO"
						}
					},
					"404": {
						"description": "Not found",
						"schema": {
							"$ref": "#/definitions/domain.APIError"
						}
					},
					"409": {
						"description": "Not allowed in the entry's current state",
						"schema": {
							"$ref": "#/definitions/domain.APIError"
						}
					}
				}
			}
		},
		"/entries/{id}/validation": {
			"post": {
				"security": [
					{
						"BearerAuth": []
					},
					{
						"ApiKeyAuth": []
					}
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"Review"
				],
				"summary": "Record validation outcome",
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"format": "uuid",
						"description": "Entry ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/domain.RecordValidationRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/domain.EntryDTO"
						}
					},
					"400": {
						"description": "Invalid input",
						"schema": {
							"$ref": "#/definitions/domain.APIError"
						}
					},
					"404": {
						"description": "Not found",
						"schema": {
							"$ref": "#/definitions/domain.APIError"
						}
					},
					"409": {
						"description": "Not allowed in the entry's current state",
						"schema": {
							"$ref": "#/definitions/domain.APIError"
						}
					}
				}
			}
		},
		"/entries/{id}/verification": {
			"post": {
				"security": [
					{
						"BearerAuth": []
					},
					{
						"ApiKeyAuth": []
					}
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"Review"
				],
				"summary": "Record verifier opinion",
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"format": "uuid",
						"description": "Entry ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/domain.RecordVerificationRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/domain.EntryDTO"
						}
					},
					"400": {
						"description": "Invalid input",
						"schema": {
							"$ref": "#/definitions/domain.APIError"
						}
					},
					"403": {
						"description": "Verifier role required",
						"schema": {
							"$ref": "#/definitions/domain.APIError"
						}
					},
					"404": {
						"description": "Not found",
						"schema": {
							"$ref": "#/definitions/domain.APIError"
						}
					},
					"409": {
						"description": "Not allowed in the entry's current state",
						"schema": {
							"$ref": "#/definitions/domain.APIError"
						}
					}
				}
			}
		},
		"/entries/{id}/request-change": {
			"post": {
				"security": [
					{
						"BearerAuth": []
					},
					{
						"ApiKeyAuth": []
					}
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"Review"
				],
				"summary": "Send a reviewed entry back to validation",
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"format": "uuid",
						"description": "Entry ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/domain.RequestChangeRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/domain.EntryDTO"
						}
					},
					"400": {
						"description": "Invalid input",
						"schema": {
							"$ref": "#/definitions/domain.APIError"
						}
					},
					"404": {
						"description": "Not found",
						"schema": {
							"$ref": "#/definitions/domain.APIError"
						}
					},
					"409": {
						"description": "Not allowed in the entry's current state",
						"schema": {
							"$ref": "#/definitions/domain.APIError"
						}
					}
				}
			}
		},
		"/entries/{id}/locks": {
			"post": {
				"security": [
					{
						"BearerAuth": []
					},
					{
						"ApiKeyAuth": []
					}
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"Locks"
				],
				"summary": "Open lifecycle lock",
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"format": "uuid",
						"description": "Entry ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/domain.CreateLockRequest"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/domain.EntryDTO"
						}
					},
					"400": {
						"description": "Invalid input",
						"schema": {
							"$ref": "#/definitions/domain.APIError"
						}
					},
					"404": {
						"description": "Not found",
						"schema": {
							"$ref": "#/definitions/domain.APIError"
						}
					},
					"409": {
						"description": "Not allowed in the entry's current state",
						"schema": {
							"$ref": "#/definitions/domain.APIError"
						}
					}
				}
			}
		},
		"/entries/{id}/locks/{lockId}/resolve": {
			"post": {
				"security": [
					{
						"BearerAuth": []
					},
					{
						"ApiKeyAuth": []
					}
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"Locks"
				],
				"summary": "Resolve lifecycle lock",
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"format": "uuid",
						"description": "Entry ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"type": "string",
						"format": "uuid",
						"description": "Lock ID",
						"name": "lockId",
						"in": "path",
						"required": true
					},
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/domain.ResolveLockRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/domain.EntryDTO"
						}
					},
					"400": {
						"description": "Invalid input",
						"schema": {
							"$ref": "#/definitions/domain.APIError"
						}
					},
					"404": {
						"description": "Not found",
						"schema": {
							"$ref": "#/definitions/domain.APIError"
						}
					},
					"409": {
						"description": "Not allowed in the entry's current state",
						"schema": {
							"$ref": "#/definitions/domain.APIError"
						}
					}
				}
			}
		},
		"/entries/{id}/recalculate": {
			"post": {
				"security": [
					{
						"BearerAuth": []
					},
					{
						"ApiKeyAuth": []
					}
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"Lifecycle"
				],
				"summary": "Recalculate entry",
				"parameters": [
					{
						"type": "string",
						"format": "uuid",
						"description": "Entry ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/domain.EntryDTO"
						}
					},
					"400": {
						"description": "Invalid input",
						"schema": {
							"$ref": "#/definitions/domain.APIError"
						}
					},
					"404": {
						"description": "Not found",
						"schema": {
							"$ref": "#/definitions/domain.APIError"
						}
					},
					"409": {
						"description": "Not allowed in the entry's current state",
						"schema": {
							"$ref": "#/definitions/domain.APIError"
						}
					}
				}
			}
		},
		"/entries/{id}/state": {
			"get": {
				"security": [
					{
						"BearerAuth": []
					},
					{
						"ApiKeyAuth": []
					}
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"Lifecycle"
				],
				"summary": "Derived lifecycle state",
				"parameters": [
					{
						"type": "string",
						"format": "uuid",
						"description": "Entry ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					},
					"404": {
						"description": "Not found",
						"schema": {
							"$ref": "#/definitions/domain.APIError"
						}
					}
				}
			}
		},
		"/entries/{id}/gates": {
			"get": {
				"security": [
					{
						"BearerAuth": []
					},
					{
						"ApiKeyAuth": []
					}
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"Lifecycle"
				],
				"summary": "Submission gates",
				"parameters": [
					{
						"type": "string",
						"format": "uuid",
						"description": "Entry ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/cbam.GateEvaluation"
						}
					},
					"404": {
						"description": "Not found",
						"schema": {
							"$ref": "#/definitions/domain.APIError"
						}
					}
				}
			}
		},
		"/entries/{id}/evaluation": {
			"get": {
				"security": [
					{
						"BearerAuth": []
					},
					{
						"ApiKeyAuth": []
					}
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"Lifecycle"
				],
				"summary": "State, gates and calculation or preview",
				"parameters": [
					{
						"type": "string",
						"format": "uuid",
						"description": "Entry ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					},
					"404": {
						"description": "Not found",
						"schema": {
							"$ref": "#/definitions/domain.APIError"
						}
					}
				}
			}
		},
		"/entries/{id}/submit": {
			"post": {
				"security": [
					{
						"BearerAuth": []
					},
					{
						"ApiKeyAuth": []
					}
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"Lifecycle"
				],
				"summary": "Submit entry",
				"description": "Recalculates and re-evaluates every gate before recording the submission.",
				"parameters": [
					{
						"type": "string",
						"format": "uuid",
						"description": "Entry ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					},
					"404": {
						"description": "Not found",
						"schema": {
							"$ref": "#/definitions/domain.APIError"
						}
					},
					"409": {
						"description": "Not allowed in the entry's current state",
						"schema": {
							"$ref": "#/definitions/domain.APIError"
						}
					},
					"422": {
						"description": "Submission gates failed",
						"schema": {
							"$ref": "#/definitions/domain.APIError"
						}
					}
				}
			}
		},
		"/submissions": {
			"get": {
				"security": [
					{
						"BearerAuth": []
					},
					{
						"ApiKeyAuth": []
					}
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"Submissions"
				],
				"summary": "List submissions",
				"parameters": [
					{
						"type": "integer",
						"description": "Page number",
						"name": "page",
						"in": "query"
					},
					{
						"type": "integer",
						"description": "Page size",
						"name": "pageSize",
						"in": "query"
					},
					{
						"type": "integer",
						"description": "Filter by reporting year",
						"name": "reportingYear",
						"in": "query"
					},
					{
						"type": "string",
						"format": "uuid",
						"description": "Filter by entry",
						"name": "entryId",
						"in": "query"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/domain.PaginatedResponse"
						}
					},
					"400": {
						"description": "Invalid input",
						"schema": {
							"$ref": "#/definitions/domain.APIError"
						}
					}
				}
			}
		},
		"/submissions/{id}": {
			"get": {
				"security": [
					{
						"BearerAuth": []
					},
					{
						"ApiKeyAuth": []
					}
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"Submissions"
				],
				"summary": "Get submission",
				"parameters": [
					{
						"type": "string",
						"format": "uuid",
						"description": "Submission ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					},
					"404": {
						"description": "Not found",
						"schema": {
							"$ref": "#/definitions/domain.APIError"
						}
					}
				}
			}
		},
		"/submissions/{id}/archive": {
			"get": {
				"security": [
					{
						"BearerAuth": []
					},
					{
						"ApiKeyAuth": []
					}
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"Submissions"
				],
				"summary": "Archived submission snapshot",
				"parameters": [
					{
						"type": "string",
						"format": "uuid",
						"description": "Submission ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					},
					"404": {
						"description": "Not found",
						"schema": {
							"$ref": "#/definitions/domain.APIError"
						}
					},
					"501": {
						"description": "No archive store configured",
						"schema": {
							"$ref": "#/definitions/domain.APIError"
						}
					}
				}
			}
		},
		"/admin/reference/reload": {
			"post": {
				"security": [
					{
						"BearerAuth": []
					},
					{
						"ApiKeyAuth": []
					}
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"Admin"
				],
				"summary": "Reload reference data",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					},
					"403": {
						"description": "Admin role required",
						"schema": {
							"$ref": "#/definitions/domain.APIError"
						}
					},
					"500": {
						"description": "Reload failed; previous dataset kept",
						"schema": {
							"$ref": "#/definitions/domain.APIError"
						}
					}
				}
			}
		},
		"/admin/recalculate": {
			"post": {
				"security": [
					{
						"BearerAuth": []
					},
					{
						"ApiKeyAuth": []
					}
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"Admin"
				],
				"summary": "Recalculate stale open entries",
				"parameters": [
					{
						"type": "integer",
						"description": "Entries per batch",
						"name": "batchSize",
						"in": "query"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					},
					"403": {
						"description": "Admin role required",
						"schema": {
							"$ref": "#/definitions/domain.APIError"
						}
					}
				}
			}
		}
	},
	"definitions": {
		"domain.APIError": {
			"type": "object",
			"properties": {
				"type": {
					"type": "string"
				},
				"title": {
					"type": "string"
				},
				"status": {
					"type": "integer"
				},
				"detail": {
					"type": "string"
				},
				"errors": {
					"type": "object",
					"additionalProperties": {
						"type": "string"
					}
				},
				"reasons": {
					"type": "array",
					"items": {
						"type": "string"
					}
				}
			}
		},
		"cbam.GateResult": {
			"type": "object",
			"properties": {
				"gate": {
					"type": "string"
				},
				"passed": {
					"type": "boolean"
				},
				"reason": {
					"type": "string"
				}
			}
		},
		"cbam.GateEvaluation": {
			"type": "object",
			"properties": {
				"canSubmit": {
					"type": "boolean"
				},
				"gates": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/cbam.GateResult"
					}
				},
				"blockedReasons": {
					"type": "array",
					"items": {
						"type": "string"
					}
				}
			}
		},
		"domain.PrecursorRequest": {
			"type": "object",
			"required": [
				"cnCode",
				"quantity"
			],
			"properties": {
				"cnCode": {
					"type": "string"
				},
				"name": {
					"type": "string"
				},
				"quantity": {
					"type": "number"
				},
				"emissionFactor": {
					"type": "number"
				},
				"verified": {
					"type": "boolean"
				}
			}
		},
		"domain.CreateEntryRequest": {
			"type": "object",
			"required": [
				"cnCode",
				"reportingYear"
			],
			"properties": {
				"reference": {
					"type": "string"
				},
				"goodsDescription": {
					"type": "string"
				},
				"importer": {
					"type": "string"
				},
				"cnCode": {
					"type": "string"
				},
				"countryOfOrigin": {
					"type": "string"
				},
				"quantity": {
					"type": "number"
				},
				"productionRoute": {
					"type": "string"
				},
				"reportingYear": {
					"type": "integer"
				},
				"directEmissionsSpecific": {
					"type": "number"
				},
				"indirectEmissionsSpecific": {
					"type": "number"
				},
				"carbonPriceDuePaid": {
					"type": "number"
				},
				"benchmarkIntensity": {
					"type": "number"
				},
				"deMinimisThresholdExceeded": {
					"type": "boolean",
					"description": "Unset counts as above the threshold; only an explicit false waives the certificate requirement"
				},
				"precursors": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/domain.PrecursorRequest"
					}
				}
			}
		},
		"domain.UpdateEntryRequest": {
			"type": "object",
			"properties": {
				"reference": {
					"type": "string"
				},
				"goodsDescription": {
					"type": "string"
				},
				"importer": {
					"type": "string"
				},
				"cnCode": {
					"type": "string"
				},
				"countryOfOrigin": {
					"type": "string"
				},
				"quantity": {
					"type": "number"
				},
				"productionRoute": {
					"type": "string"
				},
				"reportingYear": {
					"type": "integer"
				},
				"directEmissionsSpecific": {
					"type": "number"
				},
				"indirectEmissionsSpecific": {
					"type": "number"
				},
				"carbonPriceDuePaid": {
					"type": "number"
				},
				"benchmarkIntensity": {
					"type": "number"
				},
				"deMinimisThresholdExceeded": {
					"type": "boolean"
				}
			}
		},
		"domain.EntryDTO": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string"
				},
				"cnCode": {
					"type": "string"
				},
				"category": {
					"type": "string"
				},
				"state": {
					"type": "string"
				},
				"reportingYear": {
					"type": "integer"
				},
				"calculationMethod": {
					"type": "string"
				},
				"verificationStatus": {
					"type": "string"
				},
				"validationStatus": {
					"type": "string"
				},
				"deMinimisThresholdExceeded": {
					"type": "boolean"
				},
				"certificatesRequired": {
					"type": "number"
				},
				"referenceVersion": {
					"type": "string"
				}
			}
		},
		"domain.CalculationRequest": {
			"type": "object",
			"required": [
				"cnCode",
				"reportingYear"
			],
			"properties": {
				"cnCode": {
					"type": "string"
				},
				"countryOfOrigin": {
					"type": "string"
				},
				"quantity": {
					"type": "number"
				},
				"productionRoute": {
					"type": "string"
				},
				"reportingYear": {
					"type": "integer"
				},
				"directEmissionsSpecific": {
					"type": "number"
				},
				"indirectEmissionsSpecific": {
					"type": "number"
				},
				"verificationStatus": {
					"type": "string"
				},
				"carbonPriceDuePaid": {
					"type": "number"
				},
				"benchmarkIntensity": {
					"type": "number"
				},
				"deMinimisThresholdExceeded": {
					"type": "boolean"
				},
				"certificatePrice": {
					"type": "number"
				},
				"precursors": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/domain.PrecursorRequest"
					}
				}
			}
		},
		"domain.CertificateRequest": {
			"type": "object",
			"required": [
				"reportingYear"
			],
			"properties": {
				"totalEmissions": {
					"type": "number"
				},
				"quantity": {
					"type": "number"
				},
				"reportingYear": {
					"type": "integer"
				},
				"benchmark": {
					"type": "number"
				},
				"foreignDeduction": {
					"type": "number"
				},
				"certificatePrice": {
					"type": "number"
				}
			}
		},
		"domain.ResolveDefaultRequest": {
			"type": "object",
			"required": [
				"cnCode"
			],
			"properties": {
				"cnCode": {
					"type": "string"
				},
				"productionRoute": {
					"type": "string"
				},
				"countryOfOrigin": {
					"type": "string"
				}
			}
		},
		"domain.RecordValidationRequest": {
			"type": "object",
			"required": [
				"status"
			],
			"properties": {
				"status": {
					"type": "string"
				},
				"notes": {
					"type": "string"
				}
			}
		},
		"domain.RecordVerificationRequest": {
			"type": "object",
			"required": [
				"status"
			],
			"properties": {
				"status": {
					"type": "string"
				},
				"verifierName": {
					"type": "string"
				}
			}
		},
		"domain.RequestChangeRequest": {
			"type": "object",
			"required": [
				"reason"
			],
			"properties": {
				"reason": {
					"type": "string"
				}
			}
		},
		"domain.CreateLockRequest": {
			"type": "object",
			"required": [
				"type"
			],
			"properties": {
				"type": {
					"type": "string"
				},
				"reason": {
					"type": "string"
				}
			}
		},
		"domain.ResolveLockRequest": {
			"type": "object",
			"required": [
				"status"
			],
			"properties": {
				"status": {
					"type": "string"
				}
			}
		},
		"domain.PaginatedResponse": {
			"type": "object",
			"properties": {
				"data": {},
				"total": {
					"type": "integer"
				},
				"page": {
					"type": "integer"
				},
				"pageSize": {
					"type": "integer"
				},
				"totalPages": {
					"type": "integer"
				}
			}
		}
	},
	"securityDefinitions": {
		"ApiKeyAuth": {
			"description": "API Key for system integrations",
			"type": "apiKey",
			"name": "x-api-key",
			"in": "header"
		},
		"BearerAuth": {
			"description": "JWT Bearer token",
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
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "CBAM Compliance API",
	Description:      "CBAM certificate obligations, entry lifecycle and submission gates",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
