package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "FET Timetable API",
        "description": "Derived teacher, class and room views over FET timetable exports",
        "version": "1.0.0"
    },
    "basePath": "/api",
    "schemes": [
        "http"
    ],
    "tags": [
        {
            "name": "Timetable",
            "description": "FET document upload"
        },
        {
            "name": "Catalog",
            "description": "Teachers, classes and rooms"
        },
        {
            "name": "Views",
            "description": "Derived weekly timetables"
        },
        {
            "name": "Rename",
            "description": "Display names"
        },
        {
            "name": "Export",
            "description": "PDF, CSV, XLSX, ICS and ZIP exports"
        },
        {
            "name": "Debug",
            "description": "Session introspection"
        }
    ],
    "paths": {
        "/upload": {
            "post": {
                "tags": [
                    "Timetable"
                ],
                "summary": "Upload FET XML exports",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Invalid document",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "413": {
                        "description": "Too large",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "teachersXml",
                        "in": "formData",
                        "type": "file",
                        "required": false,
                        "description": "Teachers timetable"
                    },
                    {
                        "name": "subgroupsXml",
                        "in": "formData",
                        "type": "file",
                        "required": false,
                        "description": "Subgroups timetable"
                    },
                    {
                        "name": "activitiesXml",
                        "in": "formData",
                        "type": "file",
                        "required": false,
                        "description": "Activities timetable"
                    }
                ],
                "consumes": [
                    "multipart/form-data"
                ]
            }
        },
        "/teachers": {
            "get": {
                "tags": [
                    "Catalog"
                ],
                "summary": "Teachers grouped by subject",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/subgroups": {
            "get": {
                "tags": [
                    "Catalog"
                ],
                "summary": "Class names",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/classes/{name}/subgroups": {
            "get": {
                "tags": [
                    "Catalog"
                ],
                "summary": "Subgroups of a class",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "name",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Class"
                    }
                ]
            }
        },
        "/rooms/list": {
            "get": {
                "tags": [
                    "Catalog"
                ],
                "summary": "Room names",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/timetable/teacher/{name}": {
            "get": {
                "tags": [
                    "Views"
                ],
                "summary": "Weekly timetable of a teacher",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "name",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Original or display name"
                    }
                ]
            }
        },
        "/timetable/subgroup/{name}": {
            "get": {
                "tags": [
                    "Views"
                ],
                "summary": "Weekly timetable of a class or subgroup",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "name",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Class or subgroup"
                    },
                    {
                        "name": "labelMode",
                        "in": "query",
                        "required": false,
                        "type": "string",
                        "description": "diff or always"
                    },
                    {
                        "name": "labelSubjects",
                        "in": "query",
                        "required": false,
                        "type": "string",
                        "description": "Comma separated subjects"
                    }
                ]
            }
        },
        "/timetable/room/{name}": {
            "get": {
                "tags": [
                    "Views"
                ],
                "summary": "Weekly occupation of a room",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "name",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Room"
                    }
                ]
            }
        },
        "/rooms/vacant": {
            "get": {
                "tags": [
                    "Views"
                ],
                "summary": "Free rooms per day and hour",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/rooms/vacant/diagnostics": {
            "get": {
                "tags": [
                    "Views"
                ],
                "summary": "Vacant room inputs",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/rename/teachers/list": {
            "get": {
                "tags": [
                    "Rename"
                ],
                "summary": "Teacher rename configuration",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/rename/rooms/list": {
            "get": {
                "tags": [
                    "Rename"
                ],
                "summary": "Room rename configuration",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/rename/mappings": {
            "get": {
                "tags": [
                    "Rename"
                ],
                "summary": "Current rename tables",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/rename/teacher": {
            "post": {
                "tags": [
                    "Rename"
                ],
                "summary": "Set or clear a teacher display name",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/RenameRequest"
                        }
                    }
                ]
            }
        },
        "/rename/room": {
            "post": {
                "tags": [
                    "Rename"
                ],
                "summary": "Set or clear a room display name",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/RenameRequest"
                        }
                    }
                ]
            }
        },
        "/export/{format}/teacher/{name}": {
            "get": {
                "tags": [
                    "Export"
                ],
                "summary": "Export a teacher timetable",
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "404": {
                        "description": "No data",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "format",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "pdf, csv, xlsx or ics"
                    },
                    {
                        "name": "name",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Teacher"
                    }
                ],
                "produces": [
                    "application/pdf",
                    "text/csv",
                    "text/calendar"
                ]
            }
        },
        "/export/{format}/subgroup/{name}": {
            "get": {
                "tags": [
                    "Export"
                ],
                "summary": "Export a class timetable",
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "404": {
                        "description": "No data",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "format",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "pdf, csv, xlsx or ics"
                    },
                    {
                        "name": "name",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Class or subgroup"
                    },
                    {
                        "name": "labelMode",
                        "in": "query",
                        "required": false,
                        "type": "string",
                        "description": "diff or always"
                    },
                    {
                        "name": "labelSubjects",
                        "in": "query",
                        "required": false,
                        "type": "string",
                        "description": "Comma separated subjects"
                    }
                ],
                "produces": [
                    "application/pdf",
                    "text/csv",
                    "text/calendar"
                ]
            }
        },
        "/export/{format}/room/{name}": {
            "get": {
                "tags": [
                    "Export"
                ],
                "summary": "Export a room occupation",
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "404": {
                        "description": "No data",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "format",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "pdf, csv, xlsx or ics"
                    },
                    {
                        "name": "name",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Room"
                    }
                ],
                "produces": [
                    "application/pdf",
                    "text/csv",
                    "text/calendar"
                ]
            }
        },
        "/export/{format}/vacant-rooms": {
            "get": {
                "tags": [
                    "Export"
                ],
                "summary": "Export free rooms",
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Unsupported format",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "format",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "pdf, csv or xlsx"
                    }
                ],
                "produces": [
                    "application/pdf",
                    "text/csv"
                ]
            }
        },
        "/export/batch": {
            "post": {
                "tags": [
                    "Export"
                ],
                "summary": "Queue a ZIP of every teacher or class timetable",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/BatchExportRequest"
                        }
                    }
                ],
                "responses": {
                    "202": {
                        "description": "Queued",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "No data",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/export/batch/{id}": {
            "get": {
                "tags": [
                    "Export"
                ],
                "summary": "Batch export status",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Unknown job",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Job ID"
                    }
                ]
            }
        },
        "/export/download/{token}": {
            "get": {
                "tags": [
                    "Export"
                ],
                "summary": "Download a batch archive via signed token",
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "404": {
                        "description": "Invalid token",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "410": {
                        "description": "Expired",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "token",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Signed token"
                    }
                ],
                "produces": [
                    "application/zip"
                ]
            }
        },
        "/debug/sessions": {
            "get": {
                "tags": [
                    "Debug"
                ],
                "summary": "Live sessions",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "RenameRequest": {
            "type": "object",
            "required": [
                "original"
            ],
            "properties": {
                "original": {
                    "type": "string"
                },
                "renamed": {
                    "type": "string"
                }
            }
        },
        "BatchExportRequest": {
            "type": "object",
            "required": [
                "kind"
            ],
            "properties": {
                "kind": {
                    "type": "string",
                    "enum": [
                        "teachers",
                        "classes"
                    ]
                }
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                },
                "status": {
                    "type": "integer"
                }
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "object"
                },
                "error": {
                    "$ref": "#/definitions/APIError"
                },
                "meta": {
                    "type": "object"
                }
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
