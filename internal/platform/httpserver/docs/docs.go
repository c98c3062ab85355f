// Package docs holds the generated swagger document. Regenerate with
// `swag init` after changing transport annotations.
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
        "/v1/media-buys": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["media-buys"],
                "summary": "Create a media buy",
                "responses": {
                    "200": {"description": "OK"},
                    "422": {"description": "targeting rejected"}
                }
            }
        },
        "/v1/media-buys/{media_buy_id}/update": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["media-buys"],
                "summary": "Update a media buy",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "AdBroker API",
	Description:      "Media buy broker over pluggable ad-serving backends.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
