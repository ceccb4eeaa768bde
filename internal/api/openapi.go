package api

import (
	"github.com/JaimeStill/cardscan/internal/config"
	"github.com/JaimeStill/cardscan/pkg/openapi"
)

func str(desc string) *openapi.Schema {
	return &openapi.Schema{Type: "string", Description: desc}
}

func object(required []string, props map[string]*openapi.Schema) *openapi.Schema {
	return &openapi.Schema{Type: "object", Required: required, Properties: props}
}

func array(items *openapi.Schema) *openapi.Schema {
	return &openapi.Schema{Type: "array", Items: items}
}

// Schemas documents the JSON bodies returned by the API.
var Schemas = map[string]*openapi.Schema{
	"State": object([]string{"state", "can_submit", "in_flight"}, map[string]*openapi.Schema{
		"state": {
			Type: "string",
			Enum: []any{"idle", "file_selected", "submitting", "results_shown", "error_shown"},
		},
		"can_submit":   {Type: "boolean", Description: "Whether Submit would start a request"},
		"in_flight":    {Type: "boolean", Description: "Whether a detection request is outstanding"},
		"file":         openapi.SchemaRef("FileInfo"),
		"preview":      openapi.SchemaRef("Preview"),
		"results":      openapi.SchemaRef("Results"),
		"error":        str("Failure message shown in place of results"),
		"notification": openapi.SchemaRef("Notification"),
	}),
	"FileInfo": object([]string{"name", "content_type", "size"}, map[string]*openapi.Schema{
		"name":         str("File name"),
		"content_type": str("Declared media type"),
		"size":         {Type: "integer", Description: "Size in bytes"},
		"size_label":   str("Human readable size"),
	}),
	"Preview": object([]string{"id", "data_uri"}, map[string]*openapi.Schema{
		"id":           {Type: "string", Format: "uuid"},
		"name":         str("File name"),
		"content_type": str("Media type"),
		"size":         {Type: "integer"},
		"data_uri":     str("Inline data URI of the image"),
	}),
	"Results": object([]string{"summary", "count", "nodes"}, map[string]*openapi.Schema{
		"summary": str("Summary line, e.g. \"2 card(s) detected\""),
		"count":   {Type: "integer"},
		"nodes": array(object([]string{"kind", "title"}, map[string]*openapi.Schema{
			"kind":    {Type: "string", Enum: []any{"no_cards", "card"}},
			"index":   {Type: "integer", Description: "1-based card index"},
			"title":   str("Card heading"),
			"message": str("Advisory shown when no cards were found"),
			"badges": array(object(nil, map[string]*openapi.Schema{
				"kind":  {Type: "string", Enum: []any{"valid", "invalid", "confidence"}},
				"label": str(""),
			})),
			"fields": array(object(nil, map[string]*openapi.Schema{
				"label": str(""),
				"value": str(""),
				"found": {Type: "boolean", Description: "False when value is a placeholder"},
			})),
			"bbox": object(nil, map[string]*openapi.Schema{
				"x":      {Type: "integer"},
				"y":      {Type: "integer"},
				"width":  {Type: "integer"},
				"height": {Type: "integer"},
			}),
			"texts": array(object(nil, map[string]*openapi.Schema{
				"quoted":     str("Recognized text in quotes"),
				"confidence": str("Whole percentage"),
			})),
		})),
	}),
	"Notification": object([]string{"message", "severity"}, map[string]*openapi.Schema{
		"message":  str(""),
		"severity": {Type: "string", Enum: []any{"success", "warning", "error"}},
		"shown_at": {Type: "string", Format: "date-time"},
	}),
	"Submission": object([]string{"submission", "state"}, map[string]*openapi.Schema{
		"submission": {Type: "string", Format: "uuid"},
		"stale":      {Type: "boolean", Description: "Outcome arrived after the file was cleared"},
		"state":      openapi.SchemaRef("State"),
	}),
	"Health": object([]string{"status"}, map[string]*openapi.Schema{
		"status": str("\"healthy\" when the detection service is nominal"),
		"model":  str("Detection model identifier"),
	}),
}

var stateOK = map[int]*openapi.Response{
	200: openapi.ResponseJSON("Current client state", "State"),
}

// Spec builds the OpenAPI document for the routes of h mounted at basePath.
func (h *Handler) Spec(cfg *config.OpenAPIConfig, version, basePath string) *openapi.Spec {
	spec := openapi.NewSpec(cfg.Title, version)
	spec.SetDescription(cfg.Description)
	for _, s := range cfg.Servers {
		spec.AddServer(s)
	}
	spec.Components.AddSchemas(Schemas)
	h.Routes().AddToSpec(basePath, spec)
	return spec
}

var operations = struct {
	State, Select, Clear, Submit, Health *openapi.Operation
}{
	State: &openapi.Operation{
		Summary:   "Read the client state",
		Tags:      []string{"Client"},
		Responses: stateOK,
	},
	Select: &openapi.Operation{
		Summary:     "Select an image",
		Description: "Validates the upload and makes it the held file. A rejected file leaves the state unchanged.",
		Tags:        []string{"Client"},
		RequestBody: openapi.RequestBodyMultipart("file", "Image file"),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("File held and preview ready", "State"),
			400: openapi.ResponseRef("BadRequest"),
			413: openapi.ResponseRef("PayloadTooLarge"),
			415: openapi.ResponseRef("UnsupportedMediaType"),
		},
	},
	Clear: &openapi.Operation{
		Summary:   "Clear the held file and results",
		Tags:      []string{"Client"},
		Responses: stateOK,
	},
	Submit: &openapi.Operation{
		Summary:     "Submit the held file for detection",
		Description: "Starts one detection request. With wait=true the response reflects the resolved outcome.",
		Tags:        []string{"Client"},
		Parameters: []*openapi.Parameter{
			openapi.QueryParam("wait", "boolean", "Block until the request resolves", false),
		},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Request resolved", "Submission"),
			202: openapi.ResponseJSON("Request started", "Submission"),
			400: openapi.ResponseRef("BadRequest"),
			409: openapi.ResponseRef("Conflict"),
			503: openapi.ResponseRef("ServiceUnavailable"),
		},
	},
	Health: &openapi.Operation{
		Summary: "Check the detection service",
		Tags:    []string{"Detection"},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Service healthy", "Health"),
			502: openapi.ResponseRef("BadGateway"),
			503: openapi.ResponseJSON("Service reported a non-healthy status", "Health"),
		},
	},
}
