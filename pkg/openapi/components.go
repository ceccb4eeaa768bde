package openapi

import "maps"

// NewComponents creates Components with the shared error schema and the
// error responses every API returns.
func NewComponents() *Components {
	return &Components{
		Schemas: map[string]*Schema{
			"Error": {
				Type:     "object",
				Required: []string{"error"},
				Properties: map[string]*Schema{
					"error": {Type: "string", Description: "Error message"},
				},
			},
		},
		Responses: map[string]*Response{
			"BadRequest":           ResponseJSON("Invalid request", "Error"),
			"Conflict":             ResponseJSON("Request conflicts with the current state", "Error"),
			"PayloadTooLarge":      ResponseJSON("Upload exceeds the size limit", "Error"),
			"UnsupportedMediaType": ResponseJSON("Upload is not an accepted media type", "Error"),
			"BadGateway":           ResponseJSON("Upstream service failed", "Error"),
			"ServiceUnavailable":   ResponseJSON("Service unavailable", "Error"),
		},
	}
}

// AddSchemas merges the given schemas into the component schemas.
func (c *Components) AddSchemas(schemas map[string]*Schema) {
	maps.Copy(c.Schemas, schemas)
}

// AddResponses merges the given responses into the component responses.
func (c *Components) AddResponses(responses map[string]*Response) {
	maps.Copy(c.Responses, responses)
}
