package api

import (
	"strings"

	"loanlens-backend/internal/common/errors"

	"github.com/xeipuuv/gojsonschema"
)

// chatInputSchema constrains the chat send payload before decoding.
const chatInputSchema = `{
	"type": "object",
	"required": ["message"],
	"properties": {
		"session_id": {"type": "string"},
		"message": {"type": "string", "minLength": 1}
	},
	"additionalProperties": false
}`

var compiledChatSchema *gojsonschema.Schema

func init() {
	var err error
	compiledChatSchema, err = gojsonschema.NewSchema(gojsonschema.NewStringLoader(chatInputSchema))
	if err != nil {
		panic(err)
	}
}

// validateChatInput checks the raw request body against the chat schema.
func validateChatInput(body []byte) error {
	result, err := compiledChatSchema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return errors.NewInvalidRequestError(err.Error())
	}
	if result.Valid() {
		return nil
	}

	details := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		details = append(details, desc.String())
	}
	return errors.NewInvalidRequestError(strings.Join(details, "; "))
}
