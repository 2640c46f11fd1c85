package plugin

import (
	"fmt"

	mapstructure "github.com/go-viper/mapstructure/v2"
)

const (
	argumentsDecoderErrorTemplateConstant = "failed to build plugin argument decoder: %w"
	argumentsDecodeErrorTemplateConstant  = "invalid plugin arguments: %w"
	argumentsTagNameConstant              = "mapstructure"
)

// DecodeArguments maps the raw keyword arguments onto a typed options struct.
func DecodeArguments(arguments Arguments, target any) error {
	decoder, decoderError := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: argumentsTagNameConstant,
		Result:  target,
	})
	if decoderError != nil {
		return fmt.Errorf(argumentsDecoderErrorTemplateConstant, decoderError)
	}

	if decodeError := decoder.Decode(map[string]any(arguments)); decodeError != nil {
		return fmt.Errorf(argumentsDecodeErrorTemplateConstant, decodeError)
	}

	return nil
}
