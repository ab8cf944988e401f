// Package validator registers the custom binding rules the API uses on top
// of gin's default validator.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/vroo/hr-tracker/internal/model"
)

// RegisterBindings installs the custom rules on gin's binding engine. Call
// once at startup, before any routes bind requests.
func RegisterBindings() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("pipeline_status", pipelineStatus)
}

// pipelineStatus accepts any value ParseStatus accepts, legacy aliases
// included.
func pipelineStatus(fl validator.FieldLevel) bool {
	_, err := model.ParseStatus(fl.Field().String())
	return err == nil
}
