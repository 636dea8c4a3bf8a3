package validate

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Shared validator instance. Register any custom tags in an init() before
// the first Struct call.
var v = validator.New()

// Struct checks s against its validate tags and flattens the failures into
// a single error suitable for a 400 response body.
func Struct(s interface{}) error {
	if err := v.Struct(s); err != nil {
		ve, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		var msgs []string
		for _, fe := range ve {
			msgs = append(msgs, fmt.Sprintf("field '%s' failed '%s'", fe.Field(), fe.Tag()))
		}
		return fmt.Errorf("%s", strings.Join(msgs, "; "))
	}
	return nil
}
