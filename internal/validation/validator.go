// Package validation wraps a shared go-playground/validator instance.
// The validator caches struct metadata, so one instance serves the whole
// process.
package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the process-wide validator instance.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Struct validates s and flattens field errors into a single error of the
// form "field: rule[=param]; ...".
func Struct(s any) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msg := fe.Namespace() + ": " + fe.Tag()
		if p := fe.Param(); p != "" {
			msg += "=" + p
		}
		msgs = append(msgs, msg)
	}
	return fmt.Errorf("validation failed: %s", strings.Join(msgs, "; "))
}
