package config

import (
	"fmt"
	"regexp"
	"sync"

	"github.com/go-playground/validator/v10"

	pkgerrors "github.com/forgebase/depengine/pkg/errors"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	semverPattern = regexp.MustCompile(`^\d+\.\d+(?:\.\d+)?(?:-[0-9A-Za-z-.]+)?(?:\+[0-9A-Za-z-.]+)?$`)
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()
		_ = v.RegisterValidation("semver", func(fl validator.FieldLevel) bool {
			return semverPattern.MatchString(fl.Field().String())
		})
		validateInst = v
	})
	return validateInst
}

// Validate checks struct-tag invariants (required fields, the `semver`
// version format, non-empty action lists) and the cross-cutting invariants
// spec.md §3 lists that a struct tag cannot express on its own: unique
// action names and every depends_on referencing a name declared in the same
// action list. Dependency cycles and dangling edges beyond that are left to
// the scheduler, which needs the full action set to detect them.
func Validate(doc *Job) error {
	if doc == nil {
		return pkgerrors.NewValidationError("job", "document is nil", nil)
	}

	if err := validatorInstance().Struct(doc); err != nil {
		return pkgerrors.NewValidationError("job", err.Error(), err)
	}

	if err := validateActionNames(doc.Actions); err != nil {
		return err
	}
	for name, tmpl := range doc.Templates {
		if err := validatorInstance().Struct(&tmpl); err != nil {
			return pkgerrors.NewValidationError(fmt.Sprintf("templates.%s", name), err.Error(), err)
		}
		if err := validateActionNames(tmpl.Actions); err != nil {
			return err
		}
		if tmpl.Setup != nil {
			if err := validateActionNames(tmpl.Setup.Actions); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateActionNames(actions []Action) error {
	seen := make(map[string]struct{}, len(actions))
	for _, a := range actions {
		if _, dup := seen[a.Name]; dup {
			return pkgerrors.NewValidationError("actions", fmt.Sprintf("duplicate action name %q", a.Name), nil)
		}
		seen[a.Name] = struct{}{}
		if a.Template == "" && a.Type == "" {
			return pkgerrors.NewValidationError(a.Name, "action must declare either template or type", nil)
		}
	}
	for _, a := range actions {
		for _, dep := range a.DependsOn {
			if _, ok := seen[dep]; !ok {
				return pkgerrors.NewValidationError(a.Name, fmt.Sprintf("depends_on references unknown action %q", dep), nil)
			}
		}
	}
	return nil
}
