package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Category names become a URL path segment.
type categoryForm struct {
	Name string `validate:"required,max=100,segment"`
}

type itemForm struct {
	Name        string `validate:"required,max=100"`
	Description string `validate:"max=4000"`
	CategoryID  int64  `validate:"omitempty,gt=0"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Clients and the router resolve dot segments before matching, so these
	// names could never be reached again.
	v.RegisterValidation("segment", func(fl validator.FieldLevel) bool {
		name := fl.Field().String()
		return name != "." && name != ".."
	})
	return v
}

func (s *Server) parseCategoryForm(r *http.Request) (categoryForm, error) {
	form := categoryForm{Name: strings.TrimSpace(r.PostFormValue("name"))}
	return form, s.check(form)
}

func (s *Server) parseItemForm(r *http.Request) (itemForm, error) {
	form := itemForm{
		Name:        strings.TrimSpace(r.PostFormValue("name")),
		Description: strings.TrimSpace(r.PostFormValue("description")),
	}
	if raw := r.PostFormValue("category_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return form, badRequest("invalid category")
		}
		form.CategoryID = id
	}
	return form, s.check(form)
}

// check validates a form and turns the first failure into a bad request.
func (s *Server) check(form any) error {
	err := s.validate.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("validating form: %w", err)
	}

	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return badRequest(field + " is required")
	case "max":
		return badRequest(fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
	case "segment":
		return badRequest(fmt.Sprintf("%s cannot be %q", field, fe.Value()))
	default:
		return badRequest("invalid " + field)
	}
}
