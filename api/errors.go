package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"gitlab.com/testpaper/papergen/db/repositories"
)

type ProblemDetail struct {
	Type     string        `json:"type,omitempty" validate:"uri"`
	Status   int           `json:"status,omitempty"`
	Title    string        `json:"title,omitempty"`
	Detail   string        `json:"detail,omitempty"`
	Instance string        `json:"instance,omitempty" validate:"uri"`
	Errors   []ErrorDetail `json:"errors,omitempty"`
}

type ErrorDetail struct {
	Detail  string `json:"detail"`
	Pointer string `json:"pointer"`
}

type ProblemOption func(*ProblemDetail)

func NewProblemDetail(options ...ProblemOption) ProblemDetail {
	problem := ProblemDetail{}
	for _, option := range options {
		option(&problem)
	}
	return problem
}

func WithType(t string) ProblemOption {
	return func(p *ProblemDetail) {
		p.Type = t
	}
}

func WithStatus(s int) ProblemOption {
	return func(p *ProblemDetail) {
		p.Status = s
	}
}

func WithTitle(t string) ProblemOption {
	return func(p *ProblemDetail) {
		p.Title = t
	}
}

func WithDetail(d string) ProblemOption {
	return func(p *ProblemDetail) {
		p.Detail = d
	}
}

func WithInstance(i string) ProblemOption {
	return func(p *ProblemDetail) {
		p.Instance = i
	}
}

func WithErrors(e []ErrorDetail) ProblemOption {
	return func(p *ProblemDetail) {
		p.Errors = e
	}
}

func NewValidationProblem(e error) ProblemDetail {
	return NewProblemDetail(
		WithStatus(http.StatusBadRequest),
		WithTitle("Input Validation Error"),
		WithDetail("Your request has invalid parameters."),
		WithErrors(readableErrors(e)),
	)
}

func NewEmptyBodyProblem() ProblemDetail {
	return NewProblemDetail(
		WithStatus(http.StatusBadRequest),
		WithTitle("Empty Request Body"),
		WithDetail("Your request did not include a body."),
	)
}

func NewInvalidIDProblem(raw string) ProblemDetail {
	return NewProblemDetail(
		WithStatus(http.StatusBadRequest),
		WithTitle("Invalid Identifier"),
		WithDetail("'"+raw+"' is not a valid subject id."),
	)
}

func NewNotFoundProblem(instance string) ProblemDetail {
	return NewProblemDetail(
		WithStatus(http.StatusNotFound),
		WithTitle("Resource Not Found"),
		WithInstance(instance),
	)
}

// NewStorageProblem maps a repository error onto its problem detail.
// Causes of internal errors stay in the logs.
func NewStorageProblem(err error, instance string) ProblemDetail {
	switch {
	case errors.Is(err, repositories.NotFoundError):
		return NewNotFoundProblem(instance)
	case errors.Is(err, repositories.InvalidDataError):
		return NewProblemDetail(
			WithStatus(http.StatusBadRequest),
			WithTitle("Invalid Request"),
			WithDetail(err.Error()),
			WithInstance(instance),
		)
	case errors.Is(err, repositories.ConstraintError):
		return NewProblemDetail(
			WithStatus(http.StatusConflict),
			WithTitle("Conflict"),
			WithDetail("The request conflicts with an existing resource."),
			WithInstance(instance),
		)
	default:
		return NewProblemDetail(
			WithStatus(http.StatusInternalServerError),
			WithTitle("Internal Server Error"),
			WithInstance(instance),
		)
	}
}

// TODO: Update readableErrors to accept a ut.Translator parameter for human-readable messages
// (github.com/go-playground/universal-translator)
func readableErrors(err error) []ErrorDetail {
	var details []ErrorDetail
	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		for _, e := range errs {
			var detail string
			switch e.Tag() {
			case "required":
				detail = "is required"
			case "min":
				detail = "must be at least " + e.Param()
			case "max":
				detail = "must be at most " + e.Param()
			default:
				detail = "is invalid"
			}
			pointer := "#/" + strings.ToLower(e.Field())
			details = append(details, ErrorDetail{Detail: detail, Pointer: pointer})
		}
	}
	return details
}
