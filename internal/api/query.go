package api

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"skyatlas/airports/internal/constants"
	"skyatlas/airports/internal/models/dtos"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidationError is a client input problem rendered as 400.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "; ")
}

var searchParams = map[string]bool{
	"search": true, "country": true, "city": true, "iata": true, "icao": true,
	"limit": true, "offset": true, constants.QueryAPIKey: true,
}

var pageParams = map[string]bool{
	"limit": true, "offset": true, constants.QueryAPIKey: true,
}

// parseSearchQuery reads and validates /airports/search parameters. Unknown
// parameters are rejected.
func parseSearchQuery(values url.Values) (dtos.SearchQuery, error) {
	q := dtos.NewSearchQuery()
	var problems []string

	problems = append(problems, unknownParams(values, searchParams)...)

	q.Search = values.Get("search")
	q.Country = values.Get("country")
	q.City = values.Get("city")
	q.IATA = values.Get("iata")
	q.ICAO = values.Get("icao")

	var err error
	if q.Limit, err = intParam(values, "limit", q.Limit); err != nil {
		problems = append(problems, err.Error())
	}
	if q.Offset, err = intParam(values, "offset", q.Offset); err != nil {
		problems = append(problems, err.Error())
	}

	if len(problems) > 0 {
		return q, &ValidationError{Messages: problems}
	}
	return q, validateStruct(q)
}

// parsePage reads limit/offset for /airports/country/{country} under the same
// rules as search. Other parameters are ignored.
func parsePage(values url.Values) (limit, offset int, err error) {
	q, err := parseSearchQuery(filterParams(values, pageParams))
	if err != nil {
		return 0, 0, err
	}
	return q.Limit, q.Offset, nil
}

func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return &ValidationError{Messages: msgs}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be longer than or equal to %s characters", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must not be less than %s", fe.Field(), fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be shorter than or equal to %s characters", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must not be greater than %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag())
	}
}

func intParam(values url.Values, name string, def int) (int, error) {
	raw, ok := values[name]
	if !ok || len(raw) == 0 || raw[0] == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw[0]))
	if err != nil {
		return def, fmt.Errorf("%s must be an integer number", name)
	}
	return n, nil
}

func unknownParams(values url.Values, allowed map[string]bool) []string {
	var bad []string
	for name := range values {
		if !allowed[name] {
			bad = append(bad, fmt.Sprintf("property %s should not exist", name))
		}
	}
	sort.Strings(bad)
	return bad
}

func filterParams(values url.Values, allowed map[string]bool) url.Values {
	out := url.Values{}
	for name, v := range values {
		if allowed[name] {
			out[name] = v
		}
	}
	return out
}
