package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apierrors "bikepulse/internal/errors"
	"bikepulse/pkg/contracts/domain"
)

// DateRangeQuery is the shape of the start/end query parameters shared by
// every dashboard endpoint. Both are optional.
type DateRangeQuery struct {
	Start string `query:"start" validate:"omitempty,datetime=2006-01-02"`
	End   string `query:"end" validate:"omitempty,datetime=2006-01-02"`
}

// QueryValidator validates query parameters with struct tags.
type QueryValidator struct {
	validator    *validator.Validate
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewQueryValidator creates a new query parameter validator
func NewQueryValidator(logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *QueryValidator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report query parameter names rather than Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("query"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &QueryValidator{
		validator:    v,
		logger:       logger.With(slog.String("component", "query_validator")),
		errorHandler: errorHandler,
	}
}

// ParseDateRange reads and validates start/end from the query string.
func (v *QueryValidator) ParseDateRange(r *http.Request) (DateRangeQuery, error) {
	q := DateRangeQuery{
		Start: strings.TrimSpace(r.URL.Query().Get("start")),
		End:   strings.TrimSpace(r.URL.Query().Get("end")),
	}

	if err := v.validator.Struct(q); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return q, apierrors.InvalidDateError(fe.Field(), fmt.Sprint(fe.Value()))
		}
		return q, apierrors.InvalidRequestWithError(err)
	}

	return q, nil
}

// ValidateDateRange rejects requests whose start or end parameter is not a
// YYYY-MM-DD date with a 400 problem response.
func (v *QueryValidator) ValidateDateRange(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := v.ParseDateRange(r); err != nil {
			v.logger.DebugContext(r.Context(), "invalid date range query",
				slog.String("query", r.URL.RawQuery),
				slog.String("error", err.Error()),
			)
			v.errorHandler.HandleError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ValidateView checks a view name against the fixed set.
func (v *QueryValidator) ValidateView(name string) (domain.ViewID, error) {
	view, err := domain.ParseViewID(name)
	if err != nil {
		return "", apierrors.UnknownViewError(name)
	}
	return view, nil
}
