package http

import (
	"net/http"
	"strconv"
	"strings"

	apierrors "github.com/franfh599/dashboard-autos/internal/errors"
	"github.com/franfh599/dashboard-autos/internal/middleware"
	"github.com/franfh599/dashboard-autos/pkg/contracts/domain"
)

// ViewQuery is the raw selection carried by the view routes.
type ViewQuery struct {
	Mode      string `query:"mode" validate:"viewmode"`
	Years     []int  `query:"years" validate:"max=50,dive,gte=1990,lte=2100"`
	Dimension string `query:"dimension" validate:"dimension"`
	Top       int    `query:"top" validate:"gte=0,lte=100"`
	Brand     string `query:"brand" validate:"max=80"`
}

// parseViewQuery reads and validates the view parameters of r.
func parseViewQuery(r *http.Request, v *middleware.Validator) (domain.ViewParams, error) {
	q := r.URL.Query()
	query := ViewQuery{
		Mode:      q.Get("mode"),
		Dimension: q.Get("dimension"),
		Brand:     strings.TrimSpace(q.Get("brand")),
	}

	if raw := strings.TrimSpace(q.Get("top")); raw != "" {
		top, err := strconv.Atoi(raw)
		if err != nil {
			return domain.ViewParams{}, apierrors.ErrValidation("top", "top must be an integer")
		}
		query.Top = top
	}

	years, err := parseYears(q["years"])
	if err != nil {
		return domain.ViewParams{}, err
	}
	query.Years = years

	if err := v.Struct(query); err != nil {
		return domain.ViewParams{}, err
	}

	params := domain.ViewParams{
		Years: query.Years,
		TopN:  query.Top,
		Brand: query.Brand,
	}
	if query.Mode != "" {
		params.Mode, _ = domain.ParseViewMode(query.Mode)
	}
	if query.Dimension != "" {
		params.Dimension, _ = domain.ParseDimension(query.Dimension)
	}
	return params, nil
}

// parseYears accepts repeated and comma separated values:
// years=2023,2024 and years=2023&years=2024 are equivalent.
func parseYears(values []string) ([]int, error) {
	var years []int
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			year, err := strconv.Atoi(part)
			if err != nil {
				return nil, apierrors.ErrValidation("years", "years must be a comma separated list of years")
			}
			years = append(years, year)
		}
	}
	return years, nil
}
