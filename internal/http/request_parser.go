// Package http provides the JSON API server and its handlers.
//
// This file implements utilities for parsing and validating request data:
// JSON bodies read once through gjson, meal and favorite payloads, and the
// week and import query parameters.

package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"mealplan/internal/core"
	"mealplan/internal/importer"
)

// DefaultMaxBodyBytes bounds JSON and CSV request bodies.
const DefaultMaxBodyBytes = 1 << 20

var (
	// ErrMalformedBody marks a body that is empty or not valid JSON.
	ErrMalformedBody = errors.New("malformed request body")
	ErrInvalidQuery  = errors.New("invalid query parameter")
)

// RequestBodyParser reads a request body once and exposes it as JSON.
type RequestBodyParser struct {
	body        []byte
	contentType string
	doc         gjson.Result
	parsed      bool
	err         error
}

// NewRequestBodyParser reads at most limit bytes of the request body.
func NewRequestBodyParser(w http.ResponseWriter, r *http.Request, limit int64) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}
	p.body, p.err = io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	return p
}

// Parse validates the body as a JSON document.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}
	if len(strings.TrimSpace(string(p.body))) == 0 {
		p.err = fmt.Errorf("%w: empty body", ErrMalformedBody)
		return p.err
	}
	if !gjson.ValidBytes(p.body) {
		p.err = fmt.Errorf("%w: invalid JSON", ErrMalformedBody)
		return p.err
	}
	p.doc = gjson.ParseBytes(p.body)
	return nil
}

// Get returns a sanitized string value at path.
func (p *RequestBodyParser) Get(path string) string {
	return sanitizeInput(p.doc.Get(path).String())
}

// Result returns the raw gjson value at path.
func (p *RequestBodyParser) Result(path string) gjson.Result {
	return p.doc.Get(path)
}

// GetRaw returns the raw body bytes.
func (p *RequestBodyParser) GetRaw() []byte {
	return p.body
}

// ContentType returns the Content-Type header value.
func (p *RequestBodyParser) ContentType() string {
	return p.contentType
}

// Meal decodes a meal payload. Day and date may each be omitted; the
// service derives the missing one. Ingredients go through the same
// coercion as chat imports.
func (p *RequestBodyParser) Meal() (core.Meal, error) {
	if err := p.Parse(); err != nil {
		return core.Meal{}, err
	}

	m := core.Meal{
		ID:   p.Get("id"),
		Name: p.Get("name"),
		Date: p.Get("date"),
	}
	if day := p.Get("day"); day != "" {
		d, err := core.ParseDayOfWeek(day)
		if err != nil {
			return core.Meal{}, err
		}
		m.Day = d
	}
	if m.Date != "" {
		if _, err := core.ParseISODate(m.Date); err != nil {
			return core.Meal{}, err
		}
	}
	mt, err := core.ParseMealType(p.Get("mealType"))
	if err != nil {
		return core.Meal{}, err
	}
	m.MealType = mt

	m.Ingredients, err = p.ingredients()
	if err != nil {
		return core.Meal{}, err
	}
	return m, nil
}

// Favorite decodes a favorite payload.
func (p *RequestBodyParser) Favorite() (core.FavoriteMeal, error) {
	if err := p.Parse(); err != nil {
		return core.FavoriteMeal{}, err
	}

	mt, err := core.ParseMealType(p.Get("mealType"))
	if err != nil {
		return core.FavoriteMeal{}, err
	}
	ings, err := p.ingredients()
	if err != nil {
		return core.FavoriteMeal{}, err
	}
	return core.FavoriteMeal{
		ID:          p.Get("id"),
		Name:        p.Get("name"),
		MealType:    mt,
		Ingredients: ings,
	}, nil
}

// ingredients keeps client-sent ingredient ids so updates are stable.
func (p *RequestBodyParser) ingredients() ([]core.Ingredient, error) {
	raw := p.Result("ingredients")
	if raw.Exists() && !raw.IsArray() {
		return nil, fmt.Errorf("%w: ingredients must be an array", ErrMalformedBody)
	}
	out := make([]core.Ingredient, 0, len(raw.Array()))
	for i, v := range raw.Array() {
		ing, err := importer.CoerceIngredient(v)
		if err != nil {
			return nil, fmt.Errorf("ingredients[%d]: %w", i, err)
		}
		if id := sanitizeInput(v.Get("id").String()); id != "" {
			ing.ID = id
		}
		out = append(out, ing)
	}
	return out, nil
}

// ParseWeekParam reads the optional week=YYYY-MM-DD query parameter. ok is
// false when the parameter is absent.
func ParseWeekParam(query url.Values) (ref time.Time, ok bool, err error) {
	v := strings.TrimSpace(query.Get("week"))
	if v == "" {
		return time.Time{}, false, nil
	}
	ref, err = core.ParseISODate(v)
	if err != nil {
		return time.Time{}, false, err
	}
	return ref, true, nil
}

// ImportParams are the query parameters accepted by the import endpoints.
type ImportParams struct {
	Options importer.Options
	Replace bool
	Preview bool
}

// ParseImportParams reads replace, preview, week_starts_on and
// reference_date, falling back to defaultWeekStart and now.
func ParseImportParams(query url.Values, defaultWeekStart core.WeekStart, now time.Time) (ImportParams, error) {
	params := ImportParams{
		Options: importer.Options{WeekStartsOn: defaultWeekStart, ReferenceDate: now},
	}

	var err error
	if params.Replace, err = parseBoolParam(query, "replace"); err != nil {
		return ImportParams{}, err
	}
	if params.Preview, err = parseBoolParam(query, "preview"); err != nil {
		return ImportParams{}, err
	}
	if v := strings.TrimSpace(query.Get("week_starts_on")); v != "" {
		ws, err := core.ParseWeekStart(v)
		if err != nil {
			return ImportParams{}, err
		}
		params.Options.WeekStartsOn = ws
	}
	if v := strings.TrimSpace(query.Get("reference_date")); v != "" {
		ref, err := core.ParseISODate(v)
		if err != nil {
			return ImportParams{}, err
		}
		params.Options.ReferenceDate = ref
	}
	return params, nil
}

func parseBoolParam(query url.Values, key string) (bool, error) {
	v := strings.TrimSpace(query.Get(key))
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%w: %s must be true or false", ErrInvalidQuery, key)
	}
	return b, nil
}
