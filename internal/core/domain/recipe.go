package domain

import (
	"encoding/json"
	"math"
	"net/http"
	"strings"
	"unicode/utf8"
)

// MinInstructionsLength is the minimum number of characters of trimmed instructions.
const MinInstructionsLength = 50

// MaxMinutesToComplete is the largest value the minutes_to_complete column holds.
const MaxMinutesToComplete = math.MaxInt32

// Validation messages, reported in this order.
const (
	MsgTitleRequired        = "Title is required."
	MsgInstructionsTooShort = "Instructions must be at least 50 characters."
	MsgMinutesNotPositive   = "Minutes must be a positive integer."
	MsgUserRequired         = "User must be logged in."
)

// Recipe is a stored recipe.
type Recipe struct {
	ID                int
	Title             string
	Instructions      string
	MinutesToComplete int
	UserID            int
}

// RecipeInput is unvalidated recipe data.
//
// MinutesToComplete is left untyped so that the caller can pass whatever the
// client sent (a json.Number when decoded with UseNumber) and validation
// decides whether it is an integer.
type RecipeInput struct {
	Title             string
	Instructions      string
	MinutesToComplete any
	UserID            int
}

// ValidatedRecipe is a recipe that passed ValidateRecipe. Its zero value is
// never produced by ValidateRecipe and its fields cannot be changed after construction.
type ValidatedRecipe struct {
	title        string
	instructions string
	minutes      int
	userID       int
}

func (r ValidatedRecipe) Title() string          { return r.title }
func (r ValidatedRecipe) Instructions() string   { return r.instructions }
func (r ValidatedRecipe) MinutesToComplete() int { return r.minutes }
func (r ValidatedRecipe) UserID() int            { return r.userID }

// ValidationError lists every rule a RecipeInput violated.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, " ")
}

// StatusCode is the HTTP status a validation failure maps to.
func (e *ValidationError) StatusCode() int {
	return http.StatusUnprocessableEntity
}

// ValidateRecipe checks every rule without short-circuiting. It returns either
// a ValidatedRecipe or a *ValidationError, never both.
func ValidateRecipe(in RecipeInput) (ValidatedRecipe, error) {
	var msgs []string

	if in.Title == "" {
		msgs = append(msgs, MsgTitleRequired)
	}

	if utf8.RuneCountInString(strings.TrimSpace(in.Instructions)) < MinInstructionsLength {
		msgs = append(msgs, MsgInstructionsTooShort)
	}

	minutes, ok := asInt(in.MinutesToComplete)
	if !ok || minutes <= 0 {
		msgs = append(msgs, MsgMinutesNotPositive)
	}

	if in.UserID == 0 {
		msgs = append(msgs, MsgUserRequired)
	}

	if len(msgs) > 0 {
		return ValidatedRecipe{}, &ValidationError{Messages: msgs}
	}

	return ValidatedRecipe{
		title:        in.Title,
		instructions: in.Instructions,
		minutes:      minutes,
		userID:       in.UserID,
	}, nil
}

// asInt accepts Go integers and integral JSON numbers within the column range.
// Floats, strings, booleans and nil are not integers, even when they hold a whole value.
func asInt(v any) (int, bool) {
	var n int64
	switch x := v.(type) {
	case int:
		n = int64(x)
	case int32:
		n = int64(x)
	case int64:
		n = x
	case json.Number:
		i, err := x.Int64()
		if err != nil {
			return 0, false
		}
		n = i
	default:
		return 0, false
	}

	if n > MaxMinutesToComplete || n < math.MinInt32 {
		return 0, false
	}
	return int(n), true
}
