package domain

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var longInstructions = strings.Repeat("a", MinInstructionsLength)

func TestValidateRecipe_Success(t *testing.T) {
	in := RecipeInput{
		Title:             "Pancakes",
		Instructions:      "  " + longInstructions + "  ",
		MinutesToComplete: json.Number("30"),
		UserID:            7,
	}

	got, err := ValidateRecipe(in)
	require.NoError(t, err)

	assert.Equal(t, "Pancakes", got.Title())
	assert.Equal(t, in.Instructions, got.Instructions(), "instructions are stored unchanged")
	assert.Equal(t, 30, got.MinutesToComplete())
	assert.Equal(t, 7, got.UserID())
}

func TestValidateRecipe_Rules(t *testing.T) {
	valid := func() RecipeInput {
		return RecipeInput{
			Title:             "Soup",
			Instructions:      longInstructions,
			MinutesToComplete: 10,
			UserID:            1,
		}
	}

	tests := []struct {
		name   string
		mutate func(*RecipeInput)
		want   []string
	}{
		{
			name:   "empty title",
			mutate: func(in *RecipeInput) { in.Title = "" },
			want:   []string{MsgTitleRequired},
		},
		{
			name:   "49 character instructions",
			mutate: func(in *RecipeInput) { in.Instructions = strings.Repeat("b", 49) },
			want:   []string{MsgInstructionsTooShort},
		},
		{
			name:   "padding does not count",
			mutate: func(in *RecipeInput) { in.Instructions = "   " + strings.Repeat("b", 49) + "\n\t" },
			want:   []string{MsgInstructionsTooShort},
		},
		{
			name:   "missing instructions",
			mutate: func(in *RecipeInput) { in.Instructions = "" },
			want:   []string{MsgInstructionsTooShort},
		},
		{
			name:   "multibyte characters count once",
			mutate: func(in *RecipeInput) { in.Instructions = strings.Repeat("é", 50) },
		},
		{
			name:   "zero minutes",
			mutate: func(in *RecipeInput) { in.MinutesToComplete = 0 },
			want:   []string{MsgMinutesNotPositive},
		},
		{
			name:   "negative minutes",
			mutate: func(in *RecipeInput) { in.MinutesToComplete = json.Number("-5") },
			want:   []string{MsgMinutesNotPositive},
		},
		{
			name:   "fractional minutes",
			mutate: func(in *RecipeInput) { in.MinutesToComplete = json.Number("12.5") },
			want:   []string{MsgMinutesNotPositive},
		},
		{
			name:   "float minutes",
			mutate: func(in *RecipeInput) { in.MinutesToComplete = 12.0 },
			want:   []string{MsgMinutesNotPositive},
		},
		{
			name:   "string minutes",
			mutate: func(in *RecipeInput) { in.MinutesToComplete = "12" },
			want:   []string{MsgMinutesNotPositive},
		},
		{
			name:   "boolean minutes",
			mutate: func(in *RecipeInput) { in.MinutesToComplete = true },
			want:   []string{MsgMinutesNotPositive},
		},
		{
			name:   "missing minutes",
			mutate: func(in *RecipeInput) { in.MinutesToComplete = nil },
			want:   []string{MsgMinutesNotPositive},
		},
		{
			name:   "largest column value",
			mutate: func(in *RecipeInput) { in.MinutesToComplete = json.Number("2147483647") },
		},
		{
			name:   "minutes above column range",
			mutate: func(in *RecipeInput) { in.MinutesToComplete = json.Number("4294967297") },
			want:   []string{MsgMinutesNotPositive},
		},
		{
			name:   "minutes above int64 range",
			mutate: func(in *RecipeInput) { in.MinutesToComplete = json.Number("92233720368547758070") },
			want:   []string{MsgMinutesNotPositive},
		},
		{
			name:   "int64 minutes above column range",
			mutate: func(in *RecipeInput) { in.MinutesToComplete = int64(1) << 32 },
			want:   []string{MsgMinutesNotPositive},
		},
		{
			name:   "missing user",
			mutate: func(in *RecipeInput) { in.UserID = 0 },
			want:   []string{MsgUserRequired},
		},
		{
			name: "every rule violated",
			mutate: func(in *RecipeInput) {
				*in = RecipeInput{}
			},
			want: []string{MsgTitleRequired, MsgInstructionsTooShort, MsgMinutesNotPositive, MsgUserRequired},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid()
			tt.mutate(&in)

			got, err := ValidateRecipe(in)
			if tt.want == nil {
				require.NoError(t, err)
				return
			}

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.want, verr.Messages)
			assert.Equal(t, http.StatusUnprocessableEntity, verr.StatusCode())
			assert.Equal(t, ValidatedRecipe{}, got)
		})
	}
}
