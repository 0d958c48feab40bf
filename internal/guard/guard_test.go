package guard

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/idilsaglam/todosync/internal/model"
)

func TestIsDuplicateTitle(t *testing.T) {
	tests := []struct {
		name      string
		tasks     []model.Task
		candidate string
		exclude   model.ID
		want      bool
	}{
		{
			name:      "case and whitespace insensitive",
			tasks:     []model.Task{{Title: "Buy milk"}},
			candidate: "  buy MILK  ",
			want:      true,
		},
		{
			name:      "excluded task does not count",
			tasks:     []model.Task{{ID: model.NumberID(1), Title: "X"}},
			candidate: "X",
			exclude:   model.NumberID(1),
			want:      false,
		},
		{
			name:      "exclusion compares ids textually",
			tasks:     []model.Task{{ID: model.NumberID(1), Title: "X"}},
			candidate: "x",
			exclude:   model.StringID("1"),
			want:      false,
		},
		{
			name:      "other task with same title",
			tasks:     []model.Task{{ID: model.NumberID(1), Title: "X"}, {ID: model.NumberID(2), Title: " x"}},
			candidate: "X",
			exclude:   model.NumberID(1),
			want:      true,
		},
		{
			name:      "no match",
			tasks:     []model.Task{{Title: "Walk dog"}},
			candidate: "Walk cat",
			want:      false,
		},
		{
			name:      "empty list",
			candidate: "anything",
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDuplicateTitle(tt.tasks, tt.candidate, tt.exclude))
		})
	}
}

func TestValidateTitle(t *testing.T) {
	tasks := []model.Task{{ID: model.NumberID(1), Title: "Walk dog"}}

	err := ValidateTitle(tasks, "   ", model.ID{})
	assert.True(t, errors.Is(err, ErrEmptyTitle))

	err = ValidateTitle(tasks, "walk dog", model.ID{})
	assert.True(t, errors.Is(err, ErrDuplicateTitle))
	var ve *ValidationError
	assert.True(t, errors.As(err, &ve))
	assert.Equal(t, "walk dog", ve.Title)

	assert.NoError(t, ValidateTitle(tasks, "walk dog", model.NumberID(1)))
	assert.NoError(t, ValidateTitle(tasks, "Feed cat", model.ID{}))
}
