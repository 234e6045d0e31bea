package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testForm = Form{
	{ID: "overall", Type: QuestionRating, Question: "How was it?", Options: []string{"1", "2", "3", "4", "5"}},
	{ID: "again", Type: QuestionBoolean, Question: "Would you come again?"},
	{ID: "comments", Type: QuestionText, Question: "Anything else?"},
}

func TestNormalizeResponses(t *testing.T) {
	got, err := testForm.NormalizeResponses(map[string]interface{}{
		"overall":  float64(4),
		"again":    true,
		"comments": "  great team  ",
	})

	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{
		"overall":  int64(4),
		"again":    true,
		"comments": "great team",
	}, got)
}

func TestNormalizeResponses_Rejects(t *testing.T) {
	valid := func() map[string]interface{} {
		return map[string]interface{}{"overall": 3, "again": false, "comments": "ok"}
	}

	tests := []struct {
		name   string
		mutate func(map[string]interface{})
		field  string
	}{
		{"rating too high", func(m map[string]interface{}) { m["overall"] = 6 }, "responses.overall"},
		{"rating fractional", func(m map[string]interface{}) { m["overall"] = 2.5 }, "responses.overall"},
		{"rating as text", func(m map[string]interface{}) { m["overall"] = "5" }, "responses.overall"},
		{"boolean as text", func(m map[string]interface{}) { m["again"] = "yes" }, "responses.again"},
		{"blank text", func(m map[string]interface{}) { m["comments"] = "   " }, "responses.comments"},
		{"missing answer", func(m map[string]interface{}) { delete(m, "again") }, "responses.again"},
		{"unknown question", func(m map[string]interface{}) { m["extra"] = true }, "responses.extra"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			responses := valid()
			tt.mutate(responses)

			_, err := testForm.NormalizeResponses(responses)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestFormValidate(t *testing.T) {
	require.NoError(t, testForm.Validate())

	assert.Error(t, Form{}.Validate())
	assert.Error(t, Form{{ID: "a", Type: "scale", Question: "?"}}.Validate())
	assert.Error(t, Form{{ID: "a", Type: QuestionText, Question: "?"}, {ID: "a", Type: QuestionText, Question: "?"}}.Validate())
}
