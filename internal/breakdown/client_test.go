package breakdown

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandeepkv93/focusflow/internal/model"
)

type stubGenerator struct {
	reply   string
	err     error
	calls   int
	prompts []string
}

func (s *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	s.calls++
	s.prompts = append(s.prompts, prompt)
	return s.reply, s.err
}

func TestBreakDownReturnsSubtasksInOrder(t *testing.T) {
	gen := &stubGenerator{reply: `["book flight","book hotel","pack bags"]`}
	client := New(gen)

	items, err := client.BreakDown(context.Background(), "Plan trip")
	require.NoError(t, err)
	assert.Equal(t, []string{"book flight", "book hotel", "pack bags"}, items)
	assert.Equal(t, 1, gen.calls)
	assert.Contains(t, gen.prompts[0], `Task: "Plan trip"`)
	assert.Contains(t, gen.prompts[0], "Reply ONLY with the JSON")
}

func TestBreakDownTrimsDescriptionBeforePrompting(t *testing.T) {
	gen := &stubGenerator{reply: `[]`}
	items, err := New(gen).BreakDown(context.Background(), "  write report \n")
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, Prompt("write report"), gen.prompts[0])
}

func TestBreakDownRejectsEmptyDescription(t *testing.T) {
	gen := &stubGenerator{reply: `["x"]`}
	_, err := New(gen).BreakDown(context.Background(), "   ")
	require.ErrorIs(t, err, model.ErrEmptyText)
	assert.Equal(t, model.KindValidation, model.KindOf(err))
	assert.Zero(t, gen.calls)
}

func TestBreakDownWithoutGeneratorIsNotConfigured(t *testing.T) {
	client := New(nil)
	assert.False(t, client.Enabled())

	_, err := client.BreakDown(context.Background(), "Plan trip")
	require.ErrorIs(t, err, model.ErrNotConfigured)
	assert.Equal(t, model.KindConfiguration, model.KindOf(err))
}

func TestNewFromAPIKeyWithoutKeyIsDisabled(t *testing.T) {
	client := NewFromAPIKey(context.Background(), "  ", "")
	assert.False(t, client.Enabled())
}

func TestBreakDownFailures(t *testing.T) {
	cases := []struct {
		name  string
		reply string
		err   error
		cause error
	}{
		{name: "transport", err: errors.New("connection reset")},
		{name: "not json", reply: "Sure! Here are your tasks", cause: ErrNotJSON},
		{name: "object", reply: `{"tasks":["a"]}`, cause: ErrNotArray},
		{name: "mixed types", reply: `["a", 2]`, cause: ErrNonString},
		{name: "empty", reply: "  ", cause: ErrNoResponse},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gen := &stubGenerator{reply: tc.reply, err: tc.err}
			items, err := New(gen).BreakDown(context.Background(), "Plan trip")
			require.Error(t, err)
			assert.Nil(t, items)
			assert.ErrorIs(t, err, model.ErrBreakdownFailed)
			assert.Equal(t, model.KindExternalService, model.KindOf(err))
			assert.Equal(t, model.BreakdownFailedMessage, err.Error())
			if tc.cause != nil {
				assert.ErrorIs(t, err, tc.cause)
			}
			assert.Equal(t, 1, gen.calls)
		})
	}
}

func TestParseStripsCodeFences(t *testing.T) {
	items, err := Parse("```json\n[\"a\", \"b\"]\n```")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, items)

	items, err = Parse("```[\"c\"]```")
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, items)
}

func TestGeneratorFuncAdapter(t *testing.T) {
	gen := GeneratorFunc(func(_ context.Context, prompt string) (string, error) {
		return `["` + "step" + `"]`, nil
	})
	items, err := New(gen).BreakDown(context.Background(), "do it")
	require.NoError(t, err)
	assert.Equal(t, []string{"step"}, items)
}

func TestResponseConfigRequestsStringArray(t *testing.T) {
	cfg := responseConfig()
	require.NotNil(t, cfg.ResponseSchema)
	require.NotNil(t, cfg.ResponseSchema.Items)
	assert.Equal(t, "application/json", cfg.ResponseMIMEType)
	assert.EqualValues(t, "ARRAY", cfg.ResponseSchema.Type)
	assert.EqualValues(t, "STRING", cfg.ResponseSchema.Items.Type)
}
