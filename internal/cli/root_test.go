package cli

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandeepkv93/focusflow/internal/breakdown"
	"github.com/sandeepkv93/focusflow/internal/model"
)

func isolateEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{"FOCUSFLOW_API_KEY", "GEMINI_API_KEY", "API_KEY", "FOCUSFLOW_STORE_BACKEND", "FOCUSFLOW_STORE_PATH"} {
		t.Setenv(name, "")
	}
}

func run(t *testing.T, deps Deps, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	deps.Out = &out
	deps.Err = &out
	root := NewRootCommand(deps)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func storeArgs(t *testing.T, backend string) []string {
	t.Helper()
	dir := t.TempDir()
	return []string{
		"--config", filepath.Join(dir, "missing.yaml"),
		"--backend", backend,
		"--store", filepath.Join(dir, "tasks."+backend),
	}
}

func TestAddAndListPersistAcrossRuns(t *testing.T) {
	for _, backend := range []string{"sqlite", "file"} {
		t.Run(backend, func(t *testing.T) {
			isolateEnv(t)
			flags := storeArgs(t, backend)

			out, err := run(t, Deps{}, append(flags, "add", "write", "report")...)
			require.NoError(t, err)
			assert.Contains(t, out, "write report")

			_, err = run(t, Deps{}, append(flags, "add", "review PR")...)
			require.NoError(t, err)

			out, err = run(t, Deps{}, append(flags, "list")...)
			require.NoError(t, err)
			assert.Contains(t, out, "Pending (2):")
			assert.Contains(t, out, "Completed (0):")
			assert.Less(t, strings.Index(out, "write report"), strings.Index(out, "review PR"))
		})
	}
}

func TestAddRejectsBlankText(t *testing.T) {
	isolateEnv(t)
	_, err := run(t, Deps{}, append(storeArgs(t, "memory"), "add", "  ")...)
	assert.ErrorIs(t, err, model.ErrEmptyText)
}

func TestBreakdownAppendsSubtasks(t *testing.T) {
	isolateEnv(t)
	gen := breakdown.GeneratorFunc(func(_ context.Context, prompt string) (string, error) {
		if !strings.Contains(prompt, `"Plan trip"`) {
			return "", errors.New("unexpected prompt")
		}
		return `["book flight","book hotel","pack bags"]`, nil
	})
	flags := storeArgs(t, "file")

	_, err := run(t, Deps{}, append(flags, "add", "existing")...)
	require.NoError(t, err)

	out, err := run(t, Deps{Generator: gen}, append(flags, "breakdown", "Plan", "trip")...)
	require.NoError(t, err)
	assert.Contains(t, out, "added 3 subtask(s)")

	out, err = run(t, Deps{}, append(flags, "list")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Pending (4):")
	assert.Less(t, strings.Index(out, "existing"), strings.Index(out, "book flight"))
	assert.Less(t, strings.Index(out, "book hotel"), strings.Index(out, "pack bags"))
}

func TestBreakdownDryRunAddsNothing(t *testing.T) {
	isolateEnv(t)
	gen := breakdown.GeneratorFunc(func(context.Context, string) (string, error) {
		return "```json\n[\"one\",\"two\"]\n```", nil
	})
	flags := storeArgs(t, "file")

	out, err := run(t, Deps{Generator: gen}, append(flags, "breakdown", "--dry-run", "tidy", "garage")...)
	require.NoError(t, err)
	assert.Equal(t, "- one\n- two\n", out)

	out, err = run(t, Deps{}, append(flags, "list")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Pending (0):")
}

func TestBreakdownWithoutAPIKeyIsNotConfigured(t *testing.T) {
	isolateEnv(t)
	_, err := run(t, Deps{}, append(storeArgs(t, "memory"), "breakdown", "Plan trip")...)
	assert.ErrorIs(t, err, model.ErrNotConfigured)
}

func TestConfigPrintsYAML(t *testing.T) {
	isolateEnv(t)
	t.Setenv("FOCUSFLOW_WORK_SECONDS", "1200")
	out, err := run(t, Deps{}, append(storeArgs(t, "memory"), "config")...)
	require.NoError(t, err)
	assert.Contains(t, out, "work_seconds: 1200")
	assert.Contains(t, out, "backend: memory")
}

func TestUnknownBackendFails(t *testing.T) {
	isolateEnv(t)
	_, err := run(t, Deps{}, append(storeArgs(t, "redis"), "list")...)
	require.Error(t, err)
	assert.Equal(t, model.KindConfiguration, model.KindOf(err))
}
