package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExitError(t *testing.T) {
	plain := NewExitError(ExitCommandError, "bad flag")
	assert.Equal(t, "bad flag", plain.Error())
	assert.Equal(t, ExitCommandError, GetExitCode(plain))

	cause := errors.New("boom")
	wrapped := WrapExitError(ExitFailure, "loading terminology", cause)
	assert.Equal(t, "loading terminology: boom", wrapped.Error())
	assert.Equal(t, ExitFailure, GetExitCode(wrapped))
	assert.ErrorIs(t, wrapped, cause)

	// A wrapped ExitError still surfaces its code.
	outer := fmt.Errorf("outer: %w", wrapped)
	assert.Equal(t, ExitFailure, GetExitCode(outer))

	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
}

func TestOutputFormatter_Print(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		f := &OutputFormatter{Format: "json", Writer: &buf}
		require.NoError(t, f.Print(map[string]any{"status": "ok"}, func(io.Writer) {
			t.Fatal("text func must not run in json mode")
		}))
		assert.JSONEq(t, `{"status":"ok"}`, buf.String())
	})

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		f := &OutputFormatter{Format: "text", Writer: &buf}
		require.NoError(t, f.Print(nil, func(w io.Writer) {
			fmt.Fprintln(w, "hello")
		}))
		assert.Equal(t, "hello\n", buf.String())
	})
}

func TestOutputFormatter_PrintRaw(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &buf}
	require.NoError(t, f.PrintRaw([]byte(`{"a":1}`)))
	assert.Equal(t, "{\"a\":1}\n", buf.String())
}
