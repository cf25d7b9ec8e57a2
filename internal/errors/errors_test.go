package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{" warn ", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"trace", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTypeAndCodeThroughWrapping(t *testing.T) {
	base := NewNetworkError(ErrCodeRegenerateFailed, "regenerate", stderrors.New("502"))
	wrapped := fmt.Errorf("open workspace: %w", base)

	assert.True(t, IsType(wrapped, ErrorTypeNetwork))
	assert.False(t, IsType(wrapped, ErrorTypeValidation))
	assert.Equal(t, ErrCodeRegenerateFailed, CodeOf(wrapped))
	assert.Empty(t, CodeOf(stderrors.New("plain")))
	assert.Equal(t, "REGENERATE_FAILED: regenerate (caused by: 502)", base.Error())
}

func TestLogErrorFlattensAppError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, slog.LevelDebug)

	err := NewStorageError(ErrCodeDraftWriteFailed, "save draft", stderrors.New("disk full")).
		WithContext("id", "abc")
	logger.LogError(err, "Draft save failed", "section", "experience")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "Draft save failed", record["msg"])
	assert.Equal(t, "storage", record["error_type"])
	assert.Equal(t, ErrCodeDraftWriteFailed, record["error_code"])
	assert.Equal(t, "disk full", record["cause"])
	assert.Equal(t, "abc", record["id"])
	assert.Equal(t, "experience", record["section"])
}
