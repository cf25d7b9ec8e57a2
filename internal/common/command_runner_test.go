package common

import (
	"bytes"
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"resumetailor/internal/errors"
	"resumetailor/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestRunFileCommand(t *testing.T) {
	job := writeTemp(t, "job.txt", "Backend role")
	var out bytes.Buffer

	err := RunFileCommand(context.Background(), nil, 0,
		CommandConfig{OutputFormat: "text", Stdout: &out},
		[]string{job},
		func(files []InputFile) (string, error) { return files[0].Text(), nil },
		func(_ context.Context, in string) (types.TailoringResult, error) {
			return types.TailoringResult{ID: "abc", Summary: in, Style: types.StyleSlim}, nil
		},
		nil,
	)

	require.NoError(t, err)
	assert.Contains(t, out.String(), "ID: abc")
	assert.Contains(t, out.String(), "Backend role")
}

func TestRunFileCommandMissingFile(t *testing.T) {
	err := RunFileCommand(context.Background(), nil, 0, CommandConfig{OutputFormat: "json"},
		[]string{filepath.Join(t.TempDir(), "missing.txt")},
		func([]InputFile) (string, error) { return "", nil },
		func(context.Context, string) (string, error) { return "", nil },
		nil,
	)

	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestRunFileCommandRespectsSizeLimit(t *testing.T) {
	big := writeTemp(t, "resume.txt", strings.Repeat("x", 2048))

	err := RunFileCommand(context.Background(), nil, 1024, CommandConfig{OutputFormat: "json"},
		[]string{big},
		func(files []InputFile) (string, error) { return files[0].Text(), nil },
		func(context.Context, string) (string, error) { return "", nil },
		nil,
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid file")
}

func TestRunCommandPropagatesOperationError(t *testing.T) {
	boom := stderrors.New("boom")
	err := RunCommand(context.Background(), nil, CommandConfig{OutputFormat: "json"},
		func(context.Context) (string, error) { return "", boom })
	assert.ErrorIs(t, err, boom)
}

func TestHandleOutputToFile(t *testing.T) {
	target := filepath.Join(t.TempDir(), "nested", "result.md")
	handler := NewOutputHandler(nil)

	err := handler.HandleOutput(types.TailoringResult{ID: "abc", CandidateName: "Jane"}, CommandConfig{OutputFile: target, OutputFormat: "markdown"})
	require.NoError(t, err)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# Jane"))
}

func TestHandleOutputUnknownFormat(t *testing.T) {
	err := NewOutputHandler(nil).HandleOutput(types.TailoringResult{}, CommandConfig{OutputFormat: "xml", Stdout: &bytes.Buffer{}})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidFormat, errors.CodeOf(err))
}

func TestCheckResumeFile(t *testing.T) {
	fp := NewFileProcessor(nil, 0)
	assert.NoError(t, fp.CheckResumeFile("cv.PDF"))
	assert.NoError(t, fp.CheckResumeFile("cv.docx"))
	err := fp.CheckResumeFile("cv.png")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidFormat, errors.CodeOf(err))
}

func TestReadAllKeepsOrderAndBytes(t *testing.T) {
	resume := writeTemp(t, "cv.pdf", "%PDF-1.7\x00binary")
	job := writeTemp(t, "job.txt", "  Senior Go engineer  \n")

	files, err := NewFileProcessor(nil, 0).ReadAll(resume, job)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "cv.pdf", files[0].Name())
	assert.Equal(t, []byte("%PDF-1.7\x00binary"), files[0].Data)
	assert.Equal(t, "Senior Go engineer", files[1].Text())
}

func TestWriteReplacesExistingFile(t *testing.T) {
	target := writeTemp(t, "out.json", "old")
	fp := NewFileProcessor(nil, 0)

	require.NoError(t, fp.Write(target, []byte("new")))
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))

	entries, err := os.ReadDir(filepath.Dir(target))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp file left behind")
}
