package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailtriage/internal/model"
)

func outcomes() []model.Outcome {
	return []model.Outcome{
		model.Succeeded(model.Email{ID: "001", From: "a@x.com"}, model.CategoryComplaint, "We are sorry.\nA refund is on its way."),
		model.Failed(model.Email{ID: "002", From: "b@x.com"}, errors.New("classification failed")),
	}
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, outcomes(), 0))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, []string{"id", "email_id", "success", "classification", "response_sent"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"001", "a@x.com", "true", "complaint", "We", "are", "sorry.", "A", "refund", "is", "on", "its", "way."}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"002", "b@x.com", "false", "-", "-"}, strings.Fields(lines[2]))
	assert.Equal(t, "2 processed, 1 succeeded, 1 failed", lines[4])
}

func TestWriteTable_Truncates(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, outcomes()[:1], 10))
	assert.Contains(t, buf.String(), "We are ...")
	assert.NotContains(t, buf.String(), "refund")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, outcomes()))

	var rows []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "complaint", rows[0]["classification"])
	assert.NotContains(t, rows[1], "classification")
	assert.NotContains(t, rows[1], "response_sent")
	assert.Equal(t, false, rows[1]["success"])
}

func TestWriteJSON_EmptyIsArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 3))
	assert.Equal(t, "ab", truncate("abcdef", 2))
	assert.Equal(t, "a...", truncate("abcdef", 4))
	assert.Equal(t, "héll...", truncate("héllo wörld", 7))
}
