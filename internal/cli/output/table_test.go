package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable(t *testing.T) {
	table := NewTable("Path", "Line")
	assert.Equal(t, []string{"Path", "Line"}, table.Headers())
	assert.Empty(t, table.Rows())

	table.AddRow("cmd/main.go", "4")
	table.AddRow("pkg/run.go", "12")

	var buf bytes.Buffer
	require.NoError(t, PrintTable(&buf, table))

	out := buf.String()
	assert.Contains(t, out, "PATH")
	assert.Contains(t, out, "LINE")
	assert.Contains(t, out, "cmd/main.go")
	assert.Contains(t, out, "pkg/run.go")
	assert.Less(t, strings.Index(out, "PATH"), strings.Index(out, "cmd/main.go"))
}

func TestPrintKeyValues(t *testing.T) {
	var pairs KeyValues
	pairs.Add("Base URL", "http://127.0.0.1:4096")
	pairs.Add("PID", "4242")

	var buf bytes.Buffer
	require.NoError(t, PrintKeyValues(&buf, pairs))

	out := buf.String()
	assert.Contains(t, out, "Base URL")
	assert.Contains(t, out, "http://127.0.0.1:4096")
	assert.Contains(t, out, "PID")
	assert.Contains(t, out, "4242")
}

func TestPrintJSONAndYAML(t *testing.T) {
	data := sessionRow{ID: "ses_0002", Title: "docs"}

	var js bytes.Buffer
	require.NoError(t, PrintJSON(&js, data))
	assert.Equal(t, "{\n  \"id\": \"ses_0002\",\n  \"title\": \"docs\"\n}\n", js.String())

	var ym bytes.Buffer
	require.NoError(t, PrintYAML(&ym, data))
	assert.Equal(t, "id: ses_0002\ntitle: docs\n", ym.String())
}
