package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVRenderOrdersColumnsByHeader(t *testing.T) {
	exporter := NewCSVExporter()

	out, err := exporter.Render(Dataset{
		Headers: []string{"Applicant ID", "Name", "Status"},
		Rows: []map[string]string{
			{"Name": "Dela Cruz, Juan", "Applicant ID": "APL1001", "Status": "Approved"},
			{"Applicant ID": "APL1002", "Status": "Pending Review"},
		},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Applicant ID,Name,Status", lines[0])
	assert.Equal(t, `APL1001,"Dela Cruz, Juan",Approved`, lines[1])
	// missing cells render as empty fields
	assert.Equal(t, "APL1002,,Pending Review", lines[2])
}

func TestCSVRenderRequiresHeaders(t *testing.T) {
	exporter := NewCSVExporter()

	_, err := exporter.Render(Dataset{})
	require.Error(t, err)
}
