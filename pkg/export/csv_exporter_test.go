package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVRender(t *testing.T) {
	data := Dataset{
		Headers: []string{"Last Name", "First Name", "Email"},
		Rows: [][]string{
			{"Rossi", "Anna", "anna@school.test"},
			{"Verdi", "Marco"},
		},
	}

	out, err := NewCSVExporter().Render(data)
	require.NoError(t, err)
	assert.Equal(t, "Last Name,First Name,Email\nRossi,Anna,anna@school.test\nVerdi,Marco,\n", string(out))
}

func TestCSVRenderRejectsWideRows(t *testing.T) {
	data := Dataset{
		Headers: []string{"Email"},
		Rows:    [][]string{{"anna@school.test", "extra"}},
	}

	_, err := NewCSVExporter().Render(data)
	require.Error(t, err)
}

func TestCSVRenderRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
}
