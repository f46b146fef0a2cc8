// Package commands_test provides tests for CLI command creation.
package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSearchCommand(t *testing.T) {
	cmd := NewSearchCommand()

	assert.Equal(t, "search <keyword>", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")

	// Verify flags exist (output is a global flag on root, not local)
	assert.NotNil(t, cmd.Flags().Lookup("family"), "flag family should exist")
}

func TestNewReportCommand(t *testing.T) {
	cmd := NewReportCommand()

	assert.Equal(t, "report [name] [param=value...]", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")
}

func TestNewListCommand(t *testing.T) {
	cmd := NewListCommand()

	assert.Equal(t, "list", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotNil(t, cmd.Flags().Lookup("family"), "flag family should exist")

	// Note: --output flag is a global persistent flag on root command, not local to list
}

func TestNewUICommand(t *testing.T) {
	cmd := NewUICommand()

	assert.Equal(t, "ui", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotNil(t, cmd.Flags().Lookup("family"), "flag family should exist")
}

func TestSearchTables(t *testing.T) {
	tests := []struct {
		family  string
		want    []string
		wantErr bool
	}{
		{family: "", want: []string{"group_bys"}},
		{family: "group_bys", want: []string{"group_bys"}},
		{family: "joins", want: []string{"joins"}},
		{family: "all", want: []string{"group_bys", "joins"}},
		{family: "staging_queries", wantErr: true},
	}

	for _, tt := range tests {
		t.Run("family "+tt.family, func(t *testing.T) {
			got, err := searchTables(tt.family)
			if tt.wantErr {
				assert.ErrorContains(t, err, "unknown family")
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
