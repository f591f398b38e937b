package switchyard_test

import (
	"strings"
	"testing"

	"github.com/aretw0/switchyard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{name: "plain", input: "go=true n=3", want: "go=true n=3"},
		{name: "keeps tabs and newlines", input: "a\tb\r\n", want: "a\tb\r\n"},
		{name: "strips ansi escape", input: "\x1b[31mred\x1b[0m", want: "[31mred[0m"},
		{name: "strips null and bell", input: "a\x00b\x07", want: "ab"},
		{name: "invalid utf8", input: "\xff\xfe", wantErr: switchyard.ErrInvalidUTF8},
		{name: "too large", input: strings.Repeat("a", switchyard.DefaultMaxInputSize+1), wantErr: switchyard.ErrInputTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := switchyard.SanitizeInput(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSanitizeInput_EnvLimit(t *testing.T) {
	t.Setenv(switchyard.EnvMaxInputSize, "4")

	_, err := switchyard.SanitizeInput("12345")
	assert.ErrorIs(t, err, switchyard.ErrInputTooLarge)

	t.Setenv(switchyard.EnvMaxInputSize, "garbage")
	_, err = switchyard.SanitizeInput("12345")
	assert.NoError(t, err)
}
