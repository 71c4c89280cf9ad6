package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mohsinsiddi/w3mvp/internal/token"
	"github.com/Mohsinsiddi/w3mvp/internal/ui"
)

func TestChecksumVerdict(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"checksummed", "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045", ui.Success("address is correctly checksummed")},
		{"lowercase", "0xd8da6bf26964af9d7eed9e03e53415d37aa96045", ui.Warn("valid address but not checksummed")},
		{"uppercase", "0xD8DA6BF26964AF9D7EED9E03E53415D37AA96045", ui.Warn("valid address but not checksummed")},
		{"bad checksum", "0xD8dA6BF26964aF9D7eEd9e03E53415D37aA96045", ui.Err("checksum mismatch")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			addr, err := token.ValidateAddress(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.want, checksumVerdict(tc.input, addr))
		})
	}
}
