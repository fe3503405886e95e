// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseContinue(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
		err      error
	}{
		{input: "y", expected: true},
		{input: "Y", expected: true},
		{input: "n", expected: false},
		{input: "", err: ErrInputEmpty},
		{input: "yes", err: ErrInvalidChoice},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			cont, err := ParseContinue(tt.input)
			require.ErrorIs(t, err, tt.err)
			require.Equal(t, tt.expected, cont)
		})
	}
}

func TestValidateTag(t *testing.T) {
	require := require.New(t)
	require.NoError(ValidateTag(""))
	require.NoError(ValidateTag("votes"))
	require.ErrorIs(ValidateTag(strings.Repeat("a", 33)), ErrInputTooLarge)
}
