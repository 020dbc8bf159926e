package bfio

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/bfio.go/pkg/bfio"
)

func TestGateArgs(t *testing.T) {
	require.Equal(t, []string{"true"}, gateArgs(nil, []string{"true"}))
	require.Equal(t, []string{"false"}, gateArgs([]string{"false"}, []string{"true"}))
	require.Empty(t, gateArgs(nil, nil))
}

func TestCustomArgs(t *testing.T) {
	testCases := []struct {
		args   []string
		id     bfio.FunctionID
		values []string
		err    bool
	}{
		{args: []string{"20"}, id: bfio.FunctionID(20), values: []string{}},
		{args: []string{"0x15", "1", "2.5"}, id: bfio.FunctionID(0x15), values: []string{"1", "2.5"}},
		{args: nil, err: true},
		{args: []string{"256"}, err: true},
		{args: []string{"pad"}, err: true},
	}
	for _, tc := range testCases {
		id, values, err := customArgs(tc.args)
		if tc.err {
			require.Error(t, err, "%v", tc.args)
			continue
		}
		require.NoError(t, err, "%v", tc.args)
		require.Equal(t, tc.id, id)
		require.Equal(t, tc.values, values)
	}
}
