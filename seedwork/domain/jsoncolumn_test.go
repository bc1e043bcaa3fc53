package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONColumn_ValueThenScanRoundTrips(t *testing.T) {
	col := JSONColumn[[]string]{Value: []string{"a", "b", "c"}}

	raw, err := col.Value()
	require.NoError(t, err)

	var scanned JSONColumn[[]string]
	require.NoError(t, scanned.Scan(raw))
	assert.Equal(t, col.Value, scanned.Value)
}

func TestJSONColumn_ScanNilLeavesZeroValue(t *testing.T) {
	var col JSONColumn[[]string]
	require.NoError(t, col.Scan(nil))
	assert.Nil(t, col.Value)
}

func TestJSONColumn_ScanFromBytesAndString(t *testing.T) {
	var fromBytes JSONColumn[map[string]int]
	require.NoError(t, fromBytes.Scan([]byte(`{"a":1}`)))
	assert.Equal(t, 1, fromBytes.Value["a"])

	var fromString JSONColumn[map[string]int]
	require.NoError(t, fromString.Scan(`{"b":2}`))
	assert.Equal(t, 2, fromString.Value["b"])
}

func TestJSONColumn_ScanUnsupportedTypeErrors(t *testing.T) {
	var col JSONColumn[[]string]
	err := col.Scan(42)
	assert.Error(t, err)
}

func TestJSONColumn_GormDataType(t *testing.T) {
	var col JSONColumn[[]string]
	assert.Equal(t, "jsonb", col.GormDataType())
}
