package decoder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupEntries_ByIndex(t *testing.T) {
	varbinds := map[string]interface{}{
		"1.3.6.1.2.1.43.18.1.1.7.1.1": 8,
		"1.3.6.1.2.1.43.18.1.1.8.1.1": "Paper Jam in duplex unit",
		"1.3.6.1.2.1.43.18.1.1.7.1.2": 1104,
		"1.3.6.1.2.1.43.18.1.1.4.1.2": 11,
	}

	entries, supply := GroupEntries(varbinds)

	require.Len(t, entries, 2)
	assert.Nil(t, supply)

	assert.Equal(t, 8, entries["1"].StdCode)
	assert.Equal(t, "Paper Jam in duplex unit", entries["1"].Description)
	assert.Equal(t, 1104, entries["2"].StdCode)
	assert.Equal(t, 11, entries["2"].AlertGroup)
}

func TestGroupEntries_DefaultIndex(t *testing.T) {
	// 末尾行号缺失时归入 "0" 行
	varbinds := map[string]interface{}{
		"1.3.6.1.2.1.43.18.1.1.7": "8",
	}

	entries, _ := GroupEntries(varbinds)

	require.Len(t, entries, 1)
	assert.Equal(t, 8, entries["0"].StdCode)
}

func TestGroupEntries_LeadingDot(t *testing.T) {
	varbinds := map[string]interface{}{
		".1.3.6.1.2.1.43.18.1.1.9.1": 2012,
	}

	entries, _ := GroupEntries(varbinds)

	require.Len(t, entries, 1)
	assert.Equal(t, 2012, entries["1"].VendorCode)
}

func TestGroupEntries_Supply(t *testing.T) {
	varbinds := map[string]interface{}{
		"1.3.6.1.2.1.43.11.1.1.6.1.1": "Black Toner",
		"1.3.6.1.2.1.43.11.1.1.9.1.1": 15,
	}

	entries, supply := GroupEntries(varbinds)

	assert.Empty(t, entries)
	require.NotNil(t, supply)
	assert.Equal(t, "Black Toner", supply.Name)
	assert.Equal(t, 15, supply.Level)
}

func TestGroupEntries_FirstSupplyPairKept(t *testing.T) {
	// 字典序遍历，行号 1 的耗材先于行号 2
	varbinds := map[string]interface{}{
		"1.3.6.1.2.1.43.11.1.1.6.1.1": "Black Toner",
		"1.3.6.1.2.1.43.11.1.1.9.1.1": 3,
		"1.3.6.1.2.1.43.11.1.1.6.1.2": "Cyan Toner",
		"1.3.6.1.2.1.43.11.1.1.9.1.2": 80,
	}

	_, supply := GroupEntries(varbinds)

	require.NotNil(t, supply)
	assert.Equal(t, "Black Toner", supply.Name)
	assert.Equal(t, 3, supply.Level)
}

func TestGroupEntries_UnknownOIDsIgnored(t *testing.T) {
	varbinds := map[string]interface{}{
		"1.3.6.1.2.1.1.3.0":           123456,
		"1.3.6.1.4.1.11.2.3.9.1.1.3":  "something vendor specific",
		"1.3.6.1.2.1.43.18.1.1.7.1.1": 3,
	}

	entries, supply := GroupEntries(varbinds)

	require.Len(t, entries, 1)
	assert.Nil(t, supply)
	assert.Equal(t, 3, entries["1"].StdCode)
}

func TestGroupEntries_MalformedValuesTolerated(t *testing.T) {
	// 单个坏值不影响同批其余字段
	varbinds := map[string]interface{}{
		"1.3.6.1.2.1.43.18.1.1.7.1.1": "not-a-number",
		"1.3.6.1.2.1.43.18.1.1.8.1.1": "Cover Open",
	}

	entries, _ := GroupEntries(varbinds)

	require.Len(t, entries, 1)
	assert.Equal(t, 0, entries["1"].StdCode)
	assert.Equal(t, "Cover Open", entries["1"].Description)
}

func TestToInt(t *testing.T) {
	cases := []struct {
		in   interface{}
		want int
	}{
		{8, 8},
		{int64(1104), 1104},
		{float64(42), 42},
		{" 13 ", 13},
	}
	for _, tc := range cases {
		got, err := toInt(tc.in)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}

	_, err := toInt(nil)
	assert.Error(t, err)
	_, err = toInt([]string{"8"})
	assert.Error(t, err)
}
