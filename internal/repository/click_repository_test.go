package repository

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClicksQuery_LinksFilterUsesSingleParameter(t *testing.T) {
	ids := make([]int64, 70000)
	for i := range ids {
		ids[i] = int64(i + 1)
	}

	query, args, err := clicksQuery(linksFilter(ids))
	require.NoError(t, err)

	assert.Contains(t, query, "utm_link_id = ANY($1::bigint[])")
	assert.NotContains(t, query, "$2")
	require.Len(t, args, 1)

	literal, ok := args[0].(string)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(literal, "{1,2,3,"))
	assert.True(t, strings.HasSuffix(literal, ",69999,70000}"))
}

func TestInt8Array_Value(t *testing.T) {
	v, err := int8Array{42}.Value()
	require.NoError(t, err)
	assert.Equal(t, "{42}", v)

	v, err = int8Array{-1, 7}.Value()
	require.NoError(t, err)
	assert.Equal(t, "{-1,7}", v)
}
