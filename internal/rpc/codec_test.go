package rpc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONCodec(t *testing.T) {
	type msg struct {
		Name string `json:"name"`
		PNG  []byte `json:"png"`
	}
	c := jsonCodec{name: codecJSON}
	assert.Equal(t, "json", c.Name())

	data, err := c.Marshal(&msg{Name: "An", PNG: []byte{1, 2}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"An","png":"AQI="}`, string(data))

	var out msg
	require.NoError(t, c.Unmarshal([]byte(`{"name":"Bình","png":"AQI="}`), &out))
	assert.Equal(t, "Bình", out.Name)
	assert.Equal(t, []byte{1, 2}, out.PNG)
}
