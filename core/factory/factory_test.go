package factory

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type endpointSink struct {
	url    string
	bucket string
}

type endpointConf struct {
	URL       string `json:"url"`
	Bucket    string `json:"bucket"`
	BatchSize int    `json:"batch_size"`
}

func endpointFactory(conf map[string]any) (*endpointSink, error) {
	var c endpointConf
	if err := Decode(conf, &c); err != nil {
		return nil, err
	}
	if c.URL == "" {
		return nil, errors.New("url is required")
	}
	return &endpointSink{url: c.URL, bucket: c.Bucket}, nil
}

func TestRegistryCreate(t *testing.T) {
	reg := NewRegistry[*endpointSink]()
	require.NoError(t, reg.Register("influx", endpointFactory))

	s, err := reg.Create(ModuleConfig{Type: "influx", Conf: map[string]any{"url": "http://db:8086", "bucket": "trips"}})
	require.NoError(t, err)
	assert.Equal(t, "http://db:8086", s.url)
	assert.Equal(t, "trips", s.bucket)

	_, err = reg.Create(ModuleConfig{Type: "influx"})
	assert.EqualError(t, err, "influx: url is required")
}

func TestRegistryErrors(t *testing.T) {
	reg := NewRegistry[*endpointSink]()
	require.NoError(t, reg.Register("influx", endpointFactory))
	assert.Error(t, reg.Register("influx", endpointFactory))
	assert.Error(t, reg.Register("nil", nil))

	_, err := reg.Create(ModuleConfig{Type: "statsd"})
	assert.ErrorIs(t, err, ErrUnknownModule)
	assert.Contains(t, err.Error(), "known: influx")
}

func TestRegistryNames(t *testing.T) {
	reg := NewRegistry[*endpointSink]()
	for _, n := range []string{"prometheus", "influx", "nop"} {
		require.NoError(t, reg.Register(n, endpointFactory))
	}
	assert.Equal(t, []string{"influx", "nop", "prometheus"}, reg.Names())
}

func TestDecodeWeaklyTyped(t *testing.T) {
	var c endpointConf
	require.NoError(t, Decode(map[string]any{"url": "http://db", "batch_size": "500"}, &c))
	assert.Equal(t, 500, c.BatchSize)
}
