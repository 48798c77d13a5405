package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withArgs(t *testing.T, args ...string) {
	t.Helper()
	old := os.Args
	os.Args = append([]string{"test"}, args...)
	t.Cleanup(func() { os.Args = old })
}

func TestParseJson_NoFlagLoadsNothing(t *testing.T) {
	withArgs(t)

	c := &Config{}
	c.LoadDefaults()
	parseJson(c)

	assert.Equal(t, ":8080", c.EndpointAddr)
}

func TestParseJson_OverlaysNonZeroFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.json")
	body := `{
		"endpoint_addr": ":9090",
		"amqp_url": "amqp://user:pass@mq:5672/",
		"store_timeout_seconds": 60,
		"reject_duplicates": true
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o660))

	withArgs(t, "-c", path)

	c := &Config{}
	c.LoadDefaults()
	parseJson(c)

	assert.Equal(t, ":9090", c.EndpointAddr)
	assert.Equal(t, "amqp://user:pass@mq:5672/", c.AMQPURL)
	assert.Equal(t, 60*time.Second, c.StoreTimeout)
	assert.True(t, c.RejectDuplicates)

	// untouched fields keep their defaults
	assert.Equal(t, "instashare_zipper", c.ZipperQueue)
	assert.Equal(t, "secretKey", c.SecretKey)
}

func TestParseJson_PanicsOnInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o660))

	withArgs(t, "-config", path)

	c := &Config{}
	c.LoadDefaults()
	assert.Panics(t, func() { parseJson(c) })
}
