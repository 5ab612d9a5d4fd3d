package timex

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type holder struct {
	TTL Duration `json:"ttl" yaml:"ttl"`
}

func TestDuration_JSON(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"string", `{"ttl":"90s"}`, 90 * time.Second, false},
		{"nanoseconds", `{"ttl":1000000000}`, time.Second, false},
		{"bad string", `{"ttl":"soon"}`, 0, true},
		{"bool", `{"ttl":true}`, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var h holder
			err := json.Unmarshal([]byte(tt.in), &h)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, h.TTL.Duration)
		})
	}
}

func TestDuration_YAML(t *testing.T) {
	var h holder
	require.NoError(t, yaml.Unmarshal([]byte("ttl: 24h\n"), &h))
	assert.Equal(t, 24*time.Hour, h.TTL.Duration)

	require.NoError(t, yaml.Unmarshal([]byte("ttl: 5000000000\n"), &h))
	assert.Equal(t, 5*time.Second, h.TTL.Duration)

	assert.Error(t, yaml.Unmarshal([]byte("ttl: [1]\n"), &h))
}

func TestDuration_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(holder{TTL: Duration{time.Minute}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ttl":"1m0s"}`, string(b))
}
