package loft_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loft-iot/loft-client/pkg/loft"
)

func TestApplication_JSONShape(t *testing.T) {
	t.Parallel()

	app := loft.NewApplication("app1")
	app.Metadata.Labels = map[string]string{"zone": "eu1"}
	require.NoError(t, loft.SetSection(app, loft.DownstreamSpec{}))

	data, err := json.Marshal(app)
	require.NoError(t, err)

	var decoded loft.Application
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "app1", decoded.Metadata.Name)
	assert.Equal(t, "eu1", decoded.Metadata.Labels["zone"])
	assert.Contains(t, decoded.Spec, "downstream")
}

func TestDownstreamSpec_Decode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		json     string
		internal bool
		servers  string
	}{
		{
			name:     "empty object selects internal",
			json:     `{}`,
			internal: true,
		},
		{
			name:     "external kafka",
			json:     `{"externalKafka":{"bootstrapServers":"kafka:9092","topic":"events"}}`,
			internal: false,
			servers:  "kafka:9092",
		},
		{
			name:     "unknown key falls back to internal",
			json:     `{"somethingElse":{}}`,
			internal: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var spec loft.DownstreamSpec
			require.NoError(t, json.Unmarshal([]byte(tt.json), &spec))

			assert.Equal(t, tt.internal, spec.IsInternal())

			if !tt.internal {
				require.NotNil(t, spec.ExternalKafka)
				assert.Equal(t, tt.servers, spec.ExternalKafka.BootstrapServers)
			}
		})
	}
}

func TestDownstreamSpec_Encode(t *testing.T) {
	t.Parallel()

	t.Run("internal encodes as empty object", func(t *testing.T) {
		t.Parallel()

		data, err := json.Marshal(loft.DownstreamSpec{})
		require.NoError(t, err)
		assert.JSONEq(t, `{}`, string(data))
	})

	t.Run("external kafka encodes under its key", func(t *testing.T) {
		t.Parallel()

		data, err := json.Marshal(loft.DownstreamSpec{
			ExternalKafka: &loft.ExternalKafkaSpec{
				BootstrapServers: "kafka:9092",
				Topic:            "events",
			},
		})
		require.NoError(t, err)
		assert.JSONEq(t, `{"externalKafka":{"bootstrapServers":"kafka:9092","topic":"events"}}`, string(data))
	})
}

func TestTrustAnchorEntry_Variants(t *testing.T) {
	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		t.Parallel()

		entry := loft.ApplicationStatusTrustAnchorEntry{
			Valid: &loft.ValidTrustAnchor{
				Subject:   "CN=app1",
				NotBefore: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
				NotAfter:  time.Date(2034, 1, 1, 0, 0, 0, 0, time.UTC),
			},
		}

		data, err := json.Marshal(entry)
		require.NoError(t, err)

		var decoded loft.ApplicationStatusTrustAnchorEntry
		require.NoError(t, json.Unmarshal(data, &decoded))
		require.NotNil(t, decoded.Valid)
		assert.Nil(t, decoded.Invalid)
		assert.Equal(t, "CN=app1", decoded.Valid.Subject)
	})

	t.Run("invalid", func(t *testing.T) {
		t.Parallel()

		var decoded loft.ApplicationStatusTrustAnchorEntry
		require.NoError(t, json.Unmarshal(
			[]byte(`{"invalid":{"error":"Expired","message":"certificate expired"}}`), &decoded))

		require.NotNil(t, decoded.Invalid)
		assert.Nil(t, decoded.Valid)
		assert.Equal(t, "Expired", decoded.Invalid.Error)
	})
}

func TestKafkaAppStatus_Dialect(t *testing.T) {
	t.Parallel()

	app := loft.NewApplication("app1")

	var conditions loft.Conditions
	conditions.Update("Ready", loft.ConditionStatus{Status: loft.Bool(true)})

	require.NoError(t, loft.SetSection(app, loft.KafkaAppStatus{
		ObservedGeneration: 3,
		Conditions:         conditions,
		User: &loft.KafkaUserStatus{
			Username: "user-app1",
			Password: "secret",
		},
	}))

	status, present, err := loft.SectionOf[loft.KafkaAppStatus](app)
	require.NoError(t, err)
	assert.True(t, present)
	assert.Equal(t, uint64(3), status.ObservedGeneration)
	require.NotNil(t, status.User)
	assert.Equal(t, "user-app1", status.User.Username)
}

func TestExternalEndpoint_Authentication(t *testing.T) {
	t.Parallel()

	t.Run("none round trips as string", func(t *testing.T) {
		t.Parallel()

		data, err := json.Marshal(loft.Authentication{})
		require.NoError(t, err)
		assert.JSONEq(t, `"none"`, string(data))

		var decoded loft.Authentication
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.True(t, decoded.IsNone())
	})

	t.Run("basic", func(t *testing.T) {
		t.Parallel()

		password := "hunter2"
		auth := loft.Authentication{Basic: &loft.BasicAuth{Username: "user", Password: &password}}

		data, err := json.Marshal(auth)
		require.NoError(t, err)

		var decoded loft.Authentication
		require.NoError(t, json.Unmarshal(data, &decoded))
		require.NotNil(t, decoded.Basic)
		assert.Equal(t, "user", decoded.Basic.Username)
	})

	t.Run("bearer", func(t *testing.T) {
		t.Parallel()

		var decoded loft.Authentication
		require.NoError(t, json.Unmarshal([]byte(`{"bearer":{"token":"tok"}}`), &decoded))
		require.NotNil(t, decoded.Bearer)
		assert.Equal(t, "tok", decoded.Bearer.Token)
	})
}

func TestDurationString(t *testing.T) {
	t.Parallel()

	timeout := loft.DurationString(90 * time.Second)

	data, err := json.Marshal(timeout)
	require.NoError(t, err)
	assert.JSONEq(t, `"1m30s"`, string(data))

	var decoded loft.DurationString
	require.NoError(t, json.Unmarshal([]byte(`"250ms"`), &decoded))
	assert.Equal(t, 250*time.Millisecond, time.Duration(decoded))

	require.Error(t, json.Unmarshal([]byte(`"soon"`), &decoded))
}

func TestPublishSpec_RoundTrip(t *testing.T) {
	t.Parallel()

	spec := loft.PublishSpec{
		Rules: []loft.PublishRule{
			{
				When: loft.When{IsChannel: "telemetry"},
				Then: []loft.Step{
					{SetAttribute: &loft.NameValue{Name: "priority", Value: "high"}},
				},
			},
			{
				When: loft.When{Not: &loft.When{IsChannel: "internal"}},
				Then: []loft.Step{{Drop: true}},
			},
			{
				Then: []loft.Step{{Break: true}},
			},
		},
	}

	data, err := json.Marshal(spec)
	require.NoError(t, err)

	var decoded loft.PublishSpec
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, spec, decoded)
}

func TestWhen_Decode(t *testing.T) {
	t.Parallel()

	t.Run("always as string", func(t *testing.T) {
		t.Parallel()

		var when loft.When
		require.NoError(t, json.Unmarshal([]byte(`"always"`), &when))
		assert.True(t, when.IsAlways())
	})

	t.Run("unknown string rejected", func(t *testing.T) {
		t.Parallel()

		var when loft.When
		require.Error(t, json.Unmarshal([]byte(`"sometimes"`), &when))
	})

	t.Run("and combinator", func(t *testing.T) {
		t.Parallel()

		var when loft.When
		require.NoError(t, json.Unmarshal(
			[]byte(`{"and":[{"isChannel":"a"},{"isChannel":"b"}]}`), &when))
		require.Len(t, when.And, 2)
		assert.Equal(t, "a", when.And[0].IsChannel)
	})
}

func TestStep_UnitVariants(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(loft.Step{Drop: true})
	require.NoError(t, err)
	assert.JSONEq(t, `"drop"`, string(data))

	var decoded loft.Step
	require.NoError(t, json.Unmarshal([]byte(`"break"`), &decoded))
	assert.True(t, decoded.Break)
}
