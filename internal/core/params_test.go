package core

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSchema = []ParameterInfo{
	{Name: "window", Kind: Integer, Min: 1, Max: 4096, Default: IntValue(75)},
	{Name: "k", Kind: Float, Min: -10, Max: 10, Default: FloatValue(0.2)},
}

func TestParametersOrderAndCopy(t *testing.T) {
	base := Parameters{}.WithInt("window", 31).WithFloat("k", 0.5)
	changed := base.WithInt("window", 11)

	assert.Equal(t, []string{"window", "k"}, base.Keys())
	assert.Equal(t, []string{"window", "k"}, changed.Keys())

	w, _ := base.Get("window")
	i, ok := w.Int()
	require.True(t, ok)
	assert.EqualValues(t, 31, i, "With must not modify the receiver")

	w, _ = changed.Get("window")
	i, _ = w.Int()
	assert.EqualValues(t, 11, i)
	assert.Equal(t, "{window: 31, k: 0.5}", base.String())
}

func TestResolve(t *testing.T) {
	cases := []struct {
		name    string
		params  Parameters
		window  int
		k       float64
		ignored []string
		wantErr bool
	}{
		{"defaults", Parameters{}, 75, 0.2, nil, false},
		{"explicit", Parameters{}.WithInt("window", 15).WithFloat("k", -0.3), 15, -0.3, nil, false},
		{"int widened to float", Parameters{}.WithInt("k", 1), 75, 1, nil, false},
		{"unknown keys ignored", Parameters{}.WithInt("radius", 3).WithFloat("alpha", 1), 75, 0.2, []string{"radius", "alpha"}, false},
		{"float for int key", Parameters{}.WithFloat("window", 15.5), 0, 0, nil, true},
		{"window below range", Parameters{}.WithInt("window", 0), 0, 0, nil, true},
		{"k above range", Parameters{}.WithFloat("k", 11), 0, 0, nil, true},
		{"nan rejected", Parameters{}.WithFloat("k", math.NaN()), 0, 0, nil, true},
		{"invalid value", Parameters{}.With("k", Value{}), 0, 0, nil, true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r, ignored, err := Resolve(testSchema, c.params)
			if c.wantErr {
				require.Error(t, err)
				assert.True(t, IsConfigurationError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, c.window, r.Int("window"))
			assert.InDelta(t, c.k, r.Float("k"), 1e-12)
			assert.Equal(t, c.ignored, ignored)
		})
	}
}

func TestResolveRequired(t *testing.T) {
	schema := []ParameterInfo{{Name: "seed", Kind: Integer, Min: 0, Max: 10, Required: true}}

	_, _, err := Resolve(schema, Parameters{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "seed")

	r, _, err := Resolve(schema, Parameters{}.WithInt("seed", 3))
	require.NoError(t, err)
	assert.Equal(t, 3, r.Int("seed"))
}

func TestResolvedUndeclaredPanics(t *testing.T) {
	r, _, err := Resolve(testSchema, Parameters{})
	require.NoError(t, err)

	assert.PanicsWithError(t, `internal invariant violated: parameter "q" not declared in schema`, func() {
		r.Float("q")
	})
}

func TestDefaults(t *testing.T) {
	p := Defaults(testSchema)
	assert.Equal(t, []string{"window", "k"}, p.Keys())

	r, _, err := Resolve(testSchema, p)
	require.NoError(t, err)
	assert.Equal(t, 75, r.Int("window"))
}

func TestParameterInfoJSON(t *testing.T) {
	out, err := json.Marshal(testSchema[1])
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"k","type":"float","min":-10,"max":10,"default":0.2,"description":""}`, string(out))

	out, err = json.Marshal(FloatValue(128))
	require.NoError(t, err)
	assert.Equal(t, "128.0", string(out))
}
