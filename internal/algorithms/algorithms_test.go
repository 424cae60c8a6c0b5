package algorithms

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"document-binarization/internal/core"
	"document-binarization/internal/stats"
)

func newImage(t *testing.T, w, h int, fill func(x, y int) byte) *core.Image {
	t.Helper()
	img, err := core.NewImage(w, h)
	require.NoError(t, err)
	for y := range h {
		for x := range w {
			img.Data[y*w+x] = fill(x, y)
		}
	}
	return img
}

// page draws dark vertical strokes three pixels wide every twelve pixels on
// a light background.
func page(t *testing.T, w, h int) *core.Image {
	return newImage(t, w, h, func(x, _ int) byte {
		if m := x % 12; m >= 5 && m <= 7 {
			return 40
		}
		return 200
	})
}

func isStroke(x int) bool {
	m := x % 12
	return m >= 5 && m <= 7
}

func noisyPage(t *testing.T, seed int64, w, h int) *core.Image {
	rng := rand.New(rand.NewSource(seed))
	base := page(t, w, h)
	for i, v := range base.Data {
		n := int(v) + rng.Intn(41) - 20 + (i%w)/4
		base.Data[i] = byte(min(max(n, 0), 255))
	}
	return base
}

func run(t *testing.T, id ID, img *core.Image, params core.Parameters, workers int) *core.Image {
	t.Helper()
	out, _, err := Apply(id, img, params, Options{Workers: workers})
	require.NoError(t, err, id.String())
	return out
}

func TestDispatchTableIsComplete(t *testing.T) {
	seen := map[string]bool{}
	for _, id := range IDs() {
		a, ok := Get(id)
		require.True(t, ok)
		require.NotNil(t, a, "no implementation for %d", int(id))
		assert.NotEmpty(t, names[id])
		assert.NotEmpty(t, a.GetName())
		assert.NotEmpty(t, a.GetDescription())
		assert.False(t, seen[names[id]], "duplicate name %s", names[id])
		seen[names[id]] = true

		parsed, err := Parse(id.String())
		require.NoError(t, err)
		assert.Equal(t, id, parsed)

		assert.NotEmpty(t, categoryOf(id), "%s has no category", id)
	}
	assert.Len(t, GetAllAlgorithms(), int(idCount))
}

func TestParse(t *testing.T) {
	id, err := Parse("  Sauvola ")
	require.NoError(t, err)
	assert.Equal(t, Sauvola, id)

	id, err = Parse("global-otsu")
	require.NoError(t, err)
	assert.Equal(t, Otsu, id)

	_, err = Parse("kittler")
	require.Error(t, err)
	assert.True(t, core.IsConfigurationError(err))
	assert.True(t, errors.Is(err, core.ErrUnknownAlgorithm))

	_, _, err = Apply(ID(99), page(t, 4, 4), core.Parameters{}, Options{})
	assert.True(t, errors.Is(err, core.ErrUnknownAlgorithm))
	assert.Equal(t, "algorithm(99)", ID(99).String())
}

func TestShapeRangeAndDeterminism(t *testing.T) {
	img := noisyPage(t, 7, 61, 37)

	for _, id := range IDs() {
		t.Run(id.String(), func(t *testing.T) {
			first := run(t, id, img, core.Parameters{}.WithInt("window", 15), 1)
			assert.Equal(t, img.Width, first.Width)
			assert.Equal(t, img.Height, first.Height)
			assert.Len(t, first.Data, img.Size())
			assert.True(t, first.IsBinary())

			again := run(t, id, img, core.Parameters{}.WithInt("window", 15), 1)
			assert.Equal(t, first.Data, again.Data)

			parallel := run(t, id, img, core.Parameters{}.WithInt("window", 15), 4)
			assert.Equal(t, first.Data, parallel.Data, "worker count changed the result")
		})
	}
}

func TestInputIsNotModified(t *testing.T) {
	img := noisyPage(t, 3, 30, 20)
	orig := img.Clone()
	params := core.Parameters{}.WithInt("window", 9)
	before := params.String()

	for _, id := range IDs() {
		run(t, id, img, params, 2)
		require.Equal(t, orig.Data, img.Data, id.String())
	}
	assert.Equal(t, before, params.String())
}

func TestFlatImageIsOneClass(t *testing.T) {
	sizes := [][2]int{{1, 1}, {5, 3}, {40, 40}}
	for _, id := range IDs() {
		for _, size := range sizes {
			img := newImage(t, size[0], size[1], func(int, int) byte { return 128 })
			out := run(t, id, img, core.Parameters{}, 1)
			require.True(t, out.IsBinary(), "%s %v", id, size)
			for _, v := range out.Data {
				require.Equal(t, out.Data[0], v, "%s %v produced two classes", id, size)
			}
		}
	}
}

func TestDefaultsMatchExplicitDefaults(t *testing.T) {
	img := noisyPage(t, 11, 50, 40)
	for _, id := range IDs() {
		implicit := run(t, id, img, core.Parameters{}, 1)
		explicit := run(t, id, img, GetDefaultParams(id), 1)
		assert.Equal(t, implicit.Data, explicit.Data, id.String())
	}

	defaults := GetDefaultParams(Sauvola)
	assert.Equal(t, []string{"window", "k", "R"}, defaults.Keys())
	w, _ := defaults.Get("window")
	assert.Equal(t, "75", w.String())
}

func TestBinaryInputStaysBinary(t *testing.T) {
	img := noisyPage(t, 5, 48, 32)
	for _, id := range IDs() {
		once := run(t, id, img, core.Parameters{}.WithInt("window", 11), 1)
		twice := run(t, id, once, core.Parameters{}.WithInt("window", 11), 1)
		assert.True(t, twice.IsBinary(), id.String())
	}

	once := run(t, Otsu, img, core.Parameters{}, 1)
	twice := run(t, Otsu, once, core.Parameters{}, 1)
	assert.Equal(t, once.Data, twice.Data, "otsu is a fixed point on its own output")
}

func TestSeparatesStrokesFromBackground(t *testing.T) {
	img := page(t, 64, 48)

	for _, id := range IDs() {
		t.Run(id.String(), func(t *testing.T) {
			params := core.Parameters{}.WithInt("window", 15)
			if id == Su {
				params = core.Parameters{}
			}
			out := run(t, id, img, params, 1)

			correct := 0
			for y := range img.Height {
				for x := range img.Width {
					want := core.White
					if isStroke(x) {
						want = core.Black
					}
					if out.At(x, y) == want {
						correct++
					}
				}
			}
			accuracy := float64(correct) / float64(img.Size())
			assert.GreaterOrEqual(t, accuracy, 0.95, "accuracy %.3f", accuracy)
		})
	}
}

func TestOtsuBimodal(t *testing.T) {
	img := newImage(t, 10, 10, func(_, y int) byte {
		if y < 5 {
			return 10
		}
		return 200
	})

	threshold, ok := stats.OtsuThreshold(stats.Histogram(img))
	require.True(t, ok)
	assert.Greater(t, threshold, uint8(10))
	assert.Less(t, threshold, uint8(200))

	out := run(t, Otsu, img, core.Parameters{}, 1)
	for y := range 10 {
		for x := range 10 {
			if y < 5 {
				assert.Equal(t, core.Black, out.At(x, y))
			} else {
				assert.Equal(t, core.White, out.At(x, y))
			}
		}
	}
}

func TestBernsenLowContrast(t *testing.T) {
	dim := newImage(t, 8, 8, func(x, _ int) byte { return byte(90 + x%2) })
	out := run(t, Bernsen, dim, core.Parameters{}.WithInt("window", 3), 1)
	for _, v := range out.Data {
		assert.Equal(t, core.Black, v)
	}

	bright := newImage(t, 8, 8, func(x, _ int) byte { return byte(110 + x%2) })
	out = run(t, Bernsen, bright, core.Parameters{}.WithInt("window", 3), 1)
	for _, v := range out.Data {
		assert.Equal(t, core.White, v)
	}

	out = run(t, Bernsen, bright, core.Parameters{}.WithInt("window", 3).WithInt("threshold", 200), 1)
	for _, v := range out.Data {
		assert.Equal(t, core.Black, v)
	}
}

func TestParameterErrors(t *testing.T) {
	img := page(t, 20, 20)
	cases := []struct {
		name   string
		id     ID
		params core.Parameters
	}{
		{"zero window", Niblack, core.Parameters{}.WithInt("window", 0)},
		{"negative window", Sauvola, core.Parameters{}.WithInt("window", -5)},
		{"float window", Wolf, core.Parameters{}.WithFloat("window", 15)},
		{"float threshold", Bernsen, core.Parameters{}.WithFloat("threshold", 100)},
		{"range", Sauvola, core.Parameters{}.WithFloat("R", 0)},
		{"postprocess flag", Gatos, core.Parameters{}.WithInt("postprocess", 2)},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			out, _, err := Apply(c.id, img, c.params, Options{})
			require.Error(t, err)
			assert.Nil(t, out)
			assert.True(t, core.IsConfigurationError(err))
		})
	}
}

func TestUnknownKeysAreIgnored(t *testing.T) {
	img := page(t, 20, 20)
	out, ignored, err := Apply(Otsu, img, core.Parameters{}.WithInt("window", 75), Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"window"}, ignored)
	assert.True(t, out.IsBinary())
}

func TestStrokeWidth(t *testing.T) {
	mask := make([]bool, 20)
	for _, x := range []int{2, 3, 6, 7, 12, 13, 16, 17} {
		mask[x] = true
	}
	// gaps: 3->6 = 3, 7->12 = 5, 13->16 = 3
	assert.Equal(t, 3, strokeWidth(mask, 20, 1))
	assert.Equal(t, 1, strokeWidth(make([]bool, 20), 20, 1))
}

func TestBatainehThreshold(t *testing.T) {
	assert.InDelta(t, 0.4, batainehThreshold(0.4, 0, 0, 0), 1e-12)
	assert.InDelta(t, 0.5-0.25*0.1/(0.6*0.6), batainehThreshold(0.5, 0.1, 0.5, 0.5), 1e-12)
}
