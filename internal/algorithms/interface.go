// Binarization algorithm suite with a closed dispatch table
package algorithms

import (
	"fmt"
	"strings"

	"document-binarization/internal/core"
)

// Algorithm binarizes a grayscale image. Apply receives parameters already
// validated against GetParameterInfo and returns a new binary image of the
// same dimensions.
type Algorithm interface {
	Apply(input *core.Image, params core.Resolved, opts Options) (*core.Image, error)
	GetName() string
	GetDescription() string
	GetParameterInfo() []core.ParameterInfo
}

// Options carries execution settings that never change results.
type Options struct {
	// Workers is the number of row bands processed concurrently. Values
	// below 2 run on the calling goroutine.
	Workers int
}

// ID enumerates the available algorithms.
type ID int

const (
	Otsu ID = iota
	Bernsen
	Niblack
	Sauvola
	Wolf
	Nick
	Gatos
	Su
	TRSingh
	Bataineh
	Wan
	ISauvola
	Bradley
	RobustNiblack
	LocalMean

	idCount
)

var names = [idCount]string{
	Otsu:          "otsu",
	Bernsen:       "bernsen",
	Niblack:       "niblack",
	Sauvola:       "sauvola",
	Wolf:          "wolf",
	Nick:          "nick",
	Gatos:         "gatos",
	Su:            "su",
	TRSingh:       "trsingh",
	Bataineh:      "bataineh",
	Wan:           "wan",
	ISauvola:      "isauvola",
	Bradley:       "bradley",
	RobustNiblack: "robust-niblack",
	LocalMean:     "localmean",
}

var aliases = map[string]ID{
	"global-otsu": Otsu,
	"globalotsu":  Otsu,
	"wolfjolion":  Wolf,
	"robust":      RobustNiblack,
	"mean":        LocalMean,
}

var algorithms = [idCount]Algorithm{
	Otsu:          NewOtsu(),
	Bernsen:       NewBernsen(),
	Niblack:       NewNiblack(),
	Sauvola:       NewSauvola(),
	Wolf:          NewWolf(),
	Nick:          NewNick(),
	Gatos:         NewGatos(),
	Su:            NewSu(),
	TRSingh:       NewTRSingh(),
	Bataineh:      NewBataineh(),
	Wan:           NewWan(),
	ISauvola:      NewISauvola(),
	Bradley:       NewBradley(),
	RobustNiblack: NewRobustNiblack(),
	LocalMean:     NewLocalMean(),
}

func (id ID) String() string {
	if !id.Valid() {
		return fmt.Sprintf("algorithm(%d)", int(id))
	}
	return names[id]
}

func (id ID) Valid() bool {
	return id >= 0 && id < idCount
}

// Parse maps an external name to an ID. Matching ignores case and
// surrounding space.
func Parse(name string) (ID, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for id, n := range names {
		if n == key {
			return ID(id), nil
		}
	}
	if id, ok := aliases[key]; ok {
		return id, nil
	}
	return 0, &core.ConfigurationError{
		Field:  "algorithm",
		Reason: fmt.Sprintf("algorithm not found: %q", name),
		Err:    core.ErrUnknownAlgorithm,
	}
}

// IDs lists every algorithm in declaration order.
func IDs() []ID {
	ids := make([]ID, idCount)
	for i := range ids {
		ids[i] = ID(i)
	}
	return ids
}

func Get(id ID) (Algorithm, bool) {
	if !id.Valid() {
		return nil, false
	}
	return algorithms[id], true
}

// Apply resolves params against the algorithm's schema and runs it. Keys the
// algorithm does not declare are returned in ignored.
func Apply(id ID, input *core.Image, params core.Parameters, opts Options) (out *core.Image, ignored []string, err error) {
	algorithm, ok := Get(id)
	if !ok {
		return nil, nil, &core.ConfigurationError{
			Field:  "algorithm",
			Reason: fmt.Sprintf("algorithm not found: %d", int(id)),
			Err:    core.ErrUnknownAlgorithm,
		}
	}

	resolved, ignored, err := ValidateParameters(id, params)
	if err != nil {
		return nil, nil, err
	}

	out, err = algorithm.Apply(input, resolved, opts)
	if err != nil {
		return nil, ignored, fmt.Errorf("%s: %w", id, err)
	}
	if !out.SameShape(input) || len(out.Data) != input.Size() {
		core.Invariant("%s produced %dx%d (len %d) for %dx%d input",
			id, out.Width, out.Height, len(out.Data), input.Width, input.Height)
	}
	return out, ignored, nil
}

// ValidateParameters checks params against the schema of id.
func ValidateParameters(id ID, params core.Parameters) (core.Resolved, []string, error) {
	algorithm, ok := Get(id)
	if !ok {
		return core.Resolved{}, nil, core.NewConfigurationError("algorithm", fmt.Sprintf("algorithm not found: %d", int(id)))
	}
	resolved, ignored, err := core.Resolve(algorithm.GetParameterInfo(), params)
	if err != nil {
		return core.Resolved{}, nil, fmt.Errorf("%s: %w", id, err)
	}
	return resolved, ignored, nil
}

// GetDefaultParams returns the documented defaults of id.
func GetDefaultParams(id ID) core.Parameters {
	algorithm, ok := Get(id)
	if !ok {
		return core.Parameters{}
	}
	return core.Defaults(algorithm.GetParameterInfo())
}

// Info describes an algorithm for listings.
type Info struct {
	ID          ID                   `json:"-"`
	Name        string               `json:"name"`
	Title       string               `json:"title"`
	Category    string               `json:"category"`
	Description string               `json:"description"`
	Parameters  []core.ParameterInfo `json:"parameters"`
}

// GetAllAlgorithms describes every algorithm in declaration order.
func GetAllAlgorithms() []Info {
	infos := make([]Info, 0, idCount)
	for _, id := range IDs() {
		a := algorithms[id]
		infos = append(infos, Info{
			ID:          id,
			Name:        id.String(),
			Title:       a.GetName(),
			Category:    categoryOf(id),
			Description: a.GetDescription(),
			Parameters:  a.GetParameterInfo(),
		})
	}
	return infos
}

func GetAlgorithmsByCategory() map[string][]ID {
	return map[string][]ID{
		"Global":           {Otsu},
		"Local statistics": {Niblack, RobustNiblack, Sauvola, Wolf, Nick, LocalMean, Bradley, TRSingh, Bataineh},
		"Local contrast":   {Bernsen, Wan},
		"Multi-stage":      {Gatos, Su, ISauvola},
	}
}

func categoryOf(id ID) string {
	for category, ids := range GetAlgorithmsByCategory() {
		for _, other := range ids {
			if other == id {
				return category
			}
		}
	}
	return ""
}
