// Parameter files selecting an algorithm, its parameters and post-processing
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"document-binarization/internal/core"
	"document-binarization/internal/morphology"
)

// Format is a parameter file syntax.
type Format int

const (
	TOML Format = iota
	YAML
)

func (f Format) String() string {
	if f == YAML {
		return "yaml"
	}
	return "toml"
}

// FormatOf picks the syntax from the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return TOML, nil
	case ".yaml", ".yml":
		return YAML, nil
	default:
		return 0, core.NewConfigurationError("config", fmt.Sprintf("unsupported file type %q", filepath.Ext(path)))
	}
}

// File is a decoded parameter file. Parameters keep the order in which
// they appear in the file.
type File struct {
	Algorithm  string
	Workers    int
	Parameters core.Parameters
	Morphology []morphology.Step
}

type stepFile struct {
	Op         string `toml:"op" yaml:"op"`
	Shape      string `toml:"shape" yaml:"shape"`
	Size       int    `toml:"size" yaml:"size"`
	Iterations int    `toml:"iterations" yaml:"iterations"`
}

func (s stepFile) step() (morphology.Step, error) {
	op, err := morphology.ParseOp(s.Op)
	if err != nil {
		return morphology.Step{}, err
	}
	shape, err := morphology.ParseShape(s.Shape)
	if err != nil {
		return morphology.Step{}, err
	}
	step := morphology.Step{Op: op, Shape: shape, Size: s.Size, Iterations: s.Iterations}
	if step.Size == 0 {
		step.Size = 3
	}
	if step.Iterations == 0 {
		step.Iterations = 1
	}
	return step, step.Validate()
}

// Load reads a .toml, .yaml or .yml parameter file.
func Load(path string) (*File, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	f, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Decode parses data in the given syntax.
func Decode(data []byte, format Format) (*File, error) {
	if format == YAML {
		return decodeYAML(data)
	}
	return decodeTOML(data)
}

func newFile(algorithm string, workers int, steps []stepFile) (*File, error) {
	if workers < 0 {
		return nil, core.NewConfigurationError("workers", "must not be negative")
	}
	f := &File{Algorithm: algorithm, Workers: workers}
	for i, s := range steps {
		step, err := s.step()
		if err != nil {
			return nil, fmt.Errorf("morphology step %d: %w", i+1, err)
		}
		f.Morphology = append(f.Morphology, step)
	}
	return f, nil
}

type tomlFile struct {
	Algorithm  string         `toml:"algorithm"`
	Workers    int            `toml:"workers"`
	Parameters map[string]any `toml:"parameters"`
	Morphology []stepFile     `toml:"morphology"`
}

func decodeTOML(data []byte) (*File, error) {
	var raw tomlFile
	md, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, fmt.Errorf("parsing toml: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, core.NewConfigurationError(undecoded[0].String(), "unknown setting")
	}

	f, err := newFile(raw.Algorithm, raw.Workers, raw.Morphology)
	if err != nil {
		return nil, err
	}
	for _, key := range md.Keys() {
		if len(key) != 2 || key[0] != "parameters" {
			continue
		}
		name := key[1]
		switch v := raw.Parameters[name].(type) {
		case int64:
			f.Parameters.Set(name, core.IntValue(v))
		case float64:
			f.Parameters.Set(name, core.FloatValue(v))
		default:
			return nil, core.NewConfigurationError(name, fmt.Sprintf("unsupported parameter type %T", v))
		}
	}
	return f, nil
}

type yamlFile struct {
	Algorithm  string     `yaml:"algorithm"`
	Workers    int        `yaml:"workers"`
	Parameters yaml.Node  `yaml:"parameters"`
	Morphology []stepFile `yaml:"morphology"`
}

var yamlKeys = map[string]bool{"algorithm": true, "workers": true, "parameters": true, "morphology": true}

func decodeYAML(data []byte) (*File, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing yaml: %w", err)
	}
	if len(doc.Content) == 0 {
		return newFile("", 0, nil)
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, core.NewConfigurationError("config", "top level must be a mapping")
	}
	for i := 0; i < len(root.Content); i += 2 {
		if key := root.Content[i].Value; !yamlKeys[key] {
			return nil, core.NewConfigurationError(key, "unknown setting")
		}
	}

	var raw yamlFile
	if err := root.Decode(&raw); err != nil {
		return nil, fmt.Errorf("parsing yaml: %w", err)
	}
	f, err := newFile(raw.Algorithm, raw.Workers, raw.Morphology)
	if err != nil {
		return nil, err
	}

	params := &raw.Parameters
	if params.Kind == 0 {
		return f, nil
	}
	if params.Kind != yaml.MappingNode {
		return nil, core.NewConfigurationError("parameters", "must be a mapping")
	}
	for i := 0; i+1 < len(params.Content); i += 2 {
		name, value := params.Content[i].Value, params.Content[i+1]
		switch value.ShortTag() {
		case "!!int":
			var v int64
			if err := value.Decode(&v); err != nil {
				return nil, core.NewConfigurationError(name, err.Error())
			}
			f.Parameters.Set(name, core.IntValue(v))
		case "!!float":
			var v float64
			if err := value.Decode(&v); err != nil {
				return nil, core.NewConfigurationError(name, err.Error())
			}
			f.Parameters.Set(name, core.FloatValue(v))
		default:
			return nil, core.NewConfigurationError(name, fmt.Sprintf("unsupported parameter type %s", value.ShortTag()))
		}
	}
	return f, nil
}
