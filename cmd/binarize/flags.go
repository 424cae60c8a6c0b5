package main

import (
	"fmt"
	"strconv"
	"strings"

	"document-binarization/internal/core"
	"document-binarization/internal/morphology"
)

// parseValue keeps integer literals as Integer values; anything else that
// parses as a number becomes a Float.
func parseValue(s string) (core.Value, error) {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return core.IntValue(i), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return core.Value{}, fmt.Errorf("%q is not a number", s)
	}
	return core.FloatValue(f), nil
}

func parameterFlag(params *core.Parameters) func(string) error {
	return func(s string) error {
		name, value, ok := strings.Cut(s, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return fmt.Errorf("expected name=value, got %q", s)
		}
		v, err := parseValue(strings.TrimSpace(value))
		if err != nil {
			return err
		}
		params.Set(name, v)
		return nil
	}
}

func parseStep(s string) (morphology.Step, error) {
	fields := strings.Split(s, ":")
	if len(fields) > 4 {
		return morphology.Step{}, fmt.Errorf("expected op[:shape[:size[:iterations]]], got %q", s)
	}

	op, err := morphology.ParseOp(fields[0])
	if err != nil {
		return morphology.Step{}, err
	}
	step := morphology.Step{Op: op, Size: 3, Iterations: 1}
	if len(fields) > 1 {
		if step.Shape, err = morphology.ParseShape(fields[1]); err != nil {
			return morphology.Step{}, err
		}
	}
	for i, dst := range []*int{&step.Size, &step.Iterations} {
		if len(fields) <= i+2 {
			break
		}
		if *dst, err = strconv.Atoi(fields[i+2]); err != nil {
			return morphology.Step{}, fmt.Errorf("%q is not an integer", fields[i+2])
		}
	}
	return step, step.Validate()
}

func morphologyFlag(steps *[]morphology.Step) func(string) error {
	return func(s string) error {
		step, err := parseStep(s)
		if err != nil {
			return err
		}
		*steps = append(*steps, step)
		return nil
	}
}
