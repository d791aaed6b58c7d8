package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// parsePairs splits key=value arguments
func parsePairs(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("expected key=value, got %q", p)
		}
		out[key] = value
	}
	return out, nil
}

// buildInput reads the optional input file and applies -i pairs on top.
// A pair value that parses as JSON is used as such, anything else is a string,
// so `-i steps=20` sends a number and `-i prompt=a cat` sends text.
func buildInput(file string, pairs []string) (map[string]interface{}, error) {
	input := map[string]interface{}{}
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read input file: %w", err)
		}
		switch strings.ToLower(filepath.Ext(file)) {
		case ".yaml", ".yml":
			err = yaml.Unmarshal(data, &input)
		default:
			err = json.Unmarshal(data, &input)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse input file %s: %w", file, err)
		}
	}

	kv, err := parsePairs(pairs)
	if err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}
	for k, raw := range kv {
		var v interface{}
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			v = raw
		}
		input[k] = v
	}
	return input, nil
}
