package replay

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

var (
	ErrUnreadable = errors.New("replay unreadable")
	ErrMalformed  = errors.New("malformed replay summary")
)

// SidecarSuffix is appended to a recorded game path to find its summary.
const SidecarSuffix = ".json"

// Parser turns a recorded game file into its summary.
type Parser interface {
	Parse(path string) (*Summary, error)
}

// ParserFunc adapts a function to the Parser interface.
type ParserFunc func(path string) (*Summary, error)

func (f ParserFunc) Parse(path string) (*Summary, error) {
	return f(path)
}

// JSONParser reads the summary exported next to a recorded game.
type JSONParser struct{}

// Parse loads path+".json", or path itself when it already is a summary.
func (JSONParser) Parse(path string) (*Summary, error) {
	source := path
	if !strings.HasSuffix(strings.ToLower(path), SidecarSuffix) {
		source = path + SidecarSuffix
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadable, path, err)
	}
	return Decode(data)
}

// Decode parses a summary document.
func Decode(data []byte) (*Summary, error) {
	var summary Summary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return &summary, nil
}
