package puzzle

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/grille/internal/apperr"
)

// Extensions lists the file extensions Parse understands.
var Extensions = []string{".json", ".yaml", ".yml"}

// IsPuzzleFile reports whether path has a puzzle file extension.
func IsPuzzleFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Parse decodes a puzzle definition. ext selects the format (".json",
// ".yaml" or ".yml"). The result is prepared and validated.
func Parse(data []byte, ext string) (*Puzzle, error) {
	var p Puzzle
	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("%w: decode json: %v", apperr.ErrInvalidPuzzle, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("%w: decode yaml: %v", apperr.ErrInvalidPuzzle, err)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", apperr.ErrInvalidPuzzle, ext)
	}
	p.Prepare()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func itoa(n int) string { return strconv.Itoa(n) }
