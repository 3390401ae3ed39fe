package inventory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/liteapi-travel/room-matcher-async/internal/model"
)

// ErrUnsupportedFormat is returned for inventory files that are neither JSON
// nor YAML.
var ErrUnsupportedFormat = errors.New("unsupported inventory format")

// File reads the inventory from a JSON or YAML file on every call, so edits
// are picked up without a restart.
type File struct {
	Path string
}

type document struct {
	Rooms []model.Room `json:"rooms" yaml:"rooms"`
}

func (f File) Rooms(ctx context.Context) ([]model.Room, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read inventory file: %w", err)
	}
	rooms, err := Parse(data, filepath.Ext(f.Path))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", f.Path, err)
	}
	return rooms, nil
}

// Parse decodes an inventory document. format is a file extension (".json",
// ".yaml", ".yml"). Both {"rooms": [...]} and a bare list are accepted.
func Parse(data []byte, format string) ([]model.Room, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return []model.Room{}, nil
	}

	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "json":
		if trimmed[0] == '[' {
			var rooms []model.Room
			if err := json.Unmarshal(trimmed, &rooms); err != nil {
				return nil, err
			}
			return rooms, nil
		}
		var doc document
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, err
		}
		return doc.Rooms, nil
	case "yaml", "yml":
		var node yaml.Node
		if err := yaml.Unmarshal(trimmed, &node); err != nil {
			return nil, err
		}
		if len(node.Content) > 0 && node.Content[0].Kind == yaml.SequenceNode {
			var rooms []model.Room
			if err := node.Decode(&rooms); err != nil {
				return nil, err
			}
			return rooms, nil
		}
		var doc document
		if err := node.Decode(&doc); err != nil {
			return nil, err
		}
		return doc.Rooms, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}
