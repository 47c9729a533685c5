package publish

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

type WriteOptions struct {
	Overwrite bool
	// JSON also writes the encoded payload next to each markdown page.
	JSON bool
}

type WriteResult struct {
	Written []string `json:"written"`
}

// WritePayloads writes one "<publish name>.md" page per payload into toDir.
func WritePayloads(payloads []Payload, toDir string, opt WriteOptions) (WriteResult, error) {
	toDir = strings.TrimSpace(toDir)
	if toDir == "" {
		return WriteResult{}, errors.New("missing --to")
	}
	toDir = filepath.Clean(toDir)
	if err := os.MkdirAll(toDir, 0o755); err != nil {
		return WriteResult{}, err
	}

	written := make([]string, 0, len(payloads))
	for _, p := range payloads {
		name := strings.TrimSpace(p.Meta.PublishName)
		if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
			return WriteResult{Written: written}, errors.New("invalid publish name: " + name)
		}
		mdPath := filepath.Join(toDir, name+".md")
		if err := writeFile(mdPath, []byte(RenderMarkdown(p)), opt.Overwrite); err != nil {
			return WriteResult{Written: written}, err
		}
		written = append(written, mdPath)

		if !opt.JSON {
			continue
		}
		b, err := json.MarshalIndent(p, "", "  ")
		if err != nil {
			return WriteResult{Written: written}, err
		}
		jsonPath := filepath.Join(toDir, name+".json")
		if err := writeFile(jsonPath, append(b, '\n'), opt.Overwrite); err != nil {
			return WriteResult{Written: written}, err
		}
		written = append(written, jsonPath)
	}
	return WriteResult{Written: written}, nil
}

// Encode returns the wire form of a payload as handed to the cloud publisher.
func Encode(p Payload) ([]byte, error) {
	return json.Marshal(p)
}

func writeFile(path string, b []byte, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.New("file exists (use --overwrite): " + path)
		}
	}
	return os.WriteFile(path, b, 0o644)
}
