// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/hedwig/pkg/types"
)

// QueryFile is the on-disk representation of one search and its results.
// A search can be saved to a file and reloaded later without re-querying
// the APIs.
type QueryFile struct {
	Request   types.SearchRequest  `yaml:"request"`
	Response  types.SearchResponse `yaml:"response"`
	Timestamp time.Time            `yaml:"timestamp"`
}

// WriteQueryFile saves a search request and its response to a YAML file.
func WriteQueryFile(path string, req types.SearchRequest, resp types.SearchResponse) error {
	qf := QueryFile{
		Request:   req,
		Response:  resp,
		Timestamp: time.Now().UTC(),
	}

	data, err := yaml.Marshal(&qf)
	if err != nil {
		return fmt.Errorf("marshaling query file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadQueryFile loads a previously saved query file from disk.
func ReadQueryFile(path string) (*QueryFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading query file: %w", err)
	}
	var qf QueryFile
	if err := yaml.Unmarshal(data, &qf); err != nil {
		return nil, fmt.Errorf("parsing query file: %w", err)
	}
	return &qf, nil
}
