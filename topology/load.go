package topology

import (
	"fmt"
	"os"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// edgeFile is the YAML shape accepted by LoadYAML:
//
//	edges:
//	  - [0, 1]
//	  - [1, 2]
type edgeFile struct {
	Edges [][2]int `yaml:"edges"`
}

// LoadYAML reads a tree definition from a YAML file and builds+validates
// it via Build. This is config loading for the demo harness, not a
// random tree generator.
func LoadYAML(path string) (*Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("topology: read %s: %w", path, err)
	}
	var f edgeFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("topology: parse %s: %w", path, err)
	}
	return Build(f.Edges)
}

// LoadJSON reads a tree definition from a JSON byte slice shaped as
// {"edges": [[0,1],[1,2]]}, using gjson for ad hoc field extraction rather
// than a full struct unmarshal — handy for embedding a topology literal in
// a test or a one-off tool without a YAML file on disk.
func LoadJSON(data []byte) (*Tree, error) {
	result := gjson.GetBytes(data, "edges")
	if !result.Exists() || !result.IsArray() {
		return nil, fmt.Errorf("topology: JSON document has no \"edges\" array")
	}
	var edges [][2]int
	var parseErr error
	result.ForEach(func(_, edge gjson.Result) bool {
		pair := edge.Array()
		if len(pair) != 2 {
			parseErr = fmt.Errorf("topology: edge entry %s is not a 2-element array", edge.Raw)
			return false
		}
		edges = append(edges, [2]int{int(pair[0].Int()), int(pair[1].Int())})
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return Build(edges)
}
