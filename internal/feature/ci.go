package feature

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

const ciWorkflow = ".github/workflows/ci.yml"

type ciStep struct {
	Name string `yaml:"name"`
	Run  string `yaml:"run"`
}

// addCIStep appends step to the first job with steps in the workflow at p
// unless the file mentions any of markers. A missing workflow is not an
// error.
func addCIStep(p string, step ciStep, markers ...string) (bool, error) {
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	for _, m := range markers {
		if bytes.Contains(data, []byte(m)) {
			return false, nil
		}
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return false, fmt.Errorf("parse %s: %w", p, err)
	}
	steps := firstJobSteps(&doc)
	if steps == nil {
		return false, nil
	}

	var node yaml.Node
	if err := node.Encode(step); err != nil {
		return false, err
	}
	steps.Content = append(steps.Content, &node)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return false, err
	}
	if err := enc.Close(); err != nil {
		return false, err
	}
	if err := os.WriteFile(p, buf.Bytes(), 0o644); err != nil {
		return false, err
	}
	return true, nil
}

func firstJobSteps(doc *yaml.Node) *yaml.Node {
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil
	}
	jobs := mappingValue(doc.Content[0], "jobs")
	if jobs == nil || jobs.Kind != yaml.MappingNode {
		return nil
	}
	for i := 1; i < len(jobs.Content); i += 2 {
		steps := mappingValue(jobs.Content[i], "steps")
		if steps != nil && steps.Kind == yaml.SequenceNode {
			return steps
		}
	}
	return nil
}

func mappingValue(n *yaml.Node, key string) *yaml.Node {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}
