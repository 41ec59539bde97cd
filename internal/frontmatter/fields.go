package frontmatter

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Field is a translatable frontmatter value. Line is the 1-based line of the
// value within the raw YAML.
type Field struct {
	Key   string
	Value string
	Line  int
}

// TranslatableFields returns the string values of the requested top-level
// keys, in the order the keys are listed. Sequence values yield one field per
// string item; other value types are skipped.
func TranslatableFields(raw []byte, keys []string) ([]Field, error) {
	if len(keys) == 0 || len(raw) == 0 {
		return nil, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("parse frontmatter: expected a mapping, got %s", nodeKindName(root.Kind))
	}

	values := make(map[string]*yaml.Node, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		k := root.Content[i].Value
		if _, dup := values[k]; !dup {
			values[k] = root.Content[i+1]
		}
	}

	var out []Field
	for _, key := range keys {
		v, ok := values[key]
		if !ok {
			continue
		}
		switch v.Kind {
		case yaml.ScalarNode:
			if isString(v) {
				out = append(out, Field{Key: key, Value: v.Value, Line: v.Line})
			}
		case yaml.SequenceNode:
			for _, item := range v.Content {
				if item.Kind == yaml.ScalarNode && isString(item) {
					out = append(out, Field{Key: key, Value: item.Value, Line: item.Line})
				}
			}
		}
	}
	return out, nil
}

func isString(n *yaml.Node) bool {
	return n.ShortTag() == "!!str"
}

func nodeKindName(k yaml.Kind) string {
	switch k {
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "document"
	}
}
