package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// YAML is a [Codec] backed by [gopkg.in/yaml.v3].
type YAML struct {
	// KnownFields rejects mapping keys with no matching struct field.
	KnownFields bool
}

func (YAML) ContentType() string { return "application/yaml" }

func (YAML) Marshal(v any) ([]byte, error) {
	return yaml.Marshal(v)
}

func (y YAML) Unmarshal(data []byte, v any) error {
	d := yaml.NewDecoder(bytes.NewReader(data))
	d.KnownFields(y.KnownFields)

	if err := d.Decode(v); err != nil {
		return err
	}

	var next yaml.Node
	if err := d.Decode(&next); !errors.Is(err, io.EOF) {
		return ErrTrailingData
	}

	return nil
}

func (y YAML) Split(data []byte) ([][]byte, error) {
	var doc yaml.Node
	if err := y.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 || doc.Content[0].Kind != yaml.SequenceNode {
		return nil, ErrNotSequence
	}

	seq := doc.Content[0]
	elems := make([][]byte, 0, len(seq.Content))
	for i, node := range seq.Content {
		resolved, err := resolveAliases(node, map[*yaml.Node]bool{})
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}

		b, err := yaml.Marshal(resolved)
		if err != nil {
			return nil, fmt.Errorf("encoding element %d: %w", i, err)
		}
		elems = append(elems, b)
	}

	return elems, nil
}

// resolveAliases returns a copy of n with every alias replaced by the node
// it refers to and anchors dropped, so the copy encodes on its own.
func resolveAliases(n *yaml.Node, active map[*yaml.Node]bool) (*yaml.Node, error) {
	if n.Kind == yaml.AliasNode {
		if n.Alias == nil {
			return nil, fmt.Errorf("unknown anchor %q", n.Value)
		}
		return resolveAliases(n.Alias, active)
	}

	if active[n] {
		return nil, fmt.Errorf("anchor %q contains itself", n.Anchor)
	}
	active[n] = true
	defer delete(active, n)

	cp := *n
	cp.Anchor = ""
	if len(n.Content) > 0 {
		cp.Content = make([]*yaml.Node, len(n.Content))
		for i, c := range n.Content {
			rc, err := resolveAliases(c, active)
			if err != nil {
				return nil, err
			}
			cp.Content[i] = rc
		}
	}

	return &cp, nil
}
