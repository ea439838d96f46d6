package parser

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/forest6511/pw/pkg/entry"
)

// Account field tags of the tree grammar.
const (
	fieldUser     = "U"
	fieldPassword = "P"
	fieldLink     = "L"
	fieldNotes    = "N"
)

// disabledPrefix marks a subtree that is ignored entirely.
const disabledPrefix = "("

// treeNode is one classified node of a tree-grammar document:
// account, accountList, subtree or scalar.
type treeNode interface {
	collect(path string, out []entry.Entry) []entry.Entry
}

// account is a mapping holding a "P" field.
type account struct {
	user, password, link, notes string
}

// accountList is a sequence of accounts sharing one key path.
type accountList []account

// subtree is a mapping without "P"; each child extends the key path.
type subtree []subtreeChild

type subtreeChild struct {
	key  string
	node treeNode
}

// scalar is a password-only account.
type scalar string

func (a account) collect(path string, out []entry.Entry) []entry.Entry {
	return append(out, entry.New(path, a.user, a.password, a.link, a.notes))
}

func (l accountList) collect(path string, out []entry.Entry) []entry.Entry {
	for _, a := range l {
		out = a.collect(path, out)
	}
	return out
}

func (s subtree) collect(path string, out []entry.Entry) []entry.Entry {
	for _, child := range s {
		out = child.node.collect(joinPath(path, child.key), out)
	}
	return out
}

func (s scalar) collect(path string, out []entry.Entry) []entry.Entry {
	return append(out, entry.New(path, "", string(s), "", ""))
}

// ParseTree parses a YAML document of nested mappings into entries in
// document order. Mapping keys form the dotted entry key; a mapping with a
// "P" field is an account with optional "U", "L" and "N" fields; a
// sequence lists several accounts under the same key; any other scalar is
// a bare password. Keys starting with "(" are skipped with their subtree.
func ParseTree(src []byte) ([]entry.Entry, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(src, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTree, err)
	}

	root := &doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return nil, nil
		}
		root = root.Content[0]
	}
	if root.Kind == 0 {
		return nil, nil
	}

	tree, err := classify(root, "")
	if err != nil {
		return nil, err
	}
	return tree.collect("", nil), nil
}

// classify converts a YAML node into its tree variant. Disabled subtrees
// are dropped here and never inspected.
func classify(n *yaml.Node, path string) (treeNode, error) {
	n = resolveAlias(n)

	switch n.Kind {
	case yaml.SequenceNode:
		list := make(accountList, 0, len(n.Content))
		for i, child := range n.Content {
			child = resolveAlias(child)
			if child.Kind != yaml.MappingNode {
				return nil, &StructuralError{
					Path:   path,
					Reason: fmt.Sprintf("expected list of accounts, item %d is not a mapping", i),
				}
			}
			a, err := decodeAccount(child, path)
			if err != nil {
				return nil, err
			}
			list = append(list, a)
		}
		return list, nil

	case yaml.MappingNode:
		if mappingValue(n, fieldPassword) != nil {
			a, err := decodeAccount(n, path)
			if err != nil {
				return nil, err
			}
			return a, nil
		}
		var sub subtree
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i].Value
			if strings.HasPrefix(key, disabledPrefix) {
				continue
			}
			child, err := classify(n.Content[i+1], joinPath(path, key))
			if err != nil {
				return nil, err
			}
			sub = append(sub, subtreeChild{key: key, node: child})
		}
		return sub, nil

	default:
		return scalar(scalarValue(n)), nil
	}
}

func decodeAccount(n *yaml.Node, path string) (account, error) {
	var a account
	fields := []struct {
		tag string
		dst *string
	}{
		{fieldUser, &a.user},
		{fieldPassword, &a.password},
		{fieldLink, &a.link},
		{fieldNotes, &a.notes},
	}
	for _, f := range fields {
		v := mappingValue(n, f.tag)
		if v == nil {
			continue
		}
		v = resolveAlias(v)
		if v.Kind != yaml.ScalarNode {
			return account{}, &StructuralError{
				Path:   path,
				Reason: fmt.Sprintf("field %s must be a scalar", f.tag),
			}
		}
		*f.dst = scalarValue(v)
	}
	return a, nil
}

// mappingValue returns the value node stored under key, or nil.
func mappingValue(n *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

// scalarValue returns the literal text of a scalar; null is empty.
func scalarValue(n *yaml.Node) string {
	if n.ShortTag() == "!!null" {
		return ""
	}
	return n.Value
}

// joinPath appends a normalized key segment to a dotted path.
func joinPath(path, key string) string {
	key = entry.NormalizeKey(key)
	if path == "" {
		return key
	}
	return path + "." + key
}
