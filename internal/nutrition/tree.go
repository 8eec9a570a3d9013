package nutrition

import (
	"sort"

	"github.com/nutrical/backend/internal/domain"
)

type treeNode struct {
	def      domain.NutrientDefinition
	children []string
	depth    int
}

// NutrientTree is the validated parent/child hierarchy of the nutrient catalog.
// It is built once from a definition list and never mutated.
type NutrientTree struct {
	nodes map[string]*treeNode
	roots []string
}

// BuildTree indexes defs by key and validates the parent links: every parent must
// exist and following parents from any node must terminate.
func BuildTree(defs []domain.NutrientDefinition) (*NutrientTree, error) {
	t := &NutrientTree{nodes: make(map[string]*treeNode, len(defs))}
	for _, d := range defs {
		if _, dup := t.nodes[d.Key]; dup {
			return nil, domain.Conflict("nutrient", d.Key, "duplicate key")
		}
		t.nodes[d.Key] = &treeNode{def: d, depth: -1}
	}

	for key, n := range t.nodes {
		parent := n.def.ParentKey
		if parent == "" {
			t.roots = append(t.roots, key)
			continue
		}
		p, ok := t.nodes[parent]
		if !ok {
			return nil, domain.Configuration("nutrient", key, "parent %q does not exist", parent)
		}
		p.children = append(p.children, key)
	}

	// 0 = unvisited, 1 = on the current path, 2 = done
	state := make(map[string]int, len(t.nodes))
	for key := range t.nodes {
		if err := t.resolveDepth(key, state); err != nil {
			return nil, err
		}
	}

	t.sortKeys(t.roots)
	for _, n := range t.nodes {
		t.sortKeys(n.children)
	}
	return t, nil
}

func (t *NutrientTree) resolveDepth(key string, state map[string]int) error {
	var path []string
	cur := key
	for {
		switch state[cur] {
		case 2:
			base := t.nodes[cur].depth
			for i := len(path) - 1; i >= 0; i-- {
				base++
				t.nodes[path[i]].depth = base
				state[path[i]] = 2
			}
			return nil
		case 1:
			return domain.Configuration("nutrient", cur, "parent chain forms a cycle")
		}
		state[cur] = 1
		path = append(path, cur)
		parent := t.nodes[cur].def.ParentKey
		if parent == "" {
			t.nodes[cur].depth = 0
			state[cur] = 2
			path = path[:len(path)-1]
			continue
		}
		cur = parent
	}
}

func (t *NutrientTree) sortKeys(keys []string) {
	sort.Slice(keys, func(i, j int) bool {
		a, b := t.nodes[keys[i]].def, t.nodes[keys[j]].def
		if a.DefaultOrder != b.DefaultOrder {
			return a.DefaultOrder < b.DefaultOrder
		}
		return a.Key < b.Key
	})
}

// Get returns the definition stored under key
func (t *NutrientTree) Get(key string) (domain.NutrientDefinition, bool) {
	n, ok := t.nodes[key]
	if !ok {
		return domain.NutrientDefinition{}, false
	}
	return n.def, true
}

// Depth is 0 for root nutrients, 1 for their children and so on; -1 when unknown
func (t *NutrientTree) Depth(key string) int {
	n, ok := t.nodes[key]
	if !ok {
		return -1
	}
	return n.depth
}

// Children returns the direct children of key ordered by default order then key
func (t *NutrientTree) Children(key string) []string {
	n, ok := t.nodes[key]
	if !ok {
		return nil
	}
	return append([]string(nil), n.children...)
}

// Walk visits every nutrient depth first in display order
func (t *NutrientTree) Walk(fn func(def domain.NutrientDefinition, depth int)) {
	var visit func(key string)
	visit = func(key string) {
		n := t.nodes[key]
		fn(n.def, n.depth)
		for _, c := range n.children {
			visit(c)
		}
	}
	for _, r := range t.roots {
		visit(r)
	}
}

// Definitions returns the catalog as a key-indexed map
func (t *NutrientTree) Definitions() map[string]domain.NutrientDefinition {
	out := make(map[string]domain.NutrientDefinition, len(t.nodes))
	for k, n := range t.nodes {
		out[k] = n.def
	}
	return out
}

// Len returns the number of nutrients in the tree
func (t *NutrientTree) Len() int { return len(t.nodes) }
