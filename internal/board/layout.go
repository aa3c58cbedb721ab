// internal/board/layout.go
//
// Immutable board graph: hexes, nodes (vertices) and paths (edges).
// Responsibilities:
//   - Decode the static layout (JSON) and validate it once at startup.
//   - Answer adjacency queries used by the rules engine.
//
// Ids are 1-based and contiguous; element i of each slice has id i+1.
// A Layout is shared read-only by every match.

package board

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
)

// PortKind tags a node: ordinary (""), generic 3:1 port, or a 2:1 port
// specific to the resource kind it names.
type PortKind string

const (
	PortNone    PortKind = ""
	PortGeneric PortKind = "generic"
)

// Hex is a board tile.
type Hex struct {
	ID    int    `json:"id"`
	Token int    `json:"token"`
	Nodes [6]int `json:"nodes"`
	Paths [6]int `json:"paths"`
}

// Node is a vertex where villages and cities are placed.
type Node struct {
	ID    int      `json:"id"`
	Paths []int    `json:"paths"`
	Port  PortKind `json:"port"`
}

// Path is an edge between two nodes where roads are placed.
type Path struct {
	ID    int    `json:"id"`
	Nodes [2]int `json:"nodes"`
}

// Layout is the full board graph plus per-resource tile counts.
type Layout struct {
	Tiles map[Resource]int `json:"tiles"`
	Hexes []Hex            `json:"hexes"`
	Nodes []Node           `json:"nodes"`
	Paths []Path           `json:"paths"`

	// derived on load
	nodeNeighbors [][]int
	pathNeighbors [][]int
	nodeHexes     [][]int
}

// LoadLayout decodes and validates a layout.
func LoadLayout(r io.Reader) (*Layout, error) {
	var l Layout
	if err := json.NewDecoder(r).Decode(&l); err != nil {
		return nil, fmt.Errorf("decode layout: %w", err)
	}
	if err := l.Validate(); err != nil {
		return nil, fmt.Errorf("validate layout: %w", err)
	}
	l.index()
	return &l, nil
}

// LoadLayoutFile reads a layout from disk.
func LoadLayoutFile(path string) (*Layout, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open layout %s: %w", path, err)
	}
	defer f.Close()
	return LoadLayout(f)
}

// Validate checks ids, adjacency symmetry and tile counts.
func (l *Layout) Validate() error {
	if len(l.Hexes) == 0 || len(l.Nodes) == 0 || len(l.Paths) == 0 {
		return fmt.Errorf("empty layout")
	}
	for i, h := range l.Hexes {
		if h.ID != i+1 {
			return fmt.Errorf("hex %d: id out of order (want %d)", h.ID, i+1)
		}
		for _, n := range h.Nodes {
			if !l.hasNode(n) {
				return fmt.Errorf("hex %d: unknown node %d", h.ID, n)
			}
		}
		for _, p := range h.Paths {
			if !l.hasPath(p) {
				return fmt.Errorf("hex %d: unknown path %d", h.ID, p)
			}
		}
	}
	for i, p := range l.Paths {
		if p.ID != i+1 {
			return fmt.Errorf("path %d: id out of order (want %d)", p.ID, i+1)
		}
		for _, n := range p.Nodes {
			if !l.hasNode(n) {
				return fmt.Errorf("path %d: unknown node %d", p.ID, n)
			}
			if !contains(l.Nodes[n-1].Paths, p.ID) {
				return fmt.Errorf("path %d: node %d does not list it", p.ID, n)
			}
		}
	}
	for i, n := range l.Nodes {
		if n.ID != i+1 {
			return fmt.Errorf("node %d: id out of order (want %d)", n.ID, i+1)
		}
		if len(n.Paths) == 0 || len(n.Paths) > 3 {
			return fmt.Errorf("node %d: has %d paths", n.ID, len(n.Paths))
		}
		for _, p := range n.Paths {
			if !l.hasPath(p) {
				return fmt.Errorf("node %d: unknown path %d", n.ID, p)
			}
			if pn := l.Paths[p-1].Nodes; pn[0] != n.ID && pn[1] != n.ID {
				return fmt.Errorf("node %d: path %d does not end here", n.ID, p)
			}
		}
		if n.Port != PortNone && n.Port != PortGeneric && !Resource(n.Port).Valid() {
			return fmt.Errorf("node %d: unknown port %q", n.ID, n.Port)
		}
	}
	total := 0
	for kind, count := range l.Tiles {
		if !kind.Valid() {
			return fmt.Errorf("tiles: unknown resource %q", kind)
		}
		if count < 0 {
			return fmt.Errorf("tiles: negative count for %s", kind)
		}
		total += count
	}
	if total == 0 || total > len(l.Hexes) {
		return fmt.Errorf("tiles: %d tiles for %d hexes", total, len(l.Hexes))
	}
	return nil
}

func (l *Layout) index() {
	l.nodeNeighbors = make([][]int, len(l.Nodes))
	for i, n := range l.Nodes {
		for _, p := range n.Paths {
			for _, other := range l.Paths[p-1].Nodes {
				if other != n.ID {
					l.nodeNeighbors[i] = append(l.nodeNeighbors[i], other)
				}
			}
		}
		sort.Ints(l.nodeNeighbors[i])
	}

	l.pathNeighbors = make([][]int, len(l.Paths))
	for i, p := range l.Paths {
		for _, n := range p.Nodes {
			for _, other := range l.Nodes[n-1].Paths {
				if other != p.ID {
					l.pathNeighbors[i] = append(l.pathNeighbors[i], other)
				}
			}
		}
		sort.Ints(l.pathNeighbors[i])
	}

	l.nodeHexes = make([][]int, len(l.Nodes))
	for _, h := range l.Hexes {
		for _, n := range h.Nodes {
			l.nodeHexes[n-1] = append(l.nodeHexes[n-1], h.ID)
		}
	}
}

func (l *Layout) hasNode(id int) bool { return id >= 1 && id <= len(l.Nodes) }
func (l *Layout) hasPath(id int) bool { return id >= 1 && id <= len(l.Paths) }

// HasNode reports whether id names a node.
func (l *Layout) HasNode(id int) bool { return l.hasNode(id) }

// HasPath reports whether id names a path.
func (l *Layout) HasPath(id int) bool { return l.hasPath(id) }

// Path returns the path with the given id.
func (l *Layout) Path(id int) (Path, bool) {
	if !l.hasPath(id) {
		return Path{}, false
	}
	return l.Paths[id-1], true
}

// Node returns the node with the given id.
func (l *Layout) Node(id int) (Node, bool) {
	if !l.hasNode(id) {
		return Node{}, false
	}
	return l.Nodes[id-1], true
}

// NodeNeighbors returns the nodes one path away from id.
func (l *Layout) NodeNeighbors(id int) []int {
	if !l.hasNode(id) {
		return nil
	}
	return l.nodeNeighbors[id-1]
}

// PathNeighbors returns the paths sharing a node with id.
func (l *Layout) PathNeighbors(id int) []int {
	if !l.hasPath(id) {
		return nil
	}
	return l.pathNeighbors[id-1]
}

// HexesAt returns the ids of hexes touching node id.
func (l *Layout) HexesAt(id int) []int {
	if !l.hasNode(id) {
		return nil
	}
	return l.nodeHexes[id-1]
}

// HexesWithToken returns every hex carrying the production token.
func (l *Layout) HexesWithToken(token int) []Hex {
	var out []Hex
	for _, h := range l.Hexes {
		if h.Token == token {
			out = append(out, h)
		}
	}
	return out
}

// PortNodes returns the ids of nodes tagged with kind.
func (l *Layout) PortNodes(kind PortKind) []int {
	var out []int
	for _, n := range l.Nodes {
		if n.Port == kind && kind != PortNone {
			out = append(out, n.ID)
		}
	}
	return out
}

// ProducingHexes is the number of hexes that receive a resource tile.
// They are the hexes with ids 1..ProducingHexes.
func (l *Layout) ProducingHexes() int {
	total := 0
	for _, c := range l.Tiles {
		total += c
	}
	return total
}

func contains(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
