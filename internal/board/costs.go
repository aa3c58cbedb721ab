// internal/board/costs.go
//
// Building cost table, decoded from buildings-cost.json.

package board

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Costs maps each building kind to the resources it consumes outside setup.
type Costs map[Building]Resources

// LoadCosts decodes a cost table and checks every building kind is priced.
func LoadCosts(r io.Reader) (Costs, error) {
	var c Costs
	if err := json.NewDecoder(r).Decode(&c); err != nil {
		return nil, fmt.Errorf("decode costs: %w", err)
	}
	for _, b := range []Building{Road, Village, City} {
		cost, ok := c[b]
		if !ok {
			return nil, fmt.Errorf("costs: missing %s", b)
		}
		for _, k := range Kinds {
			if cost.Get(k) < 0 {
				return nil, fmt.Errorf("costs: negative %s for %s", k, b)
			}
		}
	}
	return c, nil
}

// LoadCostsFile reads a cost table from disk.
func LoadCostsFile(path string) (Costs, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open costs %s: %w", path, err)
	}
	defer f.Close()
	return LoadCosts(f)
}
