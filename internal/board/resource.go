// internal/board/resource.go
//
// Resource kinds, resource vectors and building kinds.
// Resources is the wire shape used in every gameState message:
// {"wood":0,"fur":0,"clay":0,"mountain":0,"field":0}.

package board

// Resource names one of the five tradeable resource kinds.
// Grain is sent as "field" on the wire. None marks the center hex,
// which never produces.
type Resource string

const (
	Wood     Resource = "wood"
	Fur      Resource = "fur"
	Clay     Resource = "clay"
	Mountain Resource = "mountain"
	Grain    Resource = "field"
	None     Resource = "none"
)

// Kinds lists the producing resource kinds in a fixed order.
var Kinds = [5]Resource{Mountain, Fur, Grain, Clay, Wood}

// Valid reports whether r is one of the five producing kinds.
func (r Resource) Valid() bool {
	switch r {
	case Wood, Fur, Clay, Mountain, Grain:
		return true
	}
	return false
}

// Building is a placeable structure kind.
type Building string

const (
	Road    Building = "road"
	Village Building = "village"
	City    Building = "city"
)

// Valid reports whether b is a known building kind.
func (b Building) Valid() bool {
	return b == Road || b == Village || b == City
}

// Resources counts units per resource kind. Counts are never negative.
type Resources struct {
	Wood     int `json:"wood"`
	Fur      int `json:"fur"`
	Clay     int `json:"clay"`
	Mountain int `json:"mountain"`
	Field    int `json:"field"`
}

func (r *Resources) slot(kind Resource) *int {
	switch kind {
	case Wood:
		return &r.Wood
	case Fur:
		return &r.Fur
	case Clay:
		return &r.Clay
	case Mountain:
		return &r.Mountain
	case Grain:
		return &r.Field
	}
	return nil
}

// Get returns the count for kind (0 for None or unknown kinds).
func (r Resources) Get(kind Resource) int {
	if p := r.slot(kind); p != nil {
		return *p
	}
	return 0
}

// Add credits n units of kind. Unknown kinds are ignored.
func (r *Resources) Add(kind Resource, n int) {
	if p := r.slot(kind); p != nil {
		*p += n
	}
}

// Covers reports whether r dominates cost element-wise.
func (r Resources) Covers(cost Resources) bool {
	for _, k := range Kinds {
		if r.Get(k) < cost.Get(k) {
			return false
		}
	}
	return true
}

// Sub deducts cost from r. Callers check Covers first.
func (r *Resources) Sub(cost Resources) {
	for _, k := range Kinds {
		r.Add(k, -cost.Get(k))
	}
}

// Total returns the number of units across all kinds.
func (r Resources) Total() int {
	return r.Wood + r.Fur + r.Clay + r.Mountain + r.Field
}
