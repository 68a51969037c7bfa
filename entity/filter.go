package entity

// FilterOp represents a filter operation type.
type FilterOp int

const (
	// Logical operators
	And FilterOp = iota
	Or
	Not

	// Comparison operators
	Eq       // ==
	Ne       // !=
	Gt       // >
	Gte      // >=
	Lt       // <
	Lte      // <=
	Contains // substring match
	Match    // regex match
	Similar  // within edit distance
)

// Filter represents a composable filter over rows.
// Filters can be simple comparisons or complex logical combinations.
type Filter struct {
	Op       FilterOp `yaml:"op"`                 // Operation type
	Field    string   `yaml:"field,omitempty"`    // Field name for comparison (empty for logical ops)
	Value    any      `yaml:"value,omitempty"`    // Comparison value (nil for logical ops)
	Enabled  bool     `yaml:"enabled"`            // Whether this filter is active
	Children []Filter `yaml:"children,omitempty"` // Child filters for logical ops
}

// IsZero reports whether the filter selects nothing out, the yaml default.
func (f Filter) IsZero() bool {
	return f.Op == And && len(f.Children) == 0
}

// Sort represents the active sort: at most one column and its direction.
type Sort struct {
	Field string `yaml:"field"` // Field name to sort by
	Desc  bool   `yaml:"desc"`  // Sort descending if true, ascending if false
}
