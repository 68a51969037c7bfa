package entity

// Sizing is how a column's width is decided.
type Sizing string

const (
	Fixed    Sizing = "fixed"
	Packed   Sizing = "packed"
	Weighted Sizing = "weighted"
)

// Column declares a column, typically from layout yaml.
type Column struct {
	Field       string `yaml:"field"`
	Label       string `yaml:"label,omitempty"`
	Width       int    `yaml:"width"`
	MinWidth    int    `yaml:"min_width,omitempty"`
	Sizing      Sizing `yaml:"sizing,omitempty"`
	Weight      int    `yaml:"weight,omitempty"`
	Format      string `yaml:"format,omitempty"`
	Hidden      bool   `yaml:"hidden,omitempty"`
	SortReverse *bool  `yaml:"sort_reverse,omitempty"`
}
