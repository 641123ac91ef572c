package planfile

import "encoding/json"

// File is the top-level document: a single query plan.
type File struct {
	Query *Query `yaml:"query" json:"query"`
}

// Query mirrors the plan structure in file form. Field shapes favor
// hand-written files: conditions are tagged maps, orders accept either a
// column/direction pair or raw SQL.
type Query struct {
	From            string      `yaml:"from" json:"from"`
	Columns         []Column    `yaml:"columns,omitempty" json:"columns,omitempty"`
	Distinct        bool        `yaml:"distinct,omitempty" json:"distinct,omitempty"`
	DistinctColumns []string    `yaml:"distinct_columns,omitempty" json:"distinct_columns,omitempty"`
	Aggregate       *Aggregate  `yaml:"aggregate,omitempty" json:"aggregate,omitempty"`
	IndexHint       *IndexHint  `yaml:"index_hint,omitempty" json:"index_hint,omitempty"`
	Joins           []Join      `yaml:"joins,omitempty" json:"joins,omitempty"`
	Wheres          []Condition `yaml:"wheres,omitempty" json:"wheres,omitempty"`
	Groups          []string    `yaml:"groups,omitempty" json:"groups,omitempty"`
	Havings         []Condition `yaml:"havings,omitempty" json:"havings,omitempty"`
	Orders          []Order     `yaml:"orders,omitempty" json:"orders,omitempty"`
	Limit           *int        `yaml:"limit,omitempty" json:"limit,omitempty"`
	Offset          *int        `yaml:"offset,omitempty" json:"offset,omitempty"`
	GroupLimit      *GroupLimit `yaml:"group_limit,omitempty" json:"group_limit,omitempty"`
	Unions          []Union     `yaml:"unions,omitempty" json:"unions,omitempty"`
	UnionOrders     []Order     `yaml:"union_orders,omitempty" json:"union_orders,omitempty"`
	UnionLimit      *int        `yaml:"union_limit,omitempty" json:"union_limit,omitempty"`
	UnionOffset     *int        `yaml:"union_offset,omitempty" json:"union_offset,omitempty"`
	Lock            string      `yaml:"lock,omitempty" json:"lock,omitempty"`
}

// Column is either a plain column name or a raw select expression with
// optional bindings.
type Column struct {
	Name     string `yaml:"name,omitempty" json:"name,omitempty"`
	Expr     string `yaml:"expr,omitempty" json:"expr,omitempty"`
	Bindings []any  `yaml:"bindings,omitempty" json:"bindings,omitempty"`
}

// UnmarshalYAML lets a bare scalar stand in for {name: ...}.
func (c *Column) UnmarshalYAML(unmarshal func(any) error) error {
	var name string
	if err := unmarshal(&name); err == nil {
		c.Name = name
		return nil
	}
	type plain Column
	return unmarshal((*plain)(c))
}

// UnmarshalJSON mirrors the YAML shorthand for the CUE decode path.
func (c *Column) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		c.Name = name
		return nil
	}
	type plain Column
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*c = Column(p)
	return nil
}

type Aggregate struct {
	Function string   `yaml:"function" json:"function"`
	Columns  []string `yaml:"columns,omitempty" json:"columns,omitempty"`
}

type IndexHint struct {
	Type  string `yaml:"type" json:"type"`
	Index string `yaml:"index" json:"index"`
}

type GroupLimit struct {
	Column string `yaml:"column" json:"column"`
	Value  int    `yaml:"value" json:"value"`
}

type Join struct {
	Table   string      `yaml:"table,omitempty" json:"table,omitempty"`
	Type    string      `yaml:"type,omitempty" json:"type,omitempty"`
	On      []Condition `yaml:"on,omitempty" json:"on,omitempty"`
	Joins   []Join      `yaml:"joins,omitempty" json:"joins,omitempty"`
	Lateral bool        `yaml:"lateral,omitempty" json:"lateral,omitempty"`
	Alias   string      `yaml:"alias,omitempty" json:"alias,omitempty"`
	Query   *Query      `yaml:"query,omitempty" json:"query,omitempty"`
}

type Order struct {
	Column    string `yaml:"column,omitempty" json:"column,omitempty"`
	Direction string `yaml:"direction,omitempty" json:"direction,omitempty"`
	SQL       string `yaml:"sql,omitempty" json:"sql,omitempty"`
	Bindings  []any  `yaml:"bindings,omitempty" json:"bindings,omitempty"`
}

type Union struct {
	All   bool   `yaml:"all,omitempty" json:"all,omitempty"`
	Query *Query `yaml:"query" json:"query"`
}

// Condition is the tagged file form shared by wheres, havings and join
// on-lists. Type selects the variant; the other fields are read per type.
type Condition struct {
	Type          string      `yaml:"type" json:"type"`
	Boolean       string      `yaml:"boolean,omitempty" json:"boolean,omitempty"`
	SQL           string      `yaml:"sql,omitempty" json:"sql,omitempty"`
	Column        string      `yaml:"column,omitempty" json:"column,omitempty"`
	Columns       []string    `yaml:"columns,omitempty" json:"columns,omitempty"`
	Operator      string      `yaml:"operator,omitempty" json:"operator,omitempty"`
	Value         any         `yaml:"value,omitempty" json:"value,omitempty"`
	Values        []any       `yaml:"values,omitempty" json:"values,omitempty"`
	First         string      `yaml:"first,omitempty" json:"first,omitempty"`
	Second        string      `yaml:"second,omitempty" json:"second,omitempty"`
	CaseSensitive bool        `yaml:"case_sensitive,omitempty" json:"case_sensitive,omitempty"`
	Mode          string      `yaml:"mode,omitempty" json:"mode,omitempty"`
	Expanded      bool        `yaml:"expanded,omitempty" json:"expanded,omitempty"`
	Bindings      []any       `yaml:"bindings,omitempty" json:"bindings,omitempty"`
	Wheres        []Condition `yaml:"wheres,omitempty" json:"wheres,omitempty"`
	Query         *Query      `yaml:"query,omitempty" json:"query,omitempty"`
}
