package ram

import (
	"datalogengine/internal/provenance"
	"datalogengine/internal/value"
)

// InputFileConfig configures extensional loading for a relation declared
// with @file(...) (spec §6). File I/O itself is out of scope (spec §1);
// this struct and the FactSource interface in internal/edb are as far as
// this repo goes — a caller supplies the actual bytes/rows.
type InputFileConfig struct {
	Path        string
	Deliminator rune
}

// OutputOption controls whether/how a relation's recovered tuples stream
// out via @file on a query declaration (spec §6). File writing itself is
// out of scope (spec §1); this is inert routing metadata a host can act on.
type OutputOption struct {
	ToFile  bool
	Path    string
	Deliminator rune
}

// SeedFact is one program- or externally-sourced fact a relation starts a
// stratum evaluation with, alongside the provenance InputTag it was
// inserted under (spec §3's Relation "facts" field).
type SeedFact struct {
	Tuple    value.Tuple
	InputTag *provenance.InputTag
}

// Relation is the RAM-level relation: storage metadata, declared type,
// optional input-file config, output option, and seed facts (spec §3/§4.4).
type Relation struct {
	Name   string
	Type   value.TupleType
	Input  *InputFileConfig
	Output OutputOption
	Facts  []SeedFact
}

// Update is one `target <- dataflow` statement (spec §3).
type Update struct {
	Target string
	Expr   Node
}

// Stratum is a maximal group of mutually recursive predicates plus the
// updates that compute them and whether the group must run a recursive
// fixpoint (spec §3/§4.1).
type Stratum struct {
	Relations map[string]*Relation
	Updates   []Update
	Recursive bool
}

func NewStratum() *Stratum {
	return &Stratum{Relations: make(map[string]*Relation)}
}

// Program is the compiler's output: an ordered list of strata (spec §3).
type Program struct {
	Strata []*Stratum
}
