package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"datalogengine/internal/datalogservice"
	"datalogengine/internal/frontir"
)

// decodeArgs re-marshals a tool's loosely-typed argument map into a
// concrete request struct, matching the teacher's json.RawMessage schema
// registration (mcp-go hands tools a map[string]interface{}; typed decode
// happens tool-side, same as the browser tools did for their own payloads).
func decodeArgs(args map[string]interface{}, out interface{}) error {
	raw, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("mcp: re-marshal tool arguments: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("mcp: decode tool arguments: %w", err)
	}
	return nil
}

// LoadProgramTool compiles and loads a full program (relations, rules,
// extensional facts) into the service (spec §3/§4's program-load surface).
type LoadProgramTool struct {
	service *datalogservice.Service
}

func (t *LoadProgramTool) Name() string { return "load_program" }
func (t *LoadProgramTool) Description() string {
	return "Declare relations, rules, and extensional facts, then compile and load the program."
}
func (t *LoadProgramTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"relations":         map[string]interface{}{"type": "array"},
			"rules":             map[string]interface{}{"type": "array"},
			"facts":             map[string]interface{}{"type": "array"},
			"disjunctive_facts": map[string]interface{}{"type": "array"},
			"goals":             map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
		},
		"required": []string{"relations"},
	}
}

func (t *LoadProgramTool) Execute(_ context.Context, args map[string]interface{}) (interface{}, error) {
	var req jsonProgram
	if err := decodeArgs(args, &req); err != nil {
		return nil, err
	}
	front, err := decodeProgram(req)
	if err != nil {
		return nil, err
	}
	back, err := frontir.Lower(front)
	if err != nil {
		return nil, fmt.Errorf("mcp: lowering program: %w", err)
	}
	if err := t.service.Load(back, req.Goals); err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"success":        true,
		"relations":      len(back.Relations),
		"rules":          len(back.Rules),
		"facts":          len(back.Facts),
		"disjunct_facts": len(back.DisjunctiveFacts),
	}, nil
}

// AssertFactTool inserts one dynamically-added input fact (spec §4.5).
type AssertFactTool struct {
	service *datalogservice.Service
}

func (t *AssertFactTool) Name() string { return "assert_fact" }
func (t *AssertFactTool) Description() string {
	return "Insert one host-supplied fact into an already-declared relation."
}
func (t *AssertFactTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"predicate": map[string]interface{}{"type": "string"},
			"args":      map[string]interface{}{"type": "array"},
			"tag":       map[string]interface{}{"type": "object"},
		},
		"required": []string{"predicate", "args"},
	}
}

func (t *AssertFactTool) Execute(_ context.Context, args map[string]interface{}) (interface{}, error) {
	var req struct {
		Predicate string        `json:"predicate"`
		Args      []jsonValue   `json:"args"`
		Tag       *jsonInputTag `json:"tag"`
	}
	if err := decodeArgs(args, &req); err != nil {
		return nil, err
	}
	vals, err := decodeFactArgs(req.Args)
	if err != nil {
		return nil, err
	}
	tag, err := decodeInputTag(req.Tag)
	if err != nil {
		return nil, err
	}
	if err := t.service.AssertFact(req.Predicate, vals, tag); err != nil {
		return nil, err
	}
	return map[string]interface{}{"success": true}, nil
}

// RunTool drives every compiled stratum to fixpoint and recovers output
// facts for every goal relation (spec §4.6/§4.9).
type RunTool struct {
	service *datalogservice.Service
}

func (t *RunTool) Name() string            { return "run" }
func (t *RunTool) Description() string     { return "Run the loaded program to fixpoint and return recovered facts." }
func (t *RunTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{"type": "object", "properties": map[string]interface{}{}}
}

func (t *RunTool) Execute(ctx context.Context, _ map[string]interface{}) (interface{}, error) {
	runID, results, err := t.service.Run(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"success": true, "run_id": runID, "relations": encodeFactMap(results)}, nil
}

// QueryTool reads one relation's facts from the most recent Run (spec
// §4.9's idempotent, non-draining recovery read).
type QueryTool struct {
	service *datalogservice.Service
}

func (t *QueryTool) Name() string        { return "query" }
func (t *QueryTool) Description() string { return "Read a relation's facts from the most recent run." }
func (t *QueryTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{"relation": map[string]interface{}{"type": "string"}},
		"required":   []string{"relation"},
	}
}

func (t *QueryTool) Execute(_ context.Context, args map[string]interface{}) (interface{}, error) {
	var req struct {
		Relation string `json:"relation"`
	}
	if err := decodeArgs(args, &req); err != nil {
		return nil, err
	}
	facts, ok := t.service.Query(req.Relation)
	if !ok {
		return nil, fmt.Errorf("mcp: no results for relation %q (has run been called?)", req.Relation)
	}
	return map[string]interface{}{"relation": req.Relation, "facts": encodeFacts(facts)}, nil
}

// ExplainTool reports each fact's recovered provenance OutputTag (spec
// §4.9's explain surface).
type ExplainTool struct {
	service *datalogservice.Service
}

func (t *ExplainTool) Name() string { return "explain" }
func (t *ExplainTool) Description() string {
	return "Report each of a relation's facts alongside its recovered provenance tag."
}
func (t *ExplainTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{"relation": map[string]interface{}{"type": "string"}},
		"required":   []string{"relation"},
	}
}

func (t *ExplainTool) Execute(_ context.Context, args map[string]interface{}) (interface{}, error) {
	var req struct {
		Relation string `json:"relation"`
	}
	if err := decodeArgs(args, &req); err != nil {
		return nil, err
	}
	facts, ok := t.service.Explain(req.Relation)
	if !ok {
		return nil, fmt.Errorf("mcp: no results for relation %q (has run been called?)", req.Relation)
	}
	return map[string]interface{}{"relation": req.Relation, "facts": encodeFacts(facts)}, nil
}
