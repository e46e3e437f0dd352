package mcp

import (
	"testing"

	"datalogengine/internal/config"
	"datalogengine/internal/datalogservice"
)

func setupTestServerConfig() config.Config {
	return config.Config{
		Server: config.ServerConfig{Name: "test-server", Version: "1.0.0"},
		Engine: config.EngineConfig{Provenance: "unit"},
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := setupTestServerConfig()
	svc, err := datalogservice.New(cfg.Engine)
	if err != nil {
		t.Fatalf("datalogservice.New failed: %v", err)
	}
	server, err := NewServer(cfg, svc)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	return server
}

func TestNewServer(t *testing.T) {
	t.Run("creates server successfully", func(t *testing.T) {
		server := newTestServer(t)
		if server.tools == nil {
			t.Error("expected tools map to be initialized")
		}
		if len(server.tools) == 0 {
			t.Error("expected tools to be registered")
		}
	})
}

func TestToolInterface(t *testing.T) {
	server := newTestServer(t)
	for name, tool := range server.tools {
		if tool.Name() != name {
			t.Errorf("tool registered under %q reports Name() = %q", name, tool.Name())
		}
		if tool.Description() == "" {
			t.Errorf("tool %q has empty description", name)
		}
		if tool.InputSchema() == nil {
			t.Errorf("tool %q has nil input schema", name)
		}
	}
}

func TestServerToolRegistration(t *testing.T) {
	server := newTestServer(t)
	want := []string{"load_program", "assert_fact", "run", "query", "explain"}
	for _, name := range want {
		if _, ok := server.tools[name]; !ok {
			t.Errorf("expected tool %q to be registered", name)
		}
	}
}

// ancestorProgram is a tiny transitive-closure program reused across the
// end-to-end tool tests.
var ancestorProgram = map[string]interface{}{
	"relations": []interface{}{
		map[string]interface{}{"name": "parent", "arg_kinds": []interface{}{"string", "string"}},
		map[string]interface{}{"name": "ancestor", "arg_kinds": []interface{}{"string", "string"}},
	},
	"rules": []interface{}{
		map[string]interface{}{
			"head": []interface{}{map[string]interface{}{
				"predicate": "ancestor",
				"args": []interface{}{
					map[string]interface{}{"var": "X"},
					map[string]interface{}{"var": "Y"},
				},
			}},
			"body": []interface{}{
				map[string]interface{}{"atom": map[string]interface{}{
					"predicate": "parent",
					"args": []interface{}{
						map[string]interface{}{"var": "X"},
						map[string]interface{}{"var": "Y"},
					},
				}},
			},
		},
		map[string]interface{}{
			"head": []interface{}{map[string]interface{}{
				"predicate": "ancestor",
				"args": []interface{}{
					map[string]interface{}{"var": "X"},
					map[string]interface{}{"var": "Z"},
				},
			}},
			"body": []interface{}{
				map[string]interface{}{"atom": map[string]interface{}{
					"predicate": "parent",
					"args": []interface{}{
						map[string]interface{}{"var": "X"},
						map[string]interface{}{"var": "Y"},
					},
				}},
				map[string]interface{}{"atom": map[string]interface{}{
					"predicate": "ancestor",
					"args": []interface{}{
						map[string]interface{}{"var": "Y"},
						map[string]interface{}{"var": "Z"},
					},
				}},
			},
		},
	},
	"facts": []interface{}{
		map[string]interface{}{"predicate": "parent", "args": []interface{}{
			map[string]interface{}{"kind": "string", "v": "alice"},
			map[string]interface{}{"kind": "string", "v": "bob"},
		}},
		map[string]interface{}{"predicate": "parent", "args": []interface{}{
			map[string]interface{}{"kind": "string", "v": "bob"},
			map[string]interface{}{"kind": "string", "v": "carol"},
		}},
	},
	"goals": []interface{}{"ancestor"},
}

func TestExecuteTool(t *testing.T) {
	server := newTestServer(t)

	t.Run("unknown tool", func(t *testing.T) {
		if _, err := server.ExecuteTool("no_such_tool", nil); err == nil {
			t.Error("expected error for unknown tool")
		}
	})

	t.Run("load, run, query, explain round trip", func(t *testing.T) {
		if _, err := server.ExecuteTool("load_program", ancestorProgram); err != nil {
			t.Fatalf("load_program failed: %v", err)
		}
		runResult, err := server.ExecuteTool("run", map[string]interface{}{})
		if err != nil {
			t.Fatalf("run failed: %v", err)
		}
		payload, ok := runResult.(map[string]interface{})
		if !ok {
			t.Fatalf("run result has unexpected shape: %T", runResult)
		}
		if payload["success"] != true {
			t.Errorf("expected run success, got %v", payload["success"])
		}

		queryResult, err := server.ExecuteTool("query", map[string]interface{}{"relation": "ancestor"})
		if err != nil {
			t.Fatalf("query failed: %v", err)
		}
		q, ok := queryResult.(map[string]interface{})
		if !ok {
			t.Fatalf("query result has unexpected shape: %T", queryResult)
		}
		facts, ok := q["facts"].([]jsonFactOut)
		if !ok {
			t.Fatalf("query facts has unexpected shape: %T", q["facts"])
		}
		if len(facts) != 3 {
			t.Errorf("expected 3 derived ancestor facts (alice/bob, bob/carol, alice/carol), got %d", len(facts))
		}

		if _, err := server.ExecuteTool("explain", map[string]interface{}{"relation": "ancestor"}); err != nil {
			t.Fatalf("explain failed: %v", err)
		}
	})

	t.Run("assert_fact before run is visible in results", func(t *testing.T) {
		if _, err := server.ExecuteTool("load_program", ancestorProgram); err != nil {
			t.Fatalf("load_program failed: %v", err)
		}
		assertArgs := map[string]interface{}{
			"predicate": "parent",
			"args": []interface{}{
				map[string]interface{}{"kind": "string", "v": "carol"},
				map[string]interface{}{"kind": "string", "v": "dan"},
			},
		}
		if _, err := server.ExecuteTool("assert_fact", assertArgs); err != nil {
			t.Fatalf("assert_fact failed: %v", err)
		}
		if _, err := server.ExecuteTool("run", map[string]interface{}{}); err != nil {
			t.Fatalf("run failed: %v", err)
		}
		queryResult, err := server.ExecuteTool("query", map[string]interface{}{"relation": "ancestor"})
		if err != nil {
			t.Fatalf("query failed: %v", err)
		}
		q := queryResult.(map[string]interface{})
		facts := q["facts"].([]jsonFactOut)
		if len(facts) != 6 {
			t.Errorf("expected 6 derived ancestor facts after adding carol/dan, got %d", len(facts))
		}
	})

	t.Run("query before run errors", func(t *testing.T) {
		svc, _ := datalogservice.New(config.EngineConfig{Provenance: "unit"})
		s, _ := NewServer(setupTestServerConfig(), svc)
		if _, err := s.ExecuteTool("query", map[string]interface{}{"relation": "ancestor"}); err == nil {
			t.Error("expected error querying before any run")
		}
	})
}

func TestWrapTool(t *testing.T) {
	server := newTestServer(t)
	tool, ok := server.tools["run"]
	if !ok {
		t.Fatal("run tool not registered")
	}
	handler := server.wrapTool(tool)
	if handler == nil {
		t.Fatal("expected non-nil handler")
	}
}

func TestMarshalToolPayloadFallback(t *testing.T) {
	// A channel cannot be json.Marshal'd; the fallback must still produce
	// valid, parseable JSON rather than panicking.
	payload := marshalToolPayload("broken_tool", make(chan int))
	if len(payload) == 0 {
		t.Fatal("expected non-empty fallback payload")
	}
}

func TestLoadProgramRejectsUnknownOperator(t *testing.T) {
	server := newTestServer(t)
	bad := map[string]interface{}{
		"relations": []interface{}{
			map[string]interface{}{"name": "r", "arg_kinds": []interface{}{"i64"}},
		},
		"rules": []interface{}{
			map[string]interface{}{
				"head": []interface{}{map[string]interface{}{
					"predicate": "r",
					"args":      []interface{}{map[string]interface{}{"var": "X"}},
				}},
				"body": []interface{}{
					map[string]interface{}{"constraint": map[string]interface{}{
						"op":    "frobnicate",
						"left":  map[string]interface{}{"var": "X"},
						"right": map[string]interface{}{"const": map[string]interface{}{"kind": "i64", "v": 1}},
					}},
				},
			},
		},
	}
	if _, err := server.ExecuteTool("load_program", bad); err == nil {
		t.Error("expected error for unsupported constraint operator")
	}
}
