package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

const (
	resourceMIMEJSON = "application/json"
)

func (s *Server) registerAllResources() {
	if s == nil || s.mcpServer == nil {
		return
	}

	s.mcpServer.AddResource(
		mcp.NewResource(
			"datalogengine://about",
			"Engine About",
			mcp.WithMIMEType(resourceMIMEJSON),
			mcp.WithResourceDescription("High-level server info and usage notes."),
		),
		s.handleAboutResource,
	)

	s.mcpServer.AddResourceTemplate(
		mcp.NewResourceTemplate(
			"datalogengine://relation/{name}/facts{?limit}",
			"Relation Facts",
			mcp.WithTemplateMIMEType(resourceMIMEJSON),
			mcp.WithTemplateDescription("Read a token-efficient slice of a relation's facts from the most recent run."),
		),
		s.handleRelationFactsResource,
	)
}

func (s *Server) handleAboutResource(_ context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	payload := map[string]interface{}{
		"name":    s.cfg.Server.Name,
		"version": s.cfg.Server.Version,
		"notes": []string{
			"Resources are read-only context endpoints; use tools for actions/mutations.",
			"Call load_program then run before reading a relation resource.",
			"Resource templates are parameterized resources (URI templates) for relation-scoped reads.",
		},
		"timestamp_ms": time.Now().UnixMilli(),
	}

	text, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: resourceMIMEJSON,
			Text:     string(text),
		},
	}, nil
}

func (s *Server) handleRelationFactsResource(_ context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	name := argString(request.Params.Arguments["name"])
	if name == "" {
		return nil, fmt.Errorf("missing relation name")
	}
	limit := asInt(request.Params.Arguments["limit"])
	if limit <= 0 {
		limit = 25
	}
	if limit > 500 {
		limit = 500
	}

	facts, ok := s.service.Query(name)
	if !ok {
		facts = nil
	}
	if len(facts) > limit {
		facts = facts[:limit]
	}

	payload := map[string]interface{}{
		"relation": name,
		"limit":    limit,
		"count":    len(facts),
		"facts":    encodeFacts(facts),
	}
	text, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: resourceMIMEJSON,
			Text:     string(text),
		},
	}, nil
}

func argString(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case []string:
		if len(value) == 0 {
			return ""
		}
		return value[0]
	default:
		return fmt.Sprintf("%v", value)
	}
}

func asInt(v any) int {
	switch n := v.(type) {
	case nil:
		return 0
	case float64:
		return int(n)
	case int:
		return n
	case string:
		var i int
		fmt.Sscanf(n, "%d", &i)
		return i
	default:
		return 0
	}
}

