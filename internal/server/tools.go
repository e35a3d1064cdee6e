package server

import (
	"strings"

	"github.com/ironsheep/image-loader-mcp/internal/transform"
)

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file",
	}
}

// stepsProperty describes a transform pipeline.
func stepsProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"description": "Transform steps applied in order. Each step's cache identity is part of the result key.",
		"items": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"op": map[string]interface{}{
					"type":        "string",
					"enum":        transform.Ops,
					"description": "Operation name",
				},
				"width": map[string]interface{}{
					"type":        "integer",
					"description": "Target width for crop_center, fit_center and scale_to_fit",
				},
				"height": map[string]interface{}{
					"type":        "integer",
					"description": "Target height for crop_center, fit_center and scale_to_fit",
				},
				"upscale": map[string]interface{}{
					"type":        "boolean",
					"description": "scale_to_fit: allow enlarging images smaller than the target. Default false",
				},
				"degrees": map[string]interface{}{
					"type":        "number",
					"description": "rotate: clockwise angle in degrees",
				},
				"radius": map[string]interface{}{
					"type":        "number",
					"description": "round_corners: corner radius in pixels",
				},
				"matrix": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "number"},
					"description": "color_filter: 4x5 row-major color matrix (20 values, offsets in 0-255 units)",
				},
				"background": map[string]interface{}{
					"type":        "string",
					"description": "fit_center: hex background color such as #000000. Default transparent",
				},
			},
			"required": []string{"op"},
		},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "image_key",
			Description: "Compute the cache key (SHA-256 hex) of a string, URL or local file. With steps, a file key covers the transformed result.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"data": map[string]interface{}{
						"type":        "string",
						"description": "The string, URL or file path to identify",
					},
					"kind": map[string]interface{}{
						"type":        "string",
						"enum":        []string{kindString, kindURL, kindFile},
						"description": "How to interpret data. Default string",
						"default":     kindString,
					},
					"steps": stepsProperty(),
				},
				"required": []string{"data"},
			},
		},
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, density, format and cache key.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name: "image_transform",
			Description: "Apply transform steps (" + strings.Join(transform.Ops, ", ") +
				") to an image and return the result as base64-encoded PNG, or write it to output_path. Results are cached by key.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":  pathProperty(),
					"steps": stepsProperty(),
					"output_path": map[string]interface{}{
						"type":        "string",
						"description": "Optional file to write instead of returning base64. Format follows the extension (.png, .jpg, .gif)",
					},
				},
				"required": []string{"path", "steps"},
			},
		},
		{
			Name:        "image_cache_evict",
			Description: "Remove the cached result of a path and step list.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":  pathProperty(),
					"steps": stepsProperty(),
				},
				"required": []string{"path"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
