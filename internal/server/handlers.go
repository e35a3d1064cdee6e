package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/image-loader-mcp/internal/cache"
	"github.com/ironsheep/image-loader-mcp/internal/descriptor"
	"github.com/ironsheep/image-loader-mcp/internal/loader"
	"github.com/ironsheep/image-loader-mcp/internal/transform"
)

// Kinds accepted by image_key.
const (
	kindString = "string"
	kindURL    = "url"
	kindFile   = "file"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "image_transform").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn("tool failed", "tool", params.Name, "err", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "image_key":
		return s.handleImageKey(args)
	case "image_load":
		return s.handleImageLoad(ctx, args)
	case "image_transform":
		return s.handleImageTransform(ctx, args)
	case "image_cache_evict":
		return s.handleImageCacheEvict(ctx, args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		return errors.New("missing arguments")
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// === Identity ===

type imageKeyArgs struct {
	Data  string             `json:"data"`
	Kind  string             `json:"kind"`
	Steps transform.Pipeline `json:"steps"`
}

// KeyResult is returned by image_key.
type KeyResult struct {
	Key       string `json:"key"`
	Kind      string `json:"kind"`
	Canonical string `json:"canonical"`
}

func (s *Server) handleImageKey(args json.RawMessage) (interface{}, error) {
	var a imageKeyArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Kind == "" {
		a.Kind = kindString
	}
	if len(a.Steps) > 0 && a.Kind != kindFile {
		return nil, fmt.Errorf("steps are only supported for kind %q", kindFile)
	}

	switch a.Kind {
	case kindString:
		return keyResult(a.Kind, descriptor.String(a.Data))
	case kindURL:
		u, err := descriptor.ParseURL(a.Data)
		if err != nil {
			return nil, err
		}
		return keyResult(a.Kind, u)
	case kindFile:
		req, err := loader.NewRequest(a.Data, a.Steps)
		if err != nil {
			return nil, err
		}
		if err := req.Steps.Validate(); err != nil {
			return nil, err
		}
		return keyResult(a.Kind, req)
	default:
		return nil, fmt.Errorf("unknown kind %q (want %s, %s or %s)", a.Kind, kindString, kindURL, kindFile)
	}
}

func keyResult[T descriptor.Canonical](kind string, data T) (*KeyResult, error) {
	d, err := descriptor.New(data)
	if err != nil {
		return nil, err
	}
	return &KeyResult{Key: d.Key(), Kind: kind, Canonical: data.CanonicalString()}, nil
}

// === Loading ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

// LoadResult is returned by image_load.
type LoadResult struct {
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	Density       int    `json:"density"`
	Format        string `json:"format"`
	Key           string `json:"key"`
	FileSizeBytes int64  `json:"file_size_bytes"`
	FromCache     bool   `json:"from_cache"`
}

func (s *Server) handleImageLoad(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	req, err := loader.NewRequest(a.Path, nil)
	if err != nil {
		return nil, err
	}
	res, err := s.loader.Load(ctx, req)
	if err != nil {
		return nil, err
	}
	defer res.Raster.Release()

	return &LoadResult{
		Width:         res.Raster.Width(),
		Height:        res.Raster.Height(),
		Density:       res.Raster.Density(),
		Format:        res.Format,
		Key:           res.Key,
		FileSizeBytes: req.Source.Size,
		FromCache:     res.FromCache,
	}, nil
}

// === Transformation ===

type imageTransformArgs struct {
	Path       string             `json:"path"`
	Steps      transform.Pipeline `json:"steps"`
	OutputPath string             `json:"output_path"`
}

// TransformResult is returned by image_transform. ImageBase64 is empty when
// the image was written to OutputPath.
type TransformResult struct {
	Key         string `json:"key"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Density     int    `json:"density"`
	FromCache   bool   `json:"from_cache"`
	ImageBase64 string `json:"image_base64,omitempty"`
	MimeType    string `json:"mime_type,omitempty"`
	OutputPath  string `json:"output_path,omitempty"`
}

func (s *Server) handleImageTransform(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageTransformArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	req, err := loader.NewRequest(a.Path, a.Steps)
	if err != nil {
		return nil, err
	}
	res, err := s.loader.Load(ctx, req)
	if err != nil {
		return nil, err
	}
	defer res.Raster.Release()

	out := &TransformResult{
		Key:       res.Key,
		Width:     res.Raster.Width(),
		Height:    res.Raster.Height(),
		Density:   res.Raster.Density(),
		FromCache: res.FromCache,
	}

	if a.OutputPath != "" {
		if err := imaging.Save(res.Raster.Image(), a.OutputPath); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", a.OutputPath, err)
		}
		out.OutputPath = a.OutputPath
		return out, nil
	}

	entry, err := cache.EncodeEntry(res.Raster)
	if err != nil {
		return nil, err
	}
	out.ImageBase64 = base64.StdEncoding.EncodeToString(entry.PNG)
	out.MimeType = "image/png"
	return out, nil
}

// === Cache management ===

type imageCacheEvictArgs struct {
	Path  string             `json:"path"`
	Steps transform.Pipeline `json:"steps"`
}

// EvictResult is returned by image_cache_evict.
type EvictResult struct {
	Key     string `json:"key"`
	Evicted bool   `json:"evicted"` // false when nothing was cached under Key
}

func (s *Server) handleImageCacheEvict(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageCacheEvictArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	req, err := loader.NewRequest(a.Path, a.Steps)
	if err != nil {
		return nil, err
	}
	present, err := s.loader.Contains(ctx, req)
	if err != nil {
		return nil, err
	}
	key, err := s.loader.Evict(ctx, req)
	if err != nil {
		return nil, err
	}
	return &EvictResult{Key: key, Evicted: present}, nil
}
