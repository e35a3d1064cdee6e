package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/image-loader-mcp/internal/cache"
	"github.com/ironsheep/image-loader-mcp/internal/descriptor"
	"github.com/ironsheep/image-loader-mcp/internal/loader"
)

// createTestImageFile creates a test image file and returns its path
func createTestImageFile(t *testing.T, width, height int, c color.Color) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}

	path := filepath.Join(t.TempDir(), "handler-test.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

// callTool runs a tools/call request and returns the decoded text payload.
func callTool(t *testing.T, s *Server, name string, args map[string]interface{}, out interface{}) *MCPResponse {
	t.Helper()

	params := map[string]interface{}{
		"name":      name,
		"arguments": args,
	}
	paramsJSON, _ := json.Marshal(params)

	req := &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  paramsJSON,
	}

	resp := s.handleRequest(context.Background(), req)
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	if resp.Error != nil || out == nil {
		return resp
	}

	result := resp.Result.(map[string]interface{})
	content := result["content"].([]map[string]interface{})
	if len(content) != 1 || content[0]["type"] != "text" {
		t.Fatalf("unexpected content: %v", content)
	}
	if err := json.Unmarshal([]byte(content[0]["text"].(string)), out); err != nil {
		t.Fatalf("failed to decode tool result: %v", err)
	}
	return resp
}

func TestHandleToolsCall_ImageKey(t *testing.T) {
	s := New()

	tests := []struct {
		name string
		args map[string]interface{}
		want string
	}{
		{
			"string default kind",
			map[string]interface{}{"data": "abc"},
			"ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		},
		{
			"explicit string kind",
			map[string]interface{}{"data": "abc", "kind": "string"},
			"ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		},
		{
			"url",
			map[string]interface{}{"data": "HTTP://Example.COM/a.png?b=2&a=1", "kind": "url"},
			descriptor.Key("http://example.com/a.png?a=1&b=2"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got KeyResult
			resp := callTool(t, s, "image_key", tt.args, &got)
			if resp.Error != nil {
				t.Fatalf("Unexpected error: %v", resp.Error)
			}
			if got.Key != tt.want {
				t.Errorf("key: got %s, want %s", got.Key, tt.want)
			}
		})
	}
}

func TestHandleToolsCall_ImageKeyFileMatchesTransform(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, 40, 30, color.RGBA{255, 0, 0, 255})
	steps := []map[string]interface{}{{"op": "crop_center", "width": 10, "height": 10}}

	var key KeyResult
	resp := callTool(t, s, "image_key", map[string]interface{}{"data": imgPath, "kind": "file", "steps": steps}, &key)
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}
	if !strings.HasSuffix(key.Canonical, "|crop_center(10x10)") {
		t.Errorf("canonical: got %s", key.Canonical)
	}

	var res TransformResult
	resp = callTool(t, s, "image_transform", map[string]interface{}{"path": imgPath, "steps": steps}, &res)
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}
	if res.Key != key.Key {
		t.Errorf("image_key and image_transform disagree: %s vs %s", key.Key, res.Key)
	}
}

func TestHandleToolsCall_ImageKeyErrors(t *testing.T) {
	s := New()
	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"unknown kind", map[string]interface{}{"data": "x", "kind": "blob"}},
		{"steps on string", map[string]interface{}{"data": "x", "steps": []map[string]interface{}{{"op": "invert"}}}},
		{"bad url", map[string]interface{}{"data": "://nope", "kind": "url"}},
		{"missing file", map[string]interface{}{"data": "/nonexistent/image.png", "kind": "file"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := callTool(t, s, "image_key", tt.args, nil)
			if resp.Error == nil {
				t.Fatal("Expected error")
			}
			if resp.Error.Code != -32000 {
				t.Errorf("Error code: got %d, want -32000", resp.Error.Code)
			}
		})
	}
}

func TestHandleToolsCall_ImageLoad(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, 100, 80, color.RGBA{255, 0, 0, 255})

	var got LoadResult
	resp := callTool(t, s, "image_load", map[string]interface{}{"path": imgPath}, &got)
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}
	if got.Width != 100 || got.Height != 80 {
		t.Errorf("dimensions: got %dx%d, want 100x80", got.Width, got.Height)
	}
	if got.Format != "png" {
		t.Errorf("format: got %s, want png", got.Format)
	}
	if got.Density != loader.DefaultDensity {
		t.Errorf("density: got %d, want %d", got.Density, loader.DefaultDensity)
	}
	if !descriptor.IsKey(got.Key) {
		t.Errorf("key is not a descriptor key: %s", got.Key)
	}
	if got.FileSizeBytes <= 0 {
		t.Errorf("file size: got %d", got.FileSizeBytes)
	}
	if got.FromCache {
		t.Error("first load should not come from cache")
	}

	var again LoadResult
	callTool(t, s, "image_load", map[string]interface{}{"path": imgPath}, &again)
	if !again.FromCache || again.Key != got.Key {
		t.Errorf("second load: from_cache=%v key=%s", again.FromCache, again.Key)
	}
}

func TestHandleToolsCall_NonExistentFile(t *testing.T) {
	s := New()
	resp := callTool(t, s, "image_load", map[string]interface{}{"path": "/nonexistent/image.png"}, nil)
	if resp.Error == nil {
		t.Fatal("Expected error for non-existent file")
	}
	if resp.Error.Code != -32000 {
		t.Errorf("Error code: got %d, want -32000", resp.Error.Code)
	}
}

func TestHandleToolsCall_InvalidTool(t *testing.T) {
	s := New()
	resp := callTool(t, s, "nonexistent_tool", map[string]interface{}{}, nil)
	if resp.Error == nil {
		t.Fatal("Expected error for unknown tool")
	}
	if !strings.Contains(resp.Error.Data.(string), "unknown tool") {
		t.Errorf("Error data: got %v", resp.Error.Data)
	}
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := New()
	req := &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  json.RawMessage(`[1,2,3]`),
	}
	resp := s.handleToolsCall(context.Background(), req)
	if resp.Error == nil || resp.Error.Code != -32602 {
		t.Errorf("Expected -32602, got %+v", resp.Error)
	}
}

func TestHandleToolsCall_MissingArguments(t *testing.T) {
	s := New()
	params, _ := json.Marshal(map[string]interface{}{"name": "image_load"})
	req := &MCPRequest{JSONRPC: "2.0", ID: 1, Params: params}

	resp := s.handleToolsCall(context.Background(), req)
	if resp.Error == nil {
		t.Fatal("Expected error for missing arguments")
	}
}

func TestHandleToolsCall_ImageTransform(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, 400, 300, color.RGBA{0, 0, 255, 255})

	var got TransformResult
	resp := callTool(t, s, "image_transform", map[string]interface{}{
		"path": imgPath,
		"steps": []map[string]interface{}{
			{"op": "crop_center", "width": 100, "height": 100},
			{"op": "invert"},
		},
	}, &got)
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}
	if got.Width != 100 || got.Height != 100 {
		t.Errorf("dimensions: got %dx%d, want 100x100", got.Width, got.Height)
	}
	if got.MimeType != "image/png" {
		t.Errorf("MimeType: got %s, want image/png", got.MimeType)
	}

	data, err := base64.StdEncoding.DecodeString(got.ImageBase64)
	if err != nil {
		t.Fatalf("Failed to decode base64: %v", err)
	}
	img, err := png.Decode(strings.NewReader(string(data)))
	if err != nil {
		t.Fatalf("Failed to decode PNG: %v", err)
	}
	r, g, b, _ := img.At(50, 50).RGBA()
	if r>>8 != 255 || g>>8 != 255 || b>>8 != 0 {
		t.Errorf("inverted blue should be yellow, got (%d,%d,%d)", r>>8, g>>8, b>>8)
	}
}

func TestHandleToolsCall_ImageTransformOutputPath(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, 60, 60, color.RGBA{0, 255, 0, 255})
	outPath := filepath.Join(t.TempDir(), "out.png")

	var got TransformResult
	resp := callTool(t, s, "image_transform", map[string]interface{}{
		"path":        imgPath,
		"steps":       []map[string]interface{}{{"op": "fit_center", "width": 30, "height": 20, "background": "#000000"}},
		"output_path": outPath,
	}, &got)
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}
	if got.ImageBase64 != "" {
		t.Error("image should not be inlined when output_path is set")
	}
	if got.OutputPath != outPath {
		t.Errorf("output_path: got %s", got.OutputPath)
	}

	f, err := os.Open(outPath)
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	if cfg.Width != 30 || cfg.Height != 20 {
		t.Errorf("output dimensions: got %dx%d, want 30x20", cfg.Width, cfg.Height)
	}
}

func TestHandleToolsCall_ImageTransformInvalidStep(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, 10, 10, color.RGBA{0, 0, 0, 255})

	resp := callTool(t, s, "image_transform", map[string]interface{}{
		"path":  imgPath,
		"steps": []map[string]interface{}{{"op": "crop_center", "width": 0, "height": 5}},
	}, nil)
	if resp.Error == nil {
		t.Fatal("Expected error for invalid step")
	}
}

func TestHandleToolsCall_ImageCacheEvict(t *testing.T) {
	store := cache.NewMemoryStore()
	s := New(WithLoader(loader.New(store)))
	imgPath := createTestImageFile(t, 20, 20, color.RGBA{9, 9, 9, 255})
	steps := []map[string]interface{}{{"op": "grayscale"}}

	var tr TransformResult
	callTool(t, s, "image_transform", map[string]interface{}{"path": imgPath, "steps": steps}, &tr)
	if store.Len() != 1 {
		t.Fatalf("store should hold one entry, has %d", store.Len())
	}

	var ev EvictResult
	resp := callTool(t, s, "image_cache_evict", map[string]interface{}{"path": imgPath, "steps": steps}, &ev)
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}
	if !ev.Evicted || ev.Key != tr.Key {
		t.Errorf("evict: got %+v, want key %s evicted", ev, tr.Key)
	}
	if store.Len() != 0 {
		t.Errorf("store should be empty, has %d", store.Len())
	}

	callTool(t, s, "image_cache_evict", map[string]interface{}{"path": imgPath, "steps": steps}, &ev)
	if ev.Evicted {
		t.Error("second eviction should report nothing evicted")
	}
}
