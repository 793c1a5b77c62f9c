package server

import (
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ironsheep/minmap-viewer/internal/colormap"
	"github.com/ironsheep/minmap-viewer/internal/imaging"
	"github.com/ironsheep/minmap-viewer/internal/viewer"
)

// errInvalidArgs marks tool arguments that are malformed or incomplete.
var errInvalidArgs = errors.New("invalid arguments")

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "map_load", "map_recolor").
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
// Malformed or missing tool arguments return code -32602; other tool
// execution errors return code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if errors.Is(err, errInvalidArgs) {
		s.log.Warn("tool rejected arguments", zap.String("tool", params.Name), zap.Error(err))
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}
	if err != nil {
		s.log.Warn("tool failed", zap.String("tool", params.Name), zap.Error(err))
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

// executeTool dispatches tool execution to the matching handler.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Map state
	case "map_load":
		return s.handleMapLoad(args)
	case "map_dimensions":
		return s.handleMapDimensions()
	case "map_legend":
		return s.session.Legend()

	// Coloring
	case "map_recolor":
		return s.handleMapRecolor(args)

	// Output
	case "map_render":
		return s.handleMapRender(args)
	case "map_export":
		return s.handleMapExport(args)

	// Analysis
	case "map_sample_pixel":
		return s.handleMapSamplePixel(args)
	case "map_measure_distance":
		return s.handleMapMeasureDistance(args)
	case "map_abundance":
		return s.session.Abundance()

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
// An empty data is omitted.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	e := &MCPError{Code: code, Message: message}
	if data != "" {
		e.Data = data
	}
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   e,
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// unmarshalArgs decodes tool arguments; absent arguments leave dst unchanged.
func unmarshalArgs(args json.RawMessage, dst interface{}) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	if err := json.Unmarshal(args, dst); err != nil {
		return fmt.Errorf("%w: %w", errInvalidArgs, err)
	}
	return nil
}

// === Map State Handlers ===

type mapLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleMapLoad(args json.RawMessage) (interface{}, error) {
	var a mapLoadArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("%w: path is required", errInvalidArgs)
	}
	return s.session.Load(a.Path)
}

type mapDimensionsResult struct {
	Width            int     `json:"width"`
	Height           int     `json:"height"`
	PixelSizeMicrons float64 `json:"pixel_size_um"`
	PixelCount       int     `json:"pixel_count"`
}

func (s *Server) handleMapDimensions() (interface{}, error) {
	m := s.session.Map()
	if m == nil {
		return nil, viewer.ErrNoMap
	}
	return &mapDimensionsResult{
		Width:            m.Dims.Width,
		Height:           m.Dims.Height,
		PixelSizeMicrons: m.PixelSizeMicrons,
		PixelCount:       len(m.Pixels),
	}, nil
}

// === Coloring Handlers ===

type mapRecolorArgs struct {
	ID    *int   `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

type mapRecolorResult struct {
	ID    *int   `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Color string `json:"color"`

	// Unmapped counts pixels left black because their mineral has no color.
	Unmapped int `json:"unmapped_pixels"`
}

func (s *Server) handleMapRecolor(args json.RawMessage) (interface{}, error) {
	var a mapRecolorArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	c, err := colormap.ParseHex(a.Color)
	if err != nil {
		return nil, err
	}

	result := &mapRecolorResult{Color: c.Hex()}
	switch {
	case a.ID != nil:
		buf, err := s.session.Recolor(*a.ID, c)
		if err != nil {
			return nil, err
		}
		result.ID = a.ID
		result.Unmapped = unmappedTotal(buf.Unmapped)
	case a.Name != "":
		buf, err := s.session.RecolorByName(a.Name, c)
		if err != nil {
			return nil, err
		}
		result.Name = a.Name
		result.Unmapped = unmappedTotal(buf.Unmapped)
	default:
		return nil, fmt.Errorf("%w: id or name is required", errInvalidArgs)
	}
	return result, nil
}

func unmappedTotal(counts map[int]int) int {
	total := 0
	for _, n := range counts {
		total += n
	}
	return total
}

// === Output Handlers ===

type mapRenderArgs struct {
	Scale        float64         `json:"scale"`
	Highlight    []int           `json:"highlight"`
	Region       *imaging.Region `json:"region"`
	Quadrant     string          `json:"quadrant"`
	Grid         int             `json:"grid"`
	GridLabels   bool            `json:"grid_labels"`
	IncludeScale bool            `json:"include_scale"`
}

func (s *Server) handleMapRender(args json.RawMessage) (interface{}, error) {
	var a mapRenderArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	return s.session.Render(viewer.PreviewOptions{
		Scale:        a.Scale,
		Highlight:    a.Highlight,
		Region:       a.Region,
		Quadrant:     a.Quadrant,
		Grid:         a.Grid,
		GridLabels:   a.GridLabels,
		IncludeScale: a.IncludeScale,
	})
}

type mapExportArgs struct {
	Path         string `json:"path"`
	IncludeScale bool   `json:"include_scale"`
}

func (s *Server) handleMapExport(args json.RawMessage) (interface{}, error) {
	var a mapExportArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("%w: path is required", errInvalidArgs)
	}
	return s.session.Export(a.Path, a.IncludeScale)
}

// === Analysis Handlers ===

type mapSamplePixelArgs struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (s *Server) handleMapSamplePixel(args json.RawMessage) (interface{}, error) {
	var a mapSamplePixelArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	return s.session.SamplePixel(a.X, a.Y)
}

type mapMeasureDistanceArgs struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

func (s *Server) handleMapMeasureDistance(args json.RawMessage) (interface{}, error) {
	var a mapMeasureDistanceArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	return s.session.Measure(imaging.Point{X: a.X1, Y: a.Y1}, imaging.Point{X: a.X2, Y: a.Y2})
}
