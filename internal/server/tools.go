package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func objectSchema(properties map[string]interface{}, required ...string) map[string]interface{} {
	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func prop(kind, description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        kind,
		"description": description,
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Map state
		{
			Name:        "map_load",
			Description: "Parse a mineral map text file (Header, Minerals and Pixels sections) and make it the current map. Every mineral gets a fresh random color. On failure the previous map stays loaded.",
			InputSchema: objectSchema(map[string]interface{}{
				"path": prop("string", "Absolute path to the map file"),
			}, "path"),
		},
		{
			Name:        "map_dimensions",
			Description: "Get the width and height in pixels and the pixel size in microns of the current map.",
			InputSchema: objectSchema(map[string]interface{}{}),
		},
		{
			Name:        "map_legend",
			Description: "List the minerals of the current map in file order with their IDs, current hex colors and pixel counts.",
			InputSchema: objectSchema(map[string]interface{}{}),
		},

		// Coloring
		{
			Name:        "map_recolor",
			Description: "Set the display color of one mineral, chosen by ID or by name, and rebuild the map image. Other minerals keep their colors.",
			InputSchema: objectSchema(map[string]interface{}{
				"id":    prop("integer", "Mineral ID from the legend"),
				"name":  prop("string", "Mineral name from the legend; used when id is absent"),
				"color": prop("string", "Hex color, e.g. \"#ff8800\" or \"ff8800\""),
			}, "color"),
		},

		// Output
		{
			Name:        "map_render",
			Description: "Render the current map as a base64-encoded PNG. Optionally highlight selected minerals (all others are dimmed to gray), show only a region, zoom, overlay a coordinate grid and append a scale bar.",
			InputSchema: objectSchema(map[string]interface{}{
				"scale": map[string]interface{}{
					"type":        "number",
					"description": "Zoom factor with nearest-neighbour sampling. Default 1.0",
					"default":     1.0,
				},
				"highlight": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "integer"},
					"description": "Mineral IDs to keep in color",
				},
				"region": objectSchema(map[string]interface{}{
					"x1": prop("integer", "Left edge X coordinate (0-based)"),
					"y1": prop("integer", "Top edge Y coordinate (0-based)"),
					"x2": prop("integer", "Right edge X coordinate (exclusive)"),
					"y2": prop("integer", "Bottom edge Y coordinate (exclusive)"),
				}, "x1", "y1", "x2", "y2"),
				"quadrant": map[string]interface{}{
					"type":        "string",
					"description": "Named part of the map to show when region is absent",
					"enum": []string{
						"top-left", "top-right", "bottom-left", "bottom-right",
						"top-half", "bottom-half", "left-half", "right-half", "center",
					},
				},
				"grid":          prop("integer", "Draw coordinate lines every N map pixels"),
				"grid_labels":   prop("boolean", "Label grid intersections with map coordinates"),
				"include_scale": prop("boolean", "Append a white band with a scale bar labelled in mm"),
			}),
		},
		{
			Name:        "map_export",
			Description: "Write the current map to an image file. The format follows the extension: .png, .jpg/.jpeg, .bmp, .gif, .tif/.tiff or .webp.",
			InputSchema: objectSchema(map[string]interface{}{
				"path":          prop("string", "Absolute output path"),
				"include_scale": prop("boolean", "Append a white band with a scale bar labelled in mm"),
			}, "path"),
		},

		// Analysis
		{
			Name:        "map_sample_pixel",
			Description: "Get the mineral and displayed color at a pixel. Positions not listed in the map are reported as unlisted and black.",
			InputSchema: objectSchema(map[string]interface{}{
				"x": prop("integer", "Column (0-based)"),
				"y": prop("integer", "Row (0-based)"),
			}, "x", "y"),
		},
		{
			Name:        "map_measure_distance",
			Description: "Measure the distance between two map pixels in pixels, microns and millimetres, using the pixel size from the map header.",
			InputSchema: objectSchema(map[string]interface{}{
				"x1": prop("integer", "Start X coordinate"),
				"y1": prop("integer", "Start Y coordinate"),
				"x2": prop("integer", "End X coordinate"),
				"y2": prop("integer", "End Y coordinate"),
			}, "x1", "y1", "x2", "y2"),
		},
		{
			Name:        "map_abundance",
			Description: "Get pixel count, percentage of listed pixels and area in mm² for every mineral, largest first. Pixels with IDs missing from the legend are reported with an empty name.",
			InputSchema: objectSchema(map[string]interface{}{}),
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
