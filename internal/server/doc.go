// Package server exposes a mineral map viewing session as JSON-RPC 2.0 tools.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Map state:
//   - map_load: Parse a map file and make it the current map
//   - map_dimensions: Width, height and pixel size of the current map
//   - map_legend: Minerals with their IDs, colors and pixel counts
//
// Coloring:
//   - map_recolor: Assign a color to a mineral by ID or name
//
// Output:
//   - map_render: Base64 PNG preview, optionally cropped, zoomed, highlighted,
//     gridded or with a scale bar
//   - map_export: Write the map to an image file, optionally with a scale bar
//
// Analysis:
//   - map_sample_pixel: Mineral and color at a pixel
//   - map_measure_distance: Distance between two pixels in pixels, µm and mm
//   - map_abundance: Pixel counts, percentages and areas per mineral
//
// # Session
//
// One server drives one viewer.Session. A failed map_load keeps the previous
// map; every other tool fails until a map has been loaded.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32602 for malformed or missing arguments, -32000 for other
//     tool execution failures, or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: the Go error string
//
// Log output goes to stderr and never to the protocol stream.
package server
