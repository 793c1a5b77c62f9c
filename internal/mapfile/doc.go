// Package mapfile parses mineral map text files.
//
// A map file holds three tagged sections. Each section is optional as far as
// extraction goes, but the header must provide a "Pixel size" entry:
//
//	<Header>
//	Pixel size: 1.5
//	Instrument: EDS
//	</Header>
//	<Minerals>
//	Quartz: 1
//	Feldspar: 2
//	</Minerals>
//	<Pixels>
//	0,0: 1
//	1,0: 2
//	</Pixels>
//
// # Coordinate System
//
// Pixel coordinates are 0-based with the origin at the top-left corner. X is
// the column and Y is the row. The grid size is not stored in the file; it is
// derived from the largest listed coordinate (see PixelListing.Dimensions).
//
// # Error Handling
//
// Malformed lines produce a *FormatError naming the section, the 1-based line
// number within that section, and the offending text. Failures opening or
// reading the file are returned wrapped with %w so callers can test them with
// errors.Is against fs.ErrNotExist and friends.
package mapfile
