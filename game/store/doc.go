// Package store persists processed match reports as JSON files.
//
// Each processed recorded game is stored as one Record named after the
// replay's base name (without extension) under the reports directory:
//
//	output/reports/
//	  arabia_1v1.json
//	  black_forest_4v4.json
//
// A record carries the report, the path of the rendered minimap and the
// failures of whichever stage did not complete, so partial results survive
// a failed render or a failed report. Records saved by the same batch share
// a run ID.
package store
