// Package domain models blue plaque records and the transforms that turn
// them into map markers.
//
// # Dataset Conventions
//
// Plaque records come from a static dataset. Every field is optional:
//
//	title, location, unveiler, date, sponsor, caption   free text
//	easting, northing                                   British National Grid metres
//
// The published dataset spells the sponsor key "sponser". Both spellings are
// accepted; "sponsor" wins when a record carries both.
//
// Sentinel values:
//
//	unveiler == "Private unveiling"  suppresses the "Unveiled by" popup row.
//	caption  == "Not found"          suppresses the popup caption block.
//
// A zero or missing easting/northing marks the record unplaceable.
//
// # Coordinate Conversion
//
// Grid references are OSGB36 Transverse Mercator coordinates. Two converters
// exist and one is chosen at startup:
//
//	precise       inverse Transverse Mercator on the Airy 1830 ellipsoid,
//	              then a 7-parameter Helmert shift OSGB36 -> WGS84
//	              (accurate to a few metres across Great Britain).
//	approximate   lat = 53.8 + (N - 433000) / 111000
//	              lng = -1.55 + (E - 430000) / (111000 * cos 53.8°)
//
// The approximate converter is a local linear placeholder anchored on Leeds.
// Its error grows with distance from (53.8°N, 1.55°W) and it has no
// documented accuracy bound.
//
// # Marker IDs
//
// Marker IDs are name-based UUIDs (v5) over index|title|easting|northing, so
// the same dataset always yields the same IDs across restarts.
package domain
