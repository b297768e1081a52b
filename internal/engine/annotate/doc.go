// Package annotate implements the analysis side of the line table: it
// fills the per-line payloads that edits clear. The table itself never
// inspects payloads; this package owns their meaning.
//
// A payload is a Note: cached display metrics for a line plus an
// optional class assigned by a user script. After any edit, the records
// the edit spliced have no payload; Refresh walks the table and computes
// a Note for exactly those records, leaving survivors untouched. This
// mirrors the table's own incrementality — analysis cost is proportional
// to what an edit actually changed.
//
// Two annotators are provided: Metrics (pure Go, uniseg-based display
// width and grapheme count) and Lua, which runs a user-supplied script
// to classify lines the way editor plugins do. Lua states are not
// goroutine-safe; a Lua annotator must stay on the goroutine that
// created it.
package annotate
