// Package linetable maintains the mapping between character offsets and
// lines of a mutable text. It is the coordinate backbone of the engine:
// rendering, cursor placement, and annotation all translate between raw
// rune offsets and line indexes through a Table.
//
// A Table is an ordered sequence of line records. Each record covers one
// line of the text, terminator included, as a half-open (start, length)
// rune range. Index 0 is a permanent sentinel with a zero range; real
// lines occupy indexes >= 1, so line numbering is offset by one and a
// binary search over real lines can assume index 1 is the first.
//
// Invariants, maintained by every operation:
//
//   - Record ranges at indexes >= 1 are contiguous and strictly ordered:
//     each record starts exactly where the previous one ends.
//   - Only the last record may have zero length. It exists when the text
//     ends with a terminator (the insertion point after it) or when the
//     text is empty.
//   - The lengths of all real records sum to the length of the text the
//     table describes.
//
// Queries run in O(log N). After an edit, ApplyEdit repairs the table
// using only the edited region, in time proportional to the number of
// touched lines plus the trailing records whose offsets shift. Malformed
// edit descriptors never fail; they degrade to a full rescan of the text.
//
// Each record carries an optional caller-defined payload (the type
// parameter T). The table never inspects payloads; it only clears them on
// the records an edit replaces. See the annotate package for the
// collaborator that fills them back in.
//
// A Table is not safe for concurrent use. It is owned by a single editing
// session; the owning buffer serializes access.
package linetable
