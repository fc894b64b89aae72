// Package docbuild turns table rows into Google Docs batchUpdate requests.
//
// # Overview
//
// A document is described as an ordered list of Blocks, each a piece of text
// with an optional named paragraph style. BuildRequests walks the blocks and
// emits one insertText request per block, placed at a running index that
// advances by the UTF-16 length of every inserted text, plus an
// updateParagraphStyle request for styled blocks. Chunk splits the resulting
// request list into fixed-size batches for rate-limited submission.
//
// # Usage
//
//	blocks := docbuild.SingleBlocks(row, docbuild.DefaultLabels(), time.Now())
//	reqs := docbuild.BuildRequests(blocks, docbuild.StartIndex)
//	for _, batch := range docbuild.Chunk(reqs, 20) {
//		// submit batch
//	}
//
// # Indexing
//
// The Docs API addresses body positions in UTF-16 code units starting at 1.
// Requests are built in insertion order, so each insert lands at the end of
// the text inserted before it and earlier ranges never shift.
package docbuild
