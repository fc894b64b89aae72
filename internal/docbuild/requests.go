package docbuild

import (
	"unicode/utf16"

	"google.golang.org/api/docs/v1"
)

// StartIndex is the first writable body index of an empty document.
const StartIndex = 1

// NamedStyle is a Docs named paragraph style.
type NamedStyle string

const (
	StyleNormal   NamedStyle = ""
	StyleTitle    NamedStyle = "TITLE"
	StyleHeading1 NamedStyle = "HEADING_1"
	StyleHeading2 NamedStyle = "HEADING_2"
)

// Block is a piece of text inserted as-is, optionally styled as a whole
// paragraph.
type Block struct {
	Text  string
	Style NamedStyle
}

// UTF16Len returns the length of s in UTF-16 code units.
func UTF16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// BuildRequests converts blocks into insert and paragraph style requests
// starting at index start.
//
// The style range of a block excludes its last code unit, which is expected
// to be the paragraph's trailing newline.
func BuildRequests(blocks []Block, start int) []*docs.Request {
	requests := make([]*docs.Request, 0, len(blocks)*2)
	current := int64(start)

	for _, block := range blocks {
		length := int64(UTF16Len(block.Text))
		if length == 0 {
			continue
		}

		requests = append(requests, &docs.Request{
			InsertText: &docs.InsertTextRequest{
				Location: &docs.Location{Index: current},
				Text:     block.Text,
			},
		})

		if block.Style != StyleNormal && length > 1 {
			requests = append(requests, &docs.Request{
				UpdateParagraphStyle: &docs.UpdateParagraphStyleRequest{
					Range: &docs.Range{
						StartIndex: current,
						EndIndex:   current + length - 1,
					},
					ParagraphStyle: &docs.ParagraphStyle{NamedStyleType: string(block.Style)},
					Fields:         "namedStyleType",
				},
			})
		}

		current += length
	}

	return requests
}

// EndIndex returns the index just past the text of blocks inserted from
// start.
func EndIndex(blocks []Block, start int) int {
	end := start
	for _, b := range blocks {
		end += UTF16Len(b.Text)
	}
	return end
}

// Chunk splits requests into consecutive batches of at most size requests.
// A size of zero or less yields a single batch.
func Chunk(requests []*docs.Request, size int) [][]*docs.Request {
	if len(requests) == 0 {
		return nil
	}
	if size <= 0 || size >= len(requests) {
		return [][]*docs.Request{requests}
	}

	batches := make([][]*docs.Request, 0, (len(requests)+size-1)/size)
	for i := 0; i < len(requests); i += size {
		end := min(i+size, len(requests))
		batches = append(batches, requests[i:end])
	}
	return batches
}
