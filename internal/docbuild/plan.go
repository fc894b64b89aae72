package docbuild

import (
	"encoding/json"

	"google.golang.org/api/docs/v1"
)

// Plan is the complete set of batches needed to write one document.
type Plan struct {
	Title    string            `json:"title"`
	Blocks   []Block           `json:"-"`
	Requests int               `json:"request_count"`
	EndIndex int               `json:"end_index"`
	Batches  [][]*docs.Request `json:"batches"`
}

// NewPlan builds the requests for blocks and chunks them by batchSize.
func NewPlan(title string, blocks []Block, batchSize int) Plan {
	reqs := BuildRequests(blocks, StartIndex)
	return Plan{
		Title:    title,
		Blocks:   blocks,
		Requests: len(reqs),
		EndIndex: EndIndex(blocks, StartIndex),
		Batches:  Chunk(reqs, batchSize),
	}
}

// String returns an indented JSON representation of the plan.
func (p Plan) String() string {
	b, _ := json.MarshalIndent(p, "", "  ")
	return string(b)
}
