package ingest

// Outcome classifies what happened to one document item during segmentation.
type Outcome string

const (
	// OutcomeEmitted means the item became a chapter.
	OutcomeEmitted Outcome = "emitted"
	// OutcomeSkipped means a filter stage rejected the item as non-chapter
	// content.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeFailed means the item could not be read or parsed.
	OutcomeFailed Outcome = "failed"
)

// ItemResult records the fate of one document item.
type ItemResult struct {
	// Href is the item's path inside the container.
	Href string
	// Title is the chosen chapter title, when title extraction was reached.
	Title string
	// Outcome classifies the item's fate.
	Outcome Outcome
	// Stage names the filter stage that skipped the item, empty otherwise.
	Stage string
	// Reason explains a skip or failure in one line.
	Reason string
	// Seq is the reading order assigned to an emitted item, zero otherwise.
	Seq int
}

// Report aggregates per-item results for one segmentation run.
type Report struct {
	Items []ItemResult
}

func (r *Report) add(result ItemResult) {
	r.Items = append(r.Items, result)
}

// Emitted counts items that became chapters.
func (r Report) Emitted() int { return r.count(OutcomeEmitted) }

// Skipped counts items rejected by a filter stage.
func (r Report) Skipped() int { return r.count(OutcomeSkipped) }

// Failed counts items that could not be read or parsed.
func (r Report) Failed() int { return r.count(OutcomeFailed) }

func (r Report) count(outcome Outcome) int {
	n := 0
	for _, item := range r.Items {
		if item.Outcome == outcome {
			n++
		}
	}
	return n
}
