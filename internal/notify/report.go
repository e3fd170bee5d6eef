package notify

type Outcome string

const (
	OutcomeDelivered       Outcome = "delivered"
	OutcomeFailed          Outcome = "failed"
	OutcomeSkippedNoConfig Outcome = "skipped-no-config"
)

type BatchResult struct {
	Index   int
	Start   int
	End     int
	Outcome Outcome
	Err     error
}

// Report is what one Dispatch call did. Attempts counts HTTP deliveries tried.
type Report struct {
	Total    int
	Attempts int
	Batches  []BatchResult
}

// Delivered counts records that went out in successful batches.
func (r Report) Delivered() int {
	n := 0
	for _, b := range r.Batches {
		if b.Outcome == OutcomeDelivered {
			n += b.End - b.Start + 1
		}
	}
	return n
}

// Failed counts failed batches.
func (r Report) Failed() int {
	return r.count(OutcomeFailed)
}

// Skipped counts batches that were not attempted for lack of a webhook.
func (r Report) Skipped() int {
	return r.count(OutcomeSkippedNoConfig)
}

func (r Report) count(o Outcome) int {
	n := 0
	for _, b := range r.Batches {
		if b.Outcome == o {
			n++
		}
	}
	return n
}
