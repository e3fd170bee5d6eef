package notify

import "go-cityboard-automation/internal/models"

// MaxBatchSize is the most embeds a single Discord message may carry.
const MaxBatchSize = 10

// Batch is a contiguous slice of the new records. Start and End are 1-based
// and inclusive, Total is the size of the whole new set.
type Batch struct {
	Index   int
	Start   int
	End     int
	Total   int
	Records []models.Record
}

// Partition splits records into consecutive batches of at most size items.
func Partition(records []models.Record, size int) []Batch {
	if size <= 0 {
		size = MaxBatchSize
	}
	total := len(records)
	batches := make([]Batch, 0, (total+size-1)/size)
	for start := 0; start < total; start += size {
		end := min(start+size, total)
		batches = append(batches, Batch{
			Index:   len(batches),
			Start:   start + 1,
			End:     end,
			Total:   total,
			Records: records[start:end],
		})
	}
	return batches
}
