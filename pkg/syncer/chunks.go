package syncer

// Chunk is one inclusive block range submitted as a single log query.
type Chunk struct {
	From uint64
	To   uint64
}

// SplitRange divides the inclusive range [from, to] into consecutive
// chunks of at most size blocks, covering every block exactly once.
// Splitting [101, 300] with size 90 yields [101,190], [191,280], [281,300].
func SplitRange(from, to, size uint64) []Chunk {
	if to < from || size == 0 {
		return nil
	}

	var chunks []Chunk
	for start := from; start <= to; start += size {
		end := start + size - 1
		if end > to {
			end = to
		}
		chunks = append(chunks, Chunk{From: start, To: end})
	}
	return chunks
}
