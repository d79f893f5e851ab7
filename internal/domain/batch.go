package domain

// ResolveResult is the outcome of one URL in a batch: either Content is set,
// or Err is set and Kind names the failure class.
type ResolveResult struct {
	SourceURL string
	Content   *ScoredContent
	Err       error
	Kind      string
}

func (r ResolveResult) OK() bool {
	return r.Err == nil && r.Content != nil
}

// Batch holds per-URL results in input order plus the token that was used,
// so the caller can reuse it for the next batch.
type Batch struct {
	Results []ResolveResult
	Token   AntiBotToken
}

// Succeeded returns the successful records in input order.
func (b Batch) Succeeded() []ScoredContent {
	out := make([]ScoredContent, 0, len(b.Results))
	for _, r := range b.Results {
		if r.OK() {
			out = append(out, *r.Content)
		}
	}
	return out
}

// Failed returns the failed results in input order.
func (b Batch) Failed() []ResolveResult {
	var out []ResolveResult
	for _, r := range b.Results {
		if !r.OK() {
			out = append(out, r)
		}
	}
	return out
}
