package pkg

type Response struct {
	RunID string       `json:"run_id"`
	Sizes []ResultSize `json:"sizes"`
}

// Paths returns the written output paths in table order.
func (r *Response) Paths() []string {
	paths := make([]string, 0, len(r.Sizes))
	for _, s := range r.Sizes {
		paths = append(paths, s.Path)
	}
	return paths
}
