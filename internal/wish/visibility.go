package wish

// FilterForViewer masks contribution data from the wish's own recipient so a
// person can never learn who is funding their gift. Every read path that
// returns wish data goes through here, not just the list endpoint.
func FilterForViewer(w *Wish, viewerListID uint64) *Wish {
	if w == nil {
		return nil
	}
	if viewerListID != w.RecipientID {
		return w
	}
	masked := *w
	masked.Contributions = []Contribution{}
	return &masked
}

// FilterAllForViewer applies FilterForViewer to a result set.
func FilterAllForViewer(wishes []Wish, viewerListID uint64) []Wish {
	out := make([]Wish, 0, len(wishes))
	for i := range wishes {
		out = append(out, *FilterForViewer(&wishes[i], viewerListID))
	}
	return out
}
