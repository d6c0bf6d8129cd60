package wishlist

// Wishlist maps category name to the child's wish strings. Entries are
// append-only with duplicate suppression; the original (non-lowered)
// text is stored.
type Wishlist struct {
	items map[string][]string
	seen  map[string]map[string]struct{}
}

// New returns an empty wishlist with every category present.
func New() *Wishlist {
	w := &Wishlist{
		items: make(map[string][]string, len(Categories())),
		seen:  make(map[string]map[string]struct{}, len(Categories())),
	}
	for _, c := range Categories() {
		w.items[c] = nil
		w.seen[c] = make(map[string]struct{})
	}
	return w
}

// Add categorizes text and files it into exactly one bucket, returning
// the chosen category. Repeated identical text is a no-op.
func (w *Wishlist) Add(text string) string {
	category := Categorize(text)
	if _, dup := w.seen[category][text]; !dup {
		w.seen[category][text] = struct{}{}
		w.items[category] = append(w.items[category], text)
	}
	return category
}

// Items returns the stored wishes for a category.
func (w *Wishlist) Items(category string) []string {
	return append([]string(nil), w.items[category]...)
}

// Empty reports whether no wish has been filed yet.
func (w *Wishlist) Empty() bool {
	for _, c := range Categories() {
		if len(w.items[c]) > 0 {
			return false
		}
	}
	return true
}

// Snapshot copies the whole wishlist, keyed by category.
func (w *Wishlist) Snapshot() map[string][]string {
	out := make(map[string][]string, len(w.items))
	for _, c := range Categories() {
		out[c] = append([]string(nil), w.items[c]...)
	}
	return out
}
