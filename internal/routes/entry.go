package routes

// Entry is the serializable form of a Route.
type Entry struct {
	Key        string `json:"route_key"`
	Type       string `json:"page_type"`
	Identifier string `json:"identifier"`
	SourcePath string `json:"source_path"`
	OutputPath string `json:"output_path"`
	URI        string `json:"uri"`
}

// Entries returns the table in build order for listing.
func (t *Table) Entries() []Entry {
	out := make([]Entry, 0, len(t.routes))
	for _, r := range t.routes {
		out = append(out, Entry{
			Key:        r.Key,
			Type:       string(r.Type),
			Identifier: r.page.Identifier(),
			SourcePath: r.SourcePath,
			OutputPath: r.OutputPath,
			URI:        r.URI,
		})
	}
	return out
}
