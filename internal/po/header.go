package po

// Header carries the values written into the header entry of a catalog.
type Header struct {
	Project     string
	Language    string
	Fingerprint string
	Revision    string
	Generator   string
}

func (h Header) fields() []HeaderField {
	project := h.Project
	if project == "" {
		project = "PACKAGE VERSION"
	}
	fields := []HeaderField{
		{Name: "Project-Id-Version", Value: project},
		{Name: "Language", Value: h.Language},
		{Name: "MIME-Version", Value: "1.0"},
		{Name: "Content-Type", Value: "text/plain; charset=UTF-8"},
		{Name: "Content-Transfer-Encoding", Value: "8bit"},
	}
	if h.Generator != "" {
		fields = append(fields, HeaderField{Name: "X-Generator", Value: h.Generator})
	}
	if h.Fingerprint != "" {
		fields = append(fields, HeaderField{Name: "X-Source-Fingerprint", Value: h.Fingerprint})
	}
	if h.Revision != "" {
		fields = append(fields, HeaderField{Name: "X-Source-Revision", Value: h.Revision})
	}
	return fields
}
