package search

// Result is one match
type Result struct {
	File         string `json:"file"`
	Line         int    `json:"line"`
	Column       int    `json:"column"`
	Match        string `json:"match"`
	LineContent  string `json:"lineContent"`
	IsOpenEditor bool   `json:"isOpenEditor"`
	// SessionName identifies the open session a match came from.
	SessionName string `json:"sessionName,omitempty"`
}

// Results are ordered by file in visit order, then line, then column
type Results []Result

// FileGroup is the matches of one file
type FileGroup struct {
	File    string   `json:"file"`
	Results []Result `json:"results"`
}

// Grouped buckets results by file, keeping the order files first appear in
func (r Results) Grouped() []FileGroup {
	var groups []FileGroup
	index := make(map[string]int)
	for _, res := range r {
		i, ok := index[res.File]
		if !ok {
			i = len(groups)
			index[res.File] = i
			groups = append(groups, FileGroup{File: res.File})
		}
		groups[i].Results = append(groups[i].Results, res)
	}
	return groups
}

// Files returns the distinct files in first-seen order
func (r Results) Files() []string {
	groups := r.Grouped()
	files := make([]string, len(groups))
	for i, g := range groups {
		files[i] = g.File
	}
	return files
}
