package project

// FileRecord holds immutable metadata about one project file. Records are
// produced once by the analyzer and read-only afterwards.
type FileRecord struct {
	Path         string
	RelativePath string
	SizeBytes    int64
	LineCount    int
	Language     string
	IsImportant  bool
	Priority     int
}

// Info is the analyzed snapshot of a project: file records sorted by
// descending priority plus pass-through metadata for the document assembler.
type Info struct {
	Root         string
	RootName     string
	Description  string
	ProjectType  string
	Dependencies []string
	Files        []FileRecord
	Structure    map[string][]string
}

// TotalSizeBytes sums the sizes of all analyzed files.
func (i *Info) TotalSizeBytes() int64 {
	var total int64
	for _, f := range i.Files {
		total += f.SizeBytes
	}
	return total
}

// LanguageCounts returns the number of files per language tag.
func (i *Info) LanguageCounts() map[string]int {
	counts := make(map[string]int)
	for _, f := range i.Files {
		counts[f.Language]++
	}
	return counts
}
