package syntax

// Supported file types, their extensions, and language-specific indentation
// settings. The LangID selects a grammar; an empty one means plain text.

import "path/filepath"

// FileType is the configuration of one supported language.
type FileType struct {
	Name       string   // Display name of the file type.
	Extensions []string // File extensions (e.g., .go) or filenames (e.g., Makefile).
	LangID     string   // Tree-sitter language id, "" for no highlighting.
	UseTabs    bool     // Whether to indent with tabs.
	TabWidth   int      // Number of spaces a tab stop represents.
}

// TabsToSpaces is the tab policy the edit interpreter expects: 0 for a
// literal tab, otherwise the number of spaces per stop.
func (ft *FileType) TabsToSpaces() int {
	if ft.UseTabs {
		return 0
	}
	return ft.TabWidth
}

var fileTypes = []*FileType{
	{
		Name:       "Go",
		Extensions: []string{".go"},
		LangID:     "go",
		UseTabs:    true,
		TabWidth:   4,
	},
	{
		Name:       "C",
		Extensions: []string{".c", ".h"},
		LangID:     "c",
		UseTabs:    true,
		TabWidth:   4,
	},
	{
		Name:       "Python",
		Extensions: []string{".py"},
		LangID:     "python",
		UseTabs:    false,
		TabWidth:   4,
	},
	{
		Name:       "JavaScript",
		Extensions: []string{".js", ".mjs"},
		LangID:     "javascript",
		UseTabs:    true,
		TabWidth:   4,
	},
	{
		Name:       "Bash",
		Extensions: []string{".sh", ".bash"},
		LangID:     "bash",
		UseTabs:    true,
		TabWidth:   4,
	},
	{
		Name:       "Makefile",
		Extensions: []string{".make", "Makefile", "makefile"},
		UseTabs:    true,
		TabWidth:   8,
	},
	{
		Name:       "Text",
		Extensions: []string{},
		UseTabs:    false,
		TabWidth:   4,
	},
}

// FileTypes lists every supported file type.
func FileTypes() []*FileType {
	return fileTypes
}

// GetFileType detects the file type from the filename or extension, falling
// back to plain text.
func GetFileType(filename string) *FileType {
	ext := filepath.Ext(filename)
	base := filepath.Base(filename)
	for _, ft := range fileTypes {
		for _, e := range ft.Extensions {
			if e == ext || e == base {
				return ft
			}
		}
	}
	return fileTypes[len(fileTypes)-1]
}
