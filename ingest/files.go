package ingest

import (
	"bytes"
	"path/filepath"
	"strings"
)

// maxFileSize is the per-file size cap. Anything larger is almost
// certainly generated or vendored content, not documentation.
const maxFileSize = 1 << 20 // 1 MiB

// excludedDirs are directory names skipped entirely during the walk.
var excludedDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	"node_modules": true,
	"vendor":       true,
	"dist":         true,
	"build":        true,
	"target":       true,
	"__pycache__":  true,
	".idea":        true,
	".vscode":      true,
}

// textExtensions are file extensions treated as text/documentation/source.
var textExtensions = map[string]bool{
	".md": true, ".markdown": true, ".rst": true, ".txt": true, ".adoc": true,
	".go": true, ".py": true, ".js": true, ".ts": true, ".jsx": true, ".tsx": true,
	".java": true, ".kt": true, ".rb": true, ".rs": true, ".c": true, ".h": true,
	".cc": true, ".cpp": true, ".hpp": true, ".cs": true, ".php": true,
	".sh": true, ".bash": true, ".sql": true, ".proto": true,
	".yaml": true, ".yml": true, ".toml": true, ".json": true, ".xml": true,
	".ini": true, ".cfg": true, ".env.example": true, ".html": true, ".css": true,
}

// textFilenames are extensionless files that are always text.
var textFilenames = map[string]bool{
	"readme":       true,
	"license":      true,
	"notice":       true,
	"authors":      true,
	"contributing": true,
	"changelog":    true,
	"makefile":     true,
	"dockerfile":   true,
	"gemfile":      true,
	"rakefile":     true,
}

// eligibleFile reports whether a file should be chunked, judged by
// path alone.
func eligibleFile(relPath string) bool {
	base := filepath.Base(relPath)
	if strings.HasPrefix(base, ".") {
		return false
	}

	ext := strings.ToLower(filepath.Ext(base))
	if textExtensions[ext] {
		return true
	}
	return textFilenames[strings.ToLower(strings.TrimSuffix(base, ext))]
}

// looksBinary applies git's heuristic: a NUL byte in the leading
// segment marks the content as binary.
func looksBinary(data []byte) bool {
	probe := data
	if len(probe) > 8000 {
		probe = probe[:8000]
	}
	return bytes.IndexByte(probe, 0) >= 0
}
