package errors

import (
	"os"
	"strings"
)

// EnrichError adds the source lines around the error position
func EnrichError(err *CompilerError, sourceContent string) *CompilerError {
	return err.WithContext(extractSourceContext(err.Location, sourceContent))
}

// EnrichErrorFromFile reads the source file and enriches the error. The error
// is returned as-is when the file cannot be read.
func EnrichErrorFromFile(err *CompilerError) *CompilerError {
	content, readErr := os.ReadFile(err.Location.File)
	if readErr != nil {
		return err
	}
	return EnrichError(err, string(content))
}

// extractSourceContext extracts 3 lines before, the error line, and 3 lines after
func extractSourceContext(location SourceLocation, sourceContent string) ErrorContext {
	lines := strings.Split(sourceContent, "\n")
	if location.Line < 0 || location.Line >= len(lines) {
		return ErrorContext{}
	}

	startLine := max(0, location.Line-3)
	endLine := min(len(lines), location.Line+4)

	contextLines := make([]string, 0, endLine-startLine)
	for i := startLine; i < endLine; i++ {
		contextLines = append(contextLines, strings.TrimRight(lines[i], "\r"))
	}

	end := location.Column + location.Length
	if location.Length == 0 {
		end = location.Column + 1
	}

	return ErrorContext{
		SourceLines: contextLines,
		FirstLine:   startLine,
		Highlight: Highlight{
			Line:  location.Line - startLine,
			Start: location.Column,
			End:   end,
		},
	}
}
