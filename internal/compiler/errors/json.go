package errors

import (
	"encoding/json"
)

// JSONOutput represents the JSON structure for error output
type JSONOutput struct {
	Status   string           `json:"status"`
	Errors   []*CompilerError `json:"errors"`
	Warnings []*CompilerError `json:"warnings"`
	Summary  Summary          `json:"summary"`
}

// Summary contains error and warning counts
type Summary struct {
	ErrorCount   int `json:"error_count"`
	WarningCount int `json:"warning_count"`
	TotalCount   int `json:"total_count"`
}

// FormatAsJSON formats a CompilerError as JSON
func (e *CompilerError) FormatAsJSON() (string, error) {
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// FormatErrorsAsJSON formats multiple errors as JSON
func FormatErrorsAsJSON(errs []*CompilerError) (string, error) {
	output := JSONOutput{
		Status:   "success",
		Errors:   []*CompilerError{},
		Warnings: []*CompilerError{},
	}
	for _, e := range errs {
		if e.IsError() {
			output.Errors = append(output.Errors, e)
		} else if e.IsWarning() {
			output.Warnings = append(output.Warnings, e)
		}
	}

	if len(output.Errors) > 0 {
		output.Status = "error"
	} else if len(output.Warnings) > 0 {
		output.Status = "warning"
	}
	output.Summary = Summary{
		ErrorCount:   len(output.Errors),
		WarningCount: len(output.Warnings),
		TotalCount:   len(errs),
	}

	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
