package errors

// Error code constants organized by kind
// E100-E199: Syntax errors
// E200-E299: Evaluation errors
// E300-E399: Host errors
// E400-E499: Import errors

const (
	// Syntax errors (E100-E199)
	ErrInvalidSyntax     = "E100"
	ErrUnterminated      = "E101"
	ErrInvalidSelector   = "E102"
	ErrInvalidNesting    = "E103"
	ErrParameterOrder    = "E104"
	ErrArgumentOrder     = "E105"
	ErrExpectedToken     = "E106"
	ErrMissingSemicolon  = "E107"
	ErrInvalidExpression = "E108"

	// Evaluation errors (E200-E299)
	ErrUndefinedVariable = "E200"
	ErrUndefinedMixin    = "E201"
	ErrInvalidOperands   = "E202"
	ErrIncompatibleUnits = "E203"
	ErrDivisionByZero    = "E204"
	ErrArgumentBinding   = "E205"
	ErrInvalidArgument   = "E206"
	ErrDuplicateKey      = "E207"
	ErrExtend            = "E208"
	ErrStackDepth        = "E209"
	ErrMissingReturn     = "E210"
	ErrUserError         = "E211"
	ErrInvalidControl    = "E212"
	ErrInvalidParent     = "E213"
	ErrInvalidValue      = "E214"

	// Host errors (E300-E399)
	ErrHostFunction = "E300"
	ErrHostWarning  = "E301"

	// Import errors (E400-E499)
	ErrImportNotFound = "E400"
	ErrImportRead     = "E401"
)
