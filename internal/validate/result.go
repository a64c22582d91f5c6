// Package validate implements the request, task, client and user validators
// shared by the tool pipeline. Every validator returns a Result; errors block
// the operation, warnings are advisory only.
package validate

// Result is the outcome contract shared by every validator in the system.
// Valid is true exactly when Errors is empty.
type Result struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// newResult assembles a Result from collected errors and warnings. Slices are
// never nil so JSON consumers always see arrays.
func newResult(errors, warnings []string) Result {
	if errors == nil {
		errors = []string{}
	}
	if warnings == nil {
		warnings = []string{}
	}
	return Result{
		Valid:    len(errors) == 0,
		Errors:   errors,
		Warnings: warnings,
	}
}

// Invalid builds a failed Result with a single error message. Boundary code
// uses it to convert unexpected faults into the shared result shape.
func Invalid(message string) Result {
	return newResult([]string{message}, nil)
}
