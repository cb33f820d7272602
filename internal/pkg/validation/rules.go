package validation

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// Validation rule patterns
var (
	// Semester labels such as "FA 2024", "Fall 2024" or "SP25"
	SemesterPattern = `^[A-Za-z0-9][A-Za-z0-9 ]*$`

	// Semester max length, leaves room for year and type in a table name
	SemesterMaxLength = 32
)

// CompiledPatterns caches compiled regex patterns for better performance
var CompiledPatterns = struct {
	Semester *regexp.Regexp
}{
	Semester: regexp.MustCompile(SemesterPattern),
}

// TagSemester is the binding tag checking a semester label.
const TagSemester = "semester"

// ValidSemester reports whether s is an acceptable semester label.
func ValidSemester(s string) bool {
	return len(s) <= SemesterMaxLength && CompiledPatterns.Semester.MatchString(s)
}

// Register installs the custom rules on v.
func Register(v *validator.Validate) error {
	return v.RegisterValidation(TagSemester, func(fl validator.FieldLevel) bool {
		return ValidSemester(fl.Field().String())
	})
}
