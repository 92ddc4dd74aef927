package serialization

import (
	"fmt"
	"strings"
)

// Validation limits for security and resource protection.
const (
	MaxHeaderSize   = 100 * 1024 * 1024 // 100MB - maximum header size
	MaxParamCount   = 1_000_000         // Maximum number of parameters in a file
	MaxParamNameLen = 4096              // Maximum parameter name length
)

// ValidateParamNames checks the parameter list of a header.
func ValidateParamNames(names []string) error {
	if len(names) > MaxParamCount {
		return &ValidationError{
			Type:    "too_many_params",
			Details: fmt.Sprintf("got %d, max %d", len(names), MaxParamCount),
			Err:     ErrTooManyParams,
		}
	}

	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if err := validateParamName(name); err != nil {
			return err
		}
		if _, dup := seen[name]; dup {
			return &ValidationError{
				Type:    "duplicate_name",
				Param:   name,
				Details: "name appears more than once",
				Err:     ErrInvalidParamName,
			}
		}
		seen[name] = struct{}{}
	}
	return nil
}

func validateParamName(name string) error {
	switch {
	case name == "":
		return &ValidationError{Type: "invalid_name", Details: "empty parameter name", Err: ErrInvalidParamName}
	case len(name) > MaxParamNameLen:
		return &ValidationError{
			Type:    "invalid_name",
			Param:   name[:32] + "...",
			Details: fmt.Sprintf("length %d exceeds %d", len(name), MaxParamNameLen),
			Err:     ErrInvalidParamName,
		}
	case strings.ContainsRune(name, 0):
		return &ValidationError{Type: "invalid_name", Param: name, Details: "contains NUL byte", Err: ErrInvalidParamName}
	}
	return nil
}

// ValidateHeader checks a decoded header against the size of the data section.
func ValidateHeader(h *Header, dataSize int64) error {
	if h.FormatVersion != FormatVersion {
		return fmt.Errorf("%w: header says %d", ErrUnsupportedVersion, h.FormatVersion)
	}
	if err := ValidateParamNames(h.Params); err != nil {
		return err
	}
	if want := int64(len(h.Params)) * ValueSize; dataSize != want {
		return &ValidationError{
			Type:    "out_of_bounds",
			Details: fmt.Sprintf("%d parameters need %d data bytes, got %d", len(h.Params), want, dataSize),
			Err:     ErrOutOfBounds,
		}
	}
	return nil
}
