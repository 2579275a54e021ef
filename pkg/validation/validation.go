package validation

import (
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/vinodismyname/hrpulse/internal/dataset"
	"github.com/vinodismyname/hrpulse/pkg/pagination"
)

var (
	v    *validator.Validate
	once sync.Once
)

// maxFilterLen bounds categorical filter values.
const maxFilterLen = 64

// Validator returns a singleton validator with custom rules registered.
func Validator() *validator.Validate {
	once.Do(func() {
		v = validator.New()
		// Custom: categorical filter value; empty means "all"
		_ = v.RegisterValidation("filter_value", func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			if len(s) > maxFilterLen {
				return false
			}
			return !strings.ContainsFunc(s, unicode.IsControl)
		})
		// Custom: seniority level name or the "all" sentinel
		_ = v.RegisterValidation("seniority", func(fl validator.FieldLevel) bool {
			s := strings.TrimSpace(fl.Field().String())
			if s == "" || strings.EqualFold(s, "all") || strings.EqualFold(s, "alle") {
				return true
			}
			_, err := dataset.ParseSeniority(s)
			return err == nil
		})
		// Custom: cursor must be decodable via pagination.DecodeCursor
		_ = v.RegisterValidation("cursor", func(fl validator.FieldLevel) bool {
			s := strings.TrimSpace(fl.Field().String())
			if s == "" {
				return true // empty is allowed; use omitempty with this tag
			}
			// Quick URL-safe base64 precheck
			if _, err := base64.RawURLEncoding.DecodeString(s); err != nil {
				return false
			}
			_, err := pagination.DecodeCursor(s)
			return err == nil
		})
		// Custom: dataset source is a directory (no extension) or an .xlsx workbook
		_ = v.RegisterValidation("dataset_path", func(fl validator.FieldLevel) bool {
			s := strings.TrimSpace(fl.Field().String())
			if s == "" || strings.ContainsRune(s, 0) {
				return false
			}
			switch strings.ToLower(filepath.Ext(s)) {
			case "", ".xlsx":
				return true
			}
			return false
		})
		// Custom: report output must be an .xlsx file
		_ = v.RegisterValidation("report_path", func(fl validator.FieldLevel) bool {
			s := strings.TrimSpace(fl.Field().String())
			return s != "" && !strings.ContainsRune(s, 0) && strings.EqualFold(filepath.Ext(s), ".xlsx")
		})
	})
	return v
}

// ValidateStruct validates a struct and returns a user-friendly error string
// suitable for MCP tool errors. Returns empty string when valid.
func ValidateStruct(s any) string {
	if err := Validator().Struct(s); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok && len(ve) > 0 {
			fe := ve[0]
			field := strings.ToLower(fe.Field())
			switch fe.Tag() {
			case "required":
				return fmt.Sprintf("VALIDATION: %s is required", field)
			case "filter_value":
				return fmt.Sprintf("VALIDATION: %s must be a plain value of at most %d characters; omit it or use \"all\" for no filter", field, maxFilterLen)
			case "seniority":
				return "VALIDATION: seniority must be one of Junior, Mid, Senior, Lead, Director, VP, C-Level or all"
			case "cursor":
				return "CURSOR_INVALID: failed to decode cursor; restart pagination without a cursor"
			case "dataset_path":
				return "VALIDATION: path must be a directory of CSV files or an .xlsx workbook"
			case "report_path":
				return "VALIDATION: output path must end in .xlsx"
			case "oneof":
				return fmt.Sprintf("VALIDATION: %s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
			case "min", "max", "gte", "lte":
				return fmt.Sprintf("VALIDATION: %s must satisfy %s=%s", field, fe.Tag(), fe.Param())
			}
			// Fallback generic
			return fmt.Sprintf("VALIDATION: invalid %s", field)
		}
		return "VALIDATION: invalid inputs"
	}
	return ""
}
