package validate

import "fmt"

// ValidateClientData checks the field constraints of a client payload.
func ValidateClientData(data map[string]any) Result {
	var errors, warnings []string

	name, _ := data["name"].(string)
	switch {
	case name == "":
		errors = append(errors, "client name required")
	case len(name) < 2:
		errors = append(errors, "client name must be at least 2 characters")
	case len(name) > 100:
		errors = append(errors, "client name cannot exceed 100 characters")
	}

	if email, _ := data["email"].(string); email != "" {
		if ok, msg := ValidateEmail(email); !ok {
			errors = append(errors, "invalid client email: "+msg)
		}
	}

	if country, _ := data["country"].(string); len(country) > 50 {
		warnings = append(warnings, "country name is very long")
	}

	if active, present := data["active"]; present && active != nil {
		if _, isBool := active.(bool); !isBool {
			errors = append(errors, "field 'active' must be true or false")
		}
	}

	return newResult(errors, warnings)
}

// validSearchOrderFields lists the sort fields the directory backend is known
// to support.
var validSearchOrderFields = map[string]struct{}{
	"name":       {},
	"created_at": {},
	"updated_at": {},
	"country":    {},
}

// ValidateClientSearchParams checks pagination and ordering parameters for a
// client directory search.
func ValidateClientSearchParams(params map[string]any) Result {
	var errors, warnings []string

	if raw, present := params["pageSize"]; present && raw != nil {
		size, ok := asInt(raw)
		switch {
		case !ok || size < 1:
			errors = append(errors, "pageSize must be a positive integer")
		case size > 100:
			warnings = append(warnings, "pageSize very large (>100), may affect performance")
		}
	}

	if raw, present := params["offset"]; present && raw != nil {
		offset, ok := asInt(raw)
		if !ok || offset < 0 {
			errors = append(errors, "offset must be a non-negative integer")
		}
	}

	if order, _ := params["order"].(string); order != "" && order != "ASC" && order != "DESC" {
		errors = append(errors, "order must be 'ASC' or 'DESC'")
	}

	if field, _ := params["orderField"].(string); field != "" {
		if _, ok := validSearchOrderFields[field]; !ok {
			warnings = append(warnings, fmt.Sprintf("orderField '%s' may not be supported", field))
		}
	}

	return newResult(errors, warnings)
}

func asInt(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case float64:
		if !isInteger(v) {
			return 0, false
		}
		return int(v), true
	default:
		return 0, false
	}
}
