package validate

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

// toolSchema declares the argument contract of one tool.
type toolSchema struct {
	required []string
	optional []string
}

// toolSchemas holds the validation contracts for the tools that declare one.
// A tool without a schema validates permissively with a warning; this
// fail-open default matches the authorization table.
var toolSchemas = map[string]toolSchema{
	"crear_tarea_inteligente": {
		required: []string{"descripcion", "proyecto_id"},
		optional: []string{"asignado_a", "fecha_vencimiento", "prioridad"},
	},
	"buscar_tareas_semantica": {
		required: []string{"query"},
		optional: []string{"proyecto_id", "estado", "asignado_a", "incluir_contexto_cliente", "limite"},
	},
	"actualizar_tarea_contextual": {
		required: []string{"tarea_id", "cambios"},
		optional: []string{"comentario_automatico", "notificar_asignado"},
	},
	"buscar_cliente_inteligente": {
		required: []string{"query"},
		optional: []string{"activos_solo", "incluir_proyectos"},
	},
}

// unsafeChars is the sanitizer denylist: angle brackets and quote marks.
var unsafeChars = regexp.MustCompile(`[<>"']`)

// ValidateToolRequest checks tool call arguments against the tool's schema.
// Required fields must be present and non-empty; the two failure modes
// produce distinct errors.
func ValidateToolRequest(toolName string, arguments map[string]any) Result {
	var errors, warnings []string

	schema, ok := toolSchemas[toolName]
	if !ok {
		warnings = append(warnings, fmt.Sprintf("no validation schema for tool: %s", toolName))
		return newResult(errors, warnings)
	}

	for _, field := range schema.required {
		value, present := arguments[field]
		if !present {
			errors = append(errors, fmt.Sprintf("missing required field: %s", field))
			continue
		}
		if isEmptyValue(value) {
			errors = append(errors, fmt.Sprintf("required field is empty: %s", field))
		}
	}

	switch toolName {
	case "crear_tarea_inteligente":
		description, _ := arguments["descripcion"].(string)
		if len(description) < 10 {
			warnings = append(warnings, "description too short for effective analysis")
		} else if len(description) > 2000 {
			warnings = append(warnings, "description very long, may degrade performance")
		}
	case "actualizar_tarea_contextual":
		if taskID, present := arguments["tarea_id"]; present && taskID != nil && !isInteger(taskID) {
			errors = append(errors, "tarea_id must be an integer")
		}
		if raw, present := arguments["cambios"]; present {
			changes, isMap := raw.(map[string]any)
			if !isMap {
				errors = append(errors, "cambios must be an object")
			} else if len(changes) == 0 {
				warnings = append(warnings, "no changes specified")
			}
		}
	}

	return newResult(errors, warnings)
}

// SanitizeArguments returns a copy of the arguments with every string value
// trimmed and stripped of angle brackets and quote marks. Nested maps are
// sanitized key by key; list elements are only descended into when they are
// themselves maps or lists.
func SanitizeArguments(arguments map[string]any) map[string]any {
	sanitized := make(map[string]any, len(arguments))
	for key, value := range arguments {
		sanitized[key] = sanitizeValue(value)
	}
	return sanitized
}

func sanitizeValue(value any) any {
	switch v := value.(type) {
	case string:
		return unsafeChars.ReplaceAllString(strings.TrimSpace(v), "")
	case map[string]any:
		return SanitizeArguments(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			switch item.(type) {
			case map[string]any, []any:
				out[i] = sanitizeValue(item)
			default:
				out[i] = item
			}
		}
		return out
	default:
		return value
	}
}

// isEmptyValue mirrors the argument emptiness rule: empty strings, zero
// numbers, false booleans and empty collections all count as empty.
func isEmptyValue(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case bool:
		return !v
	case float64:
		return v == 0
	case int:
		return v == 0
	case int64:
		return v == 0
	case map[string]any:
		return len(v) == 0
	case []any:
		return len(v) == 0
	default:
		return false
	}
}

// isInteger accepts native integers and JSON numbers without a fractional
// part.
func isInteger(value any) bool {
	switch v := value.(type) {
	case int, int32, int64:
		return true
	case float64:
		return v == math.Trunc(v)
	default:
		return false
	}
}
