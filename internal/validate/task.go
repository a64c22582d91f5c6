package validate

import (
	"fmt"
	"time"
)

// Task status values.
const (
	StatusPending    = "pendiente"
	StatusInProgress = "en_progreso"
	StatusCompleted  = "completada"
	StatusCancelled  = "cancelada"
	StatusBlocked    = "bloqueada"
)

// taskTransitions is the status state machine applied on updates. A new task
// always starts in pendiente, so creation never consults this table. Any
// pair not listed here, including a same-state update, is rejected.
var taskTransitions = map[string][]string{
	StatusPending:    {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusPending, StatusBlocked},
	StatusCompleted:  {StatusInProgress}, // reopen
	StatusCancelled:  {StatusPending},
	StatusBlocked:    {StatusInProgress, StatusPending},
}

// taskReadonlyFields may never appear in an update payload.
var taskReadonlyFields = []string{"id", "created_at", "created_by"}

// ValidateTaskData checks the field constraints of a task payload.
func ValidateTaskData(data map[string]any) Result {
	var errors, warnings []string

	for _, field := range []string{"name", "projectuid"} {
		if isEmptyValue(data[field]) {
			errors = append(errors, fmt.Sprintf("required field: %s", field))
		}
	}

	name, _ := data["name"].(string)
	if len(name) < 3 {
		errors = append(errors, "task name must be at least 3 characters")
	} else if len(name) > 200 {
		errors = append(errors, "task name cannot exceed 200 characters")
	}

	if description, _ := data["description"].(string); len(description) > 5000 {
		warnings = append(warnings, "description is very long (>5000 characters)")
	}

	if raw, ok := data["expire_date"].(string); ok && raw != "" {
		if due, err := time.Parse(time.RFC3339, raw); err != nil {
			errors = append(errors, "invalid due date format")
		} else {
			now := time.Now().UTC()
			if due.Before(now) {
				warnings = append(warnings, "due date is in the past")
			} else if due.Sub(now) > 365*24*time.Hour {
				warnings = append(warnings, "due date is very far away (>1 year)")
			}
		}
	}

	if raw, present := data["assigned_users"]; present && !isEmptyValue(raw) {
		users, isList := raw.([]any)
		if !isList {
			errors = append(errors, "assigned_users must be a list")
		} else {
			for i, entry := range users {
				user, isMap := entry.(map[string]any)
				if !isMap {
					errors = append(errors, fmt.Sprintf("assigned user %d must be an object", i))
					continue
				}
				if isEmptyValue(user["uid"]) {
					errors = append(errors, fmt.Sprintf("assigned user %d requires a uid", i))
				}
				email, _ := user["email"].(string)
				if email == "" {
					errors = append(errors, fmt.Sprintf("assigned user %d requires an email", i))
				} else if ok, msg := ValidateEmail(email); !ok {
					errors = append(errors, fmt.Sprintf("invalid email for assigned user %d: %s", i, msg))
				}
			}
		}
	}

	if raw, present := data["labels"]; present && !isEmptyValue(raw) {
		labels, isList := raw.([]any)
		if !isList {
			errors = append(errors, "labels must be a list")
		} else {
			for _, label := range labels {
				if !isInteger(label) {
					errors = append(errors, "all labels must be integers")
					break
				}
			}
		}
	}

	if columnID, present := data["columnid"]; present && columnID != nil && !isInteger(columnID) {
		errors = append(errors, "columnid must be an integer")
	}

	return newResult(errors, warnings)
}

// ValidateTaskUpdate checks an update payload against the current task
// state: read-only fields must be untouched, the status transition must be
// allowed, and the merged record must still satisfy ValidateTaskData.
func ValidateTaskUpdate(update, current map[string]any) Result {
	var errors, warnings []string

	for _, field := range taskReadonlyFields {
		if _, present := update[field]; present {
			errors = append(errors, fmt.Sprintf("read-only field: %s", field))
		}
	}

	newStatus, _ := update["status"].(string)
	currentStatus, _ := current["status"].(string)
	if newStatus != "" && currentStatus != "" {
		if !transitionAllowed(currentStatus, newStatus) {
			errors = append(errors, fmt.Sprintf("invalid status transition: %s -> %s", currentStatus, newStatus))
		}
	}

	merged := make(map[string]any, len(current)+len(update))
	for k, v := range current {
		merged[k] = v
	}
	for k, v := range update {
		merged[k] = v
	}

	fieldResult := ValidateTaskData(merged)
	errors = append(errors, fieldResult.Errors...)
	warnings = append(warnings, fieldResult.Warnings...)

	return newResult(errors, warnings)
}

func transitionAllowed(from, to string) bool {
	for _, allowed := range taskTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
