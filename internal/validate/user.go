package validate

// ValidateUserData checks the field constraints of a user payload.
func ValidateUserData(data map[string]any) Result {
	var errors, warnings []string

	uid, isString := data["uid"].(string)
	switch {
	case isEmptyValue(data["uid"]):
		errors = append(errors, "user uid required")
	case !isString || len(uid) < 10:
		errors = append(errors, "invalid user uid")
	}

	email, _ := data["email"].(string)
	if email == "" {
		errors = append(errors, "user email required")
	} else if ok, msg := ValidateEmail(email); !ok {
		errors = append(errors, "invalid user email: "+msg)
	}

	if displayName, _ := data["displayName"].(string); len(displayName) > 100 {
		warnings = append(warnings, "display name is very long")
	}

	return newResult(errors, warnings)
}

// ValidateUserAssignment checks whether a user may be assigned to a task.
// Completed and cancelled tasks never accept assignments.
func ValidateUserAssignment(user, task map[string]any) Result {
	var errors, warnings []string

	userResult := ValidateUserData(user)
	errors = append(errors, userResult.Errors...)

	if status, _ := task["status"].(string); status == StatusCompleted || status == StatusCancelled {
		errors = append(errors, "cannot assign user to a completed or cancelled task")
	}

	return newResult(errors, warnings)
}
