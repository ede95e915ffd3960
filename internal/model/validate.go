package model

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// Field names used as FieldErrors keys. They match the JSON names.
const (
	FieldTask          = "task"
	FieldPriority      = "priority"
	FieldEstimatedTime = "estimatedTime"
	FieldCategory      = "category"
	FieldStatus        = "status"
	FieldActualTime    = "actualTime"
)

// FieldErrors maps a field name to a human-readable message.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, fe[k])
	}
	return strings.Join(msgs, "; ")
}

func (fe FieldErrors) Empty() bool {
	return len(fe) == 0
}

func ValidateDescription(s string) string {
	n := utf8.RuneCountInString(strings.TrimSpace(s))
	switch {
	case n == 0:
		return "Task description is required"
	case n < MinDescriptionLen:
		return "Task description must be at least 3 characters"
	case n > MaxDescriptionLen:
		return "Task description must be less than 200 characters"
	}
	return ""
}

func ValidateEstimate(minutes int) string {
	switch {
	case minutes < MinEstimate:
		return "Estimated time must be at least 5 minutes"
	case minutes > MaxEstimate:
		return "Estimated time cannot exceed 8 hours (480 minutes)"
	}
	return ""
}

func ValidatePriority(p Priority) string {
	if !p.IsValid() {
		return "Priority must be low, medium or high"
	}
	return ""
}

// ValidateDraft returns nil when d can be submitted.
func ValidateDraft(d Draft) FieldErrors {
	errs := FieldErrors{}
	if msg := ValidateDescription(d.Task); msg != "" {
		errs[FieldTask] = msg
	}
	if msg := ValidatePriority(d.Priority); msg != "" {
		errs[FieldPriority] = msg
	}
	if msg := ValidateEstimate(d.EstimatedTime); msg != "" {
		errs[FieldEstimatedTime] = msg
	}
	if errs.Empty() {
		return nil
	}
	return errs
}

// ValidatePatch checks only the fields present in p.
func ValidatePatch(p Patch) FieldErrors {
	errs := FieldErrors{}
	if p.Task != nil {
		if msg := ValidateDescription(*p.Task); msg != "" {
			errs[FieldTask] = msg
		}
	}
	if p.Priority != nil {
		if msg := ValidatePriority(*p.Priority); msg != "" {
			errs[FieldPriority] = msg
		}
	}
	if p.EstimatedTime != nil {
		if msg := ValidateEstimate(*p.EstimatedTime); msg != "" {
			errs[FieldEstimatedTime] = msg
		}
	}
	if p.Status != nil && strings.TrimSpace(*p.Status) == "" {
		errs[FieldStatus] = "Status cannot be empty"
	}
	if p.ActualTime != nil && *p.ActualTime < 0 {
		errs[FieldActualTime] = "Actual time cannot be negative"
	}
	if errs.Empty() {
		return nil
	}
	return errs
}
