package importer

import "fmt"

// ValidationError marks a record missing a required field. It is recorded in
// the run stats and the record skipped; the run itself continues.
type ValidationError struct {
	Model string
	UUID  string
	Field string
}

func (e *ValidationError) Error() string {
	if e.UUID == "" {
		return fmt.Sprintf("%s missing %s", e.Model, e.Field)
	}
	return fmt.Sprintf("%s %s missing %s", e.Model, e.UUID, e.Field)
}

// checkRequired verifies the record carries its local identifier and the
// named required field. A missing value records a ValidationError and returns
// false so the caller skips the record.
func (rs *runState) checkRequired(model, uuid, field, value string) bool {
	missing := field
	if uuid == "" {
		missing = "fabula_uuid"
	} else if value != "" {
		return true
	}
	verr := &ValidationError{Model: model, UUID: uuid, Field: missing}
	rs.log.WithField("fabula_uuid", uuid).Warnf("skipping record: %v", verr)
	rs.stats.recordError("%v", verr)
	return false
}
