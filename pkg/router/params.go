package router

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/vango-dev/consolenav/pkg/routepath"
)

// ValidateParam validates a path param value against its type constraint.
func ValidateParam(value, paramType string) error {
	switch paramType {
	case routepath.ParamInt:
		if _, err := strconv.ParseInt(value, 10, 64); err != nil {
			return fmt.Errorf("invalid integer: %s", value)
		}
	case routepath.ParamUUID:
		if err := uuid.Validate(value); err != nil {
			return fmt.Errorf("invalid UUID: %s", value)
		}
	}
	return nil
}
