package service

// validatePage checks the limit/offset pair shared by every list
// operation.  Both parameters are required; limit is capped at 100 so a
// single request cannot drag an unbounded result set out of the
// database.
func validatePage(limit, offset *int64) error {
	if limit == nil {
		return Required("Limit")
	}
	if offset == nil {
		return Required("Offset")
	}
	if *limit <= 0 {
		return mustBePositive("Limit")
	}
	if *limit > 100 {
		return &ValidationError{Field: "Limit", Message: "Limit must be less than or equal to 100"}
	}
	if *offset < 0 {
		return &ValidationError{Field: "Offset", Message: "Offset must be greater than or equal to 0"}
	}
	return nil
}
