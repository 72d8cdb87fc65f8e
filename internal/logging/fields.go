package logging

import "log/slog"

// Common field names for consistent logging across the service.
const (
	FieldComponentID   = "component_id"
	FieldPartNumber    = "part_number"
	FieldSerial        = "serial_number"
	FieldExceptionID   = "exception_id"
	FieldExceptionType = "exception_type"
	FieldSeverity      = "severity"
	FieldCount         = "count"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldStatus        = "status"
	FieldDuration      = "duration_ms"
	FieldError         = "error"
)

// ComponentID returns a slog attribute for the component id.
func ComponentID(id string) slog.Attr {
	return slog.String(FieldComponentID, id)
}

// PartNumber returns a slog attribute for the part number.
func PartNumber(pn string) slog.Attr {
	return slog.String(FieldPartNumber, pn)
}

// Serial returns a slog attribute for the serial number.
func Serial(sn string) slog.Attr {
	return slog.String(FieldSerial, sn)
}

// ExceptionID returns a slog attribute for the exception id.
func ExceptionID(id string) slog.Attr {
	return slog.String(FieldExceptionID, id)
}

// ExceptionType returns a slog attribute for the exception type.
func ExceptionType(t string) slog.Attr {
	return slog.String(FieldExceptionType, t)
}

// Severity returns a slog attribute for a finding severity.
func Severity(s string) slog.Attr {
	return slog.String(FieldSeverity, s)
}

// Count returns a slog attribute for a generic count.
func Count(n int) slog.Attr {
	return slog.Int(FieldCount, n)
}

// Method returns a slog attribute for the HTTP method.
func Method(method string) slog.Attr {
	return slog.String(FieldMethod, method)
}

// Path returns a slog attribute for the HTTP path.
func Path(path string) slog.Attr {
	return slog.String(FieldPath, path)
}

// Status returns a slog attribute for the HTTP status code.
func Status(code int) slog.Attr {
	return slog.Int(FieldStatus, code)
}

// Duration returns a slog attribute for duration in milliseconds.
func Duration(ms int64) slog.Attr {
	return slog.Int64(FieldDuration, ms)
}

// Err returns a slog attribute for an error. Safe to call with nil.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String(FieldError, "")
	}
	return slog.String(FieldError, err.Error())
}
