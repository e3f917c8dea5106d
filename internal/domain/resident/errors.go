package resident

import "errors"

var (
	ErrResidentNotFound       = errors.New("resident not found")
	ErrRollNoExists           = errors.New("roll number already registered")
	ErrAttendanceWindowClosed = errors.New("attendance window is closed")
)
