package sysconfig

import "errors"

var (
	ErrNoFieldsToUpdate  = errors.New("no configuration fields to update")
	ErrMarkerNotAdvanced = errors.New("job marker already set for this date")
)
