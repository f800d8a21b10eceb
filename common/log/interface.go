// Copyright (c) 2026 PlantOps Organization
// SPDX-License-Identifier: Apache-2.0

package log

import (
	"github.com/plantops/timeclock/common/log/tag"
)

// Logger is our abstraction for logging
// Usage examples:
//
//	 1) logger = logger.WithTags(
//	         tag.Order("4500001234"),
//	         tag.Operation("0010"))
//	    logger.Info("clocked in")
//	 2) logger.Info("clocked in",
//	         tag.Order("4500001234"),
//	         tag.Operation("0010"))
//	 Note: msg should be static, it is not recommended to use fmt.Sprintf() for msg.
//	       Anything dynamic should be tagged.
type Logger interface {
	Debug(msg string, tags ...tag.Tag)
	Info(msg string, tags ...tag.Tag)
	Warn(msg string, tags ...tag.Tag)
	Error(msg string, tags ...tag.Tag)
	Fatal(msg string, tags ...tag.Tag)
	WithTags(tags ...tag.Tag) Logger
}
