// Copyright (c) 2026 PlantOps Organization
// SPDX-License-Identifier: Apache-2.0

package tag

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

const LoggingCallAtKey = "logging-call-at"

// Tag is the interface for the logging system
type Tag struct {
	// keep this field private
	field zap.Field
}

// Field returns a zap field
func (t *Tag) Field() zap.Field {
	return t.field
}

func newStringTag(key string, value string) Tag {
	return Tag{
		field: zap.String(key, value),
	}
}

func newInt64(key string, value int64) Tag {
	return Tag{
		field: zap.Int64(key, value),
	}
}

func newInt(key string, value int) Tag {
	return Tag{
		field: zap.Int(key, value),
	}
}

func newTimeTag(key string, value time.Time) Tag {
	return Tag{
		field: zap.Time(key, value),
	}
}

func newObjectTag(key string, value interface{}) Tag {
	return Tag{
		field: zap.String(key, fmt.Sprintf("%v", value)),
	}
}

func newErrorTag(key string, value error) Tag {
	//NOTE zap already chosen "error" as key
	return Tag{
		field: zap.Error(value),
	}
}

// TAGS

func Error(err error) Tag {
	return newErrorTag("error", err)
}

func Service(sv string) Tag {
	return newStringTag("service", sv)
}

func Message(msg string) Tag {
	return newStringTag("message", msg)
}

func Order(id string) Tag {
	return newStringTag("order", id)
}

func Operation(id string) Tag {
	return newStringTag("operation", id)
}

func TimeEntry(id string) Tag {
	return newStringTag("timeEntry", id)
}

func EntryStatus(status string) Tag {
	return newStringTag("entryStatus", status)
}

func Phase(phase string) Tag {
	return newStringTag("phase", phase)
}

func User(id string) Tag {
	return newStringTag("user", id)
}

func RequestId(id string) Tag {
	return newStringTag("requestId", id)
}

func StatusCode(status int) Tag {
	return newInt("status", status)
}

func ElapsedSeconds(v int64) Tag {
	return newInt64("elapsedSeconds", v)
}

func ClockInTime(t time.Time) Tag {
	return newTimeTag("clockInTime", t)
}

func Value(v interface{}) Tag {
	return newObjectTag("value", v)
}

func DefaultValue(v interface{}) Tag {
	return newObjectTag("default-value", v)
}
