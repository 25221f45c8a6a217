// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package log

import (
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

// callerSettings selects the caller fields added to log lines.
// A nil field is unset and takes the value of a parent logger.
type callerSettings struct {
	file *bool
	line *bool
	funC *bool
}

func (c *callerSettings) mergeWith(other callerSettings) {
	mergeBool(&c.file, other.file)
	mergeBool(&c.line, other.line)
	mergeBool(&c.funC, other.funC)
}

func (c *callerSettings) setDefaults() {
	defaultBool(&c.file)
	defaultBool(&c.line)
	defaultBool(&c.funC)
}

func (c callerSettings) enabled() bool {
	return *c.file || *c.line || *c.funC
}

// mergeBool copies the value of other into a new pointer at dst when
// other is set.
func mergeBool(dst **bool, other *bool) {
	if other == nil {
		return
	}
	value := *other
	*dst = &value
}

func defaultBool(dst **bool) {
	if *dst == nil {
		value := false
		*dst = &value
	}
}

// callerDepth is the number of frames between runtime.Caller and the
// code calling the exported logging methods.
const callerDepth = 3

// getCallerString returns the caller of the exported logging method as
// file:Lline:function, keeping only the fields enabled in the settings.
func getCallerString(settings callerSettings) string {
	if !settings.enabled() {
		return ""
	}

	pc, file, line, ok := runtime.Caller(callerDepth)
	if !ok {
		return "error"
	}

	fields := make([]string, 0, 3)
	if *settings.file {
		fields = append(fields, filepath.Base(file))
	}
	if *settings.line {
		fields = append(fields, "L"+strconv.Itoa(line))
	}
	if *settings.funC {
		if details := runtime.FuncForPC(pc); details != nil {
			fields = append(fields, strings.TrimLeft(filepath.Ext(details.Name()), "."))
		}
	}
	return strings.Join(fields, ":")
}
