// Copyright (c) 2026 PlantOps Organization
// SPDX-License-Identifier: Apache-2.0

package httperror

import (
	"net/http"

	"github.com/plantops/timeclock/common/log"
	"github.com/plantops/timeclock/common/log/tag"
)

// CheckHttpResponseAndError returns true when the call failed, either on
// transport or with a non-2xx status.
func CheckHttpResponseAndError(err error, httpResp *http.Response, logger log.Logger) bool {
	status := 0
	if httpResp != nil {
		status = httpResp.StatusCode
	}
	logger.Debug("check http response and error", tag.Error(err), tag.StatusCode(status))

	if err != nil {
		return true
	}
	if httpResp != nil && (httpResp.StatusCode < http.StatusOK || httpResp.StatusCode >= http.StatusMultipleChoices) {
		return true
	}
	return false
}
