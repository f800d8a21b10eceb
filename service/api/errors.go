// Copyright (c) 2026 PlantOps Organization
// SPDX-License-Identifier: Apache-2.0

package api

type ApiErrorResponse struct {
	Detail *string `json:"detail,omitempty"`
}

type ErrorWithStatus struct {
	StatusCode int
	Error      ApiErrorResponse
}

func NewErrorWithStatus(code int, details string) *ErrorWithStatus {
	return &ErrorWithStatus{
		StatusCode: code,
		Error: ApiErrorResponse{
			Detail: &details,
		},
	}
}
