// Copyright (c) 2026 PlantOps Organization
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Status is the lifecycle status of a time entry in the remote store.
type Status string

const (
	StatusInProcess     Status = "InProcess"
	StatusPrimaryDone   Status = "PrimaryDone"
	StatusCompleted     Status = "Completed"
	StatusError         Status = "Error"
	StatusOverheadError Status = "OverheadError"
	StatusDeleted       Status = "Deleted"
)

// IsTerminal returns true for statuses the pipeline never leaves.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusDeleted
}

// Decimal is a float that tolerates the remote store serializing decimals as
// either JSON numbers or strings.
type Decimal float64

func (d *Decimal) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*d = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*d = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("malformed decimal %q: %w", s, err)
		}
		*d = Decimal(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*d = Decimal(f)
	return nil
}

func (d Decimal) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(d))
}

// TimeEntry is the central mutable entity of the remote time entry store.
// The json tags are the remote schema's field names; dates and times are
// split business-zone fields, matching the remote schema. The concurrency
// tag is carried out of band (HTTP ETag), not as an entry field.
type TimeEntry struct {
	ID           string `json:"SapUUID,omitempty"`
	OrderID      string `json:"OrderID"`
	OperationID  string `json:"OperationSo"`
	UserID       string `json:"UserID"`
	ActivityType string `json:"ActTyp"`

	ExecStartDate string `json:"ExecStartDate"`
	ExecStartTime string `json:"ExecStartTime"`
	ExecFinDate   string `json:"ExecFinDate"`
	ExecFinTime   string `json:"ExecFinTime"`

	// Audit instants on the business clock, only set by live clock-in/out.
	ClockInLog  string `json:"ClkInLog,omitempty"`
	ClockOutLog string `json:"ClkOutLog,omitempty"`

	Status Status `json:"Status"`

	ActualWorkHours Decimal `json:"ActWrk,omitempty"`
	WorkUnit        string  `json:"Arbeh,omitempty"`
	// OverheadFlag holds the final-confirmation indicator: "T"/"F" while the
	// pipeline runs, "X" once the overhead phase completed.
	OverheadFlag string `json:"OvrHd,omitempty"`

	ConfirmationNumber          string `json:"CnfNo,omitempty"`
	ConfirmationCounter         string `json:"CnfCntr,omitempty"`
	OverheadConfirmationNumber  string `json:"OcnfNo,omitempty"`
	OverheadConfirmationCounter string `json:"OcnfCntr,omitempty"`
}

// EntryPatch is a partial update of a time entry. Nil fields are omitted
// from the wire payload.
type EntryPatch struct {
	Status          *Status  `json:"Status,omitempty"`
	ActualWorkHours *float64 `json:"ActWrk,omitempty"`
	WorkUnit        *string  `json:"Arbeh,omitempty"`
	ExecStartDate   *string  `json:"ExecStartDate,omitempty"`
	ExecStartTime   *string  `json:"ExecStartTime,omitempty"`
	ExecFinDate     *string  `json:"ExecFinDate,omitempty"`
	ExecFinTime     *string  `json:"ExecFinTime,omitempty"`
	OverheadFlag    *string  `json:"OvrHd,omitempty"`
	ClockOutLog     *string  `json:"ClkOutLog,omitempty"`

	ConfirmationNumber          *string `json:"CnfNo,omitempty"`
	ConfirmationCounter         *string `json:"CnfCntr,omitempty"`
	OverheadConfirmationNumber  *string `json:"OcnfNo,omitempty"`
	OverheadConfirmationCounter *string `json:"OcnfCntr,omitempty"`
}

// ConfirmationInput carries everything needed to build one confirmation
// posting. WorkStart/WorkFinish are local instants; the poster converts them
// to the business clock and the remote wire formats.
type ConfirmationInput struct {
	OrderID           string
	OperationID       string
	PersonnelNumber   string
	ActivityType      string
	WorkStart         time.Time
	WorkFinish        time.Time
	ActualWorkHours   float64
	ElapsedSeconds    int64
	FinalConfirmation bool
	Note              string
}

// ConfirmationResult is returned by the posting service on success.
type ConfirmationResult struct {
	Number  string
	Counter string
}

// OrderRow is one flattened (order, operation) row of the order catalog.
type OrderRow struct {
	OrderID              string
	OrderDescription     string
	OperationID          string
	OperationDescription string
	WorkCenter           string
	SystemStatus         string
	AssignedTo           string
	ActivityType         string
	ReqStartDate         *time.Time
	ReqEndDate           *time.Time
}
