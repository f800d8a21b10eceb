// Copyright (c) 2026 PlantOps Organization
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/plantops/timeclock/common/businesstime"
	"github.com/plantops/timeclock/common/log"
	"github.com/plantops/timeclock/common/log/tag"
	"github.com/plantops/timeclock/common/metrics"
	"github.com/plantops/timeclock/config"
)

const (
	orderIDWireLength     = 12
	operationIDWireLength = 4
	workQuantityUnit      = "HR"
)

// confirmationRequest is the wire document of the posting service. Dates go
// out in the legacy epoch format, times as ISO 8601 durations, both on the
// business clock.
type confirmationRequest struct {
	MaintenanceOrder            string `json:"MaintenanceOrder"`
	MaintenanceOrderOperation   string `json:"MaintenanceOrderOperation"`
	PersonnelNumber             string `json:"PersonnelNumber"`
	ActualWorkQuantity          string `json:"ActualWorkQuantity"`
	ActualWorkQuantityUnit      string `json:"ActualWorkQuantityUnit"`
	IsFinalConfirmation         bool   `json:"IsFinalConfirmation"`
	ConfirmationText            string `json:"ConfirmationText"`
	PostingDate                 string `json:"PostingDate"`
	OperationConfirmedStartDate string `json:"OperationConfirmedStartDate"`
	OperationConfirmedStartTime string `json:"OperationConfirmedStartTime"`
	OperationConfirmedEndDate   string `json:"OperationConfirmedEndDate"`
	OperationConfirmedEndTime   string `json:"OperationConfirmedEndTime"`
	ActivityType                string `json:"ActivityType"`
}

type confirmationResponse struct {
	D *confirmationRecord `json:"d"`
	// flat shape of the newer endpoints
	MaintOrderConf          string      `json:"MaintOrderConf"`
	MaintOrderConfCntrValue json.Number `json:"MaintOrderConfCntrValue"`
}

type confirmationRecord struct {
	MaintOrderConf          string      `json:"MaintOrderConf"`
	MaintOrderConfCntrValue json.Number `json:"MaintOrderConfCntrValue"`
}

type confirmationServiceImpl struct {
	session              Session
	serviceURL           string
	normalizer           *businesstime.Normalizer
	overheadActivityType string
	now                  func() time.Time
	logger               log.Logger
}

// NewConfirmationService builds the client of the confirmation posting service.
func NewConfirmationService(
	cfg config.GatewayConfig,
	engineCfg config.EngineConfig,
	session Session,
	normalizer *businesstime.Normalizer,
	logger log.Logger,
) ConfirmationService {
	return &confirmationServiceImpl{
		session:              session,
		serviceURL:           cfg.ConfirmationServiceURL,
		normalizer:           normalizer,
		overheadActivityType: engineCfg.OverheadActivityType,
		now:                  time.Now,
		logger:               logger,
	}
}

func (s *confirmationServiceImpl) PostPrimary(
	ctx context.Context, input ConfirmationInput,
) (result *ConfirmationResult, err error) {
	defer func() { metrics.RecordConfirmationPost(metrics.PhasePrimary, err) }()
	return s.post(ctx, s.buildRequest(input, false))
}

func (s *confirmationServiceImpl) PostOverhead(
	ctx context.Context, input ConfirmationInput,
) (result *ConfirmationResult, err error) {
	defer func() { metrics.RecordConfirmationPost(metrics.PhaseOverhead, err) }()
	return s.post(ctx, s.buildRequest(input, true))
}

func (s *confirmationServiceImpl) post(ctx context.Context, req confirmationRequest) (*ConfirmationResult, error) {
	resp, err := s.session.Do(ctx, http.MethodPost, s.serviceURL, req)
	if err != nil {
		return nil, err
	}
	body, err := readBody(resp)
	if err != nil {
		return nil, err
	}

	var parsed confirmationResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("malformed confirmation response: %w", err)
	}
	record := confirmationRecord{
		MaintOrderConf:          parsed.MaintOrderConf,
		MaintOrderConfCntrValue: parsed.MaintOrderConfCntrValue,
	}
	if parsed.D != nil {
		record = *parsed.D
	}
	if record.MaintOrderConf == "" {
		return nil, fmt.Errorf("confirmation response is missing the confirmation number")
	}

	s.logger.Info("confirmation posted",
		tag.Order(req.MaintenanceOrder), tag.Operation(req.MaintenanceOrderOperation),
		tag.Value(record.MaintOrderConf))
	return &ConfirmationResult{
		Number:  record.MaintOrderConf,
		Counter: record.MaintOrderConfCntrValue.String(),
	}, nil
}

func (s *confirmationServiceImpl) buildRequest(input ConfirmationInput, overhead bool) confirmationRequest {
	startISO := s.normalizer.ToBusinessISO(input.WorkStart)
	finishISO := s.normalizer.ToBusinessISO(input.WorkFinish)

	activityType := input.ActivityType
	if overhead {
		activityType = s.overheadActivityType
	}

	return confirmationRequest{
		MaintenanceOrder:            padIdentifier(input.OrderID, orderIDWireLength),
		MaintenanceOrderOperation:   padIdentifier(input.OperationID, operationIDWireLength),
		PersonnelNumber:             input.PersonnelNumber,
		ActualWorkQuantity:          formatWorkQuantity(input.ActualWorkHours, input.ElapsedSeconds),
		ActualWorkQuantityUnit:      workQuantityUnit,
		IsFinalConfirmation:         input.FinalConfirmation,
		ConfirmationText:            input.Note,
		PostingDate:                 legacyEpochDate(s.normalizer.ToBusinessISO(s.now())),
		OperationConfirmedStartDate: legacyEpochDate(startISO),
		OperationConfirmedStartTime: isoDurationClock(startISO),
		OperationConfirmedEndDate:   legacyEpochDate(finishISO),
		OperationConfirmedEndTime:   isoDurationClock(finishISO),
		ActivityType:                activityType,
	}
}

// padIdentifier zero-pads an identifier to the backend's fixed field width.
func padIdentifier(id string, width int) string {
	for len(id) < width {
		id = "0" + id
	}
	return id
}

// formatWorkQuantity renders hours with one decimal. An elapsed time above a
// minute must never post as 0.0, it is floored to 0.1 instead.
func formatWorkQuantity(hours float64, elapsedSeconds int64) string {
	quantity := strconv.FormatFloat(hours, 'f', 1, 64)
	if quantity == "0.0" && elapsedSeconds > 60 {
		quantity = "0.1"
	}
	return quantity
}

// legacyEpochDate renders a business-zone ISO string as "/Date(ms)/", with
// the wall-clock components taken as UTC the way the legacy endpoints expect.
func legacyEpochDate(iso string) string {
	t, err := time.Parse(businesstime.ISOLayout, iso)
	if err != nil {
		return "/Date(0)/"
	}
	return fmt.Sprintf("/Date(%v)/", t.UTC().UnixMilli())
}

// isoDurationClock renders the time-of-day part of a business-zone ISO
// string as an ISO 8601 duration, e.g. "PT09H05M07S".
func isoDurationClock(iso string) string {
	if len(iso) < 19 {
		return "PT00H00M00S"
	}
	return fmt.Sprintf("PT%vH%vM%vS", iso[11:13], iso[14:16], iso[17:19])
}
