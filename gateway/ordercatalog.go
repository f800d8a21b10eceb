// Copyright (c) 2026 PlantOps Organization
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/plantops/timeclock/common/log"
	"github.com/plantops/timeclock/common/log/tag"
	"github.com/plantops/timeclock/config"
)

const (
	releasedStatusPrefix  = "REL"
	confirmedStatusPrefix = "CNF"
)

type orderRecord struct {
	MaintenanceOrder          string `json:"MaintenanceOrder"`
	MaintenanceOrderDesc      string `json:"MaintenanceOrderDesc"`
	MainWorkCenter            string `json:"MainWorkCenter"`
	SystemStatusText          string `json:"SystemStatusText"`
	MaintOrdPersonResponsible string `json:"MaintOrdPersonResponsible"`
	MaintenanceActivityType   string `json:"MaintenanceActivityType"`
	Operations                struct {
		Results []operationRecord `json:"results"`
	} `json:"to_MaintenanceOrderOperation"`
}

type operationRecord struct {
	MaintenanceOrderOperation    string `json:"MaintenanceOrderOperation"`
	OperationDescription         string `json:"OperationDescription"`
	WorkCenter                   string `json:"WorkCenter"`
	SystemStatusText             string `json:"SystemStatusText"`
	OperationPersonResponsible   string `json:"OperationPersonResponsible"`
	ActivityType                 string `json:"ActivityType"`
	OpErlstSchedldExecStrtDteTme string `json:"OpErlstSchedldExecStrtDteTme"`
	OpErlstSchedldExecEndDteTme  string `json:"OpErlstSchedldExecEndDteTme"`
}

type orderCatalogImpl struct {
	session      Session
	serviceURL   string
	orderType    string
	createdSince string
	logger       log.Logger
}

// NewOrderCatalog builds the read-only client of the order catalog service.
func NewOrderCatalog(cfg config.GatewayConfig, session Session, logger log.Logger) OrderCatalog {
	return &orderCatalogImpl{
		session:      session,
		serviceURL:   cfg.OrderServiceURL,
		orderType:    cfg.OrderType,
		createdSince: cfg.OrderCreatedSince,
		logger:       logger,
	}
}

func (s *orderCatalogImpl) ListOpen(ctx context.Context, orderIDFilter string) ([]OrderRow, error) {
	filter := fmt.Sprintf("MaintOrderCreationDateTime gt datetimeoffset'%v' and MaintenanceOrderType eq '%v'",
		s.createdSince, s.orderType)
	if orderIDFilter != "" {
		filter += fmt.Sprintf(" and substringof('%v', MaintenanceOrder)", orderIDFilter)
	}
	listURL := fmt.Sprintf("%v?$filter=%v&$expand=to_MaintenanceOrderOperation&$format=json",
		s.serviceURL, url.QueryEscape(filter))

	resp, err := s.session.Do(ctx, http.MethodGet, listURL, nil)
	if err != nil {
		return nil, err
	}
	body, err := readBody(resp)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		D struct {
			Results []orderRecord `json:"results"`
		} `json:"d"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("malformed order catalog response: %w", err)
	}

	rows := flattenOrders(envelope.D.Results)
	s.logger.Debug("loaded order catalog", tag.Value(len(rows)))
	return rows, nil
}

// flattenOrders keeps released orders and their not-yet-confirmed
// operations, one row per (order, operation). Operation-level fields fall
// back to the order-level values when empty.
func flattenOrders(orders []orderRecord) []OrderRow {
	var rows []OrderRow
	for _, order := range orders {
		if !strings.HasPrefix(order.SystemStatusText, releasedStatusPrefix) {
			continue
		}
		for _, op := range order.Operations.Results {
			if strings.HasPrefix(op.SystemStatusText, confirmedStatusPrefix) {
				continue
			}
			rows = append(rows, OrderRow{
				OrderID:              order.MaintenanceOrder,
				OrderDescription:     order.MaintenanceOrderDesc,
				OperationID:          op.MaintenanceOrderOperation,
				OperationDescription: op.OperationDescription,
				WorkCenter:           fallback(op.WorkCenter, order.MainWorkCenter),
				SystemStatus:         fallback(op.SystemStatusText, order.SystemStatusText),
				AssignedTo:           fallback(op.OperationPersonResponsible, order.MaintOrdPersonResponsible),
				ActivityType:         fallback(op.ActivityType, order.MaintenanceActivityType),
				ReqStartDate:         parseLegacyEpochDate(op.OpErlstSchedldExecStrtDteTme),
				ReqEndDate:           parseLegacyEpochDate(op.OpErlstSchedldExecEndDteTme),
			})
		}
	}
	return rows
}

func fallback(value, alternative string) string {
	if value != "" {
		return value
	}
	return alternative
}

var legacyEpochPattern = regexp.MustCompile(`\/Date\((-?\d+)\)\/`)

// parseLegacyEpochDate parses the "/Date(ms)/" timestamps of the legacy
// order endpoint. Returns nil when the field is empty or malformed.
func parseLegacyEpochDate(value string) *time.Time {
	match := legacyEpochPattern.FindStringSubmatch(value)
	if match == nil {
		return nil
	}
	ms, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		return nil
	}
	t := time.UnixMilli(ms).UTC()
	return &t
}
