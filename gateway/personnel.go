// Copyright (c) 2026 PlantOps Organization
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/plantops/timeclock/common/log"
	"github.com/plantops/timeclock/common/log/tag"
	"github.com/plantops/timeclock/config"
)

type personnelServiceImpl struct {
	session    Session
	serviceURL string
	logger     log.Logger
}

// NewPersonnelService builds the client of the personnel lookup service.
func NewPersonnelService(cfg config.GatewayConfig, session Session, logger log.Logger) PersonnelService {
	return &personnelServiceImpl{
		session:    session,
		serviceURL: cfg.PersonnelServiceURL,
		logger:     logger,
	}
}

func (s *personnelServiceImpl) Lookup(ctx context.Context, userID string) (string, error) {
	request := struct {
		Username string `json:"username"`
	}{Username: userID}

	resp, err := s.session.Do(ctx, http.MethodPost, s.serviceURL, request)
	if err != nil {
		return "", err
	}
	body, err := readBody(resp)
	if err != nil {
		return "", fmt.Errorf("personnel number not found: %w", err)
	}

	var parsed struct {
		EmployeeNumber string `json:"employeenumber"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("malformed personnel lookup response: %w", err)
	}
	if parsed.EmployeeNumber == "" {
		return "", fmt.Errorf("personnel number not found for user %v", userID)
	}
	if n, err := strconv.Atoi(parsed.EmployeeNumber); err == nil && n == 0 {
		return "", fmt.Errorf("personnel number not found for user %v", userID)
	}

	s.logger.Debug("resolved personnel number", tag.User(userID))
	return parsed.EmployeeNumber, nil
}
