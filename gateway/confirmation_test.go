// Copyright (c) 2026 PlantOps Organization
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/plantops/timeclock/common/businesstime"
	"github.com/plantops/timeclock/common/log"
)

func TestPadIdentifier(t *testing.T) {
	assert.Equal(t, "000000001234", padIdentifier("1234", 12))
	assert.Equal(t, "0010", padIdentifier("10", 4))
	assert.Equal(t, "1234", padIdentifier("1234", 4))
	assert.Equal(t, "12345", padIdentifier("12345", 4))
}

func TestFormatWorkQuantity(t *testing.T) {
	assert.Equal(t, "1.5", formatWorkQuantity(1.5, 5400))
	assert.Equal(t, "2.0", formatWorkQuantity(2, 7200))

	// a short but real work interval must never post as zero hours
	assert.Equal(t, "0.1", formatWorkQuantity(0.0, 90))
	assert.Equal(t, "0.1", formatWorkQuantity(0.03, 90))

	// under a minute it legitimately rounds away
	assert.Equal(t, "0.0", formatWorkQuantity(0.0, 45))
}

func TestLegacyEpochDate(t *testing.T) {
	expected := time.Date(2025, 7, 15, 12, 0, 0, 0, time.UTC).UnixMilli()
	assert.Equal(t, fmt.Sprintf("/Date(%v)/", expected), legacyEpochDate("2025-07-15T12:00:00"))
	assert.Equal(t, "/Date(0)/", legacyEpochDate("garbage"))
}

func TestIsoDurationClock(t *testing.T) {
	assert.Equal(t, "PT09H05M07S", isoDurationClock("2025-07-15T09:05:07"))
	assert.Equal(t, "PT23H59M59S", isoDurationClock("2025-12-31T23:59:59"))
	assert.Equal(t, "PT00H00M00S", isoDurationClock("short"))
}

func TestBuildRequestForcesOverheadActivityType(t *testing.T) {
	normalizer, err := businesstime.NewNormalizer("UTC")
	assert.NoError(t, err)

	now := time.Date(2025, 7, 15, 10, 0, 0, 0, time.UTC)
	svc := &confirmationServiceImpl{
		normalizer:           normalizer,
		overheadActivityType: "OVRHD",
		now:                  func() time.Time { return now },
		logger:               log.NewDevelopmentLogger(),
	}

	input := ConfirmationInput{
		OrderID:           "1234",
		OperationID:       "10",
		PersonnelNumber:   "00001234",
		ActivityType:      "MNT",
		WorkStart:         time.Date(2025, 7, 15, 9, 5, 7, 0, time.UTC),
		WorkFinish:        time.Date(2025, 7, 15, 9, 6, 37, 0, time.UTC),
		ActualWorkHours:   0.0,
		ElapsedSeconds:    90,
		FinalConfirmation: true,
		Note:              "short job",
	}

	primary := svc.buildRequest(input, false)
	assert.Equal(t, "000000001234", primary.MaintenanceOrder)
	assert.Equal(t, "0010", primary.MaintenanceOrderOperation)
	assert.Equal(t, "MNT", primary.ActivityType)
	assert.Equal(t, "0.1", primary.ActualWorkQuantity)
	assert.Equal(t, "HR", primary.ActualWorkQuantityUnit)
	assert.True(t, primary.IsFinalConfirmation)
	assert.Equal(t, "PT09H05M07S", primary.OperationConfirmedStartTime)
	assert.Equal(t, "PT09H06M37S", primary.OperationConfirmedEndTime)
	assert.Equal(t, "short job", primary.ConfirmationText)

	overhead := svc.buildRequest(input, true)
	assert.Equal(t, "OVRHD", overhead.ActivityType)
	// everything but the activity type matches the primary posting
	overhead.ActivityType = primary.ActivityType
	assert.Equal(t, primary, overhead)
}
