package compensation

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/curaflow/curaflow/pkg/staff"
)

func TestCsvCompensationRendererImpl_RenderCompensation(t *testing.T) {
	allocID := 3
	comp := Compensation{
		UID:         "abc-123",
		StaffID:     1,
		PeriodStart: date("2025-03-01"),
		PeriodEnd:   date("2025-03-31"),
		Status:      StatusApproved,
		Breakdown: Breakdown{
			Regular:           BucketLine{Hours: decimal.NewFromInt(8), Amount: decimal.NewFromInt(80)},
			Weekend:           BucketLine{Hours: decimal.NewFromInt(4), Amount: decimal.NewFromInt(80)},
			Overtime:          BucketLine{Hours: decimal.NewFromInt(2), Amount: decimal.NewFromInt(30)},
			Kilometers:        decimal.NewFromInt(5),
			MileageAmount:     decimal.NewFromInt(10),
			TotalCompensation: decimal.NewFromInt(200),
		},
		Charges: []Charge{
			{AllocationID: &allocID, Amount: decimal.NewFromInt(150)},
			{Amount: decimal.NewFromInt(50)},
		},
	}
	staffMember := staff.Staff{FirstName: "Erik", LastName: "Lund"}

	renderer := NewCsvCompensationRenderer()
	rendered, err := renderer.RenderCompensation(comp, staffMember)
	assert.NoError(t, err)

	lines := strings.Split(strings.TrimRight(rendered, "\n"), "\n")
	assert.Equal(t, "Staff,Erik Lund", lines[0])
	assert.Equal(t, "Period,01/03/2025 - 31/03/2025", lines[1])
	assert.Equal(t, "Status,approved", lines[2])
	assert.Contains(t, rendered, "Regular,8.00,80.00")
	assert.Contains(t, rendered, "Weekend,4.00,80.00")
	assert.Contains(t, rendered, "Overtime,2.00,30.00")
	assert.Contains(t, rendered, "Mileage,5.00 km,10.00")
	assert.Contains(t, rendered, "Total,14.00,200.00")
	assert.Contains(t, rendered, "1,3,150.00")
	assert.Contains(t, rendered, "2,direct,50.00")
}
