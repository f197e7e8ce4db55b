package compensation

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/curaflow/curaflow/pkg/staff"
)

type CompensationRenderer interface {
	RenderCompensation(comp Compensation, staffMember staff.Staff) (string, error)
}

type CsvCompensationRendererImpl struct {
}

func NewCsvCompensationRenderer() *CsvCompensationRendererImpl {
	return &CsvCompensationRendererImpl{}
}

func (t *CsvCompensationRendererImpl) RenderCompensation(comp Compensation, staffMember staff.Staff) (string, error) {
	data := [][]string{
		{"Staff", staffMember.FirstName + " " + staffMember.LastName},
		{"Period", comp.PeriodStart.Format("02/01/2006") + " - " + comp.PeriodEnd.Format("02/01/2006")},
		{"Status", string(comp.Status)},
		{},
		{"", "Hours", "Amount"},
		bucketRow("Regular", comp.Breakdown.Regular),
		bucketRow("Weekend", comp.Breakdown.Weekend),
		bucketRow("Holiday", comp.Breakdown.Holiday),
		bucketRow("Overtime", comp.Breakdown.Overtime),
		{"Mileage", amountToString(comp.Breakdown.Kilometers) + " km", amountToString(comp.Breakdown.MileageAmount)},
		{"Total", amountToString(comp.Breakdown.TotalHours()), amountToString(comp.Breakdown.TotalCompensation)},
	}

	if len(comp.Charges) > 0 {
		data = append(data, []string{}, []string{"Charges", "Allocation", "Amount"})
		for i, charge := range comp.Charges {
			allocationLabel := "direct"
			if charge.AllocationID != nil {
				allocationLabel = strconv.Itoa(*charge.AllocationID)
			}
			data = append(data, []string{strconv.Itoa(i + 1), allocationLabel, amountToString(charge.Amount)})
		}
	}

	var b bytes.Buffer
	writer := csv.NewWriter(&b)
	for _, row := range data {
		if len(row) == 0 {
			row = []string{""}
		}
		err := writer.Write(row)
		if err != nil {
			log.Errorf("Error writing to csv: %v", err)
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		log.Errorf("Error writing to csv: %v", err)
		return "", err
	}

	return b.String(), nil
}

func bucketRow(label string, line BucketLine) []string {
	return []string{label, amountToString(line.Hours), amountToString(line.Amount)}
}

func amountToString(value decimal.Decimal) string {
	return value.StringFixed(2)
}
