package domain

import "time"

// ReleaseCharges is the charge breakdown returned from a release when the
// company has release invoicing enabled. All amounts are in cents.
type ReleaseCharges struct {
	Currency          string `json:"currency"`
	StorageDays       int    `json:"storageDays"`
	ReleasedBoxes     int    `json:"releasedBoxes"`
	StorageFeeCents   int64  `json:"storageFeeCents"`
	BoxFeeCents       int64  `json:"boxFeeCents"`
	HandlingFeeCents  int64  `json:"handlingFeeCents"`
	PerBoxFeeCents    int64  `json:"perBoxFeeCents"`
	TransportFeeCents int64  `json:"transportFeeCents"`
	TotalCents        int64  `json:"totalCents"`
}

// ChargeCalculator computes storage and release charges from a company's
// pricing schedule.
type ChargeCalculator struct {
	pricing *PricingSchedule
}

// NewChargeCalculator creates a new charge calculator.
func NewChargeCalculator(pricing *PricingSchedule) *ChargeCalculator {
	return &ChargeCalculator{pricing: pricing}
}

// StorageDays returns the billable day count for a stay: the elapsed time
// rounded up to whole days, floored at the schedule's minimum.
func (c *ChargeCalculator) StorageDays(arrival, now time.Time) int {
	elapsed := now.Sub(arrival)
	days := int((elapsed + 24*time.Hour - time.Nanosecond) / (24 * time.Hour))
	if days < 0 {
		days = 0
	}
	if days < c.pricing.MinimumChargeDays {
		days = c.pricing.MinimumChargeDays
	}
	return days
}

// Calculate computes the full charge breakdown for releasing
// releasedCount boxes from a shipment that arrived at arrival.
func (c *ChargeCalculator) Calculate(arrival, now time.Time, releasedCount int) (*ReleaseCharges, error) {
	days := c.StorageDays(arrival, now)
	currency := c.pricing.Currency
	if currency == "" {
		currency = "USD"
	}

	perDay, err := NewMoney(c.pricing.StorageRatePerDayCents, currency)
	if err != nil {
		return nil, err
	}
	perBox, err := NewMoney(c.pricing.StorageRatePerBoxCents, currency)
	if err != nil {
		return nil, err
	}
	handling, err := NewMoney(c.pricing.ReleaseHandlingFeeCents, currency)
	if err != nil {
		return nil, err
	}
	releasePerBox, err := NewMoney(c.pricing.ReleasePerBoxFeeCents, currency)
	if err != nil {
		return nil, err
	}
	transport, err := NewMoney(c.pricing.ReleaseTransportFeeCents, currency)
	if err != nil {
		return nil, err
	}

	storageFee, err := perDay.Multiply(days)
	if err != nil {
		return nil, err
	}
	boxFee, err := perBox.Multiply(releasedCount)
	if err != nil {
		return nil, err
	}
	perBoxFee, err := releasePerBox.Multiply(releasedCount)
	if err != nil {
		return nil, err
	}

	total := ZeroMoney(currency)
	for _, part := range []Money{storageFee, boxFee, handling, perBoxFee, transport} {
		total, err = total.Add(part)
		if err != nil {
			return nil, err
		}
	}

	return &ReleaseCharges{
		Currency:          currency,
		StorageDays:       days,
		ReleasedBoxes:     releasedCount,
		StorageFeeCents:   storageFee.Amount(),
		BoxFeeCents:       boxFee.Amount(),
		HandlingFeeCents:  handling.Amount(),
		PerBoxFeeCents:    perBoxFee.Amount(),
		TransportFeeCents: transport.Amount(),
		TotalCents:        total.Amount(),
	}, nil
}
