package parse

import (
	"fmt"
	"io"

	"cybus.dev/transit/model"
)

type fareAttributeCSV struct {
	ID               string `csv:"fare_id"`
	Price            string `csv:"price"`
	CurrencyType     string `csv:"currency_type"`
	PaymentMethod    string `csv:"payment_method"`
	Transfers        string `csv:"transfers"`
	AgencyID         string `csv:"agency_id"`
	TransferDuration string `csv:"transfer_duration"`
}

type fareRuleCSV struct {
	FareID        string `csv:"fare_id"`
	RouteID       string `csv:"route_id"`
	OriginID      string `csv:"origin_id"`
	DestinationID string `csv:"destination_id"`
}

func FareAttributes(data io.Reader) ([]model.FareAttribute, error) {
	records := []*fareAttributeCSV{}
	if err := unmarshalCSV(data, &records); err != nil {
		return nil, fmt.Errorf("unmarshaling fare_attributes csv: %w", err)
	}

	fares := make([]model.FareAttribute, 0, len(records))
	for _, f := range records {
		fares = append(fares, model.FareAttribute{
			ID:               f.ID,
			Price:            atofDefault(f.Price, 0),
			CurrencyType:     f.CurrencyType,
			PaymentMethod:    atoiDefault(f.PaymentMethod, 0),
			Transfers:        atoiDefault(f.Transfers, 0),
			AgencyID:         f.AgencyID,
			TransferDuration: atoiDefault(f.TransferDuration, 0),
		})
	}

	return fares, nil
}

func FareRules(data io.Reader) ([]model.FareRule, error) {
	records := []*fareRuleCSV{}
	if err := unmarshalCSV(data, &records); err != nil {
		return nil, fmt.Errorf("unmarshaling fare_rules csv: %w", err)
	}

	rules := make([]model.FareRule, 0, len(records))
	for _, r := range records {
		rules = append(rules, model.FareRule{
			FareID:        r.FareID,
			RouteID:       r.RouteID,
			OriginID:      r.OriginID,
			DestinationID: r.DestinationID,
		})
	}

	return rules, nil
}
