package parse

import (
	"fmt"
	"io"

	"cybus.dev/transit/model"
)

type agencyCSV struct {
	ID       string `csv:"agency_id"`
	Name     string `csv:"agency_name"`
	URL      string `csv:"agency_url"`
	Timezone string `csv:"agency_timezone"`
	Lang     string `csv:"agency_lang"`
}

func Agencies(data io.Reader) ([]model.Agency, error) {
	records := []*agencyCSV{}
	if err := unmarshalCSV(data, &records); err != nil {
		return nil, fmt.Errorf("unmarshaling agency csv: %w", err)
	}

	agencies := make([]model.Agency, 0, len(records))
	for _, a := range records {
		tz := a.Timezone
		if tz == "" {
			tz = "Asia/Nicosia"
		}
		lang := a.Lang
		if lang == "" {
			lang = "el"
		}
		agencies = append(agencies, model.Agency{
			ID:       a.ID,
			Name:     a.Name,
			URL:      a.URL,
			Timezone: tz,
			Lang:     lang,
		})
	}

	return agencies, nil
}
