package entities

import (
	"encoding/json"
	"fmt"

	"github.com/aarondl/null/v8"
)

// Элемент рассадки — это либо рабочее место, либо объект инфраструктуры.
// На проводе оба варианта различаются полем "type"; внутри держим их
// отдельными типами, чтобы не таскать мешок опциональных атрибутов.

type FloorplanSeat struct {
	ID     int64    `json:"id"`
	Code   string   `json:"code"`
	Name   string   `json:"name"`
	X      int      `json:"x"`
	Y      int      `json:"y"`
	Width  int      `json:"width"`
	Height int      `json:"height"`
	UserID null.Int64 `json:"user_id"`
}

type FloorplanFacility struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	FacilityType string `json:"facilityType"`
	X            int    `json:"x"`
	Y            int    `json:"y"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
}

// FloorplanDocument — целиком содержимое одного этажа. Документ всегда
// загружается и сохраняется полностью.
type FloorplanDocument struct {
	Floor int            `json:"floor"`
	Items FloorplanItems `json:"items"`
}

type FloorplanItems struct {
	Seats      []FloorplanSeat
	Facilities []FloorplanFacility
}

// MaxID нужен фронтенду как начальное значение счетчика элементов.
func (it FloorplanItems) MaxID() int64 {
	var max int64
	for _, s := range it.Seats {
		if s.ID > max {
			max = s.ID
		}
	}
	for _, f := range it.Facilities {
		if f.ID > max {
			max = f.ID
		}
	}
	return max
}

type taggedSeat struct {
	Type string `json:"type"`
	FloorplanSeat
}

type taggedFacility struct {
	Type string `json:"type"`
	FloorplanFacility
}

func (it FloorplanItems) MarshalJSON() ([]byte, error) {
	items := make([]interface{}, 0, len(it.Seats)+len(it.Facilities))
	for _, s := range it.Seats {
		items = append(items, taggedSeat{Type: "seat", FloorplanSeat: s})
	}
	for _, f := range it.Facilities {
		items = append(items, taggedFacility{Type: "facility", FloorplanFacility: f})
	}
	return json.Marshal(items)
}

func (it *FloorplanItems) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	it.Seats = nil
	it.Facilities = nil

	for i, msg := range raw {
		var probe struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(msg, &probe); err != nil {
			return fmt.Errorf("элемент рассадки %d: %w", i, err)
		}

		switch probe.Type {
		case "seat":
			var s FloorplanSeat
			if err := json.Unmarshal(msg, &s); err != nil {
				return fmt.Errorf("элемент рассадки %d: %w", i, err)
			}
			it.Seats = append(it.Seats, s)
		case "facility":
			var f FloorplanFacility
			if err := json.Unmarshal(msg, &f); err != nil {
				return fmt.Errorf("элемент рассадки %d: %w", i, err)
			}
			it.Facilities = append(it.Facilities, f)
		default:
			return fmt.Errorf("элемент рассадки %d: неизвестный тип %q", i, probe.Type)
		}
	}

	return nil
}
