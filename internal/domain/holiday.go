package domain

type HolidayType string

const (
	HolidayTypeSolar HolidayType = "solar"
	HolidayTypeLunar HolidayType = "lunar"
)

type Holiday struct {
	Date Date        `json:"date"`
	Name string      `json:"name"`
	Type HolidayType `json:"type"`
}
