package domain

const (
	NotificationPreferenceApproved = "preference_approved"
	NotificationPreferenceRejected = "preference_rejected"
)

type NotificationMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type PreferenceReviewedData struct {
	FullName string  `json:"fullName"`
	Date     string  `json:"date"`
	Status   string  `json:"status"`
	Notes    string  `json:"notes"`
	Shifts   []Shift `json:"shifts"`
}
