package booking

type TimeSlot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}
