package domain

type CarMake struct {
	Name        string
	Description string
	Models      []CarModel
}

type CarModel struct {
	Name     string
	Type     string // Sedan | SUV | Wagon
	Year     int
	DealerID int64
}

// CarModelView is the flattened shape served by list-cars.
type CarModelView struct {
	CarModel string `json:"CarModel"`
	CarMake  string `json:"CarMake"`
}
