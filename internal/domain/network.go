package domain

import "time"

type Station struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"desc"`
	Active      bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Connection is a directed, distance-weighted edge between two stations.
type Connection struct {
	ID              string    `json:"id"`
	FromStationID   string    `json:"fromStationId"`
	ToStationID     string    `json:"toStationId"`
	FromStationName string    `json:"fromStationName,omitempty"`
	ToStationName   string    `json:"toStationName,omitempty"`
	Distance        float64   `json:"distance"`
	Active          bool      `json:"isActive"`
	CreatedAt       time.Time `json:"createdAt"`
}

func (c Connection) Pair() StationPair {
	return StationPair{From: c.FromStationID, To: c.ToStationID}
}

// StationPair is an ordered (from, to) key; (a, b) and (b, a) are different edges.
type StationPair struct {
	From string `json:"fromStationId"`
	To   string `json:"toStationId"`
}

type Train struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Number    string    `json:"number"`
	Active    bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

type TrainClass struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	PricePerKm float64 `json:"pricePerKm"`
}

type TrainLine struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	TrainID   string       `json:"trainId"`
	Active    bool         `json:"isActive"`
	Train     *Train       `json:"train,omitempty"`
	Classes   []TrainClass `json:"classes"`
	CreatedAt time.Time    `json:"createdAt"`
}

func (l TrainLine) ClassIDs() []string {
	ids := make([]string, 0, len(l.Classes))
	for _, c := range l.Classes {
		ids = append(ids, c.ID)
	}
	return ids
}
