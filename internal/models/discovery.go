package models

import "time"

// Discovery methods
const (
	MethodCreativeLab = "creative_lab"
	MethodLearning    = "learning"
)

// Discovery is one character a user found by combining radicals
type Discovery struct {
	Character    string    `json:"character"`
	Radicals     []string  `json:"radicals"`
	Method       string    `json:"method"`
	DiscoveredAt time.Time `json:"discoveredAt"`
	Points       int       `json:"points"`
}

// DiscoveryResult reports the outcome of recording a discovery
type DiscoveryResult struct {
	IsNew            bool `json:"isNew"`
	PointsEarned     int  `json:"pointsEarned"`
	TotalDiscoveries int  `json:"totalDiscoveries"`
}

// FindDiscovery returns the index of character in log, or -1
func FindDiscovery(log []Discovery, character string) int {
	for i, d := range log {
		if d.Character == character {
			return i
		}
	}
	return -1
}
