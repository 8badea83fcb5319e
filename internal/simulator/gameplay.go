package simulator

import "math"

// Game progression constants, as the game client computes them.
const (
	startAge          = 3
	startCrossingTime = 6.0
	startSpeed        = 25.0
	maxSpeed          = 80.0
	startLanes        = 2
	maxLanes          = 6
	pointsPerCrossing = 100

	minLevel = 1
	maxLevel = 10
)

// Controller directions cycled by the simulated device.
var directions = []string{"up", "right", "down", "left"}

// GameStats is the /predict body the game client sends.
type GameStats struct {
	PlayerAge     float64 `json:"edad_jugador"`
	CrossingTime  float64 `json:"tiempo_cruce"`
	VehicleSpeed  float64 `json:"velocidad_vehiculos"`
	NumberOfLanes float64 `json:"num_carriles"`
	AttemptCount  float64 `json:"num_intentos"`
}

// InitialStats are the stats of a freshly reset game.
func InitialStats() GameStats {
	return GameStats{
		PlayerAge:     startAge,
		CrossingTime:  startCrossingTime,
		VehicleSpeed:  startSpeed,
		NumberOfLanes: startLanes,
		AttemptCount:  1,
	}
}

// Advance derives the stats for the given score: cars speed up, lanes are
// added in pairs every 300 points and the crossing window widens.
func (g GameStats) Advance(score int) GameStats {
	s := float64(score)
	g.VehicleSpeed = math.Min(startSpeed+s/50, maxSpeed)
	g.NumberOfLanes = math.Min(startLanes+math.Floor(s/300)*2, maxLanes)
	g.CrossingTime = math.Max(startCrossingTime, startCrossingTime+s/200)
	return g
}

// Collide records a lost attempt.
func (g GameStats) Collide() GameStats {
	g.AttemptCount++
	return g
}

// Level maps a raw prediction to the difficulty level the game applies.
func Level(prediction float64) int {
	level := int(math.Round(prediction))
	return min(maxLevel, max(minLevel, level))
}

// ScoreLevel is the level the game falls back to without predictions.
func ScoreLevel(score int) int {
	return min(maxLevel, score/pointsPerCrossing+1)
}
