package difficulty

import (
	"fmt"

	"github.com/okian/crossing/internal/domain/model"
)

// Payload is the inbound /predict body. Pointers distinguish an absent (or
// null) field from a zero value.
type Payload struct {
	PlayerAge     *float64 `json:"edad_jugador"`
	CrossingTime  *float64 `json:"tiempo_cruce"`
	VehicleSpeed  *float64 `json:"velocidad_vehiculos"`
	NumberOfLanes *float64 `json:"num_carriles"`
	AttemptCount  *float64 `json:"num_intentos"`
}

// Features validates presence of every field and maps each named field to its
// fixed tuple slot. The first missing field, in column order, is reported.
func (p Payload) Features() (model.GameplayFeatures, error) {
	fields := []struct {
		name  string
		value *float64
	}{
		{model.FeaturePlayerAge, p.PlayerAge},
		{model.FeatureCrossingTime, p.CrossingTime},
		{model.FeatureVehicleSpeed, p.VehicleSpeed},
		{model.FeatureNumberOfLanes, p.NumberOfLanes},
		{model.FeatureAttemptCount, p.AttemptCount},
	}
	for _, f := range fields {
		if f.value == nil {
			return model.GameplayFeatures{}, fmt.Errorf("%w: missing field %q", ErrInput, f.name)
		}
	}

	return model.GameplayFeatures{
		PlayerAge:     *p.PlayerAge,
		CrossingTime:  *p.CrossingTime,
		VehicleSpeed:  *p.VehicleSpeed,
		NumberOfLanes: *p.NumberOfLanes,
		AttemptCount:  *p.AttemptCount,
	}, nil
}
