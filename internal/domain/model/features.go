package model

// Feature column names, in the order the scaler and predictor were fit on.
const (
	FeaturePlayerAge     = "edad_jugador"
	FeatureCrossingTime  = "tiempo_cruce"
	FeatureVehicleSpeed  = "velocidad_vehiculos"
	FeatureNumberOfLanes = "num_carriles"
	FeatureAttemptCount  = "num_intentos"
)

// FeatureNames returns the feature columns in fitting order.
func FeatureNames() []string {
	return []string{
		FeaturePlayerAge,
		FeatureCrossingTime,
		FeatureVehicleSpeed,
		FeatureNumberOfLanes,
		FeatureAttemptCount,
	}
}

// FeatureCount is the arity of the feature tuple.
const FeatureCount = 5

// GameplayFeatures is one request's feature tuple.
type GameplayFeatures struct {
	PlayerAge     float64
	CrossingTime  float64
	VehicleSpeed  float64
	NumberOfLanes float64
	AttemptCount  float64
}

// Vector returns the features in the order given by FeatureNames.
func (f GameplayFeatures) Vector() []float64 {
	return []float64{
		f.PlayerAge,
		f.CrossingTime,
		f.VehicleSpeed,
		f.NumberOfLanes,
		f.AttemptCount,
	}
}
