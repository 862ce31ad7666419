package policy

// ActorValues exposes the actor predictions for a state vector.
func (that *ActorCritic) ActorValues(vector []float64) ([]float64, error) {
	return that.actor.Predict(vector)
}
