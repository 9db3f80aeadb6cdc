package services

// Observer receives business events for metrics. *metrics.Metrics implements it.
type Observer interface {
	AuthAttempt(result string)
	MessageIntake(result string)
	Suggestion(source string)
}

type nopObserver struct{}

func (nopObserver) AuthAttempt(string)   {}
func (nopObserver) MessageIntake(string) {}
func (nopObserver) Suggestion(string)    {}

func observerOrNop(o Observer) Observer {
	if o == nil {
		return nopObserver{}
	}
	return o
}
