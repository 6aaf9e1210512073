package telemetry

// probe is the outcome of reading one telemetry source. Sources fail
// independently; a failed probe becomes an omitted field at the JSON edge
// and never aborts the snapshot.
type probe[T any] struct {
	value T
	err   error
}

func probeOf[T any](value T, err error) probe[T] {
	return probe[T]{value: value, err: err}
}

func (p probe[T]) ok() bool {
	return p.err == nil
}

// ptr returns the probed value as an optional field, nil when the probe
// failed.
func (p probe[T]) ptr() *T {
	if p.err != nil {
		return nil
	}
	v := p.value
	return &v
}
