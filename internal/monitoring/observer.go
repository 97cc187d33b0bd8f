package monitoring

// Observer bundles the logger and counters handed to the provider clients.
// It satisfies the observer interfaces those packages define.
type Observer struct {
	*Logger
	*Metrics
}
