package metrics

import "time"

// multiCollector fans every record out to several collectors.
type multiCollector []MetricsCollector

// Multi returns a collector that records into every non-nil collector.
func Multi(collectors ...MetricsCollector) MetricsCollector {
	var out multiCollector
	for _, c := range collectors {
		if c != nil {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return NoOpCollector{}
	}
	if len(out) == 1 {
		return out[0]
	}
	return out
}

func (m multiCollector) RecordRequest(operation string, outcome string, duration time.Duration) {
	for _, c := range m {
		c.RecordRequest(operation, outcome, duration)
	}
}

func (m multiCollector) RecordCircuitState(name string, state CircuitState) {
	for _, c := range m {
		c.RecordCircuitState(name, state)
	}
}

func (m multiCollector) RecordCacheLookup(kind string, hit bool) {
	for _, c := range m {
		c.RecordCacheLookup(kind, hit)
	}
}

func (m multiCollector) RecordCacheInvalidation(operation string) {
	for _, c := range m {
		c.RecordCacheInvalidation(operation)
	}
}

func (m multiCollector) RecordQueueDepth(depth int) {
	for _, c := range m {
		c.RecordQueueDepth(depth)
	}
}

func (m multiCollector) RecordWarmDropped() {
	for _, c := range m {
		c.RecordWarmDropped()
	}
}

func (m multiCollector) RecordWarmWrite(success bool, duration time.Duration) {
	for _, c := range m {
		c.RecordWarmWrite(success, duration)
	}
}

func (m multiCollector) RecordValidationFailure(form string) {
	for _, c := range m {
		c.RecordValidationFailure(form)
	}
}
