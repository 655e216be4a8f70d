package accounts

// ReviewETABucketFromQueueSize maps the pending queue depth to the coarse
// wait-time bucket shown on the dashboard.
func ReviewETABucketFromQueueSize(queueSize int) string {
	if queueSize >= 50 {
		return "more_than_day"
	}
	if queueSize <= 10 {
		return "same_day"
	}
	if queueSize <= 25 {
		return "up_to_two_days"
	}
	return "up_to_week"
}
