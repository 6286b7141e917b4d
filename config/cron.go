package config

// Map of job names to job functions
type CronJob struct {
	Schedule string
	Job      func(...string)
}

// Built-in jobs register themselves through cron.Register (see
// cron/jobs); this map is for jobs wired in by hand.
var CronJobs = map[string]CronJob{
	// Add more jobs here
}
