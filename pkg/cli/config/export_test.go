package config

import "time"

// NewRepositoryForTest creates a Repository config for testing purposes
func NewRepositoryForTest(backend, projectID, postgresDSN string) *Repository {
	return &Repository{
		backend:     backend,
		projectID:   projectID,
		postgresDSN: postgresDSN,
	}
}

// NewSLAForTest creates an SLA config for testing purposes
func NewSLAForTest(thresholdHours float64, interval, guardTTL time.Duration, concurrency int) *SLA {
	return &SLA{
		thresholdHours: thresholdHours,
		interval:       interval,
		guardTTL:       guardTTL,
		concurrency:    concurrency,
	}
}

// NewCalendarForTest creates a Calendar config for testing purposes
func NewCalendarForTest(path, timezone string) *Calendar {
	return &Calendar{
		path:     path,
		timezone: timezone,
	}
}

// NewArchiveForTest creates an Archive config for testing purposes
func NewArchiveForTest(bucket, prefix string) *Archive {
	return &Archive{
		bucket: bucket,
		prefix: prefix,
	}
}
