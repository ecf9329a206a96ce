package config

type WorkerKeyStruct struct {
	AnalyticsHitsQueue  string
	AnalyticsGoalsQueue string
}

var WorkerKey = &WorkerKeyStruct{
	AnalyticsHitsQueue:  "analytics_hits_queue",
	AnalyticsGoalsQueue: "analytics_goals_queue",
}
