package services

import "fmt"

// ClusterInsight is the curated persona attached to a cluster assignment.
type ClusterInsight struct {
	Label     string   `json:"label"`
	Summary   string   `json:"summary"`
	Strengths []string `json:"strengths"`
	Risks     []string `json:"risks"`
	Tips      []string `json:"tips"`
}

// Curated entries for the clusters the model currently emits. Keys are the
// stringified cluster assignment from the profile payload.
var clusterInsights = map[string]ClusterInsight{
	"0": {
		Label:   "Steady Achiever",
		Summary: "Learns in regular sessions and passes quizzes on early attempts.",
		Strengths: []string{
			"Consistent daily study rhythm",
			"High first-attempt pass rate",
		},
		Risks: []string{
			"May plateau without harder material",
		},
		Tips: []string{
			"Enroll in a stretch course beyond the current track",
			"Review missed questions even on passing attempts",
		},
	},
	"1": {
		Label:   "Deadline Sprinter",
		Summary: "Activity clusters into short bursts with long idle gaps.",
		Strengths: []string{
			"Covers a lot of material quickly when engaged",
		},
		Risks: []string{
			"Retention drops between bursts",
			"Quiz scores swing widely across attempts",
		},
		Tips: []string{
			"Schedule two short sessions per week instead of one long one",
			"Retake quizzes a few days after passing to reinforce recall",
		},
	},
	"2": {
		Label:   "Careful Explorer",
		Summary: "Spends long stretches on module content before attempting quizzes.",
		Strengths: []string{
			"Thorough engagement with course material",
			"Rarely fails a quiz once attempted",
		},
		Risks: []string{
			"Slow progression can stall course completion",
		},
		Tips: []string{
			"Attempt the quiz earlier; a failed attempt is free feedback",
			"Set a target of one module completion per week",
		},
	},
	"3": {
		Label:   "Quiz-First Skimmer",
		Summary: "Jumps straight to quizzes with minimal content views.",
		Strengths: []string{
			"Efficient at demonstrating existing knowledge",
		},
		Risks: []string{
			"Repeated failed attempts on unfamiliar modules",
			"Gaps in foundational material go unnoticed",
		},
		Tips: []string{
			"Open the module content after a failed attempt before retrying",
			"Use course progress to spot skipped fundamentals",
		},
	},
}

// clusterInsightFor falls back to a generic entry that embeds the raw
// cluster key, so unrecognized assignments still produce a response.
func clusterInsightFor(key string) ClusterInsight {
	if insight, ok := clusterInsights[key]; ok {
		return insight
	}
	return ClusterInsight{
		Label:     fmt.Sprintf("Cluster %s", key),
		Summary:   "No curated insight is available for this cluster yet.",
		Strengths: []string{},
		Risks:     []string{},
		Tips:      []string{},
	}
}
