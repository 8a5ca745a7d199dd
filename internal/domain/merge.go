package domain

import "time"

// MergeJobs unions incoming into prev by job ID. Incoming entries overwrite
// same-ID entries in place; new IDs are appended in incoming order. Merging
// the same incoming slice twice yields the same jobs.
func MergeJobs(prev *JobsData, incoming []Job, now time.Time) JobsData {
	var old []Job
	if prev != nil {
		old = prev.Jobs
	}

	out := make([]Job, 0, len(old)+len(incoming))
	idx := make(map[string]int, len(old)+len(incoming))
	put := func(j Job) {
		if i, ok := idx[j.ID]; ok {
			out[i] = j
			return
		}
		idx[j.ID] = len(out)
		out = append(out, j)
	}
	for _, j := range old {
		put(j)
	}
	for _, j := range incoming {
		put(j)
	}
	return NewJobsData(out, now)
}

// NewJobsData stamps a full replacement batch.
func NewJobsData(jobs []Job, now time.Time) JobsData {
	if jobs == nil {
		jobs = []Job{}
	}
	ts := now.UTC()
	return JobsData{LastScraped: &ts, TotalJobs: len(jobs), Jobs: jobs}
}
