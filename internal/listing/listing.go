// Package listing groups sessions into the dashboard buckets.
package listing

import (
	"sort"

	"eldrix/admin/internal/models"
)

type SessionSummary struct {
	Session      models.HelpSession
	UserName     string
	MessageCount int
	UnreadCount  int
	Messages     []models.Message
}

type Buckets struct {
	Open      []SessionSummary
	Pending   []SessionSummary
	Ongoing   []SessionSummary
	Completed []SessionSummary
}

type Bucket struct {
	Name     string
	Sessions []SessionSummary
}

func Bucketize(sessions []SessionSummary) Buckets {
	var b Buckets
	for _, s := range sessions {
		switch {
		case s.Session.Completed || s.Session.Status == models.SessionStatusCompleted:
			b.Completed = append(b.Completed, s)
		case s.Session.Status == models.SessionStatusOpen:
			b.Open = append(b.Open, s)
		case s.Session.Status == models.SessionStatusOngoing:
			b.Ongoing = append(b.Ongoing, s)
		default:
			b.Pending = append(b.Pending, s)
		}
	}

	sortActive(b.Open)
	sortActive(b.Pending)
	sortActive(b.Ongoing)
	sortCompleted(b.Completed)
	return b
}

func (b Buckets) Ordered() []Bucket {
	return []Bucket{
		{Name: string(models.SessionStatusOpen), Sessions: b.Open},
		{Name: string(models.SessionStatusPending), Sessions: b.Pending},
		{Name: string(models.SessionStatusOngoing), Sessions: b.Ongoing},
		{Name: string(models.SessionStatusCompleted), Sessions: b.Completed},
	}
}

func (b Buckets) Flatten() []SessionSummary {
	out := make([]SessionSummary, 0, len(b.Open)+len(b.Pending)+len(b.Ongoing)+len(b.Completed))
	for _, bucket := range b.Ordered() {
		out = append(out, bucket.Sessions...)
	}
	return out
}

func sortActive(list []SessionSummary) {
	sort.SliceStable(list, func(i, j int) bool {
		hi := list[i].Session.Priority == models.PriorityHigh
		hj := list[j].Session.Priority == models.PriorityHigh
		if hi != hj {
			return hi
		}
		return newerFirst(list[i], list[j])
	})
}

func sortCompleted(list []SessionSummary) {
	sort.SliceStable(list, func(i, j int) bool {
		return newerFirst(list[i], list[j])
	})
}

func newerFirst(a, b SessionSummary) bool {
	if !a.Session.UpdatedAt.Equal(b.Session.UpdatedAt) {
		return a.Session.UpdatedAt.After(b.Session.UpdatedAt)
	}
	return a.Session.ID < b.Session.ID
}
