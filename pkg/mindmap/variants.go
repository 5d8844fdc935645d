package mindmap

import (
	"math"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"
)

// ISOLayout formats dates stored in timeline data.
const ISOLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatDate renders t as an ISO-8601 UTC timestamp with milliseconds.
func FormatDate(t time.Time) string {
	return t.UTC().Format(ISOLayout)
}

// ParseDate parses an ISO-8601 timestamp as stored in timeline data.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// =============================================================================
// Checklist
// =============================================================================

// Priority ranks a checklist item.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ChecklistItem is one entry of a checklist node.
type ChecklistItem struct {
	ID        string   `json:"id"`
	Text      string   `json:"text"`
	IsChecked bool     `json:"isChecked"`
	Priority  Priority `json:"priority"`
}

// ChecklistProgress returns the percentage of checked items, rounded to
// the nearest integer. An empty checklist is 0% done.
func ChecklistProgress(items []ChecklistItem) int {
	if len(items) == 0 {
		return 0
	}
	checked := 0
	for _, it := range items {
		if it.IsChecked {
			checked++
		}
	}
	return int(math.Round(float64(checked) / float64(len(items)) * 100))
}

// AddChecklistItem appends a new unchecked item. Priority defaults to medium.
func AddChecklistItem(items []ChecklistItem, text string, p Priority) []ChecklistItem {
	if p == "" {
		p = PriorityMedium
	}
	return append(slices.Clone(items), ChecklistItem{
		ID:       uuid.NewString(),
		Text:     text,
		Priority: p,
	})
}

// UpdateChecklistItem replaces the text and priority of the item with id.
func UpdateChecklistItem(items []ChecklistItem, id, text string, p Priority) []ChecklistItem {
	return mapItems(items, func(it ChecklistItem) ChecklistItem {
		if it.ID == id {
			it.Text = text
			if p != "" {
				it.Priority = p
			}
		}
		return it
	})
}

// ToggleChecklistItem flips the checked state of the item with id.
func ToggleChecklistItem(items []ChecklistItem, id string) []ChecklistItem {
	return mapItems(items, func(it ChecklistItem) ChecklistItem {
		if it.ID == id {
			it.IsChecked = !it.IsChecked
		}
		return it
	})
}

// DeleteChecklistItem removes the item with id.
func DeleteChecklistItem(items []ChecklistItem, id string) []ChecklistItem {
	return slices.DeleteFunc(slices.Clone(items), func(it ChecklistItem) bool { return it.ID == id })
}

// MoveChecklistItem swaps the item with id with its neighbour. A positive
// delta moves it down, a negative delta up. Moves past either end are
// ignored.
func MoveChecklistItem(items []ChecklistItem, id string, delta int) []ChecklistItem {
	out := slices.Clone(items)
	i := slices.IndexFunc(out, func(it ChecklistItem) bool { return it.ID == id })
	if i < 0 || delta == 0 {
		return out
	}
	j := i + 1
	if delta < 0 {
		j = i - 1
	}
	if j < 0 || j >= len(out) {
		return out
	}
	out[i], out[j] = out[j], out[i]
	return out
}

func mapItems[T any](items []T, fn func(T) T) []T {
	if items == nil {
		return nil
	}
	out := make([]T, len(items))
	for i, it := range items {
		out[i] = fn(it)
	}
	return out
}

// =============================================================================
// Timeline
// =============================================================================

// DefaultEventColor is the color of newly added timeline events.
const DefaultEventColor = "#4c86e0"

// TimelineEvent is one dated entry of a timeline node.
type TimelineEvent struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Date        string `json:"date"`
	IsMilestone bool   `json:"isMilestone"`
	Color       string `json:"color,omitempty"`
	Description string `json:"description,omitempty"`
	IsCompleted bool   `json:"isCompleted,omitempty"`
}

// AddTimelineEvent appends ev with a fresh id. An empty color becomes
// [DefaultEventColor].
func AddTimelineEvent(events []TimelineEvent, ev TimelineEvent) []TimelineEvent {
	ev.ID = uuid.NewString()
	if ev.Color == "" {
		ev.Color = DefaultEventColor
	}
	return append(slices.Clone(events), ev)
}

// UpdateTimelineEvent replaces the event with the same id as ev.
func UpdateTimelineEvent(events []TimelineEvent, ev TimelineEvent) []TimelineEvent {
	return mapItems(events, func(e TimelineEvent) TimelineEvent {
		if e.ID == ev.ID {
			return ev
		}
		return e
	})
}

// ToggleTimelineEvent flips the completion state of the event with id.
func ToggleTimelineEvent(events []TimelineEvent, id string) []TimelineEvent {
	return mapItems(events, func(e TimelineEvent) TimelineEvent {
		if e.ID == id {
			e.IsCompleted = !e.IsCompleted
		}
		return e
	})
}

// DeleteTimelineEvent removes the event with id.
func DeleteTimelineEvent(events []TimelineEvent, id string) []TimelineEvent {
	return slices.DeleteFunc(slices.Clone(events), func(e TimelineEvent) bool { return e.ID == id })
}

// SortedEvents returns events ordered by date. Events with unparsable
// dates keep their relative order after all dated events.
func SortedEvents(events []TimelineEvent) []TimelineEvent {
	out := slices.Clone(events)
	key := func(e TimelineEvent) (time.Time, bool) {
		t, err := ParseDate(e.Date)
		return t, err == nil
	}
	sort.SliceStable(out, func(i, j int) bool {
		ti, oki := key(out[i])
		tj, okj := key(out[j])
		switch {
		case oki && okj:
			return ti.Before(tj)
		case oki:
			return true
		default:
			return false
		}
	})
	return out
}

// =============================================================================
// Resources
// =============================================================================

// ResourceType classifies a study resource.
type ResourceType string

const (
	ResourcePDF     ResourceType = "pdf"
	ResourceVideo   ResourceType = "video"
	ResourceWebsite ResourceType = "website"
	ResourceOther   ResourceType = "other"
)

// Resource is one entry of a resource node.
type Resource struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	URL         string       `json:"url"`
	Type        ResourceType `json:"type"`
	Rating      int          `json:"rating,omitempty"`
	Tags        []string     `json:"tags,omitempty"`
	Description string       `json:"description,omitempty"`
}

// AddResource appends r with a fresh id. The rating is clamped to 1-5.
func AddResource(resources []Resource, r Resource) []Resource {
	r.ID = uuid.NewString()
	r.Rating = ClampRating(r.Rating)
	if r.Type == "" {
		r.Type = ResourceWebsite
	}
	return append(slices.Clone(resources), r)
}

// UpdateResource replaces the resource with the same id as r.
func UpdateResource(resources []Resource, r Resource) []Resource {
	r.Rating = ClampRating(r.Rating)
	return mapItems(resources, func(old Resource) Resource {
		if old.ID == r.ID {
			return r
		}
		return old
	})
}

// DeleteResource removes the resource with id.
func DeleteResource(resources []Resource, id string) []Resource {
	return slices.DeleteFunc(slices.Clone(resources), func(r Resource) bool { return r.ID == id })
}

// AddResourceTag adds tag to the resource with id unless already present.
func AddResourceTag(resources []Resource, id, tag string) []Resource {
	return mapItems(resources, func(r Resource) Resource {
		if r.ID == id && tag != "" && !slices.Contains(r.Tags, tag) {
			r.Tags = append(slices.Clone(r.Tags), tag)
		}
		return r
	})
}

// RemoveResourceTag removes tag from the resource with id.
func RemoveResourceTag(resources []Resource, id, tag string) []Resource {
	return mapItems(resources, func(r Resource) Resource {
		if r.ID == id {
			r.Tags = slices.DeleteFunc(slices.Clone(r.Tags), func(t string) bool { return t == tag })
		}
		return r
	})
}

// ClampRating limits a star rating to 1-5.
func ClampRating(rating int) int {
	return min(max(rating, 1), 5)
}
