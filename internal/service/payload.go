package service

import "github.com/vhvplatform/go-webhook-scheduler/internal/domain"

// BuildPayload assembles the wire payload for a recurring schedule. At most
// one embed is ever produced. An empty schedule yields an empty payload; it
// is the caller's choice whether to send it.
func BuildPayload(schedule *domain.RecurringSchedule) domain.WirePayload {
	var payload domain.WirePayload

	if schedule.Body != "" {
		payload.Content = schedule.Body
	}

	if schedule.Embed != nil {
		embed := *schedule.Embed
		if schedule.ImageURL != "" {
			embed.Image = &domain.EmbedImage{URL: schedule.ImageURL}
		}
		payload.Embeds = []domain.Embed{embed}
	} else if schedule.ImageURL != "" {
		// Image without an embed: wrap it in a minimal one.
		payload.Embeds = []domain.Embed{{Image: &domain.EmbedImage{URL: schedule.ImageURL}}}
	}

	return payload
}
