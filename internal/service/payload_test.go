package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vhvplatform/go-webhook-scheduler/internal/domain"
)

func TestBuildPayload_BodyOnly(t *testing.T) {
	payload := BuildPayload(&domain.RecurringSchedule{Body: "hello"})

	assert.Equal(t, "hello", payload.Content)
	assert.Empty(t, payload.Embeds)
}

func TestBuildPayload_EmbedWithImage(t *testing.T) {
	schedule := &domain.RecurringSchedule{
		Body: "release notes",
		Embed: &domain.Embed{
			Title:       "v2.0",
			Description: "changelog",
			Color:       0x00ff00,
			Fields:      []domain.EmbedField{{Name: "status", Value: "stable"}},
		},
		ImageURL: "https://example.com/banner.png",
	}

	payload := BuildPayload(schedule)

	assert.Equal(t, "release notes", payload.Content)
	require.Len(t, payload.Embeds, 1)
	assert.Equal(t, "v2.0", payload.Embeds[0].Title)
	require.NotNil(t, payload.Embeds[0].Image)
	assert.Equal(t, "https://example.com/banner.png", payload.Embeds[0].Image.URL)

	// The schedule's own embed must not be mutated.
	assert.Nil(t, schedule.Embed.Image)
}

func TestBuildPayload_ImageOnlySynthesizesEmbed(t *testing.T) {
	payload := BuildPayload(&domain.RecurringSchedule{ImageURL: "https://example.com/cat.png"})

	assert.Empty(t, payload.Content)
	require.Len(t, payload.Embeds, 1)
	require.NotNil(t, payload.Embeds[0].Image)
	assert.Equal(t, "https://example.com/cat.png", payload.Embeds[0].Image.URL)
}

func TestBuildPayload_EmptyScheduleYieldsEmptyPayload(t *testing.T) {
	payload := BuildPayload(&domain.RecurringSchedule{})

	assert.True(t, payload.IsEmpty())
}
