package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/capability-resolver/models"
	"github.com/upb/capability-resolver/services"
	"github.com/upb/capability-resolver/services/catalog"
	"github.com/upb/capability-resolver/services/requirements"
)

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		input   string
		want    Strategy
		wantErr bool
	}{
		{"multimodal", StrategyMultimodal, false},
		{"consolidate", StrategyMultimodal, false},
		{" Cost_Efficient ", StrategyCostEfficient, false},
		{"quality", StrategyQuality, false},
		{"fastest", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseStrategy(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, services.IsValidationError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.IsValid())
		})
	}
}

func TestResolve_Scenarios(t *testing.T) {
	t.Run("consolidate binds every capability to one broad provider", func(t *testing.T) {
		broad := candidate(7, "google", "gemini-1.5-pro", text, image, video)

		got := Resolve([]string{"posts", "videos", "stories"}, pool(broad), StrategyMultimodal)

		require.Len(t, got, 3)
		for _, c := range []catalog.Capability{text, video, image} {
			assert.Equal(t, int64(7), got[c].ProviderID, "capability %s", c)
			assert.Equal(t, "gemini-1.5-pro", got[c].ModelID)
		}
	})

	t.Run("cost efficient distributes to specialised providers", func(t *testing.T) {
		candidates := pool(
			candidate(1, "mistral", "mistral-small", text),
			candidate(2, "google", "gemini-1.5-flash", text, image, video),
		)

		got := Resolve([]string{"posts", "comments", "videos", "stories"}, candidates, StrategyCostEfficient)

		require.Len(t, got, 3)
		assert.Equal(t, int64(1), got[text].ProviderID)
		assert.Equal(t, int64(2), got[image].ProviderID)
		assert.Equal(t, int64(2), got[video].ProviderID)
	})

	t.Run("uncovered capability is omitted", func(t *testing.T) {
		got := Resolve([]string{"posts", "videos"}, pool(candidate(1, "mistral", "mistral-small", text)), StrategyCostEfficient)

		require.Len(t, got, 1)
		assert.Contains(t, got, text)
		assert.NotContains(t, got, video)
	})
}

func TestResolve_QualityMatchesMultimodal(t *testing.T) {
	candidates := pool(
		candidate(1, "mistral", "mistral-small", text),
		candidate(2, "openai", "gpt-4o", text, image),
		candidate(3, "google", "gemini-1.5-pro", text, image, video, audio),
	)
	categories := []string{"posts", "photos", "reels"}

	assert.Equal(t,
		Resolve(categories, candidates, StrategyMultimodal),
		Resolve(categories, candidates, StrategyQuality))
}

func TestResolve_FallbackWhenNoSingleProviderCoversAll(t *testing.T) {
	candidates := pool(
		candidate(1, "openai", "gpt-4o", text, image),
		candidate(2, "openai", "whisper-1", audio),
		candidate(3, "mistral", "mistral-small", text),
	)

	got := Resolve([]string{"posts", "photos", "podcasts", "videos"}, candidates, StrategyMultimodal)

	require.Len(t, got, 3)
	// fallback prefers the narrowest provider per capability
	assert.Equal(t, int64(3), got[text].ProviderID)
	assert.Equal(t, int64(1), got[image].ProviderID)
	assert.Equal(t, int64(2), got[audio].ProviderID)
	assert.NotContains(t, got, video)
}

func TestResolve_UnknownStrategyRunsFallbackOnly(t *testing.T) {
	candidates := pool(
		candidate(1, "mistral", "mistral-small", text),
		candidate(2, "google", "gemini-1.5-pro", text, image, video, audio),
	)

	got := Resolve([]string{"posts", "videos"}, candidates, Strategy("round_robin"))

	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[text].ProviderID)
	assert.Equal(t, int64(2), got[video].ProviderID)
}

func TestResolve_EmptyInputs(t *testing.T) {
	candidates := pool(candidate(1, "mistral", "mistral-small", text))

	assert.Empty(t, Resolve(nil, candidates, StrategyMultimodal))
	assert.Empty(t, Resolve([]string{"holograms"}, candidates, StrategyCostEfficient))
	assert.Empty(t, Resolve([]string{"posts"}, nil, StrategyQuality))
}

func TestResolve_KeysAreSubsetOfRequirements(t *testing.T) {
	candidates := pool(candidate(1, "google", "gemini-1.5-pro", text, image, video, audio))

	for _, strategy := range append(Strategies(), Strategy("bogus")) {
		categories := []string{"posts", "stories"}
		got := Resolve(categories, candidates, strategy)
		reqs := requirements.Derive(categories)

		for c := range got {
			assert.Contains(t, reqs, c, "strategy %s bound underived capability %s", strategy, c)
		}
		assert.Len(t, got, 2)
	}
}

func TestResolve_FallbackGuarantee(t *testing.T) {
	candidates := pool(
		candidate(1, "openai", "gpt-4o-mini", text, image),
		candidate(2, "openai", "whisper-1", audio),
		candidate(5, "ollama", "llama3.1", text),
	)
	categories := []string{"posts", "photos", "videos", "voice_notes", "messages"}
	reqs := requirements.Derive(categories)

	for _, strategy := range Strategies() {
		got := Resolve(categories, candidates, strategy)
		for _, c := range reqs.Capabilities() {
			if _, ok := got[c]; ok {
				continue
			}
			_, supported := Select(catalog.NewCapabilitySet(c), candidates, false)
			assert.False(t, supported, "strategy %s left supported capability %s unbound", strategy, c)
		}
	}
}

func TestResolutionMap_Missing(t *testing.T) {
	reqs := requirements.Derive([]string{"podcasts", "posts", "videos"})
	result := ResolutionMap{
		text: entryFor(candidate(1, "mistral", "mistral-small", text)),
	}

	assert.Equal(t, []catalog.Capability{video, audio}, result.Missing(reqs))
	assert.Empty(t, ResolutionMap{}.Missing(requirements.Requirements{}))
}

func TestResolve_EntriesDoNotAliasCandidates(t *testing.T) {
	c := candidate(1, "google", "gemini-1.5-pro", text, image)
	candidates := map[int64]models.ProviderCandidate{1: c}

	got := Resolve([]string{"posts"}, candidates, StrategyMultimodal)
	entry := got[text]
	entry.Capabilities[audio] = struct{}{}

	assert.False(t, candidates[1].Capabilities.Has(audio))
}
