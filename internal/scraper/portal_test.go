package scraper

import (
	"testing"

	"skillfit-go/internal/constants"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSupportedPortals(t *testing.T) {
	assert.Equal(t, []string{"glassdoor", "google", "indeed", "linkedin", "naukri"}, SupportedPortals())
}

func TestLookupPortal(t *testing.T) {
	d, ok := LookupPortal("google")
	require.True(t, ok)
	assert.Equal(t, "google_jobs.py", d.Script)
	assert.True(t, d.RequiresSerpAPI)

	d, ok = LookupPortal("linkedin")
	require.True(t, ok)
	assert.Equal(t, "linkedin.py", d.Script)
	assert.False(t, d.RequiresSerpAPI)

	_, ok = LookupPortal("monster")
	assert.False(t, ok)
}

func TestResolvePortals(t *testing.T) {
	resolved, warnings, err := ResolvePortals([]string{"linkedin", "indeed"})
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, resolved, 2)
	assert.Equal(t, "linkedin", resolved[0].Name)
	assert.Equal(t, "indeed", resolved[1].Name)
}

func TestResolvePortalsSkipsUnknown(t *testing.T) {
	resolved, warnings, err := ResolvePortals([]string{"linkedin", "monster"})
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	assert.Equal(t, "linkedin", resolved[0].Name)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "monster")
}

func TestResolvePortalsDeduplicates(t *testing.T) {
	resolved, _, err := ResolvePortals([]string{"naukri", "naukri", "naukri"})
	require.NoError(t, err)
	assert.Len(t, resolved, 1)
}

func TestResolvePortalsAllUnknown(t *testing.T) {
	_, warnings, err := ResolvePortals([]string{"monster", "dice"})
	assert.Error(t, err)
	assert.Len(t, warnings, 2)
}

func TestResolvePortalsEmpty(t *testing.T) {
	_, _, err := ResolvePortals(nil)
	assert.Error(t, err)
}

func TestSerpEnv(t *testing.T) {
	google, _ := LookupPortal("google")
	linkedin, _ := LookupPortal("linkedin")

	assert.Equal(t, []string{constants.SerpAPIKeyEnv + "=secret"}, serpEnv(google, "secret"))
	assert.Nil(t, serpEnv(google, ""))
	assert.Nil(t, serpEnv(linkedin, "secret"))
}
