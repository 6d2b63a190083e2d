package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtding233/gacha-wish/internal/item"
	"github.com/xtding233/gacha-wish/internal/pricing"
	"github.com/xtding233/gacha-wish/internal/sim"
)

func executeCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestBannersListsEveryKind(t *testing.T) {
	stdout, _, err := executeCLI(t, "banners")
	require.NoError(t, err)
	for _, want := range []string{"beginner", "character", "weapon", "standard", "Beginners' Wish"} {
		assert.Contains(t, stdout, want)
	}
}

func TestPullBeginnerStopsWhenBudgetRunsOut(t *testing.T) {
	stdout, stderr, err := executeCLI(t, "pull", "beginner", "--ten", "-n", "3", "--seed", "11", "--json")
	require.NoError(t, err)

	var res pullResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &res))
	require.Len(t, res.Pulls, 20)
	assert.Equal(t, "Noelle", res.Pulls[0].Name)
	assert.Equal(t, 16, res.Spent)
	assert.Equal(t, "ten-pull unavailable", res.Stopped)
	assert.Empty(t, stderr)
}

func TestPullSinglesText(t *testing.T) {
	stdout, _, err := executeCLI(t, "pull", "character", "-n", "10", "--seed", "5")
	require.NoError(t, err)
	assert.Contains(t, stdout, " 10  ")
	assert.Contains(t, stdout, "spent: 10 Intertwined Fate")
}

func TestPullIsReproducibleWithSeed(t *testing.T) {
	a, _, err := executeCLI(t, "pull", "weapon", "--ten", "-n", "5", "--seed", "99", "--json")
	require.NoError(t, err)
	b, _, err := executeCLI(t, "pull", "weapon", "--ten", "-n", "5", "--seed", "99", "--json")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestPullSeedFromEnv(t *testing.T) {
	t.Setenv("WISH_SEED", "42")
	a, _, err := executeCLI(t, "pull", "standard", "-n", "20", "--json")
	require.NoError(t, err)
	b, _, err := executeCLI(t, "pull", "standard", "-n", "20", "--seed", "42", "--json")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestPullZeroSeedIsReproducible(t *testing.T) {
	a, _, err := executeCLI(t, "pull", "standard", "-n", "30", "--seed", "0", "--json")
	require.NoError(t, err)
	b, _, err := executeCLI(t, "pull", "standard", "-n", "30", "--seed", "0", "--json")
	require.NoError(t, err)
	assert.Equal(t, a, b)

	t.Setenv("WISH_SEED", "0")
	c, _, err := executeCLI(t, "pull", "standard", "-n", "30", "--json")
	require.NoError(t, err)
	assert.Equal(t, a, c)
}

func TestPullRejectsUnknownBanner(t *testing.T) {
	_, _, err := executeCLI(t, "pull", "chronicled")
	require.Error(t, err)
}

func TestPullUsesCatalogDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "banners"), 0o755))
	banner := `name: Tiny Standard
items:
  - {name: Five, rating: 5, category: character}
  - {name: Four, rating: 4, category: weapon}
  - {name: Three, rating: 3, category: weapon}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "banners", "standard.yaml"), []byte(banner), 0o644))

	stdout, _, err := executeCLI(t, "pull", "standard", "--ten", "--catalog", dir, "--seed", "1", "--json")
	require.NoError(t, err)

	var res pullResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &res))
	require.Len(t, res.Pulls, 10)
	for _, it := range res.Pulls {
		assert.Contains(t, []string{"Five", "Four", "Three"}, it.Name)
	}
	assert.GreaterOrEqual(t, res.Counts[item.FourStar]+res.Counts[item.FiveStar], 1)
}

func TestSimulateJSON(t *testing.T) {
	stdout, _, err := executeCLI(t, "simulate", "weapon", "--trials", "300", "--seed", "3", "--json")
	require.NoError(t, err)

	var st sim.Stats
	require.NoError(t, json.Unmarshal([]byte(stdout), &st))
	assert.Equal(t, 300, st.Trials)
	assert.LessOrEqual(t, st.Max, 80)
}

func TestSimulateRejectsUnknownGoal(t *testing.T) {
	_, _, err := executeCLI(t, "simulate", "weapon", "--goal", "whales")
	require.Error(t, err)
	assert.ErrorIs(t, err, sim.ErrUnknownGoal)
}

func TestCostForWishes(t *testing.T) {
	stdout, _, err := executeCLI(t, "cost", "--wishes", "10", "--json")
	require.NoError(t, err)

	var plan pricing.Plan
	require.NoError(t, json.Unmarshal([]byte(stdout), &plan))
	assert.GreaterOrEqual(t, plan.TotalTokens, 1600)
	assert.GreaterOrEqual(t, plan.Wishes, 10)
	assert.Equal(t, "USD", plan.Currency)
}

func TestCostWithStoreFileAndTax(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.yaml")
	store := `token_name: Crystal
currency: EUR
packs:
  - {id: a, name: Small, tokens: 160, price_cents: 100}
`
	require.NoError(t, os.WriteFile(path, []byte(store), 0o644))

	stdout, _, err := executeCLI(t, "cost", "--wishes", "3", "--store", path, "--tax", "0.1", "--json")
	require.NoError(t, err)

	var plan pricing.Plan
	require.NoError(t, json.Unmarshal([]byte(stdout), &plan))
	assert.Equal(t, 300, plan.SubCents)
	assert.Equal(t, 30, plan.TaxCents)
	assert.Equal(t, 330, plan.TotalCents)
}

func TestCostNeedsExactlyOneMode(t *testing.T) {
	_, _, err := executeCLI(t, "cost")
	require.Error(t, err)
	_, _, err = executeCLI(t, "cost", "--wishes", "1", "--budget", "100")
	require.Error(t, err)
}

func TestConfigFileSetsSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wish.yaml")
	require.NoError(t, os.WriteFile(path, []byte("seed: 77\n"), 0o644))

	a, _, err := executeCLI(t, "pull", "character", "-n", "30", "--config", path, "--json")
	require.NoError(t, err)
	b, _, err := executeCLI(t, "pull", "character", "-n", "30", "--seed", "77", "--json")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
