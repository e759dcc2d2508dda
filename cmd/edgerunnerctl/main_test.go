package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teilomillet/edgerunner/pkg/models"
	"github.com/teilomillet/edgerunner/pkg/oddsmath"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("DEFAULT_BANKROLL", "1000")
	t.Setenv("KELLY_STAKE_CAP", "1")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestConvert_Table(t *testing.T) {
	out, err := run(t, "convert", "5/2")
	require.NoError(t, err)

	assert.Contains(t, out, "3.500")
	assert.Contains(t, out, "+250")
	assert.Contains(t, out, "complement")
}

func TestConvert_AmericanNegative(t *testing.T) {
	out, err := run(t, "convert", "--format", "american", "-o", "json", "--", "-110")
	require.NoError(t, err)

	var resp models.ConvertResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.NotNil(t, resp.Odds.Decimal)
	assert.InDelta(t, 1.0+100.0/110.0, *resp.Odds.Decimal, 1e-12)
	assert.Equal(t, "+110", resp.Complement.American)
}

func TestConvert_Invalid(t *testing.T) {
	_, err := run(t, "convert", "evens")
	assert.Error(t, err)
}

func TestSingle_JSON(t *testing.T) {
	out, err := run(t, "single", "--market", "50", "--yours", "60", "--odds", "2.0", "-o", "json")
	require.NoError(t, err)

	var resp models.SingleBetResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.InDelta(t, 0.2, resp.KellyFraction, 1e-12)
	assert.InDelta(t, 200.0, resp.FullStake, 1e-9)
	assert.Equal(t, "explicit", resp.OddsSource)
}

func TestSingle_Flip(t *testing.T) {
	out, err := run(t, "single", "--market", "60", "--yours", "30", "--odds", "2.5", "--flip", "-o", "json")
	require.NoError(t, err)

	var resp models.SingleBetResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "no", resp.Side)
	assert.Equal(t, "1.667", resp.Odds.DecimalText)
}

func TestSingle_TableShowsWarnings(t *testing.T) {
	out, err := run(t, "single", "--market", "60", "--yours", "55")
	require.NoError(t, err)

	assert.Contains(t, out, "no_bet")
	assert.Contains(t, out, "! No betting edge detected")
}

func TestAllocate_Exact(t *testing.T) {
	out, err := run(t, "allocate", "--outcome", "Home:50:60", "--outcome", "Away:50:40", "-o", "json")
	require.NoError(t, err)

	var resp models.AllocationResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "exact", resp.Method)
	require.Len(t, resp.Rows, 2)
	assert.Equal(t, "Home", resp.Rows[0].Name)
	assert.LessOrEqual(t, resp.TotalFraction, 1.0)
}

func TestAllocate_IndependentTable(t *testing.T) {
	out, err := run(t, "allocate", "--method", "independent", "--cap", "0.1",
		"--outcome", "A:50:60", "--outcome", "B:50:60")
	require.NoError(t, err)

	assert.Contains(t, out, "OUTCOME")
	assert.Contains(t, out, "5.00%")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.True(t, strings.HasPrefix(lines[3], "TOTAL"), "got %q", lines[3])
}

func TestAllocate_Errors(t *testing.T) {
	_, err := run(t, "allocate")
	assert.Error(t, err)

	_, err = run(t, "allocate", "--outcome", "Home:fifty:60")
	assert.Error(t, err)

	_, err = run(t, "allocate", "--outcome", "Home:50:60", "--method", "magic")
	assert.Error(t, err)

	_, err = run(t, "convert", "2.0", "-o", "yaml")
	assert.Error(t, err)
}

func TestAllocate_DevigRequiresIndependent(t *testing.T) {
	_, err := run(t, "allocate", "--devig", "--outcome", "A:55:60", "--outcome", "B:55:40")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--devig")

	out, err := run(t, "allocate", "--method", "independent", "--devig", "-o", "json",
		"--outcome", "A:55:60", "--outcome", "B:55:40")
	require.NoError(t, err)

	var resp models.AllocationResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "independent", resp.Method)
}

func TestFormatPtr(t *testing.T) {
	assert.Equal(t, oddsmath.Placeholder, formatPtr(nil, "%.3f"))

	v := 2.5
	assert.Equal(t, "2.500", formatPtr(&v, "%.3f"))
}

func TestParseOutcome(t *testing.T) {
	o, err := parseOutcome("Over 2.5: goals:48:55")
	require.NoError(t, err)
	assert.Equal(t, "Over 2.5: goals", o.Name)
	assert.Equal(t, 48.0, o.MarketPct)
	assert.Equal(t, 55.0, o.YourPct)

	_, err = parseOutcome("nameonly")
	assert.Error(t, err)
}
