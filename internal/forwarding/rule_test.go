package forwarding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRuleSingleAttribute(t *testing.T) {
	rule, err := ParseRule("{ offeringId }")
	require.NoError(t, err)
	assert.Equal(t, []string{"offeringId"}, rule.Required())
	assert.False(t, rule.IsZero())
	assert.Equal(t, "{ offeringId }", rule.String())
}

func TestParseRuleMultipleAttributes(t *testing.T) {
	rule, err := ParseRule("{ tenantId regionId }")
	require.NoError(t, err)
	assert.Equal(t, []string{"tenantId", "regionId"}, rule.Required())
}

func TestParseRuleNestedSelection(t *testing.T) {
	rule, err := ParseRule("{ settings { locale } }")
	require.NoError(t, err)
	// Only top-level attributes are required; the nested shape travels in
	// the selection.
	assert.Equal(t, []string{"settings"}, rule.Required())
	require.Len(t, rule.Selection().Fields, 1)
	assert.True(t, rule.Selection().Fields[0].Selection.HasField("locale"))
}

func TestParseRuleRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"empty":           "",
		"blank":           "   ",
		"named operation": "query Foo { id }",
		"variables":       "query ($id: ID!) { node }",
		"mutation":        "mutation { create }",
		"fragment spread": "{ ...parts }",
		"two definitions": "{ id } { name }",
		"syntax error":    "{ id",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseRule(raw)
			assert.Error(t, err)
		})
	}
}

func TestMustRulePanicsOnInvalid(t *testing.T) {
	assert.Panics(t, func() { MustRule("{") })
	assert.NotPanics(t, func() { MustRule("{ id }") })
}

func TestZeroRule(t *testing.T) {
	var rule Rule
	assert.True(t, rule.IsZero())
	assert.Empty(t, rule.Required())
}
