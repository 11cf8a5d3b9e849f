package search

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeCandidates() []Candidate {
	return []Candidate{
		{MetadataID: 1, PropertyName: "Maple", Source: SourceKeyword},
		{MetadataID: 2, Title: "ticket-0002", Source: SourceKeyword},
		{MetadataID: 3, ChannelID: "333", Source: SourceKeyword},
	}
}

func TestNewSessionRequiresResults(t *testing.T) {
	_, err := NewSession("u1", "c1", "g1", "pump", nil)
	assert.Error(t, err)

	s, err := NewSession("u1", "c1", "g1", "pump", threeCandidates())
	require.NoError(t, err)
	assert.Equal(t, StepAwaitingSelection, s.Step)
	assert.Len(t, s.Results, 3)
}

func TestNewSessionCapsResults(t *testing.T) {
	results := make([]Candidate, 8)
	for i := range results {
		results[i].MetadataID = uint(i + 1)
	}
	s, err := NewSession("u1", "c1", "", "pump", results)
	require.NoError(t, err)

	assert.Len(t, s.Results, MaxCandidates)
	assert.Equal(t, uint(1), s.Results[0].MetadataID)
}

func TestSelect(t *testing.T) {
	s, err := NewSession("u1", "c1", "g1", "pump", threeCandidates())
	require.NoError(t, err)

	chosen, err := s.Select(" 2 ")
	require.NoError(t, err)

	assert.Equal(t, uint(2), chosen.MetadataID)
	assert.Equal(t, StepAwaitingAction, s.Step)
	require.NotNil(t, s.Selected)
	assert.Equal(t, uint(2), s.Selected.MetadataID)
	assert.NoError(t, s.Validate())
}

func TestSelectOutOfBoundsLeavesSessionUnchanged(t *testing.T) {
	for _, input := range []string{"5", "0", "-1", "abc", "2abc", ""} {
		t.Run(input, func(t *testing.T) {
			s, err := NewSession("u1", "c1", "g1", "pump", threeCandidates())
			require.NoError(t, err)

			_, err = s.Select(input)

			var invalid *ErrInvalidSelection
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, "Please reply with a number between 1 and 3.", err.Error())
			assert.Equal(t, StepAwaitingSelection, s.Step)
			assert.Nil(t, s.Selected)
		})
	}
}

func TestParseAction(t *testing.T) {
	assert.Equal(t, ActionSummary, ParseAction("Summary"))
	assert.Equal(t, ActionRestore, ParseAction("restore"))
	assert.Equal(t, ActionRestore, ParseAction("FULL LOG"))
	assert.Equal(t, ActionRestore, ParseAction("details "))
	assert.Equal(t, ActionNone, ParseAction("2"))
}

func TestCandidateLabel(t *testing.T) {
	c := threeCandidates()
	assert.Equal(t, "Maple", c[0].Label())
	assert.Equal(t, "ticket-0002", c[1].Label())
	assert.Equal(t, "333", c[2].Label())
	assert.Equal(t, "(untitled)", Candidate{}.Label())
}

func TestSessionJSONRoundTripValidates(t *testing.T) {
	s, err := NewSession("u1", "c1", "g1", "pump", threeCandidates())
	require.NoError(t, err)
	_, err = s.Select("1")
	require.NoError(t, err)

	raw, err := json.Marshal(s)
	require.NoError(t, err)

	var back Session
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.NoError(t, back.Validate())
	assert.Equal(t, "Maple", back.Selected.Label())

	back.Step = "bogus"
	assert.Error(t, back.Validate())
}
