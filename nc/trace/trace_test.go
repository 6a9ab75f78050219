package trace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrace_RecordHop_AppendsRecord(t *testing.T) {
	// GIVEN a trace for one flow
	tr := New("tfa", "f0", TraceConfig{Level: TraceLevelHops})

	// WHEN a hop is recorded
	tr.RecordHop(HopRecord{Index: 0, Servers: []string{"s1"}, Delay: "27.5", DelayValue: 27.5})

	// THEN the trace holds it and is not yet complete
	assert.Len(t, tr.Hops, 1)
	assert.Equal(t, "s1", tr.Hops[0].Segment())
	assert.False(t, tr.Complete)

	tr.Finish()
	assert.True(t, tr.Complete)
}

func TestTrace_Snapshot_IsIndependent(t *testing.T) {
	// GIVEN a trace with one hop
	tr := New("sfa", "f1", TraceConfig{Level: TraceLevelCandidates})
	tr.RecordHop(HopRecord{Servers: []string{"s0"}, Candidates: []CandidateRecord{{Curve: "RL{R=20, T=20}"}}})

	// WHEN a snapshot is taken and the original keeps recording
	snap := tr.Snapshot()
	tr.RecordHop(HopRecord{Servers: []string{"s1"}})
	tr.Hops[0].Servers[0] = "changed"

	// THEN the snapshot is unaffected
	assert.Len(t, snap.Hops, 1)
	assert.Equal(t, "s0", snap.Hops[0].Servers[0])
	assert.Equal(t, "f1", snap.Flow)
	assert.Nil(t, (*Trace)(nil).Snapshot())
}

func TestIsValidTraceLevel(t *testing.T) {
	assert.True(t, IsValidTraceLevel(""))
	assert.True(t, IsValidTraceLevel("hops"))
	assert.True(t, IsValidTraceLevel("candidates"))
	assert.False(t, IsValidTraceLevel("decisions"))
	assert.True(t, TraceConfig{Level: TraceLevelCandidates}.Candidates())
	assert.False(t, TraceConfig{}.Candidates())
}
