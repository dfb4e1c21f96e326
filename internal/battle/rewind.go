package battle

import "etherduel/internal/combat"

// Capture stores the battle's one snapshot. A second capture is ignored.
func (e *Engine) Capture(st State) StepResult {
	if st.SnapshotTaken {
		return e.warn(st, "snapshot already taken")
	}
	st.Snapshot = st.capture()
	st.SnapshotTaken = true
	return StepResult{State: st, Events: []combat.Event{{
		Turn: st.Turn, Index: st.Index, Kind: combat.EventModifier, Message: "snapshot captured",
	}}}
}

// Rewind replaces the combatants, queue and index with the snapshot in one
// step. It works once per battle.
func (e *Engine) Rewind(st State) StepResult {
	if st.RewindUsed {
		return e.warn(st, "rewind already used")
	}
	if st.Snapshot == nil {
		return e.warn(st, "no snapshot")
	}
	st = st.restore(st.Snapshot)
	st.RewindUsed = true
	e.log().Info("battle rewound", "id", st.ID, "turn", st.Turn, "index", st.Index)
	return StepResult{State: st, Events: []combat.Event{{
		Turn: st.Turn, Index: st.Index, Kind: combat.EventModifier, Message: "rewound to snapshot",
	}}}
}
