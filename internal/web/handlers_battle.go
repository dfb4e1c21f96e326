package web

import (
	"math/rand/v2"
	"net/http"

	"etherduel/internal/battle"
	"etherduel/internal/combat"
	"etherduel/internal/config"
	"etherduel/internal/timeline"
)

type createRequest struct {
	Seed         *uint64        `json:"seed"`
	Player       config.Fighter `json:"player"`
	Enemy        config.Fighter `json:"enemy"`
	PlayerRelic  float64        `json:"playerRelic"`
	EnemyRelic   float64        `json:"enemyRelic"`
	PlayerTokens map[string]int `json:"playerTokens"`
	EnemyTokens  map[string]int `json:"enemyTokens"`
}

// POST /battles
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := decode(r, &req); err != nil {
		http.Error(w, "bad request: "+err.Error(), http.StatusBadRequest)
		return
	}
	seed := rand.Uint64()
	if req.Seed != nil {
		seed = *req.Seed
	}
	id := s.Store.NewID()
	res := s.Engine.NewBattle(battle.Setup{
		ID:           id,
		Seed:         seed,
		Player:       req.Player,
		Enemy:        req.Enemy,
		PlayerRelic:  req.PlayerRelic,
		EnemyRelic:   req.EnemyRelic,
		PlayerTokens: req.PlayerTokens,
		EnemyTokens:  req.EnemyTokens,
	})
	rec := Record{State: res.State, Events: res.Events, Settlements: []battle.TurnSettlement{}}
	if rec.Events == nil {
		rec.Events = []combat.Event{}
	}
	if err := s.Store.Put(r.Context(), id, rec); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.log().Info("battle created", "id", id, "seed", seed)
	writeJSON(w, http.StatusCreated, rec)
}

type turnRequest struct {
	Player      []string        `json:"player"`
	Enemy       []timeline.Play `json:"enemy"`
	Unused      []string        `json:"unused"`
	EnemyUnused []string        `json:"enemyUnused"`
	ForceCrit   bool            `json:"forceCrit"`
}

type turnResponse struct {
	State      battle.State           `json:"state"`
	Events     []combat.Event         `json:"events"`
	Settlement *battle.TurnSettlement `json:"settlement,omitempty"`
}

// POST /battles/{id}/turns plans, resolves and settles one full turn.
func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	var req turnRequest
	if err := decode(r, &req); err != nil {
		http.Error(w, "bad request: "+err.Error(), http.StatusBadRequest)
		return
	}
	in := battle.TurnInput{
		Enemy:        req.Enemy,
		PlayerUnused: req.Unused,
		EnemyUnused:  req.EnemyUnused,
		ForceCrit:    req.ForceCrit,
	}
	for _, id := range req.Player {
		in.Player = append(in.Player, timeline.Play{CardID: id})
	}

	var resp turnResponse
	refused := false
	_, err := s.Store.Update(r.Context(), r.PathValue("id"), func(rec Record) (Record, error) {
		plan := s.Engine.PlanTurn(rec.State, in)
		if rejected(plan.Events) {
			refused = true
			resp = turnResponse{State: rec.State, Events: plan.Events}
			return rec, nil
		}
		steps := s.Engine.ResolveTurn(plan.State)
		settle := s.Engine.EndTurn(steps.State)

		events := append(append(plan.Events, steps.Events...), settle.Events...)
		rec.State = settle.State
		rec.Events = append(rec.Events, events...)
		if settle.Settlement != nil {
			rec.Settlements = append(rec.Settlements, *settle.Settlement)
		}
		resp = turnResponse{State: rec.State, Events: events, Settlement: settle.Settlement}
		return rec, nil
	})
	if err != nil {
		s.storeError(w, err)
		return
	}
	code := http.StatusOK
	if refused {
		code = http.StatusConflict
	}
	writeJSON(w, code, resp)
}

// POST /battles/{id}/snapshot
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, s.Engine.Capture)
}

// POST /battles/{id}/rewind
func (s *Server) handleRewind(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, s.Engine.Rewind)
}

type transitionResponse struct {
	State  battle.State   `json:"state"`
	Events []combat.Event `json:"events"`
}

func (s *Server) transition(w http.ResponseWriter, r *http.Request, fn func(battle.State) battle.StepResult) {
	var resp transitionResponse
	_, err := s.Store.Update(r.Context(), r.PathValue("id"), func(rec Record) (Record, error) {
		res := fn(rec.State)
		rec.State = res.State
		rec.Events = append(rec.Events, res.Events...)
		resp = transitionResponse{State: res.State, Events: res.Events}
		return rec, nil
	})
	if err != nil {
		s.storeError(w, err)
		return
	}
	code := http.StatusOK
	if rejected(resp.Events) {
		code = http.StatusConflict
	}
	writeJSON(w, code, resp)
}
