package gateway

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nam2ee/turtle/core"
)

const proposalIndex = "proposals"

// Governance serves parameter proposals, weighted voting and the
// admin-gated quality distribution.
type Governance struct {
	s *Server
}

func newGovernance(s *Server) Governance { return Governance{s: s} }

func (h Governance) Create(c *gin.Context) {
	var req struct {
		Proposer     string `json:"proposer" binding:"required"`
		Type         uint8  `json:"type"`
		NewValue     uint64 `json:"newValue"`
		VotingPeriod uint64 `json:"votingPeriod" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	proposer, err := core.PubKeyFromBase58(req.Proposer)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	h.s.idx.Lock()
	defer h.s.idx.Unlock()

	slot, _, err := h.s.depositorSlot(proposer)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	proposalKey, err := newAccountKey()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}

	// The proposal takes the next sequence number; read it up front so
	// the index entry can be written once the invocation commits. The
	// idx lock keeps a concurrent create from binding the same number.
	id, err := h.nextProposalID()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}

	ins := core.NewCreateVoteInstruction(h.s.programID, proposer, h.s.daoKey, slot, proposalKey, core.CreateVoteArgs{
		Type:         core.ProposalType(req.Type),
		NewValue:     req.NewValue,
		VotingPeriod: req.VotingPeriod,
	})
	if err := h.s.run(ins); err != nil {
		fail(c, err)
		return
	}
	h.s.ledger.MirrorPut(proposalIndex, strconv.FormatUint(id, 10), proposalKey[:])
	c.JSON(http.StatusCreated, gin.H{"id": id, "proposal": proposalKey.String()})
}

func (h Governance) Show(c *gin.Context) {
	key, ok := h.resolve(c)
	if !ok {
		return
	}
	acct, err := h.s.ledger.Account(key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	if acct == nil {
		c.JSON(http.StatusNotFound, gin.H{"err": "proposal not found"})
		return
	}
	p, err := core.DecodeProposal(acct.Data)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, proposalView(key, p))
}

func (h Governance) Vote(c *gin.Context) {
	var req struct {
		Voter   string `json:"voter" binding:"required"`
		Approve *bool  `json:"approve" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	voter, err := core.PubKeyFromBase58(req.Voter)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": "bad proposal id"})
		return
	}
	h.s.idx.Lock()
	defer h.s.idx.Unlock()

	proposalKey, ok := h.resolve(c)
	if !ok {
		return
	}
	slot, _, err := h.s.depositorSlot(voter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}

	ins := core.NewVoteInstruction(h.s.programID, voter, h.s.daoKey, slot, proposalKey, core.VoteArgs{
		ProposalID: id,
		Approve:    *req.Approve,
	})
	if err := h.s.run(ins); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h Governance) Distribute(c *gin.Context) {
	var req struct {
		Admin    string   `json:"admin" binding:"required"`
		Creators []string `json:"creators" binding:"required"`
		Weights  []uint8  `json:"weights" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	admin, err := core.PubKeyFromBase58(req.Admin)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	creators := make([]core.PubKey, 0, len(req.Creators))
	for _, raw := range req.Creators {
		k, err := core.PubKeyFromBase58(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
			return
		}
		creators = append(creators, k)
	}

	ins := core.NewDistributeQualityRewardsInstruction(h.s.programID, admin, h.s.daoKey, core.DistributeQualityRewardsArgs{
		Creators: creators,
		Weights:  req.Weights,
	})
	if err := h.s.run(ins); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// resolve turns the :id path segment into a proposal account key via
// the mirror index.
func (h Governance) resolve(c *gin.Context) (core.PubKey, bool) {
	b := h.s.ledger.MirrorGet(proposalIndex, c.Param("id"))
	if b == nil {
		c.JSON(http.StatusNotFound, gin.H{"err": "proposal not found"})
		return core.PubKey{}, false
	}
	key, err := core.PubKeyFromBytes(b)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return core.PubKey{}, false
	}
	return key, true
}

func (h Governance) nextProposalID() (uint64, error) {
	acct, err := h.s.ledger.Account(h.s.daoKey)
	if err != nil {
		return 0, err
	}
	if acct == nil {
		return 0, nil
	}
	state, err := core.DecodeDaoState(acct.Data)
	if err != nil {
		return 0, err
	}
	return state.ActiveProposalCount, nil
}
