package gateway

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nam2ee/turtle/core"
)

const depositorIndex = "depositors"

// Bounty serves the funding lifecycle: DAO setup, submissions, deposits
// and reward claims.
type Bounty struct {
	s *Server
}

func newBounty(s *Server) Bounty { return Bounty{s: s} }

func (h Bounty) Initialize(c *gin.Context) {
	var req struct {
		Payer        string `json:"payer" binding:"required"`
		TimeLimit    uint64 `json:"timeLimit" binding:"required"`
		BaseFee      uint64 `json:"baseFee"`
		AiModeration bool   `json:"aiModeration"`
		DepositShare uint8  `json:"depositShare"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	payer, err := core.PubKeyFromBase58(req.Payer)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	ins := core.NewInitializeDaoInstruction(h.s.programID, payer, h.s.daoKey, core.InitializeDaoArgs{
		TimeLimit:    req.TimeLimit,
		BaseFee:      req.BaseFee,
		AiModeration: req.AiModeration,
		DepositShare: req.DepositShare,
	})
	if err := h.s.run(ins); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"dao": h.s.daoKey.String()})
}

func (h Bounty) State(c *gin.Context) {
	acct, err := h.s.ledger.Account(h.s.daoKey)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	if acct == nil || len(acct.Data) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"err": "dao not initialized"})
		return
	}
	state, err := core.DecodeDaoState(acct.Data)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	view := daoStateView(state)
	view["pool_balance"] = acct.Balance
	c.JSON(http.StatusOK, view)
}

func (h Bounty) Submit(c *gin.Context) {
	var req struct {
		Submitter   string `json:"submitter" binding:"required"`
		ContentHash string `json:"contentHash" binding:"required"`
		ContentURI  string `json:"contentUri" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	submitter, err := core.PubKeyFromBase58(req.Submitter)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	contentKey, err := newAccountKey()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}

	ins := core.NewSubmitContentInstruction(h.s.programID, submitter, h.s.daoKey, contentKey, core.SubmitContentArgs{
		ContentHash: req.ContentHash,
		ContentURI:  req.ContentURI,
	})
	if err := h.s.run(ins); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"content": contentKey.String()})
}

func (h Bounty) Content(c *gin.Context) {
	key, err := core.PubKeyFromBase58(c.Param("key"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	acct, err := h.s.ledger.Account(key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	if acct == nil {
		c.JSON(http.StatusNotFound, gin.H{"err": "content not found"})
		return
	}
	ct, err := core.DecodeContent(acct.Data)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, contentView(key, ct))
}

func (h Bounty) Claim(c *gin.Context) {
	var req struct {
		Claimer string `json:"claimer" binding:"required"`
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	claimer, err := core.PubKeyFromBase58(req.Claimer)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	contentKey, err := core.PubKeyFromBase58(req.Content)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	ins := core.NewClaimRewardInstruction(h.s.programID, claimer, h.s.daoKey, contentKey)
	if err := h.s.run(ins); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h Bounty) Deposit(c *gin.Context) {
	var req struct {
		Depositor string `json:"depositor" binding:"required"`
		Amount    uint64 `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	depositor, err := core.PubKeyFromBase58(req.Depositor)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	h.s.idx.Lock()
	defer h.s.idx.Unlock()

	slot, fresh, err := h.s.depositorSlot(depositor)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}

	ins := core.NewDepositInstruction(h.s.programID, depositor, h.s.daoKey, slot, core.DepositArgs{
		Amount: req.Amount,
	})
	if err := h.s.run(ins); err != nil {
		fail(c, err)
		return
	}
	if fresh {
		h.s.ledger.MirrorPut(depositorIndex, depositor.String(), slot[:])
	}
	c.JSON(http.StatusCreated, gin.H{"depositor_account": slot.String()})
}

func (h Bounty) Depositor(c *gin.Context) {
	identity, err := core.PubKeyFromBase58(c.Param("key"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	slotBytes := h.s.ledger.MirrorGet(depositorIndex, identity.String())
	if slotBytes == nil {
		c.JSON(http.StatusNotFound, gin.H{"err": "no deposit on record"})
		return
	}
	slot, err := core.PubKeyFromBytes(slotBytes)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	acct, err := h.s.ledger.Account(slot)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	if acct == nil {
		c.JSON(http.StatusNotFound, gin.H{"err": "no deposit on record"})
		return
	}
	d, err := core.DecodeDepositor(acct.Data)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, depositorView(slot, d))
}

// depositorSlot resolves the identity-to-slot index kept in the mirror
// store, minting a fresh slot on first deposit. Callers must hold idx
// so the miss-mint-commit-index sequence stays one unit.
func (s *Server) depositorSlot(identity core.PubKey) (core.PubKey, bool, error) {
	if b := s.ledger.MirrorGet(depositorIndex, identity.String()); b != nil {
		slot, err := core.PubKeyFromBytes(b)
		return slot, false, err
	}
	slot, err := newAccountKey()
	return slot, true, err
}
