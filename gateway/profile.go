package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nam2ee/turtle/core"
)

const profileTable = "profiles"

// Profiles serves off-ledger community metadata and the development
// faucet.
type Profiles struct {
	s *Server
}

func newProfiles(s *Server) Profiles { return Profiles{s: s} }

type profileRecord struct {
	Nickname string `json:"nickname"`
	Bio      string `json:"bio"`
	Avatar   string `json:"avatar"`
}

func (h Profiles) Faucet(c *gin.Context) {
	var req struct {
		Address string `json:"address" binding:"required"`
		Amount  uint64 `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	key, err := core.PubKeyFromBase58(req.Address)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	if err := h.s.ledger.Credit(key, req.Amount); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	acct, err := h.s.ledger.Account(key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"address": key.String(), "balance": acct.Balance})
}

func (h Profiles) Show(c *gin.Context) {
	key, err := core.PubKeyFromBase58(c.Param("addr"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	raw := h.s.ledger.MirrorGet(profileTable, key.String())
	if raw == nil {
		c.JSON(http.StatusNotFound, gin.H{"err": "profile not found"})
		return
	}
	var rec profileRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"address":  key.String(),
		"nickname": rec.Nickname,
		"bio":      rec.Bio,
		"avatar":   rec.Avatar,
	})
}

func (h Profiles) Update(c *gin.Context) {
	key, err := core.PubKeyFromBase58(c.Param("addr"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	var rec profileRecord
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	h.s.ledger.MirrorPut(profileTable, key.String(), raw)
	c.Status(http.StatusNoContent)
}
