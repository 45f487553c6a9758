package gateway

import (
	"crypto/rand"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nam2ee/turtle/core"
)

// statusFor maps processing failure codes onto HTTP statuses.
func statusFor(err error) int {
	switch core.CodeOf(err) {
	case core.CodeMalformedInstruction, core.CodeInvalidParameter,
		core.CodeInvalidProposal, core.CodeInvalidDistribution:
		return http.StatusBadRequest
	case core.CodeMissingSignature:
		return http.StatusUnauthorized
	case core.CodeNotAuthorized, core.CodeNotAdmin:
		return http.StatusForbidden
	case core.CodeTimeLimitNotReached, core.CodeInvalidContent,
		core.CodeInvalidAccountData:
		return http.StatusConflict
	case core.CodeExternalFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func fail(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"err": err.Error()})
}

// newAccountKey draws a fresh random storage slot, the devnet stand-in
// for a client-side generated keypair.
func newAccountKey() (core.PubKey, error) {
	var k core.PubKey
	_, err := rand.Read(k[:])
	return k, err
}

func daoStateView(s *core.DaoState) gin.H {
	return gin.H{
		"admin":                   s.Admin.String(),
		"time_limit":              s.TimeLimit,
		"base_fee":                s.BaseFee,
		"ai_moderation":           s.AiModeration,
		"deposit_share":           s.DepositShare,
		"last_activity_timestamp": s.LastActivityTimestamp,
		"total_deposit":           s.TotalDeposit,
		"active_proposal_count":   s.ActiveProposalCount,
		"content_count":           s.ContentCount,
		"depositor_count":         s.DepositorCount,
	}
}

func contentView(key core.PubKey, ct *core.Content) gin.H {
	return gin.H{
		"account":      key.String(),
		"author":       ct.Author.String(),
		"content_hash": ct.ContentHash,
		"content_uri":  ct.ContentURI,
		"timestamp":    ct.Timestamp,
		"votes":        ct.Votes,
	}
}

func depositorView(key core.PubKey, d *core.Depositor) gin.H {
	return gin.H{
		"account":      key.String(),
		"pubkey":       d.PubKey.String(),
		"amount":       d.Amount,
		"locked_until": d.LockedUntil,
		"voting_power": d.VotingPower,
	}
}

func proposalView(key core.PubKey, p *core.Proposal) gin.H {
	return gin.H{
		"account":         key.String(),
		"id":              p.ID,
		"type":            p.Type.String(),
		"new_value":       p.NewValue,
		"voting_end_time": p.VotingEndTime,
		"yes_votes":       p.YesVotes,
		"no_votes":        p.NoVotes,
		"is_executed":     p.IsExecuted,
	}
}
