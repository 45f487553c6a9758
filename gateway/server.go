package gateway

import (
	"context"
	"net/http"
	"sync"

	"github.com/axiomesh/axiom-kit/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/nam2ee/turtle/core"
	"github.com/nam2ee/turtle/ledger"
	"github.com/nam2ee/turtle/repo"
)

// Server exposes the bounty operations over HTTP. It is a devnet
// harness: callers identify themselves by base58 pubkey and the server
// marks the caller account as the transaction signer; real signature
// verification belongs to a production ledger platform.
type Server struct {
	cfg    *repo.Config
	logger *logrus.Logger
	ledger *ledger.Ledger
	proc   *core.Processor

	programID core.PubKey
	daoKey    core.PubKey

	// idx brackets mirror-index resolution, the invocation it feeds, and
	// the index write into one unit, so two requests for the same
	// identity cannot both mint a fresh slot.
	idx sync.Mutex

	srv *http.Server
}

func New(cfg *repo.Config, logger *logrus.Logger, l *ledger.Ledger) (*Server, error) {
	programID, err := core.PubKeyFromBase58(cfg.Ledger.ProgramID)
	if err != nil {
		return nil, errors.Wrap(err, "parse program id")
	}
	daoKey, err := core.PubKeyFromBase58(cfg.Ledger.DaoAccount)
	if err != nil {
		return nil, errors.Wrap(err, "parse dao account")
	}
	if logger == nil {
		logger = log.New()
		logger.SetLevel(log.ParseLevel(cfg.Log.Level))
	}

	s := &Server{
		cfg:       cfg,
		logger:    logger,
		ledger:    l,
		proc:      core.NewProcessor(logger),
		programID: programID,
		daoKey:    daoKey,
	}
	s.srv = &http.Server{
		Addr:    cfg.API.Addr,
		Handler: s.buildEngine(),
	}
	return s, nil
}

func (s *Server) buildEngine() *gin.Engine {
	g := gin.New()
	g.Use(gin.Recovery(), s.requestID())

	corsCfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
	}
	if len(s.cfg.API.AllowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = s.cfg.API.AllowedOrigins
	}
	g.Use(cors.New(corsCfg))

	bountyH := newBounty(s)
	govH := newGovernance(s)
	profileH := newProfiles(s)

	v1 := g.Group("/v1")
	{
		v1.POST("/dao", bountyH.Initialize)
		v1.GET("/dao", bountyH.State)
		v1.POST("/content", bountyH.Submit)
		v1.GET("/content/:key", bountyH.Content)
		v1.POST("/claims", bountyH.Claim)

		v1.POST("/deposits", bountyH.Deposit)
		v1.GET("/depositors/:key", bountyH.Depositor)

		v1.POST("/proposals", govH.Create)
		v1.GET("/proposals/:id", govH.Show)
		v1.POST("/proposals/:id/votes", govH.Vote)
		v1.POST("/distributions", govH.Distribute)

		v1.POST("/faucet", profileH.Faucet)
		v1.GET("/profiles/:addr", profileH.Show)
		v1.POST("/profiles/:addr", profileH.Update)
	}

	return g
}

// Handler exposes the routing tree for tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

func (s *Server) Start() error {
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Errorf("api server: %s", err)
		}
	}()
	s.logger.Infof("api listening on %s", s.cfg.API.Addr)
	return nil
}

func (s *Server) Stop() error {
	return s.srv.Shutdown(context.Background())
}

func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		c.Header("X-Request-Id", id)
		c.Set("request_id", id)
		c.Next()
	}
}

// run executes one instruction as one atomic ledger invocation.
func (s *Server) run(ins core.Instruction) error {
	txn := s.ledger.Begin()
	if err := s.proc.Process(txn, ins.ProgramID, ins.Accounts, ins.Data); err != nil {
		txn.Discard()
		return err
	}
	return txn.Commit()
}
