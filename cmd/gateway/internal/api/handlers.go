package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shubham-shewale/market-terminal/pkg/models"
)

const missingParams = "Missing required parameters: fromToken, toToken, amount"

// flexAmount accepts both "1.5" and 1.5 on the wire. A bare 0 reads as missing.
type flexAmount string

func (a *flexAmount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = flexAmount(s)
		return nil
	}
	if bytes.Equal(b, []byte("null")) {
		*a = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	// A numeric zero counts as absent, the quoted "0" does not.
	if f, err := n.Float64(); err == nil && f == 0 {
		*a = ""
		return nil
	}
	*a = flexAmount(n.String())
	return nil
}

type simulateRequest struct {
	FromToken string     `json:"fromToken"`
	ToToken   string     `json:"toToken"`
	Amount    flexAmount `json:"amount"`
	Slippage  *float64   `json:"slippage"`
}

func (s *Server) handleIndex(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Terminal OS API - " + apiVersion,
		"endpoints": gin.H{
			"health":        "/api/health",
			"prices":        "/api/prices",
			"swap":          "/api/swap/*",
			"websocket":     s.cfg.Stream.Path,
			"documentation": "/api-docs",
		},
	})
}

func (s *Server) handleDocs(c *gin.Context) {
	c.Data(http.StatusOK, "application/json; charset=utf-8", openAPIDoc)
}

func (s *Server) handleHealth(c *gin.Context) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Seconds(),
		"memory": gin.H{
			"heapUsed":  mem.HeapAlloc,
			"heapTotal": mem.HeapSys,
		},
	})
}

// handlePrices returns the full snapshot, or a single pair with ?pair=.
func (s *Server) handlePrices(c *gin.Context) {
	if pair := c.Query("pair"); pair != "" {
		p, ok := s.prices.Get(pair)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Price not found for pair"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": p})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": s.prices.Snapshot()})
}

func (s *Server) handleQuote(c *gin.Context) {
	from, to, amount := c.Query("fromToken"), c.Query("toToken"), c.Query("amount")
	if from == "" || to == "" || amount == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": missingParams})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": s.quotes.GetQuote(from, to, amount)})
}

func (s *Server) handleSimulate(c *gin.Context) {
	var body simulateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "message": err.Error()})
		return
	}
	if body.FromToken == "" || body.ToToken == "" || body.Amount == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": missingParams})
		return
	}

	slippage := s.cfg.Swap.DefaultSlippage
	if body.Slippage != nil {
		slippage = *body.Slippage
	}

	result := s.quotes.SimulateSwap(c.Request.Context(), models.SwapRequest{
		FromToken: body.FromToken,
		ToToken:   body.ToToken,
		Amount:    string(body.Amount),
		Slippage:  slippage,
	})
	if s.metrics != nil {
		s.metrics.RecordSwap(result.Success)
	}
	if !result.Success {
		s.logger.Info("Swap simulation rejected", zap.String("reason", result.Error))
	}

	c.JSON(http.StatusOK, gin.H{"success": result.Success, "data": result})
}

// The pair contains a slash ("ETH/USDC"), hence the catch-all route.
func (s *Server) handleOrderBook(c *gin.Context) {
	pair := strings.TrimPrefix(c.Param("pair"), "/")
	ob, ok := s.books.Get(pair)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order book not found for pair"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": ob})
}

func (s *Server) handleOrderBooks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": s.books.GetAll()})
}
