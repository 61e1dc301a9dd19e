package gateway

import (
	"net/http"

	"github.com/gobwas/ws"
	"go.uber.org/zap"

	"github.com/shubham-shewale/market-terminal/cmd/gateway/internal/hub"
	"github.com/shubham-shewale/market-terminal/pkg/config"
)

// Handler upgrades requests to websocket and attaches a client to the hub.
func Handler(h *hub.Hub, logger *zap.Logger, cfg config.StreamConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, _, _, err := ws.UpgradeHTTP(r, w)
		if err != nil {
			logger.Debug("Websocket upgrade failed", zap.Error(err))
			return
		}

		client := NewClient(conn, h, logger, cfg)
		client.Start()
	}
}
